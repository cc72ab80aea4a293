// Package apidocs 内嵌 OpenAPI 文档
package apidocs

import _ "embed"

// OpenAPI openapi.yaml 内容
//
//go:embed openapi.yaml
var OpenAPI []byte
