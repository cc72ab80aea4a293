package game

import "strings"

// gallowsStages 按错误次数索引的绞架图案
var gallowsStages = [][]string{
	{
		"+---+",
		"    |",
		"    |",
		"    |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"    |",
		"    |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"|   |",
		"    |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"/|  |",
		"    |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"/|\\ |",
		"    |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"/|\\ |",
		"/   |",
		"   ===",
	},
	{
		"+---+",
		"0   |",
		"/|\\ |",
		"/ \\ |",
		"   ===",
	},
}

// GallowsStages 图案总数
func GallowsStages() int {
	return len(gallowsStages)
}

// Gallows 渲染错误次数对应的绞架，超出范围时取边界值
func Gallows(errors int) string {
	idx := errors
	if idx < 0 {
		idx = 0
	}
	if idx > len(gallowsStages)-1 {
		idx = len(gallowsStages) - 1
	}
	return strings.Join(gallowsStages[idx], "\n")
}
