package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// WordLength 默认单词长度
const WordLength = 6

// ErrNoWords 词库为空
var ErrNoWords = errors.New("词库为空")

// DefaultWords 默认词库（6个字母的英文单词）
var DefaultWords = []string{
	"planet",
	"rocket",
	"socket",
	"object",
	"window",
	"screen",
	"python",
	"letter",
	"summer",
	"winter",
	"spring",
	"forest",
	"castle",
	"bridge",
	"driver",
	"school",
	"mother",
	"father",
	"little",
	"golden",
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomWord 从列表中随机选择一个单词
func RandomWord(words []string) (string, error) {
	if len(words) == 0 {
		return "", ErrNoWords
	}
	rngMu.Lock()
	idx := rng.Intn(len(words))
	rngMu.Unlock()
	return words[idx], nil
}

// NormalizeWord 去除空白并转为小写
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// IsValidWord 单词是否只包含拉丁字母
func IsValidWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if !IsValidLetter(word[i : i+1]) {
			return false
		}
	}
	return true
}
