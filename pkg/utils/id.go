package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制主键（去掉横线的 UUIDv4）
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// AtoiDefault 解析正整数，失败或 <=0 时返回 def
func AtoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v > 0 {
		return v
	}
	return def
}
