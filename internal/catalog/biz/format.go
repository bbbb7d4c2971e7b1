package biz

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// EmptyPlaceholder 无能力时显示的占位符
const EmptyPlaceholder = "-"

// FormatNumber 千位分隔，例如 128000 => 128,000
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// FormatTokens 上下文长度显示，例如 "128,000 tokens"
func FormatTokens(n int64) string {
	return FormatNumber(n) + " tokens"
}

// FormatScore 分数的最短十进制表示
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// EnabledCapabilities 值为真的能力名，按文档顺序
// false、0、""、null 视为未启用
func EnabledCapabilities(raw json.RawMessage) []string {
	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return nil
	}

	var enabled []string
	result.ForEach(func(key, value gjson.Result) bool {
		if truthy(value) {
			enabled = append(enabled, key.String())
		}
		return true
	})
	return enabled
}

// FormatCapabilities 逗号连接的能力列表，为空时返回 "-"
func FormatCapabilities(raw json.RawMessage) string {
	enabled := EnabledCapabilities(raw)
	if len(enabled) == 0 {
		return EmptyPlaceholder
	}
	return strings.Join(enabled, ", ")
}

// CapabilitiesText 编辑表单中显示的缩进 JSON
func CapabilitiesText(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}
