// Package binding 把 JSON 数据插入 DSL 文本中的 ${path} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 替换 text 中的 ${a.b[0].c}；data 为空或路径不存在时保留占位符原文。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		val, ok := Lookup(data, path)
		if !ok {
			return match
		}
		return format(val)
	})
}

// Lookup 按点号与下标访问由 encoding/json 解码出的数据。
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := data
	for _, step := range splitPath(path) {
		var ok bool
		if step.index >= 0 {
			list, isList := current.([]any)
			ok = isList && step.index < len(list)
			if ok {
				current = list[step.index]
			}
		} else {
			obj, isObj := current.(map[string]any)
			if isObj {
				current, ok = obj[step.key]
			}
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

type pathStep struct {
	key   string
	index int // -1 表示按键访问
}

// splitPath 把 "items[1].name" 拆为 items、[1]、name；无法解析的下标会使查找失败。
func splitPath(path string) []pathStep {
	var steps []pathStep
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, pathStep{key: name, index: -1})
		}
		for rest != "" {
			idx, tail, found := strings.Cut(rest, "]")
			n, err := strconv.Atoi(idx)
			if !found || err != nil || n < 0 {
				return []pathStep{{key: "\x00invalid", index: -1}}
			}
			steps = append(steps, pathStep{index: n})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return steps
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
