package binding

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(src), &data); err != nil {
		t.Fatalf("解析 JSON 失败: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada"},"items":[{"qty":3},{"qty":2.5}],"empty":null}`)
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, ${user.name}!", "Hello, Ada!"},
		{"${items[0].qty} + ${ items[1].qty }", "3 + 2.5"},
		{"${missing.path}", "${missing.path}"},
		{"${items[9].qty}", "${items[9].qty}"},
		{"${items[x]}", "${items[x]}"},
		{"[${empty}]", "[]"},
		{"plain text", "plain text"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("Interpolate(%q) 期望 %q，实际 %q", c.in, c.want, got)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Fatalf("没有数据时应保留占位符，实际 %q", got)
	}
}

func TestLookupNested(t *testing.T) {
	data := decode(t, `{"grid":[[1,2],[3,4]]}`)
	v, ok := Lookup(data, "grid[1][0]")
	if !ok || v.(float64) != 3 {
		t.Fatalf("期望 3，实际 %v (%v)", v, ok)
	}
}
