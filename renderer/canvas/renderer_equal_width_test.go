package canvasrenderer

import (
	"fmt"
	"testing"

	"github.com/ByLCY/inline/dsl"
	"github.com/ByLCY/inline/layout"
)

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenLineBreak(t *testing.T) {
	r := NewRenderer(".")
	first := "SAMPLEAA"

	style := layout.DefaultStyle()
	style.Font = layout.FontResource{Name: "Body", Src: "embed:goregular", Family: "Body"}
	tree := layout.NewTree(style)
	box := tree.Box(tree.AppendText(0, style, first))
	limit := r.Width(box, 0, len(box.Text))
	if limit <= 0 {
		t.Fatalf("测量宽度无效: %g", limit)
	}

	src := fmt.Sprintf(`doc T v1 {
  page A4 {
    paragraph width %gmm {
      %q
      br
      "SAMPLEBB"
    }
  }
}`, limit, first)
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	res, err := layout.Build(doc, layout.BuildOptions{Measurer: r})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	para := res.Pages[0].Paragraphs[0]
	if got := len(para.Lines); got != 2 {
		t.Fatalf("期望 2 行且没有空行，实际 %d", got)
	}
	var texts []string
	for _, f := range para.Fragments {
		if f.Kind == layout.FragmentText {
			texts = append(texts, f.Text)
		}
	}
	if len(texts) != 2 || texts[0] != first || texts[1] != "SAMPLEBB" {
		t.Fatalf("行内容不符: %q", texts)
	}
}
