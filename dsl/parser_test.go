package dsl_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inline/dsl"
)

const sampleDSL = `
doc Sample v1 {
  meta {
    title: "Inline"
    keywords: [
      "layout"
      "text"
    ]
    creator: inline v1
  }

  resources {
    font Body {
      src: "embed:goregular"
    }

    color Accent = #0F62FE
    style Emph extends Base {
      font: Bold
    }
  }

  page A4 portrait margin 18mm {
    paragraph Body width 50% align justify {
      "Hello " span Emph color Accent { "world" } "!"
      br
      "second line"
    }
    space 4mm
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if doc.Name != "Sample" || doc.Version != "v1" {
		t.Fatalf("文档头错误: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("期望 3 个段落，实际 %d", len(doc.Sections))
	}

	meta := doc.Sections[0].Meta
	if meta == nil || len(meta.Block.Statements) != 3 {
		t.Fatalf("meta 段落缺失或语句数量错误")
	}
	title := meta.Block.Statements[0].Assignment
	if title == nil || string(*title.Value.String) != "Inline" {
		t.Fatalf("title 赋值错误: %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("keywords 应为两个元素的数组")
	}
	creator := meta.Block.Statements[2].Assignment
	if creator == nil || creator.Value.Expr == nil {
		t.Fatalf("creator 应被解析为表达式")
	}
	if got := tokensToString(creator.Value.Expr.Parts); got != "inline v1" {
		t.Fatalf("表达式 token 错误: %s", got)
	}

	resources := doc.Sections[1].Resources
	if resources == nil {
		t.Fatalf("resources 段落缺失")
	}
	color := resources.Block.Statements[1].Command
	if color == nil || color.Name != "color" {
		t.Fatalf("期望 color 命令，实际 %+v", resources.Block.Statements[1])
	}
	if last := color.Args[len(color.Args)-1]; last.Type != "Color" || last.Value != "#0F62FE" {
		t.Fatalf("颜色参数错误: %+v", last)
	}

	page := doc.Sections[2].Page
	if page == nil {
		t.Fatalf("page 段落缺失")
	}
	if page.Spec.Size != "A4" {
		t.Fatalf("期望 A4，实际 %s", page.Spec.Size)
	}
	if got := tokensToString(page.Spec.Params); got != "portrait margin 18mm" {
		t.Fatalf("页面参数错误: %s", got)
	}
	if len(page.Block.Statements) != 2 {
		t.Fatalf("page 内应有 2 条语句，实际 %d", len(page.Block.Statements))
	}

	para := page.Block.Statements[0].Command
	if para == nil || para.Name != "paragraph" {
		t.Fatalf("期望 paragraph 命令，实际 %+v", page.Block.Statements[0])
	}
	if got := tokensToString(para.Args); got != "Body width 50% align justify" {
		t.Fatalf("paragraph 参数错误: %s", got)
	}

	var kinds []string
	for _, stmt := range para.Block.Statements {
		switch {
		case stmt.Text != nil:
			kinds = append(kinds, "text:"+string(stmt.Text.Value))
		case stmt.Command != nil:
			kinds = append(kinds, "cmd:"+stmt.Command.Name)
		}
	}
	want := []string{"text:Hello ", "cmd:span", "text:!", "cmd:br", "text:second line"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("段落语句序列不符 (-want +got):\n%s", diff)
	}

	span := para.Block.Statements[1].Command
	if span.Block == nil || len(span.Block.Statements) != 1 || string(span.Block.Statements[0].Text.Value) != "world" {
		t.Fatalf("span 子块错误: %+v", span.Block)
	}
	if span.Pos.Line == 0 {
		t.Fatalf("命令应记录行号")
	}
}

func TestParseNegativeLengthAndEscapes(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  page A5 {
    paragraph letter-spacing -0.2pt { "a\tb\u00a0c" }
  }
}`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	para := doc.Sections[0].Page.Block.Statements[0].Command
	if len(para.Args) != 2 || para.Args[1].Type != "Number" || para.Args[1].Value != "-0.2pt" {
		t.Fatalf("负长度参数错误: %+v", para.Args)
	}
	if got := string(para.Block.Statements[0].Text.Value); got != "a\tb\u00a0c" {
		t.Fatalf("转义未处理: %q", got)
	}
}

func TestParseError(t *testing.T) {
	_, err := dsl.ParseString(`doc T v1 { page A4 { paragraph { "unterminated }`)
	if err == nil {
		t.Fatalf("未闭合的字符串应当报错")
	}
	if !strings.Contains(err.Error(), "解析 DSL 失败") {
		t.Fatalf("错误信息缺少前缀: %v", err)
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
