package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inline/dsl"
)

// buildDoc 是测试辅助：用固定宽度的测量后端构建 DSL 文本。
func buildDoc(t *testing.T, src string, opts BuildOptions) *Result {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	if opts.Measurer == nil {
		opts.Measurer = fixedMeasurer{}
	}
	res, err := Build(doc, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func buildErr(t *testing.T, src string) error {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	_, err = Build(doc, BuildOptions{Measurer: fixedMeasurer{}})
	return err
}

// pageDoc 把段落包进一页 A4、四边 10mm 的文档。
func pageDoc(body string) string {
	return fmt.Sprintf("doc T v1 {\n  page A4 margin 10mm {\n%s\n  }\n}\n", body)
}

func fragmentTexts(p Paragraph) []string {
	var out []string
	for _, f := range p.Fragments {
		if f.Kind == FragmentText {
			out = append(out, f.Text)
		}
	}
	return out
}

func TestBuildParagraphLines(t *testing.T) {
	res := buildDoc(t, pageDoc(`    paragraph size 10mm width 8mm {
      "aaa bbb ccc"
    }`), BuildOptions{})

	if len(res.Pages) != 1 || len(res.Pages[0].Paragraphs) != 1 {
		t.Fatalf("期望 1 页 1 段，实际 %+v", res.Pages)
	}
	p := res.Pages[0].Paragraphs[0]
	if p.X != 10 || p.Y != 10 || p.Width != 8 || p.Height != 20 || len(p.Lines) != 2 {
		t.Fatalf("段落几何不符: x=%v y=%v w=%v h=%v lines=%d", p.X, p.Y, p.Width, p.Height, len(p.Lines))
	}
	if diff := cmp.Diff([]string{"aaa bbb", "ccc"}, fragmentTexts(p)); diff != "" {
		t.Fatalf("片段文本不符 (-want +got):\n%s", diff)
	}
	var baselines []float64
	for _, f := range p.Fragments {
		baselines = append(baselines, f.Baseline)
	}
	if diff := cmp.Diff([]float64{18, 28}, baselines, approx); diff != "" {
		t.Fatalf("基线位置不符 (-want +got):\n%s", diff)
	}
	if p.Debug != nil {
		t.Fatalf("未开启调试时不应输出 debug")
	}
	if res.Meta.Creator != "inline" {
		t.Fatalf("默认 creator 应为 inline，实际 %q", res.Meta.Creator)
	}
	if _, ok := res.Resources.Fonts["Body"]; !ok {
		t.Fatalf("未声明字体时应注册默认 Body 字体")
	}
}

func TestBuildAlignment(t *testing.T) {
	res := buildDoc(t, pageDoc(`    paragraph size 10mm width 8mm align right {
      "ab"
    }
    paragraph size 10mm width 8mm align justify {
      "aaa bbb ccc"
    }`), BuildOptions{})

	right := res.Pages[0].Paragraphs[0].Fragments[0]
	if right.X != 16 {
		t.Fatalf("右对齐片段 x 期望 16，实际 %v", right.X)
	}
	justified := res.Pages[0].Paragraphs[1].Fragments[0]
	if justified.Width != 8 || justified.Expansion != 1 || justified.Opportunities != 1 {
		t.Fatalf("两端对齐片段不符: %+v", justified)
	}
	// 第二段从第一段底部加段间距开始。
	if got := res.Pages[0].Paragraphs[1].Y; got != 10+10+paragraphSpacing {
		t.Fatalf("第二段 y 期望 %v，实际 %v", 10+10+paragraphSpacing, got)
	}
}

func TestBuildPaginatesByLine(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("aaa ", 25))
	src := fmt.Sprintf(`doc T v1 {
  page A5 margin 10mm {
    paragraph size 10mm width 3mm {
      "%s"
    }
  }
}
`, words)
	res := buildDoc(t, src, BuildOptions{Debug: DebugOptions{LineBoxes: true}})

	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d", len(res.Pages))
	}
	first, second := res.Pages[0], res.Pages[1]
	if n := len(first.Paragraphs[0].Lines); n != 19 {
		t.Fatalf("第一页应容纳 19 行，实际 %d", n)
	}
	p := second.Paragraphs[0]
	if len(p.Lines) != 6 || p.Y != 10 {
		t.Fatalf("第二页应从顶部放置剩余 6 行: lines=%d y=%v", len(p.Lines), p.Y)
	}
	if len(first.Guides) != 19 || len(second.Guides) != 6 {
		t.Fatalf("行盒调试框数量不符: %d/%d", len(first.Guides), len(second.Guides))
	}
}

func TestBuildPageBreakAndMargin(t *testing.T) {
	res := buildDoc(t, `doc T v1 {
  page A4 landscape margin 10mm 20mm {
    paragraph size 10mm {
      "one"
    }
    page-break
    paragraph size 10mm {
      "two"
    }
  }
}
`, BuildOptions{})
	if len(res.Pages) != 2 {
		t.Fatalf("page-break 后应有 2 页，实际 %d", len(res.Pages))
	}
	page := res.Pages[0]
	if page.Width != 297 || page.Height != 210 {
		t.Fatalf("横向 A4 尺寸不符: %vx%v", page.Width, page.Height)
	}
	if diff := cmp.Diff(Margin{Top: 10, Right: 20, Bottom: 10, Left: 20}, page.Margin); diff != "" {
		t.Fatalf("边距不符 (-want +got):\n%s", diff)
	}
	if got := res.Pages[1].Paragraphs[0].Fragments[0].Text; got != "two" {
		t.Fatalf("第二页内容不符: %q", got)
	}
}

func TestBuildRawUnitsDebug(t *testing.T) {
	src := pageDoc(`    paragraph size 12pt line-height 1.5x {
      "x"
    }`)
	res := buildDoc(t, src, BuildOptions{Debug: DebugOptions{RawUnits: true}})
	got := res.Pages[0].Paragraphs[0].Debug
	want := &ParagraphDebug{
		RawUnits: &RawUnits{
			FontSize:   &RawLengthJSON{Value: 12, Unit: "pt"},
			LineHeight: &RawLineHeightJSON{Kind: "factor", Factor: 1.5},
		},
		Items: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("debug.rawUnits 不符 (-want +got):\n%s", diff)
	}
	if lh := res.Pages[0].Paragraphs[0].Lines[0].Rect.Height; !cmp.Equal(lh, 12*PtToMm*1.5, approx) {
		t.Fatalf("行高应为 1.5 倍字号，实际 %v", lh)
	}
}

func TestBuildInterpolatesData(t *testing.T) {
	src := `doc T v1 {
  meta {
    title: "For ${name}"
  }
  page A4 margin 10mm {
    paragraph size 10mm {
      "Hi ${name}"
    }
  }
}
`
	res := buildDoc(t, src, BuildOptions{Data: map[string]any{"name": "Ada"}})
	if res.Meta.Title != "For Ada" {
		t.Fatalf("元信息占位符未替换: %q", res.Meta.Title)
	}
	if diff := cmp.Diff([]string{"Hi Ada"}, fragmentTexts(res.Pages[0].Paragraphs[0])); diff != "" {
		t.Fatalf("文本占位符未替换 (-want +got):\n%s", diff)
	}
}

func TestBuildAtomicBoxes(t *testing.T) {
	res := buildDoc(t, pageDoc(`    paragraph size 10mm {
      "ab"
      box width 4mm height 3mm fill #FF0000
    }`), BuildOptions{})
	var box *Fragment
	for i, f := range res.Pages[0].Paragraphs[0].Fragments {
		if f.Kind == FragmentBox {
			box = &res.Pages[0].Paragraphs[0].Fragments[i]
		}
	}
	if box == nil {
		t.Fatalf("缺少盒子片段")
	}
	// 盒子底边坐在基线（y=18）上。
	if box.X != 12 || box.Y != 15 || box.Width != 4 || box.Height != 3 {
		t.Fatalf("盒子几何不符: %+v", box)
	}
	if diff := cmp.Diff(&Color{R: 255}, box.Fill); diff != "" {
		t.Fatalf("填充色不符 (-want +got):\n%s", diff)
	}
}

func TestBuildInlineBlock(t *testing.T) {
	res := buildDoc(t, pageDoc(`    paragraph size 10mm {
      "a"
      inline-block width 6mm {
        "xy"
      }
    }`), BuildOptions{})
	frags := res.Pages[0].Paragraphs[0].Fragments
	if len(frags) != 3 {
		t.Fatalf("期望 3 个片段（文本、inline-block、内部文本），实际 %d", len(frags))
	}
	block, inner := frags[1], frags[2]
	if block.Kind != FragmentBox || block.X != 11 || block.Y != 10 || block.Width != 6 || block.Height != 10 {
		t.Fatalf("inline-block 片段不符: %+v", block)
	}
	if inner.Text != "xy" || inner.X != 11 || inner.Baseline != 18 {
		t.Fatalf("inline-block 内部文本应与外部基线对齐: %+v", inner)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, BuildOptions{Measurer: fixedMeasurer{}}); err == nil {
		t.Fatalf("空文档应报错")
	}
	doc, err := dsl.ParseString(pageDoc(`    paragraph { "x" }`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if _, err := Build(doc, BuildOptions{}); err == nil {
		t.Fatalf("缺少测量后端应报错")
	}

	cases := []struct {
		name string
		src  string
		want string
	}{
		{"缺少 page", "doc T v1 {\n  meta {\n    title: \"x\"\n  }\n}\n", "page"},
		{"纸张尺寸", "doc T v1 {\n  page B9 {\n  }\n}\n", "B9"},
		{"盒子缺少尺寸", pageDoc("    paragraph {\n      box fill #000\n    }"), "box"},
		{"图片未定义", pageDoc("    paragraph {\n      image Logo\n    }"), "Logo"},
		{"未知命令", pageDoc("    paragraph {\n      table\n    }"), "table"},
		{"样式取值", pageDoc("    paragraph white-space sideways {\n      \"x\"\n    }"), "white-space"},
		{"样式循环继承", "doc T v1 {\n  resources {\n    style A extends B {\n      size: 1pt\n    }\n    style B extends A {\n      size: 2pt\n    }\n  }\n  page A4 {\n  }\n}\n", "循环"},
	}
	for _, c := range cases {
		err := buildErr(t, c.src)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: 期望包含 %q 的错误，实际 %v", c.name, c.want, err)
		}
	}
}

func TestParseArgs(t *testing.T) {
	ident := func(v string) *dsl.Lexeme { return &dsl.Lexeme{Type: "Ident", Value: v} }
	number := func(v string) *dsl.Lexeme { return &dsl.Lexeme{Type: "Number", Value: v} }
	str := func(v string) *dsl.Lexeme { return &dsl.Lexeme{Type: "String", Value: v} }

	cases := []struct {
		name       string
		args       []*dsl.Lexeme
		allowStyle bool
		style      string
		attrs      map[string]string
	}{
		{"样式名加属性", []*dsl.Lexeme{ident("Body"), ident("width"), number("50%")}, true, "Body", map[string]string{"width": "50%"}},
		{"只有属性", []*dsl.Lexeme{ident("width"), number("5mm")}, true, "", map[string]string{"width": "5mm"}},
		{"首参不是标识符", []*dsl.Lexeme{str("x")}, true, "", map[string]string{}},
		{"不允许样式名", []*dsl.Lexeme{ident("a"), ident("b"), number("1")}, false, "", map[string]string{"a": "b"}},
	}
	for _, c := range cases {
		style, attrs := parseArgs(c.args, c.allowStyle)
		if style != c.style {
			t.Fatalf("%s: 样式名期望 %q，实际 %q", c.name, c.style, style)
		}
		if diff := cmp.Diff(c.attrs, attrs); diff != "" {
			t.Fatalf("%s: 属性不符 (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	before, after, err := parseHyphenLimits("auto 3")
	if err != nil || before != 0 || after != 3 {
		t.Fatalf("断字限制解析错误: %d %d %v", before, after, err)
	}
	if _, _, err := parseHyphenLimits("x"); err == nil {
		t.Fatalf("非法断字限制应报错")
	}

	got, err := parseIntrusions(map[string]string{"float-left": "20mm 12mm", "float-right": "1cm 5mm"})
	if err != nil {
		t.Fatalf("浮动带解析失败: %v", err)
	}
	want := []Intrusion{{Bottom: 12, Left: 20}, {Bottom: 5, Right: 10}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("浮动带不符 (-want +got):\n%s", diff)
	}
	if _, err := parseIntrusions(map[string]string{"float-left": "20mm"}); err == nil {
		t.Fatalf("缺少高度的浮动带应报错")
	}

	if c, err := parseColor("#0F62FE"); err != nil || c != (Color{R: 15, G: 98, B: 254}) {
		t.Fatalf("颜色解析错误: %+v %v", c, err)
	}
	if c, _ := parseColor("#abc"); c != (Color{R: 0xaa, G: 0xbb, B: 0xcc}) {
		t.Fatalf("三位颜色解析错误: %+v", c)
	}
}
