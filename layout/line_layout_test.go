package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestLayoutWrapsAtWordBoundaries(t *testing.T) {
	cases := []struct {
		text  string
		width float64
		want  []string
	}{
		{"foo bar", 3, []string{"foo", "bar"}},
		{"foo bar", 7, []string{"foo bar"}},
		{"aa bb cc dd ee", 5, []string{"aa bb", "cc dd", "ee"}},
		// 单词比行宽时溢出而不是丢弃。
		{"abcdefgh ij", 3, []string{"abcdefgh", "ij"}},
	}
	for _, c := range cases {
		tree, content := layoutText(t, testStyle(), c.text, c.width)
		if diff := cmp.Diff(c.want, lineTexts(tree, content)); diff != "" {
			t.Fatalf("%q@%v 行内容不符 (-want +got):\n%s", c.text, c.width, diff)
		}
	}
}

func TestLayoutTrailingWhitespaceIsTrimmed(t *testing.T) {
	_, content := layoutText(t, testStyle(), "aa bb cc dd ee", 5)
	for i, line := range content.Lines {
		if line.Box.Rect.Width > 5 {
			t.Fatalf("第 %d 行宽度 %v 超出可用宽度", i, line.Box.Rect.Width)
		}
		runs := content.RunsForLine(i)
		last := runs[len(runs)-1]
		if last.Text != nil && last.Text.Content == " " && !last.CollapsedToVisuallyEmpty {
			t.Fatalf("第 %d 行行尾空白未被裁剪", i)
		}
	}
}

func TestLayoutBreakAllSplitsRemainder(t *testing.T) {
	style := testStyle()
	style.WordBreak = WordBreakBreakAll
	tree, content := layoutText(t, style, "abcdefgh", 3)
	if diff := cmp.Diff([]string{"abc", "def", "gh"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("break-all 行内容不符 (-want +got):\n%s", diff)
	}
	second := content.RunsForLine(1)[0]
	if second.Text.Start != 3 || second.Text.Length != 3 {
		t.Fatalf("第二行应从剩余部分开始: %+v", second.Text)
	}
}

func TestLayoutHyphenation(t *testing.T) {
	style := testStyle()
	style.FontSize = 2
	style.Hyphens = HyphensAuto
	style.Locale = language.English
	tree := NewTree(style)
	tree.AppendText(0, style, "hyphenation")

	opts := testOptions()
	opts.Hyphenator = stubHyphenator{positions: []int{2, 6}}
	ll, err := NewLineLayout(tree, opts)
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 8})
	if diff := cmp.Diff([]string{"hyphen-", "ation"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("断字后的行内容不符 (-want +got):\n%s", diff)
	}
	if got := content.Lines[0].Box.Rect.Width; got != 7 {
		t.Fatalf("首行宽度应包含连字符，期望 7，实际 %v", got)
	}
}

func TestLayoutLineBreaks(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	tree.AppendText(0, style, "a")
	tree.AppendLineBreak(0, style)
	tree.AppendText(0, style, "b")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, lineTexts(tree, ll.Layout(ParagraphConstraints{Width: 100}))); diff != "" {
		t.Fatalf("<br> 应强制换行 (-want +got):\n%s", diff)
	}

	pre := testStyle()
	pre.WhiteSpace = WhiteSpacePre
	tree, content := layoutText(t, pre, "a\nb", 100)
	if diff := cmp.Diff([]string{"a", "b"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("pre 模式下换行符应强制换行 (-want +got):\n%s", diff)
	}
}

func TestLayoutEmptyContent(t *testing.T) {
	_, content := layoutText(t, testStyle(), "", 10)
	if content.LineCount() != 1 {
		t.Fatalf("空文本应产生一行，实际 %d", content.LineCount())
	}
	if line := content.Lines[0].Box; !line.Empty || line.Rect.Height != 0 {
		t.Fatalf("空文本的行应视觉为空且高度为 0: %+v", line)
	}

	style := testStyle()
	tree := NewTree(style)
	tree.AppendInline(0, style, Geometry{})
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content = ll.Layout(ParagraphConstraints{Width: 10})
	if content.LineCount() != 1 || !content.Lines[0].Box.Empty {
		t.Fatalf("空 span 应产生一行视觉为空的行: %+v", content.Lines)
	}
}

func TestLayoutLineGeometry(t *testing.T) {
	_, content := layoutText(t, testStyle(), "foo bar", 3)
	if got := content.FirstLineBaseline(); got != 8 {
		t.Fatalf("首行基线期望 8，实际 %v", got)
	}
	if got := content.LastLineBaseline(); got != 18 {
		t.Fatalf("末行基线期望 18，实际 %v", got)
	}
	if got := content.ContentHeight(); got != 20 {
		t.Fatalf("内容高度期望 20，实际 %v", got)
	}
	for i := range content.Runs {
		box, ok := content.LineBoxForRun(i)
		if !ok || box != content.Lines[content.Runs[i].Line].Box {
			t.Fatalf("显示段 %d 的行盒不符", i)
		}
	}
	if got := content.RunsInRect(11, 20); len(got) == 0 || content.Runs[got[0]].Line != 1 {
		t.Fatalf("RunsInRect 应返回第二行的显示段: %v", got)
	}
}

func TestLayoutIntrusions(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	tree.AppendText(0, style, "aaaa bbbb")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 10, Intrusions: []Intrusion{{Bottom: 10, Left: 6}}})
	if diff := cmp.Diff([]string{"aaaa", "bbbb"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("浮动旁的行内容不符 (-want +got):\n%s", diff)
	}
	if content.Lines[0].Box.Rect.Left != 6 || content.Runs[0].Rect.Left != 6 {
		t.Fatalf("首行应从浮动右侧开始: %+v", content.Lines[0].Box.Rect)
	}
	if content.Lines[1].Box.Rect.Left != 0 {
		t.Fatalf("浮动结束后的行应恢复完整宽度: %+v", content.Lines[1].Box.Rect)
	}
}

func TestLayoutMovesBelowFloat(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	tree.AppendText(0, style, "abcdef")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 10, Intrusions: []Intrusion{{Bottom: 25, Left: 8}}})
	if content.LineCount() != 1 {
		t.Fatalf("期望 1 行，实际 %d", content.LineCount())
	}
	if rect := content.Lines[0].Box.Rect; rect.Top != 25 || rect.Left != 0 {
		t.Fatalf("放不下的内容应移到浮动下方: %+v", rect)
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	style := testStyle()
	style.TextAlign = TextAlignJustify
	tree := NewTree(style)
	tree.AppendText(0, style, "the quick brown fox jumps over the lazy dog")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	pc := ParagraphConstraints{Left: 3, Top: 5, Width: 12}
	first := ll.Layout(pc)
	second := ll.Layout(pc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("相同约束的两次排版结果不同 (-first +second):\n%s", diff)
	}
	if ll.Content() != second {
		t.Fatalf("Content 应返回最近一次排版结果")
	}
	// 两端对齐的非末行应填满可用宽度。
	for i := 0; i < first.LineCount()-1; i++ {
		runs := first.RunsForLine(i)
		right := 0.0
		for _, run := range runs {
			if !run.CollapsedToVisuallyEmpty {
				right = max(right, run.Rect.Right())
			}
		}
		if diff := cmp.Diff(15.0, right, approx); diff != "" {
			t.Fatalf("第 %d 行未填满 (-want +got):\n%s", i, diff)
		}
	}
}

func TestNewLineLayoutErrors(t *testing.T) {
	tree := NewTree(testStyle())
	opts := testOptions()
	opts.Enabled = false
	if _, err := NewLineLayout(tree, opts); !errors.Is(err, ErrDisabled) {
		t.Fatalf("关闭时应返回 ErrDisabled，实际 %v", err)
	}
	if _, err := NewLineLayout(tree, Options{Enabled: true}); err == nil {
		t.Fatalf("缺少测量后端时应报错")
	}
	if _, err := NewLineLayout(nil, testOptions()); err == nil {
		t.Fatalf("空树应报错")
	}
}

func TestLayoutNoWrapContent(t *testing.T) {
	style := testStyle()
	nowrap := style
	nowrap.WhiteSpace = WhiteSpaceNoWrap

	// 前面的空白提供了换行机会：nowrap 内容整体移到下一行。
	tree := NewTree(style)
	tree.AppendText(0, style, "foo ")
	tree.AppendText(0, nowrap, "nowrapcontent")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 8})
	if diff := cmp.Diff([]string{"foo", "nowrapcontent"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("nowrap 内容应推到下一行 (-want +got):\n%s", diff)
	}

	// nowrap 内部的空白不是换行机会。
	tree, content = layoutText(t, nowrap, "aaa bbb", 3)
	if diff := cmp.Diff([]string{"aaa bbb"}, lineTexts(tree, content)); diff != "" {
		t.Fatalf("nowrap 文本不应在空白处换行 (-want +got):\n%s", diff)
	}
}

func TestLayoutCollapsibleWhitespaceWithoutSimplifiedMeasuring(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	id := tree.AppendText(0, style, "a   b")
	tree.Box(id).SimplifiedMeasuring = false
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 100})
	if got := content.Lines[0].Box.Rect.Width; got != 3 {
		t.Fatalf("折叠后的空白只占一个字符宽，行宽期望 3，实际 %v", got)
	}
}

func TestLayoutCoversAllCharacters(t *testing.T) {
	texts := []string{
		"the  quick brown   fox jumps",
		"  leading and trailing  ",
		"abcdefgh ij",
	}
	for _, text := range texts {
		tree, content := layoutText(t, testStyle(), text, 6)
		box := tree.Box(1)

		// 折叠的空白只在显示段中保留一个字符。
		collapsed := 0
		for _, it := range SegmentText(box, fixedMeasurer{}) {
			if isCollapsible(tree, it) && it.Length > 1 {
				collapsed += it.Length - 1
			}
		}
		covered := 0
		next := 0
		for _, run := range content.Runs {
			if run.Text == nil {
				continue
			}
			if run.Text.Start < next {
				t.Fatalf("%q: 显示段重叠，起点 %d 早于 %d", text, run.Text.Start, next)
			}
			next = run.Text.Start + run.Text.Length
			covered += run.Text.Length
		}
		if covered+collapsed != len(box.Text) {
			t.Fatalf("%q: 显示段长度 %d 加折叠长度 %d 应等于文本长度 %d", text, covered, collapsed, len(box.Text))
		}
	}
}

func TestLayoutEmptyAfterTrim(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	first := tree.AppendInline(0, style, Geometry{})
	tree.AppendText(first, style, " ")
	tree.AppendInline(0, style, Geometry{})
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 10})
	if content.LineCount() != 1 {
		t.Fatalf("期望 1 行，实际 %d", content.LineCount())
	}
	line := content.Lines[0].Box
	if !line.Empty || line.Rect.Width != 0 || line.Rect.Height != 0 {
		t.Fatalf("<span> </span><span></span> 应产生视觉为空的行: %+v", line)
	}
}

func TestRunsFor(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	words := tree.AppendText(0, style, "aa bb")
	tail := tree.AppendText(0, style, "cc")
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	content := ll.Layout(ParagraphConstraints{Width: 100})

	runs := content.RunsFor(words)
	if len(runs) == 0 {
		t.Fatalf("应找到文本盒的显示段")
	}
	for _, run := range runs {
		if run.Box != words {
			t.Fatalf("RunsFor 返回了其他盒子的显示段: %+v", run)
		}
	}
	if got := content.RunsFor(tail); len(got) != 1 || got[0].Text.Content != "cc" {
		t.Fatalf("第二个文本盒的显示段不符: %+v", got)
	}
	if content.RunsFor(BoxID(99)) != nil {
		t.Fatalf("未知盒子应返回 nil")
	}
	var empty *InlineContent
	if empty.RunsFor(words) != nil {
		t.Fatalf("nil 结果应返回 nil")
	}
}
