package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func segment(t *testing.T, style Style, text string) []Item {
	t.Helper()
	tree := NewTree(style)
	id := tree.AppendText(0, style, text)
	return SegmentText(tree.Box(id), fixedMeasurer{})
}

func TestSegmentWords(t *testing.T) {
	got := segment(t, testStyle(), "foo bar")
	want := []Item{
		{Kind: ItemText, Box: 1, Start: 0, Length: 3, TextKind: TextNonWhitespace, Width: 3, HasWidth: true},
		{Kind: ItemText, Box: 1, Start: 3, Length: 1, TextKind: TextWhitespace, Width: 1, HasWidth: true},
		{Kind: ItemText, Box: 1, Start: 4, Length: 3, TextKind: TextNonWhitespace, Width: 3, HasWidth: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("分段结果不符 (-want +got):\n%s", diff)
	}
}

func TestSegmentEmptyText(t *testing.T) {
	got := segment(t, testStyle(), "")
	want := []Item{{Kind: ItemText, Box: 1, TextKind: TextEmpty, HasWidth: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("空文本应产生唯一的空条目 (-want +got):\n%s", diff)
	}
	if !got[0].IsEmpty() {
		t.Fatalf("空条目 IsEmpty 应为 true")
	}
}

func TestSegmentWhitespaceModes(t *testing.T) {
	// 折叠模式下换行符属于空白，整段空白按一个空格测量。
	normal := segment(t, testStyle(), "a  \n b")
	if len(normal) != 3 || !normal[1].IsWhitespace() || normal[1].Length != 4 || normal[1].Width != 1 {
		t.Fatalf("normal 模式的空白段错误: %+v", normal)
	}

	pre := testStyle()
	pre.WhiteSpace = WhiteSpacePre
	got := segment(t, pre, "a\n  b")
	kinds := make([]ItemKind, len(got))
	for i, it := range got {
		kinds[i] = it.Kind
	}
	wantKinds := []ItemKind{ItemText, ItemSoftLineBreak, ItemText, ItemText}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("pre 模式条目种类不符 (-want +got):\n%s", diff)
	}
	// 保留空白时连续空白按实际长度测量。
	if got[2].Length != 2 || got[2].Width != 2 {
		t.Fatalf("pre 模式空白段应保留长度与宽度: %+v", got[2])
	}
}

func TestSegmentCoversText(t *testing.T) {
	text := "Hello, world!  foo-bar 漢字かな\tend"
	items := segment(t, testStyle(), text)
	pos := 0
	for _, it := range items {
		if it.Start != pos {
			t.Fatalf("条目不连续：期望起点 %d，实际 %+v", pos, it)
		}
		if it.Length == 0 {
			t.Fatalf("非空文本不应产生空条目: %+v", it)
		}
		pos = it.End()
	}
	if pos != len([]rune(text)) {
		t.Fatalf("条目未覆盖全部文本：%d/%d", pos, len([]rune(text)))
	}
}

func TestSegmentBreakOpportunities(t *testing.T) {
	texts := func(style Style, text string) []string {
		runes := []rune(text)
		var out []string
		for _, it := range segment(t, style, text) {
			out = append(out, string(runes[it.Start:it.End()]))
		}
		return out
	}

	if diff := cmp.Diff([]string{"foo-", "bar"}, texts(testStyle(), "foo-bar")); diff != "" {
		t.Fatalf("连字符后应可断行 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"漢", "字"}, texts(testStyle(), "漢字")); diff != "" {
		t.Fatalf("表意文字之间应可断行 (-want +got):\n%s", diff)
	}

	keepAll := testStyle()
	keepAll.WordBreak = WordBreakKeepAll
	if diff := cmp.Diff([]string{"漢字"}, texts(keepAll, "漢字")); diff != "" {
		t.Fatalf("keep-all 不应在字母之间断行 (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"a\u00a0b"}, texts(testStyle(), "a\u00a0b")); diff != "" {
		t.Fatalf("不换行空格两侧不可断 (-want +got):\n%s", diff)
	}
	nbsp := testStyle()
	nbsp.NBSPMode = NBSPModeSpace
	if diff := cmp.Diff([]string{"a", "\u00a0", "b"}, texts(nbsp, "a\u00a0b")); diff != "" {
		t.Fatalf("nbsp-mode: space 时不换行空格两侧可断 (-want +got):\n%s", diff)
	}
}

func TestBuildItemsOrder(t *testing.T) {
	style := testStyle()
	tree := NewTree(style)
	tree.AppendText(0, style, "a")
	span := tree.AppendInline(0, style, Geometry{})
	tree.AppendText(span, style, "b")
	tree.AppendLineBreak(0, style)
	tree.AppendAtomic(0, style, Geometry{ContentWidth: 2, ContentHeight: 2}, false)

	var got []ItemKind
	for _, it := range BuildItems(tree, fixedMeasurer{}) {
		got = append(got, it.Kind)
	}
	want := []ItemKind{ItemText, ItemContainerStart, ItemText, ItemContainerEnd, ItemHardLineBreak, ItemBox}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("条目顺序不符 (-want +got):\n%s", diff)
	}
}

func TestItemLeftRight(t *testing.T) {
	it := Item{Kind: ItemText, Box: 1, Start: 2, Length: 5, TextKind: TextNonWhitespace, Width: 5, HasWidth: true}
	left, right := it.Left(2), it.Right(3)
	if left.Start != 2 || left.Length != 2 || left.HasWidth {
		t.Fatalf("Left 错误: %+v", left)
	}
	if right.Start != 4 || right.Length != 3 || right.End() != it.End() {
		t.Fatalf("Right 错误: %+v", right)
	}
}
