package measure

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inline/layout"
)

func textBox(text string, letterSpacing float64) *layout.Box {
	style := layout.DefaultStyle()
	style.FontSize = 10
	style.LetterSpacing = letterSpacing
	tree := layout.NewTree(style)
	return tree.Box(tree.AppendText(0, style, text))
}

func TestMonospaceWidth(t *testing.T) {
	m := NewMonospace()
	cases := []struct {
		text string
		ls   float64
		want float64
	}{
		{"abc", 0, 18},
		{"漢字", 0, 24},
		{"e\u0301", 0, 6},
		{"ab", 1, 14},
	}
	for _, c := range cases {
		box := textBox(c.text, c.ls)
		got := m.Width(box, 0, len(box.Text))
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 宽度期望 %g，实际 %g", c.text, c.want, got)
		}
	}
}

func TestMonospaceSplitKeepsClusters(t *testing.T) {
	m := NewMonospace()
	box := textBox("abcdef", 0)
	n, w := m.Split(box, 0, 6, 36, 20)
	if n != 3 || math.Abs(w-18) > 1e-9 {
		t.Fatalf("期望 3 个字符 / 18，实际 %d / %g", n, w)
	}

	box = textBox("ae\u0301b", 0)
	n, _ = m.Split(box, 0, len(box.Text), 18, 12)
	if n != 3 {
		t.Fatalf("组合字符不应被拆开，期望 3 个 rune，实际 %d", n)
	}

	if n, w := m.Split(box, 0, len(box.Text), 18, 1); n != 0 || w != 0 {
		t.Fatalf("放不下任何字素时应返回 0，实际 %d / %g", n, w)
	}
}

func TestSplitGraphemes(t *testing.T) {
	got := SplitGraphemes("ke\u0301🇨🇳")
	want := []string{"k", "e\u0301", "🇨🇳"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("字素簇切分不符 (-want +got):\n%s", diff)
	}
}
