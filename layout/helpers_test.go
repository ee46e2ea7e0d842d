package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/language"
)

// fixedMeasurer 让每个字符占 1mm（加 letter-spacing），ascent/descent 取字号的 0.8/0.2。
type fixedMeasurer struct{}

func (fixedMeasurer) advance(box *Box) float64 { return 1 + box.Style.LetterSpacing }

func (m fixedMeasurer) Width(box *Box, start, length int) float64 {
	return float64(length) * m.advance(box)
}

func (m fixedMeasurer) Split(box *Box, start, length int, _ float64, available float64) (int, float64) {
	adv := m.advance(box)
	n := 0
	for n < length && float64(n+1)*adv <= available {
		n++
	}
	return n, float64(n) * adv
}

func (fixedMeasurer) Metrics(style Style) FontMetrics {
	return FontMetrics{
		Ascent:      0.8 * style.FontSize,
		Descent:     0.2 * style.FontSize,
		SpaceWidth:  1 + style.LetterSpacing,
		HyphenWidth: 1,
	}
}

// stubHyphenator 对所有单词使用同一组断字位置。
type stubHyphenator struct {
	positions []int
}

func (h stubHyphenator) CanHyphenate(locale language.Tag) bool { return locale != language.Und }

func (h stubHyphenator) LastHyphenLocation(text []rune, before int, locale language.Tag) int {
	if !h.CanHyphenate(locale) {
		return 0
	}
	last := 0
	for _, p := range h.positions {
		if p < before && p < len(text) {
			last = p
		}
	}
	return last
}

var approx = cmpopts.EquateApprox(0, 1e-9)

// testStyle 返回 10mm 字号的样式：ascent 8、descent 2、每个字符 1mm。
func testStyle() Style {
	s := DefaultStyle()
	s.FontSize = 10
	return s
}

func testOptions() Options {
	return DefaultOptions(fixedMeasurer{})
}

// layoutText 对单个文本盒按宽度排版。
func layoutText(t testing.TB, style Style, text string, width float64) (*Tree, *InlineContent) {
	t.Helper()
	tree := NewTree(style)
	tree.AppendText(0, style, text)
	ll, err := NewLineLayout(tree, testOptions())
	if err != nil {
		t.Fatalf("创建排版器失败: %v", err)
	}
	return tree, ll.Layout(ParagraphConstraints{Width: width})
}

// lineTexts 返回每一行非空显示段拼接出的绘制文本。
func lineTexts(tree *Tree, content *InlineContent) []string {
	out := make([]string, 0, content.LineCount())
	for i := range content.Lines {
		text := ""
		for _, run := range content.RunsForLine(i) {
			if run.IsText() && !run.CollapsedToVisuallyEmpty {
				text += content.PaintText(run, tree)
			}
		}
		out = append(out, text)
	}
	return out
}
