// Package measure 提供不依赖字体文件的测量后端，用于测试与终端预览。
package measure

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/inline/layout"
)

// Monospace 把每个字素簇按终端单元格宽度测量：半角 1 格，全角 2 格。
type Monospace struct {
	// Cell 是单个单元格宽度相对字号的倍数。
	Cell    float64
	Ascent  float64
	Descent float64
}

// NewMonospace 返回 0.6em 单元格、0.8/0.2 上下伸部的测量器。
func NewMonospace() *Monospace {
	return &Monospace{Cell: 0.6, Ascent: 0.8, Descent: 0.2}
}

var _ layout.Measurer = (*Monospace)(nil)

// Width 实现 layout.Measurer。
func (m *Monospace) Width(box *layout.Box, start, length int) float64 {
	text, ok := slice(box, start, length)
	if !ok {
		return 0
	}
	var w float64
	for _, g := range SplitGraphemes(text) {
		w += m.clusterWidth(g, box.Style)
	}
	return w
}

// Split 返回不超过 available 的最长字素簇前缀（rune 数）及其宽度。
func (m *Monospace) Split(box *layout.Box, start, length int, _ float64, available float64) (int, float64) {
	text, ok := slice(box, start, length)
	if !ok {
		return 0, 0
	}
	n, w := 0, 0.0
	for _, g := range SplitGraphemes(text) {
		cw := m.clusterWidth(g, box.Style)
		if w+cw > available {
			break
		}
		w += cw
		n += len([]rune(g))
	}
	return n, w
}

// Metrics 实现 layout.Measurer。
func (m *Monospace) Metrics(style layout.Style) layout.FontMetrics {
	size := style.FontSize
	return layout.FontMetrics{
		Ascent:      m.Ascent * size,
		Descent:     m.Descent * size,
		SpaceWidth:  m.Cell*size + style.LetterSpacing,
		HyphenWidth: m.Cell * size,
	}
}

func (m *Monospace) clusterWidth(g string, style layout.Style) float64 {
	cells := runewidth.StringWidth(g)
	if cells == 0 && g == "\t" {
		cells = 1
	}
	return float64(cells)*m.Cell*style.FontSize + style.LetterSpacing
}

func slice(box *layout.Box, start, length int) (string, bool) {
	if box == nil || length <= 0 || start < 0 || start >= len(box.Text) {
		return "", false
	}
	end := min(start+length, len(box.Text))
	return string(box.Text[start:end]), true
}

// SplitGraphemes 按 UAX #29 把文本切分为字素簇。
func SplitGraphemes(text string) []string {
	var out []string
	tokens := graphemes.FromString(text)
	for tokens.Next() {
		out = append(out, tokens.Value())
	}
	return out
}
