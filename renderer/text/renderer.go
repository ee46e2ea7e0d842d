// Package textrenderer 把布局结果输出为等宽字符网格，用于终端预览与快照测试。
package textrenderer

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/inline/layout"
	"github.com/ByLCY/inline/renderer"
)

// Renderer 按 CellWidth（mm）把水平坐标映射为列。
type Renderer struct {
	CellWidth float64
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 返回单元格宽度为 0.6 倍 12pt 的渲染器，与 measure.Monospace 的默认值一致。
func NewRenderer() *Renderer {
	return &Renderer{CellWidth: 0.6 * 12 * layout.PtToMm}
}

// Render 每个行盒输出一行，页与页之间以换页符分隔。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if r.CellWidth <= 0 {
		return nil, fmt.Errorf("单元格宽度必须为正数，实际 %g", r.CellWidth)
	}
	var buf bytes.Buffer
	for i, page := range result.Pages {
		if i > 0 {
			buf.WriteString("\f\n")
		}
		for _, para := range page.Paragraphs {
			for _, line := range para.Lines {
				buf.WriteString(strings.TrimRight(r.renderLine(para, line), " "))
				buf.WriteByte('\n')
			}
		}
	}
	return buf.Bytes(), nil
}

// renderLine 收集基线落在行盒内的片段，按 x 排序后写入网格。
func (r *Renderer) renderLine(para layout.Paragraph, line layout.LineBox) string {
	var frags []layout.Fragment
	for _, f := range para.Fragments {
		anchor := f.Baseline
		if f.Kind != layout.FragmentText {
			anchor = f.Y + f.Height/2
		}
		if anchor >= line.Rect.Top && anchor <= line.Rect.Bottom() {
			frags = append(frags, f)
		}
	}
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var sb strings.Builder
	col := 0
	for _, f := range frags {
		target := int(math.Round((f.X - para.X) / r.CellWidth))
		if target > col {
			sb.WriteString(strings.Repeat(" ", target-col))
			col = target
		} else if col > 0 && target < col && f.Kind == layout.FragmentText {
			// 比例字体测量时片段可能重叠，保留一个空格分隔。
			sb.WriteByte(' ')
			col++
		}
		text := f.Text
		if f.Kind != layout.FragmentText {
			text = boxGlyph(f, r.CellWidth)
		}
		sb.WriteString(text)
		col += runewidth.StringWidth(text)
	}
	return sb.String()
}

func boxGlyph(f layout.Fragment, cell float64) string {
	n := max(int(math.Round(f.Width/cell)), 2)
	if f.Kind == layout.FragmentImage {
		return "[" + strings.Repeat("#", n-2) + "]"
	}
	return "[" + strings.Repeat(" ", n-2) + "]"
}
