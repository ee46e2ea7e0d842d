package layout

import "math"

// Rect 是逻辑坐标下的矩形（mm）。
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Baseline 保存基线之上与之下的高度。
type Baseline struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height 返回 ascent+descent。
func (b Baseline) Height() float64 { return b.Ascent + b.Descent }

// LineBox 是一行的整体几何信息。
type LineBox struct {
	Rect           Rect     `json:"rect"`
	Baseline       Baseline `json:"baseline"`
	BaselineOffset float64  `json:"baselineOffset"`
	// Empty 表示该行在视觉上为空（例如只有被折叠的空白）。
	Empty bool `json:"empty"`
}

func newLineBox(rect Rect, baseline Baseline, baselineOffset float64) LineBox {
	return LineBox{Rect: rect, Baseline: baseline, BaselineOffset: baselineOffset, Empty: true}
}

// AbsoluteBaseline 返回基线在格式化上下文中的位置。
func (l LineBox) AbsoluteBaseline() float64 { return l.Rect.Top + l.BaselineOffset }

func (l *LineBox) expandHorizontally(delta float64) { l.Rect.Width += delta }
func (l *LineBox) shrinkHorizontally(delta float64) { l.Rect.Width -= delta }
func (l *LineBox) moveHorizontally(delta float64)   { l.Rect.Left += delta }
func (l *LineBox) shrinkVertically(delta float64)   { l.Rect.Height -= delta }

func (l *LineBox) setHeightIfGreater(height float64) {
	if height > l.Rect.Height {
		l.Rect.Height = height
	}
}

func (l *LineBox) setBaselineOffsetIfGreater(offset float64) {
	l.BaselineOffset = math.Max(offset, l.BaselineOffset)
}

func (l *LineBox) setAscentIfGreater(ascent float64) {
	if ascent < l.Baseline.Ascent {
		return
	}
	l.setBaselineOffsetIfGreater(ascent)
	l.Baseline.Ascent = ascent
}

func (l *LineBox) setDescentIfGreater(descent float64) {
	if descent < l.Baseline.Descent {
		return
	}
	l.Baseline.Descent = descent
}

func (l *LineBox) resetDescent() { l.Baseline.Descent = 0 }

func (l *LineBox) resetBaseline() {
	l.BaselineOffset = 0
	l.Baseline = Baseline{}
}
