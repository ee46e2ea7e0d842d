package layout

// ExpansionBehavior 是两端对齐时允许扩展的位置标志位。
type ExpansionBehavior uint8

const (
	AllowLeadingExpansion ExpansionBehavior = 1 << iota
	ForbidLeadingExpansion
	AllowTrailingExpansion
	ForbidTrailingExpansion
)

// DefaultExpansion 是单个文本段的默认扩展行为。
const DefaultExpansion = AllowTrailingExpansion | ForbidLeadingExpansion

// Expansion 记录扩展行为以及最终分到的水平扩展量。
type Expansion struct {
	Behavior   ExpansionBehavior `json:"behavior"`
	Horizontal float64           `json:"horizontal"`
}

// TextContext 是显示段对应的文本片段。
type TextContext struct {
	Start       int        `json:"start"`
	Length      int        `json:"length"`
	Content     string     `json:"content"`
	NeedsHyphen bool       `json:"needsHyphen,omitempty"`
	Expansion   *Expansion `json:"expansion,omitempty"`
}

// Run 是行关闭后不可变的显示段。
type Run struct {
	Box                      BoxID        `json:"box"`
	Kind                     ItemKind     `json:"kind"`
	Rect                     Rect         `json:"rect"`
	Text                     *TextContext `json:"text,omitempty"`
	ExpansionOpportunities   int          `json:"expansionOpportunities,omitempty"`
	CollapsedToVisuallyEmpty bool         `json:"collapsedToVisuallyEmpty,omitempty"`
	Line                     int          `json:"line"`
}

func (r Run) IsText() bool           { return r.Kind == ItemText }
func (r Run) IsBox() bool            { return r.Kind == ItemBox }
func (r Run) IsContainerStart() bool { return r.Kind == ItemContainerStart }
func (r Run) IsContainerEnd() bool   { return r.Kind == ItemContainerEnd }
func (r Run) IsLineBreak() bool {
	return r.Kind == ItemHardLineBreak || r.Kind == ItemSoftLineBreak
}

// Line 是一行的行盒以及它在 Runs 中覆盖的区间 [RunStart, RunEnd)。
type Line struct {
	Box      LineBox `json:"lineBox"`
	RunStart int     `json:"runStart"`
	RunEnd   int     `json:"runEnd"`
}

// InlineContent 是一个段落排版后的全部行与显示段。零值与 nil 都表示尚未排版。
type InlineContent struct {
	Lines []Line `json:"lines"`
	Runs  []Run  `json:"runs"`
}

// LineCount 返回行数。
func (c *InlineContent) LineCount() int {
	if c == nil {
		return 0
	}
	return len(c.Lines)
}

// FirstLineBaseline 返回首行基线位置，没有行时返回 0。
func (c *InlineContent) FirstLineBaseline() float64 {
	if c.LineCount() == 0 {
		return 0
	}
	return c.Lines[0].Box.AbsoluteBaseline()
}

// LastLineBaseline 返回末行基线位置，没有行时返回 0。
func (c *InlineContent) LastLineBaseline() float64 {
	if c.LineCount() == 0 {
		return 0
	}
	return c.Lines[len(c.Lines)-1].Box.AbsoluteBaseline()
}

// ContentHeight 返回首行顶部到末行底部的高度。
func (c *InlineContent) ContentHeight() float64 {
	if c.LineCount() == 0 {
		return 0
	}
	return c.Lines[len(c.Lines)-1].Box.Rect.Bottom() - c.Lines[0].Box.Rect.Top
}

// RunsFor 返回属于 box 的第一段连续显示段，找不到时返回 nil。
func (c *InlineContent) RunsFor(box BoxID) []Run {
	if c == nil {
		return nil
	}
	first, last := -1, 0
	for i, run := range c.Runs {
		if run.Box == box {
			if first < 0 {
				first = i
			}
			last = i
		} else if first >= 0 {
			break
		}
	}
	if first < 0 {
		return nil
	}
	return c.Runs[first : last+1]
}

// RunsForLine 返回第 i 行的显示段。
func (c *InlineContent) RunsForLine(i int) []Run {
	if c == nil || i < 0 || i >= len(c.Lines) {
		return nil
	}
	line := c.Lines[i]
	return c.Runs[line.RunStart:line.RunEnd]
}

// LineBoxForRun 返回第 i 个显示段所在的行盒。
func (c *InlineContent) LineBoxForRun(i int) (LineBox, bool) {
	if c == nil || i < 0 || i >= len(c.Runs) {
		return LineBox{}, false
	}
	line := c.Runs[i].Line
	if line < 0 || line >= len(c.Lines) {
		return LineBox{}, false
	}
	return c.Lines[line].Box, true
}

// RunsInRect 返回与 [top, bottom] 垂直方向相交的显示段下标。
func (c *InlineContent) RunsInRect(top, bottom float64) []int {
	if c == nil {
		return nil
	}
	var out []int
	for i, run := range c.Runs {
		if run.Rect.Bottom() < top || run.Rect.Top > bottom {
			continue
		}
		out = append(out, i)
	}
	return out
}

// PaintText 返回绘制时使用的文本，断字处追加连字符。
func (c *InlineContent) PaintText(run Run, tree *Tree) string {
	if run.Text == nil || run.Text.Length == 0 {
		return ""
	}
	if !run.Text.NeedsHyphen {
		return run.Text.Content
	}
	return run.Text.Content + styleOf(tree, run.Box).HyphenString
}
