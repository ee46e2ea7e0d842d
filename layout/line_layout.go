package layout

import (
	"errors"
	"math"
)

// Intrusion 是预先定位的浮动带：在 [Top, Bottom) 之间从左右两侧占用的宽度。
type Intrusion struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// ParagraphConstraints 是一个段落的排版约束。
type ParagraphConstraints struct {
	Left       float64
	Top        float64
	Width      float64
	Intrusions []Intrusion
}

// LineLayout 驱动一个段落的逐行排版。
type LineLayout struct {
	tree    *Tree
	opts    Options
	items   []Item
	breaker *LineBreaker
	content *InlineContent
}

// NewLineLayout 为段落根创建排版器，条目只在此处构建一次。
func NewLineLayout(tree *Tree, opts Options) (*LineLayout, error) {
	if !opts.Enabled {
		return nil, ErrDisabled
	}
	if tree == nil || tree.Root() == nil {
		return nil, errors.New("layout: 段落树为空")
	}
	if opts.Measurer == nil {
		return nil, errors.New("layout: 缺少测量后端")
	}
	return &LineLayout{
		tree:    tree,
		opts:    opts,
		items:   BuildItems(tree, opts.Measurer),
		breaker: NewLineBreaker(tree, opts),
	}, nil
}

// Items 返回段落的行内条目序列。
func (l *LineLayout) Items() []Item { return l.items }

// Content 返回最近一次排版的结果，未排版时为 nil。
func (l *LineLayout) Content() *InlineContent { return l.content }

// lineEnd 描述一行结束后下一行从哪里继续。
type lineEnd struct {
	next int
	// leading 非 nil 时代替 items[next]，即上一行拆分剩下的部分。
	leading  *Item
	lastLine bool
}

// Layout 按约束排版整个段落。相同输入与约束总是产生相同结果。
func (l *LineLayout) Layout(pc ParagraphConstraints) *InlineContent {
	root := l.tree.Root()
	rootMetrics := l.opts.Measurer.Metrics(root.Style)
	lineHeight := root.Style.ComputedLineHeight(rootMetrics)
	strut := HalfLeading(rootMetrics, lineHeight, l.opts.PixelSize)

	builder := NewLineBuilder(l.tree, root.Style.TextAlign, l.opts)
	result := &InlineContent{}
	top := pc.Top
	pos := lineEnd{}
	for pos.next < len(l.items) || pos.leading != nil {
		left, right, constrained, below := intrusionsAt(pc.Intrusions, top, lineHeight)
		var hb *HeightAndBaseline
		if !l.opts.SkipAlignment {
			s := strut
			hb = &HeightAndBaseline{Height: lineHeight, BaselineOffset: strut.Ascent, Strut: &s}
		}
		builder.Initialize(Constraints{
			Left:               pc.Left,
			Top:                top,
			AvailableWidth:     pc.Width,
			ConstrainedByFloat: constrained,
			HeightAndBaseline:  hb,
		})
		if left > 0 {
			builder.MoveLogicalLeft(left)
		}
		if right > 0 {
			builder.MoveLogicalRight(right)
		}

		end := l.layoutLine(builder, pos)
		committed := builder.HasContent()
		runs := builder.Close(end.lastLine)
		if !committed && constrained && below > top {
			// 浮动旁放不下任何内容，移到浮动下方重试。
			top = below
			continue
		}

		lineBox := builder.LineBox()
		index := len(result.Lines)
		start := len(result.Runs)
		for i := range runs {
			runs[i].Line = index
		}
		result.Runs = append(result.Runs, runs...)
		result.Lines = append(result.Lines, Line{Box: lineBox, RunStart: start, RunEnd: len(result.Runs)})
		top = lineBox.Rect.Bottom()
		pos = end
	}
	l.content = result
	return result
}

// intrusionsAt 返回与 [top, top+height) 相交的浮动在左右两侧的最大占用，以及它们中最靠上的底边。
func intrusionsAt(intrusions []Intrusion, top, height float64) (left, right float64, constrained bool, below float64) {
	below = math.Inf(1)
	for _, in := range intrusions {
		if top >= in.Bottom || top+math.Max(height, 0) < in.Top {
			continue
		}
		constrained = true
		left = math.Max(left, in.Left)
		right = math.Max(right, in.Right)
		below = math.Min(below, in.Bottom)
	}
	if !constrained {
		below = top
	}
	return left, right, constrained, below
}

func (l *LineLayout) layoutLine(b *LineBuilder, pos lineEnd) lineEnd {
	content := NewContent(l.tree)
	for i := pos.next; i < len(l.items); i++ {
		item := l.items[i]
		if i == pos.next && pos.leading != nil {
			item = *pos.leading
		}
		if item.IsLineBreak() {
			if end, done := l.commitContent(b, content); done {
				return end
			}
			b.Append(item, 0)
			return lineEnd{next: i + 1, lastLine: i+1 >= len(l.items)}
		}
		if content.IsAtContentBoundary(item) {
			if end, done := l.commitContent(b, content); done {
				return end
			}
		}
		content.Append(item, i, l.itemWidth(item))
	}
	if end, done := l.commitContent(b, content); done {
		return end
	}
	return lineEnd{next: len(l.items), lastLine: true}
}

// commitContent 让断行器决定候选内容的去留；返回 true 表示本行已结束。
func (l *LineLayout) commitContent(b *LineBuilder, content *Content) (lineEnd, bool) {
	if content.IsEmpty() {
		return lineEnd{}, false
	}
	status := LineStatus{
		AvailableWidth:                   b.AvailableWidth(),
		TrimmableWidth:                   b.TrailingTrimmableWidth(),
		LineHasFullyTrimmableTrailingRun: b.IsTrailingRunFullyTrimmable(),
		LineIsEmpty:                      b.IsVisuallyEmpty() && !b.HasIntrusiveFloat(),
		LineEndsAtWrapOpportunity:        b.EndsAtWrapOpportunity(),
	}
	decision := l.breaker.BreakingContext(content, status)
	runs := content.Runs()

	if decision.Rule == Push && !b.HasContent() && !b.HasIntrusiveFloat() {
		// 空行上没有可推的地方，内容只能溢出。
		decision = BreakingContext{Rule: Keep}
	}

	switch decision.Rule {
	case Keep:
		for _, run := range runs {
			l.commitRun(b, run)
		}
		content.Reset()
		return lineEnd{}, false

	case Split:
		partial := decision.Partial
		if partial == nil || partial.RunIndex < 0 || partial.RunIndex >= len(runs) {
			assert(false, "commitContent: split without partial content")
			for _, run := range runs {
				l.commitRun(b, run)
			}
			content.Reset()
			return lineEnd{}, false
		}
		for _, run := range runs[:partial.RunIndex] {
			l.commitRun(b, run)
		}
		run := runs[partial.RunIndex]
		if partial.Length >= run.Item.Length {
			l.commitRun(b, run)
			end := lineEnd{next: run.Index + 1}
			content.Reset()
			return end, true
		}
		left := run.Item.Left(partial.Length)
		left.NeedsHyphen = partial.NeedsHyphen
		b.Append(left, partial.Width)
		right := run.Item.Right(run.Item.Length - partial.Length)
		content.Reset()
		return lineEnd{next: run.Index, leading: &right}, true

	default:
		first := runs[0]
		end := lineEnd{next: first.Index}
		if first.Item != l.items[first.Index] {
			leading := first.Item
			end.leading = &leading
		}
		content.Reset()
		return end, true
	}
}

func (l *LineLayout) commitRun(b *LineBuilder, run ContentRun) {
	width := run.Width
	if run.Item.IsBox() {
		if box := l.tree.Box(run.Item.Box); box != nil {
			width -= box.Geometry.Margin.Horizontal()
		}
	}
	b.Append(run.Item, width)
}

// itemWidth 返回候选宽度；原子盒包含左右外边距。
func (l *LineLayout) itemWidth(item Item) float64 {
	if item.HasWidth {
		return item.Width
	}
	box := l.tree.Box(item.Box)
	if box == nil {
		return 0
	}
	switch item.Kind {
	case ItemText:
		if item.Length == 0 {
			return 0
		}
		length := item.Length
		// 可折叠的空白最终只保留一个字符。
		if isCollapsible(l.tree, item) {
			length = 1
		}
		return l.opts.Measurer.Width(box, item.Start, length)
	case ItemContainerStart:
		return box.Geometry.StartWidth()
	case ItemContainerEnd:
		return box.Geometry.EndWidth()
	case ItemBox:
		return box.Geometry.BorderBoxWidth() + box.Geometry.Margin.Horizontal()
	}
	return 0
}
