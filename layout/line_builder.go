package layout

import (
	"math"
	"strings"
)

// HeightAndBaseline 是行的初始高度、基线与继承的 strut。
type HeightAndBaseline struct {
	Height         float64
	BaselineOffset float64
	Strut          *Baseline
}

// Constraints 是打开一行时的约束。
type Constraints struct {
	Left               float64
	Top                float64
	AvailableWidth     float64
	ConstrainedByFloat bool
	// HeightAndBaseline 在跳过对齐时可以为 nil。
	HeightAndBaseline *HeightAndBaseline
}

// lineRun 是已提交到当前行、尚可修改的条目。
type lineRun struct {
	item  Item
	left  float64
	width float64

	hasText    bool
	textStart  int
	textLength int

	// collapsed 表示多个可折叠空白被折叠为一个字符。
	collapsed       bool
	collapsedToZero bool
}

func (r *lineRun) setCollapsesToZeroAdvanceWidth() {
	r.width = 0
	r.collapsedToZero = true
}

func (r *lineRun) hasExpansionOpportunity() bool {
	return r.item.IsWhitespace() && !r.collapsedToZero
}

// trimmableContent 记录行尾可裁剪内容的起始下标与宽度。
type trimmableContent struct {
	first     int
	width     float64
	lastFully bool
}

func (t *trimmableContent) reset() {
	t.first = -1
	t.width = 0
	t.lastFully = false
}

func (t *trimmableContent) isEmpty() bool { return t.first < 0 }

func (t *trimmableContent) isTrailingRunFullyTrimmable() bool {
	return !t.isEmpty() && t.lastFully
}

func (t *trimmableContent) isTrailingRunPartiallyTrimmable() bool {
	return !t.isEmpty() && !t.lastFully
}

// LineBuilder 逐条接收已决定放在本行的内容，并在关闭时产出显示段。
type LineBuilder struct {
	tree          *Tree
	measurer      Measurer
	align         TextAlign
	skipAlignment bool
	quirks        bool
	pixelSize     float64

	lineBox   LineBox
	lineWidth float64
	runs      []lineRun
	trimmable trimmableContent
	strut     *Baseline

	hasIntrusiveFloat bool
	// emptyBeforeTrimmable 在可裁剪内容出现前记录行是否视觉为空，nil 表示未记录。
	emptyBeforeTrimmable *bool
}

// NewLineBuilder 创建行构建器，一个实例只服务一个段落。
func NewLineBuilder(tree *Tree, align TextAlign, opts Options) *LineBuilder {
	b := &LineBuilder{
		tree:          tree,
		measurer:      opts.Measurer,
		align:         align,
		skipAlignment: opts.SkipAlignment,
		quirks:        opts.QuirksMode,
		pixelSize:     opts.PixelSize,
	}
	b.trimmable.reset()
	return b
}

// Initialize 清空缓冲并按约束打开新的一行。
func (b *LineBuilder) Initialize(c Constraints) {
	assert(b.skipAlignment || c.HeightAndBaseline != nil, "Initialize: missing height and baseline")

	height, baselineOffset := 0.0, 0.0
	b.strut = nil
	if hb := c.HeightAndBaseline; hb != nil {
		height = hb.Height
		baselineOffset = hb.BaselineOffset
		if hb.Strut != nil {
			strut := *hb.Strut
			b.strut = &strut
		}
	}
	b.lineBox = newLineBox(
		Rect{Top: c.Top, Left: c.Left, Height: height},
		Baseline{Ascent: baselineOffset, Descent: height - baselineOffset},
		baselineOffset,
	)
	b.lineWidth = c.AvailableWidth
	b.hasIntrusiveFloat = c.ConstrainedByFloat
	b.runs = b.runs[:0]
	b.trimmable.reset()
	b.emptyBeforeTrimmable = nil
}

// LineBox 返回当前行盒。
func (b *LineBuilder) LineBox() LineBox { return b.lineBox }

// IsVisuallyEmpty 表示当前行是否视觉为空。
func (b *LineBuilder) IsVisuallyEmpty() bool { return b.lineBox.Empty }

// HasIntrusiveFloat 表示当前行被浮动挤占。
func (b *LineBuilder) HasIntrusiveFloat() bool { return b.hasIntrusiveFloat }

// SetHasIntrusiveFloat 标记当前行被浮动挤占。
func (b *LineBuilder) SetHasIntrusiveFloat() { b.hasIntrusiveFloat = true }

// HasContent 表示本行已经提交了条目。
func (b *LineBuilder) HasContent() bool { return len(b.runs) > 0 }

// EndsAtWrapOpportunity 表示最后提交的内容（越过容器标记）允许在其后换行。
func (b *LineBuilder) EndsAtWrapOpportunity() bool {
	for i := len(b.runs) - 1; i >= 0; i-- {
		item := b.runs[i].item
		if item.IsContainerStart() || item.IsContainerEnd() {
			continue
		}
		return styleOf(b.tree, item.Box).WhiteSpace.AutoWrap()
	}
	return true
}

// AvailableWidth 返回剩余可用宽度，可能为负。
func (b *LineBuilder) AvailableWidth() float64 { return b.lineWidth - b.lineBox.Rect.Width }

// TrailingTrimmableWidth 返回行尾可裁剪宽度。
func (b *LineBuilder) TrailingTrimmableWidth() float64 { return b.trimmable.width }

// IsTrailingRunFullyTrimmable 表示行尾是整段可裁剪的空白。
func (b *LineBuilder) IsTrailingRunFullyTrimmable() bool {
	return b.trimmable.isTrailingRunFullyTrimmable()
}

// MoveLogicalLeft 把行的左边界右移 delta（例如左浮动）。
func (b *LineBuilder) MoveLogicalLeft(delta float64) {
	if delta == 0 {
		return
	}
	assert(delta > 0, "MoveLogicalLeft: negative delta")
	b.lineBox.moveHorizontally(delta)
	b.lineWidth -= delta
}

// MoveLogicalRight 收窄行的右边界（例如右浮动）。
func (b *LineBuilder) MoveLogicalRight(delta float64) {
	assert(delta > 0, "MoveLogicalRight: negative delta")
	b.lineWidth -= delta
}

func (b *LineBuilder) contentLogicalWidth() float64 { return b.lineBox.Rect.Width }

// Append 按条目种类提交内容。
func (b *LineBuilder) Append(item Item, width float64) {
	switch {
	case item.IsText():
		b.appendTextContent(item, width)
	case item.IsLineBreak():
		b.appendLineBreak(item)
	case item.IsContainerStart():
		b.appendNonBreakableSpace(item, b.contentLogicalWidth(), width)
	case item.IsContainerEnd():
		b.appendInlineContainerEnd(item, width)
	case item.IsBox():
		b.appendInlineBox(item, width)
	default:
		assert(false, "Append: unknown item kind")
		return
	}
	if b.lineBox.Empty && b.isVisuallyNonEmpty(&b.runs[len(b.runs)-1]) {
		b.lineBox.Empty = false
	}
}

func (b *LineBuilder) appendNonBreakableSpace(item Item, left, width float64) {
	b.runs = append(b.runs, lineRun{item: item, left: left, width: width})
	b.lineBox.expandHorizontally(width)
}

func (b *LineBuilder) appendInlineContainerEnd(item Item, width float64) {
	// 行尾的 letter-spacing 不能溢出到容器之外。
	if b.trimmable.isTrailingRunPartiallyTrimmable() {
		b.lineBox.shrinkHorizontally(b.trimTrailingRun())
	}
	b.appendNonBreakableSpace(item, b.contentLogicalWidth(), width)
}

func (b *LineBuilder) appendTextContent(item Item, width float64) {
	willCollapseCompletely := func() bool {
		if item.Length == 0 {
			return true
		}
		// 行首空白。
		if len(b.runs) == 0 {
			return !shouldPreserveLeadingContent(item, styleOf(b.tree, item.Box))
		}
		if !isCollapsible(b.tree, item) {
			return false
		}
		// 紧跟在另一个可折叠空白之后（即使跨越容器边界）的空白折叠为零宽。
		for i := len(b.runs) - 1; i >= 0; i-- {
			run := &b.runs[i]
			if run.item.IsBox() {
				return false
			}
			if run.item.IsText() {
				return isCollapsible(b.tree, run.item)
			}
		}
		return true
	}

	collapsesToZero := willCollapseCompletely()
	collapsedRun := isCollapsible(b.tree, item) && item.Length > 1
	length := item.Length
	if collapsedRun {
		length = 1
	}
	b.runs = append(b.runs, lineRun{
		item:       item,
		left:       b.contentLogicalWidth(),
		width:      width,
		hasText:    true,
		textStart:  item.Start,
		textLength: length,
		collapsed:  collapsedRun,
	})
	run := &b.runs[len(b.runs)-1]
	if collapsesToZero {
		run.setCollapsesToZeroAdvanceWidth()
	}
	b.lineBox.expandHorizontally(run.width)

	// 只有整段可裁剪的新内容才能延长已有的可裁剪窗口。
	trimmableWhitespace := b.isTrimmableWhitespace(run)
	if !b.trimmable.isEmpty() && !trimmableWhitespace {
		b.trimmable.reset()
	}
	if trimmableWhitespace || b.hasTrailingLetterSpacing(run) {
		if b.trimmable.isEmpty() {
			empty := b.IsVisuallyEmpty()
			b.emptyBeforeTrimmable = &empty
		}
		b.appendTrimmable(len(b.runs) - 1)
	}
}

func (b *LineBuilder) appendInlineBox(item Item, width float64) {
	var margin Edges
	if box := b.tree.Box(item.Box); box != nil {
		margin = box.Geometry.Margin
	}
	b.runs = append(b.runs, lineRun{item: item, left: b.contentLogicalWidth() + margin.Left, width: width})
	b.lineBox.expandHorizontally(width + margin.Left + margin.Right)
	b.trimmable.reset()
}

func (b *LineBuilder) appendLineBreak(item Item) {
	run := lineRun{item: item, left: b.contentLogicalWidth()}
	if item.Kind == ItemSoftLineBreak {
		run.hasText = true
		run.textStart = item.Start
		run.textLength = 1
	}
	b.runs = append(b.runs, run)
}

func shouldPreserveLeadingContent(item Item, style Style) bool {
	if !item.IsWhitespace() {
		return true
	}
	ws := style.WhiteSpace
	return ws == WhiteSpacePre || ws == WhiteSpacePreWrap || ws == WhiteSpaceBreakSpaces
}

func (b *LineBuilder) isTrimmableWhitespace(run *lineRun) bool {
	if !run.item.IsWhitespace() {
		return false
	}
	return !styleOf(b.tree, run.item.Box).WhiteSpace.PreserveTrailingWhitespace()
}

func (b *LineBuilder) hasTrailingLetterSpacing(run *lineRun) bool {
	return run.item.IsText() && !run.item.IsWhitespace() && styleOf(b.tree, run.item.Box).LetterSpacing > 0
}

func (b *LineBuilder) trailingLetterSpacing(run *lineRun) float64 {
	if !b.hasTrailingLetterSpacing(run) {
		return 0
	}
	return styleOf(b.tree, run.item.Box).LetterSpacing
}

func (b *LineBuilder) appendTrimmable(index int) {
	run := &b.runs[index]
	fully := b.isTrimmableWhitespace(run)
	width := b.trailingLetterSpacing(run)
	if fully {
		width = run.width
	}
	// 负的 word-spacing 不会让行在裁剪后多出空间。
	b.trimmable.width += math.Max(0, width)
	b.trimmable.lastFully = fully
	if b.trimmable.first < 0 {
		b.trimmable.first = index
	}
}

// trim 裁剪整个可裁剪窗口，并把窗口内其余的段左移，返回裁掉的宽度。
func (b *LineBuilder) trim() float64 {
	accumulated := 0.0
	for i := b.trimmable.first; i < len(b.runs); i++ {
		run := &b.runs[i]
		run.left -= accumulated
		if !run.item.IsText() {
			continue
		}
		if run.item.IsWhitespace() {
			accumulated += run.width
			run.setCollapsesToZeroAdvanceWidth()
			continue
		}
		spacing := b.trailingLetterSpacing(run)
		accumulated += spacing
		run.width -= spacing
	}
	b.trimmable.reset()
	return accumulated
}

// trimTrailingRun 只裁剪最后一个可裁剪的文本段。
func (b *LineBuilder) trimTrailingRun() float64 {
	for i := len(b.runs) - 1; i >= b.trimmable.first && i >= 0; i-- {
		run := &b.runs[i]
		if !run.item.IsText() {
			continue
		}
		trimmed := 0.0
		if run.item.IsWhitespace() {
			trimmed = run.width
			run.setCollapsesToZeroAdvanceWidth()
		} else {
			trimmed = b.trailingLetterSpacing(run)
			run.width -= trimmed
		}
		b.trimmable.width -= trimmed
		if i == b.trimmable.first {
			b.trimmable.reset()
		}
		return trimmed
	}
	assert(false, "trimTrailingRun: no trimmable run")
	return 0
}

func (b *LineBuilder) removeTrailingTrimmableContent() {
	if b.trimmable.isEmpty() || len(b.runs) == 0 {
		return
	}
	b.lineBox.shrinkHorizontally(b.trim())
	if b.emptyBeforeTrimmable == nil || !*b.emptyBeforeTrimmable {
		b.emptyBeforeTrimmable = nil
		return
	}
	// 裁剪只会让行从非空变为空，不会反过来。
	// <span>  </span><span style="padding-left: 10px"></span> 仍然非空。
	empty := true
	for i := range b.runs {
		if b.isVisuallyNonEmpty(&b.runs[i]) {
			empty = false
			break
		}
	}
	if empty {
		b.lineBox.Empty = true
	}
	b.emptyBeforeTrimmable = nil
}

func (b *LineBuilder) isVisuallyNonEmpty(run *lineRun) bool {
	switch {
	case run.item.IsText():
		return !run.collapsedToZero
	case run.item.IsContainerStart() || run.item.IsContainerEnd():
		if run.width == 0 {
			return false
		}
		// 外边距不会让容器视觉非空，只看边框与内边距。
		box := b.tree.Box(run.item.Box)
		if box == nil {
			return false
		}
		g := box.Geometry
		if run.item.IsContainerStart() {
			return g.Border.Left != 0 || g.Padding.Left != 0
		}
		return g.Border.Right != 0 || g.Padding.Right != 0
	case run.item.IsLineBreak():
		return true
	case run.item.IsBox():
		box := b.tree.Box(run.item.Box)
		if box == nil || !box.EstablishesFormattingContext {
			return true
		}
		if run.width == 0 {
			return false
		}
		return b.skipAlignment || box.Geometry.BorderBoxHeight() != 0
	}
	assert(false, "isVisuallyNonEmpty: unknown run")
	return false
}

// continuousContent 把同一盒子中相邻的文本段合并为一个显示段。
type continuousContent struct {
	initial            *lineRun
	justify            bool
	runs               []*lineRun
	expandedLength     int
	expandedWidth      float64
	trailingExpandable bool
	trailingHasOpp     bool
	opportunities      int
}

func canBeExpanded(run *lineRun) bool {
	return run.item.IsText() && !run.collapsed && !run.collapsedToZero
}

func newContinuousContent(initial *lineRun, justify bool) *continuousContent {
	return &continuousContent{
		initial:            initial,
		justify:            justify,
		runs:               []*lineRun{initial},
		trailingExpandable: canBeExpanded(initial),
	}
}

func (c *continuousContent) append(run *lineRun) bool {
	if !c.trailingExpandable {
		return false
	}
	if !run.item.IsText() || run.collapsedToZero || run.item.Box != c.initial.item.Box {
		return false
	}
	c.trailingExpandable = canBeExpanded(run)
	c.runs = append(c.runs, run)
	c.expandedLength += run.textLength
	c.expandedWidth += run.width
	if c.justify {
		c.trailingHasOpp = run.hasExpansionOpportunity()
		if c.trailingHasOpp {
			c.opportunities++
		}
	}
	return true
}

func (c *continuousContent) close(b *LineBuilder) Run {
	initial := c.initial
	out := Run{
		Box:                      initial.item.Box,
		Kind:                     initial.item.Kind,
		Rect:                     Rect{Left: initial.left, Width: initial.width + c.expandedWidth},
		CollapsedToVisuallyEmpty: initial.collapsedToZero,
	}
	if !initial.hasText {
		return out
	}

	text := &TextContext{Start: initial.textStart, Length: initial.textLength + c.expandedLength}
	var content strings.Builder
	for _, run := range c.runs {
		content.WriteString(b.runText(run))
		text.NeedsHyphen = text.NeedsHyphen || run.item.NeedsHyphen
	}
	text.Content = content.String()
	out.Text = text

	if c.expandedLength == 0 {
		if initial.hasExpansionOpportunity() {
			out.ExpansionOpportunities = 1
			text.Expansion = &Expansion{Behavior: DefaultExpansion}
		}
		return out
	}
	if c.justify {
		behavior := AllowLeadingExpansion | AllowTrailingExpansion
		if c.trailingHasOpp {
			behavior = ForbidLeadingExpansion | AllowTrailingExpansion
		}
		if initial.hasExpansionOpportunity() {
			c.opportunities++
		}
		text.Expansion = &Expansion{Behavior: behavior}
		out.ExpansionOpportunities = c.opportunities
	}
	return out
}

func (b *LineBuilder) runText(run *lineRun) string {
	if run.collapsed {
		return " "
	}
	box := b.tree.Box(run.item.Box)
	if box == nil || run.textStart+run.textLength > len(box.Text) {
		return ""
	}
	return string(box.Text[run.textStart : run.textStart+run.textLength])
}

// Close 关闭当前行：裁剪行尾、合并显示段、完成垂直与水平对齐。
func (b *LineBuilder) Close(lastLine bool) []Run {
	b.removeTrailingTrimmableContent()

	justify := b.align == TextAlignJustify
	runs := make([]Run, 0, len(b.runs))
	for i := 0; i < len(b.runs); {
		content := newContinuousContent(&b.runs[i], justify)
		for i++; i < len(b.runs); i++ {
			if !content.append(&b.runs[i]) {
				break
			}
		}
		runs = append(runs, content.close(b))
	}

	if !b.skipAlignment {
		for i := range runs {
			b.adjustBaselineAndLineHeight(&runs[i])
			runs[i].Rect.Height = b.runContentHeight(&runs[i])
		}
		if b.IsVisuallyEmpty() {
			b.lineBox.resetBaseline()
			b.lineBox.Rect.Height = 0
		}
		// 所有内容都基线对齐且都没有下沉部分时，去掉行的 descent。
		if b.quirks && b.lineDescentNeedsCollapsing(runs) {
			b.lineBox.shrinkVertically(b.lineBox.Baseline.Descent)
			b.lineBox.resetDescent()
		}
		b.alignContentVertically(runs)
		b.alignContentHorizontally(runs, lastLine)
	}
	b.runs = b.runs[:0]
	return runs
}

func (b *LineBuilder) metrics(style Style) FontMetrics {
	if b.measurer == nil {
		return FontMetrics{}
	}
	return b.measurer.Metrics(style)
}

// HalfLeading 计算行高下的 half-leading 上下高度，按 pixelSize 取整。
func HalfLeading(m FontMetrics, lineHeight, pixelSize float64) Baseline {
	halfLeading := (lineHeight - m.Height()) / 2
	return Baseline{
		Ascent:  math.Max(floorToPixel(m.Ascent+halfLeading, pixelSize), 0),
		Descent: math.Max(ceilToPixel(m.Descent+halfLeading, pixelSize), 0),
	}
}

func floorToPixel(v, pixel float64) float64 {
	if pixel <= 0 {
		return v
	}
	return math.Floor(v/pixel) * pixel
}

func ceilToPixel(v, pixel float64) float64 {
	if pixel <= 0 {
		return v
	}
	return math.Ceil(v/pixel) * pixel
}

func (b *LineBuilder) adjustBaselineAndLineHeight(run *Run) {
	if run.IsText() || run.IsLineBreak() {
		// 文本本身不撑高行，基线来自 strut 或容器起始。
		if b.strut == nil {
			return
		}
		b.lineBox.setAscentIfGreater(b.strut.Ascent)
		b.lineBox.setDescentIfGreater(b.strut.Descent)
		b.lineBox.setHeightIfGreater(b.lineBox.Baseline.Height())
		b.strut = nil
		return
	}

	box := b.tree.Box(run.Box)
	if box == nil {
		return
	}
	style := box.Style
	switch {
	case run.IsContainerStart():
		// 行内容器按字号撑高行，垂直方向的外边距、边框与内边距不参与。
		m := b.metrics(style)
		if style.VerticalAlign != VerticalAlignBaseline {
			b.lineBox.setHeightIfGreater(m.Height())
			return
		}
		hl := HalfLeading(m, style.ComputedLineHeight(m), b.pixelSize)
		if hl.Descent > 0 {
			b.lineBox.setDescentIfGreater(hl.Descent)
		}
		if hl.Ascent > 0 {
			b.lineBox.setAscentIfGreater(hl.Ascent)
		}
		b.lineBox.setHeightIfGreater(b.lineBox.Baseline.Height())
	case run.IsContainerEnd():
	case run.IsBox():
		g := box.Geometry
		marginBoxHeight := g.MarginBoxHeight()
		switch style.VerticalAlign {
		case VerticalAlignBaseline:
			if box.IsInlineBlock() {
				last := box.InlineBlock
				before := g.Margin.Top + g.Border.Top + g.Padding.Top
				b.lineBox.setAscentIfGreater(last.Ascent)
				b.lineBox.setDescentIfGreater(last.Descent)
				b.lineBox.setBaselineOffsetIfGreater(before + last.Offset)
				b.lineBox.setHeightIfGreater(marginBoxHeight)
				return
			}
			// 非 inline-block 的盒子连同下外边距坐在基线上，忽略负的 descent。
			b.lineBox.setAscentIfGreater(marginBoxHeight)
			b.lineBox.setHeightIfGreater(marginBoxHeight + math.Max(0, b.lineBox.Baseline.Descent))
		case VerticalAlignTop:
			b.lineBox.setHeightIfGreater(marginBoxHeight)
		case VerticalAlignBottom:
			height := b.lineBox.Rect.Height
			if marginBoxHeight > height {
				b.lineBox.setHeightIfGreater(marginBoxHeight)
				b.lineBox.setBaselineOffsetIfGreater(b.lineBox.BaselineOffset + (marginBoxHeight - height))
			}
		}
	}
}

func (b *LineBuilder) runContentHeight(run *Run) float64 {
	box := b.tree.Box(run.Box)
	if box == nil {
		return 0
	}
	if !run.IsBox() {
		return b.metrics(box.Style).Height()
	}
	if box.Replaced {
		return box.Geometry.ContentHeight
	}
	return box.Geometry.MarginBoxHeight()
}

func (b *LineBuilder) lineDescentNeedsCollapsing(runs []Run) bool {
	for i := range runs {
		run := &runs[i]
		box := b.tree.Box(run.Box)
		if box == nil || run.IsContainerEnd() || box.Style.VerticalAlign != VerticalAlignBaseline {
			continue
		}
		switch {
		case run.IsLineBreak():
			return false
		case run.IsText():
			if !run.CollapsedToVisuallyEmpty {
				return false
			}
		case run.IsContainerStart():
			g := box.Geometry
			if g.Border.Horizontal() != 0 || g.Padding.Horizontal() != 0 {
				return false
			}
		case run.IsBox():
			if box.IsInlineBlock() && box.InlineBlock.Descent > 0 {
				return false
			}
		}
	}
	return true
}

func (b *LineBuilder) alignContentVertically(runs []Run) {
	baselineOffset := b.lineBox.BaselineOffset
	for i := range runs {
		run := &runs[i]
		box := b.tree.Box(run.Box)
		top := 0.0
		if box != nil {
			switch box.Style.VerticalAlign {
			case VerticalAlignBaseline:
				ascent := b.metrics(box.Style).Ascent
				g := box.Geometry
				switch {
				case run.IsLineBreak() || run.IsText():
					top = baselineOffset - ascent
				case run.IsContainerStart():
					top = baselineOffset - ascent - g.Border.Top - g.Padding.Top
				case box.IsInlineBlock():
					// inline-block 的基线相对内容盒，换算到外边距盒。
					top = baselineOffset - (g.Margin.Top + g.Border.Top + g.Padding.Top + box.InlineBlock.Offset)
				default:
					top = baselineOffset - run.Rect.Height
				}
			case VerticalAlignTop:
				top = 0
			case VerticalAlignBottom:
				top = b.lineBox.Rect.Height - run.Rect.Height
			}
		}
		run.Rect.Top = top + b.lineBox.Rect.Top
		run.Rect.Left += b.lineBox.Rect.Left
	}
}

func (b *LineBuilder) justifyRuns(runs []Run) {
	last := &runs[len(runs)-1]
	if last.ExpansionOpportunities > 0 && last.Text != nil && last.Text.Expansion != nil {
		last.Text.Expansion.Behavior |= ForbidTrailingExpansion
	}
	count := 0
	for i := range runs {
		count += runs[i].ExpansionOpportunities
	}
	if count == 0 {
		return
	}
	distribute := b.AvailableWidth() / float64(count)
	accumulated := 0.0
	for i := range runs {
		run := &runs[i]
		if run.ExpansionOpportunities == 0 || run.Text == nil || run.Text.Expansion == nil {
			run.Rect.Left += accumulated
			continue
		}
		expansion := distribute * float64(run.ExpansionOpportunities)
		run.Rect.Width += expansion
		run.Text.Expansion.Horizontal = expansion
		run.Rect.Left += accumulated
		accumulated += expansion
	}
}

func (b *LineBuilder) alignContentHorizontally(runs []Run, lastLine bool) {
	available := b.AvailableWidth()
	if len(runs) == 0 || available <= 0 {
		return
	}
	offset := 0.0
	switch b.align {
	case TextAlignJustify:
		// 段落最后一行不两端对齐。
		if !lastLine {
			b.justifyRuns(runs)
		}
		return
	case TextAlignRight, TextAlignEnd:
		offset = available
	case TextAlignCenter:
		offset = available / 2
	default:
		return
	}
	for i := range runs {
		runs[i].Rect.Left += offset
	}
}
