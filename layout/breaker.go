package layout

import "math"

// ContentRun 是候选内容中的一段：条目、其在条目序列中的下标与测量宽度。
type ContentRun struct {
	Item  Item
	Index int
	Width float64
}

type trailingTrimmable struct {
	width float64
	fully bool
}

func (t *trailingTrimmable) reset() {
	t.width = 0
	t.fully = false
}

// Content 是尚未提交到行上的连续候选内容。
type Content struct {
	tree     *Tree
	runs     []ContentRun
	width    float64
	trailing trailingTrimmable
}

// NewContent 创建空的候选内容缓冲。
func NewContent(tree *Tree) *Content {
	return &Content{tree: tree}
}

func (c *Content) Runs() []ContentRun { return c.runs }
func (c *Content) Len() int           { return len(c.runs) }
func (c *Content) IsEmpty() bool      { return len(c.runs) == 0 }
func (c *Content) Width() float64     { return c.width }

// NonTrimmableWidth 返回去掉尾部可裁剪部分后的宽度。
func (c *Content) NonTrimmableWidth() float64 { return c.width - c.trailing.width }

// HasTrailingTrimmableContent 表示尾部存在可裁剪内容。
func (c *Content) HasTrailingTrimmableContent() bool { return c.trailing.width != 0 }

// IsTrailingContentFullyTrimmable 表示尾部可裁剪内容为整段空白。
func (c *Content) IsTrailingContentFullyTrimmable() bool { return c.trailing.fully }

// Append 追加一个条目并更新尾部可裁剪状态。
func (c *Content) Append(item Item, index int, width float64) {
	c.runs = append(c.runs, ContentRun{Item: item, Index: index, Width: width})
	c.width += width

	switch {
	case item.IsBox() || item.IsLineBreak():
		c.trailing.reset()
	case item.IsText():
		style := styleOf(c.tree, item.Box)
		if item.IsWhitespace() && !style.WhiteSpace.PreserveTrailingWhitespace() {
			c.trailing.width += width
			c.trailing.fully = true
		} else if style.LetterSpacing > 0 {
			c.trailing.width = style.LetterSpacing
			c.trailing.fully = false
		} else {
			c.trailing.reset()
		}
	}
}

// Reset 清空候选内容。
func (c *Content) Reset() {
	c.runs = c.runs[:0]
	c.width = 0
	c.trailing.reset()
}

// Trim 只保留前 n 段。
func (c *Content) Trim(n int) {
	if n >= len(c.runs) {
		return
	}
	for _, run := range c.runs[n:] {
		c.width -= run.Width
	}
	c.runs = c.runs[:n]
}

// HasTextContentOnly 判断内容是否为文本（容器标记不计入）。
func (c *Content) HasTextContentOnly() bool {
	for _, run := range c.runs {
		if run.Item.IsContainerStart() || run.Item.IsContainerEnd() {
			continue
		}
		return run.Item.IsText()
	}
	return false
}

// HasNonContentRunsOnly 判断内容是否只有容器标记，例如 <span></span>。
func (c *Content) HasNonContentRunsOnly() bool {
	for _, run := range c.runs {
		if run.Item.IsContainerStart() || run.Item.IsContainerEnd() {
			continue
		}
		return false
	}
	return true
}

// IsAtContentBoundary 判断新条目到来时，已缓冲的候选内容能否作为整体提交。
// 例如 <span>continuous</span><img>：图片让前面的内容可以提交，而后续文本不行。
func (c *Content) IsAtContentBoundary(item Item) bool {
	if c.IsEmpty() {
		return false
	}
	last := c.runs[len(c.runs)-1].Item

	switch {
	case item.IsText():
		// 空白总是提交边界。
		if item.IsWhitespace() {
			return true
		}
		// <span>text：容器起始与文本不可分。
		if last.IsContainerStart() {
			return false
		}
		// text</span><span></span>text：向前越过容器标记找到真正的内容。
		if last.IsContainerEnd() {
			found := false
			for i := len(c.runs) - 1; i >= 0; i-- {
				prev := c.runs[i].Item
				if prev.IsContainerStart() || prev.IsContainerEnd() {
					continue
				}
				last = prev
				found = true
				break
			}
			if !found {
				return false
			}
		}
		if last.IsText() {
			if last.IsWhitespace() {
				return true
			}
			// 同一盒子的相邻非空白条目在分段时已按软断点切开。
			return last.Box == item.Box
		}
		if last.IsBox() {
			return true
		}
		assert(false, "IsAtContentBoundary: unexpected trailing content")
		return true

	case item.IsBox():
		if last.IsContainerStart() {
			return false
		}
		return true

	case item.IsContainerStart() || item.IsContainerEnd():
		if last.IsContainerStart() || last.IsContainerEnd() {
			return false
		}
		// ' '<span> 可以提交空白；text<span> 还要看后面是什么。
		if last.IsText() {
			return last.IsWhitespace()
		}
		// <img><span> 可以提交；<img></span> 不可分。
		if last.IsBox() {
			return item.IsContainerStart()
		}
	}
	assert(false, "IsAtContentBoundary: unexpected item")
	return true
}

// LineStatus 描述当前行的状态。
type LineStatus struct {
	AvailableWidth                   float64
	TrimmableWidth                   float64
	LineHasFullyTrimmableTrailingRun bool
	LineIsEmpty                      bool
	// LineEndsAtWrapOpportunity 表示行上最后提交的内容之后允许换行。
	LineEndsAtWrapOpportunity bool
}

// WrappingRule 是断行决策。
type WrappingRule int

const (
	Keep WrappingRule = iota
	Split
	Push
)

func (r WrappingRule) String() string {
	switch r {
	case Keep:
		return "keep"
	case Split:
		return "split"
	default:
		return "push"
	}
}

// PartialContent 描述 Split 时保留在本行的部分：第 RunIndex 段的前 Length 个字符。
type PartialContent struct {
	RunIndex    int
	Length      int
	Width       float64
	NeedsHyphen bool
}

// BreakingContext 是断行器的输出。
type BreakingContext struct {
	Rule    WrappingRule
	Partial *PartialContent
}

// LineBreaker 决定候选内容放在本行、拆分还是推到下一行。
type LineBreaker struct {
	tree                *Tree
	measurer            Measurer
	hyphenator          Hyphenator
	hyphenationDisabled bool
	hyphenationFactor   float64
}

// NewLineBreaker 根据配置创建断行器。
func NewLineBreaker(tree *Tree, opts Options) *LineBreaker {
	return &LineBreaker{
		tree:                tree,
		measurer:            opts.Measurer,
		hyphenator:          opts.Hyphenator,
		hyphenationDisabled: opts.HyphenationDisabled,
		hyphenationFactor:   opts.hyphenationFactor(),
	}
}

// ShouldWrapFloatBox 空行总是接受浮动；非空行上浮动宽度超出可用宽度时换行。
func ShouldWrapFloatBox(floatWidth, availableWidth float64, lineIsEmpty bool) bool {
	return !lineIsEmpty && floatWidth > availableWidth
}

// BreakingContext 对非空候选内容给出断行决策。
func (b *LineBreaker) BreakingContext(content *Content, status LineStatus) BreakingContext {
	if content == nil || content.IsEmpty() {
		assert(false, "BreakingContext: empty candidate content")
		return BreakingContext{Rule: Keep}
	}
	if content.Width() <= status.AvailableWidth {
		return BreakingContext{Rule: Keep}
	}
	if content.HasTrailingTrimmableContent() {
		// 去掉尾部可裁剪部分后能放下。
		if content.NonTrimmableWidth() <= status.AvailableWidth {
			return BreakingContext{Rule: Keep}
		}
		// 行尾与新内容都可以整段裁剪。
		if status.LineHasFullyTrimmableTrailingRun && content.IsTrailingContentFullyTrimmable() {
			return BreakingContext{Rule: Keep}
		}
	} else if status.TrimmableWidth != 0 && content.HasNonContentRunsOnly() {
		// "text <span style="padding: 1px"></span>"：裁掉行尾空白后 <span></span> 也许放得下。
		if content.Width() <= status.AvailableWidth+status.TrimmableWidth {
			return BreakingContext{Rule: Keep}
		}
	}

	if content.HasTextContentOnly() {
		runs := content.Runs()
		if partial := b.wordBreakingBehavior(runs, status.AvailableWidth); partial != nil {
			return BreakingContext{Rule: Split, Partial: partial}
		}
		// 不可换行的内容只有在行尾没有换行机会时才溢出，否则整体推到下一行。
		overflow := status.LineIsEmpty || (!b.isContentWrappingAllowed(runs[0]) && !status.LineEndsAtWrapOpportunity)
		// pre-wrap 下行尾保留的空白悬挂在行上。
		if b.isTrailingWhitespaceWithPreWrap(runs[len(runs)-1].Item) {
			overflow = true
		}
		if overflow {
			return BreakingContext{Rule: Keep}
		}
		return BreakingContext{Rule: Push}
	}
	// 行首的非文本内容总是留在本行。
	if status.LineIsEmpty {
		return BreakingContext{Rule: Keep}
	}
	return BreakingContext{Rule: Push}
}

func (b *LineBreaker) isContentWrappingAllowed(run ContentRun) bool {
	// 容器标记上的水平间距不可拆分。
	if !run.Item.IsText() {
		return false
	}
	return styleOf(b.tree, run.Item.Box).WhiteSpace.AutoWrap()
}

func (b *LineBreaker) isTrailingWhitespaceWithPreWrap(item Item) bool {
	if !item.IsText() {
		return false
	}
	return styleOf(b.tree, item.Box).WhiteSpace == WhiteSpacePreWrap && item.IsWhitespace()
}

func (b *LineBreaker) wordBreakingBehavior(runs []ContentRun, availableWidth float64) *PartialContent {
	// 找到溢出的那一段，用它的样式决定断行方式。
	accumulated := 0.0
	index := 0
	for index < len(runs) {
		run := runs[index]
		if accumulated+run.Width > availableWidth && b.isContentWrappingAllowed(run) {
			// 之前不可断的内容可能已经超出，此时可用宽度按 0 处理。
			adjusted := math.Max(0, availableWidth-accumulated)
			if partial := b.tryBreakingTextRun(run, adjusted); partial != nil {
				partial.RunIndex = index
				return partial
			}
			break
		}
		accumulated += run.Width
		index++
	}
	// 溢出段无法拆分：找前面最近的可换行段，在其自然边界处换行。
	for index--; index >= 0; index-- {
		run := runs[index]
		if b.isContentWrappingAllowed(run) {
			return &PartialContent{RunIndex: index, Length: run.Item.Length, Width: run.Width}
		}
	}
	return nil
}

func (b *LineBreaker) tryBreakingTextRun(run ContentRun, availableWidth float64) *PartialContent {
	item := run.Item
	box := b.tree.Box(item.Box)
	if box == nil || b.measurer == nil {
		return nil
	}
	style := box.Style
	switch style.WordBreak {
	case WordBreakKeepAll:
		return nil
	case WordBreakBreakAll:
		length, width := b.measurer.Split(box, item.Start, item.Length, run.Width, availableWidth)
		if length <= 0 {
			return nil
		}
		return &PartialContent{Length: length, Width: width}
	}

	// 断字：先扣除连字符宽度拆分文本，再找拆分点之前最后一个断字位置。
	if b.hyphenationDisabled || style.Hyphens != HyphensAuto || b.hyphenator == nil || !b.hyphenator.CanHyphenate(style.Locale) {
		return nil
	}
	runLength := item.Length
	limitBefore := max(style.HyphenLimitBefore, 0)
	limitAfter := max(style.HyphenLimitAfter, 0)
	if limitBefore >= runLength || limitAfter >= runLength || limitBefore+limitAfter > runLength {
		return nil
	}

	metrics := b.measurer.Metrics(style)
	availableExcludingHyphen := availableWidth - metrics.HyphenWidth
	if availableExcludingHyphen <= 0 || !b.enoughWidthForHyphenation(availableExcludingHyphen+metrics.SpaceWidth, style.FontSize) {
		return nil
	}

	splitLength, _ := b.measurer.Split(box, item.Start, runLength, run.Width, availableExcludingHyphen)
	if splitLength < limitBefore {
		return nil
	}
	// 拆分点之前且满足 limit-after 的最后一个位置。
	hyphenBefore := min(splitLength, runLength-limitAfter) + 1
	text := box.Text[item.Start:item.End()]
	location := b.hyphenator.LastHyphenLocation(text, hyphenBefore, style.Locale)
	if location <= 0 || location < limitBefore || location >= runLength {
		return nil
	}
	width := b.measurer.Width(box, item.Start, location) + metrics.HyphenWidth
	return &PartialContent{Length: location, Width: width, NeedsHyphen: true}
}

func (b *LineBreaker) enoughWidthForHyphenation(availableWidth, fontSize float64) bool {
	return availableWidth >= b.hyphenationFactor*fontSize
}
