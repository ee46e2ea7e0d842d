package layout

// ItemKind 是行内条目的种类。
type ItemKind int

const (
	ItemText ItemKind = iota
	ItemBox
	ItemContainerStart
	ItemContainerEnd
	ItemHardLineBreak
	ItemSoftLineBreak
)

func (k ItemKind) String() string {
	switch k {
	case ItemText:
		return "text"
	case ItemBox:
		return "box"
	case ItemContainerStart:
		return "container-start"
	case ItemContainerEnd:
		return "container-end"
	case ItemHardLineBreak:
		return "hard-line-break"
	case ItemSoftLineBreak:
		return "soft-line-break"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出可读的种类名。
func (k ItemKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// TextKind 区分文本条目的分类。
type TextKind int

const (
	TextEmpty TextKind = iota
	TextWhitespace
	TextNonWhitespace
)

// Item 是行内内容的原子单元。条目是值类型，拆分会产生新条目而不是修改原条目。
type Item struct {
	Kind     ItemKind
	Box      BoxID
	Start    int // 在盒子文本中的 rune 偏移
	Length   int
	TextKind TextKind
	// Width 仅在 HasWidth 时有效（分段阶段预先测量）。
	Width    float64
	HasWidth bool
	// NeedsHyphen 标记断字后的左半部分，绘制时追加连字符。
	NeedsHyphen bool
}

func (it Item) IsText() bool           { return it.Kind == ItemText }
func (it Item) IsBox() bool            { return it.Kind == ItemBox }
func (it Item) IsContainerStart() bool { return it.Kind == ItemContainerStart }
func (it Item) IsContainerEnd() bool   { return it.Kind == ItemContainerEnd }
func (it Item) IsLineBreak() bool {
	return it.Kind == ItemHardLineBreak || it.Kind == ItemSoftLineBreak
}

// IsWhitespace 仅对文本条目有意义。
func (it Item) IsWhitespace() bool { return it.Kind == ItemText && it.TextKind == TextWhitespace }

// IsEmpty 表示空文本条目。
func (it Item) IsEmpty() bool { return it.Kind == ItemText && it.Length == 0 }

// End 返回文本结束偏移（不含）。
func (it Item) End() int { return it.Start + it.Length }

// Left 返回前 n 个字符组成的新条目，宽度需重新测量。
func (it Item) Left(n int) Item {
	assert(it.Kind == ItemText && n <= it.Length, "Left: length out of range")
	if n > it.Length {
		n = it.Length
	}
	return Item{Kind: ItemText, Box: it.Box, Start: it.Start, Length: n, TextKind: it.TextKind}
}

// Right 返回后 n 个字符组成的新条目。
func (it Item) Right(n int) Item {
	assert(it.Kind == ItemText && n <= it.Length, "Right: length out of range")
	if n > it.Length {
		n = it.Length
	}
	return Item{Kind: ItemText, Box: it.Box, Start: it.End() - n, Length: n, TextKind: it.TextKind}
}

// isCollapsible 表示条目是可折叠的空白。
func isCollapsible(tree *Tree, it Item) bool {
	if !it.IsWhitespace() {
		return false
	}
	b := tree.Box(it.Box)
	return b != nil && b.Style.WhiteSpace.CollapseWhiteSpace()
}

// styleOf 返回条目所属盒子的样式，盒子不存在时返回默认样式。
func styleOf(tree *Tree, id BoxID) Style {
	if b := tree.Box(id); b != nil {
		return b.Style
	}
	return DefaultStyle()
}

// BuildItems 按文档顺序把段落根下的盒子转换为行内条目序列。
func BuildItems(tree *Tree, m Measurer) []Item {
	var items []Item
	var walk func(id BoxID)
	walk = func(id BoxID) {
		b := tree.Box(id)
		if b == nil {
			return
		}
		switch b.Kind {
		case BoxText:
			items = append(items, SegmentText(b, m)...)
		case BoxInline:
			items = append(items, Item{Kind: ItemContainerStart, Box: id})
			for _, child := range b.children {
				walk(child)
			}
			items = append(items, Item{Kind: ItemContainerEnd, Box: id})
		case BoxAtomic:
			items = append(items, Item{Kind: ItemBox, Box: id})
		case BoxLineBreak:
			items = append(items, Item{Kind: ItemHardLineBreak, Box: id})
		case BoxBlock:
			for _, child := range b.children {
				walk(child)
			}
		}
	}
	walk(0)
	return items
}
