package layout

// BoxID 是布局树中盒子的句柄，行内内容只通过句柄回查样式与几何。
type BoxID int

// NoBox 表示不存在的盒子。
const NoBox BoxID = -1

// BoxKind 区分盒子的种类。
type BoxKind int

const (
	BoxBlock     BoxKind = iota // 段落根（块容器）
	BoxText                     // 文本
	BoxInline                   // 行内容器，例如 <span>
	BoxAtomic                   // 原子行内盒：替换元素或 inline-block
	BoxLineBreak                // <br>
)

// Edges 描述四边的长度（mm）。
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Horizontal 返回左右之和。
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical 返回上下之和。
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Geometry 是盒子的只读几何信息。
type Geometry struct {
	Margin        Edges   `json:"margin"`
	Border        Edges   `json:"border"`
	Padding       Edges   `json:"padding"`
	ContentWidth  float64 `json:"contentWidth"`
	ContentHeight float64 `json:"contentHeight"`
}

// BorderBoxWidth 返回 content+padding+border 的宽度。
func (g Geometry) BorderBoxWidth() float64 {
	return g.ContentWidth + g.Padding.Horizontal() + g.Border.Horizontal()
}

// BorderBoxHeight 返回 content+padding+border 的高度。
func (g Geometry) BorderBoxHeight() float64 {
	return g.ContentHeight + g.Padding.Vertical() + g.Border.Vertical()
}

// MarginBoxHeight 返回包含外边距的高度。
func (g Geometry) MarginBoxHeight() float64 {
	return g.BorderBoxHeight() + g.Margin.Vertical()
}

// StartWidth 是行内容器起始标记占用的宽度。
func (g Geometry) StartWidth() float64 {
	return g.Margin.Left + g.Border.Left + g.Padding.Left
}

// EndWidth 是行内容器结束标记占用的宽度。
func (g Geometry) EndWidth() float64 {
	return g.Margin.Right + g.Border.Right + g.Padding.Right
}

// InlineBlockBaseline 记录 inline-block 内部最后一行的基线信息（相对其内容盒）。
type InlineBlockBaseline struct {
	Offset  float64 `json:"offset"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Box 是布局树中的一个节点。
type Box struct {
	ID       BoxID
	Kind     BoxKind
	Parent   BoxID
	Style    Style
	Geometry Geometry
	Text     []rune

	// SimplifiedMeasuring 为 true 时分段阶段即可预先测量宽度。
	SimplifiedMeasuring bool
	Replaced            bool
	// EstablishesFormattingContext 对 inline-block 为 true。
	EstablishesFormattingContext bool
	InlineBlock                  *InlineBlockBaseline

	children []BoxID
}

// IsInlineBlock 表示该盒子是带有行内内容的 inline-block。
func (b *Box) IsInlineBlock() bool {
	return b != nil && b.EstablishesFormattingContext && b.InlineBlock != nil
}

// Tree 是盒子的 arena，所有盒子以 BoxID 索引。
type Tree struct {
	boxes []*Box
}

// NewTree 创建只含段落根的树。
func NewTree(rootStyle Style) *Tree {
	t := &Tree{}
	t.add(&Box{Kind: BoxBlock, Parent: NoBox, Style: rootStyle})
	return t
}

// Root 返回段落根。
func (t *Tree) Root() *Box { return t.Box(0) }

// Len 返回盒子数量。
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.boxes)
}

// Box 按句柄取盒子，越界返回 nil。
func (t *Tree) Box(id BoxID) *Box {
	if t == nil || id < 0 || int(id) >= len(t.boxes) {
		return nil
	}
	return t.boxes[id]
}

// Children 返回子节点句柄。
func (t *Tree) Children(id BoxID) []BoxID {
	if b := t.Box(id); b != nil {
		return b.children
	}
	return nil
}

// AppendText 追加文本盒。
func (t *Tree) AppendText(parent BoxID, style Style, text string) BoxID {
	return t.attach(parent, &Box{Kind: BoxText, Style: style, Text: []rune(text), SimplifiedMeasuring: true})
}

// AppendInline 追加行内容器。
func (t *Tree) AppendInline(parent BoxID, style Style, geometry Geometry) BoxID {
	return t.attach(parent, &Box{Kind: BoxInline, Style: style, Geometry: geometry})
}

// AppendAtomic 追加原子行内盒（图片等）。
func (t *Tree) AppendAtomic(parent BoxID, style Style, geometry Geometry, replaced bool) BoxID {
	return t.attach(parent, &Box{Kind: BoxAtomic, Style: style, Geometry: geometry, Replaced: replaced})
}

// AppendInlineBlock 追加已完成内部排版的 inline-block。
func (t *Tree) AppendInlineBlock(parent BoxID, style Style, geometry Geometry, baseline InlineBlockBaseline) BoxID {
	bl := baseline
	return t.attach(parent, &Box{
		Kind:                         BoxAtomic,
		Style:                        style,
		Geometry:                     geometry,
		EstablishesFormattingContext: true,
		InlineBlock:                  &bl,
	})
}

// AppendLineBreak 追加 <br>。
func (t *Tree) AppendLineBreak(parent BoxID, style Style) BoxID {
	return t.attach(parent, &Box{Kind: BoxLineBreak, Style: style})
}

func (t *Tree) attach(parent BoxID, b *Box) BoxID {
	p := t.Box(parent)
	if p == nil || (p.Kind != BoxBlock && p.Kind != BoxInline) {
		assert(false, "attach: parent must be a block or inline container")
		p = t.Root()
	}
	b.Parent = p.ID
	id := t.add(b)
	p.children = append(p.children, id)
	return id
}

func (t *Tree) add(b *Box) BoxID {
	b.ID = BoxID(len(t.boxes))
	t.boxes = append(t.boxes, b)
	return b.ID
}
