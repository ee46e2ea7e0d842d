package layout

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/ByLCY/inline/binding"
	"github.com/ByLCY/inline/dsl"
)

const (
	paragraphSpacing = 3.0
	defaultFontSrc   = "embed:goregular"
)

// Build 根据 DSL AST 构建盒子树、逐段排版，并按行分页。
func Build(doc *dsl.Document, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc, opts.Data)

	var pages []Page
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		built, err := buildPages(section.Page, res, opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, built...)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      meta,
	}, nil
}

func buildPages(section *dsl.PageSection, res ResourceSet, opts BuildOptions) ([]Page, error) {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return nil, err
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}

	collector := newPageCollector(width, height, resolveMargin(section.Spec.Params))
	b := &paragraphBuilder{res: res, opts: opts}
	for _, stmt := range section.Block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		switch cmd.Name {
		case "paragraph", "p":
			if err := b.buildParagraph(cmd, collector); err != nil {
				return nil, fmt.Errorf("第 %d 行 paragraph: %w", cmd.Pos.Line, err)
			}
		case "space":
			_, attrs := parseArgs(cmd.Args, false)
			gap := parseLength(attrs["height"])
			if len(cmd.Args) == 1 {
				gap = parseLength(cmd.Args[0].Value)
			}
			collector.advance(gap)
		case "page-break":
			collector.newPage()
		default:
			return nil, fmt.Errorf("第 %d 行: 不支持的命令 %s", cmd.Pos.Line, cmd.Name)
		}
	}
	return collector.pages(), nil
}

type pageAccumulator struct {
	paragraphs []Paragraph
	guides     []Rect
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
	cursorY float64
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	pc.cursorY = pc.contentTop()
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64    { return pc.margin.Top }
func (pc *pageCollector) contentBottom() float64 { return pc.height - pc.margin.Bottom }
func (pc *pageCollector) contentLeft() float64   { return pc.margin.Left }
func (pc *pageCollector) contentWidth() float64 {
	return pc.width - pc.margin.Left - pc.margin.Right
}

// advance 下移光标，超出内容区域时换页。
func (pc *pageCollector) advance(gap float64) {
	pc.cursorY += gap
	if pc.cursorY > pc.contentBottom() {
		pc.newPage()
	}
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:      pc.width,
			Height:     pc.height,
			Margin:     pc.margin,
			Paragraphs: acc.paragraphs,
			Guides:     acc.guides,
		}
	}
	return out
}

// styleState 是解析后的样式，以及字号变化时需要重新计算行高的原始值。
type styleState struct {
	style      Style
	size       Length
	lineHeight LineHeightSpec
}

// boxPaint 记录原子盒的绘制信息。
type boxPaint struct {
	image       string
	stroke      *Color
	strokeWidth float64
	fill        *Color
}

// paragraphTree 是一个段落（或 inline-block）的盒子树与排版结果。
type paragraphTree struct {
	tree    *Tree
	paints  map[BoxID]boxPaint
	nested  map[BoxID]*paragraphTree
	content *InlineContent
}

func newParagraphTree(root Style) *paragraphTree {
	return &paragraphTree{
		tree:   NewTree(root),
		paints: map[BoxID]boxPaint{},
		nested: map[BoxID]*paragraphTree{},
	}
}

type paragraphBuilder struct {
	res  ResourceSet
	opts BuildOptions
}

func (b *paragraphBuilder) layoutOptions() Options {
	opts := DefaultOptions(b.opts.Measurer)
	opts.Hyphenator = b.opts.Hyphenator
	opts.HyphenationDisabled = b.opts.HyphenationDisabled
	opts.QuirksMode = b.opts.QuirksMode
	opts.PixelSize = b.opts.PixelSize
	return opts
}

func (b *paragraphBuilder) rootState() styleState {
	style := DefaultStyle()
	if font, err := resolveFontResource("Body", b.res); err == nil {
		style.Font = font
	}
	size := Length{Value: 12, Unit: UnitPT}
	style.FontSize = size.ToMM()
	return styleState{style: style, size: size}
}

func (b *paragraphBuilder) buildParagraph(cmd *dsl.Command, collector *pageCollector) error {
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, b.res.Styles)
	state, err := b.resolveStyle(b.rootState(), attrs)
	if err != nil {
		return err
	}

	available := collector.contentWidth()
	width := available
	if v := attrs["width"]; v != "" {
		width = parseDimension(v, available)
	}
	x := collector.contentLeft() + alignOffset(available, width, attrs["position"])

	pt := newParagraphTree(state.style)
	if err := b.populate(pt, 0, cmd.Block, state, width); err != nil {
		return err
	}
	intrusions, err := parseIntrusions(attrs)
	if err != nil {
		return err
	}
	if _, err := b.layoutTree(pt, ParagraphConstraints{Width: width, Intrusions: intrusions}); err != nil {
		return err
	}

	var debug *ParagraphDebug
	if b.opts.Debug.RawUnits {
		debug = &ParagraphDebug{RawUnits: rawUnitsFor(state.size, state.lineHeight), Items: len(BuildItems(pt.tree, b.opts.Measurer))}
	}
	b.place(pt, x, width, collector, debug)

	spaceAfter := paragraphSpacing
	if v, ok := attrs["space-after"]; ok {
		spaceAfter = parseLength(v)
	}
	collector.advance(spaceAfter)
	return nil
}

func (b *paragraphBuilder) layoutTree(pt *paragraphTree, pc ParagraphConstraints) (*InlineContent, error) {
	ll, err := NewLineLayout(pt.tree, b.layoutOptions())
	if err != nil {
		return nil, err
	}
	pt.content = ll.Layout(pc)
	return pt.content, nil
}

// place 按行把段落放到页面上，放不下的行移到下一页。
func (b *paragraphBuilder) place(pt *paragraphTree, x, width float64, collector *pageCollector, debug *ParagraphDebug) {
	content := pt.content
	if content.LineCount() == 0 {
		return
	}
	shift := collector.cursorY - content.Lines[0].Box.Rect.Top
	var current *Paragraph
	flush := func() {
		if current == nil {
			return
		}
		acc := collector.curr()
		acc.paragraphs = append(acc.paragraphs, *current)
		current = nil
	}

	for i, line := range content.Lines {
		lb := line.Box
		overflow := shift+lb.Rect.Bottom() > collector.contentBottom()
		if overflow && (current != nil || collector.cursorY > collector.contentTop()) {
			flush()
			collector.newPage()
			shift = collector.contentTop() - lb.Rect.Top
		}
		placed := lb
		placed.Rect.Top += shift
		placed.Rect.Left += x
		if current == nil {
			current = &Paragraph{X: x, Y: placed.Rect.Top, Width: width, Debug: debug}
		}
		current.Lines = append(current.Lines, placed)
		current.Height = placed.Rect.Bottom() - current.Y
		current.Fragments = append(current.Fragments, b.fragments(pt, content.RunsForLine(i), x, shift)...)
		if b.opts.Debug.LineBoxes {
			acc := collector.curr()
			acc.guides = append(acc.guides, placed.Rect)
		}
		collector.cursorY = placed.Rect.Bottom()
	}
	flush()
}

// fragments 把显示段转换为页面坐标下的绘制片段，inline-block 的内部内容递归展开。
func (b *paragraphBuilder) fragments(pt *paragraphTree, runs []Run, dx, dy float64) []Fragment {
	var out []Fragment
	for _, run := range runs {
		box := pt.tree.Box(run.Box)
		if box == nil {
			continue
		}
		switch {
		case run.IsText():
			if run.CollapsedToVisuallyEmpty {
				continue
			}
			text := pt.content.PaintText(run, pt.tree)
			if strings.TrimSpace(text) == "" {
				continue
			}
			style := box.Style
			f := Fragment{
				Kind:          FragmentText,
				Box:           run.Box,
				Line:          run.Line,
				X:             run.Rect.Left + dx,
				Y:             run.Rect.Top + dy,
				Width:         run.Rect.Width,
				Height:        run.Rect.Height,
				Baseline:      run.Rect.Top + dy + b.opts.Measurer.Metrics(style).Ascent,
				Text:          text,
				Font:          style.Font.Name,
				FontSize:      style.FontSize,
				Color:         style.Color,
				LetterSpacing: style.LetterSpacing,
				Opportunities: run.ExpansionOpportunities,
			}
			if run.Text.Expansion != nil {
				f.Expansion = run.Text.Expansion.Horizontal
			}
			out = append(out, f)
		case run.IsBox():
			g := box.Geometry
			x := run.Rect.Left + dx
			y := run.Rect.Top + dy
			height := g.BorderBoxHeight()
			if box.Replaced {
				height = run.Rect.Height
			} else {
				y += g.Margin.Top
			}
			paint := pt.paints[run.Box]
			kind := FragmentBox
			if paint.image != "" {
				kind = FragmentImage
			}
			out = append(out, Fragment{
				Kind:        kind,
				Box:         run.Box,
				Line:        run.Line,
				X:           x,
				Y:           y,
				Width:       g.BorderBoxWidth(),
				Height:      height,
				Color:       box.Style.Color,
				Image:       paint.image,
				Stroke:      paint.stroke,
				StrokeWidth: paint.strokeWidth,
				Fill:        paint.fill,
			})
			if nested := pt.nested[run.Box]; nested != nil && nested.content != nil {
				ox := x + g.Border.Left + g.Padding.Left
				oy := y + g.Border.Top + g.Padding.Top
				for i := range nested.content.Lines {
					out = append(out, b.fragments(nested, nested.content.RunsForLine(i), ox, oy)...)
				}
			}
		}
	}
	return out
}

// populate 把 block 中的文本与命令追加到 parent 之下。
func (b *paragraphBuilder) populate(pt *paragraphTree, parent BoxID, block *dsl.Block, state styleState, available float64) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			pt.tree.AppendText(parent, state.style, binding.Interpolate(string(stmt.Text.Value), b.opts.Data))
		case stmt.Command != nil:
			if err := b.appendCommand(pt, parent, stmt.Command, state, available); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *paragraphBuilder) appendCommand(pt *paragraphTree, parent BoxID, cmd *dsl.Command, state styleState, available float64) error {
	name, attrs := parseArgs(cmd.Args, true)
	if cmd.Name != "image" {
		attrs = mergeStyleAttributes(name, attrs, b.res.Styles)
	}
	child, err := b.resolveStyle(state, attrs)
	if err != nil {
		return fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
	}
	g, err := resolveGeometry(attrs, available)
	if err != nil {
		return fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
	}

	switch cmd.Name {
	case "span":
		g.ContentWidth, g.ContentHeight = 0, 0
		id := pt.tree.AppendInline(parent, child.style, g)
		return b.populate(pt, id, cmd.Block, child, available)

	case "br":
		pt.tree.AppendLineBreak(parent, child.style)
		return nil

	case "box":
		if g.ContentWidth <= 0 && g.ContentHeight <= 0 {
			return fmt.Errorf("第 %d 行 box: 缺少 width/height", cmd.Pos.Line)
		}
		id := pt.tree.AppendAtomic(parent, child.style, g, false)
		pt.paints[id] = b.resolvePaint(attrs)
		return nil

	case "image":
		img, ok := b.res.Images[name]
		if !ok {
			img = ImageResource{Name: name, Src: attrs["src"]}
		}
		if img.Src == "" {
			return fmt.Errorf("第 %d 行 image: 图片 %s 未定义", cmd.Pos.Line, name)
		}
		if g.ContentWidth <= 0 {
			g.ContentWidth = img.Width
		}
		if g.ContentHeight <= 0 {
			g.ContentHeight = img.Height
		}
		if g.ContentWidth <= 0 || g.ContentHeight <= 0 {
			return fmt.Errorf("第 %d 行 image: 图片 %s 缺少尺寸", cmd.Pos.Line, name)
		}
		id := pt.tree.AppendAtomic(parent, child.style, g, true)
		paint := b.resolvePaint(attrs)
		paint.image = img.Src
		pt.paints[id] = paint
		return nil

	case "inline-block":
		width := g.ContentWidth
		if width <= 0 {
			width = available - g.Margin.Horizontal() - g.Border.Horizontal() - g.Padding.Horizontal()
		}
		nested := newParagraphTree(child.style)
		if err := b.populate(nested, 0, cmd.Block, child, width); err != nil {
			return err
		}
		content, err := b.layoutTree(nested, ParagraphConstraints{Width: width})
		if err != nil {
			return err
		}
		g.ContentWidth = width
		if g.ContentHeight <= 0 {
			g.ContentHeight = content.ContentHeight()
		}
		// 最后一行的基线（相对内容盒顶部）决定 inline-block 在父行中的基线。
		var baseline InlineBlockBaseline
		if n := content.LineCount(); n > 0 {
			last := content.Lines[n-1].Box
			baseline = InlineBlockBaseline{Offset: last.AbsoluteBaseline(), Ascent: last.Baseline.Ascent, Descent: last.Baseline.Descent}
		}
		id := pt.tree.AppendInlineBlock(parent, child.style, g, baseline)
		pt.nested[id] = nested
		pt.paints[id] = b.resolvePaint(attrs)
		return nil
	}
	return fmt.Errorf("第 %d 行: 段落内不支持的命令 %s", cmd.Pos.Line, cmd.Name)
}

func (b *paragraphBuilder) resolvePaint(attrs map[string]string) boxPaint {
	var paint boxPaint
	if v := attrs["stroke"]; v != "" {
		c := resolveColor(v, b.res)
		paint.stroke = &c
	}
	if v := attrs["stroke-width"]; v != "" {
		paint.strokeWidth = parseLength(v)
	}
	if v := attrs["fill"]; v != "" {
		c := resolveColor(v, b.res)
		paint.fill = &c
	}
	return paint
}

// resolveStyle 在父样式之上应用属性。
func (b *paragraphBuilder) resolveStyle(parent styleState, attrs map[string]string) (styleState, error) {
	st := parent
	s := &st.style
	var err error
	for key, v := range attrs {
		switch key {
		case "font":
			s.Font, err = resolveFontResource(v, b.res)
		case "size":
			var l Length
			if l, err = ParseLength(v); err == nil {
				if l.Unit == UnitNone {
					l.Unit = UnitPT
				}
				st.size = l
			}
		case "line-height":
			st.lineHeight, err = ParseLineHeightSpec(v)
		case "color":
			s.Color = resolveColor(v, b.res)
		case "letter-spacing":
			var l Length
			if l, err = ParseLength(v); err == nil {
				s.LetterSpacing = l.ToMM()
			}
		case "white-space":
			s.WhiteSpace, err = ParseWhiteSpace(v)
		case "word-break":
			s.WordBreak, err = ParseWordBreak(v)
		case "hyphens":
			s.Hyphens, err = ParseHyphens(v)
		case "align", "text-align":
			s.TextAlign, err = ParseTextAlign(v)
		case "vertical-align":
			s.VerticalAlign, err = ParseVerticalAlign(v)
		case "nbsp-mode":
			s.NBSPMode, err = ParseNBSPMode(v)
		case "lang":
			var tag language.Tag
			if tag, err = language.Parse(v); err == nil {
				s.Locale = tag
			}
		case "hyphenate-limit-chars":
			s.HyphenLimitBefore, s.HyphenLimitAfter, err = parseHyphenLimits(v)
		case "hyphenate-character":
			s.HyphenString = v
		}
		if err != nil {
			return parent, fmt.Errorf("样式属性 %s: %w", key, err)
		}
	}
	s.FontSize = st.size.ToMM()
	s.LineHeight = st.lineHeight.Resolve(st.size, UnitMM)
	return st, nil
}

// parseHyphenLimits 解析 "before after"，auto 表示 0。
func parseHyphenLimits(v string) (int, int, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ' ' || r == ',' })
	limits := [2]int{}
	for i, f := range fields {
		if i >= len(limits) {
			break
		}
		if f == "auto" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("断字限制 %q 无法解析", v)
		}
		limits[i] = n
	}
	return limits[0], limits[1], nil
}

// parseIntrusions 读取段落顶部的左右浮动带："宽度 高度"。
func parseIntrusions(attrs map[string]string) ([]Intrusion, error) {
	var out []Intrusion
	for _, side := range []string{"float-left", "float-right"} {
		v := attrs[side]
		if v == "" {
			continue
		}
		fields := strings.Fields(v)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s 需要 \"宽度 高度\"，实际 %q", side, v)
		}
		w, err := ParseLength(fields[0])
		if err != nil {
			return nil, err
		}
		h, err := ParseLength(fields[1])
		if err != nil {
			return nil, err
		}
		in := Intrusion{Bottom: h.ToMM()}
		if side == "float-left" {
			in.Left = w.ToMM()
		} else {
			in.Right = w.ToMM()
		}
		out = append(out, in)
	}
	return out, nil
}

func resolveGeometry(attrs map[string]string, available float64) (Geometry, error) {
	var g Geometry
	for key, dst := range map[string]*Edges{"margin": &g.Margin, "border": &g.Border, "padding": &g.Padding} {
		v := attrs[key]
		if v == "" {
			continue
		}
		e, err := parseEdges(v)
		if err != nil {
			return Geometry{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = e
	}
	if v := attrs["width"]; v != "" {
		g.ContentWidth = parseDimension(v, available)
	}
	if v := attrs["height"]; v != "" {
		g.ContentHeight = parseLength(v)
	}
	return g, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]StyleResource{},
	}
	rawStyles := map[string]StyleResource{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("color %s: %w", name, err)
				}
				res.Colors[name] = c
			case "image":
				image := parseImageResource(stmt.Command)
				if image.Name != "" {
					res.Images[image.Name] = image
				}
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts["Body"] = FontResource{
			Name:   "Body",
			Src:    defaultFontSrc,
			Family: "Body",
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func collectMeta(doc *dsl.Document, data any) DocumentMeta {
	meta := DocumentMeta{
		Creator: "inline",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := stmt.Assignment.Value
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = binding.Interpolate(valueToString(val), data)
			case "author":
				meta.Author = binding.Interpolate(valueToString(val), data)
			case "subject":
				meta.Subject = binding.Interpolate(valueToString(val), data)
			case "creator":
				meta.Creator = binding.Interpolate(valueToString(val), data)
			case "keywords":
				meta.Keywords = valueToStringSlice(val)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil || stmt.Assignment.Value.String == nil {
			continue
		}
		val := string(*stmt.Assignment.Value.String)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
			font.IsBuiltin = strings.HasPrefix(val, "builtin:") || strings.HasPrefix(val, "built-in:")
		case "style":
			font.Style = val
		case "fallback":
			font.Fallback = val
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	image := ImageResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return image
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			image.Src = val
		case "width":
			image.Width = parseLength(val)
		case "height":
			image.Height = parseLength(val)
		}
	}
	return image
}

func parseStyleResource(cmd *dsl.Command) StyleResource {
	if len(cmd.Args) == 0 {
		return StyleResource{}
	}
	style := StyleResource{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]StyleResource) (map[string]StyleResource, error) {
	resolved := map[string]StyleResource{}
	visiting := map[string]bool{}

	var dfs func(name string) (StyleResource, error)
	dfs = func(name string) (StyleResource, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return StyleResource{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return StyleResource{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return StyleResource{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// resolveMargin 读取 margin 之后的 1~4 个长度，语义同 CSS 简写；默认四边 20mm。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		var vals []string
		for _, next := range params[i+1:] {
			if len(vals) == 4 {
				break
			}
			if _, err := ParseLength(next.Value); err != nil {
				break
			}
			vals = append(vals, next.Value)
		}
		if e, err := parseEdges(strings.Join(vals, " ")); err == nil && len(vals) > 0 {
			margin = Margin{Top: e.Top, Right: e.Right, Bottom: e.Bottom, Left: e.Left}
		}
	}
	return margin
}

// parseArgs 把命令参数解析为 (样式名, 键值对)。参数个数为奇数时首个标识符是样式名。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && len(args)%2 == 1 && args[0].Type == "Ident" {
		style = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]StyleResource) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts["Body"]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return Color{R: 30, G: 30, B: 30}
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return Color{R: 30, G: 30, B: 30}
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(value[0:1], 2)),
			G: mustHex(strings.Repeat(value[1:2], 2)),
			B: mustHex(strings.Repeat(value[2:3], 2)),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
