package layout

// 该文件定义文档级布局结果与资源描述，供构建、渲染与调试 JSON 共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色、图片与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Colors map[string]Color         `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]StyleResource `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<name> 或 builtin:<name>。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Style     string `json:"style"`
	Family    string `json:"family"`    // 渲染器使用的 Family 名称
	IsBuiltin bool   `json:"isBuiltin"` // 是否为调用方注入的内建字体
	Fallback  string `json:"fallback"`
}

// ImageResource 记录图片资源，宽高以毫米为单位。
type ImageResource struct {
	Name   string  `json:"name"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Page 记录页面尺寸、边距以及落在本页的段落片段。
type Page struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Margin     Margin      `json:"margin"`
	Paragraphs []Paragraph `json:"paragraphs"`
	// Guides 仅在调试时填充：每个行盒的矩形。
	Guides []Rect `json:"guides,omitempty"`
}

// Paragraph 是段落在某一页上的部分，坐标均为页面坐标（mm）。
// 跨页的段落会在每一页各产生一个 Paragraph。
type Paragraph struct {
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Lines     []LineBox       `json:"lines"`
	Fragments []Fragment      `json:"fragments"`
	Debug     *ParagraphDebug `json:"debug,omitempty"`
}

// FragmentKind 区分可绘制片段。
type FragmentKind string

const (
	FragmentText  FragmentKind = "text"
	FragmentBox   FragmentKind = "box"
	FragmentImage FragmentKind = "image"
)

// Fragment 是可以直接绘制的元素。
type Fragment struct {
	Kind   FragmentKind `json:"kind"`
	Box    BoxID        `json:"box"`
	Line   int          `json:"line"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`

	// 文本片段
	Baseline      float64 `json:"baseline,omitempty"`
	Text          string  `json:"text,omitempty"`
	Font          string  `json:"font,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	Color         Color   `json:"color"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	// Expansion 是两端对齐分配到该片段的总宽度，由空白平均分摊。
	Expansion     float64 `json:"expansion,omitempty"`
	Opportunities int     `json:"opportunities,omitempty"`

	// 盒子与图片片段
	Image       string  `json:"image,omitempty"`
	Stroke      *Color  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Fill        *Color  `json:"fill,omitempty"`
}

// ParagraphDebug holds optional debug info displayed only when enabled by BuildOptions.
type ParagraphDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
	Items    int       `json:"items"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// StyleResource 是 DSL 中声明的可继承样式。
type StyleResource struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
