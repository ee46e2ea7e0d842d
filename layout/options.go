package layout

import (
	"errors"

	"golang.org/x/text/language"
)

// ErrDisabled 表示行内排版路径在配置中被关闭。
var ErrDisabled = errors.New("layout: 行内排版已禁用")

// DefaultMinHyphenationWidthFactor 是断字所需最小宽度相对字号的倍数。
const DefaultMinHyphenationWidthFactor = 1.25

// Measurer 是文本测量后端。所有宽度均包含 letter-spacing，单位 mm。
type Measurer interface {
	// Width 测量 box.Text[start:start+length] 的宽度。
	Width(box *Box, start, length int) float64
	// Split 返回能放进 available 的最长前缀长度与其宽度。
	Split(box *Box, start, length int, runWidth, available float64) (int, float64)
	// Metrics 返回样式对应的字体度量。
	Metrics(style Style) FontMetrics
}

// Hyphenator 是断字词典后端。
type Hyphenator interface {
	CanHyphenate(locale language.Tag) bool
	// LastHyphenLocation 返回 before 之前（不含）最后一个合法断字位置，0 表示没有。
	LastHyphenLocation(text []rune, before int, locale language.Tag) int
}

// Options 配置行内排版器，构造时显式传入。
type Options struct {
	Enabled    bool
	Measurer   Measurer
	Hyphenator Hyphenator

	HyphenationDisabled bool
	SkipAlignment       bool
	QuirksMode          bool
	// MinHyphenationWidthFactor <=0 时使用默认值 1.25。
	MinHyphenationWidthFactor float64
	// PixelSize 是 half-leading 取整的粒度，<=0 时不取整。
	PixelSize float64
}

// DefaultOptions 返回启用状态的默认配置。
func DefaultOptions(m Measurer) Options {
	return Options{
		Enabled:                   true,
		Measurer:                  m,
		MinHyphenationWidthFactor: DefaultMinHyphenationWidthFactor,
	}
}

func (o Options) hyphenationFactor() float64 {
	if o.MinHyphenationWidthFactor <= 0 {
		return DefaultMinHyphenationWidthFactor
	}
	return o.MinHyphenationWidthFactor
}

// BuildOptions 配置文档构建阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Measurer            Measurer
	Hyphenator          Hyphenator
	QuirksMode          bool
	HyphenationDisabled bool
	// PixelSize 是 half-leading 取整粒度（mm），<=0 时不取整。
	PixelSize float64
	// Data 用于替换文本与元信息中的 ${path} 占位符。
	Data  any
	Debug DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits  bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
	LineBoxes bool // 渲染时绘制行盒边框
}
