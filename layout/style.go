package layout

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// WhiteSpace 对应 CSS white-space。
type WhiteSpace int

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpacePre
	WhiteSpacePreWrap
	WhiteSpacePreLine
	WhiteSpaceNoWrap
	WhiteSpaceBreakSpaces
)

// PreserveNewline 表示换行符是否保留为强制换行。
func (w WhiteSpace) PreserveNewline() bool {
	return w != WhiteSpaceNormal && w != WhiteSpaceNoWrap
}

// CollapseWhiteSpace 表示连续空白是否折叠。
func (w WhiteSpace) CollapseWhiteSpace() bool {
	return w == WhiteSpaceNormal || w == WhiteSpaceNoWrap || w == WhiteSpacePreLine
}

// AutoWrap 表示内容是否允许自动折行。
func (w WhiteSpace) AutoWrap() bool {
	return w != WhiteSpacePre && w != WhiteSpaceNoWrap
}

// PreserveTrailingWhitespace 表示行尾空白是否保留（不可裁剪）。
func (w WhiteSpace) PreserveTrailingWhitespace() bool {
	return w == WhiteSpacePre || w == WhiteSpacePreWrap || w == WhiteSpaceBreakSpaces
}

func (w WhiteSpace) String() string {
	switch w {
	case WhiteSpacePre:
		return "pre"
	case WhiteSpacePreWrap:
		return "pre-wrap"
	case WhiteSpacePreLine:
		return "pre-line"
	case WhiteSpaceNoWrap:
		return "nowrap"
	case WhiteSpaceBreakSpaces:
		return "break-spaces"
	default:
		return "normal"
	}
}

// ParseWhiteSpace 解析 DSL 中的 white-space 取值。
func ParseWhiteSpace(v string) (WhiteSpace, error) {
	switch normalizeKeyword(v) {
	case "", "normal":
		return WhiteSpaceNormal, nil
	case "pre":
		return WhiteSpacePre, nil
	case "pre-wrap":
		return WhiteSpacePreWrap, nil
	case "pre-line":
		return WhiteSpacePreLine, nil
	case "nowrap", "no-wrap":
		return WhiteSpaceNoWrap, nil
	case "break-spaces":
		return WhiteSpaceBreakSpaces, nil
	}
	return WhiteSpaceNormal, fmt.Errorf("white-space 取值 %q 无法识别", v)
}

// WordBreak 对应 CSS word-break。
type WordBreak int

const (
	WordBreakNormal WordBreak = iota
	WordBreakBreakAll
	WordBreakKeepAll
	WordBreakBreakWord
)

// ParseWordBreak 解析 word-break。
func ParseWordBreak(v string) (WordBreak, error) {
	switch normalizeKeyword(v) {
	case "", "normal":
		return WordBreakNormal, nil
	case "break-all":
		return WordBreakBreakAll, nil
	case "keep-all":
		return WordBreakKeepAll, nil
	case "break-word":
		return WordBreakBreakWord, nil
	}
	return WordBreakNormal, fmt.Errorf("word-break 取值 %q 无法识别", v)
}

// Hyphens 对应 CSS hyphens，默认 manual。
type Hyphens int

const (
	HyphensManual Hyphens = iota
	HyphensNone
	HyphensAuto
)

// ParseHyphens 解析 hyphens。
func ParseHyphens(v string) (Hyphens, error) {
	switch normalizeKeyword(v) {
	case "", "manual":
		return HyphensManual, nil
	case "none":
		return HyphensNone, nil
	case "auto":
		return HyphensAuto, nil
	}
	return HyphensManual, fmt.Errorf("hyphens 取值 %q 无法识别", v)
}

// TextAlign 对应 CSS text-align。
type TextAlign int

const (
	TextAlignStart TextAlign = iota
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignEnd
	TextAlignJustify
)

// ParseTextAlign 解析 text-align，兼容 middle 写法。
func ParseTextAlign(v string) (TextAlign, error) {
	switch normalizeKeyword(v) {
	case "", "start":
		return TextAlignStart, nil
	case "left":
		return TextAlignLeft, nil
	case "right":
		return TextAlignRight, nil
	case "center", "middle":
		return TextAlignCenter, nil
	case "end":
		return TextAlignEnd, nil
	case "justify":
		return TextAlignJustify, nil
	}
	return TextAlignStart, fmt.Errorf("text-align 取值 %q 无法识别", v)
}

// VerticalAlign 对应 CSS vertical-align（仅支持 baseline/top/bottom）。
type VerticalAlign int

const (
	VerticalAlignBaseline VerticalAlign = iota
	VerticalAlignTop
	VerticalAlignBottom
)

// ParseVerticalAlign 解析 vertical-align。
func ParseVerticalAlign(v string) (VerticalAlign, error) {
	switch normalizeKeyword(v) {
	case "", "baseline":
		return VerticalAlignBaseline, nil
	case "top":
		return VerticalAlignTop, nil
	case "bottom":
		return VerticalAlignBottom, nil
	}
	return VerticalAlignBaseline, fmt.Errorf("vertical-align 取值 %q 无法识别", v)
}

// NBSPMode 对应 -webkit-nbsp-mode。
type NBSPMode int

const (
	NBSPModeNormal NBSPMode = iota
	NBSPModeSpace
)

// ParseNBSPMode 解析 nbsp-mode。
func ParseNBSPMode(v string) (NBSPMode, error) {
	switch normalizeKeyword(v) {
	case "", "normal":
		return NBSPModeNormal, nil
	case "space":
		return NBSPModeSpace, nil
	}
	return NBSPModeNormal, fmt.Errorf("nbsp-mode 取值 %q 无法识别", v)
}

// FontMetrics 是测量后端给出的字体度量，单位与布局一致（mm）。
type FontMetrics struct {
	Ascent      float64 `json:"ascent"`
	Descent     float64 `json:"descent"`
	LineGap     float64 `json:"lineGap"`
	SpaceWidth  float64 `json:"spaceWidth"` // 含 letter-spacing
	HyphenWidth float64 `json:"hyphenWidth"`
}

// Height 返回字体内容高度 ascent+descent。
func (m FontMetrics) Height() float64 { return m.Ascent + m.Descent }

// Style 是布局阶段使用的已解析样式。
type Style struct {
	Font          FontResource
	FontSize      float64 // mm
	Color         Color
	LetterSpacing float64
	// LineHeight 为计算后的行高，<=0 时退化为字体高度。
	LineHeight float64

	WhiteSpace    WhiteSpace
	WordBreak     WordBreak
	Hyphens       Hyphens
	TextAlign     TextAlign
	VerticalAlign VerticalAlign
	NBSPMode      NBSPMode

	Locale            language.Tag
	HyphenLimitBefore int // 0 表示 auto
	HyphenLimitAfter  int
	HyphenString      string
}

// DefaultStyle 返回 12pt、normal 的默认样式。
func DefaultStyle() Style {
	return Style{
		FontSize:     12 * PtToMm,
		Color:        Color{R: 30, G: 30, B: 30},
		Locale:       language.Und,
		HyphenString: "-",
	}
}

// ComputedLineHeight 根据度量返回行高。
func (s Style) ComputedLineHeight(m FontMetrics) float64 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return m.Height()
}

func normalizeKeyword(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
