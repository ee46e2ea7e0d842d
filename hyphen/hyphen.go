// Package hyphen 基于 TeX 模式（speedata/hyphenation）提供断字词典，满足 layout.Hyphenator。
package hyphen

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/speedata/hyphenation"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/inline/layout"
)

var (
	//go:embed patterns/hyph-en-us.pat.txt
	enUSPatterns []byte
	//go:embed patterns/hyph-en-us.hyp.txt
	enUSExceptions []byte
)

// 默认的左右最少保留字符数（TeX 英语设置）。
const (
	DefaultLeftMin  = 2
	DefaultRightMin = 3
)

// Dictionary 是单一语言的模式集合。
type Dictionary struct {
	Tag      language.Tag
	LeftMin  int
	RightMin int

	lang *hyphenation.Lang
}

// ParseDictionary 读取 hyph-utf8 格式的模式文件（.pat.txt），exceptions 为可选的
// 例外词表（.hyp.txt，每词一个，用 - 标出断点）。
func ParseDictionary(tag language.Tag, patterns, exceptions io.Reader) (*Dictionary, error) {
	src := patterns
	if exceptions != nil {
		extra, err := exceptionPatterns(exceptions)
		if err != nil {
			return nil, err
		}
		src = io.MultiReader(patterns, strings.NewReader(extra))
	}
	lang, err := hyphenation.New(src)
	if err != nil {
		return nil, fmt.Errorf("读取断字模式失败: %w", err)
	}
	return &Dictionary{
		Tag:      tag,
		LeftMin:  DefaultLeftMin,
		RightMin: DefaultRightMin,
		lang:     lang,
	}, nil
}

// exceptionPatterns 把例外词改写成整词模式：断点权重 9，其余 8，压过普通模式。
func exceptionPatterns(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取断字例外失败: %w", err)
	}
	var b strings.Builder
	b.WriteByte('\n')
	for _, word := range strings.Fields(string(data)) {
		b.WriteByte('.')
		first := true
		hyphen := false
		for _, r := range strings.ToLower(word) {
			if r == '-' {
				hyphen = true
				continue
			}
			if !first {
				if hyphen {
					b.WriteByte('9')
				} else {
					b.WriteByte('8')
				}
			}
			b.WriteRune(r)
			first, hyphen = false, false
		}
		b.WriteString(".\n")
	}
	return b.String(), nil
}

// Positions 返回单词内允许断字的位置（位置 k 表示在 word[k-1] 与 word[k] 之间）。
func (d *Dictionary) Positions(word []rune) []int {
	n := len(word)
	if n < d.LeftMin+d.RightMin {
		return nil
	}
	var out []int
	for _, k := range d.lang.Hyphenate(string(d.fold(word))) {
		if k < max(d.LeftMin, 1) || k > n-max(d.RightMin, 1) {
			continue
		}
		if unicode.IsLetter(word[k-1]) && unicode.IsLetter(word[k]) {
			out = append(out, k)
		}
	}
	return out
}

// fold 按语言规则转小写；长度变化时退回逐字符转换以保持下标对齐。
func (d *Dictionary) fold(word []rune) []rune {
	folded := []rune(cases.Lower(d.Tag).String(string(word)))
	if len(folded) == len(word) {
		return folded
	}
	out := make([]rune, len(word))
	for i, r := range word {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// Hyphenator 按语言选择词典。
type Hyphenator struct {
	dicts   []*Dictionary
	matcher language.Matcher
}

var _ layout.Hyphenator = (*Hyphenator)(nil)

// New 用给定词典创建 Hyphenator。
func New(dicts ...*Dictionary) *Hyphenator {
	tags := make([]language.Tag, len(dicts))
	for i, d := range dicts {
		tags[i] = d.Tag
	}
	return &Hyphenator{dicts: dicts, matcher: language.NewMatcher(tags)}
}

// Default 返回内置英语（美国）词典。
func Default() *Hyphenator {
	d, err := ParseDictionary(language.AmericanEnglish, bytes.NewReader(enUSPatterns), bytes.NewReader(enUSExceptions))
	if err != nil {
		panic(err)
	}
	return New(d)
}

// Dictionaries 返回按优先级排列的词典。
func (h *Hyphenator) Dictionaries() []*Dictionary { return h.dicts }

func (h *Hyphenator) lookup(locale language.Tag) *Dictionary {
	if h == nil || len(h.dicts) == 0 || locale == language.Und {
		return nil
	}
	_, index, confidence := h.matcher.Match(locale)
	if confidence == language.No {
		return nil
	}
	return h.dicts[index]
}

// CanHyphenate 实现 layout.Hyphenator。
func (h *Hyphenator) CanHyphenate(locale language.Tag) bool {
	return h.lookup(locale) != nil
}

// LastHyphenLocation 实现 layout.Hyphenator：返回 before 之前最后一个断字位置。
// 首尾的标点不参与模式匹配。
func (h *Hyphenator) LastHyphenLocation(text []rune, before int, locale language.Tag) int {
	d := h.lookup(locale)
	if d == nil {
		return 0
	}
	start, end := letterSpan(text)
	if end-start == 0 {
		return 0
	}
	last := 0
	for _, pos := range d.Positions(text[start:end]) {
		if start+pos >= before {
			break
		}
		last = start + pos
	}
	return last
}

// letterSpan 跳过首尾的非字母字符（引号、标点）。
func letterSpan(text []rune) (int, int) {
	start, end := 0, len(text)
	for start < end && !unicode.IsLetter(text[start]) {
		start++
	}
	for end > start && !unicode.IsLetter(text[end-1]) {
		end--
	}
	return start, end
}
