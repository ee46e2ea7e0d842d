package layout

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

const noBreakSpace = '\u00a0'

func isWhitespaceChar(c rune, preserveNewline bool) bool {
	return c == ' ' || c == '\t' || (c == '\n' && !preserveNewline)
}

// SegmentText 把一个文本盒拆成空白、非空白与软换行条目，条目之间无缝覆盖全部文本。
// 空文本产生唯一的空条目。
func SegmentText(box *Box, m Measurer) []Item {
	if box == nil {
		return nil
	}
	text := box.Text
	if len(text) == 0 {
		return []Item{{Kind: ItemText, Box: box.ID, TextKind: TextEmpty, HasWidth: true}}
	}

	style := box.Style
	preserveNewline := style.WhiteSpace.PreserveNewline()
	simplified := box.SimplifiedMeasuring && m != nil
	breaks := breakOpportunities(text, style)

	measured := func(start, length int) (float64, bool) {
		if !simplified {
			return 0, false
		}
		return m.Width(box, start, length), true
	}

	items := make([]Item, 0, len(text)/3+1)
	pos := 0
	for pos < len(text) {
		c := text[pos]
		// 保留换行的样式下，段落换行符计为强制换行。
		if c == '\n' && preserveNewline {
			items = append(items, Item{Kind: ItemSoftLineBreak, Box: box.ID, Start: pos, Length: 1})
			pos++
			continue
		}

		if isWhitespaceChar(c, preserveNewline) {
			length := 1
			for pos+length < len(text) && isWhitespaceChar(text[pos+length], preserveNewline) {
				length++
			}
			item := Item{Kind: ItemText, Box: box.ID, Start: pos, Length: length, TextKind: TextWhitespace}
			if simplified && (length == 1 || style.WhiteSpace.CollapseWhiteSpace()) {
				item.Width = m.Metrics(style).SpaceWidth
				item.HasWidth = true
			} else {
				item.Width, item.HasWidth = measured(pos, length)
			}
			items = append(items, item)
			pos += length
			continue
		}

		length := nextBreakablePosition(text, pos, breaks, preserveNewline) - pos
		item := Item{Kind: ItemText, Box: box.ID, Start: pos, Length: length, TextKind: TextNonWhitespace}
		item.Width, item.HasWidth = measured(pos, length)
		items = append(items, item)
		pos += length
	}
	return items
}

// nextBreakablePosition 返回 start 之后（严格大于 start）的下一个可断点。
func nextBreakablePosition(text []rune, start int, breaks []bool, preserveNewline bool) int {
	for i := start + 1; i < len(text); i++ {
		c := text[i]
		if isWhitespaceChar(c, preserveNewline) || (c == '\n' && preserveNewline) {
			return i
		}
		if breaks[i] {
			return i
		}
	}
	return len(text)
}

// breakOpportunities 依据 UAX #14 计算每个位置之前是否允许断行。
func breakOpportunities(text []rune, style Style) []bool {
	breaks := make([]bool, len(text)+1)
	var seg segmenter.Segmenter
	seg.Init(text)
	it := seg.LineIterator()
	for it.Next() {
		line := it.Line()
		end := line.Offset + len(line.Text)
		if end > 0 && end < len(text) {
			breaks[end] = true
		}
	}

	if style.WordBreak == WordBreakKeepAll {
		for i := 1; i < len(text); i++ {
			if breaks[i] && unicode.IsLetter(text[i-1]) && unicode.IsLetter(text[i]) {
				breaks[i] = false
			}
		}
	}

	if style.NBSPMode == NBSPModeSpace && style.WhiteSpace.AutoWrap() {
		for i, c := range text {
			if c != noBreakSpace {
				continue
			}
			if i > 0 {
				breaks[i] = true
			}
			if i+1 < len(text) {
				breaks[i+1] = true
			}
		}
	}
	return breaks
}
