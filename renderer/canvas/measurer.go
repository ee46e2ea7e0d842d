package canvasrenderer

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/inline/layout"
	"github.com/ByLCY/inline/measure"
)

// Layout works in mm; faces are created in pt and canvas reports TextWidth and Metrics in mm.

// styleFace returns the face for style, recording the error and returning nil on failure.
func (r *Renderer) styleFace(style layout.Style) *canvas.FontFace {
	face, err := r.fontFace(style.Font, toPt(style.FontSize), style.Color)
	if err != nil {
		r.faceMu.Lock()
		if r.measureErr == nil {
			r.measureErr = err
		}
		r.faceMu.Unlock()
		return nil
	}
	return face
}

// MeasureErr returns the first font error hit while measuring.
func (r *Renderer) MeasureErr() error {
	r.faceMu.Lock()
	defer r.faceMu.Unlock()
	return r.measureErr
}

func boxText(box *layout.Box, start, length int) (string, bool) {
	if box == nil || length <= 0 || start < 0 || start >= len(box.Text) {
		return "", false
	}
	end := min(start+length, len(box.Text))
	return string(box.Text[start:end]), true
}

// Width implements layout.Measurer; letter-spacing is added per grapheme cluster.
func (r *Renderer) Width(box *layout.Box, start, length int) float64 {
	text, ok := boxText(box, start, length)
	if !ok {
		return 0
	}
	face := r.styleFace(box.Style)
	if face == nil {
		return 0
	}
	return face.TextWidth(text) + box.Style.LetterSpacing*float64(len(measure.SplitGraphemes(text)))
}

// Split implements layout.Measurer, binary searching the longest grapheme-cluster
// prefix that fits in available.
func (r *Renderer) Split(box *layout.Box, start, length int, _ float64, available float64) (int, float64) {
	text, ok := boxText(box, start, length)
	if !ok {
		return 0, 0
	}
	face := r.styleFace(box.Style)
	if face == nil {
		return 0, 0
	}
	ls := box.Style.LetterSpacing
	clusters := measure.SplitGraphemes(text)
	// ends[k] is the byte length of the first k clusters.
	ends := make([]int, len(clusters)+1)
	for i, g := range clusters {
		ends[i+1] = ends[i] + len(g)
	}
	prefixWidth := func(k int) float64 {
		return face.TextWidth(text[:ends[k]]) + ls*float64(k)
	}
	k := sort.Search(len(clusters), func(i int) bool { return prefixWidth(i+1) > available })
	if k == 0 {
		return 0, 0
	}
	return utf8.RuneCountInString(text[:ends[k]]), prefixWidth(k)
}

// Metrics implements layout.Measurer.
func (r *Renderer) Metrics(style layout.Style) layout.FontMetrics {
	face := r.styleFace(style)
	if face == nil {
		return layout.FontMetrics{Ascent: 0.8 * style.FontSize, Descent: 0.2 * style.FontSize}
	}
	m := face.Metrics()
	hyphen := style.HyphenString
	if hyphen == "" {
		hyphen = "-"
	}
	return layout.FontMetrics{
		Ascent:      m.Ascent,
		Descent:     math.Abs(m.Descent),
		LineGap:     m.LineGap,
		SpaceWidth:  face.TextWidth(" ") + style.LetterSpacing,
		HyphenWidth: face.TextWidth(hyphen),
	}
}
