package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/inline/fonts"
	"github.com/ByLCY/inline/layout"
	"github.com/ByLCY/inline/measure"
	"github.com/ByLCY/inline/renderer"
)

const (
	defaultStrokeWidth = 0.2
	guideStrokeWidth   = 0.1
)

// Renderer draws layout results via github.com/tdewolff/canvas and also measures text for layout.
type Renderer struct {
	baseDir string

	fontBlobs  map[string][]byte
	imageBlobs map[string][]byte

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	faceMu     sync.Mutex
	faces      map[faceKey]*canvas.FontFace
	measureErr error
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    ingest(opts.Fonts),
		imageBlobs:   ingest(opts.Images),
		fontFamilies: map[string]*fontFamilyEntry{},
		faces:        map[faceKey]*canvas.FontFace{},
	}
}

// ingest loads injected resources; unreadable paths error out when actually used.
func ingest(resources map[string]Resource) map[string][]byte {
	out := map[string][]byte{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			out[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			if data, _ := os.ReadFile(res.Path); len(data) > 0 {
				out[name] = data
			}
		}
	}
	return out
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	for _, para := range page.Paragraphs {
		// box backgrounds first, then images and text
		for _, frag := range para.Fragments {
			if frag.Kind == layout.FragmentBox {
				r.drawBox(ctx, frag)
			}
		}
		for _, frag := range para.Fragments {
			switch frag.Kind {
			case layout.FragmentImage:
				if err := r.drawImage(ctx, frag); err != nil {
					return err
				}
				r.drawBox(ctx, frag)
			case layout.FragmentText:
				if err := r.drawText(ctx, frag, resources.Fonts); err != nil {
					return err
				}
			}
		}
	}
	r.drawGuides(ctx, page.Guides)
	return nil
}

// drawText draws a text run, spreading justification expansion over its whitespace chunks.
func (r *Renderer) drawText(ctx *canvas.Context, frag layout.Fragment, fonts map[string]layout.FontResource) error {
	face, err := r.fontFace(resolveFontResource(frag.Font, fonts), toPt(frag.FontSize), frag.Color)
	if err != nil {
		return err
	}
	extra := 0.0
	if frag.Opportunities > 0 {
		extra = frag.Expansion / float64(frag.Opportunities)
	}
	if extra == 0 && frag.LetterSpacing == 0 {
		ctx.DrawText(frag.X, frag.Baseline, canvas.NewTextLine(face, frag.Text, canvas.Left))
		return nil
	}

	x := frag.X
	for _, chunk := range splitChunks(frag.Text, frag.LetterSpacing != 0) {
		if !chunk.space {
			ctx.DrawText(x, frag.Baseline, canvas.NewTextLine(face, chunk.text, canvas.Left))
		}
		x += face.TextWidth(chunk.text) + frag.LetterSpacing*float64(chunk.clusters)
		if chunk.space {
			x += extra
		}
	}
	return nil
}

type textChunk struct {
	text     string
	clusters int
	space    bool
}

// splitChunks splits text at whitespace, merging runs of spaces; with perCluster,
// non-space text is split per grapheme cluster.
func splitChunks(text string, perCluster bool) []textChunk {
	var out []textChunk
	for _, g := range measure.SplitGraphemes(text) {
		space := g == " " || g == "\t"
		if n := len(out); n > 0 && out[n-1].space == space && (space || !perCluster) {
			out[n-1].text += g
			out[n-1].clusters++
			continue
		}
		out = append(out, textChunk{text: g, clusters: 1, space: space})
	}
	return out
}

func (r *Renderer) drawBox(ctx *canvas.Context, frag layout.Fragment) {
	if frag.Fill == nil && frag.Stroke == nil {
		return
	}
	if frag.Fill != nil {
		ctx.SetFillColor(colorFromLayout(*frag.Fill))
	} else {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if frag.Stroke != nil {
		w := frag.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(*frag.Stroke))
		ctx.SetStrokeWidth(w)
	} else {
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeWidth(0)
	}
	ctx.DrawPath(frag.X, frag.Y, canvas.Rectangle(frag.Width, frag.Height))
}

// drawGuides outlines line boxes for debugging.
func (r *Renderer) drawGuides(ctx *canvas.Context, guides []layout.Rect) {
	if len(guides) == 0 {
		return
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(canvas.Hex("#E4572E"))
	ctx.SetStrokeWidth(guideStrokeWidth)
	for _, g := range guides {
		ctx.DrawPath(g.Left, g.Top, canvas.Rectangle(g.Width, g.Height))
	}
}

func (r *Renderer) drawImage(ctx *canvas.Context, frag layout.Fragment) error {
	if frag.Image == "" {
		return nil
	}
	img, err := r.loadImage(frag.Image)
	if err != nil {
		return err
	}
	dpmm := 1.0
	if frag.Width > 0 && img.Bounds().Dx() > 0 {
		dpmm = float64(img.Bounds().Dx()) / frag.Width
	}
	ctx.DrawImage(frag.X, frag.Y, img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
		return img, nil
	}
	if strings.HasPrefix(src, "embed:") {
		return nil, fmt.Errorf("图片资源 %s 未找到（embed 仅支持内置字体）", src)
	}
	if r.baseDir == "" && !filepath.IsAbs(src) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in:）", src)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	key := faceKey{font: fontCacheKey(font), size: size, color: col}
	r.faceMu.Lock()
	face, ok := r.faces[key]
	r.faceMu.Unlock()
	if ok {
		return face, nil
	}

	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	face = family.Face(size, colorFromLayout(col), style, canvas.FontNormal)
	r.faceMu.Lock()
	r.faces[key] = face
	r.faceMu.Unlock()
	return face, nil
}

type faceKey struct {
	font  string
	size  float64
	color layout.Color
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback(font.Fallback)
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font.Name, font.Src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(name, src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", name)
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		key := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[key]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", key)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback prefers the font's declared fallback, else built-in goregular. Caller holds fontMu.
func (r *Renderer) fallback(src string) (*canvas.FontFamily, canvas.FontStyle, error) {
	if src != "" {
		if data, err := r.loadFontBytes("fallback", src); err == nil {
			family := canvas.NewFontFamily("fallback:" + src)
			if err := family.LoadFont(data, 0, canvas.FontRegular); err == nil {
				return family, canvas.FontRegular, nil
			}
		}
	}
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load("goregular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("inline-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func resolveFontResource(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	for _, font := range fonts {
		return font
	}
	return layout.FontResource{}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
