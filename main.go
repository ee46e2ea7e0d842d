package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/ByLCY/inline/dsl"
	"github.com/ByLCY/inline/hyphen"
	"github.com/ByLCY/inline/layout"
	"github.com/ByLCY/inline/measure"
	"github.com/ByLCY/inline/renderer"
	canvasrenderer "github.com/ByLCY/inline/renderer/canvas"
	textrenderer "github.com/ByLCY/inline/renderer/text"
)

// config 汇总命令行参数。
type config struct {
	input      string
	output     string
	debug      string
	format     string
	data       any
	mono       bool
	patterns   string
	patternLn  string
	exceptions string
	opts       layout.BuildOptions
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/demo.inline", "DSL 文件路径")
	flag.StringVar(&cfg.output, "out", "output/demo.pdf", "输出路径")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&cfg.format, "format", "pdf", "输出格式：pdf 或 txt")
	flag.BoolVar(&cfg.opts.Debug.RawUnits, "debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	flag.BoolVar(&cfg.opts.Debug.LineBoxes, "debug-lines", false, "在输出中绘制行盒边框")
	flag.BoolVar(&cfg.mono, "mono", false, "使用等宽测量后端（不加载字体）")
	flag.BoolVar(&cfg.opts.QuirksMode, "quirks", false, "启用 quirks 模式的行高处理")
	flag.BoolVar(&cfg.opts.HyphenationDisabled, "no-hyphens", false, "禁用自动断字")
	flag.Float64Var(&cfg.opts.PixelSize, "pixel", 0, "half-leading 取整粒度（mm），0 表示不取整")
	flag.StringVar(&cfg.patterns, "patterns", "", "额外的断字模式文件")
	flag.StringVar(&cfg.patternLn, "patterns-lang", "en-US", "断字模式文件对应的语言")
	flag.StringVar(&cfg.exceptions, "hyphen-exceptions", "", "与 -patterns 配套的断字例外词表")
	dataJSON := flag.String("data", "", "绑定到 DSL 文本占位符的 JSON 数据")
	flag.Parse()

	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}
	if err := run(cfg); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", cfg.output)
}

// run 串联解析、布局与渲染。
func run(cfg config) error {
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.ParseNamed(cfg.input, file)
	if err != nil {
		return err
	}

	hy, err := loadHyphenator(cfg.patterns, cfg.exceptions, cfg.patternLn)
	if err != nil {
		return err
	}

	canvasR := canvasrenderer.NewRenderer(filepath.Dir(cfg.input))
	opts := cfg.opts
	opts.Hyphenator = hy
	opts.Data = cfg.data
	opts.Measurer = canvasR
	if cfg.mono {
		opts.Measurer = measure.NewMonospace()
	}

	var r renderer.Renderer
	switch cfg.format {
	case "pdf":
		r = canvasR
	case "txt", "text":
		r = textrenderer.NewRenderer()
	default:
		return fmt.Errorf("不支持的输出格式 %s", cfg.format)
	}

	result, err := layout.Build(doc, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if err := canvasR.MeasureErr(); err != nil {
		return fmt.Errorf("字体测量失败: %w", err)
	}

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

// loadHyphenator 返回内置英语词典，另行指定模式文件时一并加载。
func loadHyphenator(path, exceptions, lang string) (*hyphen.Hyphenator, error) {
	builtin := hyphen.Default()
	if path == "" {
		return builtin, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("断字语言 %s 无法解析: %w", lang, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取断字模式 %s 失败: %w", path, err)
	}
	defer f.Close()
	var exc io.Reader
	if exceptions != "" {
		ef, err := os.Open(exceptions)
		if err != nil {
			return nil, fmt.Errorf("读取断字例外 %s 失败: %w", exceptions, err)
		}
		defer ef.Close()
		exc = ef
	}
	dict, err := hyphen.ParseDictionary(tag, f, exc)
	if err != nil {
		return nil, err
	}
	return hyphen.New(append([]*hyphen.Dictionary{dict}, builtin.Dictionaries()...)...), nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
