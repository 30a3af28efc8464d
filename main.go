package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/HwlloChen/GoodNewsGenerator/renderer"
	canvasrenderer "github.com/HwlloChen/GoodNewsGenerator/renderer/canvas"
	"github.com/HwlloChen/GoodNewsGenerator/template"
)

// 默认探测的 emoji 字体文件名，位于素材目录下。
const defaultEmojiFont = "NotoColorEmoji.ttf"

func main() {
	newsType := flag.String("type", "good", "图片类型，good 为喜报，bad 为悲报")
	output := flag.String("out", "output.jpg", "输出文件路径，扩展名决定编码格式")
	assets := flag.String("assets", "assets", "素材目录路径")
	fontSrc := flag.String("font", "", "字体文件路径（相对素材目录或绝对路径），默认使用内置字体")
	emojiSrc := flag.String("emoji-font", "", "emoji 字体文件路径，缺省时自动探测素材目录下的 "+defaultEmojiFont)
	templatesPath := flag.String("templates", "", "模板声明文件路径，可覆盖或新增内置模板")
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		log.Fatalf("缺少要显示的文本，用法：%s [flags] <text>", filepath.Base(os.Args[0]))
	}

	set, err := loadTemplates(*templatesPath)
	if err != nil {
		log.Fatalf("加载模板失败: %v", err)
	}
	tpl, ok := set[*newsType]
	if !ok {
		log.Fatalf("不支持的图片类型: %s", *newsType)
	}

	var r renderer.Renderer = canvasrenderer.NewRenderer(*assets)
	if err := run(text, tpl, *fontSrc, resolveEmojiFont(*assets, *emojiSrc), *output, r); err != nil {
		log.Fatalf("生成图片失败: %v", err)
	}
	fmt.Printf("图片已生成：%s\n", *output)
}

// run 串联适配、渲染与输出。
func run(text string, tpl template.Template, fontSrc, emojiSrc, outputPath string, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}

	data, err := r.Render(&renderer.Job{
		Text:         text,
		Template:     tpl,
		FontSrc:      fontSrc,
		EmojiFontSrc: emojiSrc,
		Format:       formatFromExt(outputPath),
	})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入图片文件失败: %w", err)
	}
	return nil
}

func loadTemplates(path string) (map[string]template.Template, error) {
	if path == "" {
		return template.Builtins(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板声明文件 %s: %w", path, err)
	}
	defer file.Close()
	return template.Read(file)
}

// resolveEmojiFont 确定 emoji 字体来源。字体缺失不阻止生成，
// 仅打印警告，测量与绘制将按普通字形近似。
func resolveEmojiFont(assetsDir, src string) string {
	if src == "" {
		candidate := filepath.Join(assetsDir, defaultEmojiFont)
		if _, err := os.Stat(candidate); err != nil {
			log.Printf("未发现 emoji 字体文件，emoji 显示可能不正常")
			return ""
		}
		return defaultEmojiFont
	}
	probe := src
	if !filepath.IsAbs(probe) {
		probe = filepath.Join(assetsDir, probe)
	}
	if _, err := os.Stat(probe); err != nil {
		log.Printf("emoji 字体 %s 不可用，emoji 将按普通字形近似: %v", src, err)
	}
	return src
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	default:
		return "jpg"
	}
}
