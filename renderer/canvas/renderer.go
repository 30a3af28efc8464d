package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/HwlloChen/GoodNewsGenerator/fit"
	"github.com/HwlloChen/GoodNewsGenerator/fonts"
	"github.com/HwlloChen/GoodNewsGenerator/renderer"
	"github.com/HwlloChen/GoodNewsGenerator/template"
)

const jpegQuality = 90

// Renderer 基于 github.com/tdewolff/canvas 将文本合成到背景图上。
// 字体族按来源缓存、一次加载；多个 Render 调用可以并发执行。
type Renderer struct {
	baseDir string

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建渲染器，baseDir 为解析背景图与字体相对路径的素材目录。
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{
		baseDir:  baseDir,
		families: map[string]*canvas.FontFamily{},
	}
}

// Render 生成海报：解码背景图 → 适配搜索 → 居中绘制 → 编码输出。
func (r *Renderer) Render(job *renderer.Job) ([]byte, error) {
	if job == nil {
		return nil, fmt.Errorf("渲染请求为空")
	}
	tpl := job.Template
	if tpl.Image == "" {
		return nil, fmt.Errorf("模板 %s 缺少背景图", tpl.Name)
	}

	bg, err := r.loadImage(tpl.Image)
	if err != nil {
		return nil, err
	}
	width := float64(bg.Bounds().Dx())
	height := float64(bg.Bounds().Dy())

	primary, err := r.ensureFamily(job.FontSrc)
	if err != nil {
		return nil, err
	}
	plainFaces := newFaceSet(primary)

	// emoji 字体加载失败时静默降级为主字体测量，由调用方提前提示
	var emojiFaces *faceSet
	var emojiFamily *canvas.FontFamily
	if job.EmojiFontSrc != "" {
		if family, ferr := r.ensureEmojiFamily(job.EmojiFontSrc); ferr == nil {
			emojiFamily = family
			emojiFaces = newFaceSet(family)
		}
	}

	composite := &compositeMeasurer{plain: plainFaces, emoji: emojiFaces}
	engine := fit.Engine{
		Plain: &plainMeasurer{faces: plainFaces},
		Emoji: composite,
	}
	res, err := engine.Fit(fit.Request{
		Text:            job.Text,
		BoxWidth:        width * tpl.AreaWidth,
		BoxHeight:       height * tpl.AreaHeight,
		InitialFontSize: tpl.InitialFontSize,
		MinFontSize:     tpl.MinFontSize,
		FontSizeStep:    tpl.FontSizeStep,
	})
	if err != nil {
		return nil, err
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 坐标以左上角为原点

	ctx.DrawImage(0, 0, bg, canvas.DPMM(1.0))
	r.drawFitted(ctx, res, composite, primary, emojiFamily, width, height, tpl)

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	return encodeImage(img, job.Format)
}

// drawFitted 将适配结果逐行居中绘制。空白行不绘制字形但仍推进光标。
// stroke-width > 0 时普通字形按轮廓路径绘制，描边叠加在填充上；
// emoji 字形不参与描边（彩色字体无描边语义）。
func (r *Renderer) drawFitted(ctx *canvas.Context, res fit.Result, m *compositeMeasurer, primary, emoji *canvas.FontFamily, width, height float64, tpl template.Template) {
	size := res.FontSize
	lineHeight := float64(size) * fit.LineSpacing
	drawColor := colorFromTemplate(tpl.FontColor)

	stroked := tpl.StrokeWidth > 0
	if stroked {
		// DrawText 使用字体面自身的颜色，这里的样式只作用于轮廓路径
		ctx.SetFillColor(drawColor)
		ctx.SetStrokeColor(colorFromTemplate(tpl.StrokeColor))
		ctx.SetStrokeWidth(tpl.StrokeWidth)
	}

	plainFace := primary.Face(toPt(float64(size)), drawColor, canvas.FontRegular, canvas.FontNormal)
	var emojiFace *canvas.FontFace
	if emoji != nil {
		// emoji 字形按放大系数绘制，前进宽度仍按测量值推进
		emojiFace = emoji.Face(toPt(float64(size)*emojiScale), drawColor, canvas.FontRegular, canvas.FontNormal)
	}

	cursorY := (height - float64(len(res.Lines))*lineHeight) / 2
	for _, line := range res.Lines {
		if strings.TrimSpace(line) != "" {
			lineWidth := m.Measure(line, size)
			x := (width - lineWidth) / 2
			baseline := cursorY + plainFace.Metrics().Ascent
			if emojiFace == nil {
				drawRun(ctx, plainFace, stroked, x, baseline, line)
			} else {
				for _, run := range splitRuns(line) {
					if run.emoji {
						ctx.DrawText(x, baseline, canvas.NewTextLine(emojiFace, run.text, canvas.Left))
					} else {
						drawRun(ctx, plainFace, stroked, x, baseline, run.text)
					}
					x += m.measureRun(run, size)
				}
			}
		}
		cursorY += lineHeight
	}
}

// drawRun 绘制一段普通文本。描边时转为字形轮廓路径，由上下文的
// 填充与描边样式绘制；轮廓不可用时退回无描边的文本绘制。
func drawRun(ctx *canvas.Context, face *canvas.FontFace, stroked bool, x, y float64, text string) {
	if stroked {
		if p, _, err := face.ToPath(text); err == nil {
			ctx.DrawPath(x, y, p)
			return
		}
	}
	ctx.DrawText(x, y, canvas.NewTextLine(face, text, canvas.Left))
}

// measureRun 返回单个文本段的前进宽度，与 Measure 的分段口径一致。
func (m *compositeMeasurer) measureRun(run textRun, fontSize int) float64 {
	if run.emoji && m.emoji != nil {
		return m.emoji.face(fontSize).TextWidth(run.text)
	}
	return m.plain.face(fontSize).TextWidth(run.text)
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	path := src
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return nil, fmt.Errorf("未指定素材目录时不允许使用相对路径背景图：%s", src)
		}
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开背景图 %s: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码背景图 %s 失败: %w", src, err)
	}
	return img, nil
}

// ensureFamily 返回主字体族。加载指定字体失败时退回内置默认字体；
// 连默认字体也不可用时返回 FontUnavailable。
func (r *Renderer) ensureFamily(src string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[src]; ok {
		return family, nil
	}
	family, err := r.loadFamily(src, "primary")
	if err != nil && src != "" {
		// 指定字体不可用不是致命错误，退回内置默认字体
		family, err = r.loadFamily("", "primary")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fonts.ErrFontUnavailable, err)
	}
	r.families[src] = family
	return family, nil
}

// ensureEmojiFamily 返回 emoji 字体族，加载失败时不做回退。
func (r *Renderer) ensureEmojiFamily(src string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[src]; ok {
		return family, nil
	}
	family, err := r.loadFamily(src, "emoji")
	if err != nil {
		return nil, err
	}
	r.families[src] = family
	return family, nil
}

func (r *Renderer) loadFamily(src, name string) (*canvas.FontFamily, error) {
	data, err := fonts.Load(r.resolveFontPath(src))
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", src, err)
	}
	return family, nil
}

func (r *Renderer) resolveFontPath(src string) string {
	if src == "" || filepath.IsAbs(src) || r.baseDir == "" {
		return src
	}
	return filepath.Join(r.baseDir, src)
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", format)
	}
	return buf.Bytes(), nil
}

func colorFromTemplate(c template.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
