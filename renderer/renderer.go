package renderer

import "github.com/HwlloChen/GoodNewsGenerator/template"

// Job 描述一次海报生成请求。FontSrc 为空时使用内置默认字体；
// EmojiFontSrc 为空或加载失败时降级为纯文本测量与绘制。
type Job struct {
	Text         string
	Template     template.Template
	FontSrc      string
	EmojiFontSrc string
	Format       string // "jpg"（默认）或 "png"
}

// Renderer 将生成请求渲染为图片字节。
type Renderer interface {
	Render(job *Job) ([]byte, error)
}
