// Package fit 在固定尺寸的文本框内搜索 (字号, 每行字符预算)，
// 使折行后的文本既不超宽也不超高。搜索是确定性的、有界的：
// 找不到可行解时返回降级结果而不是报错。
package fit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLines 文本最多折成的行数。每多一行都会放松单行宽度要求，
	// 以纵向空间换横向适配，超过 3 行后收益递减。
	MaxLines = 3

	// LineSpacing 行距系数：行高 = 字号 × LineSpacing。
	LineSpacing = 1.5

	// DefaultFontSizeStep 字号递减的默认步长。
	DefaultFontSizeStep = 5

	// Placeholder 空白输入的替代文本，保证搜索不会作用于空串。
	Placeholder = "内容为空"
)

// offsets 每行字符预算的尝试偏移，按固定优先顺序。
// 顺序与 "行数必须精确匹配" 的拒绝规则共同构成对外可观察行为，
// 调整顺序或补充 -3 等偏移都会改变输出，不要"优化"。
var offsets = [...]int{0, -1, 1, -2, 2}

// Measurer 返回文本在指定字号下的渲染宽度，单位与 Request 的
// 盒尺寸一致。实现见 renderer/canvas。
type Measurer interface {
	Measure(text string, fontSize int) float64
}

// Request 描述一次适配请求。尺寸为设备无关单位，字号为正整数。
type Request struct {
	Text            string
	BoxWidth        float64
	BoxHeight       float64
	InitialFontSize int
	MinFontSize     int
	FontSizeStep    int // <=0 时取 DefaultFontSizeStep
}

// Result 为适配结果。FitGuaranteed 为 true 时保证：
// 各行测量宽度 ≤ BoxWidth 且 len(Lines)×FontSize×LineSpacing ≤ BoxHeight。
// 为 false 表示降级结果，渲染时可能溢出文本框。
type Result struct {
	FontSize      int
	CharsPerLine  int
	Lines         []string
	FitGuaranteed bool
}

// Engine 组合分类、折行与测量，执行适配搜索。
// Plain 测量普通文本，Emoji 测量含 emoji 的文本；Emoji 为 nil 时
// 全部退回 Plain。Engine 自身无状态，可被并发使用。
type Engine struct {
	Plain Measurer
	Emoji Measurer
}

// Fit 执行三层搜索：行数 1..MaxLines × 字号从大到小 × 预算偏移。
// 返回首个满足盒约束的候选；全部失败时返回 FitGuaranteed=false 的
// 降级结果。文本先做空白归一化，空白文本替换为 Placeholder。
func (e *Engine) Fit(req Request) (Result, error) {
	if req.InitialFontSize < 1 || req.MinFontSize < 1 {
		return Result{}, fmt.Errorf("fit: 字号必须为正整数（initial=%d min=%d）", req.InitialFontSize, req.MinFontSize)
	}
	if req.InitialFontSize < req.MinFontSize {
		return Result{}, fmt.Errorf("fit: 初始字号 %d 小于最小字号 %d", req.InitialFontSize, req.MinFontSize)
	}
	if req.BoxWidth <= 0 || req.BoxHeight <= 0 {
		return Result{}, fmt.Errorf("fit: 文本框尺寸必须为正（%gx%g）", req.BoxWidth, req.BoxHeight)
	}
	step := req.FontSizeStep
	if step <= 0 {
		step = DefaultFontSizeStep
	}

	text := Normalize(req.Text)

	// 整条文本只分类一次：含任意 emoji 即整体使用 emoji 感知测量
	m := e.Plain
	if ContainsEmoji(text) && e.Emoji != nil {
		m = e.Emoji
	}
	if m == nil {
		return Result{}, fmt.Errorf("fit: 缺少文本测量后端")
	}

	runeLen := utf8.RuneCountInString(text)

	for lineCount := 1; lineCount <= MaxLines; lineCount++ {
		chars0 := ceilDiv(runeLen, lineCount)

		// 每个行数档位都从初始字号重新开始搜索，避免上一档位
		// 收敛到的小字号拖累本档位，结果偏向可容纳的最大字号。
		for size := req.InitialFontSize; size >= req.MinFontSize; size -= step {
			for _, off := range offsets {
				budget := chars0 + off
				if budget < 1 {
					budget = 1
				}
				lines := Wrap(text, budget)
				if len(lines) != lineCount {
					continue
				}
				if !fits(m, lines, size, req.BoxWidth, req.BoxHeight) {
					continue
				}
				return Result{
					FontSize:      size,
					CharsPerLine:  budget,
					Lines:         lines,
					FitGuaranteed: true,
				}, nil
			}
		}
	}

	// 降级：最小字号 + 平均预算，折行仍超出 MaxLines 时截断。
	// 溢出不是错误，由调用方通过 FitGuaranteed 感知。
	budget := ceilDiv(runeLen, MaxLines)
	lines := Wrap(text, budget)
	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
	}
	return Result{
		FontSize:      req.MinFontSize,
		CharsPerLine:  budget,
		Lines:         lines,
		FitGuaranteed: false,
	}, nil
}

// Normalize 将空白序列压缩为单个空格并去除首尾空白；
// 结果为空时返回 Placeholder，保证引擎不会处理空串。
func Normalize(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Placeholder
	}
	return strings.Join(fields, " ")
}

// fits 判断一组行在指定字号下是否落在文本框内。
func fits(m Measurer, lines []string, fontSize int, boxWidth, boxHeight float64) bool {
	if float64(len(lines))*float64(fontSize)*LineSpacing > boxHeight {
		return false
	}
	for _, line := range lines {
		if m.Measure(line, fontSize) > boxWidth {
			return false
		}
	}
	return true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
