package fit

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// runeMeasurer 以"码点数 × 字号 × 系数"模拟文本宽度，保证测试确定。
type runeMeasurer struct {
	perChar float64
	calls   int
}

func (m *runeMeasurer) Measure(text string, fontSize int) float64 {
	m.calls++
	return float64(utf8.RuneCountInString(text)) * float64(fontSize) * m.perChar
}

func newEngine(perChar float64) (*Engine, *runeMeasurer) {
	m := &runeMeasurer{perChar: perChar}
	return &Engine{Plain: m}, m
}

func TestFitSingleLinePreferred(t *testing.T) {
	// 10 个字符，宽 200：字号 40/35 时超宽（240/210），30 时恰好 180 ≤ 200。
	// 引擎必须在降行数之前先降字号，最终返回单行、字号 30。
	e, _ := newEngine(0.6)
	res, err := e.Fit(Request{
		Text:            strings.Repeat("A", 10),
		BoxWidth:        200,
		BoxHeight:       100,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if !res.FitGuaranteed {
		t.Fatalf("应得到可保证的适配结果")
	}
	if len(res.Lines) != 1 {
		t.Fatalf("单行可容纳时不允许折成 %d 行", len(res.Lines))
	}
	if res.FontSize != 30 {
		t.Fatalf("期望字号 30（从 40 按步长 5 可达的最大值），实际 %d", res.FontSize)
	}
	if res.CharsPerLine != 10 {
		t.Fatalf("期望每行预算 10，实际 %d", res.CharsPerLine)
	}
}

func TestFitFallsBackToTwoLines(t *testing.T) {
	// 单行在最小字号 20 之上永远超宽（需要字号 ≤16），
	// 两行档位应从初始字号重新搜索并在字号 30 接受。
	e, _ := newEngine(0.6)
	res, err := e.Fit(Request{
		Text:            strings.Repeat("A", 10),
		BoxWidth:        100,
		BoxHeight:       200,
		InitialFontSize: 40,
		MinFontSize:     20,
		FontSizeStep:    5,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if !res.FitGuaranteed {
		t.Fatalf("应得到可保证的适配结果")
	}
	if len(res.Lines) != 2 {
		t.Fatalf("期望折成 2 行，实际 %d", len(res.Lines))
	}
	// 每档位重新从 40 开始：5 字/行 × 0.6 × 30 = 90 ≤ 100
	if res.FontSize != 30 {
		t.Fatalf("期望字号 30，实际 %d", res.FontSize)
	}
}

func TestFitGuaranteedInvariant(t *testing.T) {
	e, m := newEngine(0.6)
	req := Request{
		Text:            "some words to lay out into the box",
		BoxWidth:        120,
		BoxHeight:       90,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	}
	res, err := e.Fit(req)
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if !res.FitGuaranteed {
		t.Fatalf("该请求应能适配")
	}
	if n := len(res.Lines); n < 1 || n > MaxLines {
		t.Fatalf("行数越界: %d", n)
	}
	for _, line := range res.Lines {
		if w := m.Measure(line, res.FontSize); w > req.BoxWidth {
			t.Fatalf("接受结果中仍有超宽行 %q: %g > %g", line, w, req.BoxWidth)
		}
	}
	if h := float64(len(res.Lines)) * float64(res.FontSize) * LineSpacing; h > req.BoxHeight {
		t.Fatalf("接受结果超高: %g > %g", h, req.BoxHeight)
	}
}

func TestFitDegradedFallback(t *testing.T) {
	// 100 个字符塞进 30×20：两行以上必超高（2×10×1.5=30>20），
	// 单行必超宽，只能走降级路径。
	e, _ := newEngine(0.6)
	res, err := e.Fit(Request{
		Text:            strings.Repeat("A", 100),
		BoxWidth:        30,
		BoxHeight:       20,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	})
	if err != nil {
		t.Fatalf("降级路径不应报错: %v", err)
	}
	if res.FitGuaranteed {
		t.Fatalf("不可适配时 FitGuaranteed 必须为 false")
	}
	if res.FontSize != 10 {
		t.Fatalf("降级结果应使用最小字号 10，实际 %d", res.FontSize)
	}
	if res.CharsPerLine != 34 { // ceil(100/3)
		t.Fatalf("降级预算应为 34，实际 %d", res.CharsPerLine)
	}
	if len(res.Lines) > MaxLines {
		t.Fatalf("降级结果行数越界: %d", len(res.Lines))
	}
}

func TestFitDegradationMonotonic(t *testing.T) {
	// 固定文本下收缩盒尺寸，FitGuaranteed 只允许从 true 变为 false
	e, _ := newEngine(0.6)
	text := strings.Repeat("喜", 30)
	prev := true
	for _, w := range []float64{400, 200, 100, 50, 25, 10} {
		res, err := e.Fit(Request{
			Text:            text,
			BoxWidth:        w,
			BoxHeight:       w / 2,
			InitialFontSize: 40,
			MinFontSize:     10,
			FontSizeStep:    5,
		})
		if err != nil {
			t.Fatalf("Fit(%g) 出错: %v", w, err)
		}
		if res.FitGuaranteed && !prev {
			t.Fatalf("盒子缩小后 FitGuaranteed 不应由 false 翻回 true（宽 %g）", w)
		}
		prev = res.FitGuaranteed
	}
}

func TestFitDeterministic(t *testing.T) {
	req := Request{
		Text:            "恭喜 本群用户 喜提大奖 🎉",
		BoxWidth:        160,
		BoxHeight:       120,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	}
	e1, _ := newEngine(0.6)
	e2, _ := newEngine(0.6)
	a, err := e1.Fit(req)
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	b, err := e2.Fit(req)
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("相同请求产生不同结果:\n%+v\n%+v", a, b)
	}
}

func TestFitNoWrapLoss(t *testing.T) {
	e, _ := newEngine(0.6)
	input := "good   news \t everyone  today"
	res, err := e.Fit(Request{
		Text:            input,
		BoxWidth:        300,
		BoxHeight:       200,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	joined := strings.Join(res.Lines, " ")
	if joined != Normalize(input) {
		t.Fatalf("按空格拼接应还原归一化文本: %q vs %q", joined, Normalize(input))
	}
}

func TestFitNoCharacterLossInFallback(t *testing.T) {
	// 降级路径恰好折成 3 行时不允许丢字符（硬切会引入额外空格，
	// 因此按去空格后的内容比较）
	e, _ := newEngine(0.6)
	text := strings.Repeat("A", 100)
	res, err := e.Fit(Request{
		Text:            text,
		BoxWidth:        30,
		BoxHeight:       20,
		InitialFontSize: 40,
		MinFontSize:     10,
		FontSizeStep:    5,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	joined := strings.ReplaceAll(strings.Join(res.Lines, ""), " ", "")
	if joined != text {
		t.Fatalf("降级路径丢失字符: 长度 %d vs %d", len(joined), len(text))
	}
}

func TestFitWhitespaceOnlyUsesPlaceholder(t *testing.T) {
	e, _ := newEngine(0.6)
	res, err := e.Fit(Request{
		Text:            "  \t \n ",
		BoxWidth:        300,
		BoxHeight:       200,
		InitialFontSize: 40,
		MinFontSize:     10,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if got := strings.Join(res.Lines, " "); got != Placeholder {
		t.Fatalf("空白输入应替换为占位文本 %q，实际 %q", Placeholder, got)
	}
}

func TestFitSelectsEmojiMeasurer(t *testing.T) {
	plain := &runeMeasurer{perChar: 0.6}
	emoji := &runeMeasurer{perChar: 0.8}
	e := &Engine{Plain: plain, Emoji: emoji}

	_, err := e.Fit(Request{
		Text:            "party time 🎉 tonight",
		BoxWidth:        400,
		BoxHeight:       300,
		InitialFontSize: 40,
		MinFontSize:     10,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if emoji.calls == 0 {
		t.Fatalf("含 emoji 的文本应整体使用 emoji 感知测量")
	}
	if plain.calls != 0 {
		t.Fatalf("选定 emoji 测量后不应再调用普通测量（含纯 ASCII 行）")
	}
}

func TestFitEmojiMeasurerNilFallsBackToPlain(t *testing.T) {
	e, m := newEngine(0.6)
	_, err := e.Fit(Request{
		Text:            "🎉",
		BoxWidth:        100,
		BoxHeight:       100,
		InitialFontSize: 20,
		MinFontSize:     10,
	})
	if err != nil {
		t.Fatalf("Fit 出错: %v", err)
	}
	if m.calls == 0 {
		t.Fatalf("缺少 emoji 测量后端时应退回普通测量")
	}
}

func TestFitRequestValidation(t *testing.T) {
	e, _ := newEngine(0.6)
	cases := []Request{
		{Text: "x", BoxWidth: 100, BoxHeight: 100, InitialFontSize: 0, MinFontSize: 10},
		{Text: "x", BoxWidth: 100, BoxHeight: 100, InitialFontSize: 10, MinFontSize: 20},
		{Text: "x", BoxWidth: 0, BoxHeight: 100, InitialFontSize: 40, MinFontSize: 10},
		{Text: "x", BoxWidth: 100, BoxHeight: -1, InitialFontSize: 40, MinFontSize: 10},
	}
	for i, req := range cases {
		if _, err := e.Fit(req); err == nil {
			t.Fatalf("用例 %d 的非法请求应报错", i)
		}
	}
}

func TestFitMissingMeasurer(t *testing.T) {
	e := &Engine{}
	if _, err := e.Fit(Request{Text: "x", BoxWidth: 10, BoxHeight: 10, InitialFontSize: 20, MinFontSize: 10}); err == nil {
		t.Fatalf("缺少测量后端时必须报错")
	}
}
