package canvasrenderer

import (
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/HwlloChen/GoodNewsGenerator/fit"
)

// 该文件实现 fit.Measurer：基于 tdewolff/canvas 字体面的文本宽度测量。
// 约定：引擎与渲染均以像素为单位，画布按 1px = 1mm 建立并以 DPMM 1
// 栅格化；创建字体面时做一次 px(mm)→pt 换算。

// pt 与 mm 的换算常数。
const (
	ptToMm = 0.352777
	mmToPt = 1.0 / ptToMm
)

// emojiScale emoji 字形的放大系数，仅作用于绘制尺寸，不影响宽度测量。
const emojiScale = 1.3

// toPt 将像素（mm）字号换算为创建字体面所需的 pt。
func toPt(px float64) float64 { return px * mmToPt }

// faceSet 按字号缓存同一字体族的测量字体面。
// 缓存在首次使用后只增不改，持锁访问，可被并发读取。
type faceSet struct {
	family *canvas.FontFamily

	mu    sync.Mutex
	faces map[int]*canvas.FontFace
}

func newFaceSet(family *canvas.FontFamily) *faceSet {
	return &faceSet{
		family: family,
		faces:  map[int]*canvas.FontFace{},
	}
}

func (s *faceSet) face(size int) *canvas.FontFace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.faces[size]; ok {
		return face
	}
	face := s.family.Face(toPt(float64(size)), canvas.Black, canvas.FontRegular, canvas.FontNormal)
	s.faces[size] = face
	return face
}

// plainMeasurer 用单一字体测量整条文本的前进宽度。
type plainMeasurer struct {
	faces *faceSet
}

func (m *plainMeasurer) Measure(text string, fontSize int) float64 {
	return m.faces.face(fontSize).TextWidth(text)
}

// compositeMeasurer 将文本按字形类别分段：普通段用主字体测量，
// emoji 段用 emoji 字体测量，宽度求和。emoji 字体缺失时整体退回
// 主字体，emoji 宽度按普通字形近似（可接受的偏差，不是错误）。
type compositeMeasurer struct {
	plain *faceSet
	emoji *faceSet
}

func (m *compositeMeasurer) Measure(text string, fontSize int) float64 {
	if m.emoji == nil {
		return m.plain.face(fontSize).TextWidth(text)
	}
	total := 0.0
	for _, run := range splitRuns(text) {
		if run.emoji {
			total += m.emoji.face(fontSize).TextWidth(run.text)
		} else {
			total += m.plain.face(fontSize).TextWidth(run.text)
		}
	}
	return total
}

// textRun 为一段字形类别一致的连续文本。
type textRun struct {
	text  string
	emoji bool
}

// splitRuns 将文本切成普通/emoji 交替的段序列。
func splitRuns(s string) []textRun {
	var runs []textRun
	var builder strings.Builder
	last := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		runs = append(runs, textRun{text: builder.String(), emoji: last})
		builder.Reset()
	}
	for _, r := range s {
		isEmoji := fit.IsEmoji(r)
		if builder.Len() > 0 && isEmoji != last {
			flush()
		}
		last = isEmoji
		builder.WriteRune(r)
	}
	flush()
	return runs
}
