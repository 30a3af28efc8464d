// Package template 定义海报模板：背景图、文字颜色与描边、
// 文本区域占比以及适配搜索的字号范围。内置 good/bad 两套模板，
// 可通过模板声明文件按名称覆盖或新增。
package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Template 描述一种海报样式。Image 为相对素材目录的背景图路径；
// AreaWidth/AreaHeight 为文本区域相对背景图的宽高占比。
type Template struct {
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	FontColor   Color   `json:"fontColor"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	AreaWidth   float64 `json:"areaWidth"`
	AreaHeight  float64 `json:"areaHeight"`

	InitialFontSize int `json:"initialFontSize"`
	MinFontSize     int `json:"minFontSize"`
	FontSizeStep    int `json:"fontSizeStep"`
}

// Builtins 返回内置模板集合（喜报/悲报）。
func Builtins() map[string]Template {
	return map[string]Template{
		"good": {
			Name:            "good",
			Image:           "good_news.jpg",
			FontColor:       Color{R: 220, G: 48, B: 35},
			StrokeColor:     Color{R: 170, G: 0, B: 0},
			StrokeWidth:     0,
			AreaWidth:       0.8,
			AreaHeight:      0.6,
			InitialFontSize: 100,
			MinFontSize:     20,
			FontSizeStep:    5,
		},
		"bad": {
			Name:            "bad",
			Image:           "bad_news.jpg",
			FontColor:       Color{R: 90, G: 90, B: 90},
			StrokeColor:     Color{R: 89, G: 88, B: 87},
			StrokeWidth:     0,
			AreaWidth:       0.8,
			AreaHeight:      0.6,
			InitialFontSize: 100,
			MinFontSize:     20,
			FontSizeStep:    5,
		},
	}
}

// skeleton 为声明文件中新增模板的初始值（除背景与颜色外与内置一致）。
func skeleton(name string) Template {
	return Template{
		Name:            name,
		FontColor:       Color{R: 30, G: 30, B: 30},
		AreaWidth:       0.8,
		AreaHeight:      0.6,
		InitialFontSize: 100,
		MinFontSize:     20,
		FontSizeStep:    5,
	}
}

// ParseColor 解析 #RGB/#RRGGBB/#RRGGBBAA 形式的颜色（忽略 alpha）。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(string(hex[0]), 2) +
			strings.Repeat(string(hex[1]), 2) +
			strings.Repeat(string(hex[2]), 2)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var out Color
	for i, dst := range []*int{&out.R, &out.G, &out.B} {
		v, err := strconv.ParseInt(hex[i*2:i*2+2], 16, 64)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 含非十六进制字符", value)
		}
		*dst = int(v)
	}
	return out, nil
}

// parseRatio 解析区域占比：80% 或 0.8 两种写法。
func parseRatio(value string) (float64, error) {
	if strings.HasSuffix(value, "%") {
		num := strings.TrimSuffix(value, "%")
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("占比 %s 无法解析: %w", value, err)
		}
		return f / 100, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("占比 %s 无法解析: %w", value, err)
	}
	return f, nil
}
