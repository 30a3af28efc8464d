package fonts

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/goregular"
)

// ErrFontUnavailable 表示没有任何可用的字体资源。
// 加载指定字体失败本身不是致命错误（会退回内置默认字体），
// 只有连默认字体也不可用时才会带上该错误返回。
var ErrFontUnavailable = errors.New("没有可用的字体资源")

// Load 读取字体文件的字节数据。path 为空时返回内置默认字体。
func Load(path string) ([]byte, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("字体文件 %s 为空", path)
	}
	return data, nil
}

// Default 返回内置默认字体（Go Regular）的字节数据。
func Default() []byte {
	return goregular.TTF
}
