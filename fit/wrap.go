package fit

import "strings"

// Wrap 按每行字符预算对文本做贪心折行。
// 以空白分隔的词为单位向当前行累积，行长（按码点计数，含连接空格）
// 超过 charsPerLine 时另起一行；单个词本身超过预算时按预算边界硬切
// （不插入连字符）。空字符串返回 nil，调用方需先替换占位文本。
// 相同的 (text, charsPerLine) 输入总是产生相同的输出。
func Wrap(text string, charsPerLine int) []string {
	if text == "" {
		return nil
	}
	if charsPerLine < 1 {
		charsPerLine = 1
	}

	var lines []string
	var builder strings.Builder
	current := 0 // 当前行码点数

	emit := func() {
		if builder.Len() == 0 {
			return
		}
		lines = append(lines, builder.String())
		builder.Reset()
		current = 0
	}

	appendWord := func(word []rune) {
		if current > 0 {
			builder.WriteByte(' ')
			current++
		}
		builder.WriteString(string(word))
		current += len(word)
	}

	for _, token := range strings.Fields(text) {
		word := []rune(token)

		need := len(word)
		if current > 0 {
			need++ // 连接空格
		}
		if current+need <= charsPerLine {
			appendWord(word)
			continue
		}

		emit()
		if len(word) <= charsPerLine {
			appendWord(word)
			continue
		}

		// 超长词：按预算切块，最后一块留在当前行，允许后续词继续拼接
		for len(word) > charsPerLine {
			lines = append(lines, string(word[:charsPerLine]))
			word = word[charsPerLine:]
		}
		if len(word) > 0 {
			appendWord(word)
		}
	}

	emit()
	return lines
}
