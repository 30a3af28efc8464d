package fit

import "unicode"

// 该文件负责判断文本的字形类别：普通文字 vs emoji/符号。
// 分类以整条文本为粒度：只要出现一个 emoji 码点，整条文本统一按
// emoji 感知方式测量，而不是按字符逐段切换。

// IsEmoji 判断单个码点是否属于 emoji/符号类。
// 规则：Unicode "Symbol, Other" 类别，或落在 U+1F000–U+1F9FF
// 区间（覆盖常见 emoji 区块：麻将牌、表情、交通符号、补充象形等）。
func IsEmoji(r rune) bool {
	if unicode.Is(unicode.So, r) {
		return true
	}
	return r >= 0x1F000 && r <= 0x1F9FF
}

// ContainsEmoji 判断文本中是否含有任意 emoji/符号码点。
func ContainsEmoji(s string) bool {
	for _, r := range s {
		if IsEmoji(r) {
			return true
		}
	}
	return false
}
