package fit

import "testing"

func TestIsEmoji(t *testing.T) {
	cases := []struct {
		r    rune
		want bool
	}{
		{'A', false},
		{'你', false},
		{' ', false},
		{'😀', true},     // U+1F600 表情区块
		{0x1F004, true}, // 麻将牌，U+1F000 区间下界附近
		{0x1F9FF, true}, // 区间上界
		{'☀', true},     // U+2600，Symbol Other
		{'©', true}, // U+00A9，Symbol Other
		{'Ω', false},
		{'＄', false}, // 全角美元符属 Sc，不在判定范围
	}
	for _, c := range cases {
		if got := IsEmoji(c.r); got != c.want {
			t.Fatalf("IsEmoji(%U) = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestContainsEmoji(t *testing.T) {
	if ContainsEmoji("plain ascii text") {
		t.Fatalf("纯 ASCII 不应判定为含 emoji")
	}
	if ContainsEmoji("恭喜发财，大吉大利") {
		t.Fatalf("纯中文不应判定为含 emoji")
	}
	if !ContainsEmoji("big win 🙌 today") {
		t.Fatalf("U+1F64F 区间内的码点应判定为 emoji")
	}
	if !ContainsEmoji("天气 ☀ 不错") {
		t.Fatalf("Symbol Other 码点应判定为 emoji")
	}
}
