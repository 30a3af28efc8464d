package template

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		// 长形式在前：Go 正则取最左可选分支，{3} 在前会把 #DC3023
		// 截成 "#DC3" + Number "023"
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)%?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(templateLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
	)
)

// File 是模板声明文件的根 AST 节点。
type File struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Version   string         `parser:"Newline* 'templates' @Ident"`
	Templates []*Decl        `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Decl 声明一个模板：template <name> { ... }。
type Decl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'template' @Ident"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Entry 为模板内的一条属性赋值（key: value...）。
type Entry struct {
	Key    string   `parser:"@Ident ':' "`
	Values []*Value `parser:"@@+"`
}

// Value 表示属性值：字符串、颜色或数值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Color  *string        `parser:"| @Color"`
	Number *string        `parser:"| @Number"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 io.Reader 解析模板声明文件。
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString 从字符串解析模板声明文件。
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}

// Decode 将声明文件应用到内置模板之上：同名声明覆盖内置模板的
// 对应字段，新名称从默认骨架开始。返回合并后的模板集合。
func Decode(file *File) (map[string]Template, error) {
	out := Builtins()
	if file == nil {
		return out, nil
	}
	for _, decl := range file.Templates {
		base, ok := out[decl.Name]
		if !ok {
			base = skeleton(decl.Name)
		}
		for _, entry := range decl.Entries {
			if err := applyEntry(&base, entry); err != nil {
				return nil, fmt.Errorf("模板 %s: %w", decl.Name, err)
			}
		}
		if base.Image == "" {
			return nil, fmt.Errorf("模板 %s 缺少 image 属性", decl.Name)
		}
		out[decl.Name] = base
	}
	return out, nil
}

// Read 解析并合并模板声明，是 Parse+Decode 的快捷方式。
func Read(r io.Reader) (map[string]Template, error) {
	file, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析模板声明失败: %w", err)
	}
	return Decode(file)
}

func applyEntry(t *Template, entry *Entry) error {
	switch entry.Key {
	case "image":
		s, err := oneString(entry)
		if err != nil {
			return err
		}
		t.Image = s
	case "color":
		c, err := oneColor(entry)
		if err != nil {
			return err
		}
		t.FontColor = c
	case "stroke":
		c, err := oneColor(entry)
		if err != nil {
			return err
		}
		t.StrokeColor = c
	case "stroke-width":
		nums, err := numbers(entry, 1)
		if err != nil {
			return err
		}
		w, err := strconv.ParseFloat(nums[0], 64)
		if err != nil || w < 0 {
			return fmt.Errorf("stroke-width 取值非法: %s", nums[0])
		}
		t.StrokeWidth = w
	case "area":
		nums, err := numbers(entry, 2)
		if err != nil {
			return err
		}
		w, err := parseRatio(nums[0])
		if err != nil {
			return err
		}
		h, err := parseRatio(nums[1])
		if err != nil {
			return err
		}
		if w <= 0 || w > 1 || h <= 0 || h > 1 {
			return fmt.Errorf("area 占比必须落在 (0,1]: %g %g", w, h)
		}
		t.AreaWidth, t.AreaHeight = w, h
	case "font-size":
		nums, err := numbers(entry, 3)
		if err != nil {
			return err
		}
		vals := make([]int, 3)
		for i, n := range nums {
			v, err := strconv.Atoi(n)
			if err != nil || v < 1 {
				return fmt.Errorf("font-size 取值非法: %s", n)
			}
			vals[i] = v
		}
		if vals[0] < vals[1] {
			return fmt.Errorf("font-size 初始字号 %d 小于最小字号 %d", vals[0], vals[1])
		}
		t.InitialFontSize, t.MinFontSize, t.FontSizeStep = vals[0], vals[1], vals[2]
	default:
		return fmt.Errorf("未知属性 %s", entry.Key)
	}
	return nil
}

func oneString(entry *Entry) (string, error) {
	if len(entry.Values) != 1 || entry.Values[0].String == nil {
		return "", fmt.Errorf("属性 %s 需要一个字符串值", entry.Key)
	}
	return string(*entry.Values[0].String), nil
}

func oneColor(entry *Entry) (Color, error) {
	if len(entry.Values) != 1 || entry.Values[0].Color == nil {
		return Color{}, fmt.Errorf("属性 %s 需要一个颜色值", entry.Key)
	}
	return ParseColor(*entry.Values[0].Color)
}

func numbers(entry *Entry, want int) ([]string, error) {
	if len(entry.Values) != want {
		return nil, fmt.Errorf("属性 %s 需要 %d 个数值", entry.Key, want)
	}
	out := make([]string, 0, want)
	for _, v := range entry.Values {
		if v.Number == nil {
			return nil, fmt.Errorf("属性 %s 需要数值参数", entry.Key)
		}
		out = append(out, *v.Number)
	}
	return out, nil
}
