package harness

import (
	"fmt"
	"strconv"
	"strings"
)

type StepKind int

const (
	FieldStep StepKind = iota
	IndexStep
	EveryStep
)

// Step 是路径中的一步：取字段、取下标或遍历每个元素。
type Step struct {
	Kind  StepKind
	Name  string
	Index int
}

func Field(name string) Step { return Step{Kind: FieldStep, Name: name} }
func Index(i int) Step       { return Step{Kind: IndexStep, Index: i} }
func Every() Step            { return Step{Kind: EveryStep} }

// Path 是对响应 JSON 的定位表达式，空路径表示根节点。
type Path []Step

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	loc := ""
	for _, step := range p {
		loc = step.appendTo(loc)
	}
	return loc
}

func (s Step) appendTo(loc string) string {
	switch s.Kind {
	case IndexStep:
		return loc + "[" + strconv.Itoa(s.Index) + "]"
	case EveryStep:
		return loc + "[*]"
	default:
		if loc == "" {
			return s.Name
		}
		return loc + "." + s.Name
	}
}

// ParsePath 解析 records[*].id、records[0].id、records[].id 这类路径，
// 可带 $ 前缀；records.*.id 与 records[*].id 等价。
func ParsePath(s string) (Path, error) {
	src := s
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = strings.TrimPrefix(s[1:], ".")
	}

	p := Path{}
	i := 0
	for i < len(s) {
		if s[i] == '[' {
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("路径 %q: 缺少 ]", src)
			}
			inner := strings.TrimSpace(s[i+1 : i+end])
			switch inner {
			case "", "*":
				p = append(p, Every())
			default:
				n, err := strconv.Atoi(inner)
				if err != nil || n < 0 {
					return nil, fmt.Errorf("路径 %q: 非法下标 %q", src, inner)
				}
				p = append(p, Index(n))
			}
			i += end + 1
		} else {
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			name := s[i:j]
			if name == "" {
				return nil, fmt.Errorf("路径 %q: 第 %d 位字段名为空", src, i)
			}
			if k := strings.IndexByte(name, ']'); k >= 0 {
				return nil, fmt.Errorf("路径 %q: 第 %d 位多余的 ]", src, i+k)
			}
			if name == "*" {
				p = append(p, Every())
			} else {
				p = append(p, Field(name))
			}
			i = j
		}

		if i < len(s) {
			switch s[i] {
			case '.':
				i++
				if i == len(s) {
					return nil, fmt.Errorf("路径 %q: 以 . 结尾", src)
				}
			case '[':
			default:
				return nil, fmt.Errorf("路径 %q: 第 %d 位应为 . 或 [", src, i)
			}
		}
	}
	return p, nil
}

// MustPath 同 ParsePath，出错时 panic，只用于字面量路径。
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Eval 沿路径求值并应用断言。遇到 Every 时逐个检查元素，返回第一个不满足的元素的失败信息。
func (p Path) Eval(root Value, pred Predicate) *Failure {
	return walk(root, p, "", pred)
}

func walk(v Value, steps Path, loc string, pred Predicate) *Failure {
	if len(steps) == 0 {
		if pred.Test(v) {
			return nil
		}
		return &Failure{Check: CheckField, Location: location(loc), Expected: pred.String(), Actual: v.String()}
	}

	step, rest := steps[0], steps[1:]
	next := step.appendTo(loc)
	kind := v.Kind()

	switch step.Kind {
	case FieldStep:
		if kind != KindObject && kind != KindMissing {
			return &Failure{Check: CheckField, Location: next, Expected: "object", Actual: kind.String()}
		}
		return walk(v.Get(step.Name), rest, next, pred)

	case IndexStep:
		if kind != KindArray && kind != KindMissing {
			return &Failure{Check: CheckField, Location: next, Expected: "array", Actual: kind.String()}
		}
		return walk(v.Index(step.Index), rest, next, pred)

	default:
		if kind != KindArray {
			return &Failure{Check: CheckField, Location: next, Expected: "array", Actual: kind.String()}
		}
		for i, item := range v.Array() {
			if f := walk(item, rest, loc+"["+strconv.Itoa(i)+"]", pred); f != nil {
				return f
			}
		}
		return nil
	}
}

func location(loc string) string {
	if loc == "" {
		return "$"
	}
	return loc
}
