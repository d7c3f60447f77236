package harness

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Predicate 是对单个 JSON 值的断言，desc 会出现在失败报告的“期望”一栏。
type Predicate struct {
	desc string
	test func(Value) bool
}

func NewPredicate(desc string, test func(Value) bool) Predicate {
	return Predicate{desc: desc, test: test}
}

func (p Predicate) String() string { return p.desc }

func (p Predicate) Test(v Value) bool {
	if p.test == nil {
		return false
	}
	return p.test(v)
}

const floatTolerance = 1e-9

// Equal 严格比较：类别和值都要相同。expected 支持 nil、bool、string 和各种数字类型。
func Equal(expected any) Predicate {
	switch want := expected.(type) {
	case nil:
		return NewPredicate("== null", func(v Value) bool { return v.Kind() == KindNull })
	case bool:
		return NewPredicate("== "+strconv.FormatBool(want), func(v Value) bool {
			got, err := v.Bool()
			return err == nil && got == want
		})
	case string:
		return NewPredicate("== "+strconv.Quote(want), func(v Value) bool {
			got, err := v.Text()
			return err == nil && got == want
		})
	}
	if f, ok := toFloat(expected); ok {
		return NewPredicate("== "+formatFloat(f), func(v Value) bool {
			return v.Kind() == KindNumber && nearlyEqual(v.res.Num, f)
		})
	}
	desc := fmt.Sprintf("== %v", expected)
	return NewPredicate(desc, func(Value) bool { return false })
}

// NumericEqual 比较数值，数字字符串（如 "299.00"）也参与比较。
func NumericEqual(expected float64) Predicate {
	return NewPredicate("== "+formatFloat(expected)+" (numeric)", func(v Value) bool {
		got, ok := v.Numeric()
		return ok && nearlyEqual(got, expected)
	})
}

func NotNull() Predicate {
	return NewPredicate("!= null", func(v Value) bool { return !v.IsNull() })
}

func Exists() Predicate {
	return NewPredicate("exists", func(v Value) bool { return v.Kind() != KindMissing })
}

func GreaterThan(n float64) Predicate {
	return compare("> "+formatFloat(n), func(got float64) bool { return got > n })
}

func GreaterOrEqual(n float64) Predicate {
	return compare(">= "+formatFloat(n), func(got float64) bool { return got >= n })
}

func LessThan(n float64) Predicate {
	return compare("< "+formatFloat(n), func(got float64) bool { return got < n })
}

func LessOrEqual(n float64) Predicate {
	return compare("<= "+formatFloat(n), func(got float64) bool { return got <= n })
}

func compare(desc string, ok func(float64) bool) Predicate {
	return NewPredicate(desc, func(v Value) bool {
		got, isNum := v.Numeric()
		return isNum && ok(got)
	})
}

// NonEmpty 要求数组、对象或字符串非空
func NonEmpty() Predicate {
	return NewPredicate("nonempty", func(v Value) bool { return v.Len() > 0 })
}

// LenGreaterThan 相当于 records.size() > n
func LenGreaterThan(n int) Predicate {
	return NewPredicate(fmt.Sprintf("len > %d", n), func(v Value) bool { return v.Len() > n })
}

// Matches 对字符串做正则匹配，非字符串一律不匹配。
func Matches(re *regexp.Regexp) Predicate {
	return NewPredicate("~ /"+re.String()+"/", func(v Value) bool {
		got, err := v.Text()
		return err == nil && re.MatchString(got)
	})
}

func Contains(sub string) Predicate {
	return NewPredicate("contains "+strconv.Quote(sub), func(v Value) bool {
		got, err := v.Text()
		return err == nil && strings.Contains(got, sub)
	})
}

func Not(p Predicate) Predicate {
	return NewPredicate("not ("+p.desc+")", func(v Value) bool { return !p.Test(v) })
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
