package harness

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchesJSON 判断实际值是否“包含”期望的 JSON 文档：
// 对象只检查期望中出现的键，数组按下标逐个检查且实际长度不得更短，
// 以 ^ 开头或 $ 结尾的字符串按正则匹配，其余值直接比较。
func MatchesJSON(expected string) (Predicate, error) {
	want, err := ParseValue([]byte(expected))
	if err != nil {
		return Predicate{}, fmt.Errorf("期望结果 %w: %s", err, expected)
	}
	desc := "matches " + compactJSON(expected)
	return NewPredicate(desc, func(v Value) bool { return validateValue(v, want) }), nil
}

func validateValue(actual, expected Value) bool {
	switch expected.Kind() {
	case KindObject:
		if actual.Kind() != KindObject {
			return false
		}
		return validateMap(actual, expected)

	case KindArray:
		if actual.Kind() != KindArray {
			return false
		}
		return validateSlice(actual.Array(), expected.Array())

	case KindString:
		want := expected.res.Str
		got, err := actual.Text()
		if err != nil {
			return false
		}
		if isPattern(want) {
			matched, err := regexp.MatchString(want, got)
			return err == nil && matched
		}
		return got == want

	case KindNumber:
		return actual.Kind() == KindNumber && nearlyEqual(actual.res.Num, expected.res.Num)

	case KindBool:
		got, err := actual.Bool()
		return err == nil && got == expected.res.Bool()

	default:
		return actual.Kind() == KindNull
	}
}

// validateMap 递归检查期望中的每个键
func validateMap(actual, expected Value) bool {
	for _, key := range expected.Keys() {
		got := actual.Get(key)
		if got.Kind() == KindMissing {
			return false
		}
		if !validateValue(got, expected.Get(key)) {
			return false
		}
	}
	return true
}

func validateSlice(actual, expected []Value) bool {
	if len(actual) < len(expected) {
		return false
	}
	for i, want := range expected {
		if !validateValue(actual[i], want) {
			return false
		}
	}
	return true
}

func isPattern(s string) bool {
	return strings.HasPrefix(s, "^") || strings.HasSuffix(s, "$")
}

func compactJSON(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
