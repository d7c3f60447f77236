package scenario

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"contract_testing/internal/harness"
)

// assertion 是工作簿“断言”列中的一行
type assertion struct {
	header string // 非空时断言响应头
	path   harness.Path
	pred   harness.Predicate
}

func (a assertion) apply(e *harness.Expectation) {
	if a.header != "" {
		e.HeaderMatch(a.header, a.pred)
		return
	}
	e.Field(a.path, a.pred)
}

// parseAssertion 解析一行断言：
//
//	records[*].id notnull
//	records[0].id == 29
//	name == "Cross-Back Training Tank"
//	price ~ ^\d+\.\d{2}$
//	header Content-Type == application/json; charset=UTF-8
func parseAssertion(line string) (assertion, error) {
	var a assertion
	target, rest := cut(line)
	if target == "" {
		return a, fmt.Errorf("断言为空")
	}
	if target == "header" {
		a.header, rest = cut(rest)
		if a.header == "" {
			return a, fmt.Errorf("断言 %q: 缺少响应头名称", line)
		}
	} else {
		p, err := harness.ParsePath(target)
		if err != nil {
			return a, err
		}
		a.path = p
	}

	op, value := cut(rest)
	pred, err := predicateFor(op, value)
	if err != nil {
		return a, fmt.Errorf("断言 %q: %w", line, err)
	}
	a.pred = pred
	return a, nil
}

func predicateFor(op, value string) (harness.Predicate, error) {
	switch op {
	case "notnull":
		return harness.NotNull(), nil
	case "exists":
		return harness.Exists(), nil
	case "nonempty":
		return harness.NonEmpty(), nil
	case "==":
		return literal(value), nil
	case "!=":
		return harness.Not(literal(value)), nil
	case "~":
		re, err := regexp.Compile(value)
		if err != nil {
			return harness.Predicate{}, fmt.Errorf("非法正则: %w", err)
		}
		return harness.Matches(re), nil
	case ">", ">=", "<", "<=":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return harness.Predicate{}, fmt.Errorf("%s 需要数字, 实际 %q", op, value)
		}
		switch op {
		case ">":
			return harness.GreaterThan(n), nil
		case ">=":
			return harness.GreaterOrEqual(n), nil
		case "<":
			return harness.LessThan(n), nil
		default:
			return harness.LessOrEqual(n), nil
		}
	case "":
		return harness.Predicate{}, fmt.Errorf("缺少运算符")
	default:
		return harness.Predicate{}, fmt.Errorf("未知运算符 %q", op)
	}
}

// literal 按 JSON 字面量理解期望值；数字按数值比较（服务端常把数字写成字符串），
// 不是合法 JSON 的文本按普通字符串比较。
func literal(raw string) harness.Predicate {
	v, err := harness.ParseValue([]byte(raw))
	if err != nil {
		return harness.Equal(raw)
	}
	switch v.Kind() {
	case harness.KindNumber:
		n, _ := v.Numeric()
		return harness.NumericEqual(n)
	case harness.KindString:
		s, _ := v.Text()
		return harness.Equal(s)
	case harness.KindBool:
		b, _ := v.Bool()
		return harness.Equal(b)
	case harness.KindNull:
		return harness.Equal(nil)
	default:
		pred, err := harness.MatchesJSON(raw)
		if err != nil {
			return harness.Equal(raw)
		}
		return pred
	}
}

// cut 取出第一个空白分隔的词，返回其余部分（去掉首尾空白）
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
