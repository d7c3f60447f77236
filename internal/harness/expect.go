package harness

import (
	"strconv"
	"strings"
)

// Expectation 收集一次响应上的断言。断言失败不会中断后续断言，Err 时一并返回。
type Expectation struct {
	resp     *Response
	failures []Failure

	parsed  bool
	body    Value
	bodyErr error
}

func Expect(resp *Response) *Expectation {
	return &Expectation{resp: resp}
}

func (e *Expectation) Status(code int) *Expectation {
	if e.resp.StatusCode != code {
		e.Fail(CheckStatus, "$", strconv.Itoa(code), strconv.Itoa(e.resp.StatusCode))
	}
	return e
}

// Header 要求响应头精确等于 value，名称不区分大小写。
func (e *Expectation) Header(name, value string) *Expectation {
	return e.HeaderMatch(name, Equal(value))
}

func (e *Expectation) HeaderMatch(name string, pred Predicate) *Expectation {
	var v Value
	if values := e.resp.Header.Values(name); len(values) > 0 {
		v = StringValue(strings.Join(values, ", "))
	}
	if !pred.Test(v) {
		e.Fail(CheckHeader, name, pred.String(), v.String())
	}
	return e
}

// Field 在解码后的响应体上按路径断言
func (e *Expectation) Field(path Path, pred Predicate) *Expectation {
	root, ok := e.root(path.String(), pred)
	if !ok {
		return e
	}
	if f := path.Eval(root, pred); f != nil {
		e.failures = append(e.failures, *f)
	}
	return e
}

// At 同 Field，路径用字符串表示，解析失败记为一条失败。
func (e *Expectation) At(path string, pred Predicate) *Expectation {
	p, err := ParsePath(path)
	if err != nil {
		e.Fail(CheckField, path, pred.String(), err.Error())
		return e
	}
	return e.Field(p, pred)
}

// Record 逐字段比较两条记录，每个不同的字段记一条失败。
func (e *Expectation) Record(expected, actual Record) *Expectation {
	for _, m := range CompareRecords(expected, actual) {
		e.failures = append(e.failures, Failure{
			Check:    CheckRecord,
			Location: m.Field,
			Expected: m.Expected,
			Actual:   m.Actual,
			Diff:     m.Diff,
		})
	}
	return e
}

// Fail 记录一条自定义失败
func (e *Expectation) Fail(check, location, expected, actual string) *Expectation {
	e.failures = append(e.failures, Failure{Check: check, Location: location, Expected: expected, Actual: actual})
	return e
}

func (e *Expectation) Failures() []Failure {
	return e.failures
}

func (e *Expectation) Err() error {
	if len(e.failures) == 0 {
		return nil
	}
	return &AssertionError{
		Endpoint: e.resp.Endpoint,
		URL:      e.resp.URL,
		Failures: e.failures,
		Body:     e.resp.Body,
	}
}

func (e *Expectation) root(loc string, pred Predicate) (Value, bool) {
	if !e.parsed {
		e.body, e.bodyErr = e.resp.JSON()
		e.parsed = true
	}
	if e.bodyErr != nil {
		e.Fail(CheckField, loc, pred.String(), "响应体"+e.bodyErr.Error())
		return Value{}, false
	}
	return e.body, true
}
