package harness

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Record 是固定字段的领域实体。字段列表由实现显式给出，解码和比较都不依赖反射。
type Record interface {
	// Fields 按声明顺序返回字段及其当前值的规范文本
	Fields() []FieldValue
	// Assign 用 JSON 值填充名为 name 的字段，类型不符时返回错误
	Assign(name string, v Value) error
}

type FieldValue struct {
	Name     string
	Text     string
	Required bool
}

// Mismatch 是两条记录之间一个不同的字段
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
	Diff     string
}

const missingField = "<missing>"

// Decode 把响应体解码进 rec。响应体必须是 JSON 对象，必填字段缺失或为 null、类型不符都返回 *DecodeError。
func Decode(resp *Response, rec Record) error {
	v, err := resp.JSON()
	if err != nil {
		return &DecodeError{Endpoint: resp.Endpoint, Reason: "响应体" + err.Error(), Body: resp.Body}
	}
	if err := DecodeValue(v, rec); err != nil {
		de := err.(*DecodeError)
		de.Endpoint = resp.Endpoint
		de.Body = resp.Body
		return de
	}
	return nil
}

// DecodeList 逐个解码响应体中 field 数组的元素，next 为第 i 个元素提供一条空记录。
func DecodeList(resp *Response, field string, next func(i int) Record) error {
	v, err := resp.JSON()
	if err != nil {
		return &DecodeError{Endpoint: resp.Endpoint, Reason: "响应体" + err.Error(), Body: resp.Body}
	}
	items := v.Get(field)
	if items.Kind() != KindArray {
		return &DecodeError{Endpoint: resp.Endpoint, Field: field, Reason: "期望 array, 实际 " + items.Kind().String(), Body: resp.Body}
	}
	for i, item := range items.Array() {
		if err := DecodeValue(item, next(i)); err != nil {
			de := err.(*DecodeError)
			loc := fmt.Sprintf("%s[%d]", field, i)
			if de.Field != "" {
				loc += "." + de.Field
			}
			de.Field = loc
			de.Endpoint = resp.Endpoint
			de.Body = resp.Body
			return de
		}
	}
	return nil
}

// DecodeValue 把一个 JSON 对象解码进 rec，适用于列表中的元素。
func DecodeValue(v Value, rec Record) error {
	if v.Kind() != KindObject {
		return &DecodeError{Reason: "期望 object, 实际 " + v.Kind().String()}
	}
	for _, f := range rec.Fields() {
		fv := v.Get(f.Name)
		if fv.IsNull() {
			if f.Required {
				return &DecodeError{Field: f.Name, Reason: "缺少必填字段"}
			}
			continue
		}
		if err := rec.Assign(f.Name, fv); err != nil {
			return &DecodeError{Field: f.Name, Reason: err.Error()}
		}
	}
	return nil
}

// CompareRecords 按字段名比较，与声明顺序无关，返回全部不同的字段。
func CompareRecords(expected, actual Record) []Mismatch {
	got := make(map[string]string)
	for _, f := range actual.Fields() {
		got[f.Name] = f.Text
	}

	var out []Mismatch
	seen := make(map[string]bool)
	for _, f := range expected.Fields() {
		seen[f.Name] = true
		a, ok := got[f.Name]
		switch {
		case !ok:
			out = append(out, Mismatch{Field: f.Name, Expected: f.Text, Actual: missingField})
		case a != f.Text:
			out = append(out, Mismatch{Field: f.Name, Expected: f.Text, Actual: a, Diff: inlineDiff(f.Text, a)})
		}
	}
	for _, f := range actual.Fields() {
		if !seen[f.Name] {
			out = append(out, Mismatch{Field: f.Name, Expected: missingField, Actual: f.Text})
		}
	}
	return out
}

// inlineDiff 以 [-删除-]{+新增+} 的形式标出差异
func inlineDiff(expected, actual string) string {
	if expected == "" || actual == "" {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
