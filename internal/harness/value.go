package harness

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ValueKind 是 JSON 值的类别
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "missing"
	}
}

var errInvalidJSON = errors.New("不是合法的 JSON")

// Value 是解码后的 JSON 值，零值表示字段不存在。
type Value struct {
	res gjson.Result
}

// ParseValue 解析一段 JSON 文本
func ParseValue(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, errInvalidJSON
	}
	return Value{res: gjson.ParseBytes(data)}, nil
}

// StringValue 把普通字符串包装成 string 类别的值，用于响应头断言。
func StringValue(s string) Value {
	return Value{res: gjson.Result{Type: gjson.String, Str: s, Raw: strconv.Quote(s)}}
}

func (v Value) Kind() ValueKind {
	if !v.res.Exists() {
		return KindMissing
	}
	switch v.res.Type {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		return KindNumber
	case gjson.String:
		return KindString
	default:
		if v.res.IsArray() {
			return KindArray
		}
		return KindObject
	}
}

// Get 按字面键名取对象成员，键名中的 . 和 * 不做特殊处理。
func (v Value) Get(name string) Value {
	if v.Kind() != KindObject {
		return Value{}
	}
	var found gjson.Result
	v.res.ForEach(func(key, val gjson.Result) bool {
		if key.Str == name {
			found = val
			return false
		}
		return true
	})
	return Value{res: found}
}

// Index 取数组元素，越界时返回不存在的值。
func (v Value) Index(i int) Value {
	if v.Kind() != KindArray || i < 0 {
		return Value{}
	}
	items := v.res.Array()
	if i >= len(items) {
		return Value{}
	}
	return Value{res: items[i]}
}

func (v Value) Array() []Value {
	if v.Kind() != KindArray {
		return nil
	}
	items := v.res.Array()
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{res: item}
	}
	return out
}

func (v Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	var keys []string
	v.res.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.Str)
		return true
	})
	return keys
}

// Len 返回数组元素数、对象成员数或字符串字符数，其他类别为 -1。
func (v Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.res.Array())
	case KindObject:
		return len(v.Keys())
	case KindString:
		return utf8.RuneCountInString(v.res.Str)
	default:
		return -1
	}
}

func (v Value) IsNull() bool {
	k := v.Kind()
	return k == KindNull || k == KindMissing
}

// Raw 返回原始 JSON 文本
func (v Value) Raw() string {
	return v.res.Raw
}

// String 用于失败报告：字符串带引号，其余为原始 JSON。
func (v Value) String() string {
	switch v.Kind() {
	case KindMissing:
		return "<missing>"
	case KindString:
		return strconv.Quote(v.res.Str)
	default:
		return v.res.Raw
	}
}

// Text 只接受 string 类别
func (v Value) Text() (string, error) {
	if v.Kind() != KindString {
		return "", fmt.Errorf("期望 string, 实际 %s", v.Kind())
	}
	return v.res.Str, nil
}

func (v Value) Bool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("期望 bool, 实际 %s", v.Kind())
	}
	return v.res.Bool(), nil
}

// Numeric 接受 number，也接受内容为数字的 string。
func (v Value) Numeric() (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.res.Num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.res.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Integer 接受整数值的 number 或数字 string，如服务端返回的 "2"。
func (v Value) Integer() (int64, error) {
	switch v.Kind() {
	case KindNumber:
		if n, err := strconv.ParseInt(v.res.Raw, 10, 64); err == nil {
			return n, nil
		}
		if v.res.Num != math.Trunc(v.res.Num) {
			return 0, fmt.Errorf("期望整数, 实际 %s", v.res.Raw)
		}
		// 1e3、2.0 这类写法走浮点；float64(math.MaxInt64) 即 2^63，已经越界
		if v.res.Num < math.MinInt64 || v.res.Num >= math.MaxInt64 {
			return 0, fmt.Errorf("整数 %s 超出 int64 范围", v.res.Raw)
		}
		return int64(v.res.Num), nil
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.res.Str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("期望整数, 实际 %s", v.String())
		}
		return n, nil
	default:
		return 0, fmt.Errorf("期望整数, 实际 %s", v.Kind())
	}
}

// DecimalText 返回数字的十进制文本，number 取原始文本以免精度损失。
func (v Value) DecimalText() (string, error) {
	switch v.Kind() {
	case KindNumber:
		return v.res.Raw, nil
	case KindString:
		s := strings.TrimSpace(v.res.Str)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", fmt.Errorf("期望数字, 实际 %s", v.String())
		}
		return s, nil
	default:
		return "", fmt.Errorf("期望数字, 实际 %s", v.Kind())
	}
}
