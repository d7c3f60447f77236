package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price 以分为单位的定点金额
type Price int64

// NewPrice 由元和分构造
func NewPrice(units, cents int64) Price {
	return Price(units*100 + cents)
}

// ParsePrice 解析 "299.00"、"12"、"12.5" 这类十进制文本，最多两位小数。
// 只允许整体带一个前导负号，整数和小数部分都必须是纯数字。
func ParsePrice(s string) (Price, error) {
	src := strings.TrimSpace(s)
	neg := strings.HasPrefix(src, "-")
	body := strings.TrimPrefix(src, "-")

	whole, frac, _ := strings.Cut(body, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("非法金额 %q", src)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("非法金额 %q", src)
	}
	frac = strings.TrimRight(frac, "0")
	if len(frac) > 2 {
		return 0, fmt.Errorf("金额 %q 超过两位小数", src)
	}
	frac += strings.Repeat("0", 2-len(frac))

	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100-1 {
		return 0, fmt.Errorf("金额 %q 超出范围", src)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	p := Price(units*100 + cents)
	if neg {
		p = -p
	}
	return p, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String 固定两位小数，与服务端返回格式一致
func (p Price) String() string {
	sign := ""
	n := int64(p)
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// MarshalJSON 输出 JSON 数字，去掉多余的零：12、12.5、299.99。
func (p Price) MarshalJSON() ([]byte, error) {
	sign := ""
	n := int64(p)
	if n < 0 {
		sign = "-"
		n = -n
	}
	var s string
	switch {
	case n%100 == 0:
		s = fmt.Sprintf("%s%d", sign, n/100)
	case n%10 == 0:
		s = fmt.Sprintf("%s%d.%d", sign, n/100, n%100/10)
	default:
		s = fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
	}
	return []byte(s), nil
}
