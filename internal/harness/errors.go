package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// 失败报告中的检查类别
const (
	CheckStatus = "status"
	CheckHeader = "header"
	CheckField  = "field"
	CheckRecord = "record"
)

// 响应体在错误信息中最多展示的字节数，完整内容见报告。
const maxBodyInError = 2048

// Failure 是一条断言失败
type Failure struct {
	Check    string
	Location string
	Expected string
	Actual   string
	Diff     string
}

func (f Failure) String() string {
	s := fmt.Sprintf("%s %s: 期望 %s, 实际 %s", f.Check, f.Location, f.Expected, f.Actual)
	if f.Diff != "" {
		s += " (diff: " + f.Diff + ")"
	}
	return s
}

// TransportError 表示请求没有拿到完整响应：连接、DNS、超时或读取响应体失败。
type TransportError struct {
	Endpoint Endpoint
	URL      string
	Err      error
	// 失败时调用方的 ctx 已取消或到期；http.Client.Timeout 不算
	Canceled bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: 请求失败: %v", e.Endpoint.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError 表示响应体无法映射成期望的记录
type DecodeError struct {
	Endpoint Endpoint
	Field    string
	Reason   string
	Body     []byte
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Endpoint.String())
	sb.WriteString(": 解码失败")
	if e.Field != "" {
		sb.WriteString(" 字段 ")
		sb.WriteString(e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	writeBody(&sb, e.Body)
	return sb.String()
}

// AssertionError 汇总一次响应上的全部断言失败
type AssertionError struct {
	Endpoint Endpoint
	URL      string
	Failures []Failure
	Body     []byte
}

func (e *AssertionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %d 项断言失败", e.Endpoint.Method, e.URL, len(e.Failures))
	for _, f := range e.Failures {
		sb.WriteString("\n  - ")
		sb.WriteString(f.String())
	}
	writeBody(&sb, e.Body)
	return sb.String()
}

// RequestError 表示端点描述或请求本身不合法，请求未发出。
type RequestError struct {
	Endpoint Endpoint
	Reason   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: 非法请求: %s", e.Endpoint, e.Reason)
}

func writeBody(sb *strings.Builder, body []byte) {
	if len(body) == 0 {
		return
	}
	sb.WriteString("\n响应体: ")
	if len(body) > maxBodyInError {
		sb.Write(cutUTF8(body, maxBodyInError))
		sb.WriteString("...")
		return
	}
	sb.Write(body)
}

// cutUTF8 截取不超过 n 字节的前缀，不拆开多字节字符
func cutUTF8(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return b[:n]
}

// Kind 把错误归类，可穿透 fmt.Errorf 包装和 errors.Join。
// ctx 取消或到期归为 canceled，即使它发生在传输过程中。
func Kind(err error) string {
	var (
		transport *TransportError
		decode    *DecodeError
		assertion *AssertionError
		request   *RequestError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &transport):
		if transport.Canceled {
			return "canceled"
		}
		return "transport"
	case errors.As(err, &decode):
		return "decode"
	case errors.As(err, &request):
		return "request"
	case errors.As(err, &assertion):
		return "assertion"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
