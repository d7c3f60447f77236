package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	ep := Endpoint{Method: "GET", Path: "/product/read.php"}
	assertion := &AssertionError{Endpoint: ep, Failures: []Failure{{Check: CheckStatus}}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"transport", &TransportError{Endpoint: ep, Err: io.EOF}, "transport"},
		{"transport after cancel", &TransportError{Endpoint: ep, Err: context.Canceled}, "canceled"},
		{"transport after deadline", &TransportError{Endpoint: ep, Err: context.DeadlineExceeded, Canceled: true}, "canceled"},
		{"wrapped transport after cancel", fmt.Errorf("场景: %w", &TransportError{Endpoint: ep, Err: fmt.Errorf("read: %w", context.Canceled)}), "canceled"},
		{"decode", &DecodeError{Endpoint: ep, Reason: "x"}, "decode"},
		{"request", &RequestError{Endpoint: ep, Reason: "x"}, "request"},
		{"assertion", assertion, "assertion"},
		{"wrapped assertion", fmt.Errorf("场景: %w", assertion), "assertion"},
		{"decode wins over assertion", errors.Join(&DecodeError{Endpoint: ep}, assertion), "decode"},
		{"canceled", context.Canceled, "canceled"},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), "canceled"},
		{"other", errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	ep := Endpoint{Method: "GET", Path: "/product/read_one.php"}

	te := &TransportError{Endpoint: ep, URL: "http://h/product/read_one.php?id=2", Err: io.EOF}
	assert.Equal(t, "GET http://h/product/read_one.php?id=2: 请求失败: EOF", te.Error())
	assert.ErrorIs(t, te, io.EOF)

	de := &DecodeError{Endpoint: ep, Field: "price", Reason: "期望数字, 实际 bool", Body: []byte(`{"price":true}`)}
	assert.Equal(t, "GET /product/read_one.php: 解码失败 字段 price: 期望数字, 实际 bool\n响应体: {\"price\":true}", de.Error())

	re := &RequestError{Endpoint: Endpoint{Method: "PATCH", Path: "/x"}, Reason: "不支持的方法 PATCH"}
	assert.Equal(t, "PATCH /x: 非法请求: 不支持的方法 PATCH", re.Error())

	f := Failure{Check: CheckRecord, Location: "name", Expected: "a", Actual: "b", Diff: "[-a-]{+b+}"}
	assert.Equal(t, "record name: 期望 a, 实际 b (diff: [-a-]{+b+})", f.String())
}

func TestErrorBodyKeepsRunesWhole(t *testing.T) {
	ep := Endpoint{Method: "GET", Path: "/product/read.php"}
	// ’ 占三个字节，maxBodyInError 处正好落在字符中间
	body := []byte(strings.Repeat("’", maxBodyInError/3+10))
	ae := &AssertionError{Endpoint: ep, URL: "http://h/product/read.php", Failures: []Failure{{Check: CheckStatus}}, Body: body}
	de := &DecodeError{Endpoint: ep, Reason: "x", Body: body}

	for _, msg := range []string{ae.Error(), de.Error()} {
		assert.True(t, utf8.ValidString(msg))
		assert.True(t, strings.HasSuffix(msg, strings.Repeat("’", maxBodyInError/3)+"..."))
	}
	assert.Equal(t, []byte("ab"), cutUTF8([]byte("ab"), 5))
}
