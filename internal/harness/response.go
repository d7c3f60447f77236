package harness

import (
	"net/http"
	"time"
)

// Response 保存一次调用的全部结果，供断言和报告使用。
type Response struct {
	Endpoint    Endpoint
	URL         string
	RequestBody string
	StatusCode  int
	Header      http.Header
	Body        []byte
	Duration    time.Duration
	Curl        string
}

// JSON 解析响应体
func (r *Response) JSON() (Value, error) {
	return ParseValue(r.Body)
}
