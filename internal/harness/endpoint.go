package harness

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Endpoint 是被测端点：方法加相对路径。
type Endpoint struct {
	Method string
	Path   string
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Method) == "" {
		return &RequestError{Endpoint: e, Reason: "方法为空"}
	}
	if strings.TrimSpace(e.Path) == "" {
		return &RequestError{Endpoint: e, Reason: "路径为空"}
	}
	switch e.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return nil
	default:
		return &RequestError{Endpoint: e, Reason: "不支持的方法 " + e.Method}
	}
}

// Request 描述一次调用的可选部分。Body 是原样发送的文本，Payload 由 harness 编码成 JSON，二者只能设一个。
type Request struct {
	Query   map[string]string
	Header  map[string]string
	Body    string
	Payload any
}

func (r Request) encodeBody(ep Endpoint) ([]byte, error) {
	if r.Body != "" && r.Payload != nil {
		return nil, &RequestError{Endpoint: ep, Reason: "Body 与 Payload 不能同时设置"}
	}
	if r.Payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(r.Payload); err != nil {
			return nil, &RequestError{Endpoint: ep, Reason: "编码请求体失败: " + err.Error()}
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}
	if r.Body != "" {
		return []byte(r.Body), nil
	}
	return nil, nil
}

func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	values := make(url.Values, len(query))
	for k, v := range query {
		values.Set(k, v)
	}
	return values.Encode()
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
