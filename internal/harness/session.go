package harness

import (
	"context"
	"errors"
)

// Session 对应一个场景：顺序发出请求，保留调用记录，场景结束时汇总全部断言失败。
// 不支持并发使用。
type Session struct {
	client       *Client
	transcript   []*Response
	expectations []*Expectation
}

func (c *Client) NewSession() *Session {
	return &Session{client: c}
}

func (s *Session) Client() *Client { return s.client }

func (s *Session) Execute(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	resp, err := s.client.Execute(ctx, ep, req)
	if err != nil {
		return nil, err
	}
	s.transcript = append(s.transcript, resp)
	return resp, nil
}

// Expect 创建一组登记在会话中的断言
func (s *Session) Expect(resp *Response) *Expectation {
	e := Expect(resp)
	s.expectations = append(s.expectations, e)
	return e
}

func (s *Session) Transcript() []*Response {
	return s.transcript
}

// Err 返回到目前为止的全部断言失败，没有失败时为 nil。
func (s *Session) Err() error {
	var errs []error
	for _, e := range s.expectations {
		if err := e.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
