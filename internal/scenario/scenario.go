// Package scenario 定义测试场景：内置的商品目录用例，以及从工作簿读入的用例。
package scenario

import (
	"context"

	"contract_testing/internal/harness"
)

// Scenario 是一个独立的用例。Run 内部顺序发请求；传输和解码错误立即返回，
// 断言失败登记在会话中，最后由 s.Err() 一并返回。
type Scenario struct {
	Name string
	Run  func(ctx context.Context, s *harness.Session) error
}
