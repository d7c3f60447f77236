package model

import "time"

// TestCase 是工作簿中的一行用例
type TestCase struct {
	CaseName       string            // 测试用例名称
	Method         string            // HTTP方法
	Path           string            // 请求路径
	QueryParams    map[string]string // 查询参数
	Body           string            // 请求体
	ExpectedStatus int               // 期望状态码，0 表示不检查
	Assertions     []string          // 断言，每行一条
	Expected       string            // 期望结果（JSON，包含匹配）
}

// Exchange 是场景中的一次请求与响应
type Exchange struct {
	Method       string
	Path         string
	URL          string
	RequestBody  string
	StatusCode   int
	ResponseBody string
	Curl         string
	Duration     time.Duration
}

type TestResult struct {
	CaseNumber int
	CaseName   string
	Success    bool
	Kind       string // 错误类别：transport、decode、assertion、request、canceled、internal
	Error      string
	Exchanges  []Exchange
	Duration   time.Duration
}

// LastExchange 返回最后一次调用，没有调用时返回零值。
func (r TestResult) LastExchange() Exchange {
	if len(r.Exchanges) == 0 {
		return Exchange{}
	}
	return r.Exchanges[len(r.Exchanges)-1]
}

// CountFailed 统计失败用例数
func CountFailed(results []TestResult) int {
	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	return failed
}
