package runner

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"contract_testing/internal/config"
	"contract_testing/internal/harness"
	"contract_testing/internal/model"
	"contract_testing/internal/scenario"
)

type Runner struct {
	config  *config.Config
	client  *harness.Client
	logger  *slog.Logger
	metrics *Metrics
}

// New 创建 Runner，metrics 可为 nil。
func New(cfg *config.Config, client *harness.Client, logger *slog.Logger, metrics *Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config:  cfg,
		client:  client,
		logger:  logger.With("component", "runner"),
		metrics: metrics,
	}
}

// Select 按名称正则筛选场景，pattern 为空时全部保留。
func Select(scenarios []scenario.Scenario, pattern string) ([]scenario.Scenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("非法的用例筛选正则: %w", err)
	}
	var out []scenario.Scenario
	for _, sc := range scenarios {
		if re.MatchString(sc.Name) {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Run 用最多 Concurrent 个协程执行场景，结果按用例编号排列。
// 单个场景内部的请求总是顺序执行。
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) ([]model.TestResult, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("没有找到测试用例")
	}

	workers := r.config.Concurrent
	if workers <= 0 {
		workers = 1
	}

	results := make([]model.TestResult, len(scenarios))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, sc := range scenarios {
		g.Go(func() error {
			results[i] = r.executeScenario(ctx, i+1, sc)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func (r *Runner) executeScenario(ctx context.Context, caseNumber int, sc scenario.Scenario) (result model.TestResult) {
	session := r.client.NewSession()
	start := time.Now()

	result = model.TestResult{CaseNumber: caseNumber, CaseName: sc.Name}
	defer func() {
		if p := recover(); p != nil {
			result.Success = false
			result.Kind = "internal"
			result.Error = fmt.Sprintf("panic: %v", p)
		}
		result.Duration = time.Since(start)
		result.Exchanges = exchanges(session.Transcript())
		r.observe(result)
	}()

	if err := ctx.Err(); err != nil {
		result.Kind = harness.Kind(err)
		result.Error = err.Error()
		return result
	}

	err := sc.Run(ctx, session)
	result.Success = err == nil
	if err != nil {
		result.Kind = harness.Kind(err)
		result.Error = err.Error()
	}
	return result
}

func (r *Runner) observe(result model.TestResult) {
	if result.Success {
		r.logger.Info("用例通过", "case", result.CaseNumber, "name", result.CaseName, "duration", result.Duration)
	} else {
		r.logger.Warn("用例失败", "case", result.CaseNumber, "name", result.CaseName, "kind", result.Kind, "error", result.Error)
	}
	if r.metrics != nil {
		r.metrics.observe(result)
	}
}

func exchanges(transcript []*harness.Response) []model.Exchange {
	out := make([]model.Exchange, 0, len(transcript))
	for _, resp := range transcript {
		out = append(out, model.Exchange{
			Method:       resp.Endpoint.Method,
			Path:         resp.Endpoint.Path,
			URL:          resp.URL,
			RequestBody:  resp.RequestBody,
			StatusCode:   resp.StatusCode,
			ResponseBody: string(resp.Body),
			Curl:         resp.Curl,
			Duration:     resp.Duration,
		})
	}
	return out
}
