package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"contract_testing/internal/config"
	"contract_testing/internal/harness"
	"contract_testing/internal/logging"
	"contract_testing/internal/model"
	"contract_testing/internal/reporter"
	"contract_testing/internal/runner"
	"contract_testing/internal/scenario"
)

func main() {
	configPath := flag.String("config", "config.json", "配置文件路径（JSON 或 YAML）")
	runPattern := flag.String("run", "", "只执行名称匹配该正则的用例")
	flag.Parse()

	// 显式传入 -config 时文件必须存在
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(*configPath, explicit)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, logging.IsTerminal(os.Stderr))
	slog.SetDefault(logger)

	runID := uuid.NewString()
	logger.Info("开始测试", "run_id", runID, "base_url", cfg.BaseURL, "concurrent", cfg.Concurrent)

	client, err := harness.NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, logger)
	if err != nil {
		log.Fatalf("创建客户端失败: %v", err)
	}

	scenarios := scenario.Catalog("[run " + runID + "]")
	if cfg.ExcelPath != "" {
		extra, err := scenario.LoadWorkbook(cfg.ExcelPath, cfg.SheetName, cfg.HeaderRow)
		if err != nil {
			log.Fatalf("读取用例失败: %v", err)
		}
		scenarios = append(scenarios, extra...)
	}
	scenarios, err = runner.Select(scenarios, *runPattern)
	if err != nil {
		log.Fatalf("筛选用例失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := runner.NewMetrics()
	r := runner.New(cfg, client, logger, metrics)

	startTime := time.Now()
	results, err := r.Run(ctx, scenarios)
	if err != nil && results == nil {
		log.Fatalf("执行测试失败: %v", err)
	}
	if err != nil {
		logger.Warn("测试被中断", "error", err)
	}

	duration := time.Since(startTime)
	rep := reporter.New(cfg, logger, os.Stdout)
	if err := rep.GenerateReport(results, duration, runID); err != nil {
		log.Fatalf("生成报告失败: %v", err)
	}
	if err := rep.WriteMetrics(metrics.Registry()); err != nil {
		log.Fatalf("写入指标失败: %v", err)
	}

	if model.CountFailed(results) > 0 {
		stop()
		fmt.Println("测试失败")
		os.Exit(1)
	}
	fmt.Println("测试通过")
}
