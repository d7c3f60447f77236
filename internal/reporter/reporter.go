package reporter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"

	"contract_testing/internal/config"
	"contract_testing/internal/model"
)

const (
	// Excel 相关
	defaultSheetNameFormat = "测试报告_%s"
	timeFormat             = "2006-01-02_15-04-05"
	minColumn              = 'A'
	defaultColumnWidth     = 14
	wideColumnWidth        = 48

	// 样式相关
	patternType    = "pattern"
	patternValue   = 1
	errorBgColor   = "FF5900"
	warningBgColor = "FFEB9C"

	// excelize.NewFile 自带的工作表，新建报告时直接改名使用
	newFileSheet = "Sheet1"

	// 单元格最多写入的字符数，Excel 上限为 32767
	maxCellLength = 32000
)

// 表头定义
var excelHeaders = []string{
	"用例编号", "用例名称", "请求方法", "请求地址", "请求体",
	"状态码", "测试结果", "错误类型", "错误信息", "响应体",
	"CURL命令", "耗时(ms)",
}

// 需要加宽的列：错误信息、响应体、CURL命令
var wideColumns = []int{8, 9, 10}

type Reporter struct {
	config *config.Config
	logger *slog.Logger
	out    io.Writer
}

// New 创建 Reporter，控制台汇总写到 out。
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{config: cfg, logger: logger.With("component", "reporter"), out: out}
}

// GenerateReport 输出控制台汇总；配置了 report_path 时再写 Excel 报告。
func (r *Reporter) GenerateReport(results []model.TestResult, duration time.Duration, runID string) error {
	r.printConsoleReport(results, duration, runID)
	if r.config.ReportPath == "" {
		return nil
	}
	return r.generateExcelReport(results, duration, runID)
}

// WriteMetrics 把指标写成 node_exporter textfile，未配置 metrics_path 时不做任何事。
func (r *Reporter) WriteMetrics(g prometheus.Gatherer) error {
	if r.config.MetricsPath == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.config.MetricsPath, g); err != nil {
		return fmt.Errorf("写入指标文件失败: %w", err)
	}
	r.logger.Info("指标已写入", "path", r.config.MetricsPath)
	return nil
}

func (r *Reporter) generateExcelReport(results []model.TestResult, duration time.Duration, runID string) error {
	f, created, err := openOrCreate(r.config.ReportPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// 创建新的工作表
	sheetName := fmt.Sprintf(defaultSheetNameFormat, time.Now().Format(timeFormat))
	var index int
	if created {
		f.SetSheetName(newFileSheet, sheetName)
	} else if index, err = f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(index)

	// 设置列宽
	lastColumn := string(rune(minColumn + len(excelHeaders) - 1))
	f.SetColWidth(sheetName, string(minColumn), lastColumn, defaultColumnWidth)
	for _, i := range wideColumns {
		col := string(rune(minColumn + i))
		f.SetColWidth(sheetName, col, col, wideColumnWidth)
	}

	// 写入表头
	for i, header := range excelHeaders {
		cell := fmt.Sprintf("%c1", minColumn+i)
		f.SetCellValue(sheetName, cell, header)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	// 写入测试结果
	for i, result := range results {
		r.writeTestResult(f, sheetName, i+2, result, styles)
	}

	// 写入汇总信息
	summaryRow := len(results) + 3
	r.writeSummary(f, sheetName, summaryRow, results, duration, runID)

	if created {
		err = f.SaveAs(r.config.ReportPath)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("保存报告失败: %w", err)
	}

	r.logger.Info("测试报告已保存", "path", r.config.ReportPath, "sheet", sheetName)
	return nil
}

func openOrCreate(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("打开Excel文件失败: %w", err)
	}
	return f, false, nil
}

type cellStyles struct {
	failed int
	slow   int
}

func newStyles(f *excelize.File) (cellStyles, error) {
	// 设置错误样式（红色背景）
	failed, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{errorBgColor}},
	})
	if err != nil {
		return cellStyles{}, fmt.Errorf("创建样式失败: %w", err)
	}
	// 设置警告样式（黄色背景）
	slow, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{warningBgColor}},
	})
	if err != nil {
		return cellStyles{}, fmt.Errorf("创建样式失败: %w", err)
	}
	return cellStyles{failed: failed, slow: slow}, nil
}

func (r *Reporter) writeTestResult(f *excelize.File, sheet string, row int, result model.TestResult, styles cellStyles) {
	var methods, urls, bodies, codes, responses, curls []string
	for _, x := range result.Exchanges {
		methods = append(methods, x.Method)
		urls = append(urls, x.URL)
		bodies = append(bodies, x.RequestBody)
		codes = append(codes, fmt.Sprint(x.StatusCode))
		responses = append(responses, x.ResponseBody)
		curls = append(curls, x.Curl)
	}

	cells := []interface{}{
		result.CaseNumber,
		result.CaseName,
		strings.Join(methods, "\n"),
		strings.Join(urls, "\n"),
		truncate(strings.Join(bodies, "\n")),
		strings.Join(codes, "\n"),
		result.Success,
		result.Kind,
		truncate(result.Error),
		truncate(strings.Join(responses, "\n")),
		truncate(strings.Join(curls, "\n")),
		float64(result.Duration.Microseconds()) / 1000,
	}

	for i, cell := range cells {
		cellName := fmt.Sprintf("%c%d", minColumn+i, row)
		f.SetCellValue(sheet, cellName, cell)

		// 失败标红，超过阈值的慢用例标黄
		if !result.Success {
			f.SetCellStyle(sheet, cellName, cellName, styles.failed)
		} else if result.Duration > r.config.SlowThreshold {
			f.SetCellStyle(sheet, cellName, cellName, styles.slow)
		}
	}
}

func (r *Reporter) writeSummary(f *excelize.File, sheet string, startRow int, results []model.TestResult, duration time.Duration, runID string) {
	f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow), "测试汇总")
	f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow+1), fmt.Sprintf("运行ID: %s", runID))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow+2), fmt.Sprintf("总执行时间: %.6fms", float64(duration.Microseconds())/1000))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow+3), fmt.Sprintf("总用例数: %d", len(results)))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow+4), fmt.Sprintf("失败用例数: %d", model.CountFailed(results)))
}

func (r *Reporter) printConsoleReport(results []model.TestResult, duration time.Duration, runID string) {
	failedTests := model.CountFailed(results)

	for _, result := range results {
		if result.Success {
			continue
		}
		fmt.Fprintf(r.out, "\n=== 失败用例 #%d: %s [%s] ===\n", result.CaseNumber, result.CaseName, result.Kind)
		fmt.Fprintln(r.out, result.Error)
		if x := result.LastExchange(); x.Curl != "" {
			fmt.Fprintln(r.out, x.Curl)
		}
	}

	// 输出汇总信息
	fmt.Fprintf(r.out, "\n测试汇总 (%s)\n", runID)
	fmt.Fprintf(r.out, "总执行时间: %.6fms\n", float64(duration.Microseconds())/1000)
	fmt.Fprintf(r.out, "总用例数: %d\n", len(results))
	if failedTests > 0 {
		fmt.Fprintf(r.out, "\033[31m失败用例数: %d\033[0m\n", failedTests)
	} else {
		fmt.Fprintf(r.out, "失败用例数: %d\n", failedTests)
	}
}

func truncate(s string) string {
	if len(s) <= maxCellLength {
		return s
	}
	n := maxCellLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
