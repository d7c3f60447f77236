package scenario

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"contract_testing/internal/harness"
	"contract_testing/internal/model"
)

// 工作簿列顺序
const (
	colName = iota
	colMethod
	colPath
	colQuery
	colBody
	colStatus
	colAssertions
	colExpected
	columnCount
)

// LoadWorkbook 从工作簿读取用例，headerRow 行及以上为表头。
func LoadWorkbook(path, sheet string, headerRow int) ([]Scenario, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开Excel文件: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("无法读取工作表: %w", err)
	}
	if headerRow > len(rows) {
		headerRow = len(rows)
	}

	var scenarios []Scenario
	for i, row := range rows[headerRow:] {
		tc, ok, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", headerRow+i+1, err)
		}
		if !ok {
			continue
		}
		sc, err := FromTestCase(tc)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", headerRow+i+1, err)
		}
		scenarios = append(scenarios, sc)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("没有找到测试用例")
	}
	return scenarios, nil
}

// parseRow 把一行转成用例，用例名称为空的行跳过。
func parseRow(row []string) (model.TestCase, bool, error) {
	// GetRows 会省略行尾的空单元格
	for len(row) < columnCount {
		row = append(row, "")
	}
	name := strings.TrimSpace(row[colName])
	if name == "" {
		return model.TestCase{}, false, nil
	}

	tc := model.TestCase{
		CaseName:    name,
		Method:      strings.ToUpper(strings.TrimSpace(row[colMethod])),
		Path:        strings.TrimSpace(row[colPath]),
		QueryParams: parseParams(row[colQuery]),
		Body:        row[colBody],
		Expected:    strings.TrimSpace(row[colExpected]),
	}
	if s := strings.TrimSpace(row[colStatus]); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			return tc, false, fmt.Errorf("非法状态码 %q", s)
		}
		tc.ExpectedStatus = code
	}
	for _, line := range strings.Split(row[colAssertions], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tc.Assertions = append(tc.Assertions, line)
		}
	}
	return tc, true, nil
}

func parseParams(paramStr string) map[string]string {
	params := make(map[string]string)
	if strings.TrimSpace(paramStr) == "" {
		return params
	}

	for _, pair := range strings.Split(paramStr, "&") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k != "" {
			params[k] = v
		}
	}
	return params
}

// FromTestCase 把工作簿用例转成场景，断言和期望结果在这里预先解析。
func FromTestCase(tc model.TestCase) (Scenario, error) {
	ep := harness.Endpoint{Method: tc.Method, Path: tc.Path}
	if err := ep.Validate(); err != nil {
		return Scenario{}, err
	}

	checks := make([]assertion, 0, len(tc.Assertions)+1)
	for _, line := range tc.Assertions {
		a, err := parseAssertion(line)
		if err != nil {
			return Scenario{}, err
		}
		checks = append(checks, a)
	}
	if tc.Expected != "" {
		pred, err := harness.MatchesJSON(tc.Expected)
		if err != nil {
			return Scenario{}, err
		}
		checks = append(checks, assertion{path: harness.Path{}, pred: pred})
	}

	req := harness.Request{Query: tc.QueryParams, Body: tc.Body}
	return Scenario{
		Name: tc.CaseName,
		Run: func(ctx context.Context, s *harness.Session) error {
			resp, err := s.Execute(ctx, ep, req)
			if err != nil {
				return err
			}
			e := s.Expect(resp)
			if tc.ExpectedStatus != 0 {
				e.Status(tc.ExpectedStatus)
			}
			for _, c := range checks {
				c.apply(e)
			}
			return s.Err()
		},
	}, nil
}
