package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"contract_testing/internal/harness"
	"contract_testing/internal/model"
	"contract_testing/internal/testutil"
)

var workbookHeader = []any{"用例名称", "请求方法", "请求路径", "查询参数", "请求体", "期望状态码", "断言", "期望结果"}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &workbookHeader))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t,
		[]any{"读取商品", "get", "/product/read_one.php", "id=2", "", 200,
			"name == \"Cross-Back Training Tank\"\nprice ~ ^\\d+\\.\\d{2}$\nheader Content-Type == application/json",
			`{"id":"2","category_name":"^Active"}`},
		[]any{"商品列表", "GET", "/product/read.php", "", "", 200, "records[*].id notnull\n\nrecords[0].id == 29"},
		[]any{"", "GET", "/product/read.php"},
		[]any{"创建商品", "POST", "/product/create.php", "", `{"name":"Towel","description":"Cotton","price":3,"category_id":5}`, 201, `message ~ (?i)created`},
		[]any{"名称不符", "GET", "/product/read_one.php", "id=18", "", 200, `name == "Water Bottle"`},
	)

	scenarios, err := LoadWorkbook(path, "Sheet1", 1)
	require.NoError(t, err)
	require.Len(t, scenarios, 4)
	assert.Equal(t, "读取商品", scenarios[0].Name)
	assert.Equal(t, "名称不符", scenarios[3].Name)

	srv := testutil.NewServer(t)
	c, err := harness.NewClient(srv.BaseURL, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, sc := range scenarios[:3] {
		assert.NoError(t, sc.Run(ctx, c.NewSession()), sc.Name)
	}
	_, ok := srv.Catalog.Get(30)
	assert.True(t, ok)

	err = scenarios[3].Run(ctx, c.NewSession())
	require.Error(t, err)
	assert.Equal(t, "assertion", harness.Kind(err))
	assert.Contains(t, err.Error(), `field name: 期望 == "Water Bottle"`)
}

func TestLoadWorkbookErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want string
	}{
		{"bad status", [][]any{{"a", "GET", "/x", "", "", "ok"}}, "第 2 行"},
		{"bad method", [][]any{{"a", "PATCH", "/x"}}, "不支持的方法"},
		{"bad assertion", [][]any{{"a", "GET", "/x", "", "", 200, "id equals 2"}}, "未知运算符"},
		{"bad expected", [][]any{{"a", "GET", "/x", "", "", 200, "", `{"id":`}}, "期望结果"},
		{"empty", nil, "没有找到测试用例"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.rows...)
			_, err := LoadWorkbook(path, "Sheet1", 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadWorkbookMissingInputs(t *testing.T) {
	_, err := LoadWorkbook(filepath.Join(t.TempDir(), "none.xlsx"), "Sheet1", 1)
	assert.Error(t, err)

	path := writeWorkbook(t, []any{"a", "GET", "/x"})
	_, err = LoadWorkbook(path, "用例", 1)
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	assert.Equal(t, map[string]string{"id": "2", "q": ""}, parseParams(" id=2 & q= & bad "))
	assert.Empty(t, parseParams(""))
}

func TestFromTestCaseWithoutStatus(t *testing.T) {
	sc, err := FromTestCase(model.TestCase{CaseName: "no status", Method: "GET", Path: "/product/read_one.php", QueryParams: map[string]string{"id": "999"}})
	require.NoError(t, err)

	srv := testutil.NewServer(t)
	c, err := harness.NewClient(srv.BaseURL, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, sc.Run(context.Background(), c.NewSession()))
}
