// Package catalog 描述被测的商品目录服务：端点和记录类型。
package catalog

import (
	"net/http"
	"strconv"

	"contract_testing/internal/harness"
)

const (
	CategoryReadPath   = "/category/read.php"
	ProductReadPath    = "/product/read.php"
	ProductReadOnePath = "/product/read_one.php"
	ProductCreatePath  = "/product/create.php"
	ProductUpdatePath  = "/product/update.php"
	ProductDeletePath  = "/product/delete.php"
)

var (
	ReadCategories = harness.Endpoint{Method: http.MethodGet, Path: CategoryReadPath}
	ReadProducts   = harness.Endpoint{Method: http.MethodGet, Path: ProductReadPath}
	ReadProduct    = harness.Endpoint{Method: http.MethodGet, Path: ProductReadOnePath}
	CreateProduct  = harness.Endpoint{Method: http.MethodPost, Path: ProductCreatePath}
	UpdateProduct  = harness.Endpoint{Method: http.MethodPut, Path: ProductUpdatePath}
	DeleteProduct  = harness.Endpoint{Method: http.MethodDelete, Path: ProductDeletePath}
)

// ReadOneQuery 是 read_one.php 的查询参数
func ReadOneQuery(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

// DeletePayload 是 delete.php 的请求体
type DeletePayload struct {
	ID int64 `json:"id"`
}
