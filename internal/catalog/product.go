package catalog

import (
	"fmt"
	"strconv"

	"contract_testing/internal/harness"
)

// Product 商品记录。ID 在创建时可省略，CategoryName 由服务端根据 CategoryID 填充，只读。
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        Price
	CategoryID   int64
	CategoryName string
}

// Product 的 JSON 字段名
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldCategoryID   = "category_id"
	FieldCategoryName = "category_name"
)

// ProductFields 是读接口必须返回的字段
var ProductFields = []string{FieldID, FieldName, FieldDescription, FieldPrice, FieldCategoryID, FieldCategoryName}

func (p *Product) Fields() []harness.FieldValue {
	return []harness.FieldValue{
		{Name: FieldID, Text: strconv.FormatInt(p.ID, 10), Required: true},
		{Name: FieldName, Text: p.Name, Required: true},
		{Name: FieldDescription, Text: p.Description, Required: true},
		{Name: FieldPrice, Text: p.Price.String(), Required: true},
		{Name: FieldCategoryID, Text: strconv.FormatInt(p.CategoryID, 10), Required: true},
		{Name: FieldCategoryName, Text: p.CategoryName, Required: true},
	}
}

func (p *Product) Assign(name string, v harness.Value) error {
	var err error
	switch name {
	case FieldID:
		p.ID, err = v.Integer()
	case FieldName:
		p.Name, err = v.Text()
	case FieldDescription:
		p.Description, err = v.Text()
	case FieldPrice:
		var text string
		if text, err = v.DecimalText(); err == nil {
			p.Price, err = ParsePrice(text)
		}
	case FieldCategoryID:
		p.CategoryID, err = v.Integer()
	case FieldCategoryName:
		p.CategoryName, err = v.Text()
	default:
		err = fmt.Errorf("未知字段 %s", name)
	}
	return err
}

type productPayload struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	CategoryID  int64  `json:"category_id"`
}

// CreatePayload 是 create.php 的请求体，不含 id 和 category_name。
func (p Product) CreatePayload() any {
	return productPayload{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
	}
}

// UpdatePayload 是 update.php 的请求体，不含 category_name。
func (p Product) UpdatePayload() any {
	payload := p.CreatePayload().(productPayload)
	payload.ID = p.ID
	return payload
}
