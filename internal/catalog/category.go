package catalog

import (
	"fmt"
	"strconv"

	"contract_testing/internal/harness"
)

type Category struct {
	ID          int64
	Name        string
	Description string
}

func (c *Category) Fields() []harness.FieldValue {
	return []harness.FieldValue{
		{Name: "id", Text: strconv.FormatInt(c.ID, 10), Required: true},
		{Name: "name", Text: c.Name, Required: true},
		{Name: "description", Text: c.Description},
	}
}

func (c *Category) Assign(name string, v harness.Value) error {
	var err error
	switch name {
	case "id":
		c.ID, err = v.Integer()
	case "name":
		c.Name, err = v.Text()
	case "description":
		c.Description, err = v.Text()
	default:
		err = fmt.Errorf("未知字段 %s", name)
	}
	return err
}
