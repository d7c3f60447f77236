package scenario

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"contract_testing/internal/catalog"
	"contract_testing/internal/harness"
)

var (
	createdMessage = regexp.MustCompile(`(?i)\bcreated\b`)
	updatedMessage = regexp.MustCompile(`(?i)\bupdated\b`)
	deletedMessage = regexp.MustCompile(`(?i)\bdeleted\b`)

	messagePath = harness.Path{harness.Field("message")}
)

// 固定数据中的商品
var (
	crossBackTank = catalog.Product{
		ID:           2,
		Name:         "Cross-Back Training Tank",
		Description:  "The most awesome phone of 2013!",
		Price:        catalog.NewPrice(299, 0),
		CategoryID:   2,
		CategoryName: "Active Wear - Women",
	}
	multiVitamin = catalog.Product{
		ID:           18,
		Name:         "Multi-Vitamin (90 capsules)",
		Description:  "A daily dose of our Multi-Vitamins fulfills a day’s nutritional needs for over 12 vitamins and minerals.",
		Price:        catalog.NewPrice(10, 0),
		CategoryID:   4,
		CategoryName: "Supplements",
	}
)

// 列表第一条（最新）商品的 id
const newestProductID = 29

const waterBottleBody = `{"name":"Water Bottle","description":"Blue water bottle, holds 64 ounces","price":12,"category_id":3}`

// Catalog 返回内置的商品目录用例。marker 写进新建商品的描述，用来在列表中找回本次运行创建的商品。
func Catalog(marker string) []Scenario {
	return []Scenario{
		{Name: "getCategories", Run: getCategories},
		{Name: "getProduct", Run: getProduct},
		{Name: "getProducts", Run: getProducts},
		{Name: "createProduct", Run: createProduct},
		{Name: "updateProduct", Run: updateProduct(marker)},
		{Name: "deleteProduct", Run: deleteProduct(marker)},
		{Name: "createSerializedProduct", Run: createSerializedProduct},
		{Name: "getDeserializedProduct", Run: getDeserializedProduct},
		{Name: "verifyAPIResponse", Run: verifyAPIResponse},
		{Name: "sweatbandLifecycle", Run: sweatbandLifecycle(marker)},
		{Name: "productRoundTrip", Run: productRoundTrip},
	}
}

func getCategories(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadCategories, harness.Request{})
	if err != nil {
		return err
	}
	s.Expect(resp).
		Status(http.StatusOK).
		At("records", harness.NonEmpty()).
		At("records[*].id", harness.NotNull()).
		At("records[*].name", harness.NotNull())

	err = harness.DecodeList(resp, "records", func(int) harness.Record { return &catalog.Category{} })
	if err != nil {
		return abort(s, err)
	}
	return s.Err()
}

func getProduct(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadProduct, harness.Request{Query: catalog.ReadOneQuery(crossBackTank.ID)})
	if err != nil {
		return err
	}
	s.Expect(resp).
		Status(http.StatusOK).
		At(catalog.FieldID, harness.NumericEqual(2)).
		At(catalog.FieldName, harness.Equal(crossBackTank.Name)).
		At(catalog.FieldDescription, harness.Equal(crossBackTank.Description)).
		At(catalog.FieldPrice, harness.NumericEqual(299.00)).
		At(catalog.FieldCategoryID, harness.NumericEqual(2)).
		At(catalog.FieldCategoryName, harness.Equal(crossBackTank.CategoryName))
	return s.Err()
}

func getProducts(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadProducts, harness.Request{})
	if err != nil {
		return err
	}
	e := s.Expect(resp).
		Status(http.StatusOK).
		Header("Content-Type", "application/json; charset=UTF-8").
		Field(harness.Path{harness.Field("records")}, harness.LenGreaterThan(0))
	for _, name := range catalog.ProductFields {
		e.Field(harness.Path{harness.Field("records"), harness.Every(), harness.Field(name)}, harness.NotNull())
	}
	e.Field(harness.Path{harness.Field("records"), harness.Index(0), harness.Field(catalog.FieldID)}, harness.NumericEqual(newestProductID))
	return s.Err()
}

func createProduct(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.CreateProduct, harness.Request{Body: waterBottleBody})
	if err != nil {
		return err
	}
	s.Expect(resp).
		Status(http.StatusCreated).
		Field(messagePath, harness.Matches(createdMessage))
	return s.Err()
}

func createSerializedProduct(ctx context.Context, s *harness.Session) error {
	p := catalog.Product{
		Name:        "Water Bottle",
		Description: "Blue water bottle, holds 64 ounces",
		Price:       catalog.NewPrice(15, 0),
		CategoryID:  3,
	}
	resp, err := s.Execute(ctx, catalog.CreateProduct, harness.Request{Payload: p.CreatePayload()})
	if err != nil {
		return err
	}
	s.Expect(resp).
		Status(http.StatusCreated).
		Field(messagePath, harness.Matches(createdMessage))
	return s.Err()
}

// updateProduct 先创建自己的商品再修改价格，最后删除，不依赖固定 id。
func updateProduct(marker string) func(context.Context, *harness.Session) error {
	return func(ctx context.Context, s *harness.Session) error {
		p := waterBottle(marker)
		id, err := createAndLocate(ctx, s, p, marker)
		if err != nil {
			return err
		}
		p.ID = id
		p.Price = catalog.NewPrice(15, 0)

		resp, err := s.Execute(ctx, catalog.UpdateProduct, harness.Request{Payload: p.UpdatePayload()})
		if err != nil {
			return abort(s, err)
		}
		s.Expect(resp).
			Status(http.StatusOK).
			Field(messagePath, harness.Matches(updatedMessage))

		if err := remove(ctx, s, id); err != nil {
			return abort(s, err)
		}
		return s.Err()
	}
}

func deleteProduct(marker string) func(context.Context, *harness.Session) error {
	return func(ctx context.Context, s *harness.Session) error {
		id, err := createAndLocate(ctx, s, waterBottle(marker), marker)
		if err != nil {
			return err
		}
		if err := remove(ctx, s, id); err != nil {
			return abort(s, err)
		}
		return s.Err()
	}
}

func getDeserializedProduct(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadProduct, harness.Request{Query: catalog.ReadOneQuery(crossBackTank.ID)})
	if err != nil {
		return err
	}
	e := s.Expect(resp).Status(http.StatusOK)

	var actual catalog.Product
	if err := harness.Decode(resp, &actual); err != nil {
		return abort(s, err)
	}
	expected := crossBackTank
	e.Record(&expected, &actual)
	return s.Err()
}

func verifyAPIResponse(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadProduct, harness.Request{Query: catalog.ReadOneQuery(multiVitamin.ID)})
	if err != nil {
		return err
	}
	e := s.Expect(resp).
		Status(http.StatusOK).
		Header("Content-Type", "application/json")

	var actual catalog.Product
	if err := harness.Decode(resp, &actual); err != nil {
		return abort(s, err)
	}
	expected := multiVitamin
	e.Record(&expected, &actual)
	return s.Err()
}

// sweatbandLifecycle 创建、改价、读回、删除同一个商品；读回的价格必须是修改后的价格。
func sweatbandLifecycle(marker string) func(context.Context, *harness.Session) error {
	return func(ctx context.Context, s *harness.Session) error {
		p := catalog.Product{
			Name:        "Sweatband",
			Description: "Red Sweatband size: XL " + marker,
			Price:       catalog.NewPrice(5, 0),
			CategoryID:  3,
		}
		id, err := createAndLocate(ctx, s, p, marker)
		if err != nil {
			return err
		}
		p.ID = id
		p.Price = catalog.NewPrice(6, 0)

		resp, err := s.Execute(ctx, catalog.UpdateProduct, harness.Request{Payload: p.UpdatePayload()})
		if err != nil {
			return abort(s, err)
		}
		s.Expect(resp).
			Status(http.StatusOK).
			Field(messagePath, harness.Matches(updatedMessage))

		resp, err = s.Execute(ctx, catalog.ReadProduct, harness.Request{Query: catalog.ReadOneQuery(id)})
		if err != nil {
			return abort(s, err)
		}
		e := s.Expect(resp).Status(http.StatusOK)
		var got catalog.Product
		if err := harness.Decode(resp, &got); err != nil {
			return abort(s, err)
		}
		// category_name 由服务端决定，取回读到的值再整体比较
		expected := p
		expected.CategoryName = got.CategoryName
		e.Record(&expected, &got)

		if err := remove(ctx, s, id); err != nil {
			return abort(s, err)
		}
		return s.Err()
	}
}

// productRoundTrip 列表中的每个 id 经 read_one 读回后 id 不变。
func productRoundTrip(ctx context.Context, s *harness.Session) error {
	resp, err := s.Execute(ctx, catalog.ReadProducts, harness.Request{})
	if err != nil {
		return err
	}
	s.Expect(resp).Status(http.StatusOK)

	var products []*catalog.Product
	err = harness.DecodeList(resp, "records", func(int) harness.Record {
		p := &catalog.Product{}
		products = append(products, p)
		return p
	})
	if err != nil {
		return abort(s, err)
	}

	for _, p := range products {
		one, err := s.Execute(ctx, catalog.ReadProduct, harness.Request{Query: catalog.ReadOneQuery(p.ID)})
		if err != nil {
			return abort(s, err)
		}
		s.Expect(one).
			Status(http.StatusOK).
			At(catalog.FieldID, harness.NumericEqual(float64(p.ID)))
	}
	return s.Err()
}

func waterBottle(marker string) catalog.Product {
	return catalog.Product{
		Name:        "Water Bottle",
		Description: "Blue water bottle, holds 64 ounces " + marker,
		Price:       catalog.NewPrice(12, 0),
		CategoryID:  3,
	}
}

// createAndLocate 创建商品并返回其 id。create.php 不回传 id，只能在列表里按名称和 marker 找回。
func createAndLocate(ctx context.Context, s *harness.Session, p catalog.Product, marker string) (int64, error) {
	resp, err := s.Execute(ctx, catalog.CreateProduct, harness.Request{Payload: p.CreatePayload()})
	if err != nil {
		return 0, err
	}
	if err := s.Expect(resp).Status(http.StatusCreated).Field(messagePath, harness.Matches(createdMessage)).Err(); err != nil {
		return 0, err
	}
	return locateProduct(ctx, s, p.Name, marker)
}

// locateProduct 返回名称相同且描述含 marker 的商品中最大的 id
func locateProduct(ctx context.Context, s *harness.Session, name, marker string) (int64, error) {
	resp, err := s.Execute(ctx, catalog.ReadProducts, harness.Request{})
	if err != nil {
		return 0, abort(s, err)
	}
	e := s.Expect(resp).Status(http.StatusOK)
	if err := e.Err(); err != nil {
		return 0, s.Err()
	}
	body, err := resp.JSON()
	if err != nil {
		return 0, abort(s, &harness.DecodeError{Endpoint: resp.Endpoint, Reason: "响应体" + err.Error(), Body: resp.Body})
	}

	var found int64 = -1
	for _, item := range body.Get("records").Array() {
		n, _ := item.Get(catalog.FieldName).Text()
		d, _ := item.Get(catalog.FieldDescription).Text()
		if n != name || !strings.Contains(d, marker) {
			continue
		}
		id, err := item.Get(catalog.FieldID).Integer()
		if err == nil && id > found {
			found = id
		}
	}
	if found < 0 {
		e.Fail(harness.CheckField, "records", fmt.Sprintf("name == %q 且 description 含 %q", name, marker), "未找到")
		return 0, s.Err()
	}
	return found, nil
}

func remove(ctx context.Context, s *harness.Session, id int64) error {
	resp, err := s.Execute(ctx, catalog.DeleteProduct, harness.Request{Payload: catalog.DeletePayload{ID: id}})
	if err != nil {
		return err
	}
	s.Expect(resp).
		Status(http.StatusOK).
		Field(messagePath, harness.Matches(deletedMessage))
	return nil
}

// abort 在中止场景时带上此前已登记的断言失败
func abort(s *harness.Session, err error) error {
	if prior := s.Err(); prior != nil {
		return errors.Join(err, prior)
	}
	return err
}
