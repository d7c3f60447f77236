// Package testutil 提供测试用的内存商品目录服务。响应形状与被测服务一致：
// id 和 price 是字符串，category_id 是数字，列表按 id 倒序包在 records 下。
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// BasePath 是服务挂载的路径前缀
const BasePath = "/api_testing"

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string
	CategoryID  int64
}

type Catalog struct {
	mu         sync.Mutex
	categories map[int64]string
	products   map[int64]Product
	nextID     int64
}

// NewCatalog 返回带固定数据的目录，最新商品 id 为 29。
func NewCatalog() *Catalog {
	c := &Catalog{
		categories: map[int64]string{
			1: "Active Wear - Men",
			2: "Active Wear - Women",
			3: "Mineral Water",
			4: "Supplements",
			5: "Sports Equipment",
		},
		products: make(map[int64]Product),
		nextID:   30,
	}
	for _, p := range []Product{
		{ID: 1, Name: "Bamboo Thermal Ski Coat", Description: "You'll be the most stylish skier on the slopes.", Price: "99.00", CategoryID: 1},
		{ID: 2, Name: "Cross-Back Training Tank", Description: "The most awesome phone of 2013!", Price: "299.00", CategoryID: 2},
		{ID: 18, Name: "Multi-Vitamin (90 capsules)", Description: "A daily dose of our Multi-Vitamins fulfills a day’s nutritional needs for over 12 vitamins and minerals.", Price: "10.00", CategoryID: 4},
		{ID: 19, Name: "Water Bottle", Description: "Blue water bottle, holds 64 ounces", Price: "12.00", CategoryID: 3},
		{ID: 29, Name: "Stainless Steel Kettlebell", Description: "Powder-coated kettlebell, 12 kg", Price: "45.50", CategoryID: 5},
	} {
		c.products[p.ID] = p
	}
	return c
}

type Server struct {
	*httptest.Server
	Catalog *Catalog
	// BaseURL 是传给 harness.NewClient 的地址，含 BasePath
	BaseURL string
}

// NewServer 启动一个带固定数据的测试服务，测试结束时自动关闭。
func NewServer(t testing.TB) *Server {
	t.Helper()
	c := NewCatalog()
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Catalog: c, BaseURL: srv.URL + BasePath}
}

func (c *Catalog) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/category/read.php", c.readCategories)
		r.Get("/product/read.php", c.readProducts)
		r.Get("/product/read_one.php", c.readOne)
		r.Post("/product/create.php", c.create)
		r.Put("/product/update.php", c.update)
		r.Delete("/product/delete.php", c.delete)
	})
	return r
}

// Put 新增或覆盖一个商品
func (c *Catalog) Put(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	if p.ID >= c.nextID {
		c.nextID = p.ID + 1
	}
}

func (c *Catalog) Get(id int64) (Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	return p, ok
}

func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.products)
}

type productJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type categoryJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type productInput struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	CategoryID  json.Number `json:"category_id"`
}

type message struct {
	Message string `json:"message"`
}

const (
	listContentType = "application/json; charset=UTF-8"
	oneContentType  = "application/json"
)

func (c *Catalog) readCategories(w http.ResponseWriter, _ *http.Request) {
	c.mu.Lock()
	ids := make([]int64, 0, len(c.categories))
	for id := range c.categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	records := make([]categoryJSON, 0, len(ids))
	for _, id := range ids {
		records = append(records, categoryJSON{ID: strconv.FormatInt(id, 10), Name: c.categories[id], Description: ""})
	}
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, listContentType, map[string]any{"records": records})
}

func (c *Catalog) readProducts(w http.ResponseWriter, _ *http.Request) {
	c.mu.Lock()
	records := make([]productJSON, 0, len(c.products))
	for _, p := range c.products {
		records = append(records, c.toJSON(p))
	}
	c.mu.Unlock()

	if len(records) == 0 {
		writeJSON(w, http.StatusNotFound, listContentType, message{"No products found."})
		return
	}
	sort.Slice(records, func(i, j int) bool {
		a, _ := strconv.ParseInt(records[i].ID, 10, 64)
		b, _ := strconv.ParseInt(records[j].ID, 10, 64)
		return a > b
	})
	writeJSON(w, http.StatusOK, listContentType, map[string]any{"records": records})
}

func (c *Catalog) readOne(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, oneContentType, message{"Product does not exist."})
		return
	}
	c.mu.Lock()
	p, ok := c.products[id]
	var body productJSON
	if ok {
		body = c.toJSON(p)
	}
	c.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, oneContentType, message{"Product does not exist."})
		return
	}
	writeJSON(w, http.StatusOK, oneContentType, body)
}

func (c *Catalog) create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(r)
	if !ok || in.Name == "" || in.Description == "" || in.Price == "" || in.CategoryID == "" {
		writeJSON(w, http.StatusBadRequest, oneContentType, message{"Unable to create product. Data is incomplete."})
		return
	}
	p, err := fromInput(in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, oneContentType, message{"Unable to create product. Data is incomplete."})
		return
	}

	c.mu.Lock()
	p.ID = c.nextID
	c.nextID++
	c.products[p.ID] = p
	c.mu.Unlock()

	writeJSON(w, http.StatusCreated, oneContentType, message{"Product was created."})
}

func (c *Catalog) update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(r)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, oneContentType, message{"Unable to update product."})
		return
	}
	p, err := fromInput(in)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, oneContentType, message{"Unable to update product."})
		return
	}

	c.mu.Lock()
	_, exists := c.products[p.ID]
	if exists {
		c.products[p.ID] = p
	}
	c.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusServiceUnavailable, oneContentType, message{"Unable to update product."})
		return
	}
	writeJSON(w, http.StatusOK, oneContentType, message{"Product was updated."})
}

func (c *Catalog) delete(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(r)
	id, err := in.ID.Int64()
	if !ok || err != nil {
		writeJSON(w, http.StatusServiceUnavailable, oneContentType, message{"Unable to delete product."})
		return
	}

	c.mu.Lock()
	_, exists := c.products[id]
	delete(c.products, id)
	c.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusServiceUnavailable, oneContentType, message{"Unable to delete product."})
		return
	}
	writeJSON(w, http.StatusOK, oneContentType, message{"Product was deleted."})
}

func (c *Catalog) toJSON(p Product) productJSON {
	return productJSON{
		ID:           strconv.FormatInt(p.ID, 10),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: c.categories[p.CategoryID],
	}
}

func decodeInput(r *http.Request) (productInput, bool) {
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, false
	}
	return in, true
}

func fromInput(in productInput) (Product, error) {
	var p Product
	var err error
	if in.ID != "" {
		if p.ID, err = in.ID.Int64(); err != nil {
			return p, err
		}
	}
	price, err := in.Price.Float64()
	if err != nil {
		return p, err
	}
	if p.CategoryID, err = in.CategoryID.Int64(); err != nil {
		return p, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = fmt.Sprintf("%.2f", price)
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
