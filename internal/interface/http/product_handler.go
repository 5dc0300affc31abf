package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productRequest struct {
	Name          *string             `json:"name"`
	NumberInStock *int                `json:"numberInStock"`
	BuyingPrice   *float64            `json:"buyingPrice"`
	PriceToSell   *float64            `json:"priceToSell"`
	BuyingDate    *string             `json:"buyingDate"`
	Photo         *string             `json:"photo"`
	Sizes         *[]entity.SizeStock `json:"sizes"`
}

type sellRequest struct {
	SellingPrice *float64 `json:"sellingPrice"`
	Quantity     int      `json:"qte"`
	Comment      string   `json:"comment"`
	Size         string   `json:"size"`
}

type stockRequest struct {
	Amount int    `json:"amount"`
	Size   string `json:"size"`
}

type saleResponse struct {
	Seller       string    `json:"seller"`
	SellerName   string    `json:"sellerName,omitempty"`
	SellingDate  time.Time `json:"sellingDate"`
	SellingPrice float64   `json:"sellingPrice"`
	QuantitySold int       `json:"quantitySold"`
	Comment      string    `json:"comment,omitempty"`
	Size         string    `json:"size,omitempty"`
}

type productResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	NumberInStock int                `json:"numberInStock"`
	Sizes         []entity.SizeStock `json:"sizes,omitempty"`
	BuyingPrice   float64            `json:"buyingPrice"`
	PriceToSell   float64            `json:"priceToSell"`
	BuyingDate    time.Time          `json:"buyingDate"`
	CreationDate  time.Time          `json:"creationDate"`
	Photo         string             `json:"photo"`
	Buyer         string             `json:"buyer"`
	BuyerName     string             `json:"buyerName,omitempty"`
	Sales         []saleResponse     `json:"sales"`
}

type listedProductResponse struct {
	productResponse
	AgeInDays  int    `json:"ageInDays"`
	IsOldStock bool   `json:"isOldStock"`
	Label      string `json:"label"`
}

func toProductResponse(p *entity.Product) productResponse {
	sales := make([]saleResponse, 0, len(p.Sales))
	for _, s := range p.Sales {
		sales = append(sales, saleResponse{
			Seller:       s.Seller.Hex(),
			SellingDate:  s.SellingDate,
			SellingPrice: s.SellingPrice,
			QuantitySold: s.QuantitySold,
			Comment:      s.Comment,
			Size:         s.Size,
		})
	}
	return productResponse{
		ID:            p.ID.Hex(),
		Name:          p.Name,
		NumberInStock: p.NumberInStock,
		Sizes:         p.Sizes,
		BuyingPrice:   p.BuyingPrice,
		PriceToSell:   p.PriceToSell,
		BuyingDate:    p.BuyingDate,
		CreationDate:  p.CreationDate,
		Photo:         p.Photo,
		Buyer:         p.Buyer.Hex(),
		Sales:         sales,
	}
}

// withNames fills in the buyer and seller names known from names.
func (r productResponse) withNames(p *entity.Product, names map[bson.ObjectID]string) productResponse {
	r.BuyerName = names[p.Buyer]
	for i := range r.Sales {
		r.Sales[i].SellerName = names[p.Sales[i].Seller]
	}
	return r
}

func toProductList(products []entity.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (req productRequest) buyingDate() (*time.Time, error) {
	if req.BuyingDate == nil {
		return nil, nil
	}
	t, err := parseDate("buyingDate", *req.BuyingDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	date, err := req.buyingDate()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	p, err := h.Svc.CreateProduct(c.Request.Context(), application.ProductInput{
		Name:          deref(req.Name),
		NumberInStock: req.NumberInStock,
		BuyingPrice:   req.BuyingPrice,
		PriceToSell:   req.PriceToSell,
		BuyingDate:    date,
		Photo:         deref(req.Photo),
		Sizes:         deref(req.Sizes),
	}, userID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toProductResponse(p), "product created", nil)
}

// List GET /products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.Svc.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]listedProductResponse, 0, len(products))
	for i := range products {
		lp := &products[i]
		out = append(out, listedProductResponse{
			productResponse: toProductResponse(&lp.Product).withNames(&lp.Product, lp.Names),
			AgeInDays:       lp.AgeInDays,
			IsOldStock:      lp.IsOldStock,
			Label:           lp.Label,
		})
	}
	response.Success(c, http.StatusOK, out, "products", map[string]any{"count": len(out)})
}

// Search GET /products/search?q=&limit=
func (h *ProductHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.Svc.SearchProducts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductList(products), "products", map[string]any{"count": len(products)})
}

// Get GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product", nil)
}

// Update PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	date, err := req.buyingDate()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), application.ProductPatch{
		Name:          req.Name,
		NumberInStock: req.NumberInStock,
		BuyingPrice:   req.BuyingPrice,
		PriceToSell:   req.PriceToSell,
		BuyingDate:    date,
		Sizes:         req.Sizes,
		Photo:         req.Photo,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product updated", nil)
}

// Sell POST /products/:id/sell
func (h *ProductHandler) Sell(c *gin.Context) {
	var req sellRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.SellProduct(c.Request.Context(), c.Param("id"), userID(c), application.SaleInput{
		UnitPrice: req.SellingPrice,
		Quantity:  req.Quantity,
		Comment:   req.Comment,
		Size:      req.Size,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "sale recorded", nil)
}

// IncreaseStock PATCH /products/:id/stock
func (h *ProductHandler) IncreaseStock(c *gin.Context) {
	var req stockRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.IncreaseStock(c.Request.Context(), c.Param("id"), req.Amount, req.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "stock increased", nil)
}

// Delete DELETE /products/delete/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "product deleted", nil)
}
