package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	repo "github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
	"github.com/oksasatya/inventory-sales-api/pkg/media"
)

const productImagePrefix = "product_images/"

type ProductService struct {
	Repo           repo.ProductRepository
	Users          repo.UserRepository // optional; resolves buyer and seller names in listings
	Media          media.Store
	Logger         *logrus.Logger
	ES             *elasticsearch.Client
	ESIndex        string
	StaleAfterDays int
	Outbound       Outbound

	now func() time.Time
}

func NewProductService(repo repo.ProductRepository, store media.Store, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, staleAfterDays int, outbound Outbound) *ProductService {
	if staleAfterDays <= 0 {
		staleAfterDays = 30
	}
	return &ProductService{
		Repo:           repo,
		Media:          store,
		Logger:         loggerOrNop(logger),
		ES:             es,
		ESIndex:        esIndex,
		StaleAfterDays: staleAfterDays,
		Outbound:       outbound,
		now:            time.Now,
	}
}

// ProductInput carries the fields of a new product. Pointers distinguish
// "missing" from zero.
type ProductInput struct {
	Name          string
	NumberInStock *int
	BuyingPrice   *float64
	PriceToSell   *float64
	BuyingDate    *time.Time
	Photo         string
	Sizes         []entity.SizeStock
}

// ProductPatch carries the optional fields of an update.
type ProductPatch struct {
	Name          *string
	NumberInStock *int
	BuyingPrice   *float64
	PriceToSell   *float64
	BuyingDate    *time.Time
	Sizes         *[]entity.SizeStock
	Photo         *string
}

type SaleInput struct {
	UnitPrice *float64
	Quantity  int
	Comment   string
	Size      string
}

// ListedProduct is a product annotated with its age at request time.
// Names maps the buyer and seller ids to user names when they could be resolved.
type ListedProduct struct {
	entity.Product
	AgeInDays  int
	IsOldStock bool
	Label      string
	Names      map[bson.ObjectID]string
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, ownerID string) (*entity.Product, error) {
	owner, err := parseID(ownerID, "user")
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	sizes, err := validateProductInput(&in)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetByName(ctx, in.Name); err == nil {
		return nil, apperror.Conflict("a product with this name already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal("failed to create product", err)
	}

	// The id is fixed before the upload so the image key never depends on
	// the (mutable) name.
	id := bson.NewObjectID()
	key := productImageKey(id)
	url, err := uploadImage(ctx, s.Media, s.Outbound, in.Photo, key)
	if err != nil {
		return nil, err
	}

	p := &entity.Product{
		ID:            id,
		Name:          in.Name,
		NumberInStock: *in.NumberInStock,
		Sizes:         sizes,
		BuyingPrice:   *in.BuyingPrice,
		PriceToSell:   *in.PriceToSell,
		BuyingDate:    in.BuyingDate.UTC(),
		CreationDate:  s.now().UTC(),
		Photo:         url,
		PhotoKey:      key,
		Buyer:         owner,
		Sales:         []entity.Sale{},
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		s.destroyImage(ctx, id, key, "product create failed, removing uploaded image")
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("a product with this name already exists")
		}
		return nil, apperror.Internal("failed to create product", err)
	}
	_ = s.indexProduct(ctx, p)
	return p, nil
}

func validateProductInput(in *ProductInput) ([]entity.SizeStock, error) {
	details := map[string]string{}
	if in.Name == "" {
		details["name"] = "is required"
	}
	if in.NumberInStock == nil {
		details["numberInStock"] = "is required"
	} else if *in.NumberInStock < 0 {
		details["numberInStock"] = "must be greater than or equal to 0"
	}
	checkPrice(details, "buyingPrice", in.BuyingPrice, true)
	checkPrice(details, "priceToSell", in.PriceToSell, true)
	if in.BuyingDate == nil || in.BuyingDate.IsZero() {
		details["buyingDate"] = "is required"
	}
	if strings.TrimSpace(in.Photo) == "" {
		details["photo"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("invalid product", details)
	}
	return validateSizes(in.Sizes, in.NumberInStock)
}

func checkPrice(details map[string]string, field string, v *float64, required bool) {
	switch {
	case v == nil:
		if required {
			details[field] = "is required"
		}
	case *v < 0:
		details[field] = "must be greater than or equal to 0"
	}
}

// validateSizes normalizes size labels and checks that per-size stock adds
// up to total when both are known.
func validateSizes(sizes []entity.SizeStock, total *int) ([]entity.SizeStock, error) {
	if len(sizes) == 0 {
		return nil, nil
	}
	out := make([]entity.SizeStock, 0, len(sizes))
	seen := map[string]bool{}
	sum := 0
	for _, sz := range sizes {
		label := strings.TrimSpace(sz.Size)
		switch {
		case label == "":
			return nil, apperror.Validation("invalid sizes", map[string]string{"sizes": "size label is required"})
		case seen[label]:
			return nil, apperror.Validation("invalid sizes", map[string]string{"sizes": "duplicate size " + label})
		case sz.Stock < 0:
			return nil, apperror.Validation("invalid sizes", map[string]string{"sizes": "stock must be greater than or equal to 0"})
		}
		seen[label] = true
		sum += sz.Stock
		out = append(out, entity.SizeStock{Size: label, Stock: sz.Stock})
	}
	if total != nil && *total != sum {
		return nil, apperror.Validation("invalid sizes", map[string]string{"sizes": "size stock must add up to numberInStock"})
	}
	return out, nil
}

func sumSizes(sizes []entity.SizeStock) int {
	n := 0
	for _, s := range sizes {
		n += s.Stock
	}
	return n
}

func (s *ProductService) load(ctx context.Context, productID string) (*entity.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("product not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load product", err)
	}
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	return s.load(ctx, productID)
}

// ListProducts returns every product, most recently bought first, with its
// age and stale-stock label computed against the current time.
func (s *ProductService) ListProducts(ctx context.Context) ([]ListedProduct, error) {
	products, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list products", err)
	}
	if len(products) == 0 {
		return nil, apperror.NotFound("no products found")
	}
	names := s.userNames(ctx, products)
	now := s.now()
	out := make([]ListedProduct, 0, len(products))
	for _, p := range products {
		old := p.IsOldStock(now, s.StaleAfterDays)
		out = append(out, ListedProduct{
			Product:    p,
			AgeInDays:  p.AgeInDays(now),
			IsOldStock: old,
			Label:      entity.StockLabel(old),
			Names:      names,
		})
	}
	return out, nil
}

// userNames looks up every buyer and seller of products in one query. A
// failed lookup only costs the names, so it is logged and the listing goes on.
func (s *ProductService) userNames(ctx context.Context, products []entity.Product) map[bson.ObjectID]string {
	names := map[bson.ObjectID]string{}
	if s.Users == nil {
		return names
	}
	seen := map[bson.ObjectID]bool{}
	var ids []bson.ObjectID
	add := func(id bson.ObjectID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for i := range products {
		add(products[i].Buyer)
		for _, sale := range products[i].Sales {
			add(sale.Seller)
		}
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		s.Logger.WithError(err).WithField("users", len(ids)).Warn("resolving product user names failed")
		return names
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}

func (s *ProductService) UpdateProduct(ctx context.Context, productID string, in ProductPatch) (*entity.Product, error) {
	p, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	upd := repo.ProductUpdate{
		NumberInStock: in.NumberInStock,
		BuyingPrice:   in.BuyingPrice,
		PriceToSell:   in.PriceToSell,
		BuyingDate:    in.BuyingDate,
	}
	details := map[string]string{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			details["name"] = "must not be empty"
		}
		upd.Name = &name
	}
	if in.NumberInStock != nil && *in.NumberInStock < 0 {
		details["numberInStock"] = "must be greater than or equal to 0"
	}
	checkPrice(details, "buyingPrice", in.BuyingPrice, false)
	checkPrice(details, "priceToSell", in.PriceToSell, false)
	if in.BuyingDate != nil {
		if in.BuyingDate.IsZero() {
			details["buyingDate"] = "must be a valid date"
		} else {
			d := in.BuyingDate.UTC()
			upd.BuyingDate = &d
		}
	}
	if len(details) > 0 {
		return nil, apperror.Validation("invalid product", details)
	}

	if in.Sizes != nil {
		sizes, err := validateSizes(*in.Sizes, in.NumberInStock)
		if err != nil {
			return nil, err
		}
		if sizes == nil {
			sizes = []entity.SizeStock{}
		}
		upd.Sizes = &sizes
		if in.NumberInStock == nil && len(sizes) > 0 {
			total := sumSizes(sizes)
			upd.NumberInStock = &total
		}
	} else if in.NumberInStock != nil && p.HasSizes() && *in.NumberInStock != sumSizes(p.Sizes) {
		return nil, apperror.Validation("invalid product", map[string]string{"numberInStock": "must match the size stock; update sizes instead"})
	}

	if upd.Name != nil && *upd.Name != p.Name {
		if _, err := s.Repo.GetByName(ctx, *upd.Name); err == nil {
			return nil, apperror.Conflict("a product with this name already exists")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Internal("failed to update product", err)
		}
	}

	var staleKey string
	if in.Photo != nil && strings.TrimSpace(*in.Photo) != "" {
		key := productImageKey(p.ID)
		url, err := uploadImage(ctx, s.Media, s.Outbound, *in.Photo, key)
		if err != nil {
			return nil, err
		}
		upd.Photo = &url
		upd.PhotoKey = &key
		if p.PhotoKey != "" && p.PhotoKey != key {
			staleKey = p.PhotoKey
		}
	}

	updated, err := s.Repo.Update(ctx, p.ID, upd)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, apperror.NotFound("product not found")
	case errors.Is(err, repo.ErrDuplicate):
		return nil, apperror.Conflict("a product with this name already exists")
	case err != nil:
		return nil, apperror.Internal("failed to update product", err)
	}
	if staleKey != "" {
		s.destroyImage(ctx, p.ID, staleKey, "previous product image delete failed")
	}
	_ = s.indexProduct(ctx, updated)
	return updated, nil
}

// SellProduct records a sale and decrements stock in a single conditional
// write, so concurrent sales can never drive stock below zero.
func (s *ProductService) SellProduct(ctx context.Context, productID, sellerID string, in SaleInput) (*entity.Product, error) {
	details := map[string]string{}
	if in.UnitPrice == nil {
		details["sellingPrice"] = "is required"
	} else if *in.UnitPrice <= 0 {
		details["sellingPrice"] = "must be greater than 0"
	}
	if in.Quantity < 1 {
		details["qte"] = "must be at least 1"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("invalid sale", details)
	}
	seller, err := parseID(sellerID, "user")
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	size := strings.TrimSpace(in.Size)
	available := p.NumberInStock
	switch {
	case p.HasSizes() && size == "":
		return nil, apperror.Validation("size is required", map[string]string{"size": "is required"})
	case p.HasSizes():
		n, ok := p.SizeStock(size)
		if !ok {
			return nil, apperror.Validation("unknown size", map[string]string{"size": "not available for this product"})
		}
		available = min(n, p.NumberInStock)
	case size != "":
		return nil, apperror.Validation("product is not sold by size", map[string]string{"size": "must be empty"})
	}
	if in.Quantity > available {
		return nil, insufficientStock(available)
	}

	sale := entity.Sale{
		Seller:       seller,
		SellingDate:  s.now().UTC(),
		SellingPrice: *in.UnitPrice,
		QuantitySold: in.Quantity,
		Comment:      strings.TrimSpace(in.Comment),
		Size:         size,
	}
	updated, err := s.Repo.RecordSale(ctx, p.ID, sale)
	switch {
	case errors.Is(err, repo.ErrInsufficientStock):
		return nil, insufficientStock(-1)
	case errors.Is(err, repo.ErrNotFound):
		return nil, apperror.NotFound("product not found")
	case err != nil:
		return nil, apperror.Internal("failed to record sale", err)
	}
	_ = s.indexProduct(ctx, updated)
	return updated, nil
}

func insufficientStock(available int) error {
	if available < 0 {
		return apperror.Validation("insufficient stock", nil)
	}
	return apperror.Validation("insufficient stock", map[string]int{"available": available})
}

// IncreaseStock adds amount to the total (and to size when sizes are tracked).
func (s *ProductService) IncreaseStock(ctx context.Context, productID string, amount int, size string) (*entity.Product, error) {
	if amount <= 0 {
		return nil, apperror.Validation("amount must be a positive number", map[string]string{"amount": "must be greater than 0"})
	}
	p, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	size = strings.TrimSpace(size)
	switch {
	case p.HasSizes() && size == "":
		return nil, apperror.Validation("size is required", map[string]string{"size": "is required"})
	case p.HasSizes():
		if _, ok := p.SizeStock(size); !ok {
			return nil, apperror.Validation("unknown size", map[string]string{"size": "not available for this product"})
		}
	case size != "":
		return nil, apperror.Validation("product is not sold by size", map[string]string{"size": "must be empty"})
	}

	updated, err := s.Repo.IncreaseStock(ctx, p.ID, amount, size)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("product not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to increase stock", err)
	}
	_ = s.indexProduct(ctx, updated)
	return updated, nil
}

// DeleteProduct removes the record first, then its image. A failed image
// delete leaves an orphaned object that is logged with its key.
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	id, err := parseID(productID, "product")
	if err != nil {
		return err
	}
	p, err := s.Repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound("product not found")
	}
	if err != nil {
		return apperror.Internal("failed to delete product", err)
	}

	if p.PhotoKey != "" {
		s.destroyImage(ctx, p.ID, p.PhotoKey, "product image delete failed")
	}
	_ = s.deleteProductDoc(ctx, p.ID)
	return nil
}

func productImageKey(id bson.ObjectID) string { return productImagePrefix + id.Hex() }

// destroyImage removes key from the media store. Failures leave an orphaned
// object behind, which is logged and otherwise ignored.
func (s *ProductService) destroyImage(ctx context.Context, productID bson.ObjectID, key, msg string) {
	if s.Media == nil {
		return
	}
	err := s.Outbound.Do(ctx, func(ctx context.Context) error {
		return s.Media.Destroy(ctx, key)
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"product_id":   productID.Hex(),
			"orphaned_key": key,
		}).Warn(msg)
	}
}

// SearchProducts matches product names. Elasticsearch is used when
// configured; the document store answers otherwise or when ES fails.
func (s *ProductService) SearchProducts(ctx context.Context, q string, limit int) ([]entity.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("query is required", map[string]string{"q": "is required"})
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if s.ES != nil && s.ESIndex != "" {
		ids, err := s.searchProductIDs(ctx, q, limit)
		if err == nil {
			return s.productsInOrder(ctx, ids)
		}
		s.Logger.WithError(err).WithField("q", q).Warn("es search failed, falling back to store")
	}
	products, err := s.Repo.SearchByName(ctx, q, limit)
	if err != nil {
		return nil, apperror.Internal("failed to search products", err)
	}
	return products, nil
}

func (s *ProductService) productsInOrder(ctx context.Context, ids []bson.ObjectID) ([]entity.Product, error) {
	found, err := s.Repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("failed to search products", err)
	}
	byID := make(map[bson.ObjectID]entity.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
