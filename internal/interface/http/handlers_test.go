package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
	"github.com/oksasatya/inventory-sales-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func asUser(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

// productStore answers only the calls these tests make.
type productStore struct {
	repository.ProductRepository
	products []entity.Product
	err      error
}

func (s productStore) List(context.Context) ([]entity.Product, error) { return s.products, s.err }

func (s productStore) GetByID(_ context.Context, id bson.ObjectID) (*entity.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// userStore keeps a single user in memory.
type userStore struct {
	repository.UserRepository
	user *entity.User
}

func (s userStore) GetByID(_ context.Context, id bson.ObjectID) (*entity.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.user, nil
}

func (s userStore) MarkVerified(_ context.Context, id bson.ObjectID) error {
	if s.user == nil || s.user.ID != id {
		return repository.ErrNotFound
	}
	s.user.Verified = true
	return nil
}

func TestVerifyAcceptsNumericCode(t *testing.T) {
	u := &entity.User{ID: bson.NewObjectID(), Email: "ada@example.com", VerificationCode: "012345"}
	svc := application.NewAuthService(userStore{user: u}, helpers.NewJWTManager("x"), nil, nil, helpers.NopLogger(), "Inventory", time.Hour, application.Outbound{})
	h := NewAuthHandler(svc, helpers.NopLogger())
	r := gin.New()
	r.POST("/auth/verify", h.Verify)

	w, _ := do(t, r, http.MethodPost, "/auth/verify", `{"userId":"`+u.ID.Hex()+`","code":12346}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, u.Verified)

	w, env := do(t, r, http.MethodPost, "/auth/verify", `{"userId":"`+u.ID.Hex()+`","code":12345}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.True(t, u.Verified)

	w, _ = do(t, r, http.MethodPost, "/auth/verify", `{"userId":"`+u.ID.Hex()+`","code":"012345"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOTPCodeUnmarshal(t *testing.T) {
	for in, want := range map[string]otpCode{
		`"123456"`:   "123456",
		`" 654321 "`: "654321",
		`123456`:     "123456",
		`42`:         "000042",
		`null`:       "",
	} {
		var c otpCode
		require.NoError(t, json.Unmarshal([]byte(in), &c), in)
		assert.Equal(t, want, c, in)
	}
	for _, in := range []string{`12.5`, `-3`, `true`, `{}`} {
		var c otpCode
		assert.Error(t, json.Unmarshal([]byte(in), &c), in)
	}
}

func TestResetPasswordRejectsLongNumericCode(t *testing.T) {
	h := NewAuthHandler(nil, helpers.NopLogger())
	r := gin.New()
	r.POST("/auth/reset-password", h.ResetPassword)

	w, env := do(t, r, http.MethodPost, "/auth/reset-password", `{"email":"ada@example.com","code":1234567,"newpwd":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "code")
}

func TestRegisterRejectsMalformedJSON(t *testing.T) {
	h := NewAuthHandler(nil, helpers.NopLogger())
	r := gin.New()
	r.POST("/auth/register", h.Register)

	w, env := do(t, r, http.MethodPost, "/auth/register", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestVerifyRequiresSixDigitCode(t *testing.T) {
	h := NewAuthHandler(nil, helpers.NopLogger())
	r := gin.New()
	r.POST("/auth/verify", h.Verify)

	w, env := do(t, r, http.MethodPost, "/auth/verify", `{"userId":"65f000000000000000000001","code":"12ab"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "code")
}

func TestRegisterEndToEnd(t *testing.T) {
	svc := application.NewAuthService(nil, helpers.NewJWTManager("x"), nil, nil, helpers.NopLogger(), "Inventory", time.Hour, application.Outbound{})
	h := NewAuthHandler(svc, helpers.NopLogger())
	r := gin.New()
	r.POST("/auth/register", h.Register)

	w, env := do(t, r, http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com","pwd":"secret1","rpwd":"other12"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "passwords do not match", env.Message)
	assert.Contains(t, env.Error.Details, "rpwd")
}

func TestCategoriesForAnotherUserAreForbidden(t *testing.T) {
	h := NewCategoryHandler(nil, helpers.NopLogger())
	r := gin.New()
	r.GET("/categories/:userId", asUser("65f000000000000000000001"), h.List)

	w, env := do(t, r, http.MethodGet, "/categories/65f000000000000000000002", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", env.Error.Code)
}

func TestCreateProductRejectsBadDate(t *testing.T) {
	h := NewProductHandler(nil, helpers.NopLogger())
	r := gin.New()
	r.POST("/products", asUser("65f000000000000000000001"), h.Create)

	w, env := do(t, r, http.MethodPost, "/products", `{"name":"Shoe","buyingDate":"yesterday"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "buyingDate")
}

func TestSellUnknownProductIsNotFound(t *testing.T) {
	svc := application.NewProductService(productStore{}, nil, helpers.NopLogger(), nil, "", 30, application.Outbound{})
	h := NewProductHandler(svc, helpers.NopLogger())
	r := gin.New()
	r.POST("/products/:id/sell", asUser("65f000000000000000000001"), h.Sell)

	w, env := do(t, r, http.MethodPost, "/products/65f0000000000000000000aa/sell", `{"sellingPrice":45,"qte":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error.Code)

	w, _ = do(t, r, http.MethodPost, "/products/65f0000000000000000000aa/sell", `{"qte":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

type namedUsers struct {
	repository.UserRepository
	names map[bson.ObjectID]string
}

func (u namedUsers) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]entity.User, error) {
	out := []entity.User{}
	for _, id := range ids {
		if n, ok := u.names[id]; ok {
			out = append(out, entity.User{ID: id, FullName: n})
		}
	}
	return out, nil
}

func TestListProductsIncludesUserNames(t *testing.T) {
	buyer, seller := bson.NewObjectID(), bson.NewObjectID()
	store := productStore{products: []entity.Product{{
		ID: bson.NewObjectID(), Name: "Shoe A", NumberInStock: 7, Buyer: buyer, BuyingDate: time.Now(),
		Sales: []entity.Sale{{Seller: seller, SellingPrice: 45, QuantitySold: 3, SellingDate: time.Now()}},
	}}}
	svc := application.NewProductService(store, nil, helpers.NopLogger(), nil, "", 30, application.Outbound{})
	svc.Users = namedUsers{names: map[bson.ObjectID]string{buyer: "Ada", seller: "Sam"}}
	h := NewProductHandler(svc, helpers.NopLogger())
	r := gin.New()
	r.GET("/products", h.List)

	w, env := do(t, r, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []listedProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, buyer.Hex(), list[0].Buyer)
	assert.Equal(t, "Ada", list[0].BuyerName)
	require.Len(t, list[0].Sales, 1)
	assert.Equal(t, "Sam", list[0].Sales[0].SellerName)
	assert.Equal(t, entity.LabelNewStock, list[0].Label)
}

func TestGetProduct(t *testing.T) {
	id := bson.NewObjectID()
	store := productStore{products: []entity.Product{{ID: id, Name: "Shoe A", NumberInStock: 7, Sales: []entity.Sale{}}}}
	svc := application.NewProductService(store, nil, helpers.NopLogger(), nil, "", 30, application.Outbound{})
	h := NewProductHandler(svc, helpers.NopLogger())
	r := gin.New()
	r.GET("/products/:id", h.Get)

	w, env := do(t, r, http.MethodGet, "/products/"+id.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var p productResponse
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, id.Hex(), p.ID)
	assert.Equal(t, 7, p.NumberInStock)

	w, _ = do(t, r, http.MethodGet, "/products/not-an-id", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	r := gin.New()
	empty := NewDashboardHandler(application.NewDashboardService(productStore{}, nil), helpers.NopLogger())
	r.GET("/empty", empty.Stats)

	w, env := do(t, r, http.MethodGet, "/empty", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error.Code)

	store := productStore{products: []entity.Product{{
		ID: bson.NewObjectID(), Name: "Shoe A", BuyingPrice: 20, NumberInStock: 7,
		Sales: []entity.Sale{{SellingPrice: 45, QuantitySold: 3, SellingDate: time.Now()}},
	}}}
	full := NewDashboardHandler(application.NewDashboardService(store, nil), helpers.NopLogger())
	r.GET("/full", full.Stats)

	w, env = do(t, r, http.MethodGet, "/full", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d application.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.InDelta(t, 135.0, d.TotalRevenue, 1e-9)
	assert.InDelta(t, 75.0, d.TotalProfit, 1e-9)
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	store := productStore{err: errors.New("connection refused by 10.0.0.5")}
	h := NewDashboardHandler(application.NewDashboardService(store, nil), helpers.NopLogger())
	r := gin.New()
	r.GET("/dashboard", h.Stats)

	w, env := do(t, r, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("buyingDate", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("buyingDate", "2024-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	_, err = parseDate("buyingDate", "03/01/2024")
	require.Error(t, err)
}
