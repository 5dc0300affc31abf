package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

type CategoryHandler struct {
	Svc    *application.CategoryService
	Logger *logrus.Logger
}

func NewCategoryHandler(svc *application.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Svc: svc, Logger: logger}
}

type categoryRequest struct {
	Name string `json:"cat"`
}

type outcomeRequest struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

type outcomeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

type categoryResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Owner    string            `json:"owner"`
	Sum      float64           `json:"sum"`
	Outcomes []string          `json:"outcomes"`
	Items    []outcomeResponse `json:"items,omitempty"`
}

func toCategoryResponse(cat *entity.Category) categoryResponse {
	ids := make([]string, 0, len(cat.Outcomes))
	for _, id := range cat.Outcomes {
		ids = append(ids, id.Hex())
	}
	return categoryResponse{
		ID:       cat.ID.Hex(),
		Name:     cat.Name,
		Owner:    cat.Owner.Hex(),
		Sum:      cat.Sum,
		Outcomes: ids,
	}
}

// caller rejects a :userId path segment that is not the authenticated user.
func caller(c *gin.Context) (string, bool) {
	uid := userID(c)
	if c.Param("userId") != uid {
		response.Fail(c, apperror.Forbidden("cannot access another user's categories", nil))
		return "", false
	}
	return uid, true
}

// List GET /categories/:userId
func (h *CategoryHandler) List(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	cats, err := h.Svc.ListCategories(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i]))
	}
	response.Success(c, http.StatusOK, out, "categories", map[string]any{"count": len(out)})
}

// Create POST /categories/:userId
func (h *CategoryHandler) Create(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), req.Name, uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toCategoryResponse(cat), "category created", nil)
}

// Get GET /categories/category/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	d, err := h.Svc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	resp := toCategoryResponse(&d.Category)
	resp.Items = make([]outcomeResponse, 0, len(d.Items))
	for _, o := range d.Items {
		resp.Items = append(resp.Items, outcomeResponse{ID: o.ID.Hex(), Name: o.Name, Value: o.Value, CreatedAt: o.CreatedAt})
	}
	response.Success(c, http.StatusOK, resp, "category", nil)
}

// Update PUT /categories/category/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), c.Param("id"), userID(c), req.Name)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCategoryResponse(cat), "category updated", nil)
}

// Delete DELETE /categories/category/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteCategory(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "category deleted", nil)
}

// AddOutcome POST /categories/category/:id/outcomes
func (h *CategoryHandler) AddOutcome(c *gin.Context) {
	var req outcomeRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Svc.AddOutcome(c.Request.Context(), c.Param("id"), userID(c), req.Name, req.Value)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toCategoryResponse(cat), "outcome added", nil)
}
