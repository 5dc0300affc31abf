package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	repo "github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
)

type CategoryService struct {
	Repo     repo.CategoryRepository
	Outcomes repo.OutcomeRepository
	Logger   *logrus.Logger
}

func NewCategoryService(repo repo.CategoryRepository, outcomes repo.OutcomeRepository, logger *logrus.Logger) *CategoryService {
	return &CategoryService{Repo: repo, Outcomes: outcomes, Logger: loggerOrNop(logger)}
}

// CategoryDetail is a category with its outcomes loaded, in reference order.
type CategoryDetail struct {
	entity.Category
	Items []entity.Outcome
}

const msgCategoryNotFound = "category not found"

func (s *CategoryService) CreateCategory(ctx context.Context, name, ownerID string) (*entity.Category, error) {
	owner, err := parseID(ownerID, "user")
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required", map[string]string{"cat": "is required"})
	}
	c := &entity.Category{Name: name, Owner: owner}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, apperror.Internal("failed to create category", err)
	}
	return c, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, ownerID string) ([]entity.Category, error) {
	owner, err := parseID(ownerID, "user")
	if err != nil {
		return nil, err
	}
	out, err := s.Repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal("failed to list categories", err)
	}
	return out, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*CategoryDetail, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to load category", err)
	}
	found, err := s.Outcomes.FindByIDs(ctx, c.Outcomes)
	if err != nil {
		return nil, apperror.Internal("failed to load outcomes", err)
	}
	byID := make(map[bson.ObjectID]entity.Outcome, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}
	items := make([]entity.Outcome, 0, len(c.Outcomes))
	for _, oid := range c.Outcomes {
		if o, ok := byID[oid]; ok {
			items = append(items, o)
		}
	}
	return &CategoryDetail{Category: *c, Items: items}, nil
}

func (s *CategoryService) ids(categoryID, ownerID string) (bson.ObjectID, bson.ObjectID, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return id, id, err
	}
	// an unparseable owner cannot own anything
	owner, err := bson.ObjectIDFromHex(strings.TrimSpace(ownerID))
	if err != nil {
		return id, owner, apperror.NotFound(msgCategoryNotFound)
	}
	return id, owner, nil
}

// UpdateCategory renames a category of ownerID and recomputes its sum.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID, ownerID, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required", map[string]string{"cat": "is required"})
	}
	id, owner, err := s.ids(categoryID, ownerID)
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.Rename(ctx, id, owner, name)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to update category", err)
	}
	return s.recompute(ctx, c)
}

// DeleteCategory removes the category and then its outcomes. A failure on
// the outcomes is logged; the category stays deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID, ownerID string) error {
	id, owner, err := s.ids(categoryID, ownerID)
	if err != nil {
		return err
	}
	c, err := s.Repo.Delete(ctx, id, owner)
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return apperror.Internal("failed to delete category", err)
	}
	if err := s.Outcomes.DeleteByIDs(ctx, c.Outcomes); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"category_id": c.ID.Hex(),
			"outcomes":    len(c.Outcomes),
		}).Warn("delete category outcomes failed")
	}
	return nil
}

// RecomputeSum sets the category sum to the total value of its outcomes.
func (s *CategoryService) RecomputeSum(ctx context.Context, categoryID string) (*entity.Category, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to load category", err)
	}
	return s.recompute(ctx, c)
}

func (s *CategoryService) recompute(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	sum, err := s.Outcomes.SumValues(ctx, c.Outcomes)
	if err != nil {
		return nil, apperror.Internal("failed to compute category sum", err)
	}
	updated, err := s.Repo.SetSum(ctx, c.ID, sum)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to save category sum", err)
	}
	return updated, nil
}

// AddOutcome records an expense under a category of ownerID.
func (s *CategoryService) AddOutcome(ctx context.Context, categoryID, ownerID, name string, value *float64) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	details := map[string]string{}
	if name == "" {
		details["name"] = "is required"
	}
	if value == nil {
		details["value"] = "is required"
	} else if *value < 0 {
		details["value"] = "must be greater than or equal to 0"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("invalid outcome", details)
	}
	id, owner, err := s.ids(categoryID, ownerID)
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && c.Owner != owner) {
		return nil, apperror.NotFound(msgCategoryNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to load category", err)
	}

	o := &entity.Outcome{Name: name, Value: *value, Owner: owner}
	if err := s.Outcomes.Create(ctx, o); err != nil {
		return nil, apperror.Internal("failed to create outcome", err)
	}
	if err := s.Repo.AttachOutcome(ctx, id, owner, o.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(msgCategoryNotFound)
		}
		return nil, apperror.Internal("failed to attach outcome", err)
	}
	c.Outcomes = append(c.Outcomes, o.ID)
	return s.recompute(ctx, c)
}
