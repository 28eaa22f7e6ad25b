package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/validation"
)

// Service holds the business rules for the product catalog. Handlers depend
// on this interface so they can be exercised without a database.
type Service interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, idParam string) (*Product, error)
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)
	Update(ctx context.Context, idParam string, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, idParam string) error
}

type serviceImpl struct {
	repo Repository
}

// NewService creates the product service on top of the given repository.
func NewService(repo Repository) Service {
	return &serviceImpl{repo: repo}
}

// parseID maps a malformed id to NotFound: a path segment that is not a UUID
// cannot name any product.
func parseID(idParam string) (uuid.UUID, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", idParam), err)
	}
	return id, nil
}

func (s *serviceImpl) List(ctx context.Context, filter Filter) ([]Product, error) {
	if filter.Limit != nil && *filter.Limit < 0 {
		return nil, apperror.NewValidationError("limit cannot be negative", nil)
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		return nil, apperror.NewValidationError("offset cannot be negative", nil)
	}
	return s.repo.List(ctx, filter)
}

func (s *serviceImpl) Get(ctx context.Context, idParam string) (*Product, error) {
	id, err := parseID(idParam)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *serviceImpl) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := validation.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}

	var stock int32
	if req.Stock != nil {
		stock = *req.Stock
	}

	return s.repo.Create(ctx, req.Name, req.Description, *req.Price, stock, req.Category)
}

func (s *serviceImpl) Update(ctx context.Context, idParam string, req UpdateProductRequest) (*Product, error) {
	id, err := parseID(idParam)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *serviceImpl) Delete(ctx context.Context, idParam string) error {
	id, err := parseID(idParam)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
