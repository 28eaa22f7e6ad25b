// Package products implements the product catalog: model, persistence,
// business rules and HTTP handlers.
package products

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry as stored in the products table.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int32     `json:"stock"`
	Category    *string   `json:"category,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the payload for creating a product. Stock defaults
// to zero and is_active to true; the server assigns id and timestamps.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required" example:"Cable"`
	Description *string  `json:"description,omitempty" example:"2m USB-C cable"`
	Price       *float64 `json:"price" validate:"required,gte=0" example:"10.00"`
	Stock       *int32   `json:"stock,omitempty" validate:"omitempty,gte=0" example:"5"`
	Category    *string  `json:"category,omitempty" example:"Acc"`
}

// UpdateProductRequest is the payload for partial updates. Every field is a
// pointer so "absent" and "set to zero value" stay distinguishable; only
// supplied fields are applied.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int32   `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// Filter holds the optional criteria for listing products. Absent fields are
// no-ops; min/max price bounds are inclusive.
type Filter struct {
	Name     *string
	Category *string
	MinPrice *float64
	MaxPrice *float64
	IsActive *bool
	Limit    *int64
	Offset   *int64
}

// DeleteResponse confirms a successful delete.
type DeleteResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Product with ID ... successfully deleted"`
}
