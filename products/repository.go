package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/storefront-go/apperror"
)

const selectProductBase = `SELECT id, name, description, price, stock, category, is_active, created_at, updated_at FROM products`

// Repository is the persistence boundary for products.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, name string, description *string, price float64, stock int32, category *string) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgxRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a product repository backed by the given pool.
func NewRepository(db *pgxpool.Pool) Repository {
	return &pgxRepository{db: db}
}

// row is satisfied by pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

func scanProduct(r row) (*Product, error) {
	var p Product
	var description, category sql.NullString
	err := r.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Stock, &category, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if category.Valid {
		p.Category = &category.String
	}
	return &p, nil
}

// buildListQuery translates a Filter into a parameterized SQL statement.
// Results come back in insertion order (created_at, then id as tiebreaker).
func buildListQuery(filter Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectProductBase)
	sb.WriteString(" WHERE 1=1")
	args := make([]any, 0, 7)

	if filter.Name != nil {
		args = append(args, "%"+*filter.Name+"%")
		fmt.Fprintf(&sb, " AND name ILIKE $%d", len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		fmt.Fprintf(&sb, " AND price >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		fmt.Fprintf(&sb, " AND price <= $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		fmt.Fprintf(&sb, " AND is_active = $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at, id")

	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset != nil {
		args = append(args, *filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list products", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan product row", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read product rows", err)
	}

	return products, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectProductBase+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get product", err)
	}
	return p, nil
}

func (r *pgxRepository) Create(ctx context.Context, name string, description *string, price float64, stock int32, category *string) (*Product, error) {
	query := `INSERT INTO products (name, description, price, stock, category)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, name, description, price, stock, category, is_active, created_at, updated_at`

	p, err := scanProduct(r.db.QueryRow(ctx, query, name, description, price, stock, category))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create product", err)
	}
	return p, nil
}

// Update applies only the supplied fields. The current row is read and locked
// inside a transaction so concurrent partial updates cannot clobber each
// other's fields.
func (r *pgxRepository) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	current, err := scanProduct(tx.QueryRow(ctx, selectProductBase+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get product for update", err)
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := current.Description
	if req.Description != nil {
		description = req.Description
	}
	price := current.Price
	if req.Price != nil {
		price = *req.Price
	}
	stock := current.Stock
	if req.Stock != nil {
		stock = *req.Stock
	}
	category := current.Category
	if req.Category != nil {
		category = req.Category
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, stock = $4, category = $5, is_active = $6, updated_at = NOW()
	          WHERE id = $7
	          RETURNING id, name, description, price, stock, category, is_active, created_at, updated_at`

	updated, err := scanProduct(tx.QueryRow(ctx, query, name, description, price, stock, category, isActive, id))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update product", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit product update", err)
	}
	return updated, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete product", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", id), nil)
	}
	return nil
}
