package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64     { return &i }
func i32Ptr(i int32) *int32     { return &i }
func boolPtr(b bool) *bool      { return &b }

func TestBuildListQueryNoFilter(t *testing.T) {
	query, args := buildListQuery(Filter{})

	assert.Equal(t, selectProductBase+" WHERE 1=1 ORDER BY created_at, id", query)
	assert.Empty(t, args)
}

func TestBuildListQueryNamePartialMatch(t *testing.T) {
	query, args := buildListQuery(Filter{Name: strPtr("cable")})

	assert.Contains(t, query, "name ILIKE $1")
	assert.Equal(t, []any{"%cable%"}, args)
}

func TestBuildListQueryCategoryExactMatch(t *testing.T) {
	query, args := buildListQuery(Filter{Category: strPtr("electronics")})

	assert.Contains(t, query, "category = $1")
	assert.Equal(t, []any{"electronics"}, args)
}

func TestBuildListQueryPriceBounds(t *testing.T) {
	query, args := buildListQuery(Filter{MinPrice: f64Ptr(10), MaxPrice: f64Ptr(50)})

	assert.Contains(t, query, "price >= $1")
	assert.Contains(t, query, "price <= $2")
	assert.Equal(t, []any{10.0, 50.0}, args)
}

func TestBuildListQueryAllFilters(t *testing.T) {
	filter := Filter{
		Name:     strPtr("lamp"),
		Category: strPtr("furniture"),
		MinPrice: f64Ptr(5),
		MaxPrice: f64Ptr(100),
		IsActive: boolPtr(true),
		Limit:    i64Ptr(20),
		Offset:   i64Ptr(40),
	}

	query, args := buildListQuery(filter)

	assert.Equal(t,
		selectProductBase+
			" WHERE 1=1 AND name ILIKE $1 AND category = $2 AND price >= $3"+
			" AND price <= $4 AND is_active = $5 ORDER BY created_at, id LIMIT $6 OFFSET $7",
		query)
	assert.Equal(t, []any{"%lamp%", "furniture", 5.0, 100.0, true, int64(20), int64(40)}, args)
}

func TestBuildListQueryPaginationOnly(t *testing.T) {
	query, args := buildListQuery(Filter{Limit: i64Ptr(10), Offset: i64Ptr(5)})

	assert.Contains(t, query, "ORDER BY created_at, id LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{int64(10), int64(5)}, args)
}
