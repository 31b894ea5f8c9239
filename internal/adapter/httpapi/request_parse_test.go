package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate-manager/property-service/internal/property/domain"
)

func TestParseListQuery(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		f, errs := parseListQuery(url.Values{})

		assert.Empty(t, errs)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
		assert.Equal(t, "-createdAt", f.Sort)
		assert.Empty(t, f.Status)
		assert.Nil(t, f.MinPrice)
	})

	t.Run("FullQuery", func(t *testing.T) {
		q := url.Values{}
		q.Set("page", "3")
		q.Set("limit", "25")
		q.Set("sort", "price")
		q.Set("status", "active")
		q.Set("propertyType", "condo")
		q.Set("minPrice", "100000")
		q.Set("maxPrice", "500000")
		q.Set("bedrooms", "2")
		q.Set("bathrooms", "1")
		q.Set("city", " Austin ")
		q.Set("state", "TX")
		q.Set("search", "garden")

		f, errs := parseListQuery(q)

		require.Empty(t, errs)
		assert.Equal(t, 3, f.Page)
		assert.Equal(t, 25, f.Limit)
		assert.Equal(t, "price", f.Sort)
		assert.Equal(t, domain.StatusActive, f.Status)
		assert.Equal(t, domain.TypeCondo, f.PropertyType)
		assert.Equal(t, float64(100000), *f.MinPrice)
		assert.Equal(t, float64(500000), *f.MaxPrice)
		assert.Equal(t, 2, *f.Bedrooms)
		assert.Equal(t, 1, *f.Bathrooms)
		assert.Equal(t, "Austin", f.City)
		assert.Equal(t, "TX", f.State)
		assert.Equal(t, "garden", f.Search)
	})

	t.Run("CollectsAllViolations", func(t *testing.T) {
		q := url.Values{}
		q.Set("page", "zero")
		q.Set("limit", "500")
		q.Set("sort", "random")
		q.Set("status", "archived")
		q.Set("minPrice", "-5")

		_, errs := parseListQuery(q)

		msgs := messagesByField(errs)
		assert.Len(t, errs, 5)
		assert.Equal(t, "Page must be a number", msgs["page"])
		assert.Equal(t, "Limit must be between 1 and 100", msgs["limit"])
		assert.Contains(t, msgs["sort"], "Sort must be one of:")
		assert.Contains(t, msgs["status"], "Status must be")
		assert.Equal(t, "Min price cannot be negative", msgs["minPrice"])
	})

	t.Run("PageBelowOne", func(t *testing.T) {
		q := url.Values{}
		q.Set("page", "0")

		_, errs := parseListQuery(q)

		require.Len(t, errs, 1)
		assert.Equal(t, "Page must be at least 1", errs[0].Message)
	})

	t.Run("NonNumericBedrooms", func(t *testing.T) {
		q := url.Values{}
		q.Set("bedrooms", "two")

		_, errs := parseListQuery(q)

		require.Len(t, errs, 1)
		assert.Equal(t, "Bedrooms must be a whole number", errs[0].Message)
	})
}
