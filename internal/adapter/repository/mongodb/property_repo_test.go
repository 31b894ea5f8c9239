package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/estate-manager/property-service/internal/property/domain"
)

func TestBuildFilterQuery(t *testing.T) {
	t.Run("EmptyFilter", func(t *testing.T) {
		query := buildFilterQuery(domain.Filter{})
		assert.Empty(t, query)
	})

	t.Run("StatusAndType", func(t *testing.T) {
		query := buildFilterQuery(domain.Filter{
			Status:       domain.StatusActive,
			PropertyType: domain.TypeVilla,
		})

		assert.Equal(t, "active", query["status"])
		assert.Equal(t, "villa", query["property_type"])
	})

	t.Run("PriceRange", func(t *testing.T) {
		min := 100000.0
		max := 300000.0
		query := buildFilterQuery(domain.Filter{MinPrice: &min, MaxPrice: &max})

		price, ok := query["price"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, min, price["$gte"])
		assert.Equal(t, max, price["$lte"])
	})

	t.Run("MinPriceOnly", func(t *testing.T) {
		min := 50000.0
		query := buildFilterQuery(domain.Filter{MinPrice: &min})

		price := query["price"].(bson.M)
		assert.Equal(t, min, price["$gte"])
		assert.NotContains(t, price, "$lte")
	})

	t.Run("CityIsCaseInsensitiveContains", func(t *testing.T) {
		query := buildFilterQuery(domain.Filter{City: "Austin"})

		city, ok := query["location.city"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, "Austin", city["$regex"])
		assert.Equal(t, "i", city["$options"])
	})

	t.Run("SearchSpansTitleAddressDescription", func(t *testing.T) {
		query := buildFilterQuery(domain.Filter{Search: "garden"})

		or, ok := query["$or"].(bson.A)
		require.True(t, ok)
		require.Len(t, or, 3)
		assert.Contains(t, or[0].(bson.M), "title")
		assert.Contains(t, or[1].(bson.M), "address")
		assert.Contains(t, or[2].(bson.M), "description")
	})

	t.Run("RegexMetacharactersAreQuoted", func(t *testing.T) {
		query := buildFilterQuery(domain.Filter{Search: "2.5 (acres)"})

		or := query["$or"].(bson.A)
		title := or[0].(bson.M)["title"].(bson.M)
		assert.Equal(t, `2\.5 \(acres\)`, title["$regex"])
	})

	t.Run("ZeroBedroomsIsAFilter", func(t *testing.T) {
		zero := 0
		query := buildFilterQuery(domain.Filter{Bedrooms: &zero})
		assert.Equal(t, 0, query["bedrooms"])
	})
}

func TestSortSpec(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "price", Value: 1}}, sortSpec("price"))
	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, sortSpec("-price"))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec("-createdAt"))
	assert.Equal(t, bson.D{{Key: "title", Value: 1}}, sortSpec("title"))

	// Unknown keys fall back to newest first.
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec("injection"))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec(""))
}

func TestPropertyDocumentMapping(t *testing.T) {
	sqft := 1850.0
	year := 1995
	created := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	p := &domain.Property{
		ID:            "7b1e9c2a-1111-4222-8333-944445555666",
		Title:         "Hillside Villa",
		Address:       "77 Ridge Way",
		Description:   "Panoramic views",
		Price:         780000,
		Bedrooms:      4,
		Bathrooms:     3,
		Status:        domain.StatusPending,
		SquareFootage: &sqft,
		YearBuilt:     &year,
		PropertyType:  domain.TypeVilla,
		Features:      []string{"pool", "garage"},
		Images: []domain.Image{
			{PublicID: "properties/p-1.jpg", URL: "http://media/p-1.jpg"},
			{URL: "http://placeholder/p.jpg"},
		},
		Location: domain.Location{
			Coordinates: []float64{-97.74, 30.27},
			City:        "Austin",
			State:       "TX",
			ZipCode:     "78701",
			Country:     "US",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	doc := toPropertyDocument(p)
	assert.Equal(t, p.ID, doc.ID)
	assert.Equal(t, "pending", doc.Status)
	assert.Equal(t, "villa", doc.PropertyType)
	require.Len(t, doc.Images, 2)
	assert.Empty(t, doc.Images[1].PublicID)

	back := toPropertyEntity(doc)
	assert.Equal(t, p, back)
}
