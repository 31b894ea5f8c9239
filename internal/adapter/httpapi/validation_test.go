package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func messagesByField(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func validCreatePayload() createPropertyPayload {
	return createPropertyPayload{
		Title:       "Charming Bungalow",
		Address:     "42 Elm Street",
		Description: "Recently renovated",
		Price:       floatPtr(320000),
		Bedrooms:    intPtr(2),
		Bathrooms:   intPtr(1),
	}
}

func TestValidateCreatePayload(t *testing.T) {
	v := newValidator()

	t.Run("ValidMinimalPayload", func(t *testing.T) {
		payload := validCreatePayload()
		assert.Empty(t, validateStruct(v, &payload))
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		payload := createPropertyPayload{}
		msgs := messagesByField(validateStruct(v, &payload))

		assert.Equal(t, "Title is required", msgs["title"])
		assert.Equal(t, "Address is required", msgs["address"])
		assert.Equal(t, "Description is required", msgs["description"])
		assert.Equal(t, "Price is required", msgs["price"])
		assert.Equal(t, "Bedrooms is required", msgs["bedrooms"])
		assert.Equal(t, "Bathrooms is required", msgs["bathrooms"])
	})

	t.Run("ZeroPriceIsValid", func(t *testing.T) {
		payload := validCreatePayload()
		payload.Price = floatPtr(0)
		assert.Empty(t, validateStruct(v, &payload))
	})

	t.Run("NegativePrice", func(t *testing.T) {
		payload := validCreatePayload()
		payload.Price = floatPtr(-1)
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Price cannot be negative", msgs["price"])
	})

	t.Run("BedroomsOverTheCap", func(t *testing.T) {
		payload := validCreatePayload()
		payload.Bedrooms = intPtr(51)
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Bedrooms cannot exceed 50", msgs["bedrooms"])
	})

	t.Run("TitleTooLong", func(t *testing.T) {
		payload := validCreatePayload()
		long := make([]byte, 201)
		for i := range long {
			long[i] = 'x'
		}
		payload.Title = string(long)
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Title cannot exceed 200 characters", msgs["title"])
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		payload := validCreatePayload()
		payload.Status = "archived"
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Status must be one of: active, pending, sold", msgs["status"])
	})

	t.Run("UnknownPropertyType", func(t *testing.T) {
		payload := validCreatePayload()
		payload.PropertyType = "castle"
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Contains(t, msgs["propertyType"], "Property type must be one of:")
	})

	t.Run("MalformedID", func(t *testing.T) {
		payload := validCreatePayload()
		payload.ID = "not-a-uuid"
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Id must be a valid UUID", msgs["id"])
	})

	t.Run("CoordinatesMustBeAPair", func(t *testing.T) {
		payload := validCreatePayload()
		payload.Location = &locationPayload{Coordinates: []float64{10.5}}
		errs := validateStruct(v, &payload)
		msgs := messagesByField(errs)
		assert.Equal(t, "Coordinates must contain exactly 2 items", msgs["location.coordinates"])
	})

	t.Run("YearBuiltBelowFloor", func(t *testing.T) {
		payload := validCreatePayload()
		payload.YearBuilt = intPtr(1500)
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Year built cannot be less than 1800", msgs["yearBuilt"])
	})
}

func TestValidateUpdatePayload(t *testing.T) {
	v := newValidator()

	t.Run("EmptyPayloadIsValid", func(t *testing.T) {
		payload := updatePropertyPayload{}
		assert.Empty(t, validateStruct(v, &payload))
	})

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		empty := ""
		payload := updatePropertyPayload{Title: &empty}
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Title cannot be empty", msgs["title"])
	})

	t.Run("ConstraintsStillApply", func(t *testing.T) {
		payload := updatePropertyPayload{Bathrooms: intPtr(99)}
		msgs := messagesByField(validateStruct(v, &payload))
		assert.Equal(t, "Bathrooms cannot exceed 50", msgs["bathrooms"])
	})
}

func TestValidateYearBuilt(t *testing.T) {
	t.Run("NilPasses", func(t *testing.T) {
		assert.Nil(t, validateYearBuilt(nil))
	})

	t.Run("CurrentYearPasses", func(t *testing.T) {
		year := maxYearBuilt() - 5
		assert.Nil(t, validateYearBuilt(&year))
	})

	t.Run("AtTheBoundPasses", func(t *testing.T) {
		year := maxYearBuilt()
		assert.Nil(t, validateYearBuilt(&year))
	})

	t.Run("BeyondTheBoundFails", func(t *testing.T) {
		year := maxYearBuilt() + 1
		fe := validateYearBuilt(&year)
		assert.NotNil(t, fe)
		assert.Equal(t, "yearBuilt", fe.Field)
		assert.Equal(t, "Year built cannot be more than 5 years in the future", fe.Message)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Square footage", displayName("squareFootage"))
	assert.Equal(t, "Title", displayName("title"))
	assert.Equal(t, "Year built", displayName("yearBuilt"))
	assert.Equal(t, "Field", displayName(""))
}
