package httpapi

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// locationPayload mirrors the optional nested location object of write
// requests.
type locationPayload struct {
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zipCode"`
	Country     string    `json:"country"`
}

// createPropertyPayload is the full write payload. Numeric fields that
// admit zero as a valid value are pointers so "missing" and "zero" stay
// distinguishable.
type createPropertyPayload struct {
	ID            string           `json:"id" validate:"omitempty,uuid4"`
	Title         string           `json:"title" validate:"required,max=200"`
	Address       string           `json:"address" validate:"required,max=500"`
	Description   string           `json:"description" validate:"required,max=2000"`
	Price         *float64         `json:"price" validate:"required,gte=0"`
	Bedrooms      *int             `json:"bedrooms" validate:"required,gte=0,lte=50"`
	Bathrooms     *int             `json:"bathrooms" validate:"required,gte=0,lte=50"`
	Status        string           `json:"status" validate:"omitempty,oneof=active pending sold"`
	SquareFootage *float64         `json:"squareFootage" validate:"omitempty,gte=0"`
	YearBuilt     *int             `json:"yearBuilt" validate:"omitempty,gte=1800"`
	PropertyType  string           `json:"propertyType" validate:"omitempty,oneof=house apartment condo townhouse villa land commercial"`
	Features      []string         `json:"features"`
	Location      *locationPayload `json:"location"`
}

// updatePropertyPayload is the partial variant: every field optional, the
// same constraints when present.
type updatePropertyPayload struct {
	Title         *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Address       *string          `json:"address" validate:"omitempty,min=1,max=500"`
	Description   *string          `json:"description" validate:"omitempty,min=1,max=2000"`
	Price         *float64         `json:"price" validate:"omitempty,gte=0"`
	Bedrooms      *int             `json:"bedrooms" validate:"omitempty,gte=0,lte=50"`
	Bathrooms     *int             `json:"bathrooms" validate:"omitempty,gte=0,lte=50"`
	Status        *string          `json:"status" validate:"omitempty,oneof=active pending sold"`
	SquareFootage *float64         `json:"squareFootage" validate:"omitempty,gte=0"`
	YearBuilt     *int             `json:"yearBuilt" validate:"omitempty,gte=1800"`
	PropertyType  *string          `json:"propertyType" validate:"omitempty,oneof=house apartment condo townhouse villa land commercial"`
	Features      []string         `json:"features"`
	Location      *locationPayload `json:"location"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name, not the Go struct name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// maxYearBuilt is the dynamic upper bound Joi-style schemas express as
// "current year plus five".
func maxYearBuilt() int {
	return time.Now().Year() + 5
}

func validateStruct(v *validator.Validate, payload interface{}) []FieldError {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath turns the validator namespace into the dotted wire path,
// e.g. "location.coordinates".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		return strings.Join(parts[1:], ".")
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", displayName(field))
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", displayName(field), fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", displayName(field), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be empty", displayName(field))
		}
		return fmt.Sprintf("%s cannot be less than %s", displayName(field), fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s cannot be negative", displayName(field))
		}
		return fmt.Sprintf("%s cannot be less than %s", displayName(field), fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot exceed %s", displayName(field), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", displayName(field), strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", displayName(field))
	case "len":
		return fmt.Sprintf("%s must contain exactly %s items", displayName(field), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", displayName(field))
}

// displayName renders a json field name in sentence form ("squareFootage"
// becomes "Square footage").
func displayName(field string) string {
	if field == "" {
		return "Field"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validateYearBuilt enforces the dynamic upper bound the struct tags
// cannot express.
func validateYearBuilt(year *int) *FieldError {
	if year == nil {
		return nil
	}
	if *year > maxYearBuilt() {
		return &FieldError{
			Field:   "yearBuilt",
			Message: "Year built cannot be more than 5 years in the future",
		}
	}
	return nil
}
