package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/estate-manager/property-service/internal/property/usecase"
)

var allowedSorts = map[string]bool{
	"price": true, "-price": true,
	"createdAt": true, "-createdAt": true,
	"title": true, "-title": true,
}

// parseListQuery validates the listing query string and builds the store
// filter. All constraint violations are collected, none aborts early.
func parseListQuery(q url.Values) (domain.Filter, []FieldError) {
	var errs []FieldError
	f := domain.Filter{Page: 1, Limit: 10, Sort: "-createdAt"}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "page", Message: "Page must be a number"})
		case page < 1:
			errs = append(errs, FieldError{Field: "page", Message: "Page must be at least 1"})
		default:
			f.Page = page
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "limit", Message: "Limit must be a number"})
		case limit < 1 || limit > 100:
			errs = append(errs, FieldError{Field: "limit", Message: "Limit must be between 1 and 100"})
		default:
			f.Limit = limit
		}
	}

	if raw := q.Get("sort"); raw != "" {
		if !allowedSorts[raw] {
			errs = append(errs, FieldError{Field: "sort", Message: "Sort must be one of: price, -price, createdAt, -createdAt, title, -title"})
		} else {
			f.Sort = raw
		}
	}

	if raw := q.Get("status"); raw != "" {
		status := domain.PropertyStatus(raw)
		if !status.Valid() {
			errs = append(errs, FieldError{Field: "status", Message: "Status must be either active, pending, or sold"})
		} else {
			f.Status = status
		}
	}

	if raw := q.Get("propertyType"); raw != "" {
		propertyType := domain.PropertyType(raw)
		if !propertyType.Valid() {
			errs = append(errs, FieldError{Field: "propertyType", Message: "Property type must be one of: house, apartment, condo, townhouse, villa, land, commercial"})
		} else {
			f.PropertyType = propertyType
		}
	}

	for _, spec := range []struct {
		key  string
		dst  **float64
		name string
	}{
		{"minPrice", &f.MinPrice, "Min price"},
		{"maxPrice", &f.MaxPrice, "Max price"},
	} {
		if raw := q.Get(spec.key); raw != "" {
			val, err := strconv.ParseFloat(raw, 64)
			switch {
			case err != nil:
				errs = append(errs, FieldError{Field: spec.key, Message: spec.name + " must be a number"})
			case val < 0:
				errs = append(errs, FieldError{Field: spec.key, Message: spec.name + " cannot be negative"})
			default:
				*spec.dst = &val
			}
		}
	}

	for _, spec := range []struct {
		key  string
		dst  **int
		name string
	}{
		{"bedrooms", &f.Bedrooms, "Bedrooms"},
		{"bathrooms", &f.Bathrooms, "Bathrooms"},
	} {
		if raw := q.Get(spec.key); raw != "" {
			val, err := strconv.Atoi(raw)
			switch {
			case err != nil:
				errs = append(errs, FieldError{Field: spec.key, Message: spec.name + " must be a whole number"})
			case val < 0:
				errs = append(errs, FieldError{Field: spec.key, Message: spec.name + " cannot be negative"})
			default:
				*spec.dst = &val
			}
		}
	}

	f.City = strings.TrimSpace(q.Get("city"))
	f.State = strings.TrimSpace(q.Get("state"))
	f.Search = strings.TrimSpace(q.Get("search"))

	return f, errs
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readUploads pulls the image files out of a parsed multipart form. Both
// the single "image" key and the repeated "images" key are accepted.
func readUploads(form *multipart.Form) ([]usecase.UploadFile, error) {
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["image"]...)
	headers = append(headers, form.File["images"]...)

	var files []usecase.UploadFile
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded file %s: %w", hdr.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read uploaded file %s: %w", hdr.Filename, err)
		}
		files = append(files, usecase.UploadFile{FileName: hdr.Filename, Data: data})
	}
	return files, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func parseFormFloat(form *multipart.Form, key, name string, errs *[]FieldError) *float64 {
	raw, ok := formValue(form, key)
	if !ok || raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, FieldError{Field: key, Message: name + " must be a number"})
		return nil
	}
	return &val
}

func parseFormInt(form *multipart.Form, key, name string, errs *[]FieldError) *int {
	raw, ok := formValue(form, key)
	if !ok || raw == "" {
		return nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, FieldError{Field: key, Message: name + " must be a whole number"})
		return nil
	}
	return &val
}

func locationFromForm(form *multipart.Form) *locationPayload {
	loc := &locationPayload{}
	found := false
	if v, ok := formValue(form, "city"); ok {
		loc.City, found = v, true
	}
	if v, ok := formValue(form, "state"); ok {
		loc.State, found = v, true
	}
	if v, ok := formValue(form, "zipCode"); ok {
		loc.ZipCode, found = v, true
	}
	if v, ok := formValue(form, "country"); ok {
		loc.Country, found = v, true
	}
	if !found {
		return nil
	}
	return loc
}

// parseCreateRequest decodes either a JSON body or a multipart form with
// optional image file(s) into the create payload.
func parseCreateRequest(r *http.Request, maxUploadBytes int64) (*createPropertyPayload, []usecase.UploadFile, []FieldError, error) {
	if !isMultipart(r) {
		var payload createPropertyPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, nil, nil, err
		}
		return &payload, nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, nil, err
	}
	form := r.MultipartForm

	var errs []FieldError
	payload := &createPropertyPayload{}
	if v, ok := formValue(form, "id"); ok {
		payload.ID = v
	}
	if v, ok := formValue(form, "title"); ok {
		payload.Title = strings.TrimSpace(v)
	}
	if v, ok := formValue(form, "address"); ok {
		payload.Address = strings.TrimSpace(v)
	}
	if v, ok := formValue(form, "description"); ok {
		payload.Description = strings.TrimSpace(v)
	}
	if v, ok := formValue(form, "status"); ok {
		payload.Status = v
	}
	if v, ok := formValue(form, "propertyType"); ok {
		payload.PropertyType = v
	}
	payload.Price = parseFormFloat(form, "price", "Price", &errs)
	payload.Bedrooms = parseFormInt(form, "bedrooms", "Bedrooms", &errs)
	payload.Bathrooms = parseFormInt(form, "bathrooms", "Bathrooms", &errs)
	payload.SquareFootage = parseFormFloat(form, "squareFootage", "Square footage", &errs)
	payload.YearBuilt = parseFormInt(form, "yearBuilt", "Year built", &errs)
	payload.Features = form.Value["features"]
	payload.Location = locationFromForm(form)

	files, err := readUploads(form)
	if err != nil {
		return nil, nil, nil, err
	}
	return payload, files, errs, nil
}

// parseUpdateRequest is the partial-update variant: only keys that were
// present end up as non-nil fields.
func parseUpdateRequest(r *http.Request, maxUploadBytes int64) (*updatePropertyPayload, []usecase.UploadFile, []FieldError, error) {
	if !isMultipart(r) {
		var payload updatePropertyPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, nil, nil, err
		}
		return &payload, nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, nil, err
	}
	form := r.MultipartForm

	var errs []FieldError
	payload := &updatePropertyPayload{}
	if v, ok := formValue(form, "title"); ok {
		trimmed := strings.TrimSpace(v)
		payload.Title = &trimmed
	}
	if v, ok := formValue(form, "address"); ok {
		trimmed := strings.TrimSpace(v)
		payload.Address = &trimmed
	}
	if v, ok := formValue(form, "description"); ok {
		trimmed := strings.TrimSpace(v)
		payload.Description = &trimmed
	}
	if v, ok := formValue(form, "status"); ok {
		payload.Status = &v
	}
	if v, ok := formValue(form, "propertyType"); ok {
		payload.PropertyType = &v
	}
	payload.Price = parseFormFloat(form, "price", "Price", &errs)
	payload.Bedrooms = parseFormInt(form, "bedrooms", "Bedrooms", &errs)
	payload.Bathrooms = parseFormInt(form, "bathrooms", "Bathrooms", &errs)
	payload.SquareFootage = parseFormFloat(form, "squareFootage", "Square footage", &errs)
	payload.YearBuilt = parseFormInt(form, "yearBuilt", "Year built", &errs)
	if vals, ok := form.Value["features"]; ok {
		payload.Features = vals
	}
	payload.Location = locationFromForm(form)

	files, err := readUploads(form)
	if err != nil {
		return nil, nil, nil, err
	}
	return payload, files, errs, nil
}

func toDomainLocation(loc *locationPayload) domain.Location {
	if loc == nil {
		return domain.Location{}
	}
	return domain.Location{
		Coordinates: loc.Coordinates,
		City:        strings.TrimSpace(loc.City),
		State:       strings.TrimSpace(loc.State),
		ZipCode:     strings.TrimSpace(loc.ZipCode),
		Country:     strings.TrimSpace(loc.Country),
	}
}
