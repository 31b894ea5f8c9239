package domain

import "time"

type PropertyStatus string

const (
	StatusActive  PropertyStatus = "active"
	StatusPending PropertyStatus = "pending"
	StatusSold    PropertyStatus = "sold"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

type PropertyType string

const (
	TypeHouse      PropertyType = "house"
	TypeApartment  PropertyType = "apartment"
	TypeCondo      PropertyType = "condo"
	TypeTownhouse  PropertyType = "townhouse"
	TypeVilla      PropertyType = "villa"
	TypeLand       PropertyType = "land"
	TypeCommercial PropertyType = "commercial"
)

func (t PropertyType) Valid() bool {
	switch t {
	case TypeHouse, TypeApartment, TypeCondo, TypeTownhouse, TypeVilla, TypeLand, TypeCommercial:
		return true
	}
	return false
}

// Image is a reference to a remotely hosted listing photo. PublicID is the
// opaque media identifier used for deletion and URL derivation; it is empty
// for placeholder images that were never uploaded to the media store.
type Image struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

type Location struct {
	// Coordinates are [longitude, latitude].
	Coordinates []float64 `json:"coordinates,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	ZipCode     string    `json:"zipCode,omitempty"`
	Country     string    `json:"country,omitempty"`
}

// Property is a property-for-sale listing. A record whose status has
// transitioned to sold never persists in the queryable collection: the
// transition and the deletion are the same logical event.
type Property struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Address       string         `json:"address"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	Bedrooms      int            `json:"bedrooms"`
	Bathrooms     int            `json:"bathrooms"`
	Status        PropertyStatus `json:"status"`
	SquareFootage *float64       `json:"squareFootage,omitempty"`
	YearBuilt     *int           `json:"yearBuilt,omitempty"`
	PropertyType  PropertyType   `json:"propertyType"`
	Features      []string       `json:"features"`
	Images        []Image        `json:"images"`
	Location      Location       `json:"location"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Filter describes the query surface of the listing collection.
type Filter struct {
	Status       PropertyStatus
	PropertyType PropertyType
	Bedrooms     *int
	Bathrooms    *int
	MinPrice     *float64
	MaxPrice     *float64
	City         string
	State        string
	Search       string
	Page         int
	Limit        int
	Sort         string
}

// PageInfo is the pagination block returned next to every listing page.
type PageInfo struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPageInfo derives the pagination block from a page request and the
// total match count.
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageInfo{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// OverviewStats aggregates the live collection.
type OverviewStats struct {
	TotalProperties   int64   `json:"totalProperties"`
	AveragePrice      float64 `json:"averagePrice"`
	MinPrice          float64 `json:"minPrice"`
	MaxPrice          float64 `json:"maxPrice"`
	ActiveProperties  int64   `json:"activeProperties"`
	PendingProperties int64   `json:"pendingProperties"`
	SoldProperties    int64   `json:"soldProperties"`
}

type TypeStats struct {
	PropertyType string  `json:"propertyType"`
	Count        int64   `json:"count"`
	AveragePrice float64 `json:"averagePrice"`
}

type Stats struct {
	Overview      OverviewStats `json:"overview"`
	PropertyTypes []TypeStats   `json:"propertyTypes"`
}
