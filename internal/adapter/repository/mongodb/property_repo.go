package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/estate-manager/property-service/internal/property/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const propertiesCollectionName = "properties"

// PropertyRepository persists listings in a Mongo collection keyed by the
// listing's external id.
type PropertyRepository struct {
	collection *mongo.Collection
}

func NewPropertyRepository(client *mongo.Client, dbName string) *PropertyRepository {
	return &PropertyRepository{
		collection: client.Database(dbName).Collection(propertiesCollectionName),
	}
}

// EnsureIndexes creates the query indexes the listing filters rely on.
func (r *PropertyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "bedrooms", Value: 1}}},
		{Keys: bson.D{{Key: "bathrooms", Value: 1}}},
		{Keys: bson.D{{Key: "property_type", Value: 1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create property indexes: %w", err)
	}
	return nil
}

type imageDocument struct {
	PublicID string `bson:"public_id,omitempty"`
	URL      string `bson:"url"`
}

type locationDocument struct {
	Coordinates []float64 `bson:"coordinates,omitempty"`
	City        string    `bson:"city,omitempty"`
	State       string    `bson:"state,omitempty"`
	ZipCode     string    `bson:"zip_code,omitempty"`
	Country     string    `bson:"country,omitempty"`
}

type propertyDocument struct {
	ID            string           `bson:"_id"`
	Title         string           `bson:"title"`
	Address       string           `bson:"address"`
	Description   string           `bson:"description"`
	Price         float64          `bson:"price"`
	Bedrooms      int              `bson:"bedrooms"`
	Bathrooms     int              `bson:"bathrooms"`
	Status        string           `bson:"status"`
	SquareFootage *float64         `bson:"square_footage,omitempty"`
	YearBuilt     *int             `bson:"year_built,omitempty"`
	PropertyType  string           `bson:"property_type"`
	Features      []string         `bson:"features,omitempty"`
	Images        []imageDocument  `bson:"images,omitempty"`
	Location      locationDocument `bson:"location"`
	CreatedAt     time.Time        `bson:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at"`
}

func toPropertyDocument(p *domain.Property) *propertyDocument {
	images := make([]imageDocument, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imageDocument{PublicID: img.PublicID, URL: img.URL})
	}
	return &propertyDocument{
		ID:            p.ID,
		Title:         p.Title,
		Address:       p.Address,
		Description:   p.Description,
		Price:         p.Price,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Status:        string(p.Status),
		SquareFootage: p.SquareFootage,
		YearBuilt:     p.YearBuilt,
		PropertyType:  string(p.PropertyType),
		Features:      p.Features,
		Images:        images,
		Location: locationDocument{
			Coordinates: p.Location.Coordinates,
			City:        p.Location.City,
			State:       p.Location.State,
			ZipCode:     p.Location.ZipCode,
			Country:     p.Location.Country,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPropertyEntity(doc *propertyDocument) *domain.Property {
	images := make([]domain.Image, 0, len(doc.Images))
	for _, img := range doc.Images {
		images = append(images, domain.Image{PublicID: img.PublicID, URL: img.URL})
	}
	return &domain.Property{
		ID:            doc.ID,
		Title:         doc.Title,
		Address:       doc.Address,
		Description:   doc.Description,
		Price:         doc.Price,
		Bedrooms:      doc.Bedrooms,
		Bathrooms:     doc.Bathrooms,
		Status:        domain.PropertyStatus(doc.Status),
		SquareFootage: doc.SquareFootage,
		YearBuilt:     doc.YearBuilt,
		PropertyType:  domain.PropertyType(doc.PropertyType),
		Features:      doc.Features,
		Images:        images,
		Location: domain.Location{
			Coordinates: doc.Location.Coordinates,
			City:        doc.Location.City,
			State:       doc.Location.State,
			ZipCode:     doc.Location.ZipCode,
			Country:     doc.Location.Country,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if _, err := r.collection.InsertOne(ctx, toPropertyDocument(p)); err != nil {
		return fmt.Errorf("failed to create property in mongo: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	doc := toPropertyDocument(p)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update property in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete property from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	var doc propertyDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property by id from mongo: %w", err)
	}
	return toPropertyEntity(&doc), nil
}

// sortSpecs is the allow-list of sort keys exposed by the listing API.
var sortSpecs = map[string]bson.D{
	"price":      {{Key: "price", Value: 1}},
	"-price":     {{Key: "price", Value: -1}},
	"createdAt":  {{Key: "created_at", Value: 1}},
	"-createdAt": {{Key: "created_at", Value: -1}},
	"title":      {{Key: "title", Value: 1}},
	"-title":     {{Key: "title", Value: -1}},
}

func sortSpec(sort string) bson.D {
	if spec, ok := sortSpecs[sort]; ok {
		return spec
	}
	return sortSpecs["-createdAt"]
}

func containsRegex(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

// buildFilterQuery translates the API filter into a Mongo query document.
func buildFilterQuery(f domain.Filter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}
	if f.PropertyType != "" {
		query["property_type"] = string(f.PropertyType)
	}
	if f.Bedrooms != nil {
		query["bedrooms"] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		query["bathrooms"] = *f.Bathrooms
	}
	if f.City != "" {
		query["location.city"] = containsRegex(f.City)
	}
	if f.State != "" {
		query["location.state"] = containsRegex(f.State)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.Search != "" {
		search := containsRegex(f.Search)
		query["$or"] = bson.A{
			bson.M{"title": search},
			bson.M{"address": search},
			bson.M{"description": search},
		}
	}
	return query
}

func (r *PropertyRepository) FindByFilter(ctx context.Context, f domain.Filter) ([]*domain.Property, int64, error) {
	query := buildFilterQuery(f)

	findOptions := options.Find().
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit)).
		SetSort(sortSpec(f.Sort))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode property list from mongo: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count properties in mongo: %w", err)
	}

	properties := make([]*domain.Property, len(docs))
	for i := range docs {
		properties[i] = toPropertyEntity(&docs[i])
	}
	return properties, total, nil
}

func (r *PropertyRepository) FindByStatus(ctx context.Context, status domain.PropertyStatus) ([]*domain.Property, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("failed to find properties by status from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode properties by status from mongo: %w", err)
	}

	properties := make([]*domain.Property, len(docs))
	for i := range docs {
		properties[i] = toPropertyEntity(&docs[i])
	}
	return properties, nil
}

func statusCond(status string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
	}}}
}

// Stats runs the overview and per-type aggregations over the live
// collection.
func (r *PropertyRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	overviewPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"total_properties":   bson.M{"$sum": 1},
			"average_price":      bson.M{"$avg": "$price"},
			"min_price":          bson.M{"$min": "$price"},
			"max_price":          bson.M{"$max": "$price"},
			"active_properties":  statusCond(string(domain.StatusActive)),
			"pending_properties": statusCond(string(domain.StatusPending)),
			"sold_properties":    statusCond(string(domain.StatusSold)),
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, overviewPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate property overview: %w", err)
	}
	defer cursor.Close(ctx)

	var overviewRows []struct {
		TotalProperties   int64   `bson:"total_properties"`
		AveragePrice      float64 `bson:"average_price"`
		MinPrice          float64 `bson:"min_price"`
		MaxPrice          float64 `bson:"max_price"`
		ActiveProperties  int64   `bson:"active_properties"`
		PendingProperties int64   `bson:"pending_properties"`
		SoldProperties    int64   `bson:"sold_properties"`
	}
	if err := cursor.All(ctx, &overviewRows); err != nil {
		return nil, fmt.Errorf("failed to decode property overview: %w", err)
	}

	stats := &domain.Stats{PropertyTypes: []domain.TypeStats{}}
	if len(overviewRows) > 0 {
		row := overviewRows[0]
		stats.Overview = domain.OverviewStats{
			TotalProperties:   row.TotalProperties,
			AveragePrice:      row.AveragePrice,
			MinPrice:          row.MinPrice,
			MaxPrice:          row.MaxPrice,
			ActiveProperties:  row.ActiveProperties,
			PendingProperties: row.PendingProperties,
			SoldProperties:    row.SoldProperties,
		}
	}

	typePipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           "$property_type",
			"count":         bson.M{"$sum": 1},
			"average_price": bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	typeCursor, err := r.collection.Aggregate(ctx, typePipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate property types: %w", err)
	}
	defer typeCursor.Close(ctx)

	var typeRows []struct {
		PropertyType string  `bson:"_id"`
		Count        int64   `bson:"count"`
		AveragePrice float64 `bson:"average_price"`
	}
	if err := typeCursor.All(ctx, &typeRows); err != nil {
		return nil, fmt.Errorf("failed to decode property type stats: %w", err)
	}
	for _, row := range typeRows {
		stats.PropertyTypes = append(stats.PropertyTypes, domain.TypeStats{
			PropertyType: row.PropertyType,
			Count:        row.Count,
			AveragePrice: row.AveragePrice,
		})
	}
	return stats, nil
}
