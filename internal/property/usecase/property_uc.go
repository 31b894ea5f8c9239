package usecase

import (
	"context"
	"time"

	"github.com/estate-manager/property-service/internal/adapter/messaging/nats"
	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/estate-manager/property-service/internal/salelog"
	"github.com/google/uuid"
)

// defaultImageURL backs listings created without an upload. It carries no
// media identifier, so it is never deleted remotely.
const defaultImageURL = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?ixlib=rb-4.0.3&auto=format&fit=crop&w=1000&q=80"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// UploadFile is a raw image received with a create or update request.
type UploadFile struct {
	FileName string
	Data     []byte
}

type CreateInput struct {
	ID            string
	Title         string
	Address       string
	Description   string
	Price         float64
	Bedrooms      int
	Bathrooms     int
	Status        domain.PropertyStatus
	SquareFootage *float64
	YearBuilt     *int
	PropertyType  domain.PropertyType
	Features      []string
	Location      domain.Location
	Images        []UploadFile
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	Address       *string
	Description   *string
	Price         *float64
	Bedrooms      *int
	Bathrooms     *int
	Status        *domain.PropertyStatus
	SquareFootage *float64
	YearBuilt     *int
	PropertyType  *domain.PropertyType
	Features      []string
	Location      *domain.Location
	Image         *UploadFile
}

// UpdateResult distinguishes a normal update from a sold transition: when
// Sold is true the listing was removed as part of the update and Property
// is nil.
type UpdateResult struct {
	Property *domain.Property
	Sold     bool
}

type PropertyUsecase struct {
	repo   domain.PropertyRepository
	media  domain.MediaStorage
	cache  domain.PropertyCache
	events domain.EventPublisher
	sold   *SoldUsecase
	logger logger.Logger
	now    func() time.Time
}

func NewPropertyUsecase(
	repo domain.PropertyRepository,
	media domain.MediaStorage,
	cache domain.PropertyCache,
	events domain.EventPublisher,
	sold *SoldUsecase,
	log logger.Logger,
) *PropertyUsecase {
	return &PropertyUsecase{
		repo:   repo,
		media:  media,
		cache:  cache,
		events: events,
		sold:   sold,
		logger: log,
		now:    time.Now,
	}
}

// Create persists a new listing, generating an identity when the client
// did not supply one. Uploaded images are stored first; if persistence
// then fails they are deleted again, best effort.
func (uc *PropertyUsecase) Create(ctx context.Context, input CreateInput) (*domain.Property, error) {
	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}
	uc.logger.Info("PropertyUsecase.Create: creating property", "property_id", id, "title", input.Title)

	status := input.Status
	if status == "" {
		status = domain.StatusActive
	}
	propertyType := input.PropertyType
	if propertyType == "" {
		propertyType = domain.TypeHouse
	}
	location := input.Location
	if location.Country == "" {
		location.Country = "US"
	}

	images, err := uc.uploadAll(ctx, id, input.Images)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		images = []domain.Image{{URL: defaultImageURL}}
	}

	now := uc.now()
	p := &domain.Property{
		ID:            id,
		Title:         input.Title,
		Address:       input.Address,
		Description:   input.Description,
		Price:         input.Price,
		Bedrooms:      input.Bedrooms,
		Bathrooms:     input.Bathrooms,
		Status:        status,
		SquareFootage: input.SquareFootage,
		YearBuilt:     input.YearBuilt,
		PropertyType:  propertyType,
		Features:      input.Features,
		Images:        images,
		Location:      location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.deleteRemoteImages(ctx, images)
		uc.logger.Error("PropertyUsecase.Create: failed to persist property", "property_id", id, "error", err.Error())
		return nil, err
	}

	uc.publish(ctx, nats.SubjectPropertyCreated, p)
	return p, nil
}

// Update applies a partial update. Setting status to sold on a listing
// that is not yet sold hands the record to the sold workflow: the listing
// is removed, not updated, and the result says so.
func (uc *PropertyUsecase) Update(ctx context.Context, id string, input UpdateInput) (*UpdateResult, error) {
	uc.logger.Info("PropertyUsecase.Update: updating property", "property_id", id)

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var supersededImages []domain.Image
	if input.Image != nil {
		newImage, err := uc.media.Upload(ctx, p.ID, input.Image.FileName, input.Image.Data)
		if err != nil {
			return nil, err
		}
		supersededImages = p.Images
		p.Images = []domain.Image{{PublicID: newImage.PublicID, URL: newImage.URL}}
	}

	becomingSold := input.Status != nil && *input.Status == domain.StatusSold && p.Status != domain.StatusSold

	applyUpdate(p, input)
	p.UpdatedAt = uc.now()

	if becomingSold {
		// The sold transition deletes the record; superseded images go
		// first so nothing remote is left dangling.
		uc.deleteRemoteImages(ctx, supersededImages)
		if err := uc.sold.finalizeSale(ctx, p, salelog.ActionAutoDeleted); err != nil {
			return nil, err
		}
		uc.logger.Info("PropertyUsecase.Update: property marked as sold and removed", "property_id", p.ID)
		return &UpdateResult{Sold: true}, nil
	}

	if err := uc.repo.Update(ctx, p); err != nil {
		if input.Image != nil {
			uc.deleteRemoteImages(ctx, p.Images)
		}
		return nil, err
	}

	uc.deleteRemoteImages(ctx, supersededImages)
	uc.invalidate(ctx, p.ID)
	uc.publish(ctx, nats.SubjectPropertyUpdated, p)
	return &UpdateResult{Property: p}, nil
}

// Delete removes a listing along with its remote images. A remote
// deletion failure is logged and does not block the local removal.
func (uc *PropertyUsecase) Delete(ctx context.Context, id string) error {
	uc.logger.Info("PropertyUsecase.Delete: deleting property", "property_id", id)

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	uc.deleteRemoteImages(ctx, p.Images)

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidate(ctx, id)
	uc.publish(ctx, nats.SubjectPropertyDeleted, map[string]string{"id": id})
	return nil
}

func (uc *PropertyUsecase) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err != nil {
			uc.logger.Warn("PropertyUsecase.GetByID: cache read failed", "property_id", id, "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, p); err != nil {
			uc.logger.Warn("PropertyUsecase.GetByID: cache write failed", "property_id", id, "error", err.Error())
		}
	}
	return p, nil
}

// List runs the filtered, sorted, paginated query and derives the
// pagination block.
func (uc *PropertyUsecase) List(ctx context.Context, f domain.Filter) ([]*domain.Property, domain.PageInfo, error) {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	properties, total, err := uc.repo.FindByFilter(ctx, f)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	return properties, domain.NewPageInfo(f.Page, f.Limit, total), nil
}

func (uc *PropertyUsecase) Stats(ctx context.Context) (*domain.Stats, error) {
	return uc.repo.Stats(ctx)
}

func applyUpdate(p *domain.Property, input UpdateInput) {
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Address != nil {
		p.Address = *input.Address
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Bedrooms != nil {
		p.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		p.Bathrooms = *input.Bathrooms
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	if input.SquareFootage != nil {
		p.SquareFootage = input.SquareFootage
	}
	if input.YearBuilt != nil {
		p.YearBuilt = input.YearBuilt
	}
	if input.PropertyType != nil {
		p.PropertyType = *input.PropertyType
	}
	if input.Features != nil {
		p.Features = input.Features
	}
	if input.Location != nil {
		p.Location = *input.Location
	}
}

func (uc *PropertyUsecase) uploadAll(ctx context.Context, propertyID string, files []UploadFile) ([]domain.Image, error) {
	var images []domain.Image
	for _, f := range files {
		obj, err := uc.media.Upload(ctx, propertyID, f.FileName, f.Data)
		if err != nil {
			uc.deleteRemoteImages(ctx, images)
			return nil, err
		}
		images = append(images, domain.Image{PublicID: obj.PublicID, URL: obj.URL})
	}
	return images, nil
}

func (uc *PropertyUsecase) deleteRemoteImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := uc.media.Delete(ctx, img.PublicID); err != nil {
			uc.logger.Error("PropertyUsecase: failed to delete remote image",
				"public_id", img.PublicID, "error", err.Error())
		}
	}
}

func (uc *PropertyUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("PropertyUsecase: failed to invalidate property cache",
			"property_id", id, "error", err.Error())
	}
}

func (uc *PropertyUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("PropertyUsecase: failed to publish event",
			"subject", subject, "error", err.Error())
	}
}
