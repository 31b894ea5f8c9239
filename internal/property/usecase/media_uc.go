package usecase

import (
	"context"

	"github.com/estate-manager/property-service/internal/adapter/messaging/nats"
	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
)

type UploadedImage struct {
	ImageURL string               `json:"imageUrl"`
	PublicID string               `json:"publicId"`
	Variants domain.MediaVariants `json:"variants"`
}

type MediaUsecase struct {
	repo   domain.PropertyRepository
	media  domain.MediaStorage
	cache  domain.PropertyCache
	events domain.EventPublisher
	logger logger.Logger
}

func NewMediaUsecase(
	repo domain.PropertyRepository,
	media domain.MediaStorage,
	cache domain.PropertyCache,
	events domain.EventPublisher,
	log logger.Logger,
) *MediaUsecase {
	return &MediaUsecase{repo: repo, media: media, cache: cache, events: events, logger: log}
}

// ReplaceImages uploads the given files and makes them the listing's
// media, deleting the superseded remote images afterwards. Superseded
// deletions are best effort; a failure is logged and the replacement
// stands.
func (uc *MediaUsecase) ReplaceImages(ctx context.Context, propertyID string, files []UploadFile) ([]UploadedImage, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoImageFile
	}
	uc.logger.Info("MediaUsecase.ReplaceImages: replacing property images",
		"property_id", propertyID, "count", len(files))

	p, err := uc.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	var newImages []domain.Image
	for _, f := range files {
		obj, err := uc.media.Upload(ctx, propertyID, f.FileName, f.Data)
		if err != nil {
			uc.rollbackUploads(ctx, newImages)
			return nil, err
		}
		newImages = append(newImages, domain.Image{PublicID: obj.PublicID, URL: obj.URL})
	}

	superseded := p.Images
	p.Images = newImages
	if err := uc.repo.Update(ctx, p); err != nil {
		uc.rollbackUploads(ctx, newImages)
		return nil, err
	}

	for _, img := range superseded {
		if img.PublicID == "" {
			continue
		}
		if err := uc.media.Delete(ctx, img.PublicID); err != nil {
			uc.logger.Error("MediaUsecase.ReplaceImages: failed to delete superseded image",
				"property_id", propertyID, "public_id", img.PublicID, "error", err.Error())
		}
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, propertyID); err != nil {
			uc.logger.Warn("MediaUsecase.ReplaceImages: failed to invalidate property cache",
				"property_id", propertyID, "error", err.Error())
		}
	}
	if uc.events != nil {
		if err := uc.events.Publish(ctx, nats.SubjectPropertyUpdated, p); err != nil {
			uc.logger.Warn("MediaUsecase.ReplaceImages: failed to publish updated event",
				"property_id", propertyID, "error", err.Error())
		}
	}

	results := make([]UploadedImage, 0, len(newImages))
	for _, img := range newImages {
		results = append(results, UploadedImage{
			ImageURL: img.URL,
			PublicID: img.PublicID,
			Variants: uc.media.Variants(img.PublicID),
		})
	}
	return results, nil
}

func (uc *MediaUsecase) rollbackUploads(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := uc.media.Delete(ctx, img.PublicID); err != nil {
			uc.logger.Error("MediaUsecase: failed to roll back uploaded image",
				"public_id", img.PublicID, "error", err.Error())
		}
	}
}
