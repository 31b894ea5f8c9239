package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
)

func newMediaFixture() (*MediaUsecase, *MockPropertyRepository, *MockMediaStorage, *MockPropertyCache, *MockEventPublisher) {
	repo := new(MockPropertyRepository)
	media := new(MockMediaStorage)
	cache := new(MockPropertyCache)
	events := new(MockEventPublisher)
	uc := NewMediaUsecase(repo, media, cache, events, logger.NewNop())
	return uc, repo, media, cache, events
}

func TestMediaUsecase_ReplaceImages(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplacesAndDeletesSuperseded", func(t *testing.T) {
		uc, repo, media, cache, events := newMediaFixture()
		p := activeProperty("prop-40")
		oldIDs := []string{p.Images[0].PublicID, p.Images[1].PublicID}

		files := []UploadFile{
			{FileName: "kitchen.jpg", Data: []byte("a")},
			{FileName: "garden.jpg", Data: []byte("b")},
		}

		repo.On("FindByID", ctx, "prop-40").Return(p, nil).Once()
		media.On("Upload", ctx, "prop-40", "kitchen.jpg", []byte("a")).
			Return(&domain.MediaObject{PublicID: "new-1", URL: "http://media/new-1"}, nil).Once()
		media.On("Upload", ctx, "prop-40", "garden.jpg", []byte("b")).
			Return(&domain.MediaObject{PublicID: "new-2", URL: "http://media/new-2"}, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(updated *domain.Property) bool {
			return len(updated.Images) == 2 && updated.Images[0].PublicID == "new-1"
		})).Return(nil).Once()
		media.On("Delete", ctx, oldIDs[0]).Return(nil).Once()
		media.On("Delete", ctx, oldIDs[1]).Return(nil).Once()
		media.On("Variants", "new-1").Return(domain.MediaVariants{Original: "http://media/new-1"}).Once()
		media.On("Variants", "new-2").Return(domain.MediaVariants{Original: "http://media/new-2"}).Once()
		cache.On("Delete", ctx, "prop-40").Return(nil).Once()
		events.On("Publish", ctx, "property.updated", mock.Anything).Return(nil).Once()

		uploaded, err := uc.ReplaceImages(ctx, "prop-40", files)

		assert.NoError(t, err)
		assert.Len(t, uploaded, 2)
		assert.Equal(t, "new-1", uploaded[0].PublicID)
		assert.Equal(t, "http://media/new-1", uploaded[0].Variants.Original)
		media.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("NoFiles", func(t *testing.T) {
		uc, repo, _, _, _ := newMediaFixture()

		uploaded, err := uc.ReplaceImages(ctx, "prop-41", nil)

		assert.ErrorIs(t, err, domain.ErrNoImageFile)
		assert.Nil(t, uploaded)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("UploadFailureRollsBackEarlierUploads", func(t *testing.T) {
		uc, repo, media, _, _ := newMediaFixture()
		p := activeProperty("prop-42")

		files := []UploadFile{
			{FileName: "one.jpg", Data: []byte("a")},
			{FileName: "two.jpg", Data: []byte("b")},
		}

		repo.On("FindByID", ctx, "prop-42").Return(p, nil).Once()
		media.On("Upload", ctx, "prop-42", "one.jpg", []byte("a")).
			Return(&domain.MediaObject{PublicID: "new-1", URL: "u1"}, nil).Once()
		media.On("Upload", ctx, "prop-42", "two.jpg", []byte("b")).
			Return(nil, errors.New("storage unavailable")).Once()
		media.On("Delete", ctx, "new-1").Return(nil).Once()

		uploaded, err := uc.ReplaceImages(ctx, "prop-42", files)

		assert.Error(t, err)
		assert.Nil(t, uploaded)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		media.AssertExpectations(t)
	})

	t.Run("PersistFailureRollsBackUploads", func(t *testing.T) {
		uc, repo, media, _, _ := newMediaFixture()
		p := activeProperty("prop-43")

		files := []UploadFile{{FileName: "one.jpg", Data: []byte("a")}}

		repo.On("FindByID", ctx, "prop-43").Return(p, nil).Once()
		media.On("Upload", ctx, "prop-43", "one.jpg", []byte("a")).
			Return(&domain.MediaObject{PublicID: "new-1", URL: "u1"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(errors.New("write failed")).Once()
		media.On("Delete", ctx, "new-1").Return(nil).Once()

		uploaded, err := uc.ReplaceImages(ctx, "prop-43", files)

		assert.Error(t, err)
		assert.Nil(t, uploaded)
		media.AssertExpectations(t)
	})
}
