package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/estate-manager/property-service/internal/adapter/messaging/nats"
	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/estate-manager/property-service/internal/salelog"
)

// SaleLog is the port to the append-only sale record. Appends are best
// effort inside the sold workflow: a failure is logged and the workflow
// carries on.
type SaleLog interface {
	Append(e salelog.Entry) error
	StatsSince(days int) (*salelog.Stats, error)
}

// SoldConfirmation is the minimal snapshot returned once a listing has
// been sold and removed.
type SoldConfirmation struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type CleanupError struct {
	PropertyID string `json:"propertyId"`
	Title      string `json:"title"`
	Error      string `json:"error"`
}

type CleanupResult struct {
	Count  int            `json:"cleanedCount"`
	Errors []CleanupError `json:"errors,omitempty"`
}

// SoldUsecase owns the one-way sold transition: snapshot, remote media
// deletion, record removal, sale log append. The transition and the
// deletion are a single logical event; a listing must never remain
// queryable in sold state after this workflow returns.
type SoldUsecase struct {
	repo    domain.PropertyRepository
	media   domain.MediaStorage
	saleLog SaleLog
	cache   domain.PropertyCache
	events  domain.EventPublisher
	logger  logger.Logger
	now     func() time.Time
}

func NewSoldUsecase(
	repo domain.PropertyRepository,
	media domain.MediaStorage,
	saleLog SaleLog,
	cache domain.PropertyCache,
	events domain.EventPublisher,
	log logger.Logger,
) *SoldUsecase {
	return &SoldUsecase{
		repo:    repo,
		media:   media,
		saleLog: saleLog,
		cache:   cache,
		events:  events,
		logger:  log,
		now:     time.Now,
	}
}

// MarkAsSold transitions a listing to sold and removes it. Two concurrent
// calls on the same id may both pass the already-sold check; the store's
// delete result resolves the race, so the loser gets ErrPropertyNotFound.
func (uc *SoldUsecase) MarkAsSold(ctx context.Context, id string) (*SoldConfirmation, error) {
	uc.logger.Info("SoldUsecase.MarkAsSold: marking property as sold", "property_id", id)

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.StatusSold {
		return nil, domain.ErrPropertyAlreadySold
	}

	if err := uc.finalizeSale(ctx, p, salelog.ActionMarkedAsSold); err != nil {
		return nil, err
	}

	uc.logger.Info("SoldUsecase.MarkAsSold: property sold and removed",
		"property_id", p.ID, "title", p.Title, "price", p.Price)
	return &SoldConfirmation{ID: p.ID, Title: p.Title, Price: p.Price}, nil
}

// finalizeSale runs the deletion sequence for a listing whose status is
// transitioning to sold: delete each remote image independently, remove
// the record, append the sale log entry built from the pre-deletion
// snapshot. Media and log failures are logged, never fatal; only the
// record removal decides the outcome.
func (uc *SoldUsecase) finalizeSale(ctx context.Context, p *domain.Property, action salelog.Action) error {
	soldAt := uc.now()
	snapshot := salelog.SnapshotFromProperty(p, soldAt)

	for _, img := range p.Images {
		if img.PublicID == "" {
			continue
		}
		if err := uc.media.Delete(ctx, img.PublicID); err != nil {
			uc.logger.Error("SoldUsecase: failed to delete remote image",
				"property_id", p.ID, "public_id", img.PublicID, "error", err.Error())
		}
	}

	if err := uc.repo.Delete(ctx, p.ID); err != nil {
		if !errors.Is(err, domain.ErrPropertyNotFound) {
			uc.logger.Error("SoldUsecase: failed to delete property record",
				"property_id", p.ID, "error", err.Error())
		}
		return err
	}

	if err := uc.saleLog.Append(salelog.Entry{Timestamp: soldAt, Action: action, Property: snapshot}); err != nil {
		uc.logger.Error("SoldUsecase: failed to append sale log entry",
			"property_id", p.ID, "error", err.Error())
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, p.ID); err != nil {
			uc.logger.Warn("SoldUsecase: failed to invalidate property cache",
				"property_id", p.ID, "error", err.Error())
		}
	}
	if uc.events != nil {
		if err := uc.events.Publish(ctx, nats.SubjectPropertySold, snapshot); err != nil {
			uc.logger.Warn("SoldUsecase: failed to publish sold event",
				"property_id", p.ID, "error", err.Error())
		}
	}
	return nil
}

// CleanupSold removes every listing resting in sold state. Under the
// single-path workflow that set should be empty; entries only appear via
// out-of-band writes, so this is a safety net, not a primary path.
func (uc *SoldUsecase) CleanupSold(ctx context.Context) (*CleanupResult, error) {
	uc.logger.Info("SoldUsecase.CleanupSold: scanning for sold properties")

	soldProperties, err := uc.repo.FindByStatus(ctx, domain.StatusSold)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{}
	for _, p := range soldProperties {
		if err := uc.finalizeSale(ctx, p, salelog.ActionCleanup); err != nil {
			result.Errors = append(result.Errors, CleanupError{
				PropertyID: p.ID,
				Title:      p.Title,
				Error:      err.Error(),
			})
			continue
		}
		result.Count++
	}

	uc.logger.Info("SoldUsecase.CleanupSold: cleanup finished",
		"removed", result.Count, "failed", len(result.Errors))
	return result, nil
}

// SalesStats aggregates the sale log over a trailing window.
func (uc *SoldUsecase) SalesStats(ctx context.Context, days int) (*salelog.Stats, error) {
	return uc.saleLog.StatsSince(days)
}
