package domain

import "context"

// PropertyRepository is the persistence port backed by the document store.
// Delete must report ErrPropertyNotFound when nothing was removed so
// that concurrent sold transitions resolve without locking.
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Property, error)
	FindByFilter(ctx context.Context, f Filter) ([]*Property, int64, error)
	FindByStatus(ctx context.Context, status PropertyStatus) ([]*Property, error)
	Stats(ctx context.Context) (*Stats, error)
}

// MediaObject is the handle returned by the media store for an uploaded
// image.
type MediaObject struct {
	PublicID string
	URL      string
}

// MediaVariants are display URLs derived from a media identifier at fixed
// sizes.
type MediaVariants struct {
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	Original  string `json:"original"`
}

// MediaStorage is the remote media service port. Deletions are best
// effort from the caller's point of view: workflows log failures and
// continue.
type MediaStorage interface {
	Upload(ctx context.Context, propertyID, fileName string, data []byte) (*MediaObject, error)
	Delete(ctx context.Context, publicID string) error
	Variants(publicID string) MediaVariants
}

// PropertyCache fronts FindByID reads. A nil, nil return means cache miss.
type PropertyCache interface {
	Get(ctx context.Context, id string) (*Property, error)
	Set(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits listing lifecycle events. Publishing is fire and
// forget relative to the request outcome.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
