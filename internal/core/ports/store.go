package ports

import "context"

// Changes is a partial update keyed by document field name.
type Changes map[string]any

// Store is the generic record store over entity T selected by filter F.
// Operations are independent; no transaction spans two calls.
type Store[T any, F any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	FindAll(ctx context.Context) ([]*T, error)
	// Create persists entity and returns the stored record with its
	// server-assigned id.
	Create(ctx context.Context, entity *T) (*T, error)
	// Update returns domain.ErrNotFound if id is absent.
	Update(ctx context.Context, id string, changes Changes) (*T, error)
	// Delete removes the record permanently.
	Delete(ctx context.Context, id string) (*T, error)
	// SoftDelete sets deletedAt to now and isActive to false.
	SoftDelete(ctx context.Context, id string) (*T, error)
	// Count counts records matching filter; the zero filter counts all.
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}
