package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// Adapter defines how both sides of a reconciliation are aggregated.
// The source side is whatever the adapter was built from (a snapshot, an
// export); the target side is read from the database.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "migration").
	Name() string

	// Keys returns every count key the report must contain, even when a
	// side has no rows for it.
	Keys() []string

	// Controls returns every control sum the report must contain.
	Controls() []string

	// LoadSource aggregates the source side.
	LoadSource(ctx context.Context) (Aggregates, error)

	// LoadTarget aggregates the target side. Implementations should use one
	// aggregate query per table rather than loading rows.
	LoadTarget(ctx context.Context, db *gorm.DB) (Aggregates, error)
}
