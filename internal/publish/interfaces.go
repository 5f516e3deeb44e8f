package publish

import (
	"context"

	"github.com/ckan-publisher/internal/ckan"
	"github.com/ckan-publisher/internal/common/db"
)

// Catalog is the part of the CKAN client a publication needs.
type Catalog interface {
	UpdateResource(ctx context.Context, apiKey string, p ckan.ResourceParams) error
	ResolveDatasetIDForResource(ctx context.Context, apiKey, resourceID string) (string, error)
	UpdateDatasetByID(ctx context.Context, apiKey, datasetID, title, description string) error
	DatasetURL(ctx context.Context, apiKey, datasetID string) (string, error)
}

// Journal records the outcome of each CKAN operation.
type Journal interface {
	Record(ctx context.Context, entry db.JournalEntry) error
}

// Notifier announces a finished publication.
type Notifier interface {
	Notify(ctx context.Context, title, message string, fields map[string]interface{}) error
}
