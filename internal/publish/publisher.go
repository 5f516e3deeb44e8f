package publish

import (
	"context"
	"fmt"

	"github.com/ckan-publisher/internal/ckan"
	"github.com/ckan-publisher/internal/common/db"
	"github.com/ckan-publisher/internal/common/logger"
	"github.com/ckan-publisher/internal/csvw"
)

// Result summarises a finished publication.
type Result struct {
	CSVPath         string `json:"csv"`
	SchemaPath      string `json:"schema"`
	ResourceID      string `json:"resource_id,omitempty"`
	DatasetID       string `json:"dataset_id,omitempty"`
	DatasetURL      string `json:"dataset_url,omitempty"`
	ResourceUpdated bool   `json:"resource_updated"`
	DatasetUpdated  bool   `json:"dataset_updated"`
}

// Publisher writes a descriptor's files and pushes its metadata to CKAN.
type Publisher struct {
	catalog  Catalog
	apiKey   string
	journal  Journal
	notifier Notifier
	logger   logger.Logger
}

// NewPublisher wires a publisher. journal and notifier may be nil.
func NewPublisher(catalog Catalog, apiKey string, journal Journal, notifier Notifier, logger logger.Logger) *Publisher {
	if journal == nil {
		journal = db.NopJournal{}
	}
	return &Publisher{
		catalog:  catalog,
		apiKey:   apiKey,
		journal:  journal,
		notifier: notifier,
		logger:   logger,
	}
}

// Publish writes the CSV and its CSVW metadata, then, when the descriptor
// names a resource, updates the resource, resolves its dataset once,
// optionally updates that dataset, and looks up the dataset page. It stops
// at the first failure.
func (p *Publisher) Publish(ctx context.Context, d *Descriptor) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		CSVPath:    d.CSVPath(),
		SchemaPath: d.SchemaPath(),
	}

	p.logger.Info("Starting publication", "name", d.Name, "csv", result.CSVPath)

	if err := csvw.WriteCSV(result.CSVPath, d.Rows, d.Headers); err != nil {
		p.record(ctx, db.JournalEntry{Operation: "WriteCSV", Target: result.CSVPath}, err)
		return nil, fmt.Errorf("writing data file: %w", err)
	}
	p.record(ctx, db.JournalEntry{Operation: "WriteCSV", Target: result.CSVPath}, nil)

	if err := csvw.WriteSchema(result.SchemaPath, d.SchemaParams()); err != nil {
		p.record(ctx, db.JournalEntry{Operation: "WriteSchema", Target: result.SchemaPath}, err)
		return nil, fmt.Errorf("writing csvw schema: %w", err)
	}
	p.record(ctx, db.JournalEntry{Operation: "WriteSchema", Target: result.SchemaPath}, nil)

	if d.Resource == nil {
		p.logger.Info("Publication written locally", "csv", result.CSVPath, "schema", result.SchemaPath)
		return result, nil
	}

	if err := p.publishRemote(ctx, d, result); err != nil {
		p.notify(ctx, "Publication failed", d.Name, map[string]interface{}{
			"resource_id": d.Resource.ID,
			"error":       err.Error(),
		})
		return nil, err
	}

	p.logger.Info("Publication finished",
		"resource_id", result.ResourceID,
		"dataset_id", result.DatasetID,
		"dataset_url", result.DatasetURL)

	p.notify(ctx, "Publication finished", d.Name, map[string]interface{}{
		"resource_id": result.ResourceID,
		"dataset_url": result.DatasetURL,
	})
	return result, nil
}

func (p *Publisher) publishRemote(ctx context.Context, d *Descriptor, result *Result) error {
	res := d.Resource
	result.ResourceID = res.ID

	err := p.catalog.UpdateResource(ctx, p.apiKey, ckan.ResourceParams{
		ResourceID:  res.ID,
		URL:         res.URL,
		Title:       d.Title,
		Description: d.Description,
		LicenseURL:  d.LicenseURL,
		StartDate:   res.StartDate,
		EndDate:     res.EndDate,
	})
	p.record(ctx, db.JournalEntry{Operation: "UpdateResource", ResourceID: res.ID, Target: res.URL}, err)
	if err != nil {
		return fmt.Errorf("updating resource %s: %w", res.ID, err)
	}
	result.ResourceUpdated = true

	datasetID, err := p.catalog.ResolveDatasetIDForResource(ctx, p.apiKey, res.ID)
	if err != nil {
		return fmt.Errorf("resolving dataset of resource %s: %w", res.ID, err)
	}
	result.DatasetID = datasetID

	if d.Dataset != nil {
		err := p.catalog.UpdateDatasetByID(ctx, p.apiKey, datasetID, d.Dataset.Title, d.Dataset.Description)
		p.record(ctx, db.JournalEntry{Operation: "UpdateDataset", ResourceID: res.ID, DatasetID: datasetID}, err)
		if err != nil {
			return fmt.Errorf("updating dataset %s: %w", datasetID, err)
		}
		result.DatasetUpdated = true
	}

	url, err := p.catalog.DatasetURL(ctx, p.apiKey, datasetID)
	if err != nil {
		return fmt.Errorf("looking up dataset url: %w", err)
	}
	result.DatasetURL = url

	return nil
}

// record journals an outcome. A failing journal never fails the publication.
func (p *Publisher) record(ctx context.Context, entry db.JournalEntry, err error) {
	entry.Success = err == nil
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := p.journal.Record(ctx, entry); jerr != nil {
		p.logger.Warn("Failed to record journal entry", "operation", entry.Operation, "error", jerr)
	}
}

func (p *Publisher) notify(ctx context.Context, title, message string, fields map[string]interface{}) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, title, message, fields); err != nil {
		p.logger.Warn("Failed to send notification", "title", title, "error", err)
	}
}
