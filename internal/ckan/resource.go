package ckan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ckan-publisher/pkg/ckan/models"
)

// resource_update lives under the versioned /api/3 prefix, unlike the other
// actions this client calls. Both prefixes reach the same API on CKAN 2.x.
const resourceUpdatePath = "/api/3/action/resource_update"

// ResourceParams describes a CSV resource whose CSVW descriptor is published
// at URL + "-metadata.json".
type ResourceParams struct {
	ResourceID  string
	URL         string
	Title       string
	Description string
	LicenseURL  string
	StartDate   string
	// EndDate defaults to today when empty.
	EndDate string
}

// UpdateResource replaces the metadata of a CSV resource. last_modified is
// always set to today. Only the envelope's success flag is checked; the
// result CKAN echoes back is ignored.
func (c *Client) UpdateResource(ctx context.Context, apiKey string, p ResourceParams) error {
	const op = "UpdateResource"

	payload := c.resourceUpdate(p)
	if _, err := c.call(ctx, op, apiKey, resourceUpdatePath, payload); err != nil {
		return err
	}

	c.logger.Info("Resource updated",
		"resource_id", p.ResourceID,
		"temporal_start", payload.TemporalStart,
		"temporal_end", payload.TemporalEnd)
	return nil
}

func (c *Client) resourceUpdate(p ResourceParams) models.ResourceUpdate {
	today := c.today()

	end := p.EndDate
	if end == "" {
		end = today.String()
	}

	return models.ResourceUpdate{
		ID:              p.ResourceID,
		URL:             p.URL,
		Format:          models.ResourceFormat,
		DescribedBy:     p.URL + models.MetadataSuffix,
		DescribedByType: models.ResourceDescribedByType,
		LicenseLink:     p.LicenseURL,
		MimeType:        models.ResourceMimeType,
		Name:            p.Title,
		Description:     p.Description,
		TemporalStart:   p.StartDate,
		TemporalEnd:     end,
		LastModified:    today,
	}
}

// ShowResource fetches the metadata of a single resource.
func (c *Client) ShowResource(ctx context.Context, apiKey, resourceID string) (*models.ResourceMetadata, error) {
	const op = "ShowResource"

	result, err := c.call(ctx, op, apiKey, resourceShowPath, models.IDRequest{ID: resourceID})
	if err != nil {
		return nil, err
	}
	if !hasResult(result) {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: resource %s: response has no result.", op, resourceID)}
	}

	var resource models.ResourceMetadata
	if err := json.Unmarshal(result, &resource); err != nil {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: decoding resource: %v", op, err), Err: err}
	}
	return &resource, nil
}
