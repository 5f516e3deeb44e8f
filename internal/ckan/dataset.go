package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ckan-publisher/pkg/ckan/models"
)

const (
	resourceShowPath  = "/api/action/resource_show"
	packageShowPath   = "/api/action/package_show"
	packageUpdatePath = "/api/action/package_update"
)

// ResolveDatasetIDForResource returns the id of the dataset (package) that
// owns the resource.
func (c *Client) ResolveDatasetIDForResource(ctx context.Context, apiKey, resourceID string) (string, error) {
	const op = "ResolveDatasetIDForResource"

	result, err := c.call(ctx, op, apiKey, resourceShowPath, models.IDRequest{ID: resourceID})
	if err != nil {
		return "", err
	}

	// Only package_id is needed; the rest of the resource is not decoded.
	var resource struct {
		PackageID string `json:"package_id"`
	}
	if err := json.Unmarshal(result, &resource); err != nil {
		return "", &APIError{Operation: op, Message: fmt.Sprintf("%s: decoding resource: %v", op, err), Err: err}
	}
	if resource.PackageID == "" {
		return "", &APIError{Operation: op, Message: op + ": resource has no package_id."}
	}

	c.logger.Debug("Resolved dataset for resource", "resource_id", resourceID, "dataset_id", resource.PackageID)
	return resource.PackageID, nil
}

// FetchDatasetAttribute returns a single top-level field of the dataset.
// A field that is absent fails with an APIError wrapping ErrAttributeNotFound.
func (c *Client) FetchDatasetAttribute(ctx context.Context, apiKey, datasetID, attribute string) (interface{}, error) {
	const op = "FetchDatasetAttribute"

	dataset, err := c.fetchDataset(ctx, op, apiKey, datasetID)
	if err != nil {
		return nil, err
	}

	value, ok := dataset[attribute]
	if !ok {
		return nil, &APIError{
			Operation: op,
			Message:   fmt.Sprintf("%s: dataset %s has no attribute %q", op, datasetID, attribute),
			Err:       ErrAttributeNotFound,
		}
	}
	return value, nil
}

// DatasetURL returns the human-facing page of the dataset, {base}/dataset/{name}.
func (c *Client) DatasetURL(ctx context.Context, apiKey, datasetID string) (string, error) {
	const op = "DatasetURL"

	value, err := c.FetchDatasetAttribute(ctx, apiKey, datasetID, "name")
	if err != nil {
		return "", err
	}
	name, ok := value.(string)
	if !ok || name == "" {
		return "", &APIError{Operation: op, Message: fmt.Sprintf("%s: dataset %s has no usable name", op, datasetID)}
	}
	return c.baseURL + "/dataset/" + name, nil
}

// UpdateDataset sets the title and description (notes) of the dataset that
// owns resourceID. The dataset is fetched and pushed back whole, so every
// other field is submitted exactly as CKAN returned it. There is no
// concurrency token: a concurrent writer between the fetch and the update
// loses its change.
func (c *Client) UpdateDataset(ctx context.Context, apiKey, resourceID, title, description string) error {
	const op = "UpdateDataset"

	datasetID, err := c.ResolveDatasetIDForResource(ctx, apiKey, resourceID)
	if err != nil {
		return err
	}

	if err := c.updateDataset(ctx, op, apiKey, datasetID, title, description); err != nil {
		return err
	}

	c.logger.Info("Dataset updated", "dataset_id", datasetID, "resource_id", resourceID)
	return nil
}

// UpdateDatasetByID is UpdateDataset for a caller that already knows the
// dataset id.
func (c *Client) UpdateDatasetByID(ctx context.Context, apiKey, datasetID, title, description string) error {
	const op = "UpdateDatasetByID"

	if err := c.updateDataset(ctx, op, apiKey, datasetID, title, description); err != nil {
		return err
	}

	c.logger.Info("Dataset updated", "dataset_id", datasetID)
	return nil
}

func (c *Client) updateDataset(ctx context.Context, op, apiKey, datasetID, title, description string) error {
	dataset, err := c.fetchDataset(ctx, op, apiKey, datasetID)
	if err != nil {
		return err
	}

	dataset["title"] = title
	dataset["notes"] = description

	// package_update answers with the stored dataset, which is not needed.
	_, err = c.call(ctx, op, apiKey, packageUpdatePath, dataset)
	return err
}

func (c *Client) fetchDataset(ctx context.Context, op, apiKey, datasetID string) (models.Dataset, error) {
	result, err := c.call(ctx, op, apiKey, packageShowPath, models.IDRequest{ID: datasetID})
	if err != nil {
		return nil, err
	}

	// Numbers stay json.Number so they are re-encoded exactly as received.
	dec := json.NewDecoder(bytes.NewReader(result))
	dec.UseNumber()

	var dataset models.Dataset
	if err := dec.Decode(&dataset); err != nil {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: decoding dataset: %v", op, err), Err: err}
	}
	if dataset == nil {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: dataset %s: response has no result.", op, datasetID)}
	}
	return dataset, nil
}
