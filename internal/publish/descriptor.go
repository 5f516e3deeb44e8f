package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ckan-publisher/internal/csvw"
	"github.com/ckan-publisher/pkg/ckan/models"
)

// Descriptor is a publication: one CSV file, its CSVW metadata and,
// optionally, the CKAN resource and dataset it is published under.
type Descriptor struct {
	// Name is the CSV file name without extension.
	Name        string        `yaml:"name"`
	OutputDir   string        `yaml:"output_dir"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	LicenseURL  string        `yaml:"license_url"`
	Source      string        `yaml:"source"`
	Keywords    []string      `yaml:"keywords"`
	Columns     []csvw.Column `yaml:"columns"`
	Headers     []string      `yaml:"headers"`
	Rows        [][]string    `yaml:"rows"`

	Resource *ResourceTarget `yaml:"resource,omitempty"`
	Dataset  *DatasetTarget  `yaml:"dataset,omitempty"`
}

// ResourceTarget is the CKAN resource that serves the CSV file.
type ResourceTarget struct {
	ID        string `yaml:"id"`
	URL       string `yaml:"url"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date,omitempty"`
}

// DatasetTarget overrides the title and description of the owning dataset.
type DatasetTarget struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadDescriptor reads a YAML publication descriptor.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	if d.OutputDir == "" {
		d.OutputDir = filepath.Dir(path)
	}
	return &d, nil
}

// Validate reports every missing required field at once.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if d.LicenseURL == "" {
		errs = append(errs, errors.New("license_url is required"))
	}
	if d.Dataset != nil && d.Resource == nil {
		errs = append(errs, errors.New("dataset requires a resource to locate it"))
	}
	if r := d.Resource; r != nil {
		if r.ID == "" {
			errs = append(errs, errors.New("resource.id is required"))
		}
		if r.URL == "" {
			errs = append(errs, errors.New("resource.url is required"))
		}
		if r.StartDate == "" {
			errs = append(errs, errors.New("resource.start_date is required"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid descriptor: %w", errors.Join(errs...))
	}
	return nil
}

// CSVPath is where the data file is written.
func (d *Descriptor) CSVPath() string {
	return filepath.Join(d.OutputDir, d.Name+".csv")
}

// SchemaPath is where the CSVW metadata is written, next to the data file and
// named the way the resource's describedBy link expects.
func (d *Descriptor) SchemaPath() string {
	return d.CSVPath() + models.MetadataSuffix
}

// SchemaParams maps the descriptor onto the CSVW writer's inputs.
func (d *Descriptor) SchemaParams() csvw.SchemaParams {
	return csvw.SchemaParams{
		CSVFileName: d.Name,
		Title:       d.Title,
		Description: d.Description,
		LicenseURL:  d.LicenseURL,
		Source:      d.Source,
		Keywords:    d.Keywords,
		Columns:     d.Columns,
	}
}
