package models

const (
	ResourceFormat          = "CSV"
	ResourceMimeType        = "application/csv"
	ResourceDescribedByType = "application/csvm+json"

	// MetadataSuffix is appended to a resource URL to name its CSVW descriptor.
	MetadataSuffix = "-metadata.json"
)

// ResourceUpdate is the resource_update payload for a CSV resource that is
// described by a CSVW metadata document next to it.
type ResourceUpdate struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Format          string `json:"format"`
	DescribedBy     string `json:"describedBy"`
	DescribedByType string `json:"describedByType"`
	LicenseLink     string `json:"license_link"`
	MimeType        string `json:"mimetype"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	TemporalStart   string `json:"temporal_start"`
	TemporalEnd     string `json:"temporal_end"`
	LastModified    Date   `json:"last_modified"`
}
