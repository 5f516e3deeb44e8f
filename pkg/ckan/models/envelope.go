package models

import "encoding/json"

// Response is the envelope every CKAN action returns.
type Response struct {
	Help    string          `json:"help,omitempty"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *ErrorBody      `json:"error"`
}

// ErrorBody is the "error" member of a failed action. Validation errors
// carry per-field messages instead of Message.
type ErrorBody struct {
	Type    string `json:"__type,omitempty"`
	Message string `json:"message,omitempty"`
}

// IDRequest is the body of the *_show actions.
type IDRequest struct {
	ID string `json:"id"`
}

// ResourceMetadata is the part of a resource_show result this client reads.
type ResourceMetadata struct {
	ResourceID   string `json:"id"`
	PackageID    string `json:"package_id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	Format       string `json:"format"`
	LastModified Date   `json:"last_modified"`
}

// Dataset is a package_show result. It is kept as an open mapping so that
// fields this client does not know about survive a read-modify-write.
type Dataset map[string]interface{}
