package csvw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ckan-publisher/pkg/ckan/models"
)

const (
	csvwNamespace   = "http://www.w3.org/ns/csvw"
	contentLanguage = "cs"
	publisherName   = "ÚZIS ČR"
	publisherURL    = "https://www.uzis.cz/"
	xsdDate         = "xsd:date"
)

// SchemaParams are the caller-supplied parts of a CSVW metadata document.
type SchemaParams struct {
	// CSVFileName is the data file name without the ".csv" extension.
	CSVFileName string
	Title       string
	Description string
	LicenseURL  string
	Source      string
	Keywords    []string
	Columns     []Column
}

// Schema is the CSVW JSON-LD metadata document. Field order is the output order.
type Schema struct {
	Context     []interface{} `json:"@context"`
	URL         string        `json:"url"`
	Title       string        `json:"dc:title"`
	Description string        `json:"dc:description"`
	Source      string        `json:"dc:source"`
	Keywords    []string      `json:"dcat:keyword"`
	Publisher   Publisher     `json:"dc:publisher"`
	License     Ref           `json:"dc:license"`
	Modified    TypedLiteral  `json:"dc:modified"`
	TableSchema TableSchema   `json:"tableSchema"`
}

type LanguageContext struct {
	Language string `json:"@language"`
}

type Publisher struct {
	Name string `json:"schema:name"`
	URL  Ref    `json:"schema:url"`
}

// Ref is a JSON-LD node reference.
type Ref struct {
	ID string `json:"@id"`
}

type TypedLiteral struct {
	Value string `json:"@value"`
	Type  string `json:"@type"`
}

type TableSchema struct {
	Columns []Column `json:"columns"`
}

// NewSchema builds the metadata document, dated on the calendar day of now.
func NewSchema(p SchemaParams, now time.Time) Schema {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	columns := p.Columns
	if columns == nil {
		columns = []Column{}
	}

	return Schema{
		Context:     []interface{}{csvwNamespace, LanguageContext{Language: contentLanguage}},
		URL:         p.CSVFileName + ".csv",
		Title:       p.Title,
		Description: p.Description,
		Source:      p.Source,
		Keywords:    keywords,
		Publisher: Publisher{
			Name: publisherName,
			URL:  Ref{ID: publisherURL},
		},
		License: Ref{ID: p.LicenseURL},
		Modified: TypedLiteral{
			Value: models.NewDate(now).String(),
			Type:  xsdDate,
		},
		TableSchema: TableSchema{Columns: columns},
	}
}

// Marshal renders the document with four-space indentation. Slashes and
// non-ASCII characters are written literally.
func (s Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteSchema writes the metadata document for p to path, replacing any
// existing file. The document is dated today.
func WriteSchema(path string, p SchemaParams) error {
	data, err := NewSchema(p, time.Now()).Marshal()
	if err != nil {
		return fmt.Errorf("encoding csvw schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing csvw schema: %w", err)
	}
	return nil
}
