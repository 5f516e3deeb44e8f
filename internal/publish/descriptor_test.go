package publish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptorYAML = `
name: testing
title: Testy
description: Denní počty testů
license_url: https://data.gov.cz/podmínky-užití/volný-přístup/
source: https://www.uzis.cz/sources/testing
keywords: [covid, testy]
columns:
  - name: datum
    titles: Datum
    datatype: date
  - name: pocet
    titles: Počet
    datatype: integer
headers: [datum, pocet]
rows:
  - ["2024-05-01", "10"]
  - ["2024-05-02", "12"]
resource:
  id: res-1
  url: https://data.example.org/files/testing.csv
  start_date: "2020-03-01"
dataset:
  title: Covid testing
  description: Daily testing numbers
`

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDescriptor(t *testing.T) {
	path := writeDescriptor(t, descriptorYAML)

	d, err := LoadDescriptor(path)
	require.NoError(t, err)
	require.NoError(t, d.Validate())

	assert.Equal(t, "testing", d.Name)
	assert.Equal(t, filepath.Dir(path), d.OutputDir)
	assert.Equal(t, []string{"covid", "testy"}, d.Keywords)
	assert.Equal(t, [][]string{{"2024-05-01", "10"}, {"2024-05-02", "12"}}, d.Rows)
	require.Len(t, d.Columns, 2)
	titles, ok := d.Columns[1].Get("titles")
	require.True(t, ok)
	assert.Equal(t, "Počet", titles)
	assert.Equal(t, []string{"name", "titles", "datatype"}, d.Columns[1].Keys())
	require.NotNil(t, d.Resource)
	assert.Equal(t, "2020-03-01", d.Resource.StartDate)
	assert.Empty(t, d.Resource.EndDate)
	require.NotNil(t, d.Dataset)
	assert.Equal(t, "Covid testing", d.Dataset.Title)

	assert.Equal(t, filepath.Join(d.OutputDir, "testing.csv"), d.CSVPath())
	assert.Equal(t, filepath.Join(d.OutputDir, "testing.csv-metadata.json"), d.SchemaPath())
	assert.Equal(t, "testing", d.SchemaParams().CSVFileName)
}

func TestLoadDescriptorKeepsOutputDir(t *testing.T) {
	path := writeDescriptor(t, "name: x\noutput_dir: /srv/opendata\n")

	d, err := LoadDescriptor(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/opendata", d.OutputDir)
}

func TestLoadDescriptorErrors(t *testing.T) {
	_, err := LoadDescriptor(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadDescriptor(writeDescriptor(t, "name: [unclosed"))
	assert.Error(t, err)
}

func TestDescriptorValidate(t *testing.T) {
	d := &Descriptor{Resource: &ResourceTarget{}}

	err := d.Validate()
	require.Error(t, err)
	for _, field := range []string{"name", "title", "license_url", "resource.id", "resource.url", "resource.start_date"} {
		assert.Contains(t, err.Error(), field)
	}

	d = &Descriptor{Name: "x", Title: "t", LicenseURL: "l", Dataset: &DatasetTarget{Title: "t"}}
	err = d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset requires a resource")
}
