package ckan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckan-publisher/internal/common/logger"
)

func testResourceParams() ResourceParams {
	return ResourceParams{
		ResourceID:  "res-1",
		URL:         "https://data.example.org/files/testing.csv",
		Title:       "Testing",
		Description: "Daily tests",
		LicenseURL:  "https://data.gov.cz/podmínky-užití/volný-přístup/",
		StartDate:   "2020-03-01",
	}
}

func TestUpdateResourcePayload(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{
		ok(`{"success": true, "result": {"id": "res-1"}}`),
	}}

	err := newTestClient(doer).UpdateResource(context.Background(), testAPIKey, testResourceParams())
	require.NoError(t, err)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, "/api/3/action/resource_update", doer.requests[0].Path)
	assert.Equal(t, testAPIKey, doer.requests[0].Header.Get("Authorization"))
	assert.JSONEq(t, `{
		"id": "res-1",
		"url": "https://data.example.org/files/testing.csv",
		"format": "CSV",
		"describedBy": "https://data.example.org/files/testing.csv-metadata.json",
		"describedByType": "application/csvm+json",
		"license_link": "https://data.gov.cz/podmínky-užití/volný-přístup/",
		"mimetype": "application/csv",
		"name": "Testing",
		"description": "Daily tests",
		"temporal_start": "2020-03-01",
		"temporal_end": "2024-05-06",
		"last_modified": "2024-05-06"
	}`, doer.requests[0].Body)
}

func TestUpdateResourceKeepsGivenEndDate(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{
		ok(`{"success": true, "result": {"id": "res-1"}}`),
	}}

	p := testResourceParams()
	p.EndDate = "2023-01-01"
	require.NoError(t, newTestClient(doer).UpdateResource(context.Background(), testAPIKey, p))

	body := decodeBody(t, doer.requests[0].Body)
	assert.Equal(t, "2023-01-01", body["temporal_end"])
	assert.Equal(t, "2024-05-06", body["last_modified"])
}

func TestUpdateResourceDefaultsToSystemClock(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{
		ok(`{"success": true, "result": {"id": "res-1"}}`),
	}}

	before := time.Now().Format("2006-01-02")
	c := New("https://ckan.example.org", logger.Nop(), WithDoer(doer))
	require.NoError(t, c.UpdateResource(context.Background(), testAPIKey, testResourceParams()))
	after := time.Now().Format("2006-01-02")

	end := decodeBody(t, doer.requests[0].Body)["temporal_end"]
	assert.Contains(t, []string{before, after}, end)
}

func TestUpdateResourceFailure(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{
		ok(`{"success": false, "error": {"message": "boom"}}`),
	}}

	err := newTestClient(doer).UpdateResource(context.Background(), testAPIKey, testResourceParams())
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	doer = &fakeDoer{responses: []cannedResponse{ok(`{"success": false}`)}}
	err = newTestClient(doer).UpdateResource(context.Background(), testAPIKey, testResourceParams())
	require.Error(t, err)
	assert.Equal(t, "UpdateResource: Undefined error.", err.Error())
}

func TestShowResource(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{
		ok(`{"success": true, "result": {
			"id": "res-1",
			"package_id": "pkg-1",
			"name": "Testing",
			"url": "https://data.example.org/files/testing.csv",
			"format": "CSV",
			"last_modified": "2024-05-01T08:30:00.123456"
		}}`),
	}}

	res, err := newTestClient(doer).ShowResource(context.Background(), testAPIKey, "res-1")
	require.NoError(t, err)

	assert.Equal(t, "pkg-1", res.PackageID)
	assert.Equal(t, "CSV", res.Format)
	assert.Equal(t, "2024-05-01", res.LastModified.String())
}

func TestUpdateResourceAcceptsEmptyResult(t *testing.T) {
	for name, body := range map[string]string{
		"null result":    `{"success": true, "result": null}`,
		"missing result": `{"success": true}`,
	} {
		t.Run(name, func(t *testing.T) {
			doer := &fakeDoer{responses: []cannedResponse{ok(body)}}

			err := newTestClient(doer).UpdateResource(context.Background(), testAPIKey, testResourceParams())
			require.NoError(t, err)
		})
	}
}

func TestShowResourceRejectsNullResult(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{ok(`{"success": true, "result": null}`)}}

	_, err := newTestClient(doer).ShowResource(context.Background(), testAPIKey, "res-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ShowResource", apiErr.Operation)
}
