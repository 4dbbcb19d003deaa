// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zenodo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zenodo-get/pkg/types"
)

const sampleRecordJSON = `{
  "id": 1215979,
  "doi": "10.5281/zenodo.1215979",
  "metadata": {
    "title": "OpenCare dataset",
    "doi": "10.5281/zenodo.1215979",
    "keywords": ["ethnography", "open care"],
    "publication_date": "2018-04-06"
  },
  "files": [
    {
      "key": "fetch_data.py",
      "checksum": "md5:d41d8cd98f00b204e9800998ecf8427e",
      "size": 4375,
      "links": {"self": "https://zenodo.org/api/files/abc/fetch_data.py"}
    },
    {
      "key": "opencare-tags-anonymized.json",
      "checksum": "md5:9a0364b9e99bb480dd25e1f0284c8555",
      "size": 1182347,
      "links": {"self": "https://zenodo.org/api/files/abc/opencare-tags-anonymized.json"}
    }
  ]
}`

func testConfig() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "zenodo-get/test",
		MaxRetries:    3,
		BackoffFactor: time.Millisecond,
	}
}

// withRecordsBase points the package at ts for the duration of the test.
func withRecordsBase(t *testing.T, ts *httptest.Server) {
	t.Helper()
	orig := RecordsAPIBase
	RecordsAPIBase = ts.URL + "/api/records/"
	t.Cleanup(func() { RecordsAPIBase = orig })
}

func TestGetRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/records/1215979", r.URL.Path)
		assert.Equal(t, "zenodo-get/test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleRecordJSON)
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "")
	rec, err := c.GetRecord(context.Background(), 1215979)
	require.NoError(t, err)

	assert.Equal(t, int64(1215979), rec.ID)
	assert.Equal(t, "OpenCare dataset", rec.Metadata.Title)
	assert.Equal(t, []string{"ethnography", "open care"}, rec.Metadata.Keywords)
	require.Len(t, rec.Files, 2)
	// Manifest order must match server order.
	assert.Equal(t, "fetch_data.py", rec.Files[0].Key)
	assert.Equal(t, "opencare-tags-anonymized.json", rec.Files[1].Key)
	assert.Equal(t, "md5:d41d8cd98f00b204e9800998ecf8427e", rec.Files[0].Checksum)
	assert.Equal(t, int64(4375), rec.Files[0].Size)
	assert.Equal(t, "https://zenodo.org/api/files/abc/fetch_data.py", rec.Files[0].Links.Self)
	assert.Equal(t, int64(1186722), rec.TotalSize())
}

func TestGetRecordNotFound(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "")
	_, err := c.GetRecord(context.Background(), 999999999)
	require.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "404 must not be retried")
}

func TestGetRecordRetriesTransientErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleRecordJSON)
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "")
	rec, err := c.GetRecord(context.Background(), 1215979)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, rec.Files, 2)
}

func TestGetRecordServerErrorExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "")
	_, err := c.GetRecord(context.Background(), 1215979)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGetRecordAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekrit", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleRecordJSON)
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "sekrit")
	_, err := c.GetRecord(context.Background(), 1215979)
	require.NoError(t, err)
}

func TestGetRecordMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer ts.Close()
	withRecordsBase(t, ts)

	c := NewClient(ts.Client(), testConfig(), false, "")
	_, err := c.GetRecord(context.Background(), 1215979)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing record")
}
