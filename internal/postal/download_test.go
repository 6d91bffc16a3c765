package postal

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usPostalTSV = "US\t90210\tBeverly Hills\tCalifornia\tCA\tLos Angeles\t037\t\t\t34.0901\t-118.4065\t4\n" +
	"US\t10001\tNew York\tNew York\tNY\tNew York\t061\t\t\t40.7506\t-73.9972\t4\n" +
	"US\t99999\tNo Coords\tNowhere\tNW\t\t\t\t\t\t\t\n" +
	"US\t\tMissing Postal\tCalifornia\tCA\t\t\t\t\t34.0\t-118.0\t4\n" +
	"truncated line\n"

// postalZip builds an in-memory GeoNames-style zip with CC.txt inside.
func postalZip(t *testing.T, country, tsv string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(country + ".txt")
	require.NoError(t, err)
	_, err = f.Write([]byte(tsv))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseRows(t *testing.T) {
	records, err := parseRows(strings.NewReader(usPostalTSV))
	require.NoError(t, err)

	// The empty-postal and truncated lines are skipped.
	require.Len(t, records, 3)

	assert.Equal(t, "90210", records[0].PostalCode)
	assert.Equal(t, "Beverly Hills", records[0].PlaceName)
	assert.Equal(t, "California", records[0].StateName)
	assert.Equal(t, "CA", records[0].StateCode)
	assert.Equal(t, "Los Angeles", records[0].CountyName)
	require.NotNil(t, records[0].Latitude)
	assert.InDelta(t, 34.0901, *records[0].Latitude, 0.0001)

	// Rows without coordinates keep nil pointers, never 0.
	assert.Nil(t, records[2].Latitude)
	assert.Nil(t, records[2].Longitude)
}

func TestLazyCountryDownload(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.Equal(t, "/US.zip", r.URL.Path)
		w.Write(postalZip(t, "US", usPostalTSV))
	}))
	defer srv.Close()

	d, err := Open(t.TempDir(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer d.Close()

	rec, err := d.QueryPostalCode(context.Background(), "US", "90210")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Beverly Hills", rec.PlaceName)
	assert.Equal(t, 1, hits)

	// Second query reuses the loaded rows.
	rec, err = d.QueryPostalCode(context.Background(), "US", "10001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, hits)
}

func TestDownloadPersistsAcrossReopen(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(postalZip(t, "US", usPostalTSV))
	}))
	defer srv.Close()

	dir := t.TempDir()

	d, err := Open(dir, WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = d.QueryPostalCode(context.Background(), "US", "90210")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d2, err := Open(dir, WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer d2.Close()

	rec, err := d2.QueryPostalCode(context.Background(), "US", "90210")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, hits)
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d, err := Open(t.TempDir(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer d.Close()

	_, err = d.QueryPostalCode(context.Background(), "XX", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadRetryAfterFailure(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write(postalZip(t, "US", usPostalTSV))
	}))
	defer srv.Close()

	d, err := Open(t.TempDir(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer d.Close()

	// The dataset makes no retries of its own; a failed load just leaves
	// the country unloaded for the next query to try again.
	_, err = d.QueryPostalCode(context.Background(), "US", "90210")
	require.Error(t, err)

	rec, err := d.QueryPostalCode(context.Background(), "US", "90210")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, hits)
}

func TestEnsureCountries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".zip")
		w.Write(postalZip(t, cc, cc+"\t111\tSomeplace\tState\tST\t\t\t\t\t10.0\t20.0\t4\n"))
	}))
	defer srv.Close()

	d, err := Open(t.TempDir(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.EnsureCountries(context.Background(), []string{"US", "DE", "FR"}))

	for _, cc := range []string{"US", "DE", "FR"} {
		rec, err := d.QueryPostalCode(context.Background(), cc, "111")
		require.NoError(t, err)
		require.NotNil(t, rec, cc)
	}
}
