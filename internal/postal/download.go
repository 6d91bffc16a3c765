package postal

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sells-group/geogpt/internal/geo"
)

const defaultBaseURL = "https://download.geonames.org/export/zip"

// ensureCacheDir creates the cache directory and returns the sqlite path.
func ensureCacheDir(cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "postal: create cache dir %s", cacheDir)
	}
	return filepath.Join(cacheDir, "postal.db"), nil
}

// downloadCountry fetches and parses the GeoNames postal dump for one
// country. The zip is staged in the cache dir and removed after parsing.
func (d *Dataset) downloadCountry(ctx context.Context, country string) ([]geo.Record, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "postal: download rate limit")
	}

	url := fmt.Sprintf("%s/%s.zip", d.baseURL, strings.ToUpper(country))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "postal: create request %s", url)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "postal: download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("postal: download %s: status %d", url, resp.StatusCode)
	}

	tmp := filepath.Join(d.cacheDir, fmt.Sprintf("%s-%s.zip.tmp", country, uuid.NewString()))
	out, err := os.Create(tmp)
	if err != nil {
		return nil, eris.Wrapf(err, "postal: create %s", tmp)
	}
	defer os.Remove(tmp)
	defer out.Close()

	var w io.Writer = out
	if d.progress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("downloading "+strings.ToUpper(country)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, eris.Wrapf(err, "postal: write %s", tmp)
	}
	if err := out.Close(); err != nil {
		return nil, eris.Wrapf(err, "postal: close %s", tmp)
	}

	records, err := parseCountryZip(tmp, country)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("postal dataset downloaded",
		zap.String("country", country),
		zap.String("url", url),
		zap.Int("rows", len(records)),
	)
	return records, nil
}

// parseCountryZip extracts CC.txt from a GeoNames postal zip and parses
// its tab-separated rows.
func parseCountryZip(path, country string) ([]geo.Record, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, eris.Wrapf(err, "postal: open zip %s", path)
	}
	defer zr.Close()

	want := strings.ToUpper(country) + ".txt"
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Base(f.Name), want) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "postal: open zip entry %s", f.Name)
		}
		defer rc.Close()
		return parseRows(rc)
	}
	return nil, eris.Errorf("postal: %s not found in %s", want, path)
}

// parseRows reads GeoNames postal TSV rows. Columns: country code,
// postal code, place name, admin1 name/code, admin2 name/code, admin3
// name/code, latitude, longitude, accuracy. Malformed rows are skipped.
func parseRows(r io.Reader) ([]geo.Record, error) {
	var records []geo.Record

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 11 {
			continue
		}

		rec := geo.Record{
			CountryCode: strings.TrimSpace(fields[0]),
			PostalCode:  strings.TrimSpace(fields[1]),
			PlaceName:   strings.TrimSpace(fields[2]),
			StateName:   strings.TrimSpace(fields[3]),
			StateCode:   strings.TrimSpace(fields[4]),
			CountyName:  strings.TrimSpace(fields[5]),
		}
		if rec.PostalCode == "" || rec.PlaceName == "" {
			continue
		}

		if lat, err := strconv.ParseFloat(strings.TrimSpace(fields[9]), 64); err == nil {
			if lng, err := strconv.ParseFloat(strings.TrimSpace(fields[10]), 64); err == nil {
				rec.Latitude = &lat
				rec.Longitude = &lng
			}
		}

		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "postal: scan rows")
	}
	return records, nil
}
