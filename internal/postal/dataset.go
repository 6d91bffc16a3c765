// Package postal implements the offline postal-code dataset tier.
//
// Country files come from the GeoNames postal dump and are parsed once
// into a sqlite database under the cache directory; subsequent runs skip
// the download entirely. The dataset is read-only after load.
package postal

import (
	"context"
	"database/sql"
	"math"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geogpt/internal/geo"
)

// Dataset wraps the sqlite-backed GeoNames postal dataset. It implements
// geo.Dataset. Countries are fetched lazily on first query.
type Dataset struct {
	db         *sql.DB
	cacheDir   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	progress   bool

	mu      sync.Mutex
	loaded  map[string]bool
	pending map[string]chan struct{}
}

// Option configures the Dataset.
type Option func(*Dataset)

// WithBaseURL overrides the GeoNames download base URL.
func WithBaseURL(url string) Option {
	return func(d *Dataset) { d.baseURL = url }
}

// WithHTTPClient overrides the download HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Dataset) { d.httpClient = hc }
}

// WithProgress enables a download progress bar on interactive terminals.
func WithProgress(enabled bool) Option {
	return func(d *Dataset) { d.progress = enabled }
}

const migration = `
CREATE TABLE IF NOT EXISTS countries (
	code      TEXT PRIMARY KEY,
	rows      INTEGER NOT NULL,
	loaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS postal_codes (
	id          INTEGER PRIMARY KEY,
	country     TEXT NOT NULL,
	postal_code TEXT NOT NULL,
	place_name  TEXT NOT NULL,
	norm_place  TEXT NOT NULL,
	state_name  TEXT,
	state_code  TEXT,
	county_name TEXT,
	latitude    REAL,
	longitude   REAL
);

CREATE INDEX IF NOT EXISTS idx_postal_codes_code  ON postal_codes(country, postal_code);
CREATE INDEX IF NOT EXISTS idx_postal_codes_place ON postal_codes(country, norm_place);
CREATE INDEX IF NOT EXISTS idx_postal_codes_lat   ON postal_codes(country, latitude);
`

// Open opens (creating if needed) the postal dataset under cacheDir.
func Open(cacheDir string, opts ...Option) (*Dataset, error) {
	d := &Dataset{
		cacheDir:   cacheDir,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		loaded:     make(map[string]bool),
		pending:    make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	path, err := ensureCacheDir(cacheDir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "postal: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "postal: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "postal: migrate")
	}
	d.db = db

	rows, err := db.Query(`SELECT code FROM countries`)
	if err != nil {
		db.Close()
		return nil, eris.Wrap(err, "postal: list countries")
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			db.Close()
			return nil, eris.Wrap(err, "postal: scan country")
		}
		d.loaded[code] = true
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "postal: iterate countries")
	}

	return d, nil
}

// Close closes the underlying database.
func (d *Dataset) Close() error {
	return d.db.Close()
}

// QueryPostalCode implements geo.Dataset. A clean miss is (nil, nil).
func (d *Dataset) QueryPostalCode(ctx context.Context, country, code string) (*geo.Record, error) {
	if err := d.ensureCountry(ctx, country); err != nil {
		return nil, err
	}

	row := d.db.QueryRowContext(ctx, `
		SELECT country, postal_code, place_name, state_name, state_code, county_name, latitude, longitude
		FROM postal_codes
		WHERE country = ? AND postal_code = ?
		ORDER BY latitude IS NULL
		LIMIT 1`,
		country, code,
	)
	return scanRecord(row)
}

// QueryCity implements geo.Dataset. Place names are matched on their
// accent-folded lowercase form; the state narrows by name substring or
// exact code, matching the original lookup behavior.
func (d *Dataset) QueryCity(ctx context.Context, country, city, state string) (*geo.Record, error) {
	if err := d.ensureCountry(ctx, country); err != nil {
		return nil, err
	}

	rec, err := d.queryCityNorm(ctx, country, NormalizeName(city), state, false)
	if err != nil || rec != nil {
		return rec, err
	}
	// Prefix fallback covers "St Paul" style partial inputs.
	return d.queryCityNorm(ctx, country, NormalizeName(city), state, true)
}

func (d *Dataset) queryCityNorm(ctx context.Context, country, norm, state string, prefix bool) (*geo.Record, error) {
	query := `
		SELECT country, postal_code, place_name, state_name, state_code, county_name, latitude, longitude
		FROM postal_codes
		WHERE country = ? AND norm_place `
	args := []any{country}
	if prefix {
		query += `LIKE ? || '%'`
	} else {
		query += `= ?`
	}
	args = append(args, norm)

	if state != "" {
		query += ` AND (lower(state_name) LIKE '%' || ? || '%' OR lower(state_code) = ?)`
		s := NormalizeName(state)
		args = append(args, s, s)
	}
	query += ` ORDER BY latitude IS NULL, postal_code LIMIT 1`

	return scanRecord(d.db.QueryRowContext(ctx, query, args...))
}

// QueryRadius implements geo.Dataset. An s2 cap around the reference
// bounds the sqlite scan; exact haversine filtering and the ascending
// sort happen on the survivors.
func (d *Dataset) QueryRadius(ctx context.Context, country string, lat, lng, radiusKm float64) ([]geo.RadiusMatch, error) {
	if err := d.ensureCountry(ctx, country); err != nil {
		return nil, err
	}

	center := s2.LatLngFromDegrees(lat, lng)
	angle := s1.Angle(radiusKm / geo.EarthRadiusKm)
	rect := s2.CapFromCenterAngle(s2.PointFromLatLng(center), angle).RectBound()

	latLo := rect.Lat.Lo * 180 / math.Pi
	latHi := rect.Lat.Hi * 180 / math.Pi
	lngLo := rect.Lng.Lo * 180 / math.Pi
	lngHi := rect.Lng.Hi * 180 / math.Pi

	query := `
		SELECT country, postal_code, place_name, state_name, state_code, county_name, latitude, longitude
		FROM postal_codes
		WHERE country = ? AND latitude BETWEEN ? AND ?`
	args := []any{country, latLo, latHi}

	switch {
	case rect.Lng.IsFull():
		// Cap touches a pole; longitude no longer narrows anything.
	case rect.Lng.IsInverted():
		query += ` AND (longitude >= ? OR longitude <= ?)`
		args = append(args, lngLo, lngHi)
	default:
		query += ` AND longitude BETWEEN ? AND ?`
		args = append(args, lngLo, lngHi)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postal: radius query")
	}
	defer rows.Close()

	var matches []geo.RadiusMatch
	for rows.Next() {
		rec, err := scanRecordFrom(rows)
		if err != nil {
			return nil, err
		}
		if rec.Latitude == nil || rec.Longitude == nil {
			continue
		}
		dist := geo.Haversine(lat, lng, *rec.Latitude, *rec.Longitude)
		if dist > radiusKm {
			continue
		}
		matches = append(matches, geo.RadiusMatch{Record: *rec, DistanceKm: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postal: iterate radius rows")
	}

	sortMatches(matches)
	return matches, nil
}

// EnsureCountries prefetches several country files up front. Downloads
// run concurrently; query-path lookups stay synchronous.
func (d *Dataset) EnsureCountries(ctx context.Context, codes []string) error {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, code := range codes {
		eg.Go(func() error {
			return d.ensureCountry(gCtx, code)
		})
	}
	return eg.Wait()
}

// ensureCountry guarantees the country's rows are present, downloading
// and loading them on first use. Concurrent callers for the same country
// coalesce onto a single download.
func (d *Dataset) ensureCountry(ctx context.Context, country string) error {
	if country == "" {
		return eris.New("postal: empty country code")
	}

	for {
		d.mu.Lock()
		if d.loaded[country] {
			d.mu.Unlock()
			return nil
		}
		if ch, inflight := d.pending[country]; inflight {
			d.mu.Unlock()
			select {
			case <-ch:
				continue // re-check; the loader may have failed
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		ch := make(chan struct{})
		d.pending[country] = ch
		d.mu.Unlock()

		err := d.loadCountry(ctx, country)

		d.mu.Lock()
		if err == nil {
			d.loaded[country] = true
		}
		delete(d.pending, country)
		d.mu.Unlock()
		close(ch)
		return err
	}
}

// loadCountry downloads, parses and stores one GeoNames country file.
func (d *Dataset) loadCountry(ctx context.Context, country string) error {
	start := time.Now()
	records, err := d.downloadCountry(ctx, country)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "postal: begin load tx")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO postal_codes (country, postal_code, place_name, norm_place, state_name, state_code, county_name, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "postal: prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		var lat, lng any
		if r.Latitude != nil {
			lat = *r.Latitude
		}
		if r.Longitude != nil {
			lng = *r.Longitude
		}
		if _, err := stmt.ExecContext(ctx,
			r.CountryCode, r.PostalCode, r.PlaceName, NormalizeName(r.PlaceName),
			r.StateName, r.StateCode, r.CountyName, lat, lng,
		); err != nil {
			return eris.Wrapf(err, "postal: insert %s %s", r.CountryCode, r.PostalCode)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO countries (code, rows) VALUES (?, ?)`,
		country, len(records),
	); err != nil {
		return eris.Wrapf(err, "postal: mark country %s", country)
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "postal: commit load tx")
	}

	zap.L().Info("postal dataset loaded",
		zap.String("country", country),
		zap.Int("rows", len(records)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for record scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row *sql.Row) (*geo.Record, error) {
	rec, err := scanRecordFrom(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanRecordFrom(s rowScanner) (*geo.Record, error) {
	var rec geo.Record
	var stateName, stateCode, county sql.NullString
	var lat, lng sql.NullFloat64

	if err := s.Scan(&rec.CountryCode, &rec.PostalCode, &rec.PlaceName,
		&stateName, &stateCode, &county, &lat, &lng); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "postal: scan record")
	}

	rec.StateName = stateName.String
	rec.StateCode = stateCode.String
	rec.CountyName = county.String
	if lat.Valid {
		rec.Latitude = &lat.Float64
	}
	if lng.Valid {
		rec.Longitude = &lng.Float64
	}
	return &rec, nil
}

func sortMatches(matches []geo.RadiusMatch) {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
}
