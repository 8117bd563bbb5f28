package photometry

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/units"
)

// DefaultSVOURL is the data endpoint of the SVO Filter Profile Service.
const DefaultSVOURL = "http://svo2.cab.inta-csic.es/theory/fps/getdata.php"

// Fetcher retrieves filter bands missing from the local library.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*Band, error)
}

// SVOConfig configures the SVO fetcher.
type SVOConfig struct {
	URL        string
	HTTPClient *http.Client
	// MaxTries bounds the attempts per filter. The default of 1 makes a single
	// request, higher values retry transient failures with backoff.
	MaxTries uint
}

// SVOFetcher downloads transmission curves from the SVO Filter Profile Service.
// Filter identifiers look like "2MASS/2MASS.J".
type SVOFetcher struct {
	cfg SVOConfig
}

// NewSVOFetcher creates a fetcher, filling the defaults of cfg.
func NewSVOFetcher(cfg SVOConfig) *SVOFetcher {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultSVOURL
	}

	if cfg.MaxTries == 0 {
		cfg.MaxTries = 1
	}

	return &SVOFetcher{cfg: cfg}
}

// BandName is the name given to a fetched band, e.g. "2MASS_2MASS_J" for "2MASS/2MASS.J".
func BandName(id string) string {
	return strings.NewReplacer("/", "_", ".", "_").Replace(id)
}

func (f *SVOFetcher) Fetch(ctx context.Context, id string) (*Band, error) {
	u, err := url.Parse(f.cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse SVO url")
	}

	q := u.Query()
	q.Set("format", "ascii")
	q.Set("id", id)
	u.RawQuery = q.Encode()

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return f.get(ctx, u.String())
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(f.cfg.MaxTries))
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", id)
	}

	wave, trans, err := parseTable(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", id)
	}

	return NewBand(BandName(id), units.NewQuantity(units.Row(wave), units.Angstrom), trans)
}

func (f *SVOFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(errors.Wrap(err, "unable to build request"))
	}

	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "unable to reach SVO")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read SVO response")
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.Wrapf(ErrFetch, "status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(errors.Wrapf(ErrFetch, "status %d", resp.StatusCode))
	}

	return body, nil
}

// parseTable reads whitespace separated wavelength (angstrom) and transmission
// columns. Blank lines and lines starting with # are skipped.
func parseTable(r io.Reader) ([]float64, []float64, error) {
	var wave, trans []float64

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, errors.Wrapf(ErrFetch, "line %d: want 2 columns, got %d", line, len(fields))
		}

		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(ErrFetch, "line %d: %v", line, err)
		}

		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(ErrFetch, "line %d: %v", line, err)
		}

		wave = append(wave, w)
		trans = append(trans, t)
	}

	err := scanner.Err()
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to read table")
	}

	if len(wave) == 0 {
		return nil, nil, errors.Wrap(ErrFetch, "empty table")
	}

	return wave, trans, nil
}

var _ Fetcher = (*SVOFetcher)(nil)
