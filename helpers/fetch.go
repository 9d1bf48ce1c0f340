package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/spektr-org/tally/engine"
	apperr "github.com/spektr-org/tally/internal/errors"
)

// MaxFetchBytes caps the size of a remote dataset. Larger bodies are a
// load failure rather than a truncated table.
var MaxFetchBytes int64 = 32 << 20

// Fetch downloads a dataset over HTTP(S). The request is bound to ctx, a
// non-2xx status is a load failure, and the format is taken from the
// Content-Type header or, failing that, the URL's extension.
func Fetch(ctx context.Context, client *http.Client, url string) (*engine.SliceView, LoadReport, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, LoadReport{Source: url}, apperr.LoadFailed(url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, LoadReport{Source: url}, apperr.LoadFailed(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, LoadReport{Source: url}, apperr.LoadFailed(url, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes+1))
	if err != nil {
		return nil, LoadReport{Source: url}, apperr.LoadFailed(url, err)
	}
	if int64(len(body)) > MaxFetchBytes {
		return nil, LoadReport{Source: url}, apperr.LoadFailed(url, fmt.Errorf("dataset exceeds %d bytes", MaxFetchBytes))
	}

	format := DetectFormat(urlPath(url), resp.Header.Get("Content-Type"))
	return Parse(bytes.NewReader(body), format, url)
}

// urlPath drops the query and fragment so the extension can be read.
func urlPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return path.Base(raw)
}
