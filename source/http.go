package source

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/quillql/quill-wasm/errors"
)

// fetch retrieves a remote payload. Transport and status failures are io
// errors so the host can tell a dead endpoint from a bad payload. Under
// js/wasm net/http routes through the Fetch API, so the same code serves
// both builds.
func fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, errors.New(errors.KindSource).
			Op("query").
			Path(rawURL).
			Cause(err).
			Detail("malformed url").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.KindSource).
			Op("query").
			Path(rawURL).
			Cause(err).
			Build()
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.IO("query", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.KindIO).
			Op("query").
			Path(rawURL).
			Detail("unexpected status %s", resp.Status).
			Build()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.IO("query", err)
	}
	return data, nil
}
