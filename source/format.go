package source

import (
	"strings"

	"github.com/quillql/quill-wasm/errors"
)

// Format names a decoder for fetched bytes.
type Format string

const (
	FormatAuto Format = ""     // infer from the locator path
	FormatCSV  Format = "csv"  // header + delimiter options apply
	FormatJSON Format = "json" // JSON array of objects or scalars
	FormatIPC  Format = "ipc"  // arrow IPC stream
)

// FormatOptions is the closed set of decode options a host may pass.
type FormatOptions struct {
	Format    Format
	Delimiter rune // CSV only; 0 means comma
	Header    bool // CSV only; whether row one is a header
}

// ParseFormatOptions converts the host-supplied option map into typed
// options. The key set is closed: anything unknown is rejected with a typed
// error instead of being introspected.
func ParseFormatOptions(raw map[string]any) (FormatOptions, error) {
	opts := FormatOptions{Header: true}
	for key, val := range raw {
		switch key {
		case "format":
			s, ok := val.(string)
			if !ok {
				return FormatOptions{}, badOption(key, "string", val)
			}
			switch Format(strings.ToLower(s)) {
			case FormatCSV:
				opts.Format = FormatCSV
			case FormatJSON:
				opts.Format = FormatJSON
			case FormatIPC:
				opts.Format = FormatIPC
			default:
				return FormatOptions{}, errors.New(errors.KindSource).
					Op("register-source").
					Path(key).
					Detail("unknown format %q (want csv, json or ipc)", s).
					Build()
			}
		case "delimiter":
			s, ok := val.(string)
			if !ok || len([]rune(s)) != 1 {
				return FormatOptions{}, badOption(key, "single-character string", val)
			}
			opts.Delimiter = []rune(s)[0]
		case "header":
			b, ok := val.(bool)
			if !ok {
				return FormatOptions{}, badOption(key, "bool", val)
			}
			opts.Header = b
		default:
			return FormatOptions{}, errors.New(errors.KindSource).
				Op("register-source").
				Path(key).
				Detail("unknown format option %q", key).
				Build()
		}
	}
	return opts, nil
}

func badOption(key, want string, got any) *errors.Error {
	return errors.New(errors.KindSource).
		Op("register-source").
		Path(key).
		Detail("option %q must be a %s, got %T", key, want, got).
		Build()
}

// inferFormat picks a decoder from the locator path extension when the host
// did not name one.
func inferFormat(loc Locator, opts FormatOptions) (Format, error) {
	if opts.Format != FormatAuto {
		return opts.Format, nil
	}
	path := loc.Rest
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(path, ".arrow"), strings.HasSuffix(path, ".ipc"):
		return FormatIPC, nil
	}
	return FormatAuto, errors.Source("register-source",
		"cannot infer format for %q; pass format_options.format", loc.Raw)
}
