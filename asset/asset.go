// Package asset resolves a <link rel=stylesheet> href to the CSS file
// it names on disk. Grounded on
// _examples/original_source/crates/critters-rs/src/lib.rs's
// get_css_asset: strip a leading slash, strip the configured public
// path prefix, reject remote hrefs, and refuse to read anything the
// configured root doesn't actually contain (spec.md §4.6's asset
// resolution step).
package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("critters.asset")
}

// ErrOutOfRoot is returned when an href, once resolved, would read a
// file outside the configured root, such as through a crafted "../"
// traversal. A public path that doesn't prefix the href is simply not
// stripped.
var ErrOutOfRoot = errors.New("asset: resolved path escapes the configured root")

// ErrRemoteAsset is returned when href names a remote stylesheet
// (http://, https://, or a protocol-relative //), which this module
// never fetches over the network.
var ErrRemoteAsset = errors.New("asset: href refers to a remote stylesheet")

// Resolve maps href to an absolute on-disk path under root, stripping
// publicPath as a prefix first. It never touches the filesystem; call
// Read (or os.ReadFile on the result) to actually load the file.
func Resolve(root, publicPath, href string) (string, error) {
	if isRemote(href) {
		return "", ErrRemoteAsset
	}

	normalized := strings.TrimPrefix(href, "/")
	if prefix := strings.Trim(publicPath, "/"); prefix != "" {
		switch {
		case normalized == prefix:
			normalized = ""
		case strings.HasPrefix(normalized, prefix+"/"):
			normalized = strings.TrimPrefix(normalized, prefix+"/")
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("asset: resolving root %q: %w", root, err)
	}
	absRoot = filepath.Clean(absRoot)
	joined := filepath.Clean(filepath.Join(absRoot, normalized))

	if joined != absRoot && !strings.HasPrefix(joined, absRoot+string(filepath.Separator)) {
		return "", ErrOutOfRoot
	}
	return joined, nil
}

// Read resolves href under root/publicPath and reads it as CSS text.
func Read(root, publicPath, href string) (string, error) {
	path, err := Resolve(root, publicPath, href)
	if err != nil {
		tracer().Errorf("resolving asset %q: %v", href, err)
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tracer().Errorf("reading asset %q at %q: %v", href, path, err)
		return "", fmt.Errorf("asset: reading %q: %w", path, err)
	}
	return string(data), nil
}

func isRemote(href string) bool {
	return strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "//")
}
