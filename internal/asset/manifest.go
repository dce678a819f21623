package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// maxManifestBytes limits the size of a web app manifest.
const maxManifestBytes = 1 << 20

// Manifest is the part of a web app manifest that lists icons.
type Manifest struct {
	Name      string         `json:"name"`
	ShortName string         `json:"short_name"`
	Icons     []ManifestIcon `json:"icons"`
}

// ManifestIcon is one entry of a manifest's icons member.
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// ManifestIcons fetches a web app manifest and returns the absolute URLs of
// its icons, resolved against the manifest URL, without duplicates.
func (r *Resolver) ManifestIcons(ctx context.Context, manifestURL string) ([]string, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL %q: %w", manifestURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	b, err := open(ctx, r.client, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer b.Close()

	var m Manifest
	if err := json.NewDecoder(io.LimitReader(b, maxManifestBytes)).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Icons))
	icons := make([]string, 0, len(m.Icons))
	for _, icon := range m.Icons {
		src := strings.TrimSpace(icon.Src)
		if src == "" {
			continue
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref).String()
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		icons = append(icons, abs)
	}
	return icons, nil
}
