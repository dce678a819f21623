package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Home</title></head><body><h1>Hi</h1></body></html>`))
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9</title></head><body></body></html>"))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestPageLoaderLoad(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	loader := NewPageLoader(server.Client())

	t.Run("loads an HTML page", func(t *testing.T) {
		t.Parallel()

		doc, err := loader.Load(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Title() != "Home" {
			t.Errorf("Title() = %q", doc.Title())
		}
		if doc.Lang() != "en" {
			t.Errorf("Lang() = %q", doc.Lang())
		}
		if doc.Charset() != "utf-8" {
			t.Errorf("Charset() = %q, want the declared utf-8", doc.Charset())
		}
		if !doc.Exists("h1") {
			t.Error("expected h1 to exist")
		}
	})

	t.Run("transcodes legacy encodings", func(t *testing.T) {
		t.Parallel()

		doc, err := loader.Load(context.Background(), server.URL+"/latin1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Title() != "Café" {
			t.Errorf("Title() = %q, want Café", doc.Title())
		}
		if doc.Charset() != "WINDOWS-1252" {
			t.Errorf("Charset() = %q, want WINDOWS-1252", doc.Charset())
		}
	})

	t.Run("reports the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		doc, err := loader.Load(context.Background(), server.URL+"/old")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.URL().Path != "/" {
			t.Errorf("URL().Path = %q, want /", doc.URL().Path)
		}
	})

	t.Run("rejects error statuses", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Load(context.Background(), server.URL+"/missing")
		if !errors.Is(err, ErrBadStatus) {
			t.Errorf("expected ErrBadStatus, got %v", err)
		}
	})

	t.Run("rejects non-HTML responses", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Load(context.Background(), server.URL+"/data.json")
		if !errors.Is(err, ErrNotHTML) {
			t.Errorf("expected ErrNotHTML, got %v", err)
		}
	})

	t.Run("rejects invalid targets", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Load(context.Background(), "ftp://example.com/")
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("expected ErrInvalidTarget, got %v", err)
		}
	})

	if loader.Name() != "static" {
		t.Errorf("Name() = %q", loader.Name())
	}
}

func TestNormalizeTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare host", input: "example.com", want: "https://example.com"},
		{name: "host and path", input: " example.com/blog ", want: "https://example.com/blog"},
		{name: "http kept", input: "http://example.com/", want: "http://example.com/"},
		{name: "empty", input: "  ", wantErr: true},
		{name: "unsupported scheme", input: "ftp://example.com", wantErr: true},
		{name: "missing host", input: "https:///path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeTarget(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Errorf("expected ErrInvalidTarget, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsHTML(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"":                         true,
		"text/html":                true,
		"text/html; charset=utf-8": true,
		"application/xhtml+xml":    true,
		"application/json":         false,
		"image/png":                false,
	}
	for contentType, want := range tests {
		if got := isHTML(contentType); got != want {
			t.Errorf("isHTML(%q) = %v, want %v", contentType, got, want)
		}
	}
}
