package model

import (
	"errors"
	"testing"
)

// TestNewReport tests the Report constructor.
func TestNewReport(t *testing.T) {
	t.Parallel()

	report := NewReport("https://example.com")

	if report.Target != "https://example.com" {
		t.Errorf("expected target to be set, got %q", report.Target)
	}
	if report.ID == "" {
		t.Error("expected non-empty ID")
	}
	if report.DateInspected.IsZero() {
		t.Error("expected DateInspected to be set")
	}
	if report.SocialImages == nil {
		t.Error("expected SocialImages map to be initialized")
	}

	other := NewReport("https://example.com")
	if other.ID == report.ID {
		t.Error("expected every report to get a distinct ID")
	}
}

// TestReportSortIcons tests ordering icons by descending area.
func TestReportSortIcons(t *testing.T) {
	t.Parallel()

	report := NewReport("https://example.com")
	report.Icons = []AssetReference{
		{URL: "https://example.com/16.png", Width: 16, Height: 16},
		{URL: "https://example.com/180.png", Width: 180, Height: 180},
		{URL: "https://example.com/32.png", Width: 32, Height: 32},
		{URL: "https://example.com/32b.png", Width: 32, Height: 32},
	}

	report.SortIcons()

	want := []string{
		"https://example.com/180.png",
		"https://example.com/32.png",
		"https://example.com/32b.png",
		"https://example.com/16.png",
	}
	for i, icon := range report.Icons {
		if icon.URL != want[i] {
			t.Errorf("icon %d: got %q, want %q", i, icon.URL, want[i])
		}
	}
}

// TestReportAddError tests error recording.
func TestReportAddError(t *testing.T) {
	t.Parallel()

	t.Run("records error message", func(t *testing.T) {
		t.Parallel()

		report := NewReport("https://example.com")
		report.AddError(errors.New("probe failed"))

		if !report.HasErrors() {
			t.Fatal("expected HasErrors to be true")
		}
		if report.Errors[0] != "probe failed" {
			t.Errorf("unexpected error message %q", report.Errors[0])
		}
	})

	t.Run("ignores nil error", func(t *testing.T) {
		t.Parallel()

		report := NewReport("https://example.com")
		report.AddError(nil)

		if report.HasErrors() {
			t.Error("expected no errors")
		}
	})
}

// TestReportSummarize tests the history summary counts.
func TestReportSummarize(t *testing.T) {
	t.Parallel()

	report := NewReport("https://example.com")
	report.ThemeColors = []string{"#FF0000", "#00FF00"}
	report.Icons = []AssetReference{{URL: "a", Width: 1, Height: 1}}
	report.SocialImages[SocialOpenGraph] = AssetReference{URL: "b", Width: 2, Height: 2}
	report.TechStack = []string{"React", "Next.js", "Stripe"}

	summary := report.Summarize()

	if summary.ThemeColors != 2 {
		t.Errorf("expected 2 theme colors, got %d", summary.ThemeColors)
	}
	if summary.Icons != 1 {
		t.Errorf("expected 1 icon, got %d", summary.Icons)
	}
	if summary.SocialImages != 1 {
		t.Errorf("expected 1 social image, got %d", summary.SocialImages)
	}
	if summary.TechStack != 3 {
		t.Errorf("expected 3 technologies, got %d", summary.TechStack)
	}
	if report.ImageCount() != 2 {
		t.Errorf("expected image count 2, got %d", report.ImageCount())
	}
}

// TestAssetReference tests area and size helpers.
func TestAssetReference(t *testing.T) {
	t.Parallel()

	a := AssetReference{URL: "https://example.com/icon.png", Width: 48, Height: 32}

	if a.Area() != 1536 {
		t.Errorf("expected area 1536, got %d", a.Area())
	}
	if a.Size() != "48x32" {
		t.Errorf("expected size 48x32, got %q", a.Size())
	}
}

// TestSocialImageKind tests kind labels.
func TestSocialImageKind(t *testing.T) {
	t.Parallel()

	kinds := SocialImageKinds()
	if len(kinds) != 6 {
		t.Fatalf("expected 6 kinds, got %d", len(kinds))
	}

	for _, kind := range kinds {
		if kind.Label() == string(kind) {
			t.Errorf("expected a display label for %q", kind)
		}
	}

	if SocialImageKind("custom").Label() != "custom" {
		t.Error("expected unknown kind to fall back to its value")
	}
}
