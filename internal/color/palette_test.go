package color

import (
	"fmt"
	"testing"
)

func TestPalette(t *testing.T) {
	t.Parallel()

	t.Run("keeps first-seen order and drops duplicates", func(t *testing.T) {
		t.Parallel()

		p := NewPalette(DefaultPaletteSize)
		p.Add("rgb(255, 0, 0)")
		p.Add("rgb(0, 128, 255)")
		p.Add("#ff0000")
		p.Add("rgb(255, 0, 0)")

		got := p.Colors()
		want := []string{"#FF0000", "#0080FF"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("color %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("skips invalid colors", func(t *testing.T) {
		t.Parallel()

		p := NewPalette(DefaultPaletteSize)
		for _, c := range []string{"transparent", "rgb(0, 0, 0)", "rgb(255, 255, 255)", "rgba(255, 0, 0, 0.1)"} {
			if p.Add(c) {
				t.Errorf("expected %q to be rejected", c)
			}
		}
		if p.Len() != 0 {
			t.Errorf("expected empty palette, got %v", p.Colors())
		}
	})

	t.Run("never exceeds its limit", func(t *testing.T) {
		t.Parallel()

		p := NewPalette(DefaultPaletteSize)
		for i := 0; i < 40; i++ {
			p.Add(fmt.Sprintf("rgb(%d, 40, 200)", 20+i*5))
		}

		if p.Len() != DefaultPaletteSize {
			t.Errorf("expected %d colors, got %d", DefaultPaletteSize, p.Len())
		}
		if !p.Full() {
			t.Error("expected palette to be full")
		}

		seen := make(map[string]bool)
		for _, c := range p.Colors() {
			if seen[c] {
				t.Errorf("duplicate color %q", c)
			}
			seen[c] = true
		}
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		t.Parallel()

		p := NewPalette(0)
		if p.limit != DefaultPaletteSize {
			t.Errorf("expected limit %d, got %d", DefaultPaletteSize, p.limit)
		}
	})

	t.Run("colors returns a copy", func(t *testing.T) {
		t.Parallel()

		p := NewPalette(2)
		p.Add("rgb(255, 0, 0)")
		colors := p.Colors()
		colors[0] = "#000000"

		if p.Colors()[0] != "#FF0000" {
			t.Error("expected palette to be unaffected by caller mutation")
		}
	})
}
