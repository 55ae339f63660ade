package theme

import (
	"strings"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	if len(c.Themes) != 6 {
		t.Fatalf("themes = %d, want 6", len(c.Themes))
	}
	if len(c.Modes) != 6 {
		t.Fatalf("modes = %d, want 6", len(c.Modes))
	}
	if len(c.Presets) != 4 {
		t.Fatalf("presets = %d, want 4", len(c.Presets))
	}
	for _, th := range c.Themes {
		if len(th.Lights) != 3 {
			t.Errorf("%s: %d lights, want 3", th.ID, len(th.Lights))
		}
	}
}

func TestLookups(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}

	th, ok := c.Theme("matrix")
	if !ok {
		t.Fatal("matrix theme missing")
	}
	if th.BarHueOffset != 0.33 {
		t.Fatalf("matrix bar_hue_offset = %v", th.BarHueOffset)
	}
	if got := th.WaveRGB().Hex(); got != "#00ff44" {
		t.Fatalf("matrix wave colour = %s", got)
	}

	m, ok := c.Mode("galaxy")
	if !ok {
		t.Fatal("galaxy mode missing")
	}
	if m.Sphere || m.Bars || !m.Particles || !m.Waveform {
		t.Fatalf("galaxy mode = %+v", m)
	}

	if _, ok := c.Theme("nope"); ok {
		t.Fatal("unknown theme found")
	}
	if c.ModeIndex("nope") != -1 {
		t.Fatal("unknown mode has an index")
	}
}

func TestShortHexFog(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	fog := c.Themes[0].FogRGB()
	if fog.R != 0 || fog.G != 0 || fog.B != 0 {
		t.Fatalf("neon-purple fog = %v, want black", fog)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("themes: []\nmodes: []\nsurprise: 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateJoinsProblems(t *testing.T) {
	doc := `
themes:
  - id: a
    fog: "nothex"
    wave_color: "#fff"
    accent: "#fff"
    wave_opacity: 2
  - id: a
    fog: "#000"
    wave_color: "#fff"
    accent: "#fff"
modes:
  - id: all
presets:
  - name: empty
`
	_, err := Parse(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"bad colour", "wave_opacity", "duplicate theme id", "missing location"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestMergeSkipsDuplicatesAndNamesFromPath(t *testing.T) {
	c := &Catalog{Presets: []Preset{{Name: "one", Location: "a.mp3"}}}
	c.Merge([]Preset{
		{Name: "one", Location: "b.mp3"},
		{Location: "/music/Late Night.flac"},
		{Name: "no location"},
	})
	if len(c.Presets) != 2 {
		t.Fatalf("presets = %+v", c.Presets)
	}
	if c.Presets[1].Name != "Late Night" {
		t.Fatalf("derived name = %q", c.Presets[1].Name)
	}
}

func TestCycle(t *testing.T) {
	tests := []struct{ i, delta, n, want int }{
		{0, 1, 6, 1},
		{5, 1, 6, 0},
		{0, -1, 6, 5},
		{2, -8, 6, 0},
		{3, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := Cycle(tt.i, tt.delta, tt.n); got != tt.want {
			t.Errorf("Cycle(%d, %d, %d) = %d, want %d", tt.i, tt.delta, tt.n, got, tt.want)
		}
	}
}
