package config

import (
	"image/color"
	"testing"
	"testing/fstest"
)

func TestLoadTemplateManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"templates.yaml": {Data: []byte(`
templates:
  - name: police
    path: templates/police.yaml
  - name: bike
    path: templates/bike.yaml
    optional: true
    fallback: {shape: box, size: [2, 1, 0.5], color: "#32CD32"}
`)},
		"dup.yaml": {Data: []byte(`
templates:
  - {name: a, path: a.yaml}
  - {name: a, path: b.yaml}
`)},
	}
	m, err := LoadTemplateManifest(fsys, "templates.yaml")
	if err != nil {
		t.Fatalf("LoadTemplateManifest: %v", err)
	}
	if len(m.Templates) != 2 || !m.Templates[1].Optional {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.Templates[1].Fallback.Size != [3]float64{2, 1, 0.5} {
		t.Errorf("fallback size: got %v", m.Templates[1].Fallback.Size)
	}
	if _, err := LoadTemplateManifest(fsys, "dup.yaml"); err == nil {
		t.Errorf("duplicate names should fail")
	}
}

func TestLoadTemplateConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.yaml":    {Data: []byte("model: police.glb\nclips:\n  Chase: Fast Run\n")},
		"empty.yaml": {Data: []byte("scale: 2\n")},
	}
	tc, err := LoadTemplateConfig(fsys, "ok.yaml")
	if err != nil {
		t.Fatalf("LoadTemplateConfig: %v", err)
	}
	if tc.Scale != 1 {
		t.Errorf("scale default: got %v", tc.Scale)
	}
	if tc.Clips["Chase"] != "Fast Run" {
		t.Errorf("clips: got %v", tc.Clips)
	}
	if _, err := LoadTemplateConfig(fsys, "empty.yaml"); err == nil {
		t.Errorf("template without model or primitive should fail")
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#32CD32")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.RGBA{R: 0x32, G: 0xCD, B: 0x32, A: 0xff}) {
		t.Errorf("got %v", c)
	}
	for _, bad := range []string{"", "#12345", "#GGGGGG"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q): expected error", bad)
		}
	}
}
