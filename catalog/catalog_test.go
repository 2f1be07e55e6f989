package catalog

import (
	"errors"
	"testing"

	cm "github.com/gogpu/fx/colormatrix"
	"github.com/gogpu/fx/param"
)

func TestDefaultCatalogValid(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
	for _, d := range c.List("") {
		if err := check(d); err != nil {
			t.Errorf("%s: %v", d.ID, err)
		}
		if d.Category == CategoryGenerator && d.Generator == "" {
			t.Errorf("%s: generator category without generator", d.ID)
		}
		if d.ColorMatrix != nil && d.ShaderRef != ShaderColorMatrix {
			t.Errorf("%s: color matrix effect uses shader %q", d.ID, d.ShaderRef)
		}
	}
}

func TestPixelateDefaults(t *testing.T) {
	d, ok := Default().Get("pixelate")
	if !ok {
		t.Fatal("pixelate missing")
	}
	vs := d.Defaults()
	if got := vs["cellSize"].Float(); got != 10 {
		t.Errorf("cellSize default = %g, want 10", got)
	}
	vs = d.Normalize(param.Values{"cellSize": param.Number(1000)})
	if got := vs["cellSize"].Float(); got != 128 {
		t.Errorf("cellSize clamp = %g, want 128", got)
	}
}

func TestColorFiltersIntensity(t *testing.T) {
	for _, d := range Default().List(CategoryColor) {
		if d.ColorMatrix == nil {
			continue
		}
		if _, ok := d.Param("intensity"); !ok {
			continue
		}
		t.Run(d.ID, func(t *testing.T) {
			zero := d.Normalize(param.Values{"intensity": param.Number(0)})
			if m := d.ColorMatrix(zero); m != cm.Identity() {
				t.Errorf("intensity 0 = %v, want identity", m)
			}
			full := d.ColorMatrix(d.Normalize(param.Values{"intensity": param.Number(1)}))
			if !full.IsFinite() {
				t.Errorf("intensity 1 not finite: %v", full)
			}
			if p, ok := cm.Preset(d.ID); ok && full != p.Base {
				t.Errorf("intensity 1 = %v, want preset base %v", full, p.Base)
			}
		})
	}
}

func TestColorMatricesFinite(t *testing.T) {
	for _, d := range Default().List("") {
		if d.ColorMatrix == nil {
			continue
		}
		if m := d.ColorMatrix(d.Defaults()); !m.IsFinite() {
			t.Errorf("%s: default matrix not finite", d.ID)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup error = %v, want ErrNotFound", err)
	}
	if _, ok := Default().Get("does-not-exist"); ok {
		t.Error("Get reported unknown id as present")
	}
}

func TestFreeExcludesPremium(t *testing.T) {
	c := Default()
	free := c.Free()
	if len(free) == 0 || len(free) == c.Len() {
		t.Fatalf("free = %d of %d effects, want a strict subset", len(free), c.Len())
	}
	for _, d := range free {
		if d.Premium {
			t.Errorf("%s is premium", d.ID)
		}
	}
}

func TestListByCategory(t *testing.T) {
	c := Default()
	total := 0
	for _, cat := range c.Categories() {
		ds := c.List(cat)
		if len(ds) == 0 {
			t.Errorf("category %s listed but empty", cat)
		}
		for _, d := range ds {
			if d.Category != cat {
				t.Errorf("%s: category %s in %s list", d.ID, d.Category, cat)
			}
		}
		total += len(ds)
	}
	if total != c.Len() {
		t.Errorf("categories cover %d effects, want %d", total, c.Len())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := Default()
	d, _ := c.Get("adjust")
	d.Params[0].Name = "mutated"
	again, _ := c.Get("adjust")
	if again.Params[0].Name == "mutated" {
		t.Error("Get leaked internal parameter slice")
	}
}

func TestNewRejects(t *testing.T) {
	ok := Descriptor{
		ID: "a", DisplayName: "A", Category: CategoryColor, ShaderRef: "x",
		Params: []param.Spec{{Name: "n", Kind: param.Numeric, Min: 0, Max: 1, Default: param.Number(0)}},
	}
	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{"duplicate_id", []Descriptor{ok, ok}},
		{"no_renderer", []Descriptor{func() Descriptor { d := ok; d.ShaderRef = ""; return d }()}},
		{"both_renderers", []Descriptor{func() Descriptor { d := ok; d.Generator = "g"; return d }()}},
		{"complexity", []Descriptor{func() Descriptor { d := ok; d.Complexity = 2; return d }()}},
		{"missing_name", []Descriptor{func() Descriptor { d := ok; d.DisplayName = ""; return d }()}},
		{"duplicate_param", []Descriptor{func() Descriptor {
			d := ok
			d.Params = append(d.Params, d.Params[0])
			return d
		}()}},
		{"structural_generator", []Descriptor{func() Descriptor {
			d := ok
			d.ShaderRef, d.Generator = "", "g"
			d.Params = []param.Spec{{Name: "r", Kind: param.Numeric, Min: 1, Max: 4, Default: param.Number(2), Structural: true}}
			return d
		}()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.descs...); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := New(ok); err != nil {
		t.Errorf("valid descriptor rejected: %v", err)
	}
}
