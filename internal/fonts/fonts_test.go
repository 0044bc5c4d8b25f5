package fonts_test

import (
	"sort"
	"testing"

	"slidecast/internal/fonts"
)

func TestResolveExactName(t *testing.T) {
	path, ok := fonts.Resolve("Roboto-Bold")
	if !ok {
		t.Fatal("Roboto-Bold should resolve")
	}
	if path != "/usr/share/fonts/truetype/google/roboto/Roboto-Bold.ttf" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestResolveIsLenient(t *testing.T) {
	want, _ := fonts.Resolve(fonts.DefaultName)

	for _, name := range []string{"DejaVu Sans Bold", "dejavusans-bold", "DEJAVUSANS_BOLD"} {
		path, ok := fonts.Resolve(name)
		if !ok {
			t.Errorf("%q should resolve", name)
		}
		if path != want {
			t.Errorf("%q resolved to %q, want %q", name, path, want)
		}
	}
}

func TestResolveUnknownFallsBack(t *testing.T) {
	def, _ := fonts.Resolve(fonts.DefaultName)

	path, ok := fonts.Resolve("Comic Sans")
	if ok {
		t.Fatal("unknown font should report ok=false")
	}
	if path != def {
		t.Fatalf("fallback path = %q, want %q", path, def)
	}

	path, ok = fonts.Resolve("")
	if ok {
		t.Fatal("empty name should report ok=false")
	}
	if path != def {
		t.Fatalf("fallback path = %q, want %q", path, def)
	}
}

func TestListOrderingAndDisplayNames(t *testing.T) {
	list := fonts.List()
	if len(list) == 0 {
		t.Fatal("catalog is empty")
	}

	displays := make([]string, len(list))
	for i, f := range list {
		displays[i] = f.Display
	}
	if !sort.StringsAreSorted(displays) {
		t.Fatalf("list is not sorted by display name: %v", displays)
	}

	byName := make(map[string]fonts.Font, len(list))
	for _, f := range list {
		byName[f.Name] = f
	}
	if got := byName["PlayfairDisplay-Bold"].Display; got != "Playfair Display Bold" {
		t.Errorf("display = %q, want %q", got, "Playfair Display Bold")
	}
	if got := byName["DejaVuSans"].Display; got != "DejaVu Sans" {
		t.Errorf("display = %q, want %q", got, "DejaVu Sans")
	}
}
