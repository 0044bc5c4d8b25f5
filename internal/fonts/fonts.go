// Package fonts maps user-facing font names to TrueType files on disk. The
// catalog mirrors the set installed by the deployment image; Resolve is
// lenient about spacing, hyphens, and case so "DejaVu Sans Bold",
// "dejavusans-bold", and "DejaVuSans-Bold" all hit the same entry.
package fonts

import (
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultName is the catalog entry used when a requested font is unknown.
const DefaultName = "DejaVuSans-Bold"

// Font is one catalog entry.
type Font struct {
	// Name is the canonical catalog key.
	Name string
	// Display is the human-readable name shown in CLI and API listings.
	Display string
	// Path is the TrueType file location.
	Path string
}

type entry struct {
	name   string
	family string
	weight string
	path   string
}

var catalog = []entry{
	{"DejaVuSans-Bold", "DejaVu Sans", "bold", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"},
	{"DejaVuSans", "DejaVu Sans", "", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"},
	{"DejaVuSerif-Bold", "DejaVu Serif", "bold", "/usr/share/fonts/truetype/dejavu/DejaVuSerif-Bold.ttf"},
	{"DejaVuSerif", "DejaVu Serif", "", "/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf"},
	{"LiberationSans-Bold", "Liberation Sans", "bold", "/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf"},
	{"LiberationSans", "Liberation Sans", "", "/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf"},
	{"LiberationMono-Bold", "Liberation Mono", "bold", "/usr/share/fonts/truetype/liberation/LiberationMono-Bold.ttf"},
	{"FreeSans-Bold", "Free Sans", "bold", "/usr/share/fonts/truetype/freefont/FreeSansBold.ttf"},
	{"FreeSans", "Free Sans", "", "/usr/share/fonts/truetype/freefont/FreeSans.ttf"},
	{"FreeSerif-Bold", "Free Serif", "bold", "/usr/share/fonts/truetype/freefont/FreeSerifBold.ttf"},
	{"FreeSerif", "Free Serif", "", "/usr/share/fonts/truetype/freefont/FreeSerif.ttf"},
	{"Roboto-Bold", "Roboto", "bold", "/usr/share/fonts/truetype/google/roboto/Roboto-Bold.ttf"},
	{"Roboto", "Roboto", "", "/usr/share/fonts/truetype/google/roboto/Roboto-Regular.ttf"},
	{"Roboto-Light", "Roboto", "light", "/usr/share/fonts/truetype/google/roboto/Roboto-Light.ttf"},
	{"Roboto-Black", "Roboto", "black", "/usr/share/fonts/truetype/google/roboto/Roboto-Black.ttf"},
	{"OpenSans-Bold", "Open Sans", "bold", "/usr/share/fonts/truetype/google/opensans/OpenSans-Bold.ttf"},
	{"OpenSans", "Open Sans", "", "/usr/share/fonts/truetype/google/opensans/OpenSans-Regular.ttf"},
	{"OpenSans-Light", "Open Sans", "light", "/usr/share/fonts/truetype/google/opensans/OpenSans-Light.ttf"},
	{"Lato-Bold", "Lato", "bold", "/usr/share/fonts/truetype/google/lato/Lato-Bold.ttf"},
	{"Lato", "Lato", "", "/usr/share/fonts/truetype/google/lato/Lato-Regular.ttf"},
	{"Lato-Light", "Lato", "light", "/usr/share/fonts/truetype/google/lato/Lato-Light.ttf"},
	{"Lato-Black", "Lato", "black", "/usr/share/fonts/truetype/google/lato/Lato-Black.ttf"},
	{"Montserrat-Bold", "Montserrat", "bold", "/usr/share/fonts/truetype/google/montserrat/Montserrat-Bold.ttf"},
	{"Montserrat", "Montserrat", "", "/usr/share/fonts/truetype/google/montserrat/Montserrat-Regular.ttf"},
	{"Montserrat-Black", "Montserrat", "black", "/usr/share/fonts/truetype/google/montserrat/Montserrat-Black.ttf"},
	{"Poppins-Bold", "Poppins", "bold", "/usr/share/fonts/truetype/google/poppins/Poppins-Bold.ttf"},
	{"Poppins", "Poppins", "", "/usr/share/fonts/truetype/google/poppins/Poppins-Regular.ttf"},
	{"Poppins-Black", "Poppins", "black", "/usr/share/fonts/truetype/google/poppins/Poppins-Black.ttf"},
	{"Oswald-Bold", "Oswald", "bold", "/usr/share/fonts/truetype/google/oswald/Oswald-Bold.ttf"},
	{"Oswald", "Oswald", "", "/usr/share/fonts/truetype/google/oswald/Oswald-Regular.ttf"},
	{"PlayfairDisplay-Bold", "Playfair Display", "bold", "/usr/share/fonts/truetype/google/playfair/PlayfairDisplay-Bold.ttf"},
	{"PlayfairDisplay", "Playfair Display", "", "/usr/share/fonts/truetype/google/playfair/PlayfairDisplay-Regular.ttf"},
	{"BebasNeue", "Bebas Neue", "", "/usr/share/fonts/truetype/google/bebas/BebasNeue-Regular.ttf"},
	{"FiraCode-Bold", "Fira Code", "bold", "/usr/share/fonts/truetype/google/firacode/FiraCode-Bold.ttf"},
	{"FiraCode", "Fira Code", "", "/usr/share/fonts/truetype/google/firacode/FiraCode-Regular.ttf"},
	{"Ubuntu-Bold", "Ubuntu", "bold", "/usr/share/fonts/truetype/google/ubuntu/Ubuntu-B.ttf"},
	{"Ubuntu", "Ubuntu", "", "/usr/share/fonts/truetype/google/ubuntu/Ubuntu-R.ttf"},
	{"Ubuntu-Light", "Ubuntu", "light", "/usr/share/fonts/truetype/google/ubuntu/Ubuntu-L.ttf"},
	{"NotoSans-Bold", "Noto Sans", "bold", "/usr/share/fonts/truetype/google/noto/NotoSans-Bold.ttf"},
	{"NotoSans", "Noto Sans", "", "/usr/share/fonts/truetype/google/noto/NotoSans-Regular.ttf"},
}

var (
	byKey       map[string]entry
	weightCaser = cases.Title(language.English)
)

func init() {
	byKey = make(map[string]entry, len(catalog))
	for _, e := range catalog {
		byKey[normalizeKey(e.name)] = e
	}
}

func normalizeKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func (e entry) display() string {
	if e.weight == "" {
		return e.family
	}
	return e.family + " " + weightCaser.String(e.weight)
}

// Resolve returns the path for the named font. Unknown or empty names fall
// back to DefaultName; the boolean reports whether the name matched.
func Resolve(name string) (string, bool) {
	if e, ok := byKey[normalizeKey(name)]; ok && name != "" {
		return e.path, true
	}
	return byKey[normalizeKey(DefaultName)].path, false
}

// List returns the full catalog ordered by display name.
func List() []Font {
	fonts := make([]Font, 0, len(catalog))
	for _, e := range catalog {
		fonts = append(fonts, Font{Name: e.name, Display: e.display(), Path: e.path})
	}
	sort.Slice(fonts, func(i, j int) bool {
		if fonts[i].Display != fonts[j].Display {
			return fonts[i].Display < fonts[j].Display
		}
		return fonts[i].Name < fonts[j].Name
	})
	return fonts
}

// Installed reports whether the font file exists on disk.
func (f Font) Installed() bool {
	info, err := os.Stat(f.Path)
	return err == nil && !info.IsDir()
}
