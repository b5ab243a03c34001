package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// region is one first-level division of Spain as coded in the snapshot.
// Codes follow ISO 3166-2:ES except Madrid, which the snapshot tags "MD".
type region struct {
	code    string
	name    string
	ine     string   // INE autonomous community number
	aliases []string // accent-folded, lower-case fragments of the INE description
}

var regions = []region{
	{"AN", "Andalucía", "01", []string{"andalucia"}},
	{"AR", "Aragón", "02", []string{"aragon"}},
	{"AS", "Asturias", "03", []string{"asturias"}},
	{"IB", "Illes Balears", "04", []string{"balears", "baleares"}},
	{"CN", "Canarias", "05", []string{"canarias"}},
	{"CB", "Cantabria", "06", []string{"cantabria"}},
	{"CL", "Castilla y León", "07", []string{"castilla y leon"}},
	{"CM", "Castilla-La Mancha", "08", []string{"castilla-la mancha", "castilla - la mancha", "castilla la mancha"}},
	{"CT", "Catalunya", "09", []string{"cataluna", "catalunya"}},
	{"VC", "Valenciana", "10", []string{"valenciana"}},
	{"EX", "Extremadura", "11", []string{"extremadura"}},
	{"GA", "Galicia", "12", []string{"galicia"}},
	{"MD", "Madrid", "13", []string{"madrid"}},
	{"MC", "Murcia", "14", []string{"murcia"}},
	{"NC", "Navarra", "15", []string{"navarra"}},
	{"PV", "País Vasco", "16", []string{"pais vasco", "euskadi"}},
	{"RI", "La Rioja", "17", []string{"rioja"}},
	{"CE", "Ceuta", "18", []string{"ceuta"}},
	{"ML", "Melilla", "19", []string{"melilla"}},
}

var regionsByCode = func() map[string]region {
	m := make(map[string]region, len(regions))
	for _, r := range regions {
		m[r.code] = r
	}
	return m
}()

// RegionName returns the human-readable name for a region code.
func RegionName(code string) (string, bool) {
	r, ok := regionsByCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", false
	}
	return r.name, true
}

// DisplayName returns the region name, or the raw code when it is unknown.
func DisplayName(code string) string {
	if name, ok := RegionName(code); ok {
		return name
	}
	return code
}

// RegionCodeFromDescription resolves a population-table description such as
// "09 Cataluña" or "13 Madrid, Comunidad de" to a region code. Names are
// matched first; a leading INE number is the fallback.
func RegionCodeFromDescription(desc string) (string, bool) {
	folded := fold(desc)
	if folded == "" {
		return "", false
	}
	for _, r := range regions {
		for _, alias := range r.aliases {
			if strings.Contains(folded, alias) {
				return r.code, true
			}
		}
	}

	number, _, _ := strings.Cut(folded, " ")
	for _, r := range regions {
		if number == r.ine {
			return r.code, true
		}
	}
	return "", false
}

// fold lower-cases s and strips diacritics, so "Aragón" matches "aragon".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
