package productionhttp

import (
	"html/template"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

const pageTemplate = "templates/production/dashboard.html"

// ParsePage loads the dashboard page template from fsys.
func ParsePage(fsys fs.FS) (*template.Template, error) {
	return template.New("dashboard.html").Funcs(pageFuncs).ParseFS(fsys, pageTemplate)
}

var pageFuncs = template.FuncMap{
	"number":   formatNumber,
	"percent":  func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	"contains": func(set []string, v string) bool { return slices.Contains(set, v) },
	"dict": func(pairs ...any) map[string]any {
		out := make(map[string]any, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			if key, ok := pairs[i].(string); ok {
				out[key] = pairs[i+1]
			}
		}
		return out
	},
}

// formatNumber groups thousands with dots, the Vietnamese convention.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
