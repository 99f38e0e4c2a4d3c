package pathplan

import (
	"strings"
	"time"
)

// Template placeholder tokens. Matching is literal and case-sensitive.
const (
	TokenManufacturer = "[Manufacturer_Name]"
	TokenSeries       = "[Series_Name]"
	TokenMarketplace  = "[Marketplace]"
	TokenDate         = "[Date]"
)

// templateStripper removes the characters that are illegal in every path
// position. Colons and separators survive this pass so drive letters and
// nested-folder templates stay intact until segment splitting.
var templateStripper = strings.NewReplacer(
	"<", "",
	">", "",
	"\"", "",
	"|", "",
	"?", "",
	"*", "",
)

// Bindings carries the values substituted into a path template.
type Bindings struct {
	Manufacturer string
	Series       string
	Marketplace  string
	Date         time.Time
}

// ResolveTemplate substitutes the recognized tokens and strips illegal
// characters. Resolution is total: a token with no binding resolves to the
// empty string rather than failing.
func ResolveTemplate(template string, b Bindings) string {
	date := ""
	if !b.Date.IsZero() {
		date = b.Date.Format("2006-01-02")
	}
	resolved := strings.NewReplacer(
		TokenManufacturer, b.Manufacturer,
		TokenSeries, b.Series,
		TokenMarketplace, b.Marketplace,
		TokenDate, date,
	).Replace(template)
	return templateStripper.Replace(resolved)
}

// fileToken converts a display name into a filename token: trimmed, with
// every internal whitespace run collapsed to a single underscore.
func fileToken(name string) string {
	fields := strings.Fields(name)
	return strings.Join(fields, "_")
}
