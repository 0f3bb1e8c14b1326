// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
	"unicode"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mobile keeps only digits. A leading +91 or 0 trunk prefix on an otherwise
// valid number is dropped so "+91 93417 49399" and "09341749399" both
// normalize to "9341749399".
func Mobile(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		return d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "0"):
		return d[1:]
	}
	return d
}

// Name trims and collapses inner whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var titleCaser = cases.Title(language.English)

// TitleName is Name with each word title-cased, used for names typed in
// all lower case on mobile keyboards.
func TitleName(s string) string {
	n := Name(s)
	if n == "" || n != strings.ToLower(n) {
		return n
	}
	return titleCaser.String(n)
}

// District returns the canonical district spelling, or the trimmed input
// when it is not a known district.
func District(s string) string {
	if c, ok := models.CanonicalDistrict(s); ok {
		return c
	}
	return strings.TrimSpace(s)
}

// Role upper-cases and trims a role value.
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Status upper-cases and trims a status value.
func Status(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Badge lower-cases and trims a badge value; "none" and "null" clear it.
func Badge(s string) string {
	b := strings.ToLower(strings.TrimSpace(s))
	if b == "none" || b == "null" {
		return ""
	}
	return b
}

// QueryParam trims a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
