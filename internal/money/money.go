// Package money parses price strings whose digit grouping and decimal
// separators depend on the locale the quote service formatted them with.
package money

import (
    "fmt"
    "os"
    "strconv"
    "strings"
)

// Format holds the two separators a locale uses for decimal numbers.
type Format struct {
    Group   rune
    Decimal rune
}

var (
    // EN is the "12,345.67" convention used by the default quote feed.
    EN = Format{Group: ',', Decimal: '.'}
    // EU is the "12.345,67" convention of most continental locales.
    EU = Format{Group: '.', Decimal: ','}
)

// commaDecimalLangs are language codes whose locales write decimals with a
// comma. Anything not listed parses with the EN convention.
var commaDecimalLangs = map[string]bool{
    "de": true, "fr": true, "es": true, "it": true, "pt": true,
    "nl": true, "ru": true, "pl": true, "tr": true, "sv": true,
    "da": true, "fi": true, "nb": true, "cs": true, "hu": true,
}

// ForLocale maps a locale tag such as "de_DE.UTF-8" or "en_US" to a Format.
// An empty tag consults LC_ALL, LC_NUMERIC and LANG in that order, the same
// precedence libc applies.
func ForLocale(tag string) Format {
    if tag == "" {
        for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
            if v := os.Getenv(key); v != "" {
                tag = v
                break
            }
        }
    }
    tag = strings.ToLower(tag)
    if i := strings.IndexAny(tag, "_-."); i > 0 {
        tag = tag[:i]
    }
    if commaDecimalLangs[tag] {
        return EU
    }
    return EN
}

// Parse converts a possibly grouped decimal string ("35,000.00") to a float.
// Grouping separators are dropped, the decimal separator is normalized, and
// anything else is an error.
func (f Format) Parse(s string) (float64, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return 0, fmt.Errorf("parse amount: empty string")
    }
    var b strings.Builder
    b.Grow(len(s))
    for _, r := range s {
        switch r {
        case f.Group:
            // grouping separator, drop it
        case f.Decimal:
            b.WriteRune('.')
        default:
            b.WriteRune(r)
        }
    }
    v, err := strconv.ParseFloat(b.String(), 64)
    if err != nil {
        return 0, fmt.Errorf("parse amount %q: %w", s, err)
    }
    return v, nil
}
