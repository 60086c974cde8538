package derive

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultDatePattern is used when FormatDate receives an empty pattern
const DefaultDatePattern = "MMM dd, yyyy"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var errUnknownToken = errors.New("unknown pattern token")

// Initials takes the first letter of each word, upper-cased, at most two letters.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(r)
	}
	upper := []rune(strings.ToUpper(b.String()))
	if len(upper) > 2 {
		upper = upper[:2]
	}
	return string(upper)
}

// ParseISO parses an ISO-8601 date or date-time.
func ParseISO(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", value)
}

// FormatDate renders an ISO-8601 string with a date-fns style pattern.
// It never fails: unparseable input or patterns yield the input unchanged.
func FormatDate(value, pattern string) string {
	t, err := ParseISO(value)
	if err != nil {
		return value
	}
	if pattern == "" {
		pattern = DefaultDatePattern
	}
	out, err := formatPattern(t, pattern)
	if err != nil {
		return value
	}
	return out
}

func formatPattern(t time.Time, pattern string) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			// quoted literal, '' is an escaped quote
			j := i + 1
			if j < len(runes) && runes[j] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						b.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				b.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}

		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		tok, err := renderToken(t, r, n)
		if err != nil {
			return "", err
		}
		b.WriteString(tok)
		i += n
	}
	return b.String(), nil
}

func renderToken(t time.Time, letter rune, n int) (string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return fmt.Sprintf("%02d", t.Year()%100), nil
		}
		return fmt.Sprintf("%0*d", n, t.Year()), nil
	case 'M':
		switch {
		case n >= 4:
			return t.Month().String(), nil
		case n == 3:
			return t.Month().String()[:3], nil
		case n == 2:
			return fmt.Sprintf("%02d", int(t.Month())), nil
		default:
			return fmt.Sprintf("%d", int(t.Month())), nil
		}
	case 'd':
		return pad(t.Day(), n), nil
	case 'E':
		if n >= 4 {
			return t.Weekday().String(), nil
		}
		return t.Weekday().String()[:3], nil
	case 'H':
		return pad(t.Hour(), n), nil
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, n), nil
	case 'm':
		return pad(t.Minute(), n), nil
	case 's':
		return pad(t.Second(), n), nil
	case 'a':
		if t.Hour() < 12 {
			return "AM", nil
		}
		return "PM", nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownToken, strings.Repeat(string(letter), n))
}

func pad(v, n int) string {
	if n >= 2 {
		return fmt.Sprintf("%02d", v)
	}
	return fmt.Sprintf("%d", v)
}

// FormatCurrency renders an amount as US dollars, e.g. $1,234.50.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// TruncateText shortens text to maxLength runes followed by an ellipsis.
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength < 0 {
		maxLength = 0
	}
	return string(runes[:maxLength]) + "..."
}
