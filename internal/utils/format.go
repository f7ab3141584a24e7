package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidPriceFormat = errors.New("invalid price format")

// ParsePrice parses storefront price strings such as "12,50 €" or "8 EUR"
// into a float. Comma is the decimal separator in the storefront locale.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer(
		"€", "",
		"EUR", "",
		" ", "",
		" ", "",
		" ", "",
	).Replace(s)
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", ".")

	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, s)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, s)
	}
	return value, nil
}

// FormatDate renders an ISO date (YYYY-MM-DD) for the given locale tag.
// fr-FR uses zero-padded DD/MM/YYYY, en-US unpadded M/D/YYYY; anything else
// keeps the ISO form.
func FormatDate(date, locale string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}

	switch locale {
	case "fr-FR":
		return t.Format("02/01/2006"), nil
	case "en-US":
		return fmt.Sprintf("%d/%d/%d", t.Month(), t.Day(), t.Year()), nil
	default:
		return t.Format("2006-01-02"), nil
	}
}
