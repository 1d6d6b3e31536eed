package record

import (
	"fmt"
	"strings"
	"time"
)

// CoinTitle renders the short display title used across list views:
// "Mint · Denomination (Metal)", with multi-word metals shortened to their
// first word.
func CoinTitle(c Coin) string {
	metal := c.Metal
	if parts := strings.Fields(metal); len(parts) > 1 {
		metal = parts[0]
	}
	return fmt.Sprintf("%s · %s (%s)", c.Mint, c.Denomination, metal)
}

// AuthorityLine renders "Authority · DateRange".
func AuthorityLine(c Coin) string {
	return fmt.Sprintf("%s · %s", c.Authority, c.DateRange)
}

// Measurements renders weight, diameter and die axis with em-dash
// placeholders for absent values.
func Measurements(c Coin) string {
	weight := "—"
	if c.Weight != nil {
		weight = fmt.Sprintf("%.2f g", *c.Weight)
	}
	diameter := "—"
	if c.Diameter != nil {
		diameter = fmt.Sprintf("%.1f mm", *c.Diameter)
	}
	axis := c.DieAxis
	if axis == "" {
		axis = "—"
	}
	return fmt.Sprintf("%s · %s · die axis %s", weight, diameter, axis)
}

// AuctionEventLabel renders one auction appearance:
// "House Sale (date) · Lot n · price".
func AuctionEventLabel(e AuctionEvent) string {
	var sale []string
	if e.House != "" {
		sale = append(sale, e.House)
	}
	if e.Sale != "" {
		sale = append(sale, e.Sale)
	}
	date := e.Date
	if date == "" && e.Year != 0 {
		date = fmt.Sprintf("%d", e.Year)
	}
	label := fmt.Sprintf("%s (%s) · Lot %s", strings.Join(sale, " "), date, e.Lot)
	if e.PriceRealized != "" {
		label += " · " + e.PriceRealized
	}
	return label
}

// DisplayDate renders an ISO-8601 timestamp or date as "Jan 2, 2006".
// Unparseable input is returned unchanged.
func DisplayDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

// SplitList splits a semicolon-delimited field (reference citations,
// previous owners) into trimmed non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
