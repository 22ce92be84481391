package domain

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	locationdomain "bahayscout/backend/internal/location/domain"
)

var printer = message.NewPrinter(language.English)

// FormatPHP renders whole pesos with thousands separators, e.g. ₱1,250,000.
func FormatPHP(amount int64) string {
	if amount < 0 {
		return "-₱" + printer.Sprintf("%d", -amount)
	}
	return "₱" + printer.Sprintf("%d", amount)
}

// FormatPrice is FormatPHP plus "/period" for rentals that carry one, e.g. ₱25,000/month.
func FormatPrice(l *Listing) string {
	s := FormatPHP(l.PricePHP)
	if l.PricePeriod != nil && *l.PricePeriod != "" {
		s += "/" + *l.PricePeriod
	}
	return s
}

// FormatArea renders an area in square metres with up to two decimals, or "N/A" when unset or zero.
func FormatArea(area *float64) string {
	if area == nil || *area == 0 {
		return "N/A"
	}
	rounded := math.Round(*area*100) / 100
	whole, frac, _ := strings.Cut(strconv.FormatFloat(rounded, 'f', -1, 64), ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	s := printer.Sprintf("%d", n)
	if frac != "" {
		s += "." + frac
	}
	return s + " sqm"
}

// FormatAddress joins the non-empty address parts, most specific first.
func FormatAddress(addressLine *string, loc *locationdomain.Location) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if addressLine != nil {
		add(*addressLine)
	}
	if loc != nil {
		if loc.Barangay != nil {
			add(*loc.Barangay)
		}
		add(loc.CityMunicipality)
		add(loc.Province)
		add(loc.Region)
	}
	return strings.Join(parts, ", ")
}
