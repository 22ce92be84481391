package domain

import (
	"testing"

	locationdomain "bahayscout/backend/internal/location/domain"
)

func TestFormatPHP(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "₱0"},
		{999, "₱999"},
		{1000000, "₱1,000,000"},
		{12500, "₱12,500"},
	}
	for _, tt := range tests {
		if got := FormatPHP(tt.in); got != tt.want {
			t.Errorf("FormatPHP(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	rent := &Listing{PricePHP: 25000, PricePeriod: ptr("month")}
	if got := FormatPrice(rent); got != "₱25,000/month" {
		t.Errorf("FormatPrice = %q", got)
	}
}

func TestPropertyTypeLabel(t *testing.T) {
	tests := map[PropertyType]string{
		PropertyCondo:    "Condo",
		PropertyHouseLot: "House & Lot",
		PropertyBedspace: "Bedspace",
		"treehouse":      "treehouse",
	}
	for in, want := range tests {
		if got := in.Label(); got != want {
			t.Errorf("%q.Label() = %q, want %q", in, got, want)
		}
	}
}

func TestFormatArea(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{ptr(0.0), "N/A"},
		{ptr(45.0), "45 sqm"},
		{ptr(1234.5), "1,234.5 sqm"},
		{ptr(80.256), "80.26 sqm"},
	}
	for _, tt := range tests {
		if got := FormatArea(tt.in); got != tt.want {
			t.Errorf("FormatArea(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	loc := &locationdomain.Location{
		Region: "NCR", Province: "Metro Manila", CityMunicipality: "Makati", Barangay: ptr("Poblacion"),
	}
	if got := FormatAddress(ptr("123 Rizal St"), loc); got != "123 Rizal St, Poblacion, Makati, Metro Manila, NCR" {
		t.Errorf("full = %q", got)
	}
	loc.Barangay = nil
	if got := FormatAddress(ptr(" "), loc); got != "Makati, Metro Manila, NCR" {
		t.Errorf("no street = %q", got)
	}
	if got := FormatAddress(nil, nil); got != "" {
		t.Errorf("empty = %q", got)
	}
}
