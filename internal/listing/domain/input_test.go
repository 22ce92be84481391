package domain

import (
	"errors"
	"strings"
	"testing"

	"bahayscout/backend/internal/platform/httpx"
)

func ptr[T any](v T) *T { return &v }

func validCreate() CreateInput {
	return CreateInput{
		Category:     CategorySale,
		PropertyType: PropertyCondo,
		Title:        "Two-bedroom condo in Makati",
		Description:  strings.Repeat("Bright unit near Ayala with parking. ", 3),
		PricePHP:     8_500_000,
		LocationID:   1,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var he *httpx.Error
	if !errors.As(err, &he) {
		t.Fatalf("err %v is not a validation error", err)
	}
	if he.Message != "Validation error" {
		t.Fatalf("message = %q", he.Message)
	}
	out := map[string]string{}
	for _, d := range he.Details.([]httpx.FieldError) {
		out[d.Field] = d.Message
	}
	return out
}

func TestCreateInput_Valid(t *testing.T) {
	in := validCreate()
	in.Bedrooms = ptr(0)
	in.Latitude, in.Longitude = ptr(14.55), ptr(121.02)
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p := in.Point(); p == nil || p.Lat != 14.55 || p.Lng != 121.02 {
		t.Errorf("Point = %+v", p)
	}
}

func TestCreateInput_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"bad category", func(in *CreateInput) { in.Category = "lease" }, "category"},
		{"bad property type", func(in *CreateInput) { in.PropertyType = "castle" }, "propertyType"},
		{"short title", func(in *CreateInput) { in.Title = "Condo" }, "title"},
		{"long title", func(in *CreateInput) { in.Title = strings.Repeat("x", 201) }, "title"},
		{"short description", func(in *CreateInput) { in.Description = "Too short" }, "description"},
		{"zero price", func(in *CreateInput) { in.PricePHP = 0 }, "pricePhp"},
		{"negative price", func(in *CreateInput) { in.PricePHP = -1 }, "pricePhp"},
		{"negative bedrooms", func(in *CreateInput) { in.Bedrooms = ptr(-1) }, "bedrooms"},
		{"zero floor area", func(in *CreateInput) { in.FloorAreaSqm = ptr(0.0) }, "floorAreaSqm"},
		{"missing location", func(in *CreateInput) { in.LocationID = 0 }, "locationId"},
		{"long address", func(in *CreateInput) { in.AddressLine = ptr(strings.Repeat("a", 201)) }, "addressLine"},
		{"latitude range", func(in *CreateInput) { in.Latitude, in.Longitude = ptr(91.0), ptr(0.0) }, "latitude"},
		{"longitude range", func(in *CreateInput) { in.Latitude, in.Longitude = ptr(0.0), ptr(-181.0) }, "longitude"},
		{"lat without lng", func(in *CreateInput) { in.Latitude = ptr(14.0) }, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreate()
			tt.mutate(&in)
			fields := fieldsOf(t, in.Validate())
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("details %v missing field %q", fields, tt.field)
			}
		})
	}
}

func TestUpdateInput(t *testing.T) {
	var empty UpdateInput
	if err := empty.Validate(); err != nil {
		t.Errorf("empty patch should validate: %v", err)
	}
	if !empty.Empty() {
		t.Error("empty patch should report Empty")
	}

	bad := UpdateInput{Title: ptr("short")}
	if fields := fieldsOf(t, bad.Validate()); fields["title"] == "" {
		t.Errorf("title error missing: %v", fields)
	}

	l := &Listing{Title: "Old title here", PricePHP: 1, Bedrooms: ptr(1)}
	patch := UpdateInput{PricePHP: ptr(int64(2_000_000)), Bedrooms: ptr(3), Latitude: ptr(10.3), Longitude: ptr(123.9)}
	if patch.Empty() {
		t.Fatal("patch is not empty")
	}
	patch.Apply(l)
	if l.PricePHP != 2_000_000 || *l.Bedrooms != 3 || l.Title != "Old title here" {
		t.Errorf("Apply result = %+v", l)
	}
	if l.Point == nil || l.Point.Lat != 10.3 {
		t.Errorf("Point = %+v", l.Point)
	}
}
