package domain

import (
	"errors"

	"bahayscout/backend/internal/platform/httpx"
)

// CreateInput is the body of POST /api/listings.
type CreateInput struct {
	Category     Category     `json:"category" validate:"required,oneof=sale rent"`
	PropertyType PropertyType `json:"propertyType" validate:"required,oneof=condo house_lot townhouse lot commercial apartment bedspace"`
	Title        string       `json:"title" validate:"required,min=10,max=200"`
	Description  string       `json:"description" validate:"required,min=50,max=5000"`
	PricePHP     int64        `json:"pricePhp" validate:"required,gt=0"`
	PricePeriod  *string      `json:"pricePeriod" validate:"omitnil,max=50"`
	Bedrooms     *int         `json:"bedrooms" validate:"omitnil,gte=0"`
	Bathrooms    *int         `json:"bathrooms" validate:"omitnil,gte=0"`
	FloorAreaSqm *float64     `json:"floorAreaSqm" validate:"omitnil,gt=0"`
	LotAreaSqm   *float64     `json:"lotAreaSqm" validate:"omitnil,gt=0"`
	LocationID   int64        `json:"locationId" validate:"required,gt=0"`
	AddressLine  *string      `json:"addressLine" validate:"omitnil,max=200"`
	Latitude     *float64     `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude    *float64     `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
}

// Validate checks field rules; failures are a 400 "Validation error" with per-field details.
func (in *CreateInput) Validate() error {
	return validateWithPoint(in, in.Latitude, in.Longitude)
}

// Point returns the coordinate when both latitude and longitude are set.
func (in *CreateInput) Point() *Point { return pointOf(in.Latitude, in.Longitude) }

// UpdateInput is the body of PATCH /api/listings/{id}. Nil fields are left unchanged.
type UpdateInput struct {
	Category     *Category     `json:"category" validate:"omitnil,oneof=sale rent"`
	PropertyType *PropertyType `json:"propertyType" validate:"omitnil,oneof=condo house_lot townhouse lot commercial apartment bedspace"`
	Title        *string       `json:"title" validate:"omitnil,min=10,max=200"`
	Description  *string       `json:"description" validate:"omitnil,min=50,max=5000"`
	PricePHP     *int64        `json:"pricePhp" validate:"omitnil,gt=0"`
	PricePeriod  *string       `json:"pricePeriod" validate:"omitnil,max=50"`
	Bedrooms     *int          `json:"bedrooms" validate:"omitnil,gte=0"`
	Bathrooms    *int          `json:"bathrooms" validate:"omitnil,gte=0"`
	FloorAreaSqm *float64      `json:"floorAreaSqm" validate:"omitnil,gt=0"`
	LotAreaSqm   *float64      `json:"lotAreaSqm" validate:"omitnil,gt=0"`
	LocationID   *int64        `json:"locationId" validate:"omitnil,gt=0"`
	AddressLine  *string       `json:"addressLine" validate:"omitnil,max=200"`
	Latitude     *float64      `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude    *float64      `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
}

// Validate checks the fields that are present.
func (in *UpdateInput) Validate() error {
	return validateWithPoint(in, in.Latitude, in.Longitude)
}

// Point returns the coordinate when both latitude and longitude are set.
func (in *UpdateInput) Point() *Point { return pointOf(in.Latitude, in.Longitude) }

// Empty reports whether the patch changes nothing.
func (in *UpdateInput) Empty() bool {
	return in.Category == nil && in.PropertyType == nil && in.Title == nil && in.Description == nil &&
		in.PricePHP == nil && in.PricePeriod == nil && in.Bedrooms == nil && in.Bathrooms == nil &&
		in.FloorAreaSqm == nil && in.LotAreaSqm == nil && in.LocationID == nil && in.AddressLine == nil &&
		in.Point() == nil
}

// Apply copies the present fields onto l.
func (in *UpdateInput) Apply(l *Listing) {
	if in.Category != nil {
		l.Category = *in.Category
	}
	if in.PropertyType != nil {
		l.PropertyType = *in.PropertyType
	}
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PricePHP != nil {
		l.PricePHP = *in.PricePHP
	}
	if in.PricePeriod != nil {
		l.PricePeriod = in.PricePeriod
	}
	if in.Bedrooms != nil {
		l.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		l.Bathrooms = in.Bathrooms
	}
	if in.FloorAreaSqm != nil {
		l.FloorAreaSqm = in.FloorAreaSqm
	}
	if in.LotAreaSqm != nil {
		l.LotAreaSqm = in.LotAreaSqm
	}
	if in.LocationID != nil {
		l.LocationID = in.LocationID
	}
	if in.AddressLine != nil {
		l.AddressLine = in.AddressLine
	}
	if p := in.Point(); p != nil {
		l.Point = p
	}
}

func validateWithPoint(v any, lat, lng *float64) error {
	err := httpx.ValidateStruct(v)
	if (lat == nil) == (lng == nil) {
		return err
	}
	pair := httpx.FieldError{Field: "latitude", Message: "latitude and longitude must be provided together"}
	var he *httpx.Error
	if errors.As(err, &he) {
		if details, ok := he.Details.([]httpx.FieldError); ok {
			return httpx.ValidationError(append(details, pair))
		}
	}
	if err != nil {
		return err
	}
	return httpx.ValidationError([]httpx.FieldError{pair})
}

func pointOf(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &Point{Lat: *lat, Lng: *lng}
}

// MaxPhotos caps the photos attached to one listing.
const MaxPhotos = 20

// PhotoInput is the body of POST /api/listings/{id}/photos. A zero SortOrder appends.
type PhotoInput struct {
	StoragePath string `json:"storagePath" validate:"required,max=500"`
	SortOrder   int    `json:"sortOrder" validate:"gte=0"`
}
