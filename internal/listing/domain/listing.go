// Package domain defines listings, their moderation lifecycle and the search filter model.
package domain

import (
	"time"

	locationdomain "bahayscout/backend/internal/location/domain"
	profiledomain "bahayscout/backend/internal/profile/domain"
)

// Category is whether the property is offered for sale or for rent.
type Category string

const (
	CategorySale Category = "sale"
	CategoryRent Category = "rent"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c == CategorySale || c == CategoryRent }

// PropertyType is the kind of property.
type PropertyType string

const (
	PropertyCondo      PropertyType = "condo"
	PropertyHouseLot   PropertyType = "house_lot"
	PropertyTownhouse  PropertyType = "townhouse"
	PropertyLot        PropertyType = "lot"
	PropertyCommercial PropertyType = "commercial"
	PropertyApartment  PropertyType = "apartment"
	PropertyBedspace   PropertyType = "bedspace"
)

var propertyTypeLabels = map[PropertyType]string{
	PropertyCondo:      "Condo",
	PropertyHouseLot:   "House & Lot",
	PropertyTownhouse:  "Townhouse",
	PropertyLot:        "Lot",
	PropertyCommercial: "Commercial",
	PropertyApartment:  "Apartment",
	PropertyBedspace:   "Bedspace",
}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	_, ok := propertyTypeLabels[t]
	return ok
}

// Label is the human-readable name; unknown types are returned unchanged.
func (t PropertyType) Label() string {
	if l, ok := propertyTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Status is a listing's position in the moderation lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Photo is an image attached to a listing. StoragePath is opaque; uploads happen elsewhere.
type Photo struct {
	ID          string `json:"id"`
	ListingID   string `json:"listingId"`
	StoragePath string `json:"storagePath"`
	SortOrder   int    `json:"sortOrder"`
}

// Listing is a property offered by a lister. Owner, Location and Photos are populated on reads
// that join them and are nil/empty otherwise.
type Listing struct {
	ID              string       `json:"id"`
	OwnerID         string       `json:"ownerId"`
	Status          Status       `json:"status"`
	Category        Category     `json:"category"`
	PropertyType    PropertyType `json:"propertyType"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	PricePHP        int64        `json:"pricePhp"`
	PricePeriod     *string      `json:"pricePeriod"`
	Bedrooms        *int         `json:"bedrooms"`
	Bathrooms       *int         `json:"bathrooms"`
	FloorAreaSqm    *float64     `json:"floorAreaSqm"`
	LotAreaSqm      *float64     `json:"lotAreaSqm"`
	LocationID      *int64       `json:"locationId"`
	AddressLine     *string      `json:"addressLine"`
	Slug            string       `json:"slug"`
	Point           *Point       `json:"point"`
	RejectionReason *string      `json:"rejectionReason,omitempty"`
	PublishedAt     *time.Time   `json:"publishedAt"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	// DistanceKm is set by radius searches.
	DistanceKm *float64 `json:"distanceKm,omitempty"`

	Owner    *profiledomain.Summary   `json:"owner,omitempty"`
	Location *locationdomain.Location `json:"location,omitempty"`
	Photos   []Photo                  `json:"photos"`
}

// IsPublished reports whether the listing is publicly visible.
func (l *Listing) IsPublished() bool { return l.Status == StatusPublished }

// CoverPhoto returns the first photo by sort order, or nil.
func (l *Listing) CoverPhoto() *Photo {
	if len(l.Photos) == 0 {
		return nil
	}
	return &l.Photos[0]
}
