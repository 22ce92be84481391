package domain

// Location is a row of the Philippine administrative hierarchy a listing is filed under.
type Location struct {
	ID               int64   `json:"id"`
	Region           string  `json:"region"`
	Province         string  `json:"province"`
	CityMunicipality string  `json:"cityMunicipality"`
	Barangay         *string `json:"barangay"`
	PostalCode       *string `json:"postalCode"`
}

// Filter narrows a location listing; empty fields are ignored. Matching is case-insensitive.
type Filter struct {
	Region   string
	Province string
	City     string
}
