package notify

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// InquiryData fills the inquiry emails.
type InquiryData struct {
	ListingTitle  string
	ListingURL    string
	InquirerName  string
	InquirerEmail string
	InquirerPhone string
	Message       string
}

// ModerationData fills the listing approved/rejected emails.
type ModerationData struct {
	ListingTitle string
	ListingURL   string
	DashboardURL string
	Price        string
	Reason       string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
