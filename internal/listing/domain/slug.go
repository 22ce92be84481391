package domain

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// SlugBase lowercases title and collapses every run of non [a-z0-9] characters into a single "-".
func SlugBase(title string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// NewSlug returns SlugBase(title) followed by "-" and an 8-character random id.
// Titles with no usable characters yield just the id.
func NewSlug(title string) (string, error) {
	id, err := gonanoid.New(8)
	if err != nil {
		return "", err
	}
	base := SlugBase(title)
	if base == "" {
		return id, nil
	}
	return base + "-" + id, nil
}
