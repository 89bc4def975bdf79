package levels

import (
	"net/url"
	"strings"
)

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

var addressKeys = []string{"rua", "numero", "bairro", "cidade", "cep"}

// AddressText joins the non-empty address fields of a location mapping
// (street, number, neighbourhood, city, postal code).
func AddressText(location any) string {
	fields := CoerceMapping(location)
	parts := make([]string, 0, len(addressKeys))
	for _, key := range addressKeys {
		if !present(fields[key]) {
			continue
		}
		if part := CoerceString(fields[key]); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ", "))
}

// MapsURL builds a map search link for free text. Empty text yields nil.
func MapsURL(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	u := mapsSearchURL + url.QueryEscape(text)
	return &u
}

// BuildMapsURL builds the map search link of a structured address.
func BuildMapsURL(location any) *string {
	return MapsURL(AddressText(location))
}

// present mirrors the truthiness check applied to address fields: zero
// numbers, false and empty values are skipped.
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	}
	if f := CoerceFloat(v); f != nil {
		return *f != 0
	}
	return CoerceString(v) != ""
}
