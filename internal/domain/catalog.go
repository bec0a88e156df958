package domain

import "strings"

// Country is a catalog entry that owns zero or more hotels.
type Country struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"shortName"`
	Hotels    []Hotel `json:"hotels,omitempty"`
}

// Validate checks the fields a client may set.
func (c *Country) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "is required", nil)
	}
	if len(c.Name) > 50 {
		return NewValidationError("name", "must be at most 50 characters", nil)
	}
	if len(c.ShortName) > 2 {
		return NewValidationError("shortName", "must be at most 2 characters", nil)
	}
	return nil
}

// Hotel is a catalog entry that belongs to exactly one country.
type Hotel struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Rating    float64  `json:"rating"`
	CountryID int64    `json:"countryId"`
	Country   *Country `json:"country,omitempty"`
}

// Validate checks the fields a client may set.
func (h *Hotel) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return NewValidationError("name", "is required", nil)
	}
	if len(h.Name) > 150 {
		return NewValidationError("name", "must be at most 150 characters", nil)
	}
	if len(h.Address) > 250 {
		return NewValidationError("address", "must be at most 250 characters", nil)
	}
	if h.Rating < 1 || h.Rating > 5 {
		return NewValidationError("rating", "must be between 1 and 5", nil)
	}
	if h.CountryID <= 0 {
		return NewValidationError("countryId", "is required", nil)
	}
	return nil
}
