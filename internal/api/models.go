package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// CountryRequest is the payload for creating or replacing a country.
type CountryRequest struct {
	Name      string `json:"name"      validate:"required,max=50"`
	ShortName string `json:"shortName" validate:"max=2"`
}

// ToDomain converts the request into a domain.Country.
func (r CountryRequest) ToDomain() *domain.Country {
	return &domain.Country{Name: r.Name, ShortName: r.ShortName}
}

// HotelRequest is the payload for creating or replacing a hotel.
type HotelRequest struct {
	Name      string  `json:"name"      validate:"required,max=150"`
	Address   string  `json:"address"   validate:"max=250"`
	Rating    float64 `json:"rating"    validate:"gte=1,lte=5"`
	CountryID int64   `json:"countryId" validate:"required,gt=0"`
}

// ToDomain converts the request into a domain.Hotel.
func (r HotelRequest) ToDomain() *domain.Hotel {
	return &domain.Hotel{Name: r.Name, Address: r.Address, Rating: r.Rating, CountryID: r.CountryID}
}

// CountryResponse is the wire form of a country. Hotels is present only
// when the relation was requested, and is then never null.
type CountryResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	ShortName string           `json:"shortName"`
	Hotels    *[]HotelResponse `json:"hotels,omitempty"`
}

// HotelResponse is the wire form of a hotel.
type HotelResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Address   string           `json:"address"`
	Rating    float64          `json:"rating"`
	CountryID int64            `json:"countryId"`
	Country   *CountryResponse `json:"country,omitempty"`
}

func countryToResponse(c *domain.Country) CountryResponse {
	resp := CountryResponse{ID: c.ID, Name: c.Name, ShortName: c.ShortName}
	if c.Hotels != nil {
		hotels := make([]HotelResponse, 0, len(c.Hotels))
		for i := range c.Hotels {
			hotels = append(hotels, hotelToResponse(&c.Hotels[i]))
		}
		resp.Hotels = &hotels
	}
	return resp
}

func hotelToResponse(h *domain.Hotel) HotelResponse {
	resp := HotelResponse{
		ID:        h.ID,
		Name:      h.Name,
		Address:   h.Address,
		Rating:    h.Rating,
		CountryID: h.CountryID,
	}
	if h.Country != nil {
		country := countryToResponse(h.Country)
		resp.Country = &country
	}
	return resp
}

// PagedResponse is one page of a listing plus its navigation metadata.
type PagedResponse[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"totalCount"`
	PageNumber  int   `json:"pageNumber"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
}

func toPagedResponse[E, T any](page *domain.PagedResult[E], convert func(*E) T) PagedResponse[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return PagedResponse[T]{
		Items:       items,
		TotalCount:  page.TotalCount,
		PageNumber:  page.PageNumber,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
		HasPrevious: page.HasPrevious(),
		HasNext:     page.HasNext(),
	}
}

// RegisterRequest defines the payload for the account registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	Email     string `json:"email"     validate:"required,email,max=256"`
	Password  string `json:"password"  validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// Token is the last access token issued to the client. It may be expired.
	Token        string `json:"token"        validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AccountResponse describes a newly registered account.
type AccountResponse struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Roles    []string  `json:"roles"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	// ExpiresAt is the RFC 3339 expiry of Token.
	ExpiresAt string `json:"expiresAt"`
}

func authResponse(pair *domain.TokenPair) AuthResponse {
	return AuthResponse{
		UserID:       pair.AccessToken.Subject,
		Token:        pair.AccessToken.Value,
		RefreshToken: pair.RefreshToken.Value,
		ExpiresAt:    pair.AccessToken.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
