package model

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress represents a saved delivery address.
type ShippingAddress struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	Phone      string    `json:"phone" db:"phone"`
	Address1   string    `json:"address1" db:"address1"`
	Address2   string    `json:"address2" db:"address2"`
	City       string    `json:"city" db:"city"`
	Province   string    `json:"province" db:"province"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	Type       string    `json:"type" db:"type"`
	IsDefault  bool      `json:"isDefault" db:"is_default"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// AddressRequest represents the payload for creating or updating an address.
type AddressRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1" validate:"required"`
	Address2   string `json:"address2"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Type       string `json:"type"`
	IsDefault  bool   `json:"isDefault"`
}

// Apply copies the request fields onto a.
func (r *AddressRequest) Apply(a *ShippingAddress) {
	a.FirstName = r.FirstName
	a.LastName = r.LastName
	a.Phone = r.Phone
	a.Address1 = r.Address1
	a.Address2 = r.Address2
	a.City = r.City
	a.Province = r.Province
	a.PostalCode = r.PostalCode
	a.Country = r.Country
	a.Type = r.Type
	a.IsDefault = r.IsDefault
}
