package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Vendor is the profile document keyed by the vendor's identity id.
type Vendor struct {
	ID           string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	ShopID       string    `json:"shopId,omitempty"`
	ShopName     string    `json:"shopName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the attributes a vendor may change on their profile.
// Nil fields are left as stored.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	ShopID   *string `json:"shopId"`
	ShopName *string `json:"shopName"`
}

type Shop struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Pincode   string    `json:"pincode"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	VendorID    string    `json:"vendorId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	Available   bool      `json:"available"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductFilter narrows product listings. Empty fields match everything.
type ProductFilter struct {
	ShopID   string
	Category string
	Query    string
}
