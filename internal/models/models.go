package models

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Both backends speak bare JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the client-side copy of a catalog product. The catalog service
// owns the authoritative record; cached copies are replaced wholesale on
// every fetch.
type Product struct {
	ID          int64           `json:"ID"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

// GroupBuy is a discount offer on one product. Participant count and status
// are server-authoritative and only mirrored here, never transitioned
// locally.
type GroupBuy struct {
	ID              int64           `json:"ID"`
	ProductID       int64           `json:"product_id"`
	Product         Product         `json:"Product"`
	Discount        decimal.Decimal `json:"discount"`
	MinParticipants int             `json:"min_participants"`
	Participants    int             `json:"participants"`
	Status          Status          `json:"status"`
}

// Order is immutable once created; total_price is computed client-side and
// transmitted, the backend remains the final authority on acceptance.
type Order struct {
	ID         int64           `json:"ID"`
	ProductID  int64           `json:"product_id"`
	GroupBuyID int64           `json:"groupbuy_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// User is owned by the auth service. The password is write-only and never
// appears on read payloads.
type User struct {
	ID       int64  `json:"ID"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Status is the group-buy lifecycle state. Unrecognized wire values decode
// to StatusUnknown so a stale or corrupt status is never treated as active.
type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusCompleted
)

const (
	statusActive    = "active"
	statusCompleted = "completed"
)

// ParseStatus maps a wire string onto a Status, failing closed to
// StatusUnknown.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case statusActive:
		return StatusActive
	case statusCompleted:
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return statusActive
	case StatusCompleted:
		return statusCompleted
	default:
		return "unknown"
	}
}

// Known reports whether the status decoded to a recognized state.
func (s Status) Known() bool {
	return s == StatusActive || s == StatusCompleted
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	// A malformed status field must not fail the whole entity decode; it
	// lands in StatusUnknown and the entity needs a refresh before joins.
	raw := string(bytes.Trim(data, `"`))
	*s = ParseStatus(raw)
	return nil
}

// ProductDraft carries validated fields for a product create/update. Built
// by the draft package; raw form values never reach a client directly.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

// GroupBuyDraft carries validated fields for a group-buy create.
type GroupBuyDraft struct {
	ProductID       int64
	Discount        decimal.Decimal
	MinParticipants int
	Status          Status
}

// OrderDraft carries validated fields for an order create. TotalPrice is
// filled by the orchestrator from the pricing engine, never by the caller.
type OrderDraft struct {
	ProductID  int64
	GroupBuyID int64
	Quantity   int
	TotalPrice decimal.Decimal
}

// UserDraft carries the optional fields of a user update; empty fields are
// omitted from the request body.
type UserDraft struct {
	Username string
	Email    string
	Password string
}
