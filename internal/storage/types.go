package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusStopped     Status = "STOPPED"
	StatusInWarehouse Status = "IN_WAREHOUSE"
	StatusReleased    Status = "RELEASED"
	StatusRegion      Status = "REGION"
)

// DefaultStatus is what newly recorded parcels get when the caller does
// not say otherwise.
const DefaultStatus = StatusInWarehouse

var ErrNotFound = errors.New("parcel not found")
var ErrInvalidStatus = fmt.Errorf("status must be one of: %s, %s, %s, %s",
	StatusStopped, StatusInWarehouse, StatusReleased, StatusRegion)

func ValidStatus(s Status) bool {
	switch s {
	case StatusStopped, StatusInWarehouse, StatusReleased, StatusRegion:
		return true
	}
	return false
}

// ParseStatus maps loosely written status text ("in warehouse", "region")
// onto the enumeration.
func ParseStatus(s string) (Status, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := Status(normalized)
	return status, ValidStatus(status)
}

type Parcel struct {
	ID           string    `json:"id"`
	TrackingCode string    `json:"trackingCode"`
	Sender       string    `json:"sender"`
	Recipient    string    `json:"recipient"`
	Phone        string    `json:"phone"`
	Weight       string    `json:"weight"`
	City         string    `json:"city"`
	PaymentNote  string    `json:"paymentNote"`
	Date         *string   `json:"date,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ParcelFields is the caller-supplied part of a parcel, before the store
// assigns an identifier and timestamps. Date, when set, is already in the
// canonical DD/MM/YYYY form.
type ParcelFields struct {
	TrackingCode string
	Sender       string
	Recipient    string
	Phone        string
	Weight       string
	City         string
	PaymentNote  string
	Date         *string
	Status       Status
}

type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Validate checks the six required fields and the status enumeration.
func (f ParcelFields) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"trackingCode", f.TrackingCode},
		{"sender", f.Sender},
		{"recipient", f.Recipient},
		{"phone", f.Phone},
		{"weight", f.Weight},
		{"city", f.City},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return &ValidationError{Field: field.name}
		}
	}
	if !ValidStatus(f.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ParcelPatch carries a partial field set for merge-semantics updates.
// Nil pointers leave the stored value untouched. ClearDate removes a
// stored date when the caller supplied one that cannot be parsed.
type ParcelPatch struct {
	TrackingCode *string
	Sender       *string
	Recipient    *string
	Phone        *string
	Weight       *string
	City         *string
	PaymentNote  *string
	Date         *string
	ClearDate    bool
	Status       *string
}

// ListOptions narrows ListParcels output. Zero values mean everything,
// newest first.
type ListOptions struct {
	Status string
	Query  string
	Page   int
	Limit  int
}
