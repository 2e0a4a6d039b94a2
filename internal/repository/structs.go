package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Parcel struct {
	ID           string    `db:"id"`
	TrackingCode string    `db:"tracking_code"`
	Sender       string    `db:"sender"`
	Recipient    string    `db:"recipient"`
	Phone        string    `db:"phone"`
	Weight       string    `db:"weight"`
	City         string    `db:"city"`
	PaymentNote  string    `db:"payment_note"`
	ArrivalDate  *string   `db:"arrival_date"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// ListFilter narrows List results. Zero values mean "no restriction".
type ListFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}
