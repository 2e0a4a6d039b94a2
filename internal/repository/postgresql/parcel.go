package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/parceldesk/parceldesk/internal/db"
	"github.com/parceldesk/parceldesk/internal/repository"
)

type ParcelRepo struct {
	db db.DB
}

func NewParcelRepo(db db.DB) *ParcelRepo {
	return &ParcelRepo{db: db}
}

const insertParcelQuery = `
        INSERT INTO parcels (
            id, tracking_code, sender, recipient, phone, weight, city, payment_note, arrival_date, status, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

func (r *ParcelRepo) Create(ctx context.Context, parcel *repository.Parcel) error {
	_, err := r.db.Exec(ctx, insertParcelQuery,
		parcel.ID, parcel.TrackingCode, parcel.Sender, parcel.Recipient, parcel.Phone,
		parcel.Weight, parcel.City, parcel.PaymentNote, parcel.ArrivalDate, parcel.Status,
		parcel.CreatedAt, parcel.UpdatedAt)
	return err
}

func (r *ParcelRepo) CreateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error {
	_, err := tx.Exec(ctx, insertParcelQuery,
		parcel.ID, parcel.TrackingCode, parcel.Sender, parcel.Recipient, parcel.Phone,
		parcel.Weight, parcel.City, parcel.PaymentNote, parcel.ArrivalDate, parcel.Status,
		parcel.CreatedAt, parcel.UpdatedAt)
	return err
}

func (r *ParcelRepo) GetByID(ctx context.Context, id string) (*repository.Parcel, error) {
	var parcel repository.Parcel
	err := r.db.Get(ctx, &parcel, "SELECT * FROM parcels WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &parcel, nil
}

func (r *ParcelRepo) Update(ctx context.Context, parcel *repository.Parcel) error {
	_, err := r.db.Exec(ctx, `
        UPDATE parcels
        SET
            tracking_code = $1,
            sender = $2,
            recipient = $3,
            phone = $4,
            weight = $5,
            city = $6,
            payment_note = $7,
            arrival_date = $8,
            status = $9,
            updated_at = $10
        WHERE id = $11
    `, parcel.TrackingCode, parcel.Sender, parcel.Recipient, parcel.Phone, parcel.Weight,
		parcel.City, parcel.PaymentNote, parcel.ArrivalDate, parcel.Status, parcel.UpdatedAt, parcel.ID)
	return err
}

func (r *ParcelRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM parcels WHERE id = $1", id)
	return err
}

// DeleteAll removes every parcel, or only those under the given status
// when one is supplied. Returns the number of removed rows.
func (r *ParcelRepo) DeleteAll(ctx context.Context, status string) (int64, error) {
	if status == "" {
		tag, err := r.db.Exec(ctx, "DELETE FROM parcels")
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}

	tag, err := r.db.Exec(ctx, "DELETE FROM parcels WHERE status = $1", status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ParcelRepo) List(ctx context.Context, filter repository.ListFilter) ([]*repository.Parcel, error) {
	query := "SELECT * FROM parcels"
	var args []interface{}
	var where []string

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(tracking_code ILIKE $%d OR sender ILIKE $%d OR recipient ILIKE $%d OR phone ILIKE $%d OR city ILIKE $%d)",
			n, n, n, n, n))
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var parcels []*repository.Parcel
	err := r.db.Select(ctx, &parcels, query, args...)
	return parcels, err
}

func (r *ParcelRepo) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	var counts []repository.StatusCount
	err := r.db.Select(ctx, &counts, "SELECT status, COUNT(*) AS count FROM parcels GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count parcels by status: %w", err)
	}
	return counts, nil
}
