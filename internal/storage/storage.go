package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parceldesk/parceldesk/internal/cache"
	"github.com/parceldesk/parceldesk/internal/db"
	"github.com/parceldesk/parceldesk/internal/repository"
)

type ParcelRepository interface {
	Create(ctx context.Context, parcel *repository.Parcel) error
	CreateTx(ctx context.Context, tx db.Tx, parcel *repository.Parcel) error
	GetByID(ctx context.Context, id string) (*repository.Parcel, error)
	Update(ctx context.Context, parcel *repository.Parcel) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, status string) (int64, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*repository.Parcel, error)
	CountByStatus(ctx context.Context) ([]repository.StatusCount, error)
}

type PostgresStorage struct {
	db         db.DB
	parcelRepo ParcelRepository
	stats      *cache.StatsCache

	txMaxWait time.Duration
	txTimeout time.Duration
}

func NewPostgresStorage(
	database db.DB,
	parcelRepo ParcelRepository,
	stats *cache.StatsCache,
	txMaxWait, txTimeout time.Duration,
) *PostgresStorage {
	return &PostgresStorage{
		db:         database,
		parcelRepo: parcelRepo,
		stats:      stats,
		txMaxWait:  txMaxWait,
		txTimeout:  txTimeout,
	}
}

func (s *PostgresStorage) AddParcel(ctx context.Context, fields ParcelFields) (*Parcel, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	repoParcel := newRepoParcel(fields)
	if err := s.parcelRepo.Create(ctx, repoParcel); err != nil {
		return nil, fmt.Errorf("failed to add parcel: %w", err)
	}

	if s.stats != nil {
		s.stats.Add(repoParcel.Status, 1)
	}

	parcel := toParcel(repoParcel)
	return &parcel, nil
}

// AddParcels persists the whole batch inside one transaction. Slot
// acquisition waits at most txMaxWait; the inserts and commit share one
// txTimeout deadline that survives the caller's cancellation. Any failure
// rolls everything back.
func (s *PostgresStorage) AddParcels(ctx context.Context, items []ParcelFields) ([]Parcel, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, s.txMaxWait)
	defer cancelWait()

	tx, err := s.db.BeginTx(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}

	execCtx, cancelExec := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancelExec()

	parcels := make([]Parcel, 0, len(items))
	for _, fields := range items {
		repoParcel := newRepoParcel(fields)
		if err := s.parcelRepo.CreateTx(execCtx, tx, repoParcel); err != nil {
			_ = tx.Rollback(context.Background())
			return nil, fmt.Errorf("failed to insert parcel %q: %w", repoParcel.TrackingCode, err)
		}
		parcels = append(parcels, toParcel(repoParcel))
	}

	if err := tx.Commit(execCtx); err != nil {
		_ = tx.Rollback(context.Background())
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	if s.stats != nil {
		for _, parcel := range parcels {
			s.stats.Add(string(parcel.Status), 1)
		}
	}

	return parcels, nil
}

func (s *PostgresStorage) GetParcel(ctx context.Context, id string) (*Parcel, error) {
	repoParcel, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get parcel: %w", err)
	}

	parcel := toParcel(repoParcel)
	return &parcel, nil
}

func (s *PostgresStorage) ListParcels(ctx context.Context, opts ListOptions) ([]Parcel, error) {
	filter := repository.ListFilter{
		Status: opts.Status,
		Query:  opts.Query,
	}
	if opts.Limit > 0 {
		filter.Limit = opts.Limit
		if opts.Page > 1 {
			filter.Offset = (opts.Page - 1) * opts.Limit
		}
	}

	repoParcels, err := s.parcelRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	parcels := make([]Parcel, len(repoParcels))
	for i, repoParcel := range repoParcels {
		parcels[i] = toParcel(repoParcel)
	}
	return parcels, nil
}

// UpdateParcel merges the patch into the stored parcel: only supplied
// fields change, and a supplied status is validated against the
// enumeration before anything is written.
func (s *PostgresStorage) UpdateParcel(ctx context.Context, id string, patch ParcelPatch) (*Parcel, error) {
	repoParcel, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get parcel: %w", err)
	}

	oldStatus := repoParcel.Status

	if patch.Status != nil {
		status, ok := ParseStatus(*patch.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		repoParcel.Status = string(status)
	}
	if patch.TrackingCode != nil {
		repoParcel.TrackingCode = *patch.TrackingCode
	}
	if patch.Sender != nil {
		repoParcel.Sender = *patch.Sender
	}
	if patch.Recipient != nil {
		repoParcel.Recipient = *patch.Recipient
	}
	if patch.Phone != nil {
		repoParcel.Phone = *patch.Phone
	}
	if patch.Weight != nil {
		repoParcel.Weight = *patch.Weight
	}
	if patch.City != nil {
		repoParcel.City = *patch.City
	}
	if patch.PaymentNote != nil {
		repoParcel.PaymentNote = *patch.PaymentNote
	}
	if patch.Date != nil {
		repoParcel.ArrivalDate = patch.Date
	} else if patch.ClearDate {
		repoParcel.ArrivalDate = nil
	}

	repoParcel.UpdatedAt = time.Now().UTC()
	if err := s.parcelRepo.Update(ctx, repoParcel); err != nil {
		return nil, fmt.Errorf("failed to update parcel: %w", err)
	}

	if s.stats != nil && oldStatus != repoParcel.Status {
		s.stats.Move(oldStatus, repoParcel.Status)
	}

	parcel := toParcel(repoParcel)
	return &parcel, nil
}

func (s *PostgresStorage) DeleteParcel(ctx context.Context, id string) error {
	repoParcel, err := s.parcelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get parcel: %w", err)
	}

	if err := s.parcelRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete parcel: %w", err)
	}

	if s.stats != nil {
		s.stats.Remove(repoParcel.Status, 1)
	}
	return nil
}

// DeleteParcels removes everything, or only the parcels under the given
// status when one is supplied.
func (s *PostgresStorage) DeleteParcels(ctx context.Context, status string) (int64, error) {
	if status != "" {
		parsed, ok := ParseStatus(status)
		if !ok {
			return 0, ErrInvalidStatus
		}
		status = string(parsed)
	}

	count, err := s.parcelRepo.DeleteAll(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to delete parcels: %w", err)
	}

	if s.stats != nil {
		if status == "" {
			for st, n := range s.stats.Snapshot() {
				s.stats.Remove(st, n)
			}
		} else {
			s.stats.Remove(status, count)
		}
	}
	return count, nil
}

func (s *PostgresStorage) StatusCounts(ctx context.Context) (map[string]int64, error) {
	if s.stats != nil {
		return s.stats.Snapshot(), nil
	}

	counts, err := s.parcelRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for _, sc := range counts {
		out[sc.Status] = sc.Count
	}
	return out, nil
}

func newRepoParcel(fields ParcelFields) *repository.Parcel {
	now := time.Now().UTC()
	return &repository.Parcel{
		ID:           uuid.NewString(),
		TrackingCode: fields.TrackingCode,
		Sender:       fields.Sender,
		Recipient:    fields.Recipient,
		Phone:        fields.Phone,
		Weight:       fields.Weight,
		City:         fields.City,
		PaymentNote:  fields.PaymentNote,
		ArrivalDate:  fields.Date,
		Status:       string(fields.Status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func toParcel(repoParcel *repository.Parcel) Parcel {
	return Parcel{
		ID:           repoParcel.ID,
		TrackingCode: repoParcel.TrackingCode,
		Sender:       repoParcel.Sender,
		Recipient:    repoParcel.Recipient,
		Phone:        repoParcel.Phone,
		Weight:       repoParcel.Weight,
		City:         repoParcel.City,
		PaymentNote:  repoParcel.PaymentNote,
		Date:         repoParcel.ArrivalDate,
		Status:       Status(repoParcel.Status),
		CreatedAt:    repoParcel.CreatedAt,
		UpdatedAt:    repoParcel.UpdatedAt,
	}
}
