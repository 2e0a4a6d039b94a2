package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/parceldesk/parceldesk/internal/metrics"
	"github.com/parceldesk/parceldesk/internal/storage"
)

// ErrNoValidRows means every row in the file failed validation; nothing
// was persisted.
var ErrNoValidRows = errors.New("no valid rows found")

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

type ImportResult struct {
	Items   []storage.Parcel `json:"items"`
	Success int              `json:"success"`
	Errors  []RowError       `json:"errors,omitempty"`
}

type BatchCreator interface {
	AddParcels(ctx context.Context, items []storage.ParcelFields) ([]storage.Parcel, error)
}

type Importer struct {
	store  BatchCreator
	logger *zap.Logger
}

func New(store BatchCreator, logger *zap.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import runs the whole pipeline for one uploaded file: read, resolve,
// normalize, validate row by row, then persist every valid record in one
// transaction. Row failures never abort the batch; they come back in the
// result next to the successes.
func (im *Importer) Import(ctx context.Context, data []byte, filename string, defaultStatus storage.Status) (*ImportResult, error) {
	source, err := ReadSource(data, filename)
	if err != nil {
		return nil, err
	}

	var valid []storage.ParcelFields
	var rowErrors []RowError
	for _, record := range source.Records {
		fields, err := MapRecord(record, defaultStatus)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: record.Row, Reason: err.Error()})
			metrics.ImportRowErrorsTotal.Inc()
			continue
		}
		valid = append(valid, fields)
	}

	if len(valid) == 0 {
		return &ImportResult{Errors: rowErrors}, ErrNoValidRows
	}

	parcels, err := im.store.AddParcels(ctx, valid)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("import").Inc()
		return nil, fmt.Errorf("failed to persist import batch: %w", err)
	}

	metrics.ParcelsImportedTotal.Add(float64(len(parcels)))
	im.logger.Info("Import finished",
		zap.String("file", filename),
		zap.Int("success", len(parcels)),
		zap.Int("rejected", len(rowErrors)))

	return &ImportResult{Items: parcels, Success: len(parcels), Errors: rowErrors}, nil
}

// MapRecord resolves and normalizes one raw record into parcel fields,
// applying the schema. The date stays absent when unparseable; a record
// is never rejected for its optional date alone.
func MapRecord(record RawRecord, defaultStatus storage.Status) (storage.ParcelFields, error) {
	fields := storage.ParcelFields{Status: defaultStatus}

	if v, ok := resolveString(record, fieldLabels["trackingCode"]); ok {
		fields.TrackingCode = v
	}
	if v, ok := resolveString(record, fieldLabels["sender"]); ok {
		fields.Sender = v
	}
	if v, ok := resolveString(record, fieldLabels["recipient"]); ok {
		fields.Recipient = v
	}
	if v, ok := resolveString(record, fieldLabels["phone"]); ok {
		fields.Phone = v
	}
	if v, ok := resolveString(record, fieldLabels["weight"]); ok {
		fields.Weight = v
	}
	if v, ok := resolveString(record, fieldLabels["city"]); ok {
		fields.City = v
	}
	if v, ok := resolveString(record, fieldLabels["paymentNote"]); ok {
		fields.PaymentNote = v
	}

	// The date column needs the raw typed value so serial numbers are
	// not mistaken for text.
	if v, ok := resolveRaw(record, fieldLabels["date"]); ok {
		if date, ok := NormalizeDate(v); ok {
			fields.Date = &date
		}
	}

	if v, ok := resolveString(record, fieldLabels["status"]); ok {
		status, valid := storage.ParseStatus(v)
		if !valid {
			return storage.ParcelFields{}, storage.ErrInvalidStatus
		}
		fields.Status = status
	}

	if err := fields.Validate(); err != nil {
		return storage.ParcelFields{}, err
	}
	return fields, nil
}
