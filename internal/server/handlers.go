package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/parceldesk/parceldesk/internal/importer"
	"github.com/parceldesk/parceldesk/internal/metrics"
	"github.com/parceldesk/parceldesk/internal/storage"
)

const maxUploadBytes = 32 << 20

type itemRequest struct {
	TrackingCode string      `json:"trackingCode"`
	Sender       string      `json:"sender"`
	Recipient    string      `json:"recipient"`
	Phone        string      `json:"phone"`
	Weight       interface{} `json:"weight"`
	City         string      `json:"city"`
	PaymentNote  string      `json:"paymentNote"`
	Date         interface{} `json:"date"`
	Status       string      `json:"status"`
}

// toFields normalizes one JSON item into parcel fields. The date comes in
// as whatever the client sent (serial number, slash date, ISO string) and
// is canonicalized here; an unparseable date is dropped, not rejected.
func (req itemRequest) toFields(defaultStatus storage.Status) (storage.ParcelFields, error) {
	fields := storage.ParcelFields{
		TrackingCode: strings.TrimSpace(req.TrackingCode),
		Sender:       strings.TrimSpace(req.Sender),
		Recipient:    strings.TrimSpace(req.Recipient),
		Phone:        strings.TrimSpace(req.Phone),
		Weight:       coerceJSONString(req.Weight),
		City:         strings.TrimSpace(req.City),
		PaymentNote:  strings.TrimSpace(req.PaymentNote),
		Status:       defaultStatus,
	}

	if req.Status != "" {
		status, ok := storage.ParseStatus(req.Status)
		if !ok {
			return storage.ParcelFields{}, storage.ErrInvalidStatus
		}
		fields.Status = status
	}

	if date, ok := importer.NormalizeDate(req.Date); ok {
		fields.Date = &date
	}

	if err := fields.Validate(); err != nil {
		return storage.ParcelFields{}, err
	}
	return fields, nil
}

func coerceJSONString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Query: r.URL.Query().Get("q"),
	}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status, ok := storage.ParseStatus(statusParam)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_status", storage.ErrInvalidStatus.Error())
			return
		}
		opts.Status = string(status)
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_page", "Invalid value for 'page' parameter")
			return
		}
		opts.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "Invalid value for 'limit' parameter")
			return
		}
		opts.Limit = limit
	}

	parcels, err := s.storage.ListParcels(r.Context(), opts)
	if err != nil {
		s.logger.Error("Failed to list parcels", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("list_items").Inc()
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch items")
		return
	}

	respondJSON(w, http.StatusOK, parcels)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	fields, err := req.toFields(storage.DefaultStatus)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	parcel, err := s.storage.AddParcel(r.Context(), fields)
	if err != nil {
		s.logger.Error("Failed to create parcel", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("create_item").Inc()
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create item")
		return
	}

	metrics.ParcelsCreatedTotal.Inc()
	respondJSON(w, http.StatusCreated, parcel)
}

func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var bulkRequest struct {
		Items         []itemRequest `json:"items"`
		DefaultStatus string        `json:"defaultStatus"`
	}

	if err := decodeJSON(r, &bulkRequest); err != nil || len(bulkRequest.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request. Expected an array of items.")
		return
	}

	defaultStatus := storage.DefaultStatus
	if bulkRequest.DefaultStatus != "" {
		status, ok := storage.ParseStatus(bulkRequest.DefaultStatus)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_status", storage.ErrInvalidStatus.Error())
			return
		}
		defaultStatus = status
	}

	var valid []storage.ParcelFields
	var rowErrors []importer.RowError
	for i, item := range bulkRequest.Items {
		fields, err := item.toFields(defaultStatus)
		if err != nil {
			rowErrors = append(rowErrors, importer.RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		valid = append(valid, fields)
	}

	if len(valid) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "no_valid_items",
			"message": "No valid items found. Check the field names in your request.",
			"details": rowErrors,
		})
		return
	}

	parcels, err := s.storage.AddParcels(r.Context(), valid)
	if err != nil {
		s.logger.Error("Failed to create parcels in bulk", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("bulk_create").Inc()
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create items")
		return
	}

	metrics.ParcelsCreatedTotal.Add(float64(len(parcels)))
	respondJSON(w, http.StatusCreated, importer.ImportResult{
		Items:   parcels,
		Success: len(parcels),
		Errors:  rowErrors,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file_required", "A 'file' form field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable_file", "Failed to read uploaded file")
		return
	}

	defaultStatus := storage.DefaultStatus
	if statusParam := r.FormValue("status"); statusParam != "" {
		status, ok := storage.ParseStatus(statusParam)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_status", storage.ErrInvalidStatus.Error())
			return
		}
		defaultStatus = status
	}

	result, err := s.importer.Import(r.Context(), data, header.Filename, defaultStatus)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrUnsupportedFormat):
			respondError(w, http.StatusBadRequest, "unsupported_format", "Unsupported file format. Upload .xlsx, .docx or .txt.")
		case errors.Is(err, importer.ErrEmptyInput):
			respondError(w, http.StatusBadRequest, "empty_file", "The file contains no data rows")
		case errors.Is(err, importer.ErrNoValidRows):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "no_valid_rows",
				"message": "No valid rows found. Check the column headers in your file.",
				"details": result.Errors,
			})
		default:
			s.logger.Error("Import failed", zap.String("file", header.Filename), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal_error", "Failed to import items")
		}
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	parcel, err := s.storage.GetParcel(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Item was not found")
			return
		}
		s.logger.Error("Failed to get parcel", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch item")
		return
	}

	respondJSON(w, http.StatusOK, parcel)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		TrackingCode *string     `json:"trackingCode"`
		Sender       *string     `json:"sender"`
		Recipient    *string     `json:"recipient"`
		Phone        *string     `json:"phone"`
		Weight       *string     `json:"weight"`
		City         *string     `json:"city"`
		PaymentNote  *string     `json:"paymentNote"`
		Date         interface{} `json:"date"`
		Status       *string     `json:"status"`
	}

	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	patch := storage.ParcelPatch{
		TrackingCode: req.TrackingCode,
		Sender:       req.Sender,
		Recipient:    req.Recipient,
		Phone:        req.Phone,
		Weight:       req.Weight,
		City:         req.City,
		PaymentNote:  req.PaymentNote,
		Status:       req.Status,
	}

	if req.Date != nil {
		if date, ok := importer.NormalizeDate(req.Date); ok {
			patch.Date = &date
		} else {
			patch.ClearDate = true
		}
	}

	parcel, err := s.storage.UpdateParcel(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", "Item was not found")
		case errors.Is(err, storage.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, "invalid_status", storage.ErrInvalidStatus.Error())
		default:
			s.logger.Error("Failed to update parcel", zap.String("id", id), zap.Error(err))
			metrics.OperationErrorsTotal.WithLabelValues("update_item").Inc()
			respondError(w, http.StatusInternalServerError, "internal_error", "Failed to update item")
		}
		return
	}

	respondJSON(w, http.StatusOK, parcel)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.storage.DeleteParcel(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Item was not found")
			return
		}
		s.logger.Error("Failed to delete parcel", zap.String("id", id), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("delete_item").Inc()
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	statusParam := r.URL.Query().Get("status")

	count, err := s.storage.DeleteParcels(r.Context(), statusParam)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidStatus) {
			respondError(w, http.StatusBadRequest, "invalid_status", storage.ErrInvalidStatus.Error())
			return
		}
		s.logger.Error("Failed to bulk delete parcels", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("delete_items").Inc()
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to delete items")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Items deleted successfully",
		"count":   count,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.storage.StatusCounts(r.Context())
	if err != nil {
		s.logger.Error("Failed to load stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to load stats")
		return
	}

	var total int64
	byStatus := make(map[string]int64, 4)
	for _, status := range []storage.Status{storage.StatusStopped, storage.StatusInWarehouse, storage.StatusReleased, storage.StatusRegion} {
		byStatus[string(status)] = counts[string(status)]
		total += counts[string(status)]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":    total,
		"byStatus": byStatus,
	})
}
