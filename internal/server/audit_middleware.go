package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		skipRequestBody := strings.Contains(contentType, "multipart/form-data")

		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r),
		}

		if id, ok := mux.Vars(r)["id"]; ok {
			entry.ParcelID = id
		}

		if !skipRequestBody && r.Body != nil {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			if !strings.Contains(r.URL.Path, "/auth/") {
				entry.Request = string(requestBody)
			}

			if entry.ParcelID != "" && r.Method == http.MethodPut {
				var statusRequest struct {
					Status *string `json:"status"`
				}
				if err := json.Unmarshal(requestBody, &statusRequest); err == nil && statusRequest.Status != nil {
					if parcel, err := s.storage.GetParcel(r.Context(), entry.ParcelID); err == nil {
						entry.OldStatus = string(parcel.Status)
						entry.NewStatus = *statusRequest.Status
					}
				}
			}
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func handlerName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return r.Method + " " + tmpl
		}
	}
	return r.Method + " " + r.URL.Path
}
