package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/parceldesk/parceldesk/internal/importer"
	"github.com/parceldesk/parceldesk/internal/kafka"
	mock_server "github.com/parceldesk/parceldesk/internal/server/mocks"
	"github.com/parceldesk/parceldesk/internal/storage"
)

const testPassword = "secret123"

func newTestServer(t *testing.T) (*Server, *mock_server.MockStorage, *mock_server.MockFileImporter) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStorage := mock_server.NewMockStorage(ctrl)
	mockImporter := mock_server.NewMockFileImporter(ctrl)

	srv, err := New(mockStorage, mockImporter, testPassword, zap.NewNop(), kafka.NewConsoleProducer(), "parcel_audit")
	require.NoError(t, err)
	return srv, mockStorage, mockImporter
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestHandleLogin(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{name: "correct password", body: map[string]interface{}{"password": testPassword}, expectedStatus: http.StatusOK},
		{name: "wrong password", body: map[string]interface{}{"password": "nope"}, expectedStatus: http.StatusUnauthorized},
		{name: "missing password", body: map[string]interface{}{}, expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, tc.body))
			rr := httptest.NewRecorder()

			srv.handleLogin(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestPasswordAuthMiddleware(t *testing.T) {
	srv, _, _ := newTestServer(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := srv.passwordAuthMiddleware(next)

	t.Run("valid password passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.SetBasicAuth("anyone", testPassword)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleCreateItem(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		setupMocks     func(*mock_server.MockStorage)
		expectedStatus int
	}{
		{
			name: "success with serial date",
			body: map[string]interface{}{
				"trackingCode": "TRK-1",
				"sender":       "Acme Ltd",
				"recipient":    "Nino",
				"phone":        "555123456",
				"weight":       2.5,
				"city":         "Tbilisi",
				"date":         45367,
			},
			setupMocks: func(m *mock_server.MockStorage) {
				m.EXPECT().
					AddParcel(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields storage.ParcelFields) (*storage.Parcel, error) {
						assert.Equal(t, "TRK-1", fields.TrackingCode)
						assert.Equal(t, "2.5", fields.Weight)
						assert.Equal(t, storage.DefaultStatus, fields.Status)
						require.NotNil(t, fields.Date)
						assert.Equal(t, "15/03/2024", *fields.Date)
						return &storage.Parcel{ID: "p1", TrackingCode: fields.TrackingCode}, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing required field",
			body: map[string]interface{}{
				"trackingCode": "TRK-1",
			},
			setupMocks:     func(*mock_server.MockStorage) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid status",
			body: map[string]interface{}{
				"trackingCode": "TRK-1",
				"sender":       "Acme Ltd",
				"recipient":    "Nino",
				"phone":        "555123456",
				"weight":       "2.5",
				"city":         "Tbilisi",
				"status":       "TELEPORTED",
			},
			setupMocks:     func(*mock_server.MockStorage) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: map[string]interface{}{
				"trackingCode": "TRK-1",
				"sender":       "Acme Ltd",
				"recipient":    "Nino",
				"phone":        "555123456",
				"weight":       "2.5",
				"city":         "Tbilisi",
			},
			setupMocks: func(m *mock_server.MockStorage) {
				m.EXPECT().
					AddParcel(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, mockStorage, _ := newTestServer(t)
			tc.setupMocks(mockStorage)

			req := httptest.NewRequest(http.MethodPost, "/api/items", jsonBody(t, tc.body))
			rr := httptest.NewRecorder()

			srv.handleCreateItem(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandleListItems(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		srv, mockStorage, _ := newTestServer(t)

		mockStorage.EXPECT().
			ListParcels(gomock.Any(), gomock.Eq(storage.ListOptions{
				Status: "RELEASED",
				Query:  "TRK",
				Page:   2,
				Limit:  10,
			})).
			Return([]storage.Parcel{{ID: "p1"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/items?status=released&q=TRK&page=2&limit=10", nil)
		rr := httptest.NewRecorder()

		srv.handleListItems(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var parcels []storage.Parcel
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &parcels))
		assert.Len(t, parcels, 1)
	})

	t.Run("rejects bad status", func(t *testing.T) {
		srv, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/items?status=TELEPORTED", nil)
		rr := httptest.NewRecorder()

		srv.handleListItems(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects bad page", func(t *testing.T) {
		srv, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/items?page=zero", nil)
		rr := httptest.NewRecorder()

		srv.handleListItems(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleGetItem(t *testing.T) {
	srv, mockStorage, _ := newTestServer(t)

	mockStorage.EXPECT().
		GetParcel(gomock.Any(), gomock.Eq("missing")).
		Return(nil, storage.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/items/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()

	srv.handleGetItem(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleUpdateItem(t *testing.T) {
	t.Run("merges patch", func(t *testing.T) {
		srv, mockStorage, _ := newTestServer(t)

		mockStorage.EXPECT().
			UpdateParcel(gomock.Any(), gomock.Eq("p1"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, patch storage.ParcelPatch) (*storage.Parcel, error) {
				require.NotNil(t, patch.City)
				assert.Equal(t, "Batumi", *patch.City)
				require.NotNil(t, patch.Date)
				assert.Equal(t, "15/03/2024", *patch.Date)
				assert.Nil(t, patch.Sender)
				return &storage.Parcel{ID: "p1", City: *patch.City}, nil
			})

		body := map[string]interface{}{"city": "Batumi", "date": "2024-03-15"}
		req := httptest.NewRequest(http.MethodPut, "/api/items/p1", jsonBody(t, body))
		req = mux.SetURLVars(req, map[string]string{"id": "p1"})
		rr := httptest.NewRecorder()

		srv.handleUpdateItem(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalid status is rejected by storage", func(t *testing.T) {
		srv, mockStorage, _ := newTestServer(t)

		mockStorage.EXPECT().
			UpdateParcel(gomock.Any(), gomock.Eq("p1"), gomock.Any()).
			Return(nil, storage.ErrInvalidStatus)

		body := map[string]interface{}{"status": "TELEPORTED"}
		req := httptest.NewRequest(http.MethodPut, "/api/items/p1", jsonBody(t, body))
		req = mux.SetURLVars(req, map[string]string{"id": "p1"})
		rr := httptest.NewRecorder()

		srv.handleUpdateItem(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unparseable date clears it", func(t *testing.T) {
		srv, mockStorage, _ := newTestServer(t)

		mockStorage.EXPECT().
			UpdateParcel(gomock.Any(), gomock.Eq("p1"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, patch storage.ParcelPatch) (*storage.Parcel, error) {
				assert.Nil(t, patch.Date)
				assert.True(t, patch.ClearDate)
				return &storage.Parcel{ID: "p1"}, nil
			})

		body := map[string]interface{}{"date": "not a date"}
		req := httptest.NewRequest(http.MethodPut, "/api/items/p1", jsonBody(t, body))
		req = mux.SetURLVars(req, map[string]string{"id": "p1"})
		rr := httptest.NewRecorder()

		srv.handleUpdateItem(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHandleDeleteItem(t *testing.T) {
	srv, mockStorage, _ := newTestServer(t)

	mockStorage.EXPECT().
		DeleteParcel(gomock.Any(), gomock.Eq("missing")).
		Return(storage.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/items/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()

	srv.handleDeleteItem(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDeleteItems(t *testing.T) {
	srv, mockStorage, _ := newTestServer(t)

	mockStorage.EXPECT().
		DeleteParcels(gomock.Any(), gomock.Eq("released")).
		Return(int64(4), nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/items?status=released", nil)
	rr := httptest.NewRecorder()

	srv.handleDeleteItems(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Count)
}

func TestHandleBulkCreate(t *testing.T) {
	t.Run("partial batch", func(t *testing.T) {
		srv, mockStorage, _ := newTestServer(t)

		mockStorage.EXPECT().
			AddParcels(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []storage.ParcelFields) ([]storage.Parcel, error) {
				require.Len(t, items, 1)
				assert.Equal(t, storage.StatusRegion, items[0].Status)
				return []storage.Parcel{{ID: "p1", TrackingCode: items[0].TrackingCode}}, nil
			})

		body := map[string]interface{}{
			"defaultStatus": "region",
			"items": []map[string]interface{}{
				{
					"trackingCode": "TRK-1",
					"sender":       "Acme Ltd",
					"recipient":    "Nino",
					"phone":        "555123456",
					"weight":       "2.5",
					"city":         "Tbilisi",
				},
				{"trackingCode": "TRK-2"},
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/items/bulk", jsonBody(t, body))
		rr := httptest.NewRecorder()

		srv.handleBulkCreate(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		var result importer.ImportResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 2, result.Errors[0].Row)
	})

	t.Run("no valid items", func(t *testing.T) {
		srv, _, _ := newTestServer(t)

		body := map[string]interface{}{
			"items": []map[string]interface{}{
				{"trackingCode": "TRK-1"},
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/items/bulk", jsonBody(t, body))
		rr := httptest.NewRecorder()

		srv.handleBulkCreate(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "no_valid_items")
	})

	t.Run("empty request", func(t *testing.T) {
		srv, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/items/bulk", jsonBody(t, map[string]interface{}{}))
		rr := httptest.NewRecorder()

		srv.handleBulkCreate(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func buildMultipart(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleImport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv, _, mockImporter := newTestServer(t)

		mockImporter.EXPECT().
			Import(gomock.Any(), gomock.Any(), gomock.Eq("upload.txt"), gomock.Eq(storage.DefaultStatus)).
			Return(&importer.ImportResult{Success: 2, Items: []storage.Parcel{{ID: "p1"}, {ID: "p2"}}}, nil)

		body, contentType := buildMultipart(t, "upload.txt", []byte("tracking code: TRK-1"))
		req := httptest.NewRequest(http.MethodPost, "/api/items/import", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		srv.handleImport(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		srv, _, mockImporter := newTestServer(t)

		mockImporter.EXPECT().
			Import(gomock.Any(), gomock.Any(), gomock.Eq("upload.pdf"), gomock.Any()).
			Return(nil, importer.ErrUnsupportedFormat)

		body, contentType := buildMultipart(t, "upload.pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/api/items/import", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		srv.handleImport(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "unsupported_format")
	})

	t.Run("no valid rows returns details", func(t *testing.T) {
		srv, _, mockImporter := newTestServer(t)

		mockImporter.EXPECT().
			Import(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&importer.ImportResult{Errors: []importer.RowError{{Row: 1, Reason: "sender is required"}}}, importer.ErrNoValidRows)

		body, contentType := buildMultipart(t, "upload.txt", []byte("tracking code: TRK-1"))
		req := httptest.NewRequest(http.MethodPost, "/api/items/import", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		srv.handleImport(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "sender is required")
	})

	t.Run("missing file field", func(t *testing.T) {
		srv, _, _ := newTestServer(t)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/items/import", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()

		srv.handleImport(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleStats(t *testing.T) {
	srv, mockStorage, _ := newTestServer(t)

	mockStorage.EXPECT().
		StatusCounts(gomock.Any()).
		Return(map[string]int64{
			"IN_WAREHOUSE": 5,
			"RELEASED":     2,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rr := httptest.NewRecorder()

	srv.handleStats(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Total)
	assert.Equal(t, int64(5), resp.ByStatus["IN_WAREHOUSE"])
	assert.Equal(t, int64(0), resp.ByStatus["STOPPED"])
}
