package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "github.com/parceldesk/parceldesk/internal/db/mocks"
	"github.com/parceldesk/parceldesk/internal/repository"
	"github.com/parceldesk/parceldesk/internal/repository/postgresql"
)

func testParcel() *repository.Parcel {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	date := "15/03/2024"
	return &repository.Parcel{
		ID:           "parcel-123",
		TrackingCode: "TRK-1",
		Sender:       "Acme Ltd",
		Recipient:    "Nino",
		Phone:        "555123456",
		Weight:       "2.5",
		City:         "Tbilisi",
		PaymentNote:  "paid",
		ArrivalDate:  &date,
		Status:       "IN_WAREHOUSE",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestParcelRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)
		parcel := testParcel()

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(parcel.ID),
			gomock.Eq(parcel.TrackingCode),
			gomock.Eq(parcel.Sender),
			gomock.Eq(parcel.Recipient),
			gomock.Eq(parcel.Phone),
			gomock.Eq(parcel.Weight),
			gomock.Eq(parcel.City),
			gomock.Eq(parcel.PaymentNote),
			gomock.Eq(parcel.ArrivalDate),
			gomock.Eq(parcel.Status),
			gomock.Eq(parcel.CreatedAt),
			gomock.Eq(parcel.UpdatedAt),
		).Return(nil, nil)

		err := repo.Create(ctx, parcel)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
				gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
				gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("database error"))

		err := repo.Create(ctx, testParcel())
		assert.Error(t, err)
	})
}

func TestParcelRepo_CreateTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewParcelRepo(mockDB)
	parcel := testParcel()

	mockTx.EXPECT().
		Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	err := repo.CreateTx(context.Background(), mockTx, parcel)
	assert.NoError(t, err)
}

func TestParcelRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("missing")).
			Return(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)
		want := testParcel()

		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(want.ID)).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*repository.Parcel) = *want
				return nil
			})

		got, err := repo.GetByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestParcelRepo_DeleteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("with status filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Eq("DELETE FROM parcels WHERE status = $1"), gomock.Eq("RELEASED")).
			Return(pgconn.CommandTag("DELETE 3"), nil)

		count, err := repo.DeleteAll(ctx, "RELEASED")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("everything", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Eq("DELETE FROM parcels")).
			Return(pgconn.CommandTag("DELETE 10"), nil)

		count, err := repo.DeleteAll(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, int64(10), count)
	})
}

func TestParcelRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("builds filtered query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		var gotQuery string
		var gotArgs []interface{}
		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ interface{}, query string, args ...interface{}) error {
				gotQuery = query
				gotArgs = args
				return nil
			})

		_, err := repo.List(ctx, repository.ListFilter{
			Status: "IN_WAREHOUSE",
			Query:  "TRK",
			Limit:  20,
			Offset: 40,
		})
		require.NoError(t, err)

		assert.Contains(t, gotQuery, "WHERE status = $1")
		assert.Contains(t, gotQuery, "tracking_code ILIKE $2")
		assert.Contains(t, gotQuery, "ORDER BY created_at DESC")
		assert.Contains(t, gotQuery, "LIMIT $3")
		assert.Contains(t, gotQuery, "OFFSET $4")
		assert.Equal(t, []interface{}{"IN_WAREHOUSE", "%TRK%", 20, 40}, gotArgs)
	})

	t.Run("unfiltered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewParcelRepo(mockDB)

		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Eq("SELECT * FROM parcels ORDER BY created_at DESC")).
			Return(nil)

		_, err := repo.List(ctx, repository.ListFilter{})
		assert.NoError(t, err)
	})
}

func TestParcelRepo_CountByStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewParcelRepo(mockDB)

	mockDB.EXPECT().
		Select(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]repository.StatusCount) = []repository.StatusCount{
				{Status: "IN_WAREHOUSE", Count: 5},
				{Status: "RELEASED", Count: 2},
			}
			return nil
		})

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []repository.StatusCount{
		{Status: "IN_WAREHOUSE", Count: 5},
		{Status: "RELEASED", Count: 2},
	}, counts)
}
