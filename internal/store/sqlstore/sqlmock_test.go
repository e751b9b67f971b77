package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/tryon"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return New(gormDB), mock, mockDB
}

func TestFindTryOnMapsErrors(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		store, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "try_on_requests" WHERE user_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs("user-1", "r1", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		req, err := store.TryOns.FindTryOn(context.Background(), "user-1", "r1")
		assert.Nil(t, req)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure", func(t *testing.T) {
		store, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		dbErr := errors.New("connection reset by peer")
		mock.ExpectQuery(`SELECT \* FROM "try_on_requests"`).
			WillReturnError(dbErr)

		_, err := store.TryOns.FindTryOn(context.Background(), "user-1", "r1")
		assert.True(t, apperr.IsKind(err, apperr.KindPersistence), "got %v", err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListTryOnsQuery(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "clothing_id", "status", "error_message"}).
		AddRow("r2", "user-1", "coat", "failed", "boom")

	mock.ExpectQuery(`SELECT \* FROM "try_on_requests" WHERE user_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
		WithArgs("user-1", "failed").
		WillReturnRows(rows)

	got, err := store.TryOns.ListTryOns(context.Background(), "user-1", tryon.StatusFailed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tryon.StatusFailed, got[0].Status)
	assert.Equal(t, "boom", got[0].ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTryOnWithoutRows(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectExec(`DELETE FROM "try_on_requests" WHERE user_id = \$1 AND id = \$2`).
		WithArgs("user-1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.TryOns.DeleteTryOn(context.Background(), "user-1", "r1")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItemsSurfacesPersistenceErrors(t *testing.T) {
	store, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "clothing_items" WHERE id IN \(\$1,\$2\)`).
		WithArgs("shirt", "coat").
		WillReturnError(errors.New("too many connections"))

	items, err := store.Catalog.FindItems(context.Background(), []string{"shirt", "coat"})
	assert.Nil(t, items)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
