package localstorage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE local_storage (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestSetItemAndGetItem(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetItem(ctx, "user", []byte(`{"id":"1"}`)))

	v, err := r.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"1"}`), v)
}

func TestGetItem_MissingReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.GetItem(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetItem_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetItem(ctx, "k", []byte("old")))
	require.NoError(t, r.SetItem(ctx, "k", []byte("new")))

	v, err := r.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetItem(ctx, "x", []byte{1}))
	require.NoError(t, r.RemoveItem(ctx, "x"))
	require.NoError(t, r.RemoveItem(ctx, "x"))

	v, err := r.GetItem(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.GetItem(ctx, "k")
	require.ErrorContains(t, err, `get item "k"`)
	require.ErrorContains(t, r.SetItem(ctx, "k", []byte("v")), `set item "k"`)
	require.ErrorContains(t, r.RemoveItem(ctx, "k"), `remove item "k"`)
}

func TestSessionRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := session.NewStore(NewSQLiteRepository(db))

	require.NoError(t, store.Save(ctx, &session.Record{ID: "42", Role: common.RoleTeacher}))

	m := session.NewManager(store, logging.Nop{})
	require.NoError(t, m.Init(ctx))
	require.NotNil(t, m.Current())
	assert.Equal(t, "42", m.Current().ID)

	_, err := db.Exec(`UPDATE local_storage SET value = ? WHERE key = 'user'`, []byte(`not json`))
	require.NoError(t, err)

	m = session.NewManager(store, logging.Nop{})
	require.NoError(t, m.Init(ctx))
	assert.Nil(t, m.Current())

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM local_storage`).Scan(&n))
	assert.Equal(t, 0, n)
}
