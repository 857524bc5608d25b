package store

import (
	"context"
	"errors"
	"expert-api/internal/cms"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return AttachDB(db), mock
}

var itemCols = []string{"id", "name", "slug", "field_data", "is_archived", "is_draft"}

func TestFetchCollectionFiltersAndDecodes(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM _cms_items")).
		WithArgs("experts").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("e1", "Ann", "ann", []byte(`{"state":"r1","skills":["s1"]}`), false, false).
			AddRow("e2", "Old", "old", []byte(`{}`), true, false).
			AddRow("e3", "Shy", "shy", []byte(`{"hidden":true}`), false, false))

	items, err := s.FetchCollection(context.Background(), cms.Experts)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "e1", items[0].ID)
	assert.Equal(t, "r1", items[0].Field("state"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRawKeepsEverything(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM _cms_items")).
		WithArgs("skills").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("s1", "Go", "go", []byte(`{}`), true, true))

	items, err := s.FetchRaw(context.Background(), cms.Skills)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsArchived)
	assert.True(t, items[0].IsDraft)
}

func TestFetchCollectionWrapsQueryError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta("FROM _cms_items")).WillReturnError(boom)

	_, err := s.FetchCollection(context.Background(), cms.Regions)
	require.Error(t, err)
	assert.True(t, cms.IsFetchError(err))
	assert.ErrorIs(t, err, boom)
}

func TestReplaceCollection(t *testing.T) {
	s, mock := newMock(t)
	items := []cms.Item{
		{ID: "r1", Name: "Texas", Slug: "texas", FieldData: map[string]any{"name": "Texas"}},
		{ID: "", Name: "no id"},
		{ID: "r2", Name: "Ohio", Slug: "ohio"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM _cms_items")).WithArgs("regions").WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO _cms_items"))
	prep.ExpectExec().WithArgs("regions", "r1", "Texas", "texas", sqlmock.AnyArg(), false, false, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("regions", "r2", "Ohio", "ohio", []byte(`{}`), false, false, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO _cms_mirror_runs")).WithArgs("regions", 2).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := s.ReplaceCollection(context.Background(), cms.Regions, items)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceCollectionRollsBackOnError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM _cms_items")).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO _cms_items"))
	prep.ExpectExec().WillReturnError(boom)
	mock.ExpectRollback()

	_, err := s.ReplaceCollection(context.Background(), cms.Regions, []cms.Item{{ID: "r1"}})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT collection, COUNT(1) FROM _cms_items")).
		WillReturnRows(sqlmock.NewRows([]string{"collection", "count"}).AddRow("regions", 3).AddRow("experts", 40))

	got, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[cms.Collection]int64{cms.Regions: 3, cms.Experts: 40}, got)
}
