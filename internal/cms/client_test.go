package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves total items for collection "col-experts" in pages of
// the requested limit.
func pagedServer(t *testing.T, total int, archived map[int]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("authorization"))
		if r.URL.Path != "/collections/col-experts/items" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var p pageResponse
		for i := offset; i < min(offset+limit, total); i++ {
			p.Items = append(p.Items, Item{ID: fmt.Sprintf("e%d", i), IsArchived: archived[i]})
		}
		p.Pagination.Limit, p.Pagination.Offset, p.Pagination.Total = limit, offset, total
		_ = json.NewEncoder(w).Encode(p)
	}))
}

func TestClientPaginates(t *testing.T) {
	srv := pagedServer(t, 7, map[int]bool{3: true})
	defer srv.Close()
	c := New(srv.URL, "tok", map[Collection]string{Experts: "col-experts"}, srv.Client())
	c.pageSize = 3

	raw, err := c.FetchRaw(context.Background(), Experts)
	require.NoError(t, err)
	assert.Len(t, raw, 7)
	assert.Equal(t, "e6", raw[6].ID)

	items, err := c.FetchCollection(context.Background(), Experts)
	require.NoError(t, err)
	assert.Len(t, items, 6)
}

func TestClientUnknownCollection(t *testing.T) {
	c := New("http://127.0.0.1:1", "", nil, nil)

	_, err := c.FetchCollection(context.Background(), Skills)
	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.True(t, IsFetchError(err))
}

func TestClientUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	c := New(srv.URL, "", map[Collection]string{Regions: "col-regions"}, srv.Client())

	_, err := c.FetchCollection(context.Background(), Regions)
	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, Regions, fe.Collection)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestClientBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()
	c := New(srv.URL, "", map[Collection]string{Regions: "col-regions"}, srv.Client())

	_, err := c.FetchRaw(context.Background(), Regions)
	assert.True(t, IsFetchError(err))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("CMS_API_BASE", "https://cms.example.com/v2/")
	t.Setenv("CMS_COLLECTION_EXPERTS", "abc")
	t.Setenv("CMS_PAGE_SIZE", "50")

	c := NewFromEnv()
	assert.Equal(t, "https://cms.example.com/v2", c.base)
	assert.Equal(t, "abc", c.ids[Experts])
	assert.Equal(t, 50, c.pageSize)
	assert.NotContains(t, c.ids, Regions)
}
