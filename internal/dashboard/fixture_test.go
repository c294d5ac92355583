package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
)

// testNow is the fixed clock used across the package tests.
var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func daysAgo(n int) time.Time { return testNow.AddDate(0, 0, -n) }

type fixture struct {
	t     *testing.T
	store *docstore.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, store: docstore.NewMemoryStore()}
}

func (f *fixture) put(collection string, docs ...any) *fixture {
	f.t.Helper()
	require.NoError(f.t, f.store.Insert(context.Background(), collection, docs...))
	return f
}

func (f *fixture) owner(id string) *fixture {
	return f.put(model.CollectionUsers, model.User{ID: id, Name: "Owner " + id, Role: model.RoleLandlord})
}

func (f *fixture) service() *Service {
	return NewService(f.store, time.UTC).WithClock(func() time.Time { return testNow })
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// failingStore fails every call after the first n successful ones.
type failingStore struct {
	docstore.Store
	n int
}

var errStoreDown = errors.New("connection refused")

func (s *failingStore) Get(ctx context.Context, collection, id string, out any) error {
	if s.n <= 0 {
		return errStoreDown
	}
	s.n--
	return s.Store.Get(ctx, collection, id, out)
}

func (s *failingStore) Find(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	if s.n <= 0 {
		return errStoreDown
	}
	s.n--
	return s.Store.Find(ctx, collection, filter, out)
}
