package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type testDoc struct {
	ID         string `json:"_id"`
	PropertyID string `json:"propertyID,omitempty"`
	Property   string `json:"property,omitempty"`
	Number     string `json:"unitNumber,omitempty"`
}

func seedDocs(t *testing.T, s Store) {
	t.Helper()
	err := s.Insert(context.Background(), "units",
		testDoc{ID: "u1", PropertyID: "p1", Number: "101"},
		testDoc{ID: "u2", Property: "p1", Number: "102"},
		testDoc{ID: "u3", PropertyID: "p2", Number: "201"},
		testDoc{ID: "u4", Number: "orphan"},
	)
	require.NoError(t, err)
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("GetFound", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var d testDoc
		require.NoError(t, s.Get(ctx, "units", "u2", &d))
		assert.Equal(t, "102", d.Number)
		assert.Equal(t, "p1", d.Property)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var d testDoc
		assert.True(t, IsNotFound(s.Get(ctx, "units", "nope", &d)))
		assert.True(t, IsNotFound(s.Get(ctx, "units", "", &d)))
		assert.True(t, IsNotFound(s.Get(ctx, "leases", "u1", &d)))
	})

	t.Run("FindEq", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var docs []testDoc
		require.NoError(t, s.Find(ctx, "units", Where(Eq("propertyID", "p1")), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "u1", docs[0].ID)
	})

	t.Run("FindAnyOfFields", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var docs []testDoc
		err := s.Find(ctx, "units", Where(AnyOf("propertyID", "property").In([]string{"p1", "p2"})), &docs)
		require.NoError(t, err)
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		assert.Equal(t, []string{"u1", "u2", "u3"}, ids)
	})

	t.Run("FindEmptyInMatchesNothing", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var docs []testDoc
		require.NoError(t, s.Find(ctx, "units", Where(In("propertyID", nil)), &docs))
		assert.Empty(t, docs)
	})

	t.Run("FindAll", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		var docs []testDoc
		require.NoError(t, s.Find(ctx, "units", nil, &docs))
		assert.Len(t, docs, 4)
	})

	t.Run("FindUnknownCollection", func(t *testing.T) {
		s := newStore(t)
		var docs []testDoc
		require.NoError(t, s.Find(ctx, "nothing", nil, &docs))
		assert.Empty(t, docs)
	})

	t.Run("InsertReplaces", func(t *testing.T) {
		s := newStore(t)
		seedDocs(t, s)
		require.NoError(t, s.Insert(ctx, "units", testDoc{ID: "u1", PropertyID: "p9", Number: "101A"}))
		var d testDoc
		require.NoError(t, s.Get(ctx, "units", "u1", &d))
		assert.Equal(t, "p9", d.PropertyID)

		var docs []testDoc
		require.NoError(t, s.Find(ctx, "units", nil, &docs))
		assert.Len(t, docs, 4)
	})

	t.Run("InsertRequiresID", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Insert(ctx, "units", testDoc{Number: "x"}))
	})

	t.Run("RejectsInvalidField", func(t *testing.T) {
		s := newStore(t)
		var docs []testDoc
		assert.Error(t, s.Find(ctx, "units", Where(Eq("a'); DROP", "x")), &docs))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), "file::memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestFilter_MatchesNothing(t *testing.T) {
	assert.False(t, Filter(nil).MatchesNothing())
	assert.False(t, Where(Eq("a", "b")).MatchesNothing())
	assert.True(t, Where(Eq("a", "b"), In("c", []string{})).MatchesNothing())
}

func TestMongoFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoFilter(nil))

	single := mongoFilter(Where(Eq("status", "completed")))
	assert.Equal(t, bson.M{"status": bson.M{"$in": bson.A{"completed"}}}, single)

	hex := "64b7f0c2a1b2c3d4e5f60718"
	or := mongoFilter(Where(AnyOf("propertyID", "property").In([]string{hex})))
	alts, ok := or["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, alts, 2)
	in := alts[0].(bson.M)["propertyID"].(bson.M)["$in"].(bson.A)
	assert.Len(t, in, 2, "hex ids match as string and ObjectID")

	and := mongoFilter(Where(Eq("a", "1"), Eq("b", "2")))
	assert.Len(t, and["$and"], 2)
}

func TestMongoStore_FindMatchingNothingSkipsQuery(t *testing.T) {
	// No client: any round trip would panic.
	s := &MongoStore{}
	type doc struct {
		ID string `bson:"_id"`
	}
	out := []doc{{ID: "stale"}}
	require.NoError(t, s.Find(context.Background(), "units", Where(In("propertyID", nil)), &out))
	assert.NotNil(t, out)
	assert.Empty(t, out)

	var notSlice doc
	assert.Error(t, s.Find(context.Background(), "units", Where(In("propertyID", nil)), &notSlice))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "cassandra"})
	assert.Error(t, err)
}
