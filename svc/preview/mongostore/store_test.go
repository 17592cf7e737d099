package mongostore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mailmerge/svc/preview"
)

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	rec := &preview.Record{
		ID:        "0b8f2c3e-0c57-4c43-9d43-3f8e4f0d7a11",
		Subject:   "Greetings",
		HTML:      "<div><p>Hello.</p></div>",
		Prompt:    "Write about {{Company}}",
		Headers:   []string{"Company", "Name"},
		SampleRow: map[string]any{"Company": "Acme", "Name": "Jo"},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
	}

	raw, err := bson.Marshal(toDocument(rec))
	require.NoError(t, err)

	var doc document
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.True(t, doc.ObjectID.IsZero(), "storage id is assigned by the server")
	assert.Equal(t, rec, doc.record())
}

func TestDocumentRecordNilHeaders(t *testing.T) {
	t.Parallel()

	rec := document{ID: "x"}.record()
	assert.NotNil(t, rec.Headers)
	assert.Empty(t, rec.Headers)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil, time.Hour)
	require.Error(t, err)
}

func TestInsertRejectsEmptyID(t *testing.T) {
	t.Parallel()

	s := &Store{}
	require.ErrorIs(t, s.Insert(context.Background(), &preview.Record{}), preview.ErrInvalidRecord)
	require.ErrorIs(t, s.Insert(context.Background(), nil), preview.ErrInvalidRecord)
}

func TestCreatedAtFilters(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, op := range []string{"$lte", "$gt"} {
		raw, err := bson.Marshal(createdAtFilter(op, cutoff))
		require.NoError(t, err, op)

		elems, err := bson.Raw(raw).Elements()
		require.NoError(t, err, op)
		require.Len(t, elems, 1, op)
		assert.Equal(t, "createdAt", elems[0].Key())

		bound := bson.Raw(raw).Lookup("createdAt", op)
		assert.Equal(t, bson.TypeDateTime, bound.Type, op)
		assert.True(t, cutoff.Equal(bound.Time()), op)
	}
}

func TestIndexModels(t *testing.T) {
	t.Parallel()

	models := indexModels(24 * time.Hour)
	require.Len(t, models, 2)

	resolve := func(b *options.IndexOptionsBuilder) *options.IndexOptions {
		opts := &options.IndexOptions{}
		for _, set := range b.List() {
			require.NoError(t, set(opts))
		}
		return opts
	}

	assert.Equal(t, bson.D{{Key: "id", Value: 1}}, models[0].Keys)
	idOpts := resolve(models[0].Options)
	assert.Equal(t, idIndexName, *idOpts.Name)
	assert.True(t, *idOpts.Unique)

	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, models[1].Keys)
	ttlOpts := resolve(models[1].Options)
	assert.Equal(t, ttlIndexName, *ttlOpts.Name)
	assert.Equal(t, int32(86400), *ttlOpts.ExpireAfterSeconds)
}

func TestTTLCollMod(t *testing.T) {
	t.Parallel()

	cmd := ttlCollMod("previews", 2*time.Hour)
	assert.Equal(t, bson.D{
		{Key: "collMod", Value: "previews"},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: "createdAt_ttl"},
			{Key: "expireAfterSeconds", Value: int32(7200)},
		}},
	}, cmd)
}

func TestIsIndexOptionsConflict(t *testing.T) {
	t.Parallel()

	conflict := mongo.CommandError{Code: 85, Name: "IndexOptionsConflict"}
	assert.True(t, isIndexOptionsConflict(conflict))
	assert.True(t, isIndexOptionsConflict(fmt.Errorf("create: %w", conflict)))
	assert.False(t, isIndexOptionsConflict(mongo.CommandError{Code: 11000}))
	assert.False(t, isIndexOptionsConflict(errors.New("network")))
	assert.False(t, isIndexOptionsConflict(nil))
}
