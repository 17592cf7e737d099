// Package mongostore keeps preview records in a MongoDB collection.
//
// A TTL index on createdAt lets the server expire documents on its own; the
// preview sweeper removes anything the TTL monitor hasn't reached yet.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mailmerge/svc/preview"
)

type document struct {
	ObjectID  bson.ObjectID  `bson:"_id,omitempty"`
	ID        string         `bson:"id"`
	Subject   string         `bson:"subject"`
	HTML      string         `bson:"html"`
	Prompt    string         `bson:"prompt"`
	Headers   []string       `bson:"headers"`
	SampleRow map[string]any `bson:"sampleRow"`
	CreatedAt time.Time      `bson:"createdAt"`
}

func toDocument(rec *preview.Record) document {
	return document{
		ID:        rec.ID,
		Subject:   rec.Subject,
		HTML:      rec.HTML,
		Prompt:    rec.Prompt,
		Headers:   rec.Headers,
		SampleRow: rec.SampleRow,
		CreatedAt: rec.CreatedAt,
	}
}

func (d document) record() *preview.Record {
	headers := d.Headers
	if headers == nil {
		headers = []string{}
	}
	return &preview.Record{
		ID:        d.ID,
		Subject:   d.Subject,
		HTML:      d.HTML,
		Prompt:    d.Prompt,
		Headers:   headers,
		SampleRow: d.SampleRow,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// Store implements preview.Storage on a MongoDB collection.
type Store struct {
	coll *mongo.Collection
}

const (
	idIndexName  = "id_unique"
	ttlIndexName = "createdAt_ttl"

	// Server code for an existing index with the same name but other options.
	codeIndexOptionsConflict = 85
)

func indexModels(ttl time.Duration) []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName(idIndexName).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().
				SetName(ttlIndexName).
				SetExpireAfterSeconds(ttlSeconds(ttl)),
		},
	}
}

func ttlSeconds(ttl time.Duration) int32 {
	return int32(ttl / time.Second)
}

// ttlCollMod changes expireAfterSeconds on the existing TTL index.
func ttlCollMod(coll string, ttl time.Duration) bson.D {
	return bson.D{
		{Key: "collMod", Value: coll},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: ttlIndexName},
			{Key: "expireAfterSeconds", Value: ttlSeconds(ttl)},
		}},
	}
}

func isIndexOptionsConflict(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(codeIndexOptionsConflict)
}

func createdAtFilter(op string, t time.Time) bson.D {
	return bson.D{{Key: "createdAt", Value: bson.D{{Key: op, Value: t}}}}
}

// New returns a Store for coll and makes sure its indexes exist: a unique
// index on id and a TTL index on createdAt expiring after ttl. A TTL index
// left by a deployment with a different ttl is updated in place.
func New(ctx context.Context, coll *mongo.Collection, ttl time.Duration) (*Store, error) {
	if coll == nil {
		return nil, errors.New("mongostore: collection is required")
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("mongostore: ttl must be at least 1s, got %s", ttl)
	}

	_, err := coll.Indexes().CreateMany(ctx, indexModels(ttl))
	if isIndexOptionsConflict(err) {
		if err = coll.Database().RunCommand(ctx, ttlCollMod(coll.Name(), ttl)).Err(); err != nil {
			return nil, fmt.Errorf("mongostore: update ttl index: %w", err)
		}
		_, err = coll.Indexes().CreateMany(ctx, indexModels(ttl))
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: create indexes: %w", err)
	}

	return &Store{coll: coll}, nil
}

func (s *Store) Insert(ctx context.Context, rec *preview.Record) error {
	if rec == nil || rec.ID == "" {
		return preview.ErrInvalidRecord
	}

	if _, err := s.coll.InsertOne(ctx, toDocument(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return preview.ErrDuplicateID
		}
		return errors.Join(preview.ErrStorage, err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*preview.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, preview.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(preview.ErrStorage, err)
	}
	return doc.record(), nil
}

func (s *Store) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, createdAtFilter("$lte", cutoff))
	if err != nil {
		return 0, errors.Join(preview.ErrStorage, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) CountCreatedAfter(ctx context.Context, since time.Time) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, createdAtFilter("$gt", since))
	if err != nil {
		return 0, errors.Join(preview.ErrStorage, err)
	}
	return n, nil
}

var _ preview.Storage = (*Store)(nil)
