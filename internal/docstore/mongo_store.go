package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database, one collection per
// document kind. References written by the original seed scripts are
// ObjectIDs while newer documents store hex strings, so every id match
// accepts both forms.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = "sughar"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Printf("docstore: connected to MongoDB database %s", database)
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out any) error {
	if id == "" {
		return ErrNotFound
	}
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": idMatch([]string{id})}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("finding %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter, out any) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	if filter.MatchesNothing() {
		return emptyResult(out)
	}

	cur, err := s.db.Collection(collection).Find(ctx, mongoFilter(filter))
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decoding %s results: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, docs ...any) error {
	coll := s.db.Collection(collection)
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding %s document: %w", collection, err)
		}
		idVal, err := bson.Raw(raw).LookupErr("_id")
		if err != nil {
			return fmt.Errorf("docstore: %s document without _id", collection)
		}
		_, err = coll.ReplaceOne(ctx, bson.M{"_id": idVal}, bson.Raw(raw), options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("upserting %s document: %w", collection, err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoFilter translates a Filter into a query document.
func mongoFilter(filter Filter) bson.M {
	if len(filter) == 0 {
		return bson.M{}
	}
	clauses := make(bson.A, 0, len(filter))
	for _, c := range filter {
		match := idMatch(c.Values)
		if len(c.Fields) == 1 {
			clauses = append(clauses, bson.M{c.Fields[0]: match})
			continue
		}
		alts := make(bson.A, 0, len(c.Fields))
		for _, f := range c.Fields {
			alts = append(alts, bson.M{f: match})
		}
		clauses = append(clauses, bson.M{"$or": alts})
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.M)
	}
	return bson.M{"$and": clauses}
}

// idMatch matches any of values, as strings and, where they are valid
// hex ObjectIDs, as ObjectIDs.
func idMatch(values []string) bson.M {
	in := make(bson.A, 0, len(values)*2)
	for _, v := range values {
		in = append(in, v)
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			in = append(in, oid)
		}
	}
	return bson.M{"$in": in}
}
