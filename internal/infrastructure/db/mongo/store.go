package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

// Store implements ports.Store over a single collection. Concrete stores
// supply the collection and a function translating their filter type into a
// Mongo query.
type Store[T any, F any] struct {
	coll   *mongo.Collection
	filter func(F) bson.M
	now    func() time.Time
	newID  func() string
}

// NewStore returns a Store for coll, translating filters with filter.
func NewStore[T any, F any](coll *mongo.Collection, filter func(F) bson.M) *Store[T, F] {
	return &Store[T, F]{
		coll:   coll,
		filter: filter,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// QueryFilter passes a raw Mongo query through unchanged.
func QueryFilter(q bson.M) bson.M {
	if q == nil {
		return bson.M{}
	}
	return q
}

func (s *Store[T, F]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.findOne(ctx, bson.M{domain.FieldID: id})
}

// FindOne returns the first record matching filter.
func (s *Store[T, F]) FindOne(ctx context.Context, filter F) (*T, error) {
	return s.findOne(ctx, s.filter(filter))
}

func (s *Store[T, F]) FindAll(ctx context.Context) ([]*T, error) {
	return s.find(ctx, bson.M{})
}

// Find returns every record matching filter.
func (s *Store[T, F]) Find(ctx context.Context, filter F, opts ...*options.FindOptions) ([]*T, error) {
	return s.find(ctx, s.filter(filter), opts...)
}

// Create inserts entity, assigning a UUID when it has no _id, and returns the
// stored document.
func (s *Store[T, F]) Create(ctx context.Context, entity *T) (*T, error) {
	doc, id, err := s.document(entity)
	if err != nil {
		return nil, err
	}

	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.coll.InsertOne(insertCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(err)
		}
		return nil, fmt.Errorf("insert into %s: %w", s.coll.Name(), err)
	}
	return s.FindByID(ctx, id)
}

// Update applies changes with $set and returns the updated record.
func (s *Store[T, F]) Update(ctx context.Context, id string, changes ports.Changes) (*T, error) {
	if len(changes) == 0 {
		return s.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out T
	err := s.coll.FindOneAndUpdate(ctx, bson.M{domain.FieldID: id}, bson.M{"$set": bson.M(changes)}, opts).Decode(&out)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, conflict(err)
		}
		return nil, fmt.Errorf("update %s: %w", s.coll.Name(), err)
	}
	return &out, nil
}

// Delete removes the record and returns it as it was.
func (s *Store[T, F]) Delete(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out T
	if err := s.coll.FindOneAndDelete(ctx, bson.M{domain.FieldID: id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete from %s: %w", s.coll.Name(), err)
	}
	return &out, nil
}

func (s *Store[T, F]) SoftDelete(ctx context.Context, id string) (*T, error) {
	return s.Update(ctx, id, ports.Changes{
		domain.FieldDeletedAt: s.now(),
		domain.FieldIsActive:  false,
	})
}

func (s *Store[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, s.filter(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.coll.Name(), err)
	}
	return n, nil
}

func (s *Store[T, F]) Exists(ctx context.Context, filter F) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, s.filter(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("exists in %s: %w", s.coll.Name(), err)
	}
	return n > 0, nil
}

func (s *Store[T, F]) findOne(ctx context.Context, query bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out T
	if err := s.coll.FindOne(ctx, query).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	return &out, nil
}

func (s *Store[T, F]) find(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		var item T
		if err := cur.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
		}
		out = append(out, &item)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.coll.Name(), err)
	}
	return out, nil
}

// document marshals entity and makes sure it carries a string _id.
func (s *Store[T, F]) document(entity *T) (bson.D, string, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, "", fmt.Errorf("marshal %s document: %w", s.coll.Name(), err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("unmarshal %s document: %w", s.coll.Name(), err)
	}

	for i, e := range doc {
		if e.Key != domain.FieldID {
			continue
		}
		if id, ok := e.Value.(string); ok && id != "" {
			return doc, id, nil
		}
		doc = append(doc[:i], doc[i+1:]...)
		break
	}

	id := s.newID()
	return append(bson.D{{Key: domain.FieldID, Value: id}}, doc...), id, nil
}

// conflict wraps a duplicate-key error as domain.ErrConflict, keeping the
// index name so callers can tell which constraint fired.
func conflict(err error) error {
	if index := duplicateIndex(err); index != "" {
		return fmt.Errorf("%w: index %s", domain.ErrConflict, index)
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}

// duplicateIndex extracts the index name from an E11000 message.
func duplicateIndex(err error) string {
	msg := err.Error()
	i := strings.Index(msg, "index: ")
	if i < 0 {
		return ""
	}
	rest := msg[i+len("index: "):]
	if j := strings.IndexAny(rest, " ,"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

var _ ports.Store[domain.Notification, bson.M] = (*Store[domain.Notification, bson.M])(nil)
