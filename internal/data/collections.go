package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// queryTimeout bounds every single store call.
const queryTimeout = 3 * time.Second

// collection wraps one MongoDB collection with the generic document
// operations shared by every entity model: find by natural key or id, list
// with an optional limit, insert, partial update, delete and existence checks.
type collection struct {
	coll *mongo.Collection
}

// findOneByKey decodes the single document whose key field matches into dst.
func (c collection) findOneByKey(ctx context.Context, field, key string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := c.coll.FindOne(ctx, bson.M{field: key}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRecordNotFound
	}
	return err
}

// findOneByID decodes the single document with the given id into dst.
func (c collection) findOneByID(ctx context.Context, id primitive.ObjectID, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRecordNotFound
	}
	return err
}

// findAll decodes every document, in store-native order, into the slice
// pointed to by dst. A positive limit truncates the result.
func (c collection) findAll(ctx context.Context, limit int64, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, dst)
}

// findByIDs decodes every document whose id is in ids into the slice pointed
// to by dst. Missing ids are silently absent from the result.
func (c collection) findByIDs(ctx context.Context, ids []primitive.ObjectID, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := c.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	return cursor.All(ctx, dst)
}

// insertOne inserts a document and returns its assigned id. A unique-index
// violation is mapped to ErrDuplicateKey.
func (c collection) insertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateKey
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := result.InsertedID.(primitive.ObjectID)
	return id, nil
}

// updateOneByKey performs a partial merge ($set) on the single document whose
// key field matches. Unspecified fields are preserved. ErrRecordNotFound is
// returned when no document matched the key at update time.
func (c collection) updateOneByKey(ctx context.Context, field, key string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := c.coll.UpdateOne(ctx, bson.M{field: key}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// deleteOneByKey removes the single document whose key field matches, or
// returns ErrRecordNotFound when nothing was removed.
func (c collection) deleteOneByKey(ctx context.Context, field, key string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := c.coll.DeleteOne(ctx, bson.M{field: key})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// existsID reports whether a document with the given id exists.
func (c collection) existsID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return c.exists(ctx, bson.M{"_id": id})
}

// existsKey reports whether a document whose key field matches exists.
func (c collection) existsKey(ctx context.Context, field, key string) (bool, error) {
	return c.exists(ctx, bson.M{field: key})
}

func (c collection) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := c.coll.FindOne(ctx, filter, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, err
	}
}
