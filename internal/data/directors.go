package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Director represents a director document. Deathday and biography are
// optional and stored as null when absent.
type Director struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Birthday  time.Time          `bson:"birthday" json:"birthday"`
	Deathday  *time.Time         `bson:"deathday" json:"deathday"`
	Biography *string            `bson:"biography" json:"biography"`
}

// directorModel performs operations on the directors collection.
type directorModel struct {
	collection
}

// GetByName retrieves a director by their unique name.
func (m directorModel) GetByName(ctx context.Context, name string) (*Director, error) {
	var director Director
	if err := m.findOneByKey(ctx, "name", name, &director); err != nil {
		return nil, err
	}
	return &director, nil
}

// GetAll retrieves all directors in store-native order, truncated to limit
// when limit is positive.
func (m directorModel) GetAll(ctx context.Context, limit int64) ([]*Director, error) {
	directors := []*Director{}
	if err := m.findAll(ctx, limit, &directors); err != nil {
		return nil, err
	}
	return directors, nil
}

// Insert adds a new director, assigning their id.
func (m directorModel) Insert(ctx context.Context, director *Director) error {
	id, err := m.insertOne(ctx, director)
	if err != nil {
		return err
	}
	director.ID = id
	return nil
}

// ExistsID reports whether a director with the given id exists.
func (m directorModel) ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return m.existsID(ctx, id)
}

// ExistsName reports whether a director with the given name exists.
func (m directorModel) ExistsName(ctx context.Context, name string) (bool, error) {
	return m.existsKey(ctx, "name", name)
}
