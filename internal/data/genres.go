package data

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genre represents a movie genre document.
type Genre struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
}

// genreModel performs operations on the genres collection.
type genreModel struct {
	collection
}

// GetByName retrieves a genre by its unique name.
func (m genreModel) GetByName(ctx context.Context, name string) (*Genre, error) {
	var genre Genre
	if err := m.findOneByKey(ctx, "name", name, &genre); err != nil {
		return nil, err
	}
	return &genre, nil
}

// GetAll retrieves all genres in store-native order, truncated to limit when
// limit is positive.
func (m genreModel) GetAll(ctx context.Context, limit int64) ([]*Genre, error) {
	genres := []*Genre{}
	if err := m.findAll(ctx, limit, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// Insert adds a new genre, assigning its id.
func (m genreModel) Insert(ctx context.Context, genre *Genre) error {
	id, err := m.insertOne(ctx, genre)
	if err != nil {
		return err
	}
	genre.ID = id
	return nil
}

// ExistsID reports whether a genre with the given id exists.
func (m genreModel) ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return m.existsID(ctx, id)
}

// ExistsName reports whether a genre with the given name exists.
func (m genreModel) ExistsName(ctx context.Context, name string) (bool, error) {
	return m.existsKey(ctx, "name", name)
}
