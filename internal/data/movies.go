package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie represents a movie document. The stored document carries the genre
// and director ids; read operations expand them into the full sub-documents
// before the movie is rendered to a client.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	GenreID     primitive.ObjectID `bson:"genre" json:"-"`
	DirectorID  primitive.ObjectID `bson:"director" json:"-"`
	ImagePath   *string            `bson:"imagePath" json:"imagePath"`

	Genre    *Genre    `bson:"-" json:"genre,omitempty"`
	Director *Director `bson:"-" json:"director,omitempty"`
}

// movieModel performs operations on the movies collection. It holds handles
// to the genres and directors collections for reference expansion.
type movieModel struct {
	collection
	genres    collection
	directors collection
}

// GetByTitle retrieves a movie by its unique title, with genre and director
// expanded.
func (m movieModel) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	var movie Movie
	if err := m.findOneByKey(ctx, "title", title, &movie); err != nil {
		return nil, err
	}
	if err := m.expand(ctx, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetAll retrieves all movies in store-native order, truncated to limit when
// limit is positive, with genre and director expanded.
func (m movieModel) GetAll(ctx context.Context, limit int64) ([]*Movie, error) {
	movies := []*Movie{}
	if err := m.findAll(ctx, limit, &movies); err != nil {
		return nil, err
	}
	for _, movie := range movies {
		if err := m.expand(ctx, movie); err != nil {
			return nil, err
		}
	}
	return movies, nil
}

// GetByIDs retrieves the movies with the given ids, expanded, preserving the
// order of ids. Ids that no longer resolve are dropped from the result. An
// empty result is nil, so a user without favourites renders as null rather
// than an empty array.
func (m movieModel) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	fetched := []*Movie{}
	if err := m.findByIDs(ctx, ids, &fetched); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*Movie, len(fetched))
	for _, movie := range fetched {
		byID[movie.ID] = movie
	}

	var movies []*Movie
	for _, id := range ids {
		movie, ok := byID[id]
		if !ok {
			continue
		}
		if err := m.expand(ctx, movie); err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// Insert adds a new movie, assigning its id.
func (m movieModel) Insert(ctx context.Context, movie *Movie) error {
	id, err := m.insertOne(ctx, movie)
	if err != nil {
		return err
	}
	movie.ID = id
	return nil
}

// ExistsID reports whether a movie with the given id exists.
func (m movieModel) ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return m.existsID(ctx, id)
}

// ExistsTitle reports whether a movie with the given title exists.
func (m movieModel) ExistsTitle(ctx context.Context, title string) (bool, error) {
	return m.existsKey(ctx, "title", title)
}

// expand fills the movie's genre and director sub-documents from their
// referenced collections. A dangling reference leaves the sub-document nil
// rather than failing the whole read.
func (m movieModel) expand(ctx context.Context, movie *Movie) error {
	var genre Genre
	err := m.genres.findOneByID(ctx, movie.GenreID, &genre)
	switch {
	case err == nil:
		movie.Genre = &genre
	case !errors.Is(err, ErrRecordNotFound):
		return err
	}

	var director Director
	err = m.directors.findOneByID(ctx, movie.DirectorID, &director)
	switch {
	case err == nil:
		movie.Director = &director
	case !errors.Is(err, ErrRecordNotFound):
		return err
	}
	return nil
}
