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

// Common error values for the data package.
var (
	ErrRecordNotFound = errors.New("record not found") // The requested document does not exist.
	ErrDuplicateKey   = errors.New("duplicate key")    // An insert or update collided with a unique index.
)

// Models is a container for the per-collection model types, typed as
// interfaces so handlers and rule chains can run against test doubles.
type Models struct {
	Movies    MovieStore
	Users     UserStore
	Genres    GenreStore
	Directors DirectorStore
}

// MovieStore covers operations on the movies collection.
type MovieStore interface {
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetAll(ctx context.Context, limit int64) ([]*Movie, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Movie, error)
	Insert(ctx context.Context, movie *Movie) error
	ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error)
	ExistsTitle(ctx context.Context, title string) (bool, error)
}

// GenreStore covers operations on the genres collection.
type GenreStore interface {
	GetByName(ctx context.Context, name string) (*Genre, error)
	GetAll(ctx context.Context, limit int64) ([]*Genre, error)
	Insert(ctx context.Context, genre *Genre) error
	ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error)
	ExistsName(ctx context.Context, name string) (bool, error)
}

// DirectorStore covers operations on the directors collection.
type DirectorStore interface {
	GetByName(ctx context.Context, name string) (*Director, error)
	GetAll(ctx context.Context, limit int64) ([]*Director, error)
	Insert(ctx context.Context, director *Director) error
	ExistsID(ctx context.Context, id primitive.ObjectID) (bool, error)
	ExistsName(ctx context.Context, name string) (bool, error)
}

// UserStore covers operations on the users collection.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetPublic(ctx context.Context, username string) (*PublicUser, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, username string, upd UserUpdate) error
	Delete(ctx context.Context, username string) error
	ExistsUsername(ctx context.Context, username string) (bool, error)
}

// NewModels initializes the model types over a shared MongoDB database handle.
func NewModels(db *mongo.Database) Models {
	genres := collection{coll: db.Collection("genres")}
	directors := collection{coll: db.Collection("directors")}
	movies := movieModel{
		collection: collection{coll: db.Collection("movies")},
		genres:     genres,
		directors:  directors,
	}
	return Models{
		Movies:    movies,
		Users:     userModel{collection: collection{coll: db.Collection("users")}, movies: movies},
		Genres:    genreModel{collection: genres},
		Directors: directorModel{collection: directors},
	}
}

// EnsureIndexes creates the unique indexes backing the natural keys. The rule
// chains pre-check uniqueness, but two concurrent creates can both pass the
// pre-check; the index makes the store the final arbiter and the resulting
// duplicate-key error is mapped to ErrDuplicateKey rather than crashing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, spec := range []struct {
		collection string
		field      string
	}{
		{"movies", "title"},
		{"genres", "name"},
		{"directors", "name"},
		{"users", "username"},
	} {
		_, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: spec.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
