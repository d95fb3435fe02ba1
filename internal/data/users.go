package data

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"myflix.interimme.net/internal/validator"
)

// AnonymousUser represents a caller who is not logged in.
var AnonymousUser = &User{}

// User represents a user document. The password is stored only as a bcrypt
// hash and is never rendered to JSON. Favourites is an ordered list of movie
// ids; nil means "no favourites" and is stored as null.
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username   string               `bson:"username" json:"username"`
	Password   password             `bson:"password" json:"-"`
	Email      string               `bson:"email" json:"email"`
	Birthday   *time.Time           `bson:"birthday" json:"birthday"`
	Favourites []primitive.ObjectID `bson:"favourites" json:"favourites"`
}

// IsAnonymous checks if the user is the anonymous user.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// FieldUnchanged reports whether a submitted field value is pointwise equal to
// the value currently stored on this user's record. Passwords are compared via
// hash verification, favourites as an order-sensitive sequence of ids, and a
// missing stored value only ever equals a missing submitted one.
func (u *User) FieldUnchanged(field string, value any) (bool, error) {
	switch field {
	case "username":
		s, ok := value.(string)
		return ok && s == u.Username, nil
	case "email":
		s, ok := value.(string)
		return ok && strings.ToLower(strings.TrimSpace(s)) == u.Email, nil
	case "password":
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return u.Password.Matches(s)
	case "birthday":
		s, ok := value.(string)
		if !ok || u.Birthday == nil {
			return false, nil
		}
		t, err := validator.ParseDate(s)
		if err != nil {
			return false, nil
		}
		return t.Equal(*u.Birthday), nil
	case "favourites":
		ids, ok := value.([]any)
		if !ok || len(ids) != len(u.Favourites) {
			return false, nil
		}
		for i, id := range ids {
			s, ok := id.(string)
			if !ok || s != u.Favourites[i].Hex() {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

// password holds a user's password, keeping the plaintext only transiently
// alongside the bcrypt hash that is actually persisted.
type password struct {
	plaintext *string
	hash      []byte
}

// Set hashes a plaintext password with bcrypt and stores both representations.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}
	p.plaintext = &plaintextPassword
	p.hash = hash
	return nil
}

// Matches checks if a plaintext password matches the stored hash.
func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// MarshalBSONValue stores only the hash, as a string, in the document.
func (p password) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(p.hash))
}

// UnmarshalBSONValue restores the hash from the stored string.
func (p *password) UnmarshalBSONValue(t bsontype.Type, value []byte) error {
	var s string
	raw := bson.RawValue{Type: t, Value: value}
	if err := raw.Unmarshal(&s); err != nil {
		return err
	}
	p.hash = []byte(s)
	return nil
}

// PublicUser is the representation returned by unauthenticated user reads:
// email, birthday and password are stripped, and favourites are expanded into
// full movie documents with their genre and director sub-references.
type PublicUser struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	Favourites []*Movie           `json:"favourites"`
}

// UserUpdate is the partial set of fields a PATCH may change. Nil pointers
// leave the stored value untouched. A plaintext password is hashed before the
// update is written.
type UserUpdate struct {
	Username   *string
	Password   *string
	Email      *string
	Birthday   *time.Time
	Favourites []primitive.ObjectID
}

// userModel performs operations on the users collection.
type userModel struct {
	collection
	movies movieModel
}

// GetByUsername retrieves a user by their unique username.
func (m userModel) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := m.findOneByKey(ctx, "username", username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPublic retrieves the public representation of a user, with favourites
// expanded in their stored order.
func (m userModel) GetPublic(ctx context.Context, username string) (*PublicUser, error) {
	user, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	favourites, err := m.movies.GetByIDs(ctx, user.Favourites)
	if err != nil {
		return nil, err
	}
	return &PublicUser{
		ID:         user.ID,
		Username:   user.Username,
		Favourites: favourites,
	}, nil
}

// Insert adds a new user, assigning their id.
func (m userModel) Insert(ctx context.Context, user *User) error {
	id, err := m.insertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// Update performs a partial merge on the user matched by username. Fields not
// present in upd are preserved. ErrRecordNotFound is returned when the record
// vanished between validation and the update itself.
func (m userModel) Update(ctx context.Context, username string, upd UserUpdate) error {
	set := bson.M{}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Password != nil {
		var p password
		if err := p.Set(*upd.Password); err != nil {
			return err
		}
		set["password"] = string(p.hash)
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Birthday != nil {
		set["birthday"] = *upd.Birthday
	}
	if upd.Favourites != nil {
		set["favourites"] = upd.Favourites
	}
	if len(set) == 0 {
		return nil
	}
	return m.updateOneByKey(ctx, "username", username, set)
}

// Delete removes the user matched by username.
func (m userModel) Delete(ctx context.Context, username string) error {
	return m.deleteOneByKey(ctx, "username", username)
}

// ExistsUsername reports whether a user with the given username exists.
func (m userModel) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return m.existsKey(ctx, "username", username)
}

// ObjectIDsFromHex converts a decoded JSON array of hex id strings into
// ObjectIDs. Values are assumed to have passed validation already.
func ObjectIDsFromHex(values []any) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			return nil, errors.New("id must be a string")
		}
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
