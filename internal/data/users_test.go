package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p password
	require.NoError(t, p.Set("pa55word"))
	require.NotNil(t, p.plaintext)
	assert.NotEqual(t, "pa55word", string(p.hash))

	ok, err := p.Matches("pa55word")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordBSONRoundTrip(t *testing.T) {
	var p password
	require.NoError(t, p.Set("pa55word"))

	typ, raw, err := p.MarshalBSONValue()
	require.NoError(t, err)

	var restored password
	require.NoError(t, restored.UnmarshalBSONValue(typ, raw))
	assert.Equal(t, p.hash, restored.hash)
	assert.Nil(t, restored.plaintext, "the plaintext must never round-trip through storage")

	ok, err := restored.Matches("pa55word")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserJSONHidesPassword(t *testing.T) {
	user := User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, user.Password.Set("pa55word"))

	out, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "password")
	assert.NotContains(t, string(out), "pa55word")
}

func TestUserBSONStoresHashedPassword(t *testing.T) {
	user := User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, user.Password.Set("pa55word"))

	raw, err := bson.Marshal(user)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	stored, ok := doc["password"].(string)
	require.True(t, ok, "the password field must be stored as a string")
	assert.NotEqual(t, "pa55word", stored)
	assert.Contains(t, stored, "$2a$", "the stored value must be a bcrypt hash")
}

func TestIsAnonymous(t *testing.T) {
	assert.True(t, AnonymousUser.IsAnonymous())
	assert.False(t, (&User{Username: "alice"}).IsAnonymous())
}

func TestFieldUnchanged(t *testing.T) {
	birthday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	user := &User{
		Username:   "alice",
		Email:      "alice@example.com",
		Birthday:   &birthday,
		Favourites: []primitive.ObjectID{first, second},
	}
	require.NoError(t, user.Password.Set("pa55word"))

	tests := []struct {
		name  string
		field string
		value any
		want  bool
	}{
		{"same username", "username", "alice", true},
		{"different username", "username", "bob", false},
		{"same email case-insensitive", "email", "Alice@Example.COM", true},
		{"different email", "email", "bob@example.com", false},
		{"same password", "password", "pa55word", true},
		{"different password", "password", "hunter2", false},
		{"same birthday", "birthday", "1990-05-01", true},
		{"different birthday", "birthday", "1991-05-01", false},
		{"same favourites in order", "favourites", []any{first.Hex(), second.Hex()}, true},
		{"favourites reordered", "favourites", []any{second.Hex(), first.Hex()}, false},
		{"favourites shorter", "favourites", []any{first.Hex()}, false},
		{"unknown field", "nickname", "alice", false},
		{"wrong type", "username", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := user.FieldUnchanged(tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldUnchangedNilBirthday(t *testing.T) {
	user := &User{Username: "alice"}
	got, err := user.FieldUnchanged("birthday", "1990-05-01")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestObjectIDsFromHex(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	ids, err := ObjectIDsFromHex([]any{first.Hex(), second.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{first, second}, ids)

	_, err = ObjectIDsFromHex([]any{"not-a-hex-id"})
	assert.Error(t, err)

	_, err = ObjectIDsFromHex([]any{42})
	assert.Error(t, err)

	ids, err = ObjectIDsFromHex(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
