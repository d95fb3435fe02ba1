package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"myflix.interimme.net/internal/data"
)

func TestRegisterUserHandler(t *testing.T) {
	t.Run("valid registration", func(t *testing.T) {
		app, movies, _, _, users := newTestApplication(t)
		movie := &data.Movie{Title: "Heat"}
		require.NoError(t, movies.Insert(context.Background(), movie))

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", `{
			"username": "bobby1",
			"password": "secret1",
			"email": "Bobby@Example.com",
			"birthday": "1990-05-01",
			"favourites": ["`+movie.ID.Hex()+`"]
		}`)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "/users/bobby1", rr.Header().Get("Location"))
		assert.NotContains(t, rr.Body.String(), "password")
		assert.NotContains(t, rr.Body.String(), "secret1")

		body := decodeBody(t, rr)
		user := body["user"].(map[string]any)
		assert.Equal(t, "bobby1", user["username"])
		assert.Equal(t, "bobby@example.com", user["email"])

		stored, err := users.GetByUsername(context.Background(), "bobby1")
		require.NoError(t, err)
		match, err := stored.Password.Matches("secret1")
		require.NoError(t, err)
		assert.True(t, match)
		assert.Equal(t, []primitive.ObjectID{movie.ID}, stored.Favourites)
	})

	t.Run("favourites default to null", func(t *testing.T) {
		app, _, _, _, users := newTestApplication(t)

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", `{
			"username": "bobby1",
			"password": "secret1",
			"email": "bobby@example.com"
		}`)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		body := decodeBody(t, rr)
		user := body["user"].(map[string]any)
		assert.Nil(t, user["favourites"])
		assert.Nil(t, user["birthday"])

		stored, err := users.GetByUsername(context.Background(), "bobby1")
		require.NoError(t, err)
		assert.Nil(t, stored.Favourites)
	})

	t.Run("taken username", func(t *testing.T) {
		app, _, _, _, users := newTestApplication(t)
		seedUser(t, users, "alice123", "pa55word", "alice@example.com")

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", `{
			"username": "alice123",
			"password": "secret1",
			"email": "other@example.com"
		}`)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "a user with this username already exists", body["error"])
	})

	t.Run("validation failure cites the field", func(t *testing.T) {
		app, _, _, _, _ := newTestApplication(t)

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", `{
			"username": "bobby1",
			"password": "secret1",
			"email": "not-an-email"
		}`)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		errs := body["error"].(map[string]any)
		assert.Equal(t, "email must be a valid email address", errs["email"])
	})

	t.Run("numeric password is a validation failure", func(t *testing.T) {
		app, _, _, _, _ := newTestApplication(t)

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", `{
			"username": "bobby1",
			"password": 42,
			"email": "bobby@example.com"
		}`)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
		body := decodeBody(t, rr)
		errs := body["error"].(map[string]any)
		assert.Equal(t, "password must be a string", errs["password"])
	})

	t.Run("empty body", func(t *testing.T) {
		app, _, _, _, _ := newTestApplication(t)

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPost, "/users", ``)
		app.registerUserHandler(rr, r)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "body must not be empty", body["error"])
	})
}

func TestShowUserHandler(t *testing.T) {
	app, movies, _, _, users := newTestApplication(t)

	movie := &data.Movie{Title: "Heat"}
	require.NoError(t, movies.Insert(context.Background(), movie))
	user := seedUser(t, users, "alice123", "pa55word", "alice@example.com")
	user.Favourites = []primitive.ObjectID{movie.ID}

	t.Run("public representation", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/users/alice123", nil)
		r = withURLParams(r, httprouter.Params{{Key: "username", Value: "alice123"}})
		app.showUserHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "email")
		assert.NotContains(t, rr.Body.String(), "password")

		body := decodeBody(t, rr)
		got := body["user"].(map[string]any)
		assert.Equal(t, "alice123", got["username"])
		favourites := got["favourites"].([]any)
		require.Len(t, favourites, 1)
		assert.Equal(t, "Heat", favourites[0].(map[string]any)["title"])
	})

	t.Run("no favourites render as null", func(t *testing.T) {
		seedUser(t, users, "carol99", "pa55word", "carol@example.com")

		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/users/carol99", nil)
		r = withURLParams(r, httprouter.Params{{Key: "username", Value: "carol99"}})
		app.showUserHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decodeBody(t, rr)
		got := body["user"].(map[string]any)
		assert.Nil(t, got["favourites"], "an empty favourites list must render as null, matching registration")
	})

	t.Run("unknown username", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/users/nobody99", nil)
		r = withURLParams(r, httprouter.Params{{Key: "username", Value: "nobody99"}})
		app.showUserHandler(rr, r)

		require.Equal(t, http.StatusNotFound, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "the user provided in the URL does not exist in the database", body["error"])
	})

	t.Run("username too short for the rules", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/users/bob", nil)
		r = withURLParams(r, httprouter.Params{{Key: "username", Value: "bob"}})
		app.showUserHandler(rr, r)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	t.Run("successful patch", func(t *testing.T) {
		app, _, _, _, users := newTestApplication(t)
		user := seedUser(t, users, "alice123", "pa55word", "alice@example.com")

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPatch, "/users/alice123", `{"email": "fresh@example.com"}`)
		r = withURLParams(r, httprouter.Params{{Key: "username", Value: "alice123"}})
		r = app.contextSetUser(r, user)
		app.updateUserHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decodeBody(t, rr)
		assert.Equal(t, "user updated successfully", body["message"])

		stored, err := users.GetByUsername(context.Background(), "alice123")
		require.NoError(t, err)
		assert.Equal(t, "fresh@example.com", stored.Email)
	})

	t.Run("no-op patch is rejected", func(t *testing.T) {
		app, _, _, _, users := newTestApplication(t)
		user := seedUser(t, users, "alice123", "pa55word", "alice@example.com")

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPatch, "/users/alice123", `{"email": "alice@example.com"}`)
		r = app.contextSetUser(r, user)
		app.updateUserHandler(rr, r)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decodeBody(t, rr)
		errs := body["error"].(map[string]any)
		assert.Equal(t, "email is the same as the current email", errs["email"])
	})

	t.Run("password is rehashed", func(t *testing.T) {
		app, _, _, _, users := newTestApplication(t)
		user := seedUser(t, users, "alice123", "pa55word", "alice@example.com")

		rr := httptest.NewRecorder()
		r := jsonRequest(t, http.MethodPatch, "/users/alice123", `{"password": "n3wsecret"}`)
		r = app.contextSetUser(r, user)
		app.updateUserHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		stored, err := users.GetByUsername(context.Background(), "alice123")
		require.NoError(t, err)
		match, err := stored.Password.Matches("n3wsecret")
		require.NoError(t, err)
		assert.True(t, match)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	app, _, _, _, users := newTestApplication(t)
	user := seedUser(t, users, "alice123", "pa55word", "alice@example.com")

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/users/alice123", nil)
	r = app.contextSetUser(r, user)
	app.deleteUserHandler(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "user deleted successfully", body["message"])

	_, err := users.GetByUsername(context.Background(), "alice123")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)

	// Deleting again finds nothing.
	rr = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/users/alice123", nil)
	r = app.contextSetUser(r, user)
	app.deleteUserHandler(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
