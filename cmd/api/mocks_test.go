package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/jsonlog"
	"myflix.interimme.net/internal/mailer"
)

// The mock stores below satisfy the data store interfaces with in-memory
// slices, so handler and rule chain tests run without a live database. Setting
// err makes every method fail with it, for exercising the store-error paths.

type mockMovieStore struct {
	movies []*data.Movie
	err    error
}

func (m *mockMovieStore) GetByTitle(_ context.Context, title string) (*data.Movie, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, movie := range m.movies {
		if movie.Title == title {
			return movie, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m *mockMovieStore) GetAll(_ context.Context, limit int64) ([]*data.Movie, error) {
	if m.err != nil {
		return nil, m.err
	}
	movies := m.movies
	if limit > 0 && limit < int64(len(movies)) {
		movies = movies[:limit]
	}
	return movies, nil
}

func (m *mockMovieStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*data.Movie, error) {
	if m.err != nil {
		return nil, m.err
	}
	var movies []*data.Movie
	for _, id := range ids {
		for _, movie := range m.movies {
			if movie.ID == id {
				movies = append(movies, movie)
			}
		}
	}
	return movies, nil
}

func (m *mockMovieStore) Insert(_ context.Context, movie *data.Movie) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.movies {
		if existing.Title == movie.Title {
			return data.ErrDuplicateKey
		}
	}
	movie.ID = primitive.NewObjectID()
	m.movies = append(m.movies, movie)
	return nil
}

func (m *mockMovieStore) ExistsID(_ context.Context, id primitive.ObjectID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, movie := range m.movies {
		if movie.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMovieStore) ExistsTitle(_ context.Context, title string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, movie := range m.movies {
		if movie.Title == title {
			return true, nil
		}
	}
	return false, nil
}

type mockGenreStore struct {
	genres []*data.Genre
	err    error
}

func (m *mockGenreStore) GetByName(_ context.Context, name string) (*data.Genre, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, genre := range m.genres {
		if genre.Name == name {
			return genre, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m *mockGenreStore) GetAll(_ context.Context, limit int64) ([]*data.Genre, error) {
	if m.err != nil {
		return nil, m.err
	}
	genres := m.genres
	if limit > 0 && limit < int64(len(genres)) {
		genres = genres[:limit]
	}
	return genres, nil
}

func (m *mockGenreStore) Insert(_ context.Context, genre *data.Genre) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.genres {
		if existing.Name == genre.Name {
			return data.ErrDuplicateKey
		}
	}
	genre.ID = primitive.NewObjectID()
	m.genres = append(m.genres, genre)
	return nil
}

func (m *mockGenreStore) ExistsID(_ context.Context, id primitive.ObjectID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, genre := range m.genres {
		if genre.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGenreStore) ExistsName(_ context.Context, name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, genre := range m.genres {
		if genre.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type mockDirectorStore struct {
	directors []*data.Director
	err       error
}

func (m *mockDirectorStore) GetByName(_ context.Context, name string) (*data.Director, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, director := range m.directors {
		if director.Name == name {
			return director, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m *mockDirectorStore) GetAll(_ context.Context, limit int64) ([]*data.Director, error) {
	if m.err != nil {
		return nil, m.err
	}
	directors := m.directors
	if limit > 0 && limit < int64(len(directors)) {
		directors = directors[:limit]
	}
	return directors, nil
}

func (m *mockDirectorStore) Insert(_ context.Context, director *data.Director) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.directors {
		if existing.Name == director.Name {
			return data.ErrDuplicateKey
		}
	}
	director.ID = primitive.NewObjectID()
	m.directors = append(m.directors, director)
	return nil
}

func (m *mockDirectorStore) ExistsID(_ context.Context, id primitive.ObjectID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, director := range m.directors {
		if director.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDirectorStore) ExistsName(_ context.Context, name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, director := range m.directors {
		if director.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type mockUserStore struct {
	users  []*data.User
	movies *mockMovieStore
	err    error
}

func (m *mockUserStore) GetByUsername(_ context.Context, username string) (*data.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m *mockUserStore) GetPublic(ctx context.Context, username string) (*data.PublicUser, error) {
	user, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	var favourites []*data.Movie
	if m.movies != nil {
		favourites, err = m.movies.GetByIDs(ctx, user.Favourites)
		if err != nil {
			return nil, err
		}
	}
	return &data.PublicUser{ID: user.ID, Username: user.Username, Favourites: favourites}, nil
}

func (m *mockUserStore) Insert(_ context.Context, user *data.User) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return data.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserStore) Update(ctx context.Context, username string, upd data.UserUpdate) error {
	user, err := m.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if upd.Username != nil {
		for _, existing := range m.users {
			if existing != user && existing.Username == *upd.Username {
				return data.ErrDuplicateKey
			}
		}
		user.Username = *upd.Username
	}
	if upd.Password != nil {
		if err := user.Password.Set(*upd.Password); err != nil {
			return err
		}
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Birthday != nil {
		user.Birthday = upd.Birthday
	}
	if upd.Favourites != nil {
		user.Favourites = upd.Favourites
	}
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, username string) error {
	if m.err != nil {
		return m.err
	}
	for i, user := range m.users {
		if user.Username == username {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return data.ErrRecordNotFound
}

func (m *mockUserStore) ExistsUsername(_ context.Context, username string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// newTestApplication builds an application wired to empty mock stores. Tests
// mutate the mocks directly to arrange state.
func newTestApplication(t *testing.T) (*application, *mockMovieStore, *mockGenreStore, *mockDirectorStore, *mockUserStore) {
	t.Helper()

	movies := &mockMovieStore{}
	genres := &mockGenreStore{}
	directors := &mockDirectorStore{}
	users := &mockUserStore{movies: movies}

	models := data.Models{
		Movies:    movies,
		Genres:    genres,
		Directors: directors,
		Users:     users,
	}

	var cfg config
	cfg.jwt.secret = "test-secret"

	app := &application{
		config: cfg,
		logger: jsonlog.New(io.Discard, jsonlog.LevelFatal),
		models: models,
		rules:  newRuleRegistry(models),
		mailer: mailer.New("localhost", 1, "", "", "test <test@example.com>"),
	}
	return app, movies, genres, directors, users
}

// seedUser inserts a user with a hashed password into the mock store.
func seedUser(t *testing.T, users *mockUserStore, username, pass, email string) *data.User {
	t.Helper()
	user := &data.User{Username: username, Email: email}
	require.NoError(t, user.Password.Set(pass))
	require.NoError(t, users.Insert(context.Background(), user))
	return user
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withURLParams attaches path parameters the way the router would.
func withURLParams(r *http.Request, params httprouter.Params) *http.Request {
	ctx := context.WithValue(r.Context(), httprouter.ParamsKey, params)
	return r.WithContext(ctx)
}

// decodeBody parses a JSON response body into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}
