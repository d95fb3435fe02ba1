package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
)

// movieCatalog wires the movies collection into the generic catalog handlers.
// Reads come back with genre and director expanded to full sub-documents.
func (app *application) movieCatalog() catalog {
	return catalog{
		singular: "movie",
		plural:   "movies",
		keyParam: "title",
		getOne: func(ctx context.Context, key string) (any, error) {
			return app.models.Movies.GetByTitle(ctx, key)
		},
		getAll: func(ctx context.Context, limit int64) (any, int, error) {
			movies, err := app.models.Movies.GetAll(ctx, limit)
			return movies, len(movies), err
		},
	}
}

// createMovieHandler handles requests to create a new movie record. The rule
// chain has already verified that the referenced genre and director exist, so
// the hex ids are well-formed by the time they are converted here.
func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	body, err := app.readBody(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sanitized, failure := app.rules.createMovie.Run(r.Context(), &rules.Request{Body: body})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	genreID, err := primitive.ObjectIDFromHex(sanitized["genre"].(string))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	directorID, err := primitive.ObjectIDFromHex(sanitized["director"].(string))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		Title:       sanitized["title"].(string),
		Description: sanitized["description"].(string),
		GenreID:     genreID,
		DirectorID:  directorID,
	}
	if imagePath, ok := sanitized["imagePath"].(string); ok {
		movie.ImagePath = &imagePath
	}

	err = app.models.Movies.Insert(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateKey):
			app.conflictResponse(w, r, "a movie with this title already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/movies/%s", movie.Title))

	err = app.writeJSON(w, http.StatusCreated, envelope{"movie": movie}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
