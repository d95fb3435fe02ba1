package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
)

// genreCatalog wires the genres collection into the generic catalog handlers.
func (app *application) genreCatalog() catalog {
	return catalog{
		singular: "genre",
		plural:   "genres",
		keyParam: "name",
		getOne: func(ctx context.Context, key string) (any, error) {
			return app.models.Genres.GetByName(ctx, key)
		},
		getAll: func(ctx context.Context, limit int64) (any, int, error) {
			genres, err := app.models.Genres.GetAll(ctx, limit)
			return genres, len(genres), err
		},
	}
}

// createGenreHandler handles requests to create a new genre record.
func (app *application) createGenreHandler(w http.ResponseWriter, r *http.Request) {
	body, err := app.readBody(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sanitized, failure := app.rules.createGenre.Run(r.Context(), &rules.Request{Body: body})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	genre := &data.Genre{
		Name:        sanitized["name"].(string),
		Description: sanitized["description"].(string),
	}

	err = app.models.Genres.Insert(r.Context(), genre)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateKey):
			app.conflictResponse(w, r, "a genre with this name already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/genres/%s", genre.Name))

	err = app.writeJSON(w, http.StatusCreated, envelope{"genre": genre}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
