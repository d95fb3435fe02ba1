package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
)

// directorCatalog wires the directors collection into the generic catalog handlers.
func (app *application) directorCatalog() catalog {
	return catalog{
		singular: "director",
		plural:   "directors",
		keyParam: "name",
		getOne: func(ctx context.Context, key string) (any, error) {
			return app.models.Directors.GetByName(ctx, key)
		},
		getAll: func(ctx context.Context, limit int64) (any, int, error) {
			directors, err := app.models.Directors.GetAll(ctx, limit)
			return directors, len(directors), err
		},
	}
}

// createDirectorHandler handles requests to create a new director record.
func (app *application) createDirectorHandler(w http.ResponseWriter, r *http.Request) {
	body, err := app.readBody(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sanitized, failure := app.rules.createDirector.Run(r.Context(), &rules.Request{Body: body})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	director := &data.Director{
		Name:     sanitized["name"].(string),
		Birthday: sanitized["birthday"].(time.Time),
	}
	if deathday, ok := sanitized["deathday"].(time.Time); ok {
		director.Deathday = &deathday
	}
	if biography, ok := sanitized["biography"].(string); ok {
		director.Biography = &biography
	}

	err = app.models.Directors.Insert(r.Context(), director)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateKey):
			app.conflictResponse(w, r, "a director with this name already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/directors/%s", director.Name))

	err = app.writeJSON(w, http.StatusCreated, envelope{"director": director}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
