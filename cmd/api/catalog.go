package main

import (
	"context"
	"errors"
	"net/http"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
)

// catalog describes one entity collection for the generic list and
// get-by-natural-key handlers shared by directors, genres and movies.
type catalog struct {
	singular string // Envelope key for a single document.
	plural   string // Envelope key for a list of documents.
	keyParam string // Name of the natural-key path parameter.
	getOne   func(ctx context.Context, key string) (any, error)
	getAll   func(ctx context.Context, limit int64) (any, int, error)
}

// listCatalogHandler handles GET on a collection: the whole collection in
// store-native order, optionally truncated by a validated positive limit.
// An empty result is a 404.
func (app *application) listCatalogHandler(c catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sanitized, failure := app.rules.catalogList.Run(r.Context(), &rules.Request{Query: r.URL.Query()})
		if failure != nil {
			app.failureResponse(w, r, failure)
			return
		}

		var limit int64
		if v, ok := sanitized["limit"].(int64); ok {
			limit = v
		}

		result, n, err := c.getAll(r.Context(), limit)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		if n == 0 {
			app.notFoundResponse(w, r)
			return
		}

		err = app.writeJSON(w, http.StatusOK, envelope{c.plural: result}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
	}
}

// showCatalogHandler handles GET on a single document identified by its
// natural key (title or name).
func (app *application) showCatalogHandler(c catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := app.readKeyParam(r, c.keyParam)
		if err != nil {
			app.notFoundResponse(w, r)
			return
		}

		result, err := c.getOne(r.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrRecordNotFound):
				app.notFoundResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		err = app.writeJSON(w, http.StatusOK, envelope{c.singular: result}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
	}
}
