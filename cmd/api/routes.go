package main

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes sets up the application's routing table and middleware chain. The
// catalog entities (directors, genres, movies) share the generic list and
// get-by-key handlers; creation routes require an authenticated user, and the
// user mutation routes additionally require acting on one's own account.
func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	directors := app.directorCatalog()
	router.HandlerFunc(http.MethodGet, "/directors", app.listCatalogHandler(directors))
	router.HandlerFunc(http.MethodGet, "/directors/:name", app.showCatalogHandler(directors))
	router.HandlerFunc(http.MethodPost, "/directors", app.requireAuthenticatedUser(app.createDirectorHandler))

	genres := app.genreCatalog()
	router.HandlerFunc(http.MethodGet, "/genres", app.listCatalogHandler(genres))
	router.HandlerFunc(http.MethodGet, "/genres/:name", app.showCatalogHandler(genres))
	router.HandlerFunc(http.MethodPost, "/genres", app.requireAuthenticatedUser(app.createGenreHandler))

	movies := app.movieCatalog()
	router.HandlerFunc(http.MethodGet, "/movies", app.listCatalogHandler(movies))
	router.HandlerFunc(http.MethodGet, "/movies/:title", app.showCatalogHandler(movies))
	router.HandlerFunc(http.MethodPost, "/movies", app.requireAuthenticatedUser(app.createMovieHandler))

	router.HandlerFunc(http.MethodPost, "/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/users/:username", app.showUserHandler)
	router.HandlerFunc(http.MethodPatch, "/users/:username", app.requireSelf(app.updateUserHandler))
	router.HandlerFunc(http.MethodDelete, "/users/:username", app.requireSelf(app.deleteUserHandler))

	router.HandlerFunc(http.MethodPost, "/login", app.loginHandler)

	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	return app.metrics(
		app.recoverPanic(
			app.enableCORS(
				app.rateLimit(
					app.authenticate(router)))))
}
