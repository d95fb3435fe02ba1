package main

import (
	"fmt"
	"net/http"

	"myflix.interimme.net/internal/rules"
)

// logError logs an error message along with the HTTP request method and URL that caused the error.
func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

// errorResponse sends a JSON-formatted error message with a specified status code to the client.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := envelope{"error": message}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// serverErrorResponse logs an internal server error and sends a 500 Internal Server Error response to the client.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

// notFoundResponse sends a 404 Not Found response to the client when a resource cannot be found.
func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

// methodNotAllowedResponse sends a 405 Method Not Allowed response when an HTTP method is not supported for the resource.
func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 Bad Request response to the client when there is an issue with the request.
func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse sends a 422 Unprocessable Entity response when a request fails validation checks.
func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

// conflictResponse sends a 400 Bad Request response when a create or update
// collides with an existing natural key.
func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

// failureResponse maps a rule chain failure to its HTTP response. Only the
// first failing rule's message is ever surfaced.
func (app *application) failureResponse(w http.ResponseWriter, r *http.Request, failure *rules.Failure) {
	switch failure.Kind {
	case rules.Conflict:
		app.conflictResponse(w, r, failure.Message)
	case rules.NotFound:
		app.errorResponse(w, r, http.StatusNotFound, failure.Message)
	case rules.Store:
		app.serverErrorResponse(w, r, failure.Err)
	default:
		app.failedValidationResponse(w, r, map[string]string{failure.Field: failure.Message})
	}
}

// invalidCredentialsResponse sends a 400 Bad Request response when login credentials are invalid.
func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "please provide a valid username and password"
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

// invalidAuthenticationTokenResponse sends a 401 Unauthorized response when an authentication token is missing or invalid.
func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	message := "invalid or missing authentication token"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// authenticationRequiredResponse sends a 401 Unauthorized response when a resource requires authentication.
func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	message := "you must be authenticated to access this resource"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// notPermittedResponse sends a 403 Forbidden response when a user acts on
// another user's resource.
func (app *application) notPermittedResponse(w http.ResponseWriter, r *http.Request) {
	message := "you may only act on your own user account"
	app.errorResponse(w, r, http.StatusForbidden, message)
}

// rateLimitExceededResponse sends a 429 Too Many Requests response when a client exceeds the rate limit.
func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}
