package main

import (
	"context"
	"net/http"

	"myflix.interimme.net/internal/data"
)

// contextKey is a private type for request context keys.
type contextKey string

// userContextKey is the key under which the authenticated user travels in the
// request context.
const userContextKey = contextKey("user")

// contextSetUser returns a copy of the request with the user added to its context.
func (app *application) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser retrieves the user from the request context. It panics when
// no user is present, which only happens on a programming error in the
// middleware chain.
func (app *application) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
