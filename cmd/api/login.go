package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/pascaldekloe/jwt"

	"myflix.interimme.net/internal/data"
)

const (
	// jwtIssuer is both the issuer and the sole accepted audience of every
	// token this server signs.
	jwtIssuer = "myflix.interimme.net"
	// tokenCookieName is the http-only cookie carrying the JWT for browser clients.
	tokenCookieName = "token"
	// tokenTTL is how long an issued token stays valid.
	tokenTTL = 7 * 24 * time.Hour
)

// loginHandler authenticates a username/password pair and issues a signed
// JWT, returned in the response body and set as an http-only cookie. Invalid
// credentials are a 400, deliberately indistinguishable between an unknown
// username and a wrong password.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Username == "" || input.Password == "" {
		app.invalidCredentialsResponse(w, r)
		return
	}

	user, err := app.models.Users.GetByUsername(r.Context(), input.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	var claims jwt.Claims
	claims.Subject = user.Username
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(time.Now().Add(tokenTTL))
	claims.Issuer = jwtIssuer
	claims.Audiences = []string{jwtIssuer}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(app.config.jwt.secret))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    string(jwtBytes),
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
	})

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user, "jwtToken": string(jwtBytes)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
