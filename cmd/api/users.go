package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
)

// registerUserHandler handles requests to register a new user. Favourites are
// optional; when absent they are stored as null. A welcome email goes out in
// the background after a successful insert.
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	body, err := app.readBody(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sanitized, failure := app.rules.createUser.Run(r.Context(), &rules.Request{Body: body})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	user := &data.User{
		Username: sanitized["username"].(string),
		Email:    sanitized["email"].(string),
	}
	if birthday, ok := sanitized["birthday"].(time.Time); ok {
		user.Birthday = &birthday
	}
	if favourites, ok := sanitized["favourites"].([]any); ok {
		ids, err := data.ObjectIDsFromHex(favourites)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		user.Favourites = ids
	}

	err = user.Password.Set(sanitized["password"].(string))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Users.Insert(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateKey):
			app.conflictResponse(w, r, "a user with this username already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.background(func() {
		mailData := map[string]interface{}{
			"username": user.Username,
		}
		err := app.mailer.Send(user.Email, "user_welcome.tmpl", mailData)
		if err != nil {
			app.logger.PrintError(err, nil)
		}
	})

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/users/%s", user.Username))

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showUserHandler handles unauthenticated reads of a user by username. The
// response carries the public representation: password, email and birthday
// are stripped, and favourites are expanded with their genre and director
// sub-references.
func (app *application) showUserHandler(w http.ResponseWriter, r *http.Request) {
	username, err := app.readKeyParam(r, "username")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	_, failure := app.rules.userParam.Run(r.Context(), &rules.Request{
		Params: map[string]string{"username": username},
	})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	user, err := app.models.Users.GetPublic(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler handles partial updates of the authenticated user's own
// record. Every submitted field must differ from the stored value; a no-op
// patch is rejected citing the unchanged field.
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)

	body, err := app.readBody(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sanitized, failure := app.rules.updateUser.Run(r.Context(), &rules.Request{
		Body: body,
		User: user,
	})
	if failure != nil {
		app.failureResponse(w, r, failure)
		return
	}

	var upd data.UserUpdate
	if username, ok := sanitized["username"].(string); ok {
		upd.Username = &username
	}
	if password, ok := sanitized["password"].(string); ok {
		upd.Password = &password
	}
	if email, ok := sanitized["email"].(string); ok {
		upd.Email = &email
	}
	if birthday, ok := sanitized["birthday"].(time.Time); ok {
		upd.Birthday = &birthday
	}
	if favourites, ok := sanitized["favourites"].([]any); ok {
		ids, err := data.ObjectIDsFromHex(favourites)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		upd.Favourites = ids
	}

	err = app.models.Users.Update(r.Context(), user.Username, upd)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrDuplicateKey):
			app.conflictResponse(w, r, "a user with this username already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user updated successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteUserHandler handles deletion of the authenticated user's own record.
func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)

	err := app.models.Users.Delete(r.Context(), user.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
