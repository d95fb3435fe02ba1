package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// readKeyParam extracts a named natural-key parameter (title, name, username)
// from the URL. Returns an error if the parameter is missing or empty.
func (app *application) readKeyParam(r *http.Request, name string) (string, error) {
	params := httprouter.ParamsFromContext(r.Context())
	key := params.ByName(name)
	if key == "" {
		return "", fmt.Errorf("invalid %s parameter", name)
	}
	return key, nil
}

// envelope is a type alias for a map that holds JSON response data.
type envelope map[string]interface{}

// writeJSON writes a JSON response to the client with a specified status code and optional headers.
func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON reads and parses JSON data from the request body into the destination struct.
// Validates the JSON format and checks for various errors, such as syntax errors and unexpected fields.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	// Ensure the JSON data only contains a single value.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// readBody reads the request body as a raw JSON object for the rule pipeline.
// Unknown keys are not rejected here; the route's rule chain decides which
// fields are declared and fails the request on any extra key.
func (app *application) readBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var body map[string]any
	err := app.readJSON(w, r, &body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("body must not be empty")
	}
	return body, nil
}

// background runs a function in a separate goroutine, recovering from any
// panic so a failing background task never takes the server down.
func (app *application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				app.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()

		fn()
	}()
}
