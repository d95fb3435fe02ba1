package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/rules"
	"myflix.interimme.net/internal/validator"
)

// ruleRegistry holds the validation chain for every route template. It is
// built once at startup with the data models injected, so no per-request
// lookup or construction ever happens; routes sharing a shape (the catalog
// list and get-by-key routes) share one chain.
type ruleRegistry struct {
	createDirector *rules.Chain
	createGenre    *rules.Chain
	createMovie    *rules.Chain
	createUser     *rules.Chain
	updateUser     *rules.Chain
	userParam      *rules.Chain // username path parameter: show, update, delete
	catalogList    *rules.Chain // limit query parameter on list routes
}

// newRuleRegistry declares the per-route, per-field rule chains. Rules run in
// declaration order; store-backed checks (Lookup) come last in each field's
// chain so no query is spent on a value that already failed a cheap check.
func newRuleRegistry(models data.Models) *ruleRegistry {
	return &ruleRegistry{
		createDirector: rules.New(
			rules.Body("name").NotEmpty().Bail(rules.BailRequest).MinLength(3).Lookup(keyInStore(models.Directors.ExistsName, "director", "name")),
			rules.Body("birthday").NotEmpty().Bail(rules.BailRequest).IsDate(),
			rules.Body("deathday").Optional().IsDate(),
			rules.Body("biography").Optional().IsString(),
		).RejectUnknown(),

		createGenre: rules.New(
			rules.Body("name").NotEmpty().Bail(rules.BailRequest).MinLength(3).Lookup(keyInStore(models.Genres.ExistsName, "genre", "name")),
			rules.Body("description").NotEmpty().IsString(),
		).RejectUnknown(),

		createMovie: rules.New(
			rules.Body("title").NotEmpty().Bail(rules.BailRequest).Lookup(keyInStore(models.Movies.ExistsTitle, "movie", "title")),
			rules.Body("description").NotEmpty().IsString(),
			rules.Body("genre").NotEmpty().Bail(rules.BailRequest).Lookup(referencedID(models.Genres.ExistsID, "genre")),
			rules.Body("director").NotEmpty().Bail(rules.BailRequest).Lookup(referencedID(models.Directors.ExistsID, "director")),
			rules.Body("imagePath").Optional().IsString(),
		).RejectUnknown(),

		createUser: rules.New(
			rules.Body("username").NotEmpty().Bail(rules.BailRequest).MinLength(5).Alphanumeric().Lookup(keyInStore(models.Users.ExistsUsername, "user", "username")),
			rules.Body("password").NotEmpty().IsString(),
			rules.Body("email").NotEmpty().Bail(rules.BailRequest).IsEmail(),
			rules.Body("birthday").Optional().IsDate(),
			rules.Body("favourites").Optional().IsArray().Bail(rules.BailRequest).Lookup(referencedIDs(models.Movies.ExistsID, "movie")),
		).RejectUnknown(),

		updateUser: rules.New(
			rules.Body("username").Optional().MinLength(5).Alphanumeric().Custom(fieldUnchanged("username")).Lookup(keyInStore(models.Users.ExistsUsername, "user", "username")),
			rules.Body("password").Optional().IsString().Custom(fieldUnchanged("password")),
			rules.Body("email").Optional().IsEmail().Custom(fieldUnchanged("email")),
			rules.Body("birthday").Optional().IsDate().Custom(fieldUnchanged("birthday")),
			rules.Body("favourites").Optional().IsArray().Bail(rules.BailRequest).Lookup(referencedIDs(models.Movies.ExistsID, "movie")).Custom(fieldUnchanged("favourites")),
		).RejectUnknown(),

		userParam: rules.New(
			rules.Param("username").MinLength(5).Bail(rules.BailRequest).Alphanumeric().Bail(rules.BailRequest).Lookup(keyInStore(models.Users.ExistsUsername, "user", "username")),
		),

		catalogList: rules.New(
			rules.Query("limit").Optional().IsPositiveInt(),
		),
	}
}

// keyInStore builds the direction-dependent natural-key rule: bound to the
// body of a create request, the key must not exist yet; bound to a path
// parameter identifying an existing record, it must.
func keyInStore(exists func(context.Context, string) (bool, error), noun, key string) rules.Check {
	return func(ctx context.Context, _ *rules.Request, f rules.Field, value any) error {
		s, ok := value.(string)
		if !ok {
			return rules.Invalid("%s must be a string", f.Name)
		}
		found, err := exists(ctx, s)
		if err != nil {
			return rules.StoreFailed(err)
		}
		if f.Source == rules.SourceParam {
			if !found {
				return rules.Missing("the %s provided in the URL does not exist in the database", noun)
			}
			return nil
		}
		if found {
			return rules.Duplicate("a %s with this %s already exists", noun, key)
		}
		return nil
	}
}

// referencedID builds the rule for a single referenced document id: a
// malformed id is a validation failure regardless of store state, a
// well-formed id that resolves to nothing is not found, and a store error
// during the check is surfaced as such, never as a validation failure.
func referencedID(exists func(context.Context, primitive.ObjectID) (bool, error), noun string) rules.Check {
	return func(ctx context.Context, _ *rules.Request, f rules.Field, value any) error {
		s, ok := value.(string)
		if !ok {
			return rules.Invalid("%s must be a %s id", f.Name, noun)
		}
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return rules.Invalid("%s must be a valid %s id", f.Name, noun)
		}
		found, err := exists(ctx, id)
		if err != nil {
			return rules.StoreFailed(err)
		}
		if !found {
			return rules.Missing("the %s id provided for %s does not exist in the database", noun, f.Name)
		}
		return nil
	}
}

// referencedIDs is the array form of referencedID, used for favourites. Every
// id is format-checked and the list checked for duplicates before any store
// lookup is spent on existence.
func referencedIDs(exists func(context.Context, primitive.ObjectID) (bool, error), noun string) rules.Check {
	return func(ctx context.Context, _ *rules.Request, f rules.Field, value any) error {
		values, ok := value.([]any)
		if !ok {
			return rules.Invalid("%s must be a non-empty array", f.Name)
		}

		hexes := make([]string, 0, len(values))
		ids := make([]primitive.ObjectID, 0, len(values))
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return rules.Invalid("invalid %s id in %s", noun, f.Name)
			}
			id, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return rules.Invalid("invalid %s id in %s", noun, f.Name)
			}
			hexes = append(hexes, s)
			ids = append(ids, id)
		}
		if !validator.Unique(hexes) {
			return rules.Invalid("%s must not contain duplicate %s ids", f.Name, noun)
		}

		for i, id := range ids {
			found, err := exists(ctx, id)
			if err != nil {
				return rules.StoreFailed(err)
			}
			if !found {
				return rules.Missing("the %s id %s in %s does not exist in the database", noun, hexes[i], f.Name)
			}
		}
		return nil
	}
}

// fieldUnchanged builds the update-only no-op rejection rule: the submitted
// value must differ from the value currently stored on the authenticated
// user's own record.
func fieldUnchanged(field string) rules.Check {
	return func(_ context.Context, r *rules.Request, f rules.Field, value any) error {
		if r.User == nil {
			return nil
		}
		unchanged, err := r.User.FieldUnchanged(field, value)
		if err != nil {
			return rules.StoreFailed(err)
		}
		if unchanged {
			return rules.Invalid("%s is the same as the current %s", f.Name, field)
		}
		return nil
	}
}
