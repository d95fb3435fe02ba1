// Package rules implements the per-route request validation pipeline: ordered
// chains of single-field rules with optional store-backed predicates, executed
// strictly sequentially with declared bail levels, producing either a sanitized
// set of field values or the first failure mapped to an HTTP outcome.
package rules

import (
	"context"
	"fmt"
	"strconv"

	"myflix.interimme.net/internal/validator"
)

// Source identifies the section of the request a field rule is bound to.
// Some checks change direction based on it: a natural key bound to the body
// must not exist yet, while the same key bound to a path parameter must.
type Source int8

const (
	SourceBody Source = iota
	SourceParam
	SourceQuery
)

// Kind classifies a rule failure, which in turn selects the HTTP status.
type Kind int8

const (
	Validation Kind = iota // Client data fails a declared rule (422).
	Conflict               // Duplicate natural key (400).
	NotFound               // A referenced record does not exist (404).
	Store                  // The persistence layer itself errored (500).
)

// Failure is the structured outcome of a failing rule. Only the first failure
// of a request is ever surfaced to the client.
type Failure struct {
	Kind    Kind
	Field   string
	Message string
	Err     error // Underlying store error, set for Kind Store only.
}

func (f *Failure) Error() string {
	return f.Message
}

// Invalid builds a Validation failure with a formatted message.
func Invalid(format string, args ...any) *Failure {
	return &Failure{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// Duplicate builds a Conflict failure with a formatted message.
func Duplicate(format string, args ...any) *Failure {
	return &Failure{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Missing builds a NotFound failure with a formatted message.
func Missing(format string, args ...any) *Failure {
	return &Failure{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// StoreFailed wraps a persistence-layer error. It is never treated as a
// validation outcome: the executor aborts immediately and the handler responds
// with a generic server error.
func StoreFailed(err error) *Failure {
	return &Failure{Kind: Store, Message: "the database could not be queried", Err: err}
}

// Field describes the binding of the rule currently executing. It is handed to
// every check so direction-dependent predicates can discriminate on Source.
type Field struct {
	Name   string
	Source Source
}

// Check is a single predicate over one field value. Checks that need the
// store receive the request context and may block; the executor guarantees no
// two checks of the same request ever run concurrently.
type Check func(ctx context.Context, r *Request, f Field, value any) error

// BailLevel is the scope at which a failing check stops further evaluation.
type BailLevel int8

const (
	// BailField skips the remaining checks of the current field only. This is
	// also the default behavior on failure.
	BailField BailLevel = iota
	// BailRequest aborts the entire rule list immediately.
	BailRequest
)

// step is one check in a field's chain together with its bail marker.
type step struct {
	check Check
	bail  BailLevel
	store bool // Set for store-backed checks so they can be skipped once a failure is known.
}

// FieldChain is the ordered list of checks declared for one field of one
// route, plus its optionality and normalization behavior.
type FieldChain struct {
	field     string
	source    Source
	optional  bool
	steps     []step
	normalize func(value any) any
}

// Body declares a rule chain for a field in the request body.
func Body(field string) *FieldChain {
	return &FieldChain{field: field, source: SourceBody}
}

// Param declares a rule chain for a path parameter.
func Param(field string) *FieldChain {
	return &FieldChain{field: field, source: SourceParam}
}

// Query declares a rule chain for a query string parameter.
func Query(field string) *FieldChain {
	return &FieldChain{field: field, source: SourceQuery}
}

// Optional marks the whole chain as skipped when the field is absent or falsy.
// The falsy policy is deliberate and exact: nil, the empty string, false, zero
// numbers and empty arrays all count as "absent" (see Chain.Run).
func (fc *FieldChain) Optional() *FieldChain {
	fc.optional = true
	return fc
}

// Bail sets the bail level of the most recently declared check.
func (fc *FieldChain) Bail(level BailLevel) *FieldChain {
	if n := len(fc.steps); n > 0 {
		fc.steps[n-1].bail = level
	}
	return fc
}

// Custom appends a caller-supplied check.
func (fc *FieldChain) Custom(check Check) *FieldChain {
	fc.steps = append(fc.steps, step{check: check})
	return fc
}

// Lookup appends a caller-supplied check that queries the store. Lookup checks
// are skipped once an earlier failure is recorded, so no store round trips are
// spent on a request whose outcome is already known.
func (fc *FieldChain) Lookup(check Check) *FieldChain {
	fc.steps = append(fc.steps, step{check: check, store: true})
	return fc
}

// NotEmpty fails if the value is absent or the empty string.
func (fc *FieldChain) NotEmpty() *FieldChain {
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		if v == nil || v == "" {
			return Invalid("%s must be provided", f.Name)
		}
		return nil
	})
}

// IsString fails if the value is present but not a string.
func (fc *FieldChain) IsString() *FieldChain {
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		if _, ok := v.(string); !ok {
			return Invalid("%s must be a string", f.Name)
		}
		return nil
	})
}

// IsArray fails if the value is present but not an array.
func (fc *FieldChain) IsArray() *FieldChain {
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		if _, ok := v.([]any); !ok {
			return Invalid("%s must be a non-empty array", f.Name)
		}
		return nil
	})
}

// MinLength fails if the value is not a string of at least n characters.
func (fc *FieldChain) MinLength(n int) *FieldChain {
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		s, ok := v.(string)
		if !ok || !validator.MinRunes(s, n) {
			return Invalid("%s must be at least %d characters long", f.Name, n)
		}
		return nil
	})
}

// Alphanumeric fails if the value contains anything but ASCII letters and digits.
func (fc *FieldChain) Alphanumeric() *FieldChain {
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		s, ok := v.(string)
		if !ok || !validator.Matches(s, validator.AlphanumericRX) {
			return Invalid("%s contains non alphanumeric characters - not allowed", f.Name)
		}
		return nil
	})
}

// IsEmail fails unless the value is a well-formed email address. The sanitized
// value is normalized to lower case.
func (fc *FieldChain) IsEmail() *FieldChain {
	fc.normalize = func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		return normalizeEmail(s)
	}
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		s, ok := v.(string)
		if !ok || !validator.Matches(s, validator.EmailRX) {
			return Invalid("%s must be a valid email address", f.Name)
		}
		return nil
	})
}

// IsDate fails unless the value parses as an ISO date string. The sanitized
// value is the parsed time.Time.
func (fc *FieldChain) IsDate() *FieldChain {
	fc.normalize = func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		t, err := validator.ParseDate(s)
		if err != nil {
			return v
		}
		return t
	}
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		s, ok := v.(string)
		if !ok || !validator.ValidDate(s) {
			return Invalid("%s must be a valid date", f.Name)
		}
		return nil
	})
}

// IsPositiveInt fails unless the value is a positive integer. Non-positive and
// non-numeric values are a validation failure, never silently ignored. The
// sanitized value is the parsed int64.
func (fc *FieldChain) IsPositiveInt() *FieldChain {
	fc.normalize = func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		n, err := parseInt(s)
		if err != nil {
			return v
		}
		return n
	}
	return fc.Custom(func(_ context.Context, _ *Request, f Field, v any) error {
		s, ok := v.(string)
		if ok {
			if n, err := parseInt(s); err == nil && n > 0 {
				return nil
			}
		}
		return Invalid("%s must be a positive integer", f.Name)
	})
}

// normalized applies the chain's normalizer, if any, to a passing value.
func (fc *FieldChain) normalized(v any) any {
	if fc.normalize != nil {
		return fc.normalize(v)
	}
	return v
}

// failure adapts a check error into a *Failure bound to this chain's field.
func (fc *FieldChain) failure(err error) *Failure {
	if f, ok := err.(*Failure); ok {
		if f.Field == "" {
			f.Field = fc.field
		}
		return f
	}
	return &Failure{Kind: Validation, Field: fc.field, Message: err.Error()}
}

// parseInt parses a base-10 integer from a query string value.
func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
