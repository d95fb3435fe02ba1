package rules

import (
	"context"
	"net/url"
	"sort"
	"strings"
)

// Principal is the authenticated user attached to a request, exposed to rules
// that compare submitted values against the caller's own stored record.
type Principal interface {
	FieldUnchanged(field string, value any) (bool, error)
}

// Request carries the raw material one chain run validates: the decoded body,
// the path parameters, the query string, and the authenticated principal (nil
// on unauthenticated routes).
type Request struct {
	Body   map[string]any
	Params map[string]string
	Query  url.Values
	User   Principal
}

// Chain is the ordered rule list declared for one route. Chains are built once
// at startup and are safe for concurrent use; all per-request state lives in
// the Request.
type Chain struct {
	fields        []*FieldChain
	rejectUnknown bool
}

// New assembles a chain from per-field rule declarations, evaluated in order.
func New(fields ...*FieldChain) *Chain {
	return &Chain{fields: fields}
}

// RejectUnknown appends the terminal rule failing the whole request when the
// body contains a key not covered by any declared body field.
func (c *Chain) RejectUnknown() *Chain {
	c.rejectUnknown = true
	return c
}

// Run executes the chain against one request. Rules run strictly in
// declaration order and each is awaited before the next, so short-circuiting
// is deterministic even though store-backed rules block. On success it returns
// the sanitized values of every field that had at least one passing,
// non-skipped rule; on failure, the first failure wins.
func (c *Chain) Run(ctx context.Context, r *Request) (map[string]any, *Failure) {
	sanitized := make(map[string]any)
	var first *Failure

	for _, fc := range c.fields {
		value, present := fc.value(r)

		// Optional chains are skipped outright for absent or falsy values.
		if fc.optional && (!present || Falsy(value)) {
			continue
		}

		field := Field{Name: fc.field, Source: fc.source}
		passed := true

		for _, st := range fc.steps {
			// The outcome is already known, so spend no further store queries.
			if st.store && first != nil {
				passed = false
				break
			}

			err := st.check(ctx, r, field, value)
			if err == nil {
				continue
			}

			fail := fc.failure(err)
			if fail.Kind == Store {
				// Store errors are never a validation outcome; abort at once.
				return nil, fail
			}
			if first == nil {
				first = fail
			}
			passed = false
			if st.bail == BailRequest {
				return nil, first
			}
			break // Remaining checks for this field are skipped.
		}

		if passed {
			sanitized[fc.field] = fc.normalized(value)
		}
	}

	if first == nil && c.rejectUnknown {
		if fail := c.unknownField(r); fail != nil {
			return nil, fail
		}
	}
	if first != nil {
		return nil, first
	}
	return sanitized, nil
}

// value resolves the field's raw value from its bound request section.
func (fc *FieldChain) value(r *Request) (any, bool) {
	switch fc.source {
	case SourceParam:
		v, ok := r.Params[fc.field]
		return v, ok && v != ""
	case SourceQuery:
		if r.Query == nil || !r.Query.Has(fc.field) {
			return nil, false
		}
		return r.Query.Get(fc.field), true
	default:
		v, ok := r.Body[fc.field]
		return v, ok
	}
}

// unknownField reports the first body key, in lexical order, that no declared
// body chain covers.
func (c *Chain) unknownField(r *Request) *Failure {
	declared := make(map[string]bool, len(c.fields))
	for _, fc := range c.fields {
		if fc.source == SourceBody {
			declared[fc.field] = true
		}
	}

	keys := make([]string, 0, len(r.Body))
	for key := range r.Body {
		if !declared[key] {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return &Failure{Kind: Validation, Field: keys[0], Message: "unknown field " + keys[0] + " in request body"}
}

// Falsy reports whether a decoded JSON value counts as "absent" for optional
// chains. The permissive policy is deliberate: the empty string, false, zero
// and the empty array all skip an optional field entirely, including birthday
// and favourites.
func Falsy(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0
	case int:
		return value == 0
	case int64:
		return value == 0
	case []any:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	default:
		return false
	}
}

// normalizeEmail lower-cases and trims an email address for storage.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
