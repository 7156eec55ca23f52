package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New()

// Payload is a loosely typed request body keyed by field name.
// Numbers decoded from JSON are expected as json.Number.
type Payload map[string]any

// FieldKind is the declared type of a business field
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindInteger
)

// FieldRule declares how one business field is coerced and validated.
// Tag is a go-playground/validator tag checked against the coerced value.
type FieldRule struct {
	Name    string
	Kind    FieldKind
	Tag     string
	Message string
}

// Schema is the ordered rule set of one resource
type Schema struct {
	Resource string
	Rules    []FieldRule
}

// Label returns the capitalised resource name, e.g. "Product".
func (s Schema) Label() string {
	if s.Resource == "" {
		return ""
	}
	return strings.ToUpper(s.Resource[:1]) + s.Resource[1:]
}

// Create validates a full payload: every rule is required.
func (s Schema) Create(p Payload) (Fields, error) {
	return s.check(p, true)
}

// Patch validates a partial payload: only fields present in p are checked.
// A payload without any known field is rejected.
func (s Schema) Patch(p Payload) (Fields, error) {
	if !s.hasAny(p) {
		return nil, NewValidationError(MsgNothingToUpdate)
	}
	return s.check(p, false)
}

func (s Schema) hasAny(p Payload) bool {
	for _, rule := range s.Rules {
		if _, ok := p[rule.Name]; ok {
			return true
		}
	}
	return false
}

func (s Schema) check(p Payload, required bool) (Fields, error) {
	fields := make(Fields, len(s.Rules))
	var messages []string

	for _, rule := range s.Rules {
		raw, present := p[rule.Name]
		if !present {
			if required {
				messages = append(messages, rule.Message)
			}
			continue
		}
		value, ok := rule.coerce(raw)
		if !ok || validate.Var(value, rule.Tag) != nil {
			messages = append(messages, rule.Message)
			continue
		}
		fields[rule.Name] = value
	}

	if len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}
	return fields, nil
}

// coerce converts a raw payload value into the Go type of the rule kind.
func (r FieldRule) coerce(raw any) (any, bool) {
	switch r.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}
		return strings.TrimSpace(s), true
	case KindNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, false
		}
		return n, true
	case KindInteger:
		n, ok := toNumber(raw)
		if !ok || n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return nil, false
		}
		return int64(n), true
	}
	return nil, false
}

// toNumber accepts JSON numbers and numeric strings and rejects NaN and infinities.
func toNumber(raw any) (float64, bool) {
	var (
		n   float64
		err error
	)
	switch v := raw.(type) {
	case json.Number:
		n, err = v.Float64()
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Fields is the explicit set of fields present in a validated payload,
// holding coerced values (string, float64 or int64).
type Fields map[string]any

// String returns the named string field if it is present.
func (f Fields) String(name string) (string, bool) {
	v, ok := f[name].(string)
	return v, ok
}

// Number returns the named number field if it is present.
func (f Fields) Number(name string) (float64, bool) {
	v, ok := f[name].(float64)
	return v, ok
}

// Integer returns the named integer field if it is present.
func (f Fields) Integer(name string) (int64, bool) {
	v, ok := f[name].(int64)
	return v, ok
}
