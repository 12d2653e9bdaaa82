// Package validation checks and coerces the positional parameters of a
// command against an ordered rule set.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/calehh/hac-market/types"
)

type Kind string

const (
	KindAny     Kind = ""
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
)

// ModelLookup resolves a stored model by id. Any error means the model does
// not exist as far as validation is concerned.
type ModelLookup interface {
	FindOne(ctx context.Context, id uint64) error
}

type LookupFunc func(ctx context.Context, id uint64) error

func (f LookupFunc) FindOne(ctx context.Context, id uint64) error {
	return f(ctx, id)
}

// Rule validates a single positional parameter. Check only runs for present
// values; it receives the value already coerced to the declared Kind and
// returns the value to hand to the command.
type Rule interface {
	Base() *BaseRule
	Check(ctx context.Context, value any, index int, all []any) (any, error)
}

// BaseRule carries the declaration shared by every rule and accepts any value
// of its Kind.
type BaseRule struct {
	Name     string
	Required bool
	Type     Kind
	Default  any
}

func (r *BaseRule) Base() *BaseRule { return r }

func (r *BaseRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	return value, nil
}

func (r *BaseRule) invalid(expected string) error {
	return &types.InvalidParamError{Name: r.Name, Expected: expected}
}

// IDRule accepts a non-negative integer id, optionally resolved through Lookup.
type IDRule struct {
	BaseRule
	// Model names the entity in ModelNotFound errors; derived from Name when empty.
	Model  string
	Lookup ModelLookup
}

func (r *IDRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	f, ok := toFloat(value)
	if !ok {
		return nil, r.invalid("number")
	}
	if f < 0 {
		return nil, r.invalid("value < 0")
	}
	if f != math.Trunc(f) {
		return nil, r.invalid("integer")
	}
	id := uint64(f)
	if r.Lookup != nil {
		if err := r.Lookup.FindOne(ctx, id); err != nil {
			return nil, &types.ModelNotFoundError{Model: r.modelName()}
		}
	}
	return id, nil
}

func (r *IDRule) modelName() string {
	if r.Model != "" {
		return r.Model
	}
	name := strings.TrimSuffix(r.Name, "Id")
	if name == "" {
		return r.Name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// EnumRule accepts one of a closed set of strings.
type EnumRule struct {
	BaseRule
	EnumName string
	Values   []string
}

func (r *EnumRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	s, ok := value.(string)
	if !ok || !slices.Contains(r.Values, s) {
		return nil, r.invalid(r.EnumName)
	}
	return value, nil
}

// NonNegativeRule rejects negative amounts such as prices and ratios.
type NonNegativeRule struct {
	BaseRule
}

func (r *NonNegativeRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	f, ok := toFloat(value)
	if !ok {
		return nil, r.invalid("number")
	}
	if f < 0 {
		return nil, r.invalid("value >= 0")
	}
	return value, nil
}

// RangeRule accepts numbers within [Min, Max].
type RangeRule struct {
	BaseRule
	Min float64
	Max float64
}

func (r *RangeRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	v, ok := toFloat(value)
	if !ok {
		return nil, r.invalid("number")
	}
	if v < r.Min || v > r.Max {
		return nil, r.invalid(fmt.Sprintf("%v <= value <= %v", r.Min, r.Max))
	}
	return value, nil
}

// NonEmptyStringRule rejects blank strings.
type NonEmptyStringRule struct {
	BaseRule
}

func (r *NonEmptyStringRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, r.invalid("non-empty string")
	}
	return value, nil
}

// AddressOrAddressIDRule accepts either false, meaning the address is given
// by the companion Keys elsewhere in the parameter list, or a numeric id of a
// stored address.
type AddressOrAddressIDRule struct {
	BaseRule
	Keys []string
}

func (r *AddressOrAddressIDRule) Check(ctx context.Context, value any, index int, all []any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			break
		}
		for _, key := range r.Keys {
			if !containsString(all, key) {
				return nil, &types.MissingParamError{Name: key}
			}
		}
		return false, nil
	default:
		f, ok := toFloat(v)
		if ok && f >= 0 && f == math.Trunc(f) {
			return uint64(f), nil
		}
	}
	return nil, r.invalid("false|number")
}

func containsString(all []any, s string) bool {
	for _, v := range all {
		if str, ok := v.(string); ok && str == s {
			return true
		}
	}
	return false
}

// coerce normalises a raw value to kind; numbers always become float64.
func coerce(value any, kind Kind) (any, bool) {
	switch kind {
	case KindNumber:
		return toFloat(value)
	case KindString:
		s, ok := value.(string)
		return s, ok
	case KindBoolean:
		b, ok := value.(bool)
		return b, ok
	}
	return value, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
