// Package schema turns untyped category payloads into normalized
// domain.CategoryInput values. It checks presence, JSON types and lengths and
// fills defaults; uniqueness is left to the duplicate check.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"catalog_service/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeCategory validates payload and returns the normalized input. On
// failure the error is a *domain.ValidationError listing every bad field.
func DecodeCategory(payload []byte) (domain.CategoryInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return domain.CategoryInput{}, domain.NewValidationError("body", "must be a JSON object")
	}

	in := domain.CategoryInput{Level: domain.DefaultCategoryLevel}
	problems := map[string]string{}

	if s, ok, err := stringField(raw, "name"); err != nil {
		problems["name"] = err.Error()
	} else if ok {
		in.Name = s
	}
	if s, ok, err := stringField(raw, "slug"); err != nil {
		problems["slug"] = err.Error()
	} else if ok {
		in.Slug = s
	}
	if b, ok, err := boolField(raw, "is_active"); err != nil {
		problems["is_active"] = err.Error()
	} else if ok {
		in.IsActive = b
	}
	if n, ok, err := intField(raw, "level"); err != nil {
		problems["level"] = err.Error()
	} else if ok {
		in.Level = n
	}
	if n, ok, err := intField(raw, "parent_id"); err != nil {
		problems["parent_id"] = err.Error()
	} else if ok {
		in.ParentID = &n
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.CategoryInput{}, fmt.Errorf("validate category: %w", err)
		}
		for _, fe := range verrs {
			if _, seen := problems[fe.Field()]; seen {
				continue
			}
			problems[fe.Field()] = describe(fe)
		}
	}

	if len(problems) > 0 {
		return domain.CategoryInput{}, toValidationError(problems)
	}
	return in, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func toValidationError(problems map[string]string) *domain.ValidationError {
	fields := make([]domain.FieldError, 0, len(problems))
	for field, msg := range problems {
		fields = append(fields, domain.FieldError{Field: field, Message: msg})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &domain.ValidationError{Fields: fields}
}

// lookup reports the raw value for key, treating JSON null as absent.
func lookup(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}

func stringField(raw map[string]json.RawMessage, key string) (string, bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false, fmt.Errorf("must be a string")
	}
	return s, true, nil
}

func boolField(raw map[string]json.RawMessage, key string) (bool, bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return false, false, nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false, false, fmt.Errorf("must be a boolean")
	}
	return b, true, nil
}

// intField accepts integral JSON numbers that fit a PostgreSQL INTEGER.
func intField(raw map[string]json.RawMessage, key string) (int, bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return 0, false, nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false, fmt.Errorf("must be an integer")
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("must be an integer")
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false, fmt.Errorf("out of range")
	}
	return int(f), true, nil
}
