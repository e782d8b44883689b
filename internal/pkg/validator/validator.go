// Package validator wraps go-playground struct validation and flattens the
// result into a field -> failed-tag map that fits the error envelope's
// details payload.
package validator

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

var validate = validatorv10.New()

// Validate returns nil when v passes its validate tags, otherwise a map from
// field name to the tag that failed.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	out := make(map[string]string)
	for _, fe := range err.(validatorv10.ValidationErrors) {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
