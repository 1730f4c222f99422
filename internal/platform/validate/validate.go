// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate turns 'validate' struct tags on request payloads into a
// single [apperr.AppError] carrying per-field details.
//
// # Architecture
//
// Rules are declared next to the payload fields (go-playground/validator tags)
// and checked in handlers before anything reaches the service layer. Field
// names in the details use the JSON names the client sent.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

	structValidator = newStructValidator()
)

// newStructValidator builds the shared validator. It is safe for concurrent use
// and caches struct metadata, so one instance serves the whole process.
func newStructValidator() *validator.Validate {
	instance := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("email") instead of Go names ("Email").
	instance.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})

	return instance
}

// Struct validates input against its 'validate' tags.
//
// It returns nil when every rule passes, or a VALIDATION_ERROR [apperr.AppError]
// listing one [apperr.FieldError] per failing field.
func Struct(input any) error {
	err := structValidator.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		// InvalidValidationError: a programming mistake (nil or non-struct input).
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}

	details := make([]apperr.FieldError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, apperr.FieldError{
			Field:   fieldError.Field(),
			Message: describe(fieldError),
		})
	}

	return apperr.ValidationError("Validation failed", details...)
}

// describe maps a failed rule to a client-facing message.
func describe(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fieldError.Param())
	case "min":
		return fmt.Sprintf("Minimum %s characters", fieldError.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters", fieldError.Param())
	case "alphanum":
		return "Must contain only letters and digits"
	default:
		return fmt.Sprintf("Failed the '%s' rule", fieldError.Tag())
	}
}
