// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package helper provides helper functions
package helper

import (
	"fmt"
	"log"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en_US"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
)

// MediaTypes are the advertisement media kinds accepted by the mediatype tag.
var MediaTypes = []string{"image", "video"}

// Validator is a wrapper around the validator package
type Validator struct {
	validator *validator.Validate
	transEN   ut.Translator
}

// NewValidator returns a new Validator
func NewValidator() *Validator {
	english := en_US.New()
	uni := ut.New(english, english)
	transEN, found := uni.GetTranslator("en_US")
	if !found {
		log.Fatal("translator not found")
	}
	validate := validator.New()

	// Override the default tag name by using the json tag
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := enTranslation.RegisterDefaultTranslations(validate, transEN); err != nil {
		log.Fatal(err)
	}

	registerCustomValidators(validate, transEN)

	return &Validator{
		validator: validate,
		transEN:   transEN,
	}
}

// Validate validates a struct based on the tags
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation error: %s", err.Error())
	}
	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, e.Translate(v.transEN))
	}
	return fmt.Errorf("%s", strings.Join(errs, ", "))
}

// Struct validates i and returns the raw validator errors, for callers that build
// field level details themselves.
func (v *Validator) Struct(i interface{}) error {
	return v.validator.Struct(i)
}

type customValidation struct {
	tag         string
	fn          validator.Func
	translation string
}

var customValidations = []customValidation{
	{"nocontrolchars", validateNoControlChars, "{0} cannot contain control characters"},
	{"notrimmed", validateNotTrimmed, "{0} cannot have leading or trailing whitespace"},
	{"mediatype", validateMediaType, "{0} must be one of: image, video"},
	{"mediaurl", validateMediaURL, "{0} must be an http(s) URL or a base64 data URL"},
}

// registerCustomValidators registers custom validation rules
func registerCustomValidators(validate *validator.Validate, trans ut.Translator) {
	for _, cv := range customValidations {
		tag, text := cv.tag, cv.translation
		if err := validate.RegisterValidation(tag, cv.fn); err != nil {
			log.Fatal(err)
		}
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		}); err != nil {
			log.Fatal(err)
		}
	}
}

// validateNoControlChars ensures string contains no control characters
func validateNoControlChars(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}

// validateNotTrimmed ensures string has no leading/trailing whitespace
func validateNotTrimmed(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	return str == strings.TrimSpace(str)
}

func validateMediaType(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		return true // Let required validation handle empty strings
	}
	for _, t := range MediaTypes {
		if str == t {
			return true
		}
	}
	return false
}

// validateMediaURL accepts absolute http(s) URLs and base64 data URLs of images or videos.
func validateMediaURL(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		return true
	}

	if strings.HasPrefix(str, "data:") {
		header, _, found := strings.Cut(str, ",")
		if !found {
			return false
		}
		return strings.HasSuffix(header, ";base64") &&
			(strings.HasPrefix(header, "data:image/") || strings.HasPrefix(header, "data:video/"))
	}

	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
