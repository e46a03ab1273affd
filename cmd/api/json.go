package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Key validation errors by the JSON field name, not the Go field name.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// fieldErrors collects per-field validation messages for 422 responses.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// validationMessages flattens validator errors into a field→messages map.
func validationMessages(err error) fieldErrors {
	fe := fieldErrors{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.add("body", err.Error())
		return fe
	}

	for _, ve := range verrs {
		fe.add(ve.Field(), messageForTag(ve))
	}
	return fe
}

func messageForTag(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "this field is required"
	case "gt":
		return "must be greater than " + ve.Param()
	case "gte":
		return "must be at least " + ve.Param()
	case "max":
		return "must be at most " + ve.Param() + " characters"
	default:
		return "is invalid"
	}
}
