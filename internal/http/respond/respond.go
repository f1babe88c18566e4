// Package respond writes JSON bodies and the structured error envelope shared by every
// API handler.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CodeBadRequest         = "bad_request"
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodeMenuNotFound       = "menu_not_found"
	CodeExcessContribution = "excess_contribution"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// ValidationError carries field errors up to the handler.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string, details ...FieldError) {
	JSON(w, status, APIError{Code: code, Message: message, Details: details})
}

// Internal logs err and answers with a generic 500. The cause is never sent to clients.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	Error(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

func Invalid(w http.ResponseWriter, fields []FieldError) {
	Error(w, http.StatusBadRequest, CodeValidation, "request validation failed", fields...)
}

// Decode reads a JSON body into v and runs struct validation on it. Any returned error
// is either a *ValidationError or a malformed-body error; both are client errors.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}

		return fmt.Errorf("invalid request body: %w", err)
	}

	if fields := Validate(v); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

// DecodeError writes the response for an error returned by Decode.
func DecodeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		Invalid(w, verr.Fields)
		return
	}

	Error(w, http.StatusBadRequest, CodeBadRequest, err.Error())
}

// Validate runs the validate struct tags on v and returns one FieldError per failure,
// named by JSON path (people[0].name).
func Validate(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}

	return out
}

func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}

	return path
}

func message(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}

		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}

		return "must be at least " + fe.Param()
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}

		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}

		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "alphanum":
		return "must contain only letters and digits"
	case "unique":
		return "must not contain duplicate " + strings.ToLower(fe.Param()) + " values"
	default:
		return "is invalid"
	}
}
