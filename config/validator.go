package config

import (
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/neurlang/letters/datasets/letters"
)

// V is the validator instance, with the alphabet tag and key names
var V *validator.Validate

func init() {
	V = validator.New()
	V.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := V.RegisterValidation("alphabet", func(fl validator.FieldLevel) bool {
		_, err := letters.ParseAlphabet(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	V.RegisterStructValidation(validateStorage, StorageConfig{})
	V.RegisterStructValidation(validatePrefixes, Config{})
}

// validatePrefixes keeps the dataset and the model apart: saving a dataset
// deletes every stale key under its prefix
func validatePrefixes(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Dataset.Prefix == "" || c.Model.Prefix == "" {
		return
	}
	if overlaps(c.Dataset.Prefix, c.Model.Prefix) {
		sl.ReportError(c.Model.Prefix, "model.prefix", "Prefix", "disjoint", "dataset.prefix")
	}
}

// overlaps reports whether one key prefix equals or contains the other
func overlaps(a, b string) bool {
	a, b = cleanPrefix(a), cleanPrefix(b)
	if a == "" || b == "" || a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func cleanPrefix(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))[1:]
}

func validateStorage(sl validator.StructLevel) {
	s := sl.Current().Interface().(StorageConfig)
	switch s.Backend {
	case "file":
		if s.Root == "" {
			sl.ReportError(s.Root, "root", "Root", "required", "")
		}
	case "minio":
		if s.MinIO.Endpoint == "" {
			sl.ReportError(s.MinIO.Endpoint, "minio.endpoint", "Endpoint", "required", "")
		}
		if s.MinIO.Bucket == "" {
			sl.ReportError(s.MinIO.Bucket, "minio.bucket", "Bucket", "required", "")
		}
	}
}

// ValidationError is one invalid key
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the config and returns ValidationErrors if invalid
func Validate(cfg *Config) error {
	if err := V.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(errs)
		}
		return err
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, e := range errs {
		out = append(out, ValidationError{
			Field:   keyName(e.Namespace()),
			Message: getErrorMessage(e),
		})
	}
	return out
}

// keyName turns Config.dataset.alphabet into dataset.alphabet
func keyName(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "alphabet":
		return "must be a non-empty set of distinct printable ASCII characters"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gtefield":
		return "must not be below " + strings.ToLower(e.Param())
	case "disjoint":
		return fmt.Sprintf("must not equal or contain %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}
