// Package env loads configuration structs from environment variables using
// `env:"VAR_NAME"` struct tags. Defaults are applied by the consuming code;
// unset variables leave fields at their zero value.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// Validator is implemented by config structs that check themselves after
// loading.
type Validator interface {
	Validate() error
}

// ErrInvalidValue reports an environment variable whose value could not be
// parsed into its target field.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// Load populates a pointer-to-struct from the environment. Nested structs
// are loaded recursively; any struct implementing Validator is validated
// after its fields are set.
//
// Supported field types: string, bool, the signed integer kinds, and
// time.Duration (Go duration strings such as "30s").
func Load(v any) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("env.Load: want pointer to struct, got %T", v)
	}

	if err := loadStruct(ptr.Elem()); err != nil {
		return err
	}

	if validator, ok := v.(Validator); ok {
		return validator.Validate()
	}
	return nil
}

func loadStruct(val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		structField := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(field); err != nil {
				return err
			}
			if field.CanAddr() {
				if validator, ok := field.Addr().Interface().(Validator); ok {
					if err := validator.Validate(); err != nil {
						return err
					}
				}
			}
			continue
		}

		key := structField.Tag.Get("env")
		if key == "" {
			continue
		}

		raw, exists := os.LookupEnv(key)
		if !exists {
			continue
		}

		if err := setField(field, raw); err != nil {
			return ErrInvalidValue{
				Field:  structField.Name,
				EnvVar: key,
				Value:  raw,
				Err:    err,
			}
		}
	}

	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
		return nil

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
}
