package config

import (
	"os"
	"reflect"

	"github.com/pkg/errors"

	"github.com/yttools/transcript-api/pkg/secrets"
)

// ExpandStruct recursively walks the fields of a struct (passed by pointer)
// and expands ${prefix:key} properties in string fields through the secrets
// registry. Nested structs, pointers, slices and maps are handled. The first
// resolution failure aborts the expansion.
func ExpandStruct(target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return errors.New("expansion target must be a non-nil pointer")
	}
	return expandValue(val.Elem())
}

func expandValue(val reflect.Value) error {
	switch val.Kind() {
	case reflect.String:
		if !val.CanSet() {
			return nil
		}
		expanded, err := expandString(val.String())
		if err != nil {
			return err
		}
		val.SetString(expanded)
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if err := expandValue(val.Field(i)); err != nil {
				return err
			}
		}
	case reflect.Ptr:
		if !val.IsNil() {
			return expandValue(val.Elem())
		}
	case reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			if err := expandValue(val.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		for _, key := range val.MapKeys() {
			elem := reflect.New(val.Type().Elem()).Elem()
			elem.Set(val.MapIndex(key))
			if err := expandValue(elem); err != nil {
				return err
			}
			val.SetMapIndex(key, elem)
		}
	default:
	}
	return nil
}

// expandString runs os.Expand with the secrets registry as the mapping
// function. os.Expand cannot propagate errors, so the first one is captured
// and returned after the walk.
func expandString(s string) (string, error) {
	var resolveErr error
	expanded := os.Expand(s, func(property string) string {
		value, err := secrets.Resolve(property)
		if err != nil && resolveErr == nil {
			resolveErr = errors.Wrapf(err, "error resolving property %q", property)
		}
		return value
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return expanded, nil
}
