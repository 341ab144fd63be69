package configuration

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// gainsHookFunc returns a mapstructure decode hook that allows gains to be written
// as a list of exactly three values [p, i, d] in addition to the map format.
func gainsHookFunc() mapstructure.DecodeHookFuncType {
	gainsType := reflect.TypeOf(GainsConfig{})

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != gainsType {
			return data, nil
		}
		if f.Kind() != reflect.Slice && f.Kind() != reflect.Array {
			return data, nil
		}

		values := reflect.ValueOf(data)
		if values.Len() != 3 {
			return nil, fmt.Errorf("gains list must contain exactly 3 values (p, i, d), got %d", values.Len())
		}
		return map[string]interface{}{
			"p": values.Index(0).Interface(),
			"i": values.Index(1).Interface(),
			"d": values.Index(2).Interface(),
		}, nil
	}
}
