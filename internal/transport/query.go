// SPDX-License-Identifier: MIT

package transport

import (
	"fmt"
	"net/url"
	"reflect"
)

// Query renders params as a query string with a leading "?", or "" when
// nothing remains. Nil values are skipped entirely; slices expand to repeated
// keys with nil elements skipped.
func Query(params map[string]any) string {
	usp := url.Values{}
	for key, value := range params {
		if value == nil {
			continue
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				el := rv.Index(i).Interface()
				if el == nil {
					continue
				}
				usp.Add(key, fmt.Sprint(el))
			}
			continue
		}
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				continue
			}
			value = rv.Elem().Interface()
		}
		usp.Set(key, fmt.Sprint(value))
	}
	if len(usp) == 0 {
		return ""
	}
	return "?" + usp.Encode()
}
