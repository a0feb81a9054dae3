package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// parseQuery fills the struct pointed by out with url query values, matching
// fields by their json tag.
func parseQuery(req *http.Request, out any) error {
	v := reflect.ValueOf(out).Elem()
	t := v.Type()
	query := req.URL.Query()

	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		value := query.Get(name)
		if value == "" {
			continue
		}

		switch t.Field(i).Type.Kind() {
		case reflect.String:
			v.Field(i).SetString(value)

		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			v.Field(i).SetInt(n)

		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			v.Field(i).SetBool(b)

		default:
			return fmt.Errorf("unsupported query field %s", name)
		}
	}

	return nil
}
