// Package bind decodes and validates an HTML form submission into a struct.
//
//	var in ProductForm
//	errs, err := bind.Form(r, &in)
//
// Fields are matched by their `form` tag. Supported kinds: string (and named
// string types), int, float64, bool. Values that fail to parse are reported
// in errs alongside the validate rules.
package bind

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/validate"
)

// ErrTooLarge is returned when the body exceeds MAX_BODY_BYTES.
var ErrTooLarge = errors.New("bind: request body too large")

// maxBodyBytes returns the configured form size limit (default 1 MB).
// Multipart uploads are bounded separately by MAX_UPLOAD_BYTES.
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// Form parses r's form (urlencoded or multipart) into dest and validates it.
// Returns (errs, nil) when there are field errors and (nil, err) when the
// body itself could not be read.
func Form(r *http.Request, dest interface{}) (map[string]string, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	errs := Values(r.Form, dest)
	for k, v := range validate.Struct(dest) {
		if _, seen := errs[k]; !seen {
			errs[k] = v
		}
	}
	return errs, nil
}

func parse(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		limit := config.MaxUploadBytes() + maxBodyBytes()
		r.Body = http.MaxBytesReader(nil, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			return wrapParseError(err)
		}
		return nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	return wrapParseError(r.ParseForm())
}

func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrTooLarge
	}
	return fmt.Errorf("bind: parse form: %w", err)
}

// Values copies form values into the tagged fields of dest (a struct pointer)
// and returns conversion errors keyed by form name.
func Values(form map[string][]string, dest interface{}) map[string]string {
	errs := map[string]string{}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errs
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := field.Tag.Get("form")
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		vals, ok := form[name]
		if !ok || len(vals) == 0 {
			continue
		}
		raw := strings.TrimSpace(vals[0])
		fv := rv.Field(i)

		label := field.Tag.Get("label")
		if label == "" {
			label = name
		}

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Int, reflect.Int64, reflect.Int32:
			if raw == "" {
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				errs[name] = fmt.Sprintf("El campo %s debe ser un número entero.", label)
				continue
			}
			fv.SetInt(n)
		case reflect.Float64, reflect.Float32:
			if raw == "" {
				continue
			}
			f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				errs[name] = fmt.Sprintf("El campo %s debe ser un número.", label)
				continue
			}
			fv.SetFloat(f)
		case reflect.Bool:
			b, _ := strconv.ParseBool(raw)
			fv.SetBool(b || raw == "on")
		}
	}
	return errs
}
