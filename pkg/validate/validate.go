// Package validate provides struct-tag validation for submitted forms.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	url                 valid URL (http/https) or site-relative path
//	image=N             data:image/ URI of any length, or a url of at most N chars
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gte=N               number >= N
//	lte=N               number <= N
//	in=a,b,c            value must be one of the listed items
//
// Messages are in Spanish and name the field by its `label` tag, falling back
// to the `form` and then `json` tag.
//
//	type ProductForm struct {
//	    Name  string  `form:"name"  label:"nombre" validate:"required,max=120"`
//	    Price float64 `form:"price" label:"precio" validate:"gte=0"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of field key → error message; an empty map means no errors.
// The key is the field's form (or json) name so templates can look it up.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		key := FieldName(field)
		label := field.Tag.Get("label")
		if label == "" {
			label = key
		}
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, label, value); msg != "" {
				errs[key] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// FieldName returns the form tag, then the json tag, then the lower-cased name.
func FieldName(f reflect.StructField) string {
	for _, tagName := range []string{"form", "json"} {
		name := f.Tag.Get(tagName)
		if idx := strings.Index(name, ","); idx != -1 {
			name = name[:idx]
		}
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

// IsImageDataURI reports whether s is an inline data:image/ URI. SVG is
// excluded since it can carry script.
func IsImageDataURI(s string) bool {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return false
	}
	mime, _, ok := strings.Cut(rest, ",")
	return ok && mime != "" && !strings.HasPrefix(strings.ToLower(mime), "svg")
}

func isURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// ─── Core dispatcher ──────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("El campo %s es obligatorio.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("El campo %s debe ser un correo válido.", field)
		}
	case "url":
		if !isURL(raw) {
			return fmt.Sprintf("El campo %s debe ser una URL válida.", field)
		}
	case "image":
		if IsImageDataURI(raw) {
			return ""
		}
		if !isURL(raw) {
			return fmt.Sprintf("El campo %s debe ser una URL o una imagen en línea.", field)
		}
		if param != "" && float64(len([]rune(raw))) > mustParseFloat(param) {
			return fmt.Sprintf("El campo %s no puede superar %s caracteres.", field, param)
		}

	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("El campo %s debe ser al menos %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("El campo %s no puede ser mayor que %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("El campo %s no puede superar %s caracteres.", field, param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("El campo %s debe ser mayor o igual a %s.", field, param)
		}
	case "lte":
		if toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("El campo %s debe ser menor o igual a %s.", field, param)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("El valor de %s no es válido.", field)
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// splitRules splits the validate tag by comma while keeping in= values intact.
// e.g. "required,in=a,b,c,max=100" → ["required","in=a,b,c","max=100"]
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam && current.String() == "in=" {
				inParam = true
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch) // part of the in= list
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func looksLikeNewRule(s string) bool {
	known := []string{"required", "nullable", "email", "url", "image", "min=", "max=", "gte=", "lte=", "in="}
	for _, k := range known {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
