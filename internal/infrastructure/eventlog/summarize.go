package eventlog

import (
	"fmt"
	"reflect"
	"unicode/utf8"
)

const (
	maxListItems = 30
	maxTextRunes = 2000
)

// Summarize acota el tamaño de la carga auxiliar: listas largas se reemplazan por LIST(n),
// textos largos se truncan y los mapas anidados se resumen de forma recursiva.
func Summarize(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = summarizeValue(v)
	}
	return out
}

func summarizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return truncate(t)
	case []byte:
		return fmt.Sprintf("BYTES(%d)", len(t))
	case map[string]any:
		return Summarize(t)
	case error:
		return truncate(t.Error())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() > maxListItems {
			return fmt.Sprintf("LIST(%d)", rv.Len())
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = summarizeValue(rv.Index(i).Interface())
		}
		return items
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprintf("MAP(%d)", rv.Len())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = summarizeValue(iter.Value().Interface())
		}
		return m
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v
	}
	if s, ok := v.(fmt.Stringer); ok {
		return truncate(s.String())
	}
	return truncate(fmt.Sprintf("%v", v))
}

func truncate(s string) string {
	n := utf8.RuneCountInString(s)
	if n <= maxTextRunes {
		return s
	}
	r := []rune(s)
	return fmt.Sprintf("%s…(+%d)", string(r[:maxTextRunes]), n-maxTextRunes)
}
