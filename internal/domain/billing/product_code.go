package billing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const productCodeMaxLen = 20

// ProductCode deriva la clave natural del producto a partir de su descripción:
// sin tildes, en mayúsculas, espacios como "_" y máximo 20 caracteres.
func ProductCode(description string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, description)
	if err != nil {
		plain = description
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(strings.TrimSpace(plain)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case unicode.IsSpace(r) || r == '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	code := strings.TrimRight(b.String(), "_")
	if len(code) > productCodeMaxLen {
		code = strings.TrimRight(code[:productCodeMaxLen], "_")
	}
	if code == "" {
		return "ITEM"
	}
	return code
}
