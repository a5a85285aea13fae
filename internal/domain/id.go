package domain

import "strings"

// SanitizeID normaliza un identificador externo antes de usarlo como clave
// de almacenamiento: solo alfanuméricos, '-' y '_'. Devuelve "" si no queda nada.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, c := range strings.TrimSpace(id) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		}
	}
	return b.String()
}
