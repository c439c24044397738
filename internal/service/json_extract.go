package service

import "strings"

// extractFirstJSONObject escanea la salida cruda del modelo y devuelve el
// primer objeto JSON balanceado, tipicamente el payload de slides envuelto
// en prosa o restos de fence. Devuelve cadena vacia si no hay un objeto
// completo.
func extractFirstJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return ""
	}

	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := start; i < len(raw); i++ {
		c := raw[i]

		// Dentro de un literal de string las llaves no cuentan.
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	// Objeto sin cerrar: respuesta truncada del modelo.
	return ""
}
