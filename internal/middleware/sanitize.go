package middleware

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFilename sanitizes a filename by:
// - Removing path traversal attempts
// - Removing control characters
// - Falling back to a default when nothing is left
func SanitizeFilename(filename string) string {
	// Normaliza separadores do Windows antes de pegar o nome base
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)

	filename = removeControlChars(filename)
	filename = strings.ReplaceAll(filename, "\"", "")
	filename = strings.ReplaceAll(filename, "/", "")
	for strings.Contains(filename, "..") {
		filename = strings.ReplaceAll(filename, "..", "")
	}
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." {
		return "unnamed_file"
	}

	return filename
}

// SanitizeID mantém só letras ASCII, dígitos, hífen e underscore.
// Devolve vazio quando o resultado excede maxLen.
func SanitizeID(id string, maxLen int) string {
	id = strings.TrimSpace(id)

	var result strings.Builder
	for _, r := range id {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			result.WriteRune(r)
		}
	}

	out := result.String()
	if maxLen > 0 && len(out) > maxLen {
		return ""
	}
	return out
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
