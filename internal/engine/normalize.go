package engine

import (
	"strings"
	"unicode"
)

// StripParenthetical remove cada trecho "(...)" mais curto possível,
// incluindo os parênteses. O trecho não atravessa quebras de linha e um
// "(" sem fechamento é mantido.
func StripParenthetical(text string) string {
	return stripParenthetical(text, false)
}

// FoldCase normaliza a caixa para comparação
func FoldCase(text string) string {
	return strings.ToLower(text)
}

// CleanComponentCell normaliza a célula "Componente" de uma tabela:
// remove anotações entre parênteses junto com o espaço que as antecede
// e apara o resultado.
func CleanComponentCell(cell string) string {
	return strings.TrimSpace(stripParenthetical(cell, true))
}

func stripParenthetical(text string, eatLeadingSpace bool) string {
	if !strings.Contains(text, "(") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		open := strings.IndexByte(text[i:], '(')
		if open < 0 {
			b.WriteString(text[i:])
			break
		}
		open += i

		closeAt := -1
		for j := open + 1; j < len(text); j++ {
			if text[j] == '\n' {
				break
			}
			if text[j] == ')' {
				closeAt = j
				break
			}
		}

		if closeAt < 0 {
			// sem fechamento na mesma linha: mantém o "(" literal
			b.WriteString(text[i : open+1])
			i = open + 1
			continue
		}

		kept := text[i:open]
		if eatLeadingSpace {
			kept = strings.TrimRightFunc(kept, unicode.IsSpace)
		}
		b.WriteString(kept)
		i = closeAt + 1
	}

	return b.String()
}
