package engine

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OverlapPolicy define como rótulos que são prefixo de outros são contados
type OverlapPolicy string

const (
	// OverlapLongestFirst casa rótulos do mais longo para o mais curto e
	// descarta ocorrências sobre texto já consumido ("Espera por uma data"
	// não conta também como "Espera").
	OverlapLongestFirst OverlapPolicy = "longest_first"
	// OverlapIndependent conta cada rótulo isoladamente, com dupla contagem
	OverlapIndependent OverlapPolicy = "independent"
)

// ParseOverlapPolicy valida o nome da política
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OverlapLongestFirst, OverlapIndependent:
		return p, nil
	}
	return "", fmt.Errorf("política de sobreposição desconhecida: %q", s)
}

type span struct {
	start, end int
}

// CountOccurrences conta ocorrências da frase inteira, sem diferenciar
// maiúsculas, delimitadas por fronteira de palavra.
func CountOccurrences(text string, label ComponentType) int {
	return len(findPhrase(FoldCase(text), FoldCase(string(label))))
}

// CountText conta todos os tipos do vocabulário em texto livre
func CountText(text string, vocab Vocabulary, overlap OverlapPolicy) Counts {
	counts := NewCounts(vocab)
	normalized := FoldCase(StripParenthetical(text))
	if strings.TrimSpace(normalized) == "" {
		return counts
	}

	if overlap == OverlapIndependent {
		for _, t := range vocab {
			counts[t] = len(findPhrase(normalized, FoldCase(string(t))))
		}
		return counts
	}

	order := make(Vocabulary, len(vocab))
	copy(order, vocab)
	sort.SliceStable(order, func(i, j int) bool {
		return utf8.RuneCountInString(string(order[i])) > utf8.RuneCountInString(string(order[j]))
	})

	claimed := make([]bool, len(normalized))
	for _, t := range order {
		for _, s := range findPhrase(normalized, FoldCase(string(t))) {
			if anyClaimed(claimed, s) {
				continue
			}
			for k := s.start; k < s.end; k++ {
				claimed[k] = true
			}
			counts[t]++
		}
	}
	return counts
}

func anyClaimed(claimed []bool, s span) bool {
	for k := s.start; k < s.end; k++ {
		if claimed[k] {
			return true
		}
	}
	return false
}

// findPhrase retorna as ocorrências não sobrepostas de phrase em text,
// ambos já normalizados, com fronteira de palavra nas duas pontas.
func findPhrase(text, phrase string) []span {
	if phrase == "" || len(phrase) > len(text) {
		return nil
	}

	var spans []span
	i := 0
	for i <= len(text)-len(phrase) {
		idx := strings.Index(text[i:], phrase)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(phrase)
		if atBoundary(text, start) && atBoundary(text, end) {
			spans = append(spans, span{start: start, end: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return spans
}

// atBoundary segue a semântica de \b: um lado é caractere de palavra e o
// outro não
func atBoundary(text string, pos int) bool {
	before := false
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		before = isWordRune(r)
	}
	after := false
	if pos < len(text) {
		r, _ := utf8.DecodeRuneInString(text[pos:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
