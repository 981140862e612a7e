package engine

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStripParenthetical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A (x) B (y) C", "A  B  C"},
		{"(a)(b)", ""},
		{"Origem (teste) Origem", "Origem  Origem"},
		{"sem parênteses", "sem parênteses"},
		{"aberto ( sem fechar", "aberto ( sem fechar"},
		{"fecha ) sozinho", "fecha ) sozinho"},
		{"(a (b) c)", " c)"},
		{"linha (quebra\nfim)", "linha (quebra\nfim)"},
		{"x ( y (z) w", "x  w"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripParenthetical(tt.in); got != tt.want {
			t.Errorf("StripParenthetical(%q) = %q, esperado %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanComponentCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Origem (Base principal)", "Origem"},
		{"  Join  ", "Join"},
		{"Espera (2 dias) (útil)", "Espera"},
		{"Canal(SMS)", "Canal"},
		{"(só anotação)", ""},
	}
	for _, tt := range tests {
		if got := CleanComponentCell(tt.in); got != tt.want {
			t.Errorf("CleanComponentCell(%q) = %q, esperado %q", tt.in, got, tt.want)
		}
	}
}

func TestCountOccurrences(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label ComponentType
		want  int
	}{
		{"anotação removida", StripParenthetical("Origem (teste) Origem"), "Origem", 2},
		{"sem match parcial", "Originem", "Origem", 0},
		{"prefixo de palavra", "Origems", "Origem", 0},
		{"caixa diferente", "ORIGEM origem OrIgEm", "Origem", 3},
		{"frase com espaços", "Grupo de Controle, grupo de controle.", "Grupo de Controle", 2},
		{"frase quebrada", "Grupo de\nControle", "Grupo de Controle", 0},
		{"acentos na borda", "Decisão Decisãox Decisão", "Decisão", 2},
		{"acentuado não quebra palavra", "Términoé", "Término", 0},
		{"metacaracteres literais", "a.b a+b", "a.b", 1},
		{"pontuação ao redor", "(Join);Join,Join", "Join", 3},
		{"adjacentes", "Join Join", "Join", 2},
		{"dígitos contam como palavra", "Join2 Join", "Join", 1},
		{"underscore conta como palavra", "Join_x", "Join", 0},
		{"vazio", "", "Join", 0},
		{"rótulo vazio", "Join", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountOccurrences(tt.text, tt.label); got != tt.want {
				t.Errorf("CountOccurrences(%q, %q) = %d, esperado %d", tt.text, tt.label, got, tt.want)
			}
		})
	}
}

func TestCountTextOverlapPolicies(t *testing.T) {
	vocab := DefaultVocabulary()
	text := "Espera por uma data, depois Espera e Espera por uma data"

	longest := CountText(text, vocab, OverlapLongestFirst)
	if longest["Espera por uma data"] != 2 {
		t.Errorf("Espera por uma data = %d, esperado 2", longest["Espera por uma data"])
	}
	if longest["Espera"] != 1 {
		t.Errorf("Espera (longest_first) = %d, esperado 1", longest["Espera"])
	}

	independent := CountText(text, vocab, OverlapIndependent)
	if independent["Espera por uma data"] != 2 {
		t.Errorf("Espera por uma data = %d, esperado 2", independent["Espera por uma data"])
	}
	if independent["Espera"] != 3 {
		t.Errorf("Espera (independent) = %d, esperado 3", independent["Espera"])
	}
}

func TestCountTextIgnoresParentheticals(t *testing.T) {
	counts := CountText("Origem (Join) Canal (Espera (x)) Término", DefaultVocabulary(), OverlapLongestFirst)
	want := map[ComponentType]int{"Origem": 1, "Canal": 1, "Término": 1}
	for _, label := range DefaultVocabulary() {
		if counts[label] != want[label] {
			t.Errorf("%s = %d, esperado %d", label, counts[label], want[label])
		}
	}
}

func TestCountTextAlwaysHasEveryType(t *testing.T) {
	vocab := DefaultVocabulary()
	counts := CountText("   ", vocab, OverlapLongestFirst)
	if len(counts) != len(vocab) {
		t.Fatalf("esperava %d entradas, obteve %d", len(vocab), len(counts))
	}
	for _, label := range vocab {
		if n, ok := counts[label]; !ok || n != 0 {
			t.Errorf("%s deveria existir com 0, obteve %d (%v)", label, n, ok)
		}
	}
}

// Joining k copies of a label with a separator always counts k, and a
// parenthetical wrapped around any copy removes exactly that copy.
func TestMatcherProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	labels := make([]interface{}, 0, len(defaultVocabulary))
	for _, l := range defaultVocabulary {
		labels = append(labels, l)
	}

	properties.Property("k separated copies count k", prop.ForAll(
		func(label ComponentType, k int, sep string) bool {
			parts := make([]string, k)
			for i := range parts {
				parts[i] = string(label)
			}
			return CountOccurrences(strings.Join(parts, sep), label) == k
		},
		gen.OneConstOf(labels...),
		gen.IntRange(0, 20),
		gen.OneConstOf(" ", ", ", "\n", " - ", "\t"),
	))

	properties.Property("parenthesized copies are removed", prop.ForAll(
		func(label ComponentType, k int) bool {
			text := strings.Repeat(string(label)+" ("+string(label)+") ", k)
			return CountOccurrences(StripParenthetical(text), label) == k
		},
		gen.OneConstOf(labels...),
		gen.IntRange(0, 20),
	))

	properties.Property("glued alpha suffix never matches", prop.ForAll(
		func(label ComponentType, suffix string) bool {
			return CountOccurrences(string(label)+suffix, label) == 0
		},
		gen.OneConstOf(labels...),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.Property("longest_first never exceeds independent", prop.ForAll(
		func(picks []int) bool {
			words := make([]string, len(picks))
			for i, p := range picks {
				words[i] = string(defaultVocabulary[p])
			}
			text := strings.Join(words, " ")
			a := CountText(text, defaultVocabulary, OverlapLongestFirst)
			b := CountText(text, defaultVocabulary, OverlapIndependent)
			return a.Total() == len(picks) && a.Total() <= b.Total()
		},
		gen.SliceOf(gen.IntRange(0, len(defaultVocabulary)-1)),
	))

	properties.TestingRun(t)
}
