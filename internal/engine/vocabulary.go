package engine

// ComponentType é um rótulo do vocabulário fixo de componentes
type ComponentType string

// Vocabulary é a lista ordenada de tipos conhecidos. A ordem define a
// ordem de exibição do resultado.
type Vocabulary []ComponentType

// Nomes de coluna usados pelo parser de tabela
const (
	ColumnID        = "ID"
	ColumnComponent = "Componente"
)

// TotalLabel é o rótulo da linha sintética de total
const TotalLabel = "TOTAL"

var defaultVocabulary = Vocabulary{
	"Origem",
	"Grupo de Controle",
	"Canal",
	"Decisão",
	"Espera",
	"Multiplas Rotas Paralelas",
	"Contagem Dinâmica",
	"Exportação de Público",
	"Espera por uma data",
	"Random Split",
	"Join",
	"Término",
}

var defaultWeights = WeightTable{
	"Origem":                    "00:30",
	"Grupo de Controle":         "01:00",
	"Canal":                     "01:00",
	"Decisão":                   "00:30",
	"Espera":                    "00:15",
	"Multiplas Rotas Paralelas": "01:30",
	"Contagem Dinâmica":         "01:00",
	"Exportação de Público":     "00:30",
	"Espera por uma data":       "00:15",
	"Random Split":              "01:00",
	"Join":                      "01:00",
	"Término":                   "00:15",
}

// DefaultVocabulary retorna uma cópia do vocabulário padrão de 12 tipos
func DefaultVocabulary() Vocabulary {
	v := make(Vocabulary, len(defaultVocabulary))
	copy(v, defaultVocabulary)
	return v
}

// DefaultWeights retorna uma cópia dos pesos padrão
func DefaultWeights() WeightTable {
	return defaultWeights.Clone()
}

// Contains indica se o rótulo pertence ao vocabulário
func (v Vocabulary) Contains(label ComponentType) bool {
	for _, t := range v {
		if t == label {
			return true
		}
	}
	return false
}

// Counts mapeia cada tipo para o número de ocorrências
type Counts map[ComponentType]int

// NewCounts cria contagens zeradas para todo o vocabulário
func NewCounts(vocab Vocabulary) Counts {
	c := make(Counts, len(vocab))
	for _, t := range vocab {
		c[t] = 0
	}
	return c
}

// Total soma todas as contagens
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
