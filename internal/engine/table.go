package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput indica que nenhum texto foi colado
	ErrEmptyInput = errors.New("nenhum dado informado")

	// ErrMissingComponentColumn indica tabela sem a coluna "Componente"
	ErrMissingComponentColumn = errors.New("a tabela precisa ter uma coluna chamada 'Componente'")
)

// Layout define quantas linhas físicas formam um registro
type Layout string

const (
	// LayoutPaired agrupa as linhas em pares (ID/Componente + demais campos)
	LayoutPaired Layout = "paired"
	// LayoutSingle trata cada linha como um registro completo
	LayoutSingle Layout = "single"
)

// Line é uma linha física não vazia já dividida em células
type Line struct {
	Number int
	Cells  []string
}

// Record é um item lógico da tabela colada
type Record struct {
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}

// ParsedTable é o resultado do parser de tabela
type ParsedTable struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Tokenize divide o texto colado em linhas não vazias e células separadas
// por TAB. Number é a posição da linha no texto original (a partir de 1).
func Tokenize(raw string) []Line {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []Line
	for i, text := range strings.Split(raw, "\n") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, Line{
			Number: i + 1,
			Cells:  strings.Split(text, "\t"),
		})
	}
	return lines
}

// ParseTable interpreta o texto colado. A primeira linha não vazia é o
// cabeçalho.
func ParseTable(raw string, layout Layout) (*ParsedTable, error) {
	lines := Tokenize(raw)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(lines[0].Cells))
	for i, name := range lines[0].Cells {
		header[i] = strings.TrimSpace(name)
	}

	switch layout {
	case LayoutPaired:
		return &ParsedTable{Columns: header, Records: pairRecords(header, lines[1:])}, nil
	case LayoutSingle:
		return &ParsedTable{Columns: header, Records: singleRecords(header, lines[1:])}, nil
	default:
		return nil, fmt.Errorf("layout de tabela desconhecido: %q", layout)
	}
}

// TableFromRows monta uma tabela de uma linha por registro a partir de
// linhas já separadas (arquivo CSV ou XLSX)
func TableFromRows(header []string, rows [][]string) (*ParsedTable, error) {
	if len(header) == 0 {
		return nil, ErrEmptyInput
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}
	lines := make([]Line, 0, len(rows))
	for i, row := range rows {
		lines = append(lines, Line{Number: i + 2, Cells: row})
	}
	return &ParsedTable{Columns: columns, Records: singleRecords(columns, lines)}, nil
}

func singleRecords(header []string, lines []Line) []Record {
	records := make([]Record, 0, len(lines))
	for _, l := range lines {
		fields := make(map[string]string, len(header))
		for idx, name := range header {
			fields[name] = cell(l.Cells, idx)
		}
		records = append(records, Record{Line: l.Number, Fields: fields})
	}
	return records
}

func pairRecords(header []string, lines []Line) []Record {
	records := make([]Record, 0, (len(lines)+1)/2)
	for i := 0; i < len(lines); i += 2 {
		first := lines[i]
		var second []string
		if i+1 < len(lines) {
			second = lines[i+1].Cells
		}

		fields := make(map[string]string, len(header))
		for idx, name := range header {
			v1 := cell(first.Cells, idx)
			v2 := cell(second, idx)

			if name == ColumnID || name == ColumnComponent {
				fields[name] = v1
				continue
			}
			if v2 != "" {
				fields[name] = v2
			} else {
				fields[name] = v1
			}
		}
		records = append(records, Record{Line: first.Number, Fields: fields})
	}
	return records
}

// cell retorna a célula idx aparada, ou "" quando a linha é curta
func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

// HasColumn indica se o cabeçalho contém a coluna
func (t *ParsedTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Require falha com ErrMissingComponentColumn quando "Componente" não está
// no cabeçalho
func (t *ParsedTable) Require() error {
	if !t.HasColumn(ColumnComponent) {
		return ErrMissingComponentColumn
	}
	return nil
}

// CountRecords conta a frequência exata de cada tipo na coluna
// "Componente". Células não vazias fora do vocabulário vão para o segundo
// retorno.
func CountRecords(t *ParsedTable, vocab Vocabulary) (Counts, map[string]int) {
	counts := NewCounts(vocab)
	unrecognized := make(map[string]int)
	for _, r := range t.Records {
		label := CleanComponentCell(r.Fields[ColumnComponent])
		if label == "" {
			continue
		}
		if vocab.Contains(ComponentType(label)) {
			counts[ComponentType(label)]++
			continue
		}
		unrecognized[label]++
	}
	return counts, unrecognized
}
