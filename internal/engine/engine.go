// Package engine detecta componentes em texto ou tabela colados e calcula o
// tempo estimado por tipo. Todas as funções são puras: o mesmo
// SessionContext produz sempre o mesmo resultado.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Mode define como a entrada é interpretada
type Mode string

const (
	ModeFreeText    Mode = "free_text"
	ModeTablePaired Mode = "table_paired"
	ModeTableSingle Mode = "table_single"
	ModeManual      Mode = "manual"
)

// ParseMode valida o nome do modo
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFreeText, ModeTablePaired, ModeTableSingle, ModeManual:
		return m, nil
	}
	return "", fmt.Errorf("modo desconhecido: %q", s)
}

// Status do cálculo
type Status string

const (
	StatusReady         Status = "ready"
	StatusAwaitingInput Status = "awaiting_input"
)

// Options são as chaves de configuração do motor
type Options struct {
	Mode          Mode
	WeightPolicy  WeightPolicy
	OverlapPolicy OverlapPolicy
	Vocabulary    Vocabulary
	// Defaults é o preset de pesos aplicado aos tipos não informados
	Defaults WeightTable
}

// SessionContext carrega o estado de uma sessão: texto colado, pesos e,
// no modo manual, as quantidades
type SessionContext struct {
	RawInput   string
	Weights    WeightTable
	Quantities map[ComponentType]int
	// Table substitui RawInput quando as linhas já vêm separadas
	Table *ParsedTable
}

// Estimate é o resultado completo de um cálculo
type Estimate struct {
	Status       Status         `json:"status"`
	Table        ResultTable    `json:"table"`
	Counts       Counts         `json:"counts"`
	Weights      Weights        `json:"weights"`
	Records      *ParsedTable   `json:"records,omitempty"`
	Unrecognized map[string]int `json:"unrecognized,omitempty"`
}

// Estimator aplica Options a cada SessionContext
type Estimator struct {
	opts Options
}

// NewEstimator cria um motor. Campos vazios recebem os padrões.
func NewEstimator(opts Options) *Estimator {
	if opts.Mode == "" {
		opts.Mode = ModeFreeText
	}
	if opts.WeightPolicy == "" {
		opts.WeightPolicy = WeightLenient
	}
	if opts.OverlapPolicy == "" {
		opts.OverlapPolicy = OverlapLongestFirst
	}
	if len(opts.Vocabulary) == 0 {
		opts.Vocabulary = DefaultVocabulary()
	}
	if opts.Defaults == nil {
		opts.Defaults = DefaultWeights()
	}
	return &Estimator{opts: opts}
}

// Options retorna a configuração efetiva
func (e *Estimator) Options() Options {
	return e.opts
}

// Estimate executa o cálculo completo
func (e *Estimator) Estimate(sess SessionContext) (*Estimate, error) {
	vocab := e.opts.Vocabulary

	if e.awaitingInput(sess) {
		return &Estimate{Status: StatusAwaitingInput}, nil
	}

	weights, err := ResolveWeights(vocab, e.opts.Defaults, sess.Weights, e.opts.WeightPolicy)
	if err != nil {
		return nil, err
	}

	est := &Estimate{Status: StatusReady, Weights: weights}

	switch e.opts.Mode {
	case ModeFreeText:
		est.Counts = CountText(sess.RawInput, vocab, e.opts.OverlapPolicy)

	case ModeTablePaired, ModeTableSingle:
		table := sess.Table
		if table == nil {
			layout := LayoutPaired
			if e.opts.Mode == ModeTableSingle {
				layout = LayoutSingle
			}
			table, err = ParseTable(sess.RawInput, layout)
			if err != nil {
				if errors.Is(err, ErrEmptyInput) {
					return &Estimate{Status: StatusAwaitingInput}, nil
				}
				return nil, err
			}
		}
		if err := table.Require(); err != nil {
			return nil, err
		}
		counts, unrecognized := CountRecords(table, vocab)
		est.Counts = counts
		est.Records = table
		if len(unrecognized) > 0 {
			est.Unrecognized = unrecognized
		}

	case ModeManual:
		counts, err := ResolveQuantities(vocab, sess.Quantities, e.opts.WeightPolicy)
		if err != nil {
			return nil, err
		}
		est.Counts = counts

	default:
		return nil, fmt.Errorf("modo desconhecido: %q", e.opts.Mode)
	}

	est.Table = Aggregate(vocab, est.Counts, weights)
	return est, nil
}

func (e *Estimator) awaitingInput(sess SessionContext) bool {
	if e.opts.Mode == ModeManual {
		return len(sess.Quantities) == 0
	}
	if sess.Table != nil {
		return false
	}
	return strings.TrimSpace(sess.RawInput) == ""
}
