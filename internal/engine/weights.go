package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedWeight indica ao menos um peso inválido no modo estrito
var ErrMalformedWeight = errors.New("pesos inválidos")

// WeightTable mapeia cada tipo para o peso digitado (HH:MM)
type WeightTable map[ComponentType]string

// Clone retorna uma cópia da tabela
func (w WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Weight é um peso já convertido
type Weight struct {
	Raw     string `json:"raw"`
	Minutes int    `json:"minutes"`
}

// Weights tem exatamente uma entrada por tipo do vocabulário
type Weights map[ComponentType]Weight

// WeightIssue descreve uma linha rejeitada
type WeightIssue struct {
	Component string `json:"component"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`
}

// WeightValidationError agrega as linhas rejeitadas no modo estrito
type WeightValidationError struct {
	Issues []WeightIssue
}

func (e *WeightValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = fmt.Sprintf("%s=%q: %s", is.Component, is.Value, is.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedWeight, strings.Join(parts, "; "))
}

func (e *WeightValidationError) Unwrap() error {
	return ErrMalformedWeight
}

// Limites de peso e quantidade. Com eles peso × quantidade somado sobre o
// vocabulário cabe em int64.
const (
	MaxWeightMinutes = 1_000_000 * 60
	MaxQuantity      = 1_000_000
)

const (
	reasonMalformed = "formato inválido, use HH:MM"
	reasonUnknown   = "componente desconhecido"
	reasonNegative  = "quantidade negativa"
	reasonTooLarge  = "valor acima do limite"
)

// ResolveWeights combina os pesos do usuário com o preset e converte cada
// valor. Tipos ausentes recebem o valor do preset e, na falta dele, 00:00.
func ResolveWeights(vocab Vocabulary, preset, overrides WeightTable, policy WeightPolicy) (Weights, error) {
	var issues []WeightIssue

	for _, label := range sortedLabels(overrides) {
		if !vocab.Contains(label) && policy == WeightStrict {
			issues = append(issues, WeightIssue{
				Component: string(label),
				Value:     overrides[label],
				Reason:    reasonUnknown,
			})
		}
	}

	resolved := make(Weights, len(vocab))
	for _, t := range vocab {
		raw, ok := overrides[t]
		if !ok {
			raw, ok = preset[t]
		}
		if !ok {
			raw = "00:00"
		}
		raw = strings.TrimSpace(raw)

		minutes, err := ParseHHMM(raw)
		reason := reasonMalformed
		if err == nil && minutes > MaxWeightMinutes {
			err = ErrMalformedWeight
			reason = reasonTooLarge
		}
		if err != nil {
			if policy == WeightStrict {
				issues = append(issues, WeightIssue{
					Component: string(t),
					Value:     raw,
					Reason:    reason,
				})
			}
			minutes = 0
		}
		resolved[t] = Weight{Raw: raw, Minutes: minutes}
	}

	if len(issues) > 0 {
		return nil, &WeightValidationError{Issues: issues}
	}
	return resolved, nil
}

// ResolveQuantities valida as quantidades informadas manualmente
func ResolveQuantities(vocab Vocabulary, quantities map[ComponentType]int, policy WeightPolicy) (Counts, error) {
	var issues []WeightIssue
	counts := NewCounts(vocab)

	for _, label := range sortedQuantityLabels(quantities) {
		n := quantities[label]
		if !vocab.Contains(label) {
			if policy == WeightStrict {
				issues = append(issues, WeightIssue{
					Component: string(label),
					Value:     fmt.Sprint(n),
					Reason:    reasonUnknown,
				})
			}
			continue
		}
		if n < 0 {
			if policy == WeightStrict {
				issues = append(issues, WeightIssue{
					Component: string(label),
					Value:     fmt.Sprint(n),
					Reason:    reasonNegative,
				})
			}
			n = 0
		}
		if n > MaxQuantity {
			if policy == WeightStrict {
				issues = append(issues, WeightIssue{
					Component: string(label),
					Value:     fmt.Sprint(n),
					Reason:    reasonTooLarge,
				})
			}
			n = 0
		}
		counts[label] = n
	}

	if len(issues) > 0 {
		return nil, &WeightValidationError{Issues: issues}
	}
	return counts, nil
}

func sortedLabels(w WeightTable) []ComponentType {
	out := make([]ComponentType, 0, len(w))
	for k := range w {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedQuantityLabels(q map[ComponentType]int) []ComponentType {
	out := make([]ComponentType, 0, len(q))
	for k := range q {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
