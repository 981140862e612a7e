package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEstimateFreeTextScenario(t *testing.T) {
	est, err := NewEstimator(Options{Mode: ModeFreeText}).Estimate(SessionContext{
		RawInput: "Origem Canal Join Join Término",
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if est.Status != StatusReady {
		t.Fatalf("status = %s, esperado ready", est.Status)
	}

	rows := est.Table.Rows
	if len(rows) != 13 {
		t.Fatalf("esperava 12 linhas + TOTAL, obteve %d", len(rows))
	}
	for i, label := range DefaultVocabulary() {
		if rows[i].Component != string(label) {
			t.Errorf("linha %d = %s, esperado %s", i, rows[i].Component, label)
		}
	}

	want := map[string]struct {
		qty   int
		total string
	}{
		"Origem":  {1, "00:30"},
		"Canal":   {1, "01:00"},
		"Join":    {2, "02:00"},
		"Término": {1, "00:15"},
	}
	for _, r := range est.Table.Items() {
		w, ok := want[r.Component]
		if !ok {
			if r.Quantity != 0 || r.Total != "00:00" {
				t.Errorf("%s deveria ser zero, obteve %d / %s", r.Component, r.Quantity, r.Total)
			}
			continue
		}
		if r.Quantity != w.qty || r.Total != w.total {
			t.Errorf("%s = %d / %s, esperado %d / %s", r.Component, r.Quantity, r.Total, w.qty, w.total)
		}
	}

	total := est.Table.Total()
	if !total.IsTotal || total.Component != TotalLabel {
		t.Fatalf("última linha deveria ser TOTAL: %+v", total)
	}
	if total.Quantity != 5 || total.Total != "03:45" {
		t.Errorf("TOTAL = %d / %s, esperado 5 / 03:45", total.Quantity, total.Total)
	}
}

func TestEstimateTablePairedScenario(t *testing.T) {
	raw := "ID\tComponente\n001\tOrigem\n02/06/2025\t3s\n002\tJoin\n02/06/2025\t1s"
	est, err := NewEstimator(Options{Mode: ModeTablePaired}).Estimate(SessionContext{RawInput: raw})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(est.Records.Records) != 2 {
		t.Fatalf("esperava 2 registros, obteve %d", len(est.Records.Records))
	}
	if est.Counts["Origem"] != 1 || est.Counts["Join"] != 1 || est.Counts.Total() != 2 {
		t.Errorf("contagens inesperadas: %v", est.Counts)
	}
	if got := est.Table.Total().Total; got != "01:30" {
		t.Errorf("TOTAL = %s, esperado 01:30", got)
	}
}

func TestEstimateMissingComponentColumn(t *testing.T) {
	est, err := NewEstimator(Options{Mode: ModeTablePaired}).Estimate(SessionContext{
		RawInput: "ID\tStatus\n001\tok\nx\ty",
	})
	if !errors.Is(err, ErrMissingComponentColumn) {
		t.Fatalf("esperava ErrMissingComponentColumn, obteve %v", err)
	}
	if est != nil {
		t.Errorf("não deveria produzir resultado parcial: %+v", est)
	}
}

func TestEstimateAwaitingInput(t *testing.T) {
	for _, mode := range []Mode{ModeFreeText, ModeTablePaired, ModeTableSingle, ModeManual} {
		est, err := NewEstimator(Options{Mode: mode, WeightPolicy: WeightStrict}).Estimate(SessionContext{
			RawInput: " \n\t ",
			Weights:  WeightTable{"Origem": "lixo"},
		})
		if err != nil {
			t.Fatalf("%s: entrada vazia não é erro: %v", mode, err)
		}
		if est.Status != StatusAwaitingInput || len(est.Table.Rows) != 0 {
			t.Errorf("%s: esperava awaiting_input sem linhas, obteve %+v", mode, est)
		}
	}
}

func TestEstimateWeightPolicies(t *testing.T) {
	sess := SessionContext{
		RawInput: "Origem Join",
		Weights:  WeightTable{"Origem": "meia hora", "Join": "01:90", "Inexistente": "00:10"},
	}

	lenient, err := NewEstimator(Options{WeightPolicy: WeightLenient}).Estimate(sess)
	if err != nil {
		t.Fatalf("modo leniente não deveria falhar: %v", err)
	}
	if lenient.Weights["Origem"].Minutes != 0 {
		t.Errorf("peso inválido deveria virar zero: %+v", lenient.Weights["Origem"])
	}
	if lenient.Weights["Join"].Minutes != 150 {
		t.Errorf("01:90 deveria valer 150 minutos: %+v", lenient.Weights["Join"])
	}
	if got := lenient.Table.Total().Total; got != "02:30" {
		t.Errorf("TOTAL = %s, esperado 02:30", got)
	}
	for _, r := range lenient.Table.Items() {
		if r.Component == "Origem" && (r.Weight != "00:00" || r.WeightInput != "meia hora") {
			t.Errorf("Origem deveria exibir 00:00 e guardar o valor digitado: %+v", r)
		}
		if r.Component == "Join" && (r.Weight != "02:30" || r.WeightInput != "01:90") {
			t.Errorf("Join deveria exibir 02:30 e guardar 01:90: %+v", r)
		}
	}

	_, err = NewEstimator(Options{WeightPolicy: WeightStrict}).Estimate(sess)
	if !errors.Is(err, ErrMalformedWeight) {
		t.Fatalf("esperava ErrMalformedWeight, obteve %v", err)
	}
	var verr *WeightValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperava *WeightValidationError, obteve %T", err)
	}
	want := []WeightIssue{
		{Component: "Inexistente", Value: "00:10", Reason: reasonUnknown},
		{Component: "Origem", Value: "meia hora", Reason: reasonMalformed},
	}
	if !reflect.DeepEqual(verr.Issues, want) {
		t.Errorf("issues = %+v, esperado %+v", verr.Issues, want)
	}
}

func TestEstimatePresetDefaults(t *testing.T) {
	preset := WeightTable{"Origem": "02:00"}
	est, err := NewEstimator(Options{Defaults: preset}).Estimate(SessionContext{
		RawInput: "Origem Join",
		Weights:  WeightTable{"Join": "00:10"},
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if est.Weights["Origem"].Minutes != 120 {
		t.Errorf("Origem deveria vir do preset: %+v", est.Weights["Origem"])
	}
	if est.Weights["Join"].Minutes != 10 {
		t.Errorf("Join deveria vir do usuário: %+v", est.Weights["Join"])
	}
	if est.Weights["Canal"].Minutes != 0 || est.Weights["Canal"].Raw != "00:00" {
		t.Errorf("tipo fora do preset deveria valer 00:00: %+v", est.Weights["Canal"])
	}
	if len(est.Weights) != len(DefaultVocabulary()) {
		t.Errorf("esperava um peso por tipo, obteve %d", len(est.Weights))
	}
}

func TestEstimateManual(t *testing.T) {
	sess := SessionContext{
		Quantities: map[ComponentType]int{"Canal": 3, "Espera": -1},
	}

	est, err := NewEstimator(Options{Mode: ModeManual}).Estimate(sess)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if est.Counts["Canal"] != 3 || est.Counts["Espera"] != 0 {
		t.Errorf("contagens inesperadas: %v", est.Counts)
	}
	if got := est.Table.Total().Total; got != "03:00" {
		t.Errorf("TOTAL = %s, esperado 03:00", got)
	}

	_, err = NewEstimator(Options{Mode: ModeManual, WeightPolicy: WeightStrict}).Estimate(sess)
	if !errors.Is(err, ErrMalformedWeight) {
		t.Errorf("quantidade negativa deveria falhar no modo estrito: %v", err)
	}
}

func TestEstimateRejectsOversizedValues(t *testing.T) {
	sess := SessionContext{
		RawInput: "Join Join Join",
		Weights:  WeightTable{"Join": "76861433640456465:00"},
	}

	est, err := NewEstimator(Options{}).Estimate(sess)
	if err != nil {
		t.Fatalf("modo leniente não deveria falhar: %v", err)
	}
	for _, r := range est.Table.Rows {
		if r.TotalMinutes < 0 {
			t.Errorf("%s com total negativo: %d", r.Component, r.TotalMinutes)
		}
	}
	if est.Weights["Join"].Minutes != 0 || est.Table.Total().Total != "00:00" {
		t.Errorf("peso acima do limite deveria virar zero: %+v / %s", est.Weights["Join"], est.Table.Total().Total)
	}

	_, err = NewEstimator(Options{WeightPolicy: WeightStrict}).Estimate(sess)
	var verr *WeightValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 1 || verr.Issues[0].Reason != reasonTooLarge {
		t.Fatalf("esperava issue de limite, obteve %v", err)
	}

	manual := SessionContext{Quantities: map[ComponentType]int{"Canal": MaxQuantity + 1}}
	est, err = NewEstimator(Options{Mode: ModeManual}).Estimate(manual)
	if err != nil || est.Counts["Canal"] != 0 {
		t.Errorf("quantidade acima do limite deveria virar zero: %v / %v", est, err)
	}
	_, err = NewEstimator(Options{Mode: ModeManual, WeightPolicy: WeightStrict}).Estimate(manual)
	if !errors.Is(err, ErrMalformedWeight) {
		t.Errorf("quantidade acima do limite deveria falhar no modo estrito: %v", err)
	}

	// no limite, o total ainda é exato
	limit := SessionContext{
		Weights:    WeightTable{"Canal": FormatMinutes(MaxWeightMinutes)},
		Quantities: map[ComponentType]int{"Canal": MaxQuantity},
	}
	est, err = NewEstimator(Options{Mode: ModeManual, WeightPolicy: WeightStrict}).Estimate(limit)
	if err != nil {
		t.Fatalf("valores no limite deveriam ser aceitos: %v", err)
	}
	if got := est.Table.Total().TotalMinutes; got != MaxWeightMinutes*MaxQuantity {
		t.Errorf("TOTAL = %d, esperado %d", got, MaxWeightMinutes*MaxQuantity)
	}
}

func TestEstimateTableFromRows(t *testing.T) {
	table, _ := TableFromRows([]string{"Componente"}, [][]string{{"Canal"}, {"Canal (SMS)"}})
	est, err := NewEstimator(Options{Mode: ModeTableSingle}).Estimate(SessionContext{Table: table})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if est.Counts["Canal"] != 2 {
		t.Errorf("Canal = %d, esperado 2", est.Counts["Canal"])
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"free_text", "TABLE_PAIRED", " table_single ", "manual"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) falhou: %v", s, err)
		}
	}
	if _, err := ParseMode("planilha"); err == nil {
		t.Error("esperava erro para modo desconhecido")
	}
}

// Aggregating the same counts and weights twice yields identical tables,
// and the TOTAL row always sums the item rows.
func TestAggregateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	vocab := DefaultVocabulary()
	n := len(vocab)

	build := func(qty, minutes []int) (Counts, Weights) {
		counts := NewCounts(vocab)
		weights := make(Weights, n)
		for i, t := range vocab {
			counts[t] = qty[i]
			weights[t] = Weight{Raw: FormatMinutes(minutes[i]), Minutes: minutes[i]}
		}
		return counts, weights
	}

	properties.Property("aggregation is idempotent", prop.ForAll(
		func(qty, minutes []int) bool {
			counts, weights := build(qty, minutes)
			a := Aggregate(vocab, counts, weights)
			b := Aggregate(vocab, counts, weights)
			return reflect.DeepEqual(a, b)
		},
		gen.SliceOfN(n, gen.IntRange(0, 500)),
		gen.SliceOfN(n, gen.IntRange(0, 600)),
	))

	properties.Property("TOTAL sums items in vocabulary order", prop.ForAll(
		func(qty, minutes []int) bool {
			counts, weights := build(qty, minutes)
			table := Aggregate(vocab, counts, weights)
			if len(table.Rows) != n+1 {
				return false
			}
			sumQty, sumMin := 0, 0
			for i, r := range table.Items() {
				if r.Component != string(vocab[i]) || r.TotalMinutes != qty[i]*minutes[i] {
					return false
				}
				sumQty += r.Quantity
				sumMin += r.TotalMinutes
			}
			total := table.Total()
			return total.IsTotal && total.Quantity == sumQty && total.Total == FormatMinutes(sumMin)
		},
		gen.SliceOfN(n, gen.IntRange(0, 500)),
		gen.SliceOfN(n, gen.IntRange(0, 600)),
	))

	properties.TestingRun(t)
}
