package engine

// ResultRow é uma linha do resultado
type ResultRow struct {
	Component     string `json:"component"`
	Weight        string `json:"weight"`
	WeightInput   string `json:"weight_input,omitempty"` // valor digitado, antes da conversão
	WeightMinutes int    `json:"weight_minutes"`
	Quantity      int    `json:"quantity"`
	Total         string `json:"total"`
	TotalMinutes  int    `json:"total_minutes"`
	IsTotal       bool   `json:"is_total,omitempty"`
}

// ResultTable tem uma linha por tipo, na ordem do vocabulário, e a linha
// TOTAL por último
type ResultTable struct {
	Rows []ResultRow `json:"rows"`
}

// Aggregate multiplica peso por quantidade para cada tipo e acrescenta a
// linha TOTAL
func Aggregate(vocab Vocabulary, counts Counts, weights Weights) ResultTable {
	rows := make([]ResultRow, 0, len(vocab)+1)
	sumQty, sumMinutes := 0, 0

	for _, t := range vocab {
		w := weights[t].Minutes
		qty := counts[t]
		total := w * qty

		rows = append(rows, ResultRow{
			Component:     string(t),
			Weight:        FormatMinutes(w),
			WeightInput:   weights[t].Raw,
			WeightMinutes: w,
			Quantity:      qty,
			Total:         FormatMinutes(total),
			TotalMinutes:  total,
		})
		sumQty += qty
		sumMinutes += total
	}

	rows = append(rows, ResultRow{
		Component:    TotalLabel,
		Quantity:     sumQty,
		Total:        FormatMinutes(sumMinutes),
		TotalMinutes: sumMinutes,
		IsTotal:      true,
	})

	return ResultTable{Rows: rows}
}

// Items retorna as linhas sem a linha TOTAL
func (t ResultTable) Items() []ResultRow {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[:len(t.Rows)-1]
}

// Total retorna a linha TOTAL
func (t ResultTable) Total() ResultRow {
	if len(t.Rows) == 0 {
		return ResultRow{Component: TotalLabel, Total: FormatMinutes(0), IsTotal: true}
	}
	return t.Rows[len(t.Rows)-1]
}
