package model

import "github.com/cleberrangel/calculadora-tempos/internal/engine"

// EstimateRequest representa o payload de entrada para o cálculo de tempos
type EstimateRequest struct {
	Text          string            `json:"text"`
	Mode          string            `json:"mode,omitempty"`   // free_text, table_paired, table_single, manual
	Preset        string            `json:"preset,omitempty"` // vazio = DEFAULT_PRESET
	Weights       map[string]string `json:"weights,omitempty"`
	Grid          []GridRow         `json:"grid,omitempty"`
	WeightPolicy  string            `json:"weight_policy,omitempty"`
	OverlapPolicy string            `json:"overlap_policy,omitempty"`
}

// GridRow é uma linha da grade editável (Componente / Peso / Quantidade)
type GridRow struct {
	Component string `json:"componente" binding:"required"`
	Weight    string `json:"peso,omitempty"`
	Quantity  *int   `json:"quantidade,omitempty"`
}

// Merge aplica os campos preenchidos de update sobre r. Usado pela sessão
// websocket, onde cada mensagem pode trazer só o texto ou só os pesos.
func (r EstimateRequest) Merge(update EstimateRequest) EstimateRequest {
	out := r
	if update.Text != "" {
		out.Text = update.Text
	}
	if update.Mode != "" {
		out.Mode = update.Mode
	}
	if update.Preset != "" {
		out.Preset = update.Preset
	}
	if update.Weights != nil {
		out.Weights = update.Weights
	}
	if update.Grid != nil {
		out.Grid = update.Grid
	}
	if update.WeightPolicy != "" {
		out.WeightPolicy = update.WeightPolicy
	}
	if update.OverlapPolicy != "" {
		out.OverlapPolicy = update.OverlapPolicy
	}
	return out
}

// EstimateResponse é o resultado do cálculo devolvido ao cliente
type EstimateResponse struct {
	Status       engine.Status       `json:"status"`
	Mode         engine.Mode         `json:"mode"`
	Preset       string              `json:"preset"`
	Rows         []engine.ResultRow  `json:"rows,omitempty"`
	Total        *engine.ResultRow   `json:"total,omitempty"`
	Counts       engine.Counts       `json:"counts,omitempty"`
	Records      *engine.ParsedTable `json:"records,omitempty"`
	Unrecognized map[string]int      `json:"unrecognized,omitempty"`
	ExportID     string              `json:"export_id,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// ComponentInfo descreve um tipo do vocabulário
type ComponentInfo struct {
	Component string `json:"componente"`
	Weight    string `json:"peso"`
}

// PresetInfo descreve um preset de pesos
type PresetInfo struct {
	Name    string            `json:"name"`
	Default bool              `json:"default"`
	Weights map[string]string `json:"weights"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Details string               `json:"details,omitempty"`
	Issues  []engine.WeightIssue `json:"issues,omitempty"`
}
