package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleberrangel/calculadora-tempos/internal/cache"
	"github.com/cleberrangel/calculadora-tempos/internal/config"
	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/google/uuid"
)

// Erros do serviço de estimativa
var (
	ErrInvalidRequest  = errors.New("requisição inválida")
	ErrInputTooLarge   = errors.New("entrada excede o tamanho máximo permitido")
	ErrExportNotFound  = errors.New("exportação não encontrada ou expirada")
	ErrNothingToExport = errors.New("nada para exportar: informe o texto ou a tabela")
)

const awaitingMessage = "Cole o texto ou a tabela para calcular"

// EstimateService orquestra o cálculo, a exportação e o armazenamento das planilhas
type EstimateService struct {
	cfg            *config.Config
	presets        *config.Presets
	exports        *cache.Cache[[]byte]
	excelGenerator *ExcelGenerator
}

// NewEstimateService cria um novo serviço de estimativa
func NewEstimateService(cfg *config.Config, presets *config.Presets, exports *cache.Cache[[]byte]) *EstimateService {
	return &EstimateService{
		cfg:            cfg,
		presets:        presets,
		exports:        exports,
		excelGenerator: NewExcelGenerator(),
	}
}

// ExportResult contém a planilha gerada
type ExportResult struct {
	ID       string
	Filename string
	Data     []byte
}

// Filename retorna o nome do arquivo exportado
func (s *EstimateService) Filename() string {
	return s.cfg.ExportFilename
}

// ExportStore expõe o armazenamento de planilhas para health check
func (s *EstimateService) ExportStore() *cache.Cache[[]byte] {
	return s.exports
}

// Components lista o vocabulário com os pesos do preset padrão
func (s *EstimateService) Components() []model.ComponentInfo {
	defaults, err := s.presets.Get(s.cfg.DefaultPreset)
	if err != nil {
		defaults = engine.DefaultWeights()
	}

	vocab := engine.DefaultVocabulary()
	out := make([]model.ComponentInfo, 0, len(vocab))
	for _, label := range vocab {
		out = append(out, model.ComponentInfo{
			Component: string(label),
			Weight:    displayWeight(defaults[label]),
		})
	}
	return out
}

// Presets lista os presets de pesos disponíveis
func (s *EstimateService) Presets() []model.PresetInfo {
	names := s.presets.Names()
	out := make([]model.PresetInfo, 0, len(names))
	for _, name := range names {
		table, err := s.presets.Get(name)
		if err != nil {
			continue
		}
		weights := make(map[string]string, len(table))
		for label, raw := range table {
			weights[string(label)] = raw
		}
		out = append(out, model.PresetInfo{
			Name:    name,
			Default: name == s.cfg.DefaultPreset,
			Weights: weights,
		})
	}
	return out
}

// Estimate calcula a tabela de resultado. Quando pronta, a planilha é
// gerada e guardada no cache de exportações.
func (s *EstimateService) Estimate(ctx context.Context, req model.EstimateRequest) (*model.EstimateResponse, error) {
	return s.run(ctx, req, nil, true)
}

// EstimateTable calcula a partir de uma tabela já separada em colunas
// (arquivo enviado). O modo é sempre table_single.
func (s *EstimateService) EstimateTable(ctx context.Context, req model.EstimateRequest, table *engine.ParsedTable) (*model.EstimateResponse, error) {
	req.Mode = string(engine.ModeTableSingle)
	return s.run(ctx, req, table, true)
}

// Preview calcula sem gerar planilha. Usado pela sessão websocket.
func (s *EstimateService) Preview(ctx context.Context, req model.EstimateRequest) (*model.EstimateResponse, error) {
	return s.run(ctx, req, nil, false)
}

// Export calcula e devolve a planilha diretamente
func (s *EstimateService) Export(ctx context.Context, req model.EstimateRequest) (*ExportResult, error) {
	resp, err := s.run(ctx, req, nil, true)
	if err != nil {
		return nil, err
	}
	if resp.Status != engine.StatusReady {
		return nil, ErrNothingToExport
	}
	result, err := s.Download(ctx, resp.ExportID)
	if err != nil {
		return nil, err
	}

	// a planilha vai direto no corpo, não precisa ficar no cache
	s.exports.Delete(resp.ExportID)
	result.ID = ""
	return result, nil
}

// Download busca uma planilha exportada pelo ID
func (s *EstimateService) Download(ctx context.Context, id string) (*ExportResult, error) {
	data, ok := s.exports.Get(id)
	metrics.Get().IncrementExportDownload(ok)
	if !ok {
		logger.Get(ctx).Debug().Str("export_id", id).Msg("Exportação não encontrada")
		return nil, ErrExportNotFound
	}
	return &ExportResult{ID: id, Filename: s.cfg.ExportFilename, Data: data}, nil
}

func (s *EstimateService) run(ctx context.Context, req model.EstimateRequest, table *engine.ParsedTable, export bool) (*model.EstimateResponse, error) {
	log := logger.Get(ctx)

	if s.cfg.MaxInputBytes > 0 && int64(len(req.Text)) > s.cfg.MaxInputBytes {
		return nil, ErrInputTooLarge
	}

	opts, sess, preset, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	sess.Table = table

	est, err := engine.NewEstimator(opts).Estimate(sess)
	if err != nil {
		var wErr *engine.WeightValidationError
		switch {
		case errors.As(err, &wErr):
			metrics.Get().IncrementWeightRejection()
			log.Info().Int("issues", len(wErr.Issues)).Msg("Pesos rejeitados")
		case errors.Is(err, engine.ErrMissingComponentColumn):
			metrics.Get().IncrementTableRejection()
			log.Info().Str("mode", string(opts.Mode)).Msg("Tabela sem coluna Componente")
		}
		return nil, err
	}

	resp := &model.EstimateResponse{
		Status: est.Status,
		Mode:   opts.Mode,
		Preset: preset,
	}

	if est.Status == engine.StatusAwaitingInput {
		metrics.Get().IncrementAwaiting()
		resp.Message = awaitingMessage
		return resp, nil
	}

	total := est.Table.Total()
	resp.Rows = est.Table.Items()
	resp.Total = &total
	resp.Counts = est.Counts
	resp.Records = est.Records
	resp.Unrecognized = est.Unrecognized

	metrics.Get().RecordEstimate(total.Quantity, total.TotalMinutes)

	log.Info().
		Str("mode", string(opts.Mode)).
		Str("preset", preset).
		Int("components", total.Quantity).
		Str("total", total.Total).
		Int("unrecognized", len(est.Unrecognized)).
		Msg("Estimativa calculada")

	if !export {
		return resp, nil
	}

	buf, err := s.excelGenerator.Generate(est.Table)
	if err != nil {
		return nil, fmt.Errorf("gerar excel: %w", err)
	}

	id := uuid.New().String()
	s.exports.Set(id, buf.Bytes())
	metrics.Get().IncrementExportGenerated(buf.Len())
	resp.ExportID = id

	log.Debug().Str("export_id", id).Int("bytes", buf.Len()).Msg("Planilha armazenada")

	return resp, nil
}

// prepare converte a requisição em Options e SessionContext
func (s *EstimateService) prepare(req model.EstimateRequest) (engine.Options, engine.SessionContext, string, error) {
	var opts engine.Options
	var sess engine.SessionContext

	mode := engine.ModeFreeText
	switch {
	case strings.TrimSpace(req.Mode) != "":
		m, err := engine.ParseMode(req.Mode)
		if err != nil {
			return opts, sess, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		mode = m
	case len(req.Grid) > 0 && strings.TrimSpace(req.Text) == "":
		mode = engine.ModeManual
	}

	weightPolicy := s.cfg.WeightPolicy
	if req.WeightPolicy != "" {
		p, err := engine.ParseWeightPolicy(req.WeightPolicy)
		if err != nil {
			return opts, sess, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		weightPolicy = p
	}

	overlap := s.cfg.OverlapPolicy
	if req.OverlapPolicy != "" {
		p, err := engine.ParseOverlapPolicy(req.OverlapPolicy)
		if err != nil {
			return opts, sess, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		overlap = p
	}

	preset := strings.TrimSpace(req.Preset)
	if preset == "" {
		preset = s.cfg.DefaultPreset
	}
	defaults, err := s.presets.Get(preset)
	if err != nil {
		return opts, sess, "", err
	}

	overrides := engine.WeightTable{}
	var quantities map[engine.ComponentType]int
	for _, row := range req.Grid {
		label := engine.ComponentType(strings.TrimSpace(row.Component))
		if label == "" {
			continue
		}
		if strings.TrimSpace(row.Weight) != "" {
			overrides[label] = row.Weight
		}
		if row.Quantity != nil {
			if quantities == nil {
				quantities = make(map[engine.ComponentType]int)
			}
			quantities[label] = *row.Quantity
		}
	}
	for label, raw := range req.Weights {
		overrides[engine.ComponentType(strings.TrimSpace(label))] = raw
	}

	opts = engine.Options{
		Mode:          mode,
		WeightPolicy:  weightPolicy,
		OverlapPolicy: overlap,
		Defaults:      defaults,
	}
	sess = engine.SessionContext{
		RawInput:   req.Text,
		Weights:    overrides,
		Quantities: quantities,
	}
	return opts, sess, preset, nil
}

func displayWeight(raw string) string {
	minutes, err := engine.ParseHHMM(raw)
	if err != nil {
		return "00:00"
	}
	return engine.FormatMinutes(minutes)
}
