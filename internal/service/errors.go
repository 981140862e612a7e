package service

import (
	"errors"
	"net/http"

	"github.com/cleberrangel/calculadora-tempos/internal/config"
	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
)

// DescribeError converte erros do cálculo em status HTTP e corpo de erro.
// Compartilhado pela API REST e pela sessão websocket.
func DescribeError(err error) (int, model.ErrorResponse) {
	var wErr *engine.WeightValidationError

	switch {
	case errors.As(err, &wErr):
		return http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   "pesos inválidos",
			Details: "corrija os valores no formato HH:MM",
			Issues:  wErr.Issues,
		}
	case errors.Is(err, engine.ErrMissingComponentColumn):
		return http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   "tabela inválida",
			Details: engine.ErrMissingComponentColumn.Error(),
		}
	case errors.Is(err, config.ErrPresetNotFound):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   "preset não encontrado",
			Details: err.Error(),
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   "requisição inválida",
			Details: err.Error(),
		}
	case errors.Is(err, ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Error:   "entrada muito grande",
			Details: err.Error(),
		}
	case errors.Is(err, ErrNothingToExport):
		return http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   "nada para exportar",
			Details: "cole o texto ou a tabela antes de exportar",
		}
	case errors.Is(err, ErrExportNotFound):
		return http.StatusNotFound, model.ErrorResponse{
			Error:   "exportação não encontrada",
			Details: "o arquivo expirou, calcule novamente",
		}
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Error:   "arquivo muito grande",
			Details: "o limite máximo é 10MB",
		}
	case errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   "arquivo vazio",
			Details: "o arquivo não contém dados",
		}
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   "formato não suportado",
			Details: "apenas arquivos CSV, TSV, TXT e XLSX são aceitos",
		}
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   "arquivo inválido",
			Details: err.Error(),
		}
	default:
		return http.StatusInternalServerError, model.ErrorResponse{
			Error:   "erro interno",
			Details: err.Error(),
		}
	}
}
