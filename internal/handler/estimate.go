package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/middleware"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/gin-gonic/gin"
)

// EstimateHandler manipula requisições de cálculo de tempos
type EstimateHandler struct {
	estimateService *service.EstimateService
}

// NewEstimateHandler cria um novo handler de estimativas
func NewEstimateHandler(estimateService *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
	}
}

// ListComponents lista o vocabulário de componentes
// @Summary      Lista componentes
// @Description  Retorna os 12 tipos reconhecidos com o peso do preset padrão
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.Response
// @Router       /api/v1/components [get]
func (h *EstimateHandler) ListComponents(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    h.estimateService.Components(),
	})
}

// ListPresets lista os presets de pesos
// @Summary      Lista presets de pesos
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.Response
// @Router       /api/v1/presets [get]
func (h *EstimateHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    h.estimateService.Presets(),
	})
}

// CreateEstimate calcula a tabela de tempos
// @Summary      Calcula tempos
// @Description  Conta os componentes do texto ou tabela colados e multiplica pelos pesos
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.EstimateRequest true "Entrada e pesos"
// @Success      200 {object} model.EstimateResponse
// @Failure      400 {object} model.ErrorResponse
// @Failure      401 {object} model.ErrorResponse
// @Failure      413 {object} model.ErrorResponse
// @Failure      422 {object} model.ErrorResponse
// @Router       /api/v1/estimates [post]
func (h *EstimateHandler) CreateEstimate(c *gin.Context) {
	var req model.EstimateRequest
	if !h.bindRequest(c, &req) {
		return
	}

	resp, err := h.estimateService.Estimate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportEstimate calcula e devolve a planilha
// @Summary      Exporta planilha
// @Description  Mesmo corpo de /estimates; responde com o arquivo xlsx
// @Tags         estimates
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        request body model.EstimateRequest true "Entrada e pesos"
// @Success      200 {file} binary
// @Failure      400 {object} model.ErrorResponse
// @Failure      422 {object} model.ErrorResponse
// @Router       /api/v1/estimates/export [post]
func (h *EstimateHandler) ExportEstimate(c *gin.Context) {
	var req model.EstimateRequest
	if !h.bindRequest(c, &req) {
		return
	}

	result, err := h.estimateService.Export(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeWorkbook(c, result)
}

// DownloadExport devolve uma planilha já gerada
// @Summary      Baixa planilha gerada
// @Tags         estimates
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id path string true "export_id retornado por /estimates"
// @Success      200 {file} binary
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/exports/{id} [get]
func (h *EstimateHandler) DownloadExport(c *gin.Context) {
	result, err := h.estimateService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeWorkbook(c, result)
}

// bindRequest lê o corpo JSON. Corpo cortado pelo limite vira 413.
func (h *EstimateHandler) bindRequest(c *gin.Context, req *model.EstimateRequest) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.handleError(c, fmt.Errorf("%w: corpo acima de %d bytes", service.ErrInputTooLarge, tooLarge.Limit))
		return false
	}

	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   "payload inválido",
		Details: err.Error(),
	})
	return false
}

// handleError trata erros e retorna resposta apropriada
func (h *EstimateHandler) handleError(c *gin.Context, err error) {
	status, body := service.DescribeError(err)

	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Erro ao calcular estimativa")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	c.Error(err)
	c.JSON(status, body)
}

func writeWorkbook(c *gin.Context, result *service.ExportResult) {
	filename := middleware.SanitizeFilename(result.Filename)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Length", strconv.Itoa(len(result.Data)))
	if result.ID != "" {
		c.Header("X-Export-ID", result.ID)
	}

	c.Data(http.StatusOK, service.XLSXContentType, result.Data)
}
