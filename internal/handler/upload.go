package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/middleware"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/gin-gonic/gin"
)

// UploadHandler handles file upload requests
type UploadHandler struct {
	uploadService   *service.UploadService
	estimateService *service.EstimateService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *service.UploadService, estimateService *service.EstimateService) *UploadHandler {
	return &UploadHandler{
		uploadService:   uploadService,
		estimateService: estimateService,
	}
}

// UploadTable calcula a partir de um arquivo com uma linha por componente
// @Summary      Calcula a partir de arquivo
// @Description  Lê CSV, TSV, TXT ou XLSX com coluna Componente e calcula os tempos
// @Tags         estimates
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Arquivo com a tabela"
// @Param        preset formData string false "Preset de pesos"
// @Param        weight_policy formData string false "lenient ou strict"
// @Param        weights formData string false "Objeto JSON Componente -> HH:MM"
// @Success      200 {object} model.EstimateResponse
// @Failure      400 {object} model.ErrorResponse
// @Failure      413 {object} model.ErrorResponse
// @Failure      422 {object} model.ErrorResponse
// @Router       /api/v1/estimates/upload [post]
func (h *UploadHandler) UploadTable(c *gin.Context) {
	log := logger.FromGin(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("Erro ao obter arquivo do formulário")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "arquivo não encontrado no formulário",
			Details: "use o campo 'file' para enviar o arquivo",
		})
		return
	}
	defer file.Close()

	filename := middleware.SanitizeFilename(header.Filename)

	req := model.EstimateRequest{
		Preset:       c.PostForm("preset"),
		WeightPolicy: c.PostForm("weight_policy"),
	}
	if raw := c.PostForm("weights"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Weights); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Success: false,
				Error:   "campo weights inválido",
				Details: "envie um objeto JSON, ex.: {\"Origem\":\"00:45\"}",
			})
			return
		}
	}

	log.Info().
		Str("filename", filename).
		Int64("size", header.Size).
		Msg("Processando upload de arquivo")

	table, err := h.uploadService.ReadTable(filename, file, header.Size)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Erro ao ler arquivo")
		status, body := service.DescribeError(err)
		c.JSON(status, body)
		return
	}

	metrics.Get().IncrementFileUpload(header.Size)

	resp, err := h.estimateService.EstimateTable(c.Request.Context(), req, table)
	if err != nil {
		status, body := service.DescribeError(err)
		c.JSON(status, body)
		return
	}

	log.Info().
		Str("filename", filename).
		Int("records", len(table.Records)).
		Msg("Arquivo processado com sucesso")

	c.JSON(http.StatusOK, resp)
}
