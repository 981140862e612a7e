package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Resultado"

	// XLSXContentType é o MIME da planilha exportada
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ResultHeaders são as colunas da planilha de resultado
var ResultHeaders = []string{"Componente", "Peso (HH:MM)", "Quantidade", "Total de Horas (HH:MM)"}

// ExcelGenerator gera arquivos Excel
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate gera a planilha "Resultado" a partir da tabela calculada
func (g *ExcelGenerator) Generate(table engine.ResultTable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := g.writeHeaders(f); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := g.writeRows(f, table.Rows); err != nil {
		return nil, fmt.Errorf("escrever dados: %w", err)
	}

	if err := g.autoFitColumns(f); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

// writeHeaders escreve os cabeçalhos no Excel
func (g *ExcelGenerator) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: border("000000"),
	})
	if err != nil {
		return err
	}

	for col, header := range ResultHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

// writeRows escreve uma linha por componente e a linha TOTAL em negrito
func (g *ExcelGenerator) writeRows(f *excelize.File, rows []engine.ResultRow) error {
	styleOdd, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F2F2F2"},
			Pattern: 1,
		},
		Border: border("D9D9D9"),
	})
	if err != nil {
		return err
	}

	styleEven, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFFFFF"},
			Pattern: 1,
		},
		Border: border("D9D9D9"),
	})
	if err != nil {
		return err
	}

	styleTotal, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"D9E1F2"},
			Pattern: 1,
		},
		Border: border("000000"),
	})
	if err != nil {
		return err
	}

	for i, row := range rows {
		excelRow := i + 2 // Linha 1 é header

		style := styleEven
		if i%2 == 1 {
			style = styleOdd
		}
		if row.IsTotal {
			style = styleTotal
		}

		values := []interface{}{row.Component, row.Weight, row.Quantity, row.Total}
		if row.IsTotal {
			values[1] = ""
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, excelRow)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				return err
			}
		}
	}

	return nil
}

// autoFitColumns ajusta a largura das colunas
func (g *ExcelGenerator) autoFitColumns(f *excelize.File) error {
	widths := []float64{30, 16, 14, 24}
	for col, width := range widths {
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}

func border(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}
