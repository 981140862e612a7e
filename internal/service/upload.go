package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/xuri/excelize/v2"
)

// File upload errors
var (
	ErrInvalidFile     = errors.New("arquivo inválido ou corrompido")
	ErrFileTooLarge    = errors.New("arquivo excede limite de 10MB")
	ErrUnsupportedType = errors.New("formato de arquivo não suportado (use CSV, TSV, TXT ou XLSX)")
	ErrEmptyFile       = errors.New("arquivo está vazio")
)

const (
	// MaxFileSize is the maximum allowed file size (10MB)
	MaxFileSize = 10 * 1024 * 1024
)

// UploadService lê tabelas de arquivos enviados
type UploadService struct{}

// NewUploadService creates a new upload service
func NewUploadService() *UploadService {
	return &UploadService{}
}

// ReadTable lê o arquivo e devolve uma tabela de um registro por linha
func (s *UploadService) ReadTable(filename string, reader io.Reader, size int64) (*engine.ParsedTable, error) {
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}

	if err := s.ValidateFileFormat(filename); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var header []string
	var rows [][]string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		header, rows, err = s.readCSV(data, ',')
	case ".tsv":
		header, rows, err = s.readCSV(data, '\t')
	case ".txt":
		// texto colado salvo em arquivo: mesmo tokenizer da colagem
		table, perr := engine.ParseTable(string(data), engine.LayoutSingle)
		if errors.Is(perr, engine.ErrEmptyInput) {
			return nil, ErrEmptyFile
		}
		return table, perr
	case ".xlsx":
		header, rows, err = s.readXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	table, err := engine.TableFromRows(header, rows)
	if errors.Is(err, engine.ErrEmptyInput) {
		return nil, ErrEmptyFile
	}
	return table, err
}

// readCSV lê um arquivo delimitado
func (s *UploadService) readCSV(data []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	records = dropBlankRows(records)
	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}

	return records[0], records[1:], nil
}

// readXLSX lê a primeira planilha do arquivo Excel
func (s *UploadService) readXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}

	return rows[0], rows[1:], nil
}

// dropBlankRows remove linhas sem nenhuma célula preenchida
func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ValidateFileFormat validates that a file has the correct format
func (s *UploadService) ValidateFileFormat(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt", ".xlsx":
		return nil
	}
	return ErrUnsupportedType
}
