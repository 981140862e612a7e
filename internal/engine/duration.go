package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedDuration indica uma string fora do formato HH:MM
var ErrMalformedDuration = errors.New("duração inválida, esperado HH:MM")

// ParseHHMM converte "H+:MM" em minutos totais.
// Os minutos não são limitados a 59: "01:90" vale 150.
func ParseHHMM(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}

	hours, err := parseDigits(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}
	minutes, err := parseDigits(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}

	if hours > (maxInt-minutes)/60 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
	}
	return hours*60 + minutes, nil
}

const maxInt = int(^uint(0) >> 1)

// parseDigits aceita apenas dígitos ASCII, com espaços ao redor
func parseDigits(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformedDuration
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrMalformedDuration
		}
	}
	return strconv.Atoi(s)
}

// FormatMinutes formata minutos como HH:MM. As horas não têm limite superior.
func FormatMinutes(total int) string {
	if total < 0 {
		return "-" + FormatMinutes(-total)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// WeightPolicy define o tratamento de pesos inválidos
type WeightPolicy string

const (
	// WeightLenient converte pesos inválidos em zero e segue o cálculo
	WeightLenient WeightPolicy = "lenient"
	// WeightStrict rejeita o cálculo inteiro e lista cada linha inválida
	WeightStrict WeightPolicy = "strict"
)

// ParseWeightPolicy valida o nome da política
func ParseWeightPolicy(s string) (WeightPolicy, error) {
	switch p := WeightPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case WeightLenient, WeightStrict:
		return p, nil
	}
	return "", fmt.Errorf("política de pesos desconhecida: %q", s)
}
