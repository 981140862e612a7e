package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/cleberrangel/calculadora-tempos/internal/engine"
)

// DefaultPresetName é o preset embutido com os pesos originais
const DefaultPresetName = "padrao"

// ErrPresetNotFound indica preset inexistente
var ErrPresetNotFound = errors.New("preset de pesos não encontrado")

// presetFile espelha o arquivo TOML:
//
//	[presets.rapido]
//	Origem = "00:15"
//	"Grupo de Controle" = "00:30"
type presetFile struct {
	Presets map[string]map[string]string `toml:"presets"`
}

// Presets guarda os conjuntos de pesos nomeados
type Presets struct {
	items map[string]engine.WeightTable
}

// LoadPresets lê o arquivo TOML de presets. Arquivo ausente não é erro; o
// preset "padrao" existe sempre e pode ser sobrescrito pelo arquivo.
func LoadPresets(path string) (*Presets, error) {
	p := &Presets{items: map[string]engine.WeightTable{
		DefaultPresetName: engine.DefaultWeights(),
	}}

	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("verificar arquivo de presets: %w", err)
	}

	var file presetFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decodificar arquivo de presets: %w", err)
	}

	for name, values := range file.Presets {
		table := make(engine.WeightTable, len(values))
		for label, raw := range values {
			if _, err := engine.ParseHHMM(raw); err != nil {
				return nil, fmt.Errorf("preset %q, componente %q: %w", name, label, err)
			}
			table[engine.ComponentType(label)] = raw
		}
		p.items[name] = table
	}

	return p, nil
}

// Get retorna uma cópia do preset
func (p *Presets) Get(name string) (engine.WeightTable, error) {
	table, ok := p.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return table.Clone(), nil
}

// Names lista os presets em ordem alfabética
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.items))
	for name := range p.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
