package filmstock

import (
	"encoding/json"
	"fmt"

	"github.com/mlnoga/filmr/internal/filmerrors"
	"gopkg.in/yaml.v3"
)

// LoadPresetsJSON parses a JSON array of FilmStock serializations. Unknown
// fields are ignored (json.Unmarshal's default); missing required fields
// surface later as a ConfigurationError from Validate.
func LoadPresetsJSON(data []byte) ([]*FilmStock, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &filmerrors.ConfigurationError{Field: "preset file", Msg: err.Error()}
	}
	out := make([]*FilmStock, 0, len(raw))
	for i, r := range raw {
		s := &FilmStock{PaperGamma: 2.0, Coupling: IdentityCoupling()}
		if err := json.Unmarshal(r, s); err != nil {
			return nil, &filmerrors.ConfigurationError{Field: fmt.Sprintf("preset[%d]", i), Msg: err.Error()}
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		out = append(out, finish(*s))
	}
	return out, nil
}

// LoadPresetsYAML is the additive convenience loader for the CLI's preset
// directory, layered over the same FilmStock shape as the mandatory JSON
// format.
func LoadPresetsYAML(data []byte) ([]*FilmStock, error) {
	var raw []*FilmStock
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &filmerrors.ConfigurationError{Field: "preset file", Msg: err.Error()}
	}
	out := make([]*FilmStock, 0, len(raw))
	for i, s := range raw {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("preset[%d]: %w", i, err)
		}
		out = append(out, finish(*s))
	}
	return out, nil
}

// ByName looks up name in the built-in preset table, then reports a
// ConfigurationError naming the unknown stock.
func ByName(name string) (*FilmStock, error) {
	if s, ok := Presets()[name]; ok {
		return s, nil
	}
	return nil, &filmerrors.ConfigurationError{Field: "stock", Msg: fmt.Sprintf("unknown film stock %q", name)}
}
