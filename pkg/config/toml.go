package config

import "github.com/pelletier/go-toml/v2"

// tomlParser adapts go-toml to koanf's Parser interface
type tomlParser struct{}

// TOML returns a koanf parser for TOML documents
func TOML() *tomlParser {
	return &tomlParser{}
}

func (p *tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *tomlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return toml.Marshal(o)
}
