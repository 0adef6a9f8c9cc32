// Package states holds the per-state configuration tables: registry
// metadata, public-records statute details, and jurisdiction-specific
// scoring overrides.
package states

import (
	_ "embed"
	"os"
	"strings"

	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed states.yaml
var embedded []byte

// Profile is one state's configuration entry.
type Profile struct {
	Code             string `json:"code" yaml:"code"`
	Name             string `json:"name" yaml:"name"`
	RegistryName     string `json:"registry_name" yaml:"registry_name"`
	RegistryURL      string `json:"registry_url" yaml:"registry_url"`
	RecordsStatute   string `json:"records_statute" yaml:"records_statute"`
	RecordsRecipient string `json:"records_recipient" yaml:"records_recipient"`
	ResponseDays     int    `json:"response_days" yaml:"response_days"`
	ElevatedYearFrom int    `json:"elevated_year_from" yaml:"elevated_year_from"`
	ElevatedYearTo   int    `json:"elevated_year_to" yaml:"elevated_year_to"`
}

type table struct {
	States []*Profile `yaml:"states"`
}

// Load parses the embedded state table.
func Load() ([]*Profile, error) {
	return parse(embedded)
}

// LoadFile parses a user-supplied state table, overriding the embedded one.
func LoadFile(path string) ([]*Profile, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading state table: %s", path)
	}
	return parse(b)
}

func parse(b []byte) ([]*Profile, error) {
	var t table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, errors.Wrap(err, "failed to parse state table")
	}
	if len(t.States) == 0 {
		return nil, errors.New("state table is empty")
	}
	return t.States, nil
}

// Get returns the profile for a state code, or an error when the state is
// not configured.
func Get(profiles []*Profile, code string) (*Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("state code is required")
	}
	for _, p := range profiles {
		if p != nil && strings.EqualFold(p.Code, code) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no profile for state: %s", code)
}

// Apply overlays the profile's scoring overrides onto an engine config.
// Zero-valued overrides leave the base config untouched.
func (p *Profile) Apply(cfg entity.Config) entity.Config {
	if p == nil {
		return cfg
	}
	if p.ElevatedYearFrom > 0 {
		cfg.Scoring.ElevatedYearFrom = p.ElevatedYearFrom
	}
	if p.ElevatedYearTo > 0 {
		cfg.Scoring.ElevatedYearTo = p.ElevatedYearTo
	}
	return cfg
}
