package budget

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"anggaran/internal/core"
)

// policyFile is the on-disk shape. Every section is optional and only the
// keys present override DefaultPolicy.
type policyFile struct {
	Targets    map[string]int64 `yaml:"targets" toml:"targets"`
	VeryGood   map[string]int64 `yaml:"very_good" toml:"very_good"`
	GoodEnough map[string]int64 `yaml:"good_enough" toml:"good_enough"`
	Split      map[string]int64 `yaml:"split" toml:"split"`
	Floors     map[string]int64 `yaml:"floors" toml:"floors"`
}

// LoadPolicyFile reads a YAML or TOML policy and applies it over DefaultPolicy.
func LoadPolicyFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var pf policyFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return Policy{}, fmt.Errorf("parse YAML policy: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &pf); err != nil {
			return Policy{}, fmt.Errorf("parse TOML policy: %w", err)
		}
	default:
		return Policy{}, fmt.Errorf("unsupported policy file format: %s", ext)
	}

	p, err := pf.apply(DefaultPolicy())
	if err != nil {
		return Policy{}, err
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (pf policyFile) apply(base Policy) (Policy, error) {
	p := base.Clone()

	for key, v := range pf.Targets {
		c, ok := core.MatchCategory(key)
		if !ok {
			return Policy{}, fmt.Errorf("unknown category %q in targets", key)
		}
		p.Targets[c] = v
	}

	if err := applyTier(&p.VeryGood, pf.VeryGood, "very_good"); err != nil {
		return Policy{}, err
	}
	if err := applyTier(&p.GoodEnough, pf.GoodEnough, "good_enough"); err != nil {
		return Policy{}, err
	}

	for key, v := range pf.Split {
		switch key {
		case "investment":
			p.Split.Investment = v
		case "debt_payoff":
			p.Split.DebtPayoff = v
		case "misc":
			p.Split.Misc = v
		default:
			return Policy{}, fmt.Errorf("unknown split key %q", key)
		}
	}

	for key, v := range pf.Floors {
		c, ok := core.MatchCategory(key)
		if !ok {
			return Policy{}, fmt.Errorf("unknown category %q in floors", key)
		}
		found := false
		for i := range p.Cuts {
			if p.Cuts[i].Category == c {
				p.Cuts[i].Floor = v
				found = true
			}
		}
		if !found {
			return Policy{}, fmt.Errorf("category %s has no cut rule", c)
		}
	}

	return p, nil
}

func applyTier(t *Tier, values map[string]int64, section string) error {
	for key, v := range values {
		switch key {
		case "threshold":
			t.Threshold = v
		case "charity":
			t.CharityTarget = v
			t.CharityNote = "Target " + core.FormatRupiah(v)
		case "meal":
			t.MealTarget = v
			t.MealNote = "Limit " + core.FormatRupiah(v/30) + "/hari"
		default:
			return fmt.Errorf("unknown key %q in %s", key, section)
		}
	}
	return nil
}
