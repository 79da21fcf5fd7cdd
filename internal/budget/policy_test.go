package budget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anggaran/internal/core"
)

func TestDefaultPolicy_Valid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, int64(defaultTargetSum), p.TotalTargets())
	assert.Equal(t, core.CategoryTransport, p.Absorber)
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr string
	}{
		{
			name:    "negative target",
			mutate:  func(p *Policy) { p.Targets[core.CategoryMeal] = -1 },
			wantErr: "target for makan must not be negative",
		},
		{
			name:    "unknown target category",
			mutate:  func(p *Policy) { p.Targets["kopi"] = 10 },
			wantErr: `unknown category "kopi" in targets`,
		},
		{
			name:    "thresholds inverted",
			mutate:  func(p *Policy) { p.VeryGood.Threshold = 100000 },
			wantErr: "very good threshold must not be below good enough threshold",
		},
		{
			name:    "boost above threshold",
			mutate:  func(p *Policy) { p.GoodEnough.MealTarget = 3000000 },
			wantErr: "good enough tier boosts exceed its threshold",
		},
		{
			name:    "boost lowers target",
			mutate:  func(p *Policy) { p.VeryGood.CharityTarget = 10 },
			wantErr: "very good tier must not lower charity or meal targets",
		},
		{
			name:    "split does not sum",
			mutate:  func(p *Policy) { p.Split = SurplusSplit{Investment: 50, DebtPayoff: 30, Misc: 30} },
			wantErr: "surplus split must sum to 100, got 110",
		},
		{
			name: "duplicate cut",
			mutate: func(p *Policy) {
				p.Cuts = append(p.Cuts, CutRule{Category: core.CategoryMisc})
			},
			wantErr: "category lainnya appears twice in cut order",
		},
		{
			name:    "absorber in cuts",
			mutate:  func(p *Policy) { p.Absorber = core.CategoryMeal },
			wantErr: "absorber makan must not also be in cut order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "policy validation failed")
		})
	}
}

func TestPolicy_Clone(t *testing.T) {
	p := DefaultPolicy()
	c := p.Clone()
	c.Targets[core.CategoryMeal] = 1
	c.Cuts[0].Floor = 99

	assert.Equal(t, int64(1650000), p.Targets[core.CategoryMeal])
	assert.Equal(t, int64(0), p.Cuts[0].Floor)
}

func writePolicy(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicyFile_YAML(t *testing.T) {
	path := writePolicy(t, "policy.yaml", `
targets:
  makan: 1800000
  Internet: 150000
good_enough:
  meal: 2100000
split:
  investment: 50
  debt_payoff: 20
  misc: 30
floors:
  saku_sekolah: 100000
`)

	p, err := LoadPolicyFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1800000), p.Targets[core.CategoryMeal])
	assert.Equal(t, int64(150000), p.Targets[core.CategoryInternet])
	assert.Equal(t, int64(2100000), p.GoodEnough.MealTarget)
	assert.Equal(t, "Limit Rp 70.000/hari", p.GoodEnough.MealNote)
	assert.Equal(t, SurplusSplit{Investment: 50, DebtPayoff: 20, Misc: 30}, p.Split)
	assert.Equal(t, int64(100000), p.Cuts[3].Floor)
	// Untouched values keep their defaults.
	assert.Equal(t, int64(150000), p.Targets[core.CategoryElectricity])
	assert.Equal(t, "Cap Max 100rb", p.VeryGood.CharityNote)
}

func TestLoadPolicyFile_TOML(t *testing.T) {
	path := writePolicy(t, "policy.toml", `
[targets]
listrik = 200000

[very_good]
threshold = 2500000
charity = 150000
`)

	p, err := LoadPolicyFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(200000), p.Targets[core.CategoryElectricity])
	assert.Equal(t, int64(2500000), p.VeryGood.Threshold)
	assert.Equal(t, int64(150000), p.VeryGood.CharityTarget)
	assert.Equal(t, "Target Rp 150.000", p.VeryGood.CharityNote)
}

func TestLoadPolicyFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{name: "unknown category", file: "p.yaml", content: "targets:\n  kopi: 1\n", wantErr: `unknown category "kopi" in targets`},
		{name: "unknown split key", file: "p.yaml", content: "split:\n  savings: 10\n", wantErr: `unknown split key "savings"`},
		{name: "floor without cut", file: "p.yaml", content: "floors:\n  listrik: 10\n", wantErr: "category listrik has no cut rule"},
		{name: "invalid result", file: "p.yaml", content: "split:\n  misc: 90\n", wantErr: "surplus split must sum to 100"},
		{name: "bad extension", file: "p.json", content: "{}", wantErr: "unsupported policy file format: .json"},
		{name: "bad yaml", file: "p.yml", content: "targets: [", wantErr: "parse YAML policy"},
		{name: "bad toml", file: "p.toml", content: "[targets\n", wantErr: "parse TOML policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPolicyFile(writePolicy(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPolicyFile_Missing(t *testing.T) {
	_, err := LoadPolicyFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read policy file")
}
