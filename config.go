package gridcalc

import (
	"strings"

	"github.com/spf13/viper"
)

// DateSystem selects the Excel serial-date epoch: 1900 (default; serial 0
// is 1899-12-30 and there is no 1900-02-29 serial, so serials from 61
// (1900-03-01) on agree with Excel and serials below 61 fall one day
// earlier than Excel's) or 1904 (legacy Mac Excel).
type DateSystem string

const (
	DateSystem1900 DateSystem = "1900"
	DateSystem1904 DateSystem = "1904"
)

// EngineConfig holds the tunables an Engine is constructed with (spec.md
// §6). Every field has a safe default so a zero-value EngineConfig (or one
// built by LoadConfig with no file present) still produces a working
// engine.
type EngineConfig struct {
	// RangeExpansionLimit caps how many cells a single range dependency is
	// allowed to expand to before the graph falls back to a stripe edge
	// instead of per-cell edges. 0 means "use the built-in default".
	RangeExpansionLimit int

	// EnableBlockStripes lets a large rectangular range dependency that is
	// neither tall-and-narrow nor short-and-wide compress to 256x256 block
	// stripes; when disabled, such a range compresses to one Column stripe
	// per column or one Row stripe per row instead. Whole-column and
	// whole-row ranges use Column/Row stripes either way.
	EnableBlockStripes bool

	// ArrowFastpathEnabled is carried from the host configuration surface
	// but has no effect: no Arrow-backed RangeView is wired (see DESIGN.md).
	// It exists so a deployment's config file round-trips unchanged even
	// though this build can't honor it.
	ArrowFastpathEnabled bool

	// MaxIterations bounds the Newton-Raphson solvers behind RATE and IRR
	// in the financial function family so a pathological input can't hang
	// evaluation. 0 means "use the built-in default".
	MaxIterations int

	// DateSystem selects the 1900 or 1904 serial-date epoch.
	DateSystem DateSystem
}

const (
	defaultRangeExpansionLimit = 4096
	defaultMaxIterations       = 100
)

// DefaultConfig returns the configuration a fresh Engine uses when no
// overrides are supplied.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		RangeExpansionLimit:  defaultRangeExpansionLimit,
		EnableBlockStripes:   true,
		ArrowFastpathEnabled: false,
		MaxIterations:        defaultMaxIterations,
		DateSystem:           DateSystem1900,
	}
}

// normalize fills in zero-valued fields with their defaults, so callers
// building an EngineConfig by hand don't have to repeat the defaults.
func (c EngineConfig) normalize() EngineConfig {
	if c.RangeExpansionLimit <= 0 {
		c.RangeExpansionLimit = defaultRangeExpansionLimit
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.DateSystem == "" {
		c.DateSystem = DateSystem1900
	}
	return c
}

// LoadConfig reads engine configuration from (in ascending priority order)
// built-in defaults, an optional config file at path, and GRIDCALC_*
// environment variables. path may be empty, in which case only defaults
// and environment variables apply.
func LoadConfig(path string) (EngineConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("GRIDCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("range_expansion_limit", def.RangeExpansionLimit)
	v.SetDefault("enable_block_stripes", def.EnableBlockStripes)
	v.SetDefault("arrow_fastpath_enabled", def.ArrowFastpathEnabled)
	v.SetDefault("max_iterations", def.MaxIterations)
	v.SetDefault("date_system", string(def.DateSystem))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return EngineConfig{}, WrapInfraError(err, "loading engine config")
		}
	}

	cfg := EngineConfig{
		RangeExpansionLimit:  v.GetInt("range_expansion_limit"),
		EnableBlockStripes:   v.GetBool("enable_block_stripes"),
		ArrowFastpathEnabled: v.GetBool("arrow_fastpath_enabled"),
		MaxIterations:        v.GetInt("max_iterations"),
		DateSystem:           DateSystem(v.GetString("date_system")),
	}
	return cfg.normalize(), nil
}
