package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AnalyticsConfig groups the tunable defaults of the analytics endpoints.
// These are presentation-side knobs; the calculators themselves take explicit
// parameters on every call.
type AnalyticsConfig struct {
	DefaultGroupBy   string `mapstructure:"defaultGroupBy"`
	DefaultPriceMode string `mapstructure:"defaultPriceMode"`
	DefaultPromoMode string `mapstructure:"defaultPromoMode"`
	DefaultTop       int    `mapstructure:"defaultTop"`

	// RefineDegenerate enables the caller-side retry that escalates the
	// contribution bucketing (year -> month -> week -> day) when base and
	// target collapse into a single period.
	RefineDegenerate bool `mapstructure:"refineDegenerate"`
}

func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		DefaultGroupBy:   "month",
		DefaultPriceMode: "paid",
		DefaultPromoMode: "include",
		DefaultTop:       10,
		RefineDegenerate: true,
	}
}

// AnalyticsConfigHolder exposes the current analytics defaults and hot-reloads
// them when the underlying file changes.
type AnalyticsConfigHolder struct {
	current atomic.Value // holds AnalyticsConfig
}

func NewAnalyticsConfigHolder() (*AnalyticsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("analytics")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/spendindex")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPENDINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAnalyticsConfig()
	v.SetDefault("analytics.defaultGroupBy", defaults.DefaultGroupBy)
	v.SetDefault("analytics.defaultPriceMode", defaults.DefaultPriceMode)
	v.SetDefault("analytics.defaultPromoMode", defaults.DefaultPromoMode)
	v.SetDefault("analytics.defaultTop", defaults.DefaultTop)
	v.SetDefault("analytics.refineDegenerate", defaults.RefineDegenerate)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	holder := &AnalyticsConfigHolder{}
	if err := holder.load(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := holder.load(v); err != nil {
			log.Printf("analytics config reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

func (h *AnalyticsConfigHolder) load(v *viper.Viper) error {
	var cfg AnalyticsConfig
	if err := v.UnmarshalKey("analytics", &cfg); err != nil {
		return err
	}
	cfg = normalizeAnalyticsConfig(cfg)
	h.current.Store(cfg)
	return nil
}

// Current returns the active analytics defaults.
func (h *AnalyticsConfigHolder) Current() AnalyticsConfig {
	if v, ok := h.current.Load().(AnalyticsConfig); ok {
		return v
	}
	return DefaultAnalyticsConfig()
}

func normalizeAnalyticsConfig(cfg AnalyticsConfig) AnalyticsConfig {
	defaults := DefaultAnalyticsConfig()
	if strings.TrimSpace(cfg.DefaultGroupBy) == "" {
		cfg.DefaultGroupBy = defaults.DefaultGroupBy
	}
	if strings.TrimSpace(cfg.DefaultPriceMode) == "" {
		cfg.DefaultPriceMode = defaults.DefaultPriceMode
	}
	if strings.TrimSpace(cfg.DefaultPromoMode) == "" {
		cfg.DefaultPromoMode = defaults.DefaultPromoMode
	}
	if cfg.DefaultTop <= 0 {
		cfg.DefaultTop = defaults.DefaultTop
	}
	return cfg
}
