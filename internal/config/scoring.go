package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ScoringConfig carries the audit weight table and the analyzer
// vocabularies. Issue codes and their meaning never change at runtime;
// only weights and vocabularies are tunable.
type ScoringConfig struct {
	Penalties   PenaltyWeights `mapstructure:"penalties"`
	Bonuses     BonusWeights   `mapstructure:"bonuses"`
	Competitors []string       `mapstructure:"competitors"`
	Positive    []string       `mapstructure:"positive"`
}

type PenaltyWeights struct {
	NoDescription    int `mapstructure:"noDescription"`
	ShortDescription int `mapstructure:"shortDescription"`
	BriefDescription int `mapstructure:"briefDescription"`
	NoImages         int `mapstructure:"noImages"`
	MissingAltText   int `mapstructure:"missingAltText"`
	MissingAltCap    int `mapstructure:"missingAltCap"`
	NoSEOTitle       int `mapstructure:"noSeoTitle"`
	NoSEODescription int `mapstructure:"noSeoDescription"`
	NoProductType    int `mapstructure:"noProductType"`
	NoTags           int `mapstructure:"noTags"`
	NoMetafields     int `mapstructure:"noMetafields"`
	NoVendor         int `mapstructure:"noVendor"`
}

type BonusWeights struct {
	LongDescription int `mapstructure:"longDescription"`
	ManyImages      int `mapstructure:"manyImages"`
	ManyTags        int `mapstructure:"manyTags"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Penalties: PenaltyWeights{
			NoDescription:    40,
			ShortDescription: 25,
			BriefDescription: 10,
			NoImages:         30,
			MissingAltText:   5,
			MissingAltCap:    3,
			NoSEOTitle:       5,
			NoSEODescription: 5,
			NoProductType:    5,
			NoTags:           5,
			NoMetafields:     2,
			NoVendor:         2,
		},
		Bonuses: BonusWeights{
			LongDescription: 5,
			ManyImages:      3,
			ManyTags:        2,
		},
		Competitors: []string{
			"Amazon", "Walmart", "Target", "eBay", "Etsy",
			"Shopify", "AliExpress", "Temu", "Wayfair", "Best Buy",
		},
		Positive: []string{
			"recommend", "great option", "excellent", "top choice",
		},
	}
}

// ScoringConfigHolder hot-reloads the scoring config from scoring.yml.
type ScoringConfigHolder struct {
	current atomic.Value // holds ScoringConfig
}

// NewStaticScoringHolder wraps a fixed config, used in tests.
func NewStaticScoringHolder(cfg ScoringConfig) *ScoringConfigHolder {
	holder := &ScoringConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewScoringConfigHolder() (*ScoringConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scoring")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/surfaced/config")
	v.AddConfigPath("/etc/surfaced")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SURFACED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultScoringConfig()
	v.SetDefault("scoring.penalties", defaults.Penalties)
	v.SetDefault("scoring.bonuses", defaults.Bonuses)
	v.SetDefault("scoring.competitors", defaults.Competitors)
	v.SetDefault("scoring.positive", defaults.Positive)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ScoringConfig
	if err := v.UnmarshalKey("scoring", &cfg); err != nil {
		return nil, err
	}
	if err := validateScoringConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ScoringConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ScoringConfig
		if err := v.UnmarshalKey("scoring", &updated); err != nil {
			log.Printf("[scoring-config] reload failed: %v", err)
			return
		}
		if err := validateScoringConfig(updated); err != nil {
			log.Printf("[scoring-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[scoring-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ScoringConfigHolder) Get() ScoringConfig {
	return h.current.Load().(ScoringConfig)
}

func validateScoringConfig(cfg ScoringConfig) error {
	if cfg.Penalties.NoDescription <= 0 || cfg.Penalties.NoImages <= 0 {
		return errors.New("scoring.penalties must be positive")
	}
	if cfg.Penalties.MissingAltCap <= 0 {
		return errors.New("scoring.penalties.missingAltCap must be positive")
	}
	if len(cfg.Positive) == 0 {
		return errors.New("scoring.positive cannot be empty")
	}
	return nil
}
