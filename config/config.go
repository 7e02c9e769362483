package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/sirene/core/dispatch"
	"github.com/kilianp07/sirene/core/metrics"
	"github.com/kilianp07/sirene/infra/mqtt"
)

type Config struct {
	API        APIConfig        `json:"api"`
	Data       DataConfig       `json:"data"`
	Dispatch   dispatch.Config  `json:"dispatch"`
	Rebalance  RebalanceConfig  `json:"rebalance"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Monitoring MonitoringConfig `json:"monitoring"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SIRENE_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sirene_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Data.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Rebalance.SetDefaults()
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Rebalance.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
