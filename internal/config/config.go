package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/pkg/errors"
)

// Config is everything the console needs to reach a device
type Config struct {
	Address      string
	StatusUUID   string
	TxUUID       string
	RxUUID       string
	DialTimeout  time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
	ChunkSize    int
	Logging      LoggingConfig
	Debug        DebugConfig
}

// LoggingConfig selects the log level, encoding and optional rolling file
type LoggingConfig struct {
	Level  string     `toml:"level"`
	Format string     `toml:"format"`
	File   FileConfig `toml:"file"`
}

// FileConfig configures log rotation; an empty Filename disables file output
type FileConfig struct {
	Filename   string `toml:"filename"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// DebugConfig toggles the per-link dumps
type DebugConfig struct {
	GATT     bool `toml:"gatt"`
	PDUs     bool `toml:"pdus"`
	Commands bool `toml:"commands"`
}

type fileConfig struct {
	Address      string        `toml:"address"`
	StatusUUID   string        `toml:"status_uuid"`
	TxUUID       string        `toml:"tx_uuid"`
	RxUUID       string        `toml:"rx_uuid"`
	DialTimeout  string        `toml:"dial_timeout"`
	Timeout      string        `toml:"timeout"`
	PollInterval string        `toml:"poll_interval"`
	ChunkSize    int           `toml:"chunk_size"`
	Logging      LoggingConfig `toml:"logging"`
	Debug        DebugConfig   `toml:"debug"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		DialTimeout:  10 * time.Second,
		Timeout:      util.DefaultTimeout,
		PollInterval: util.DefaultPollInterval,
		ChunkSize:    util.MaxChunkSize,
		Logging:      LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads a TOML file over the defaults
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return apply(Default(), raw, meta)
}

// Parse decodes TOML text over the defaults
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	return apply(Default(), raw, meta)
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("status_uuid") {
		cfg.StatusUUID = strings.TrimSpace(raw.StatusUUID)
	}
	if meta.IsDefined("tx_uuid") {
		cfg.TxUUID = strings.TrimSpace(raw.TxUUID)
	}
	if meta.IsDefined("rx_uuid") {
		cfg.RxUUID = strings.TrimSpace(raw.RxUUID)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dial_timeout", raw.DialTimeout, &cfg.DialTimeout},
		{"timeout", raw.Timeout, &cfg.Timeout},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", d.key)
		}
		*d.dst = v
	}
	if meta.IsDefined("chunk_size") {
		cfg.ChunkSize = raw.ChunkSize
	}
	if meta.IsDefined("logging", "level") {
		cfg.Logging.Level = raw.Logging.Level
	}
	if meta.IsDefined("logging", "format") {
		cfg.Logging.Format = raw.Logging.Format
	}
	if meta.IsDefined("logging", "file") {
		cfg.Logging.File = raw.Logging.File
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, nil
}

// Validate checks that the device can be reached with cfg
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Address) == "" {
		return errors.New("device address is required")
	}
	if len(cfg.Address) < 17 {
		return errors.Errorf("device address %q is not a MAC address", cfg.Address)
	}
	for name, uuid := range map[string]string{"status_uuid": cfg.StatusUUID, "tx_uuid": cfg.TxUUID, "rx_uuid": cfg.RxUUID} {
		if uuid == "" {
			return errors.Errorf("%s is required", name)
		}
	}
	if cfg.Timeout <= 0 || cfg.PollInterval <= 0 {
		return errors.New("timeout and poll_interval must be positive")
	}
	if cfg.PollInterval > cfg.Timeout {
		return errors.New("poll_interval must not exceed timeout")
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > util.MaxChunkSize {
		return errors.Errorf("chunk_size must be within 1..%d", util.MaxChunkSize)
	}
	return nil
}
