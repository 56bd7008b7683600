package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the project config file looked up in the working
// directory.
const ConfigFileName = ".csvdoc.json"

var (
	errConfigNotFound = errors.New("config file not found")
	errConfigInvalid  = errors.New("invalid config file")
	errBadDelimiter   = errors.New("delimiter must be a single character")
)

// Config holds the dialect settings. Pointer fields are unset when nil so
// that a later layer only overrides what it names.
type Config struct {
	Delimiter string `json:"delimiter,omitempty"`
	Header    *bool  `json:"header,omitempty"`
	CRLF      *bool  `json:"crlf,omitempty"`
}

// DefaultConfig returns the built-in settings: comma, header row, CRLF.
func DefaultConfig() Config {
	header, crlf := true, true
	return Config{Delimiter: ",", Header: &header, CRLF: &crlf}
}

// LoadConfig layers defaults, the config file and overrides, in that order.
// With an empty configPath the optional .csvdoc.json in workDir is used; an
// explicit configPath must exist.
func LoadConfig(workDir, configPath string, overrides Config) (Config, string, error) {
	cfg := DefaultConfig()

	path := configPath
	mustExist := path != ""
	if !mustExist {
		path = ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	fileCfg, loaded, err := loadConfigFile(path, mustExist)
	if err != nil {
		return Config{}, "", err
	}
	if !loaded {
		path = ""
	}
	cfg = mergeConfig(cfg, fileCfg)
	cfg = mergeConfig(cfg, overrides)

	if _, err := cfg.delimiter(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w: %s", errConfigNotFound, path)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Delimiter != "" {
		base.Delimiter = overlay.Delimiter
	}
	if overlay.Header != nil {
		base.Header = overlay.Header
	}
	if overlay.CRLF != nil {
		base.CRLF = overlay.CRLF
	}
	return base
}

// delimiter returns the configured delimiter as a rune. The two-character
// escape `\t` stands for a tab.
func (c Config) delimiter() (rune, error) {
	s := c.Delimiter
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", errBadDelimiter, s)
	}
	return r, nil
}

func (c Config) hasHeader() bool {
	return c.Header == nil || *c.Header
}

func (c Config) crlf() bool {
	return c.CRLF == nil || *c.CRLF
}
