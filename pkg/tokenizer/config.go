package tokenizer

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ConfigPathEnv names the environment variable holding the path of the
// YAML configuration file when the host passes no create argument.
const ConfigPathEnv = "KAGOME_FTS5_CONFIG"

// ErrConfig is returned for an invalid configuration: bad path, bad
// contents, or an unknown variant name. It is always raised when the
// tokenizer is created, never deferred to tokenization.
var ErrConfig = errors.New("invalid tokenizer configuration")

// Config controls dictionary selection, normalization, and token
// expansion. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Dictionary selects the analyzer dictionary ("ipa").
	Dictionary string `mapstructure:"dictionary"`
	// Mode selects segmentation: "normal", "search" or "extended".
	Mode string `mapstructure:"mode"`
	// Normalize selects input canonicalization: "none", "nfkc" or
	// "nfkc_casefold".
	Normalize string `mapstructure:"normalize"`
	// StopTags lists part-of-speech tags whose tokens are dropped.
	StopTags []string `mapstructure:"stop_tags"`
	// UserDictionary is an optional path to a synonym dictionary file.
	UserDictionary string `mapstructure:"user_dictionary"`
	// EmitReadings emits each token's katakana reading at the same
	// position.
	EmitReadings bool `mapstructure:"emit_readings"`
	// EmitBaseForms emits each token's dictionary form at the same
	// position.
	EmitBaseForms bool `mapstructure:"emit_base_forms"`
	// StemLanguage enables snowball stemming of Latin-script tokens
	// ("english", "german", ...); empty disables it.
	StemLanguage string `mapstructure:"stem_language"`
	// KatakanaStem trims a trailing prolonged sound mark from long
	// katakana tokens.
	KatakanaStem bool `mapstructure:"katakana_stem"`
	// CacheSize bounds the query-analysis cache; zero disables it.
	CacheSize int `mapstructure:"cache_size"`
}

// DefaultConfig returns the configuration used when a config file sets
// no overrides.
func DefaultConfig() Config {
	return Config{
		Dictionary:    "ipa",
		Mode:          "search",
		Normalize:     "nfkc",
		StopTags:      []string{"助詞", "助動詞", "記号"},
		EmitReadings:  true,
		EmitBaseForms: true,
		KatakanaStem:  true,
		CacheSize:     512,
	}
}

// LoadConfig reads a YAML configuration file. Missing or unreadable
// files and malformed contents fail with ErrConfig. Keys absent from
// the file take the DefaultConfig value; keys present replace it
// wholesale, including list-valued keys such as stop_tags.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("dictionary", def.Dictionary)
	v.SetDefault("mode", def.Mode)
	v.SetDefault("normalize", def.Normalize)
	v.SetDefault("stop_tags", def.StopTags)
	v.SetDefault("emit_readings", def.EmitReadings)
	v.SetDefault("emit_base_forms", def.EmitBaseForms)
	v.SetDefault("katakana_stem", def.KatakanaStem)
	v.SetDefault("cache_size", def.CacheSize)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	// Decode into a zero value so file-provided slices replace the
	// defaults instead of being merged into them element by element.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromArgs resolves the configuration for a host create call:
// the first argument names the config file, falling back to the
// KAGOME_FTS5_CONFIG environment variable. A missing path is an
// ErrConfig, matching the contract that configuration problems surface
// at create time.
func LoadConfigFromArgs(args []string) (Config, error) {
	path := ""
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	} else if env := os.Getenv(ConfigPathEnv); env != "" {
		path = env
	}
	if path == "" {
		return Config{}, fmt.Errorf("%w: no config file given; pass a tokenizer argument or set %s",
			ErrConfig, ConfigPathEnv)
	}
	return LoadConfig(path)
}

func (c Config) validate() error {
	if _, err := ParseNormalizeMode(c.Normalize); err != nil {
		return err
	}
	if _, err := ParseSegmentationMode(c.Mode); err != nil {
		return err
	}
	if c.Dictionary == "" {
		return fmt.Errorf("%w: dictionary must not be empty", ErrConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative", ErrConfig)
	}
	return nil
}
