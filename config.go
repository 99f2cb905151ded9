package godeck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/bbiangul/go-deck/theme"
)

// EnvPrefix is the prefix of environment overrides, e.g. DECKMD_COLORS_PRIMARY.
const EnvPrefix = "DECKMD"

// Config holds all configuration for conversion and indexing.
type Config struct {
	Colors theme.Colors `mapstructure:"colors" json:"colors" yaml:"colors"`
	Fonts  theme.Fonts  `mapstructure:"fonts" json:"fonts" yaml:"fonts"`

	// Output overrides the default output path of a conversion.
	Output string `mapstructure:"output" json:"output,omitempty" yaml:"output,omitempty"`

	// DBPath is the full path to the slide index database.
	// If empty, defaults to ~/.godeck/<DBName>.db
	DBPath string `mapstructure:"db_path" json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// DBName is the name for the database (used when DBPath is empty).
	DBName string `mapstructure:"db_name" json:"db_name,omitempty" yaml:"db_name,omitempty"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.godeck/,
	// "local" uses the current working directory.
	StorageDir string `mapstructure:"storage_dir" json:"storage_dir,omitempty" yaml:"storage_dir,omitempty"`

	// Source is the config file the values were read from, if any.
	Source string `mapstructure:"-" json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with the built-in palette and fonts.
func DefaultConfig() Config {
	return Config{
		Colors:     theme.DefaultColors(),
		Fonts:      theme.DefaultFonts(),
		DBName:     "godeck",
		StorageDir: "home",
	}
}

// ConfigCandidates returns the files LoadConfig tries for inputPath, in
// order. JSON files come before YAML files.
func ConfigCandidates(inputPath string) []string {
	dir := filepath.Dir(inputPath)
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "slides-config.json"),
		filepath.Join(cwd, "config.json"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "slides-config.yaml"),
		filepath.Join(dir, "slides-config.yml"),
		filepath.Join(cwd, "config.yaml"),
		filepath.Join(cwd, "config.yml"),
	}
}

// LoadConfig discovers a config file next to inputPath or in the working
// directory. The first file that parses wins; a file that fails to parse is
// logged and skipped. Keys missing from the file keep their defaults, and
// DECKMD_* environment variables override both.
func LoadConfig(inputPath string) Config {
	for _, p := range ConfigCandidates(inputPath) {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		cfg, err := readConfig(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("config: could not parse, skipping")
			continue
		}
		log.Info().Str("path", p).Msg("config: loaded")
		return cfg
	}
	cfg, err := readConfig("")
	if err != nil {
		// Only environment values can fail here.
		log.Warn().Err(err).Msg("config: ignoring environment overrides")
		cfg = DefaultConfig()
		cfg.normalize()
	}
	return cfg
}

// LoadConfigFile reads an explicitly requested config file. Unlike
// LoadConfig, a missing or malformed file is an error.
func LoadConfigFile(path string) (Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func readConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Source = path
	cfg.normalize()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	for name, value := range defaults.Colors.Map() {
		v.SetDefault("colors."+name, value)
	}
	v.SetDefault("fonts.header", defaults.Fonts.Header)
	v.SetDefault("fonts.body", defaults.Fonts.Body)
	v.SetDefault("fonts.code", defaults.Fonts.Code)
	v.SetDefault("output", "")
	v.SetDefault("db_path", "")
	v.SetDefault("db_name", defaults.DBName)
	v.SetDefault("storage_dir", defaults.StorageDir)
}

// normalize replaces invalid colors with their defaults and fills empty
// font families.
func (c *Config) normalize() {
	colors, errs := c.Colors.Normalize()
	for _, err := range errs {
		log.Warn().Err(err).Str("config", c.Source).Msg("config: using default color")
	}
	c.Colors = colors
	c.Fonts = c.Fonts.Normalize()
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "godeck"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".godeck", name+".db")
	}
}

// OutputPath derives the default .pptx path for a Markdown input: a trailing
// ".md" is replaced, any other name gets ".pptx" appended.
func OutputPath(input string) string {
	if strings.HasSuffix(strings.ToLower(input), ".md") {
		return input[:len(input)-3] + ".pptx"
	}
	return input + ".pptx"
}
