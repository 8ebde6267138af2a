package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	InputPath  string `toml:"input_path"`
	DataDir    string `toml:"data_dir"`
	RosterPath string `toml:"roster_path"`
	DBPath     string `toml:"db_path"`
	Timezone   string `toml:"timezone"`

	Parse    ParseConfig    `toml:"parse"`
	Features FeatureConfig  `toml:"features"`
	Artifact ArtifactConfig `toml:"artifacts"`
}

type ParseConfig struct {
	MaxUnparsableFraction float64 `toml:"max_unparsable_fraction"`
	MaxLeadingJunk        int     `toml:"max_leading_junk"`
}

type FeatureConfig struct {
	QuestionWords  []string `toml:"question_words"`
	MeetupKeywords []string `toml:"meetup_keywords"`
	MediaMarkers   []string `toml:"media_markers"`
}

// ArtifactConfig overrides the per-stage artifact file names inside data_dir.
type ArtifactConfig struct {
	Messages string `toml:"messages"`
	Cleaned  string `toml:"cleaned"`
	Features string `toml:"features"`
}

// Load fills defaults first, then decodes the TOML file over them if it
// exists, so a partial config only overrides what it names.
func Load(path string) (*Config, error) {
	cfg := &Config{
		InputPath:  filepath.Join("data", "raw", "chat.txt"),
		DataDir:    filepath.Join("data", "processed"),
		RosterPath: filepath.Join("data", "roster.toml"),
		DBPath:     filepath.Join("data", "processed", "chat.db"),
		Timezone:   "Europe/Amsterdam",
		Parse: ParseConfig{
			MaxUnparsableFraction: 0.05,
			MaxLeadingJunk:        5,
		},
		Features: FeatureConfig{
			QuestionWords: []string{
				"wie", "wat", "waar", "wanneer", "waarom", "hoe", "zullen",
				"who", "what", "where", "when", "why", "how", "shall",
			},
			MeetupKeywords: []string{
				"afspreken", "borrel", "bier", "biertje", "kroeg", "eten",
				"meet", "meetup", "drinks", "beer", "dinner", "plan",
			},
			MediaMarkers: []string{
				"<Media weggelaten>", "<Media omitted>", "afbeelding weggelaten",
			},
		},
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.InputPath = expandHome(cfg.InputPath, home)
		cfg.DataDir = expandHome(cfg.DataDir, home)
		cfg.RosterPath = expandHome(cfg.RosterPath, home)
		cfg.DBPath = expandHome(cfg.DBPath, home)
	}

	return cfg, nil
}

// Location resolves the configured source timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
