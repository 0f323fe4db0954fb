package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	envSource    = "CRIB_SOURCE"
	envTheme     = "CRIB_THEME"
	envFormatter = "CRIB_FORMATTER"
	envLogFile   = "CRIB_LOG_FILE"
)

type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
	Source         string             `toml:"source"`
	Theme          string             `toml:"theme"`
	Formatter      string             `toml:"formatter"`
	WordWrap       int                `toml:"word_wrap"`
	LogFile        string             `toml:"log_file"`
}

type Profile struct {
	Source    string `toml:"source"`
	Theme     string `toml:"theme"`
	Formatter string `toml:"formatter"`
}

// Options are the command line overrides
type Options struct {
	ConfigPath string
	Profile    string
	Source     string
	Theme      string
	Basic      bool
	LogFile    string
	Verbose    bool
}

// Settings is the fully resolved configuration for a run
type Settings struct {
	Profile   string
	Source    string
	Theme     string
	Formatter string
	WordWrap  int
	LogFile   string
	Verbose   bool
}

type ProfileError struct {
	Profile string
	Field   string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}

	if e.Field == "" {
		return fmt.Sprintf("profile %q: %v", e.Profile, e.Err)
	}

	return fmt.Sprintf("profile %q: %s: %v", e.Profile, e.Field, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptySource      = errors.New("source is empty")
	ErrUnknownFormatter = errors.New("unknown formatter")
)

func validateProfile(name string, p Profile) error {
	if strings.TrimSpace(p.Source) == "" {
		return &ProfileError{Profile: name, Field: "source", Err: ErrEmptySource}
	}

	if err := validateFormatter(p.Formatter); err != nil {
		return &ProfileError{Profile: name, Field: "formatter", Err: err}
	}

	return nil
}

func validateFormatter(value string) error {
	switch value {
	case "", formatterRich, formatterBasic:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormatter, value)
}

func validateConfig(cfg Config) error {
	if cfg.DefaultProfile != "" {
		if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
			return &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}
	}

	if err := validateFormatter(cfg.Formatter); err != nil {
		return &ProfileError{Field: "formatter", Err: err}
	}

	if cfg.WordWrap < 0 {
		return &ProfileError{Field: "word_wrap", Err: errors.New("must not be negative")}
	}

	return nil
}

func selectProfile(profileFlag string, cfg Config) (string, *Profile, error) {
	if profileFlag != "" {
		if cfg.Profiles == nil {
			return "", nil, &ProfileError{Profile: profileFlag, Err: errors.New("no profiles defined in config")}
		}

		p, ok := cfg.Profiles[profileFlag]

		if !ok {
			return "", nil, &ProfileError{Profile: profileFlag, Err: errors.New("profile not found")}
		}

		return profileFlag, &p, nil
	}

	if cfg.DefaultProfile != "" {
		p, ok := cfg.Profiles[cfg.DefaultProfile]

		if !ok {
			return "", nil, &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}

		return cfg.DefaultProfile, &p, nil
	}

	return "", nil, nil
}

// resolveSettings layers defaults, the config file, the selected profile,
// the environment and finally the command line flags.
func resolveSettings(cfg Config, opts Options, getenv func(string) string) (*Settings, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Settings{
		Source:    cfg.Source,
		Theme:     cmpOr(cfg.Theme, defaultTheme),
		Formatter: cmpOr(cfg.Formatter, formatterRich),
		WordWrap:  cfg.WordWrap,
		LogFile:   cfg.LogFile,
		Verbose:   opts.Verbose,
	}
	if s.WordWrap == 0 {
		s.WordWrap = defaultWordWrap
	}

	name, profile, err := selectProfile(opts.Profile, cfg)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if err := validateProfile(name, *profile); err != nil {
			return nil, err
		}
		s.Profile = name
		s.Source = profile.Source
		s.Theme = cmpOr(profile.Theme, s.Theme)
		s.Formatter = cmpOr(profile.Formatter, s.Formatter)
	}

	s.Source = cmpOr(getenv(envSource), s.Source)
	s.Theme = cmpOr(getenv(envTheme), s.Theme)
	s.Formatter = cmpOr(getenv(envFormatter), s.Formatter)
	s.LogFile = cmpOr(getenv(envLogFile), s.LogFile)

	s.Source = cmpOr(opts.Source, s.Source)
	s.Theme = cmpOr(opts.Theme, s.Theme)
	s.LogFile = cmpOr(opts.LogFile, s.LogFile)
	if opts.Basic {
		s.Formatter = formatterBasic
	}

	if err := validateFormatter(s.Formatter); err != nil {
		return nil, &ProfileError{Profile: s.Profile, Field: "formatter", Err: err}
	}

	source, err := resolveSource(s.Source)
	if err != nil {
		return nil, &ProfileError{Profile: s.Profile, Field: "source", Err: err}
	}
	s.Source = source

	if s.LogFile != "" {
		if s.LogFile, err = expandPath(s.LogFile); err != nil {
			return nil, &ProfileError{Profile: s.Profile, Field: "log_file", Err: err}
		}
	}

	return s, nil
}

// resolveSource returns remote sources unchanged and local ones as a clean
// path. Whether the file can be read is only known once it is loaded.
func resolveSource(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptySource
	}

	if isRemoteSource(value) {
		return value, nil
	}

	expanded, err := expandPath(value)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

func cmpOr(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func configPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "crib", "config.toml"), nil
}

// loadConfig reads the config file at path, or at the default location
// when path is empty. A missing file yields an empty config.
func loadConfig(path string) (Config, string, error) {
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return Config{}, "", err
		}
	} else {
		var err error
		if path, err = expandPath(path); err != nil {
			return Config{}, path, err
		}
	}

	data, err := os.ReadFile(path)

	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, path, nil
		}

		return Config{}, path, err
	}

	var cfg Config

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, path, err
	}

	return cfg, path, nil
}

// loadDotEnv loads .env from the working directory if there is one.
// Variables already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func expandPath(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return value, nil
	}

	expanded := os.ExpandEnv(value)

	if !strings.HasPrefix(expanded, "~") {
		return expanded, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if expanded == "~" {
		return homeDir, nil
	}

	if strings.HasPrefix(expanded, "~/") {
		return filepath.Join(homeDir, expanded[2:]), nil
	}

	if strings.HasPrefix(expanded, "~\\") {
		return filepath.Join(homeDir, expanded[2:]), nil
	}

	return expanded, nil
}
