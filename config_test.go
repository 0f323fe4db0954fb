package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("CRIB_TEST_DIR", "/srv/data")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "  ", want: ""},
		{input: "~", want: home},
		{input: "~/answers.json", want: filepath.Join(home, "answers.json")},
		{input: "$CRIB_TEST_DIR/all.json", want: "/srv/data/all.json"},
		{input: "/abs/path.json", want: "/abs/path.json"},
		{input: "~other/file", want: "~other/file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := expandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, validateProfile("school", Profile{Source: "a.json"}))
	assert.NoError(t, validateProfile("school", Profile{Source: "a.json", Formatter: formatterBasic}))

	err := validateProfile("school", Profile{Source: "  "})
	assert.ErrorIs(t, err, ErrEmptySource)
	assert.EqualError(t, err, `profile "school": source: source is empty`)

	err = validateProfile("school", Profile{Source: "a.json", Formatter: "fancy"})
	assert.ErrorIs(t, err, ErrUnknownFormatter)

	var profileErr *ProfileError
	require.True(t, errors.As(err, &profileErr))
	assert.Equal(t, "formatter", profileErr.Field)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty", cfg: Config{}},
		{name: "default profile present", cfg: Config{DefaultProfile: "a", Profiles: map[string]Profile{"a": {Source: "x"}}}},
		{name: "default profile missing", cfg: Config{DefaultProfile: "a"}, wantErr: true},
		{name: "bad formatter", cfg: Config{Formatter: "html"}, wantErr: true},
		{name: "negative wrap", cfg: Config{WordWrap: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelectProfile(t *testing.T) {
	cfg := Config{
		DefaultProfile: "school",
		Profiles: map[string]Profile{
			"school": {Source: "school.json"},
			"home":   {Source: "home.json"},
		},
	}

	name, p, err := selectProfile("", cfg)
	require.NoError(t, err)
	assert.Equal(t, "school", name)
	assert.Equal(t, "school.json", p.Source)

	name, p, err = selectProfile("home", cfg)
	require.NoError(t, err)
	assert.Equal(t, "home", name)
	assert.Equal(t, "home.json", p.Source)

	_, _, err = selectProfile("work", cfg)
	assert.EqualError(t, err, `profile "work": profile not found`)

	_, _, err = selectProfile("work", Config{})
	assert.EqualError(t, err, `profile "work": no profiles defined in config`)

	name, p, err = selectProfile("", Config{})
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Nil(t, p)
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "all.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))

	got, err := resolveSource("https://example.com/data/all_exercises.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/data/all_exercises.json", got)

	got, err = resolveSource(" " + file + " ")
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = resolveSource("")
	assert.ErrorIs(t, err, ErrEmptySource)

	got, err = resolveSource(filepath.Join(dir, "sub", "..", "missing.json"))
	require.NoError(t, err, "unreadable sources fail at load time")
	assert.Equal(t, filepath.Join(dir, "missing.json"), got)

	got, err = resolveSource(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestResolveSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	paths := map[string]string{}
	for _, name := range []string{"config", "profile", "env", "flag"} {
		paths[name] = filepath.Join(dir, name+".json")
		require.NoError(t, os.WriteFile(paths[name], []byte("[]"), 0o644))
	}

	cfg := Config{
		Source:    paths["config"],
		Theme:     "light",
		Formatter: formatterRich,
		Profiles: map[string]Profile{
			"school": {Source: paths["profile"], Theme: "notty"},
		},
	}

	s, err := resolveSettings(cfg, Options{}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, paths["config"], s.Source)
	assert.Equal(t, "light", s.Theme)
	assert.Equal(t, formatterRich, s.Formatter)
	assert.Equal(t, defaultWordWrap, s.WordWrap)

	s, err = resolveSettings(cfg, Options{Profile: "school"}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "school", s.Profile)
	assert.Equal(t, paths["profile"], s.Source)
	assert.Equal(t, "notty", s.Theme)

	vars := map[string]string{
		envSource:    paths["env"],
		envTheme:     "dark",
		envFormatter: formatterBasic,
	}
	s, err = resolveSettings(cfg, Options{Profile: "school"}, env(vars))
	require.NoError(t, err)
	assert.Equal(t, paths["env"], s.Source)
	assert.Equal(t, "dark", s.Theme)
	assert.Equal(t, formatterBasic, s.Formatter)

	s, err = resolveSettings(cfg, Options{Profile: "school", Source: paths["flag"], Theme: "pink"}, env(vars))
	require.NoError(t, err)
	assert.Equal(t, paths["flag"], s.Source)
	assert.Equal(t, "pink", s.Theme)
}

func TestResolveSettingsDefaults(t *testing.T) {
	s, err := resolveSettings(Config{}, Options{Source: "https://example.com/all.json", Basic: true}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultTheme, s.Theme)
	assert.Equal(t, formatterBasic, s.Formatter)
	assert.Equal(t, defaultWordWrap, s.WordWrap)
	assert.Empty(t, s.LogFile)
}

func TestResolveSettingsErrors(t *testing.T) {
	_, err := resolveSettings(Config{}, Options{}, env(nil))
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = resolveSettings(Config{}, Options{Source: "https://example.com/a.json"}, env(map[string]string{envFormatter: "html"}))
	assert.ErrorIs(t, err, ErrUnknownFormatter)

	_, err = resolveSettings(Config{}, Options{Source: "https://example.com/a.json", Profile: "x"}, env(nil))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
default_profile = "school"
theme = "light"
word_wrap = 60

[profiles.school]
source = "https://example.com/data/all_exercises.json"
formatter = "basic"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, got, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "school", cfg.DefaultProfile)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 60, cfg.WordWrap)
	assert.Equal(t, Profile{Source: "https://example.com/data/all_exercises.json", Formatter: formatterBasic}, cfg.Profiles["school"])

	cfg, _, err = loadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("theme = "), 0o644))
	_, _, err = loadConfig(bad)
	assert.Error(t, err)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, got, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "crib", "config.toml"), got)
}
