package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/notevec/sentence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "mysql", cfg.Source.Driver)
	assert.Equal(t, "NOTEEVENTS", cfg.Source.Table)
	assert.Equal(t, "d2v-200", cfg.Artifact)
	assert.Equal(t, 0, cfg.Epochs)
	assert.Equal(t, IndexPositional, cfg.IndexMode)
	assert.Empty(t, cfg.StateDir)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with options", func(t *testing.T) {
		cfg := NewConfig(
			WithDriver("sqlite3"),
			WithDSN("notes.db"),
			WithTable("NOTES"),
			WithArtifact("model.bin"),
			WithStateDir("state"),
			WithMetricsFile("notevec.prom"),
			WithEpochs(10),
			WithLanguage("en-GB"),
			WithIndexMode(IndexFirstOccurrence),
		)

		assert.Equal(t, SourceConfig{Driver: "sqlite3", DSN: "notes.db", Table: "NOTES"}, cfg.Source)
		assert.Equal(t, "model.bin", cfg.Artifact)
		assert.Equal(t, "state", cfg.StateDir)
		assert.Equal(t, "notevec.prom", cfg.MetricsFile)
		assert.Equal(t, 10, cfg.Epochs)
		assert.Equal(t, "en-GB", cfg.Language)
		assert.Equal(t, IndexFirstOccurrence, cfg.IndexMode)
	})
}

func TestNormalize(t *testing.T) {
	t.Setenv(EnvDSN, " env-dsn ")

	cfg := NewConfig(WithDriver(" SQLite3 "), WithTable(""), WithIndexMode(" First_Occurrence"))
	cfg.Normalize()

	assert.Equal(t, "sqlite3", cfg.Source.Driver)
	assert.Equal(t, "env-dsn", cfg.Source.DSN, "empty DSN falls back to the environment")
	assert.Equal(t, "NOTEEVENTS", cfg.Source.Table)
	assert.Equal(t, IndexFirstOccurrence, cfg.IndexMode)

	explicit := NewConfig(WithDSN("explicit"))
	explicit.Normalize()
	assert.Equal(t, "explicit", explicit.Source.DSN)
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvDSN, "")

	valid := func() *Config { return NewConfig(WithDSN("user@/mimic")) }
	require.NoError(t, valid().Validate())

	tests := []struct {
		name string
		opt  ConfigOption
		msg  string
	}{
		{"missing driver", WithDriver(""), "source.driver is required"},
		{"missing dsn", WithDSN(""), "source.dsn is required"},
		{"missing artifact", WithArtifact(""), "artifact is required"},
		{"negative epochs", WithEpochs(-1), "epochs must not be negative"},
		{"bad language", WithLanguage("not a tag!"), "invalid language"},
		{"bad index mode", WithIndexMode("sorted"), "index_mode must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.opt(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := NewConfig(WithLanguage("en-US"), WithIndexMode(IndexFirstOccurrence))

	tag, err := cfg.LanguageTag()
	require.NoError(t, err)
	assert.Equal(t, language.AmericanEnglish, tag)

	mode, err := cfg.SentenceIndexMode()
	require.NoError(t, err)
	assert.Equal(t, sentence.FirstOccurrenceIndex, mode)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notevec.yaml")
	data := `
source:
  driver: sqlite3
  dsn: /data/notes.db
epochs: 20
state_dir: /var/lib/notevec
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path, WithArtifact("override"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Source.Driver)
	assert.Equal(t, "/data/notes.db", cfg.Source.DSN)
	assert.Equal(t, "NOTEEVENTS", cfg.Source.Table, "missing keys keep defaults")
	assert.Equal(t, 20, cfg.Epochs)
	assert.Equal(t, "/var/lib/notevec", cfg.StateDir)
	assert.Equal(t, "override", cfg.Artifact, "options apply after the file")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epochs: [1, 2"), 0644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadEnv(t *testing.T) {
	const key = "NOTEVEC_TEST_LOADENV"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0644))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv(key))
}
