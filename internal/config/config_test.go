package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "./", cfg.InFolder)
	assert.Equal(t, "fotogaleria-festivalu-XXXX", cfg.OutFolder)
	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, SizeConfig{Width: 0, Height: 1100}, cfg.Full)
	assert.Equal(t, SizeConfig{Width: 400, Height: 0}, cfg.Small)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.SupportedExtensions)
	assert.Equal(t, ".jpg", cfg.OutputExtension)
	assert.Equal(t, "list.txt", cfg.Manifest.Path)
	assert.Equal(t, filepath.Join("fotogaleria-festivalu-XXXX", "small"), cfg.SmallOutFolder())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "origin")
	require.NoError(t, os.MkdirAll(in, 0755))

	path := filepath.Join(dir, "config.yaml")
	yaml := "in_folder: " + in + "\n" +
		"out_folder: fotogaleria-festivalu-2022\n" +
		"quality: 95\n" +
		"full:\n  width: 1600\n  height: 0\n" +
		"supported_extensions: [JPG, png]\n" +
		"processing:\n  stop_on_error: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, in, cfg.InFolder)
	assert.Equal(t, "fotogaleria-festivalu-2022", cfg.OutFolder)
	assert.Equal(t, 95, cfg.Quality)
	assert.Equal(t, SizeConfig{Width: 1600, Height: 0}, cfg.Full)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.SupportedExtensions)
	assert.True(t, cfg.Processing.StopOnError)
}

func TestLoadConfig_ShorterListReplacesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("in_folder: "+dir+"\nsupported_extensions: [jpg]\n"), 0644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".jpg"}, cfg.SupportedExtensions)
	assert.True(t, cfg.IsSupportedExtension(".JPG"))
	assert.False(t, cfg.IsSupportedExtension(".png"))
	assert.False(t, cfg.IsSupportedExtension(".jpeg"))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GALLERY_COMPRESS_QUALITY", "70")
	t.Setenv("GALLERY_COMPRESS_FULL_HEIGHT", "900")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.Quality)
	assert.Equal(t, 900, cfg.Full.Height)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("GALLERY_COMPRESS_QUALITY", "70")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("quality", 90, "")
	flags.Int("width", 0, "")
	flags.Int("small-width", 400, "")
	require.NoError(t, flags.Parse([]string{"--quality", "60", "--width", "1600"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Quality)
	assert.Equal(t, 1600, cfg.Full.Width)
	assert.Equal(t, 400, cfg.Small.Width)
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing in folder", func(c *Config) { c.InFolder = "/definitely/not/here" }, true},
		{"empty out folder", func(c *Config) { c.OutFolder = "" }, true},
		{"negative width", func(c *Config) { c.Full.Width = -1 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"no extensions", func(c *Config) { c.SupportedExtensions = nil }, true},
		{"quality out of range passes", func(c *Config) { c.Quality = 150 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesExtensions(t *testing.T) {
	c := DefaultConfig()
	c.SupportedExtensions = []string{"JPG", ".Png", ""}
	c.OutputExtension = "jpg"
	c.Manifest.Extension = ""
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{".jpg", ".png"}, c.SupportedExtensions)
	assert.Equal(t, ".jpg", c.OutputExtension)
	assert.Equal(t, ".jpg", c.Manifest.Extension)
	assert.True(t, c.IsSupportedExtension(".PNG"))
	assert.False(t, c.IsSupportedExtension(".gif"))
}
