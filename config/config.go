package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"voice-scene/internal/application"
)

type Config struct {
	Audio       AudioConfig       `yaml:"audio"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Notify      NotifyConfig      `yaml:"notify"`
	Keywords    KeywordsConfig    `yaml:"keywords"`
	Scene       SceneConfig       `yaml:"scene"`
	Log         LogConfig         `yaml:"log"`
}

type AudioConfig struct {
	Source        string `yaml:"source"`
	HTTPAddr      string `yaml:"http_addr"`
	FileDir       string `yaml:"file_dir"`
	SampleRate    int    `yaml:"sample_rate"`
	RecordSeconds int    `yaml:"record_seconds"`
	AuthToken     string `yaml:"auth_token"`
}

type TranscriberConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"base_url"`
}

type NotifyConfig struct {
	Provider string         `yaml:"provider"`
	Timeout  string         `yaml:"timeout"`
	Slack    SlackConfig    `yaml:"slack"`
	Pushover PushoverConfig `yaml:"pushover"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
	Prefix     string `yaml:"prefix"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Title   string `yaml:"title"`
}

type KeywordsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type SceneConfig struct {
	ClientBuffer int `yaml:"client_buffer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadEnv reads a .env file into the process environment. A missing file
// is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// DefaultSlackPrefix is prepended to every Slack message unless the config
// sets notify.slack.prefix, which may be the empty string.
const DefaultSlackPrefix = "ARKit VUI Demo: "

// Parse expands ${VAR} references and decodes the YAML document on top of
// Default, so keys the document sets explicitly win even when empty.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := Config{
		Notify: NotifyConfig{
			Slack: SlackConfig{Prefix: DefaultSlackPrefix},
		},
	}
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = application.DefaultAudioFormat().SampleRate
	}
	if c.Audio.RecordSeconds == 0 {
		c.Audio.RecordSeconds = 15
	}
	if c.Transcriber.Provider == "" {
		c.Transcriber.Provider = "google"
	}
	if c.Transcriber.Language == "" {
		c.Transcriber.Language = "ja-JP"
	}
	if c.Notify.Provider == "" {
		c.Notify.Provider = "slack"
	}
	if c.Notify.Timeout == "" {
		c.Notify.Timeout = "15s"
	}
	if c.Notify.Slack.Channel == "" {
		c.Notify.Slack.Channel = "#bots"
	}
	if c.Notify.Slack.Username == "" {
		c.Notify.Slack.Username = "webhookbot"
	}
	if c.Notify.Pushover.Title == "" {
		c.Notify.Pushover.Title = "Voice Scene"
	}
	if c.Scene.ClientBuffer == 0 {
		c.Scene.ClientBuffer = 16
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
