// Package config provides the Config struct and loader for .roboyoz.yaml
// files, plus environment overrides for credentials.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roboyoz/hotline/internal/alert"
	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/response"
	"github.com/roboyoz/hotline/internal/twilio"
	"github.com/roboyoz/hotline/internal/validation"
)

// FileName is the config file looked up from the working directory.
const FileName = ".roboyoz.yaml"

// Default values. New() references them and no other code should duplicate
// them.
const (
	DefaultAddr = ":8080"

	DefaultStorageDriver = "memory"
	DefaultSQLitePath    = "roboyoz.db"
	DefaultMongoDatabase = "roboyoz"

	DefaultVoiceName     = "Polly.Joanna"
	DefaultVoiceLanguage = "en-US"

	DefaultLongSeconds   = 5
	DefaultShortSeconds  = 0
	DefaultRecordTimeout = 5
	DefaultFinishOnKey   = "#*"

	DefaultAssetsDriver = "dir"
	DefaultAssetsDir    = "assets"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Asset drivers.
const (
	AssetsDir    = "dir"
	AssetsAzBlob = "azblob"
)

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
	// PublicURL is the origin the telephony provider calls, used when
	// checking request signatures.
	PublicURL          string   `yaml:"public_url,omitempty"`
	AllowedOrigins     []string `yaml:"allowed_origins,omitempty"`
	ValidateSignatures *bool    `yaml:"validate_signatures,omitempty"`
}

// StorageConfig selects the interview store.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"`
	// DSN is a file path for sqlite or a connection URI for mongo.
	DSN      string `yaml:"dsn,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// CatalogConfig points at a message catalog file. Empty uses the built-in one.
type CatalogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch *bool  `yaml:"watch,omitempty"`
}

// VoiceConfig holds text-to-speech settings.
type VoiceConfig struct {
	Name     string `yaml:"name,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// TopicConfig is one selectable interview topic.
type TopicConfig struct {
	Name      string   `yaml:"name"`
	Digit     string   `yaml:"digit,omitempty"`
	Patterns  []string `yaml:"patterns,omitempty"`
	Questions string   `yaml:"questions"`
}

// RecordingConfig holds answer-recording heuristics.
type RecordingConfig struct {
	LongSeconds  *int   `yaml:"long_seconds,omitempty"`
	ShortSeconds *int   `yaml:"short_seconds,omitempty"`
	Timeout      int    `yaml:"timeout,omitempty"`
	FinishOnKey  string `yaml:"finish_on_key,omitempty"`
}

// TwilioConfig holds provider credentials.
type TwilioConfig struct {
	AccountSid string `yaml:"account_sid,omitempty"`
	AuthToken  string `yaml:"auth_token,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	APISecret  string `yaml:"api_secret,omitempty"`
	AppSid     string `yaml:"app_sid,omitempty"`
	Lookup     *bool  `yaml:"lookup,omitempty"`
}

// AlertsConfig holds operator alert settings.
type AlertsConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url,omitempty"`
}

// AssetsConfig selects where /asset is served from.
type AssetsConfig struct {
	Driver           string `yaml:"driver,omitempty"`
	Dir              string `yaml:"dir,omitempty"`
	AccountURL       string `yaml:"account_url,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	Container        string `yaml:"container,omitempty"`
	Prefix           string `yaml:"prefix,omitempty"`
}

// Config is the top-level configuration loaded from .roboyoz.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Storage   StorageConfig   `yaml:"storage,omitempty"`
	Catalog   CatalogConfig   `yaml:"catalog,omitempty"`
	Voice     VoiceConfig     `yaml:"voice,omitempty"`
	Topics    []TopicConfig   `yaml:"topics,omitempty"`
	Recording RecordingConfig `yaml:"recording,omitempty"`
	Twilio    TwilioConfig    `yaml:"twilio,omitempty"`
	Alerts    AlertsConfig    `yaml:"alerts,omitempty"`
	Assets    AssetsConfig    `yaml:"assets,omitempty"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-"`
}

// ValidationError lists schema problems in a config file.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	topics := flow.DefaultTopics()
	cfgTopics := make([]TopicConfig, len(topics))
	for i, t := range topics {
		cfgTopics[i] = TopicConfig{Name: t.Name, Digit: t.Digit, Patterns: t.Patterns, Questions: t.Questions}
	}
	return &Config{
		Server: ServerConfig{
			Addr:               DefaultAddr,
			ValidateSignatures: boolPtr(false),
		},
		Storage: StorageConfig{
			Driver:   DefaultStorageDriver,
			Database: DefaultMongoDatabase,
		},
		Catalog: CatalogConfig{Watch: boolPtr(false)},
		Voice: VoiceConfig{
			Name:     DefaultVoiceName,
			Language: DefaultVoiceLanguage,
		},
		Topics: cfgTopics,
		Recording: RecordingConfig{
			LongSeconds:  intPtr(DefaultLongSeconds),
			ShortSeconds: intPtr(DefaultShortSeconds),
			Timeout:      DefaultRecordTimeout,
			FinishOnKey:  DefaultFinishOnKey,
		},
		Twilio: TwilioConfig{Lookup: boolPtr(false)},
		Assets: AssetsConfig{
			Driver: DefaultAssetsDriver,
			Dir:    DefaultAssetsDir,
		},
	}
}

// Load finds .roboyoz.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, fills in missing fields with defaults and
// applies environment overrides. A .env file in startDir supplies variables
// that are not already set. If no config file is found, defaults are used.
func Load(startDir string) (*Config, error) {
	path, err := findConfigFile(startDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return load(path, startDir)
}

// LoadFile reads the config at path. Relative .env lookup uses path's
// directory.
func LoadFile(path string) (*Config, error) {
	return load(path, filepath.Dir(path))
}

func load(path, envDir string) (*Config, error) {
	cfg := New()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if problems := validation.ValidateConfigBytes(data); len(problems) > 0 {
			return nil, &ValidationError{Path: path, Problems: problems}
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.Path = path
	}

	dotenv, err := readDotenv(filepath.Join(envDir, ".env"))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return cfg, nil
}

// findConfigFile walks up from dir looking for .roboyoz.yaml and returns its
// path, or os.ErrNotExist.
func findConfigFile(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func readDotenv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	// Server
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Server.PublicURL != "" {
		dst.Server.PublicURL = src.Server.PublicURL
	}
	if src.Server.AllowedOrigins != nil {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.ValidateSignatures != nil {
		dst.Server.ValidateSignatures = src.Server.ValidateSignatures
	}

	// Storage
	if src.Storage.Driver != "" {
		dst.Storage.Driver = src.Storage.Driver
	}
	if src.Storage.DSN != "" {
		dst.Storage.DSN = src.Storage.DSN
	}
	if src.Storage.Database != "" {
		dst.Storage.Database = src.Storage.Database
	}

	// Catalog
	if src.Catalog.Path != "" {
		dst.Catalog.Path = src.Catalog.Path
	}
	if src.Catalog.Watch != nil {
		dst.Catalog.Watch = src.Catalog.Watch
	}

	// Voice
	if src.Voice.Name != "" {
		dst.Voice.Name = src.Voice.Name
	}
	if src.Voice.Language != "" {
		dst.Voice.Language = src.Voice.Language
	}

	// Topics replace the defaults wholesale.
	if len(src.Topics) > 0 {
		dst.Topics = src.Topics
	}

	// Recording
	if src.Recording.LongSeconds != nil {
		dst.Recording.LongSeconds = src.Recording.LongSeconds
	}
	if src.Recording.ShortSeconds != nil {
		dst.Recording.ShortSeconds = src.Recording.ShortSeconds
	}
	if src.Recording.Timeout != 0 {
		dst.Recording.Timeout = src.Recording.Timeout
	}
	if src.Recording.FinishOnKey != "" {
		dst.Recording.FinishOnKey = src.Recording.FinishOnKey
	}

	// Twilio
	if src.Twilio.AccountSid != "" {
		dst.Twilio.AccountSid = src.Twilio.AccountSid
	}
	if src.Twilio.AuthToken != "" {
		dst.Twilio.AuthToken = src.Twilio.AuthToken
	}
	if src.Twilio.APIKey != "" {
		dst.Twilio.APIKey = src.Twilio.APIKey
	}
	if src.Twilio.APISecret != "" {
		dst.Twilio.APISecret = src.Twilio.APISecret
	}
	if src.Twilio.AppSid != "" {
		dst.Twilio.AppSid = src.Twilio.AppSid
	}
	if src.Twilio.Lookup != nil {
		dst.Twilio.Lookup = src.Twilio.Lookup
	}

	// Alerts
	if src.Alerts.SlackWebhookURL != "" {
		dst.Alerts.SlackWebhookURL = src.Alerts.SlackWebhookURL
	}

	// Assets
	if src.Assets.Driver != "" {
		dst.Assets.Driver = src.Assets.Driver
	}
	if src.Assets.Dir != "" {
		dst.Assets.Dir = src.Assets.Dir
	}
	if src.Assets.AccountURL != "" {
		dst.Assets.AccountURL = src.Assets.AccountURL
	}
	if src.Assets.ConnectionString != "" {
		dst.Assets.ConnectionString = src.Assets.ConnectionString
	}
	if src.Assets.Container != "" {
		dst.Assets.Container = src.Assets.Container
	}
	if src.Assets.Prefix != "" {
		dst.Assets.Prefix = src.Assets.Prefix
	}
}

// envBindings maps environment variables onto config fields.
var envBindings = []struct {
	key   string
	field func(*Config) *string
}{
	{"TWILIO_ACCOUNT_SID", func(c *Config) *string { return &c.Twilio.AccountSid }},
	{"TWILIO_AUTH_TOKEN", func(c *Config) *string { return &c.Twilio.AuthToken }},
	{"TWILIO_API_KEY", func(c *Config) *string { return &c.Twilio.APIKey }},
	{"TWILIO_API_SECRET", func(c *Config) *string { return &c.Twilio.APISecret }},
	{"TWILIO_APP_SID", func(c *Config) *string { return &c.Twilio.AppSid }},
	{"ROBOYOZ_ADDR", func(c *Config) *string { return &c.Server.Addr }},
	{"ROBOYOZ_PUBLIC_URL", func(c *Config) *string { return &c.Server.PublicURL }},
	{"ROBOYOZ_STORAGE_DRIVER", func(c *Config) *string { return &c.Storage.Driver }},
	{"ROBOYOZ_STORAGE_DSN", func(c *Config) *string { return &c.Storage.DSN }},
	{"ROBOYOZ_CATALOG", func(c *Config) *string { return &c.Catalog.Path }},
	{"ROBOYOZ_SLACK_WEBHOOK_URL", func(c *Config) *string { return &c.Alerts.SlackWebhookURL }},
	{"ROBOYOZ_ASSETS_CONNECTION_STRING", func(c *Config) *string { return &c.Assets.ConnectionString }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	for _, b := range envBindings {
		if v, ok := lookup(b.key); ok && v != "" {
			*b.field(cfg) = v
		}
	}
}

// FlowTopics compiles the configured topics.
func (c *Config) FlowTopics() (*flow.Topics, error) {
	topics := make([]flow.Topic, len(c.Topics))
	for i, t := range c.Topics {
		topics[i] = flow.Topic{Name: t.Name, Digit: t.Digit, Patterns: t.Patterns, Questions: t.Questions}
	}
	return flow.NewTopics(topics)
}

// RecordingPolicy returns the recording heuristics.
func (c *Config) RecordingPolicy() flow.RecordingPolicy {
	p := flow.RecordingPolicy{
		LongSeconds:  DefaultLongSeconds,
		ShortSeconds: DefaultShortSeconds,
		Timeout:      c.Recording.Timeout,
		FinishOnKey:  c.Recording.FinishOnKey,
	}
	if c.Recording.LongSeconds != nil {
		p.LongSeconds = *c.Recording.LongSeconds
	}
	if c.Recording.ShortSeconds != nil {
		p.ShortSeconds = *c.Recording.ShortSeconds
	}
	return p
}

// VoiceOptions returns TwiML settings for the /voice routes.
func (c *Config) VoiceOptions() response.VoiceOptions {
	return response.VoiceOptions{Voice: c.Voice.Name, Language: c.Voice.Language, BasePath: "/voice/"}
}

// TokenConfig returns the credentials for client access tokens.
func (c *Config) TokenConfig() twilio.TokenConfig {
	return twilio.TokenConfig{
		AccountSid: c.Twilio.AccountSid,
		APIKey:     c.Twilio.APIKey,
		APISecret:  c.Twilio.APISecret,
		AppSid:     c.Twilio.AppSid,
	}
}

// CallerNamer returns a lookup client, or nil when lookups are disabled or
// the account credentials are missing.
func (c *Config) CallerNamer() twilio.CallerNamer {
	if c.Twilio.Lookup == nil || !*c.Twilio.Lookup {
		return nil
	}
	if c.Twilio.AccountSid == "" || c.Twilio.AuthToken == "" {
		return nil
	}
	return &twilio.LookupClient{AccountSid: c.Twilio.AccountSid, AuthToken: c.Twilio.AuthToken}
}

// Notifier always logs and also posts to Slack when a webhook is set.
func (c *Config) Notifier(logger *slog.Logger) alert.Notifier {
	n := alert.Multi{alert.LogNotifier{Logger: logger}}
	if c.Alerts.SlackWebhookURL != "" {
		host, _ := os.Hostname()
		n = append(n, &alert.SlackWebhook{URL: c.Alerts.SlackWebhookURL, Source: host})
	}
	return n
}

// SignaturesEnabled reports whether /voice requests must be signed.
func (c *Config) SignaturesEnabled() bool {
	return c.Server.ValidateSignatures != nil && *c.Server.ValidateSignatures
}

// WatchCatalog reports whether the catalog file is reloaded on change.
func (c *Config) WatchCatalog() bool {
	return c.Catalog.Path != "" && c.Catalog.Watch != nil && *c.Catalog.Watch
}

// Resolve makes p absolute against the directory of the config file. Paths
// in a config file are relative to the file, not the working directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// SQLitePath returns the database file for the sqlite driver.
func (c *Config) SQLitePath() string {
	if c.Storage.DSN == "" {
		return c.Resolve(DefaultSQLitePath)
	}
	return c.Resolve(c.Storage.DSN)
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}
