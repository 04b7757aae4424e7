package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CODEDX_BASE_URL.
const EnvPrefix = "CODEDX"

// Config file lookup.
const (
	FileName = "codedx-client"
	FileType = "yaml"
)

// Keys shared by viper, the config file and flag bindings.
const (
	KeyBaseURL   = "base_url"
	KeyUsername  = "username"
	KeyPassword  = "password"
	KeyAPIKey    = "api_key"
	KeyInsecure  = "insecure"
	KeyNoPrompt  = "no_prompt"
	KeyTimeout   = "timeout"
	KeyOutput    = "output"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Defaults.
const (
	DefaultTimeout   = 5 * time.Minute
	DefaultOutput    = "json"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the connection and presentation settings of the client.
type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	APIKey   string        `mapstructure:"api_key"`
	Insecure bool          `mapstructure:"insecure"`
	NoPrompt bool          `mapstructure:"no_prompt"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Output   string        `mapstructure:"output"`
	Log      LogConfig     `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ErrorKind classifies configuration failures.
type ErrorKind int

const (
	MissingURL ErrorKind = iota + 1
	InvalidURL
	MissingAuth
)

// ConfigError is returned by Validate and ResolveAuth.
type ConfigError struct {
	Kind ErrorKind
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case MissingURL:
		return "Missing the Base URL"
	case InvalidURL:
		return "Invalid Base URL. Did you forget 'http://' or 'https://' ?"
	case MissingAuth:
		return "Authorization info missing or incomplete. " +
			"Either an API Key or a Username + Password must be provided"
	default:
		return "invalid configuration"
	}
}

// SetDefaults registers every key so that environment variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyUsername, "")
	v.SetDefault(KeyPassword, "")
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyNoPrompt, false)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// NewViper builds a viper instance with defaults, CODEDX_* environment variables and
// the optional config file. An explicit cfgFile must exist; the implicit
// codedx-client.yaml in the working or home directory may be absent.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the base URL and that some form of credentials was given. A username
// without a password passes, since ResolveAuth may still prompt for it.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return &ConfigError{Kind: MissingURL}
	}
	if _, err := ParseBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.APIKey == "" && c.Username == "" {
		return &ConfigError{Kind: MissingAuth}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid configuration: timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// ParseBaseURL accepts absolute http or https URLs with a host.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigError{Kind: InvalidURL}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigError{Kind: InvalidURL}
	}
	return u, nil
}

// Credentials are the resolved authentication values. Exactly one of APIKey or
// Username/Password is set.
type Credentials struct {
	APIKey   string
	Username string
	Password string
}

// IsAPIKey reports whether key-based auth is used.
func (c Credentials) IsAPIKey() bool {
	return c.APIKey != ""
}

// PasswordPrompt reads a password interactively.
type PasswordPrompt func(prompt string) (string, error)

// PasswordPromptText is shown when the password has to be read interactively.
const PasswordPromptText = "password: "

// ResolveAuth picks the credentials. An API key wins over basic auth. When only a
// username is configured the password is read through prompt; a nil prompt or a
// failed read is reported as MissingAuth. An empty answer is kept as the password.
func (c *Config) ResolveAuth(prompt PasswordPrompt) (Credentials, error) {
	if c.APIKey != "" {
		return Credentials{APIKey: c.APIKey}, nil
	}
	if c.Username == "" {
		return Credentials{}, &ConfigError{Kind: MissingAuth}
	}
	if c.Password != "" {
		return Credentials{Username: c.Username, Password: c.Password}, nil
	}
	if prompt == nil {
		return Credentials{}, &ConfigError{Kind: MissingAuth}
	}
	password, err := prompt(PasswordPromptText)
	if err != nil {
		return Credentials{}, &ConfigError{Kind: MissingAuth}
	}
	return Credentials{Username: c.Username, Password: password}, nil
}
