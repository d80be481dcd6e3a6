package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("kick-relay version %s, commit %s, built at %s", version, commit, date)
}

// Version returns the bare version string
func Version() string {
	return version
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// OAuthConfig holds the server-side OAuth client credentials and the
// identity-provider endpoints used for the authorization-code exchange.
// ClientID and ClientSecret may be empty at startup; the exchange endpoint
// reports a configuration error per request until both are set.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AuthorizeURL string `mapstructure:"authorize_url"`
	TokenURL     string `mapstructure:"token_url"`
}

// Configured reports whether both client credentials are present.
func (c *OAuthConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// UpstreamConfig holds the third-party API endpoints the relay forwards to.
// LegacyUserEndpoints are tried, in order, after UsersURL and
// APIBase + "/user" during user lookup.
type UpstreamConfig struct {
	UsersURL            string   `mapstructure:"users_url"`
	APIBase             string   `mapstructure:"api_base"`
	ChannelsURL         string   `mapstructure:"channels_url"`
	EmoteHost           string   `mapstructure:"emote_host"`
	LegacyUserEndpoints []string `mapstructure:"legacy_user_endpoints"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.Int("port", 0, "Listening port (overrides server.port)")
	pflag.String("config", "", "Path to a config file")
	// Note: no pflag.Parse() here as it's called in main.go
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	// Registered empty so env-only values survive Unmarshal.
	viper.SetDefault("oauth.client_id", "")
	viper.SetDefault("oauth.client_secret", "")
	viper.SetDefault("oauth.authorize_url", "https://id.kick.com/oauth/authorize")
	viper.SetDefault("oauth.token_url", "https://id.kick.com/oauth/token")

	viper.SetDefault("upstream.users_url", "https://api.kick.com/public/v1/users")
	viper.SetDefault("upstream.api_base", "https://kick.com/api/v1")
	viper.SetDefault("upstream.channels_url", "https://kick.com/api/v2/channels")
	viper.SetDefault("upstream.emote_host", "https://files.kick.com")
	viper.SetDefault("upstream.legacy_user_endpoints", []string{
		"https://kick.com/api/v1/user",
		"https://kick.com/api/v2/user",
	})

	viper.SetDefault("cors.allow_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
	})
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("KICK_RELAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	// Load ./config.yaml if present; every setting has a default, so a
	// missing file is not an error.
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/kick-relay")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Set port from flag
	if port := viper.GetInt("port"); port != 0 {
		config.Server.Port = port
	}

	return &config, nil
}
