package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/fitting-room/internal/ai/gemini"
	"github.com/spigell/fitting-room/internal/imagestore"
	"github.com/spigell/fitting-room/internal/store/cache"
	"github.com/spigell/fitting-room/internal/store/sqlstore"
	"github.com/spigell/fitting-room/internal/tryon"
)

const (
	app = "fitting-room"

	defaultPlaceholderImage = "/uploads/tryon-result-placeholder.jpg"
	defaultMaxLogLength     = 200
)

type Config struct {
	Database sqlstore.Config   `mapstructure:"database"`
	Redis    cache.Config      `mapstructure:"redis"`
	Images   imagestore.Config `mapstructure:"images"`
	TryOn    TryOnConfig       `mapstructure:"tryon"`
	AI       *AIConfig         `mapstructure:"ai"`
}

type TryOnConfig struct {
	AnalyzerTimeout  time.Duration `mapstructure:"analyzer-timeout"`
	PlaceholderImage string        `mapstructure:"placeholder-image"`
}

type AIConfig struct {
	// Provider is "gemini", "simulator" or empty. Empty picks gemini when an
	// api key is available and the simulator otherwise.
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fitting-room recommends clothing sizes and runs AI virtual try-ons",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("database.dsn", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fitting-room.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", sqlstore.DriverSQLite)
	v.SetDefault("database.dsn", "fitting-room.db")
	v.SetDefault("redis.ttl", cache.DefaultTTL)
	v.SetDefault("images.root", imagestore.DefaultRoot)
	v.SetDefault("images.s3.use-path-style", true)
	v.SetDefault("tryon.analyzer-timeout", tryon.DefaultAnalyzerTimeout)
	v.SetDefault("tryon.placeholder-image", defaultPlaceholderImage)
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.gemini.max-log-length", defaultMaxLogLength)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return unmarshalConfig(viper.GetViper())
}

func unmarshalConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
