package cmd

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/alerts"
	"github.com/jobpilot/jobpilot/internal/francetravail"
	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/notify"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/secrets"
	"github.com/jobpilot/jobpilot/internal/store"
)

const (
	app = "jobpilot"
)

type Config struct {
	Database      *DatabaseConfig      `mapstructure:"database"`
	FranceTravail *FranceTravailConfig `mapstructure:"france-travail"`
	Alerts        *AlertsConfig        `mapstructure:"alerts"`
	SMTP          *SMTPConfig          `mapstructure:"smtp"`
	AI            *AIConfig            `mapstructure:"ai"`
	Scoring       *ScoringConfig       `mapstructure:"scoring"`
	SiteURL       string               `mapstructure:"site-url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type FranceTravailConfig struct {
	ClientIDFile     string `mapstructure:"client-id-file"`
	ClientSecretFile string `mapstructure:"client-secret-file"`
}

type AlertsConfig struct {
	MinScore int    `mapstructure:"min-score"`
	Limit    int    `mapstructure:"limit"`
	Interval string `mapstructure:"interval"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ScoringConfig struct {
	Multiplier     int      `mapstructure:"multiplier"`
	ExtraStopWords []string `mapstructure:"extra-stop-words"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobpilot matches stored resumes against France Travail job offers and alerts about new ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database.path", "JOBPILOT_DB"); err != nil {
		log.Fatalf("binding JOBPILOT_DB environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobpilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Missing config file is tolerated since flags and env cover the basics.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}
	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func openStore(ctx context.Context, config *Config, l *zap.Logger) *store.Store {
	path := "jobpilot.db"
	if config.Database != nil && strings.TrimSpace(config.Database.Path) != "" {
		path = config.Database.Path
	}

	s, err := store.Open(ctx, path, l)
	if err != nil {
		l.Fatal("opening the database", zap.String("path", path), zap.Error(err))
	}
	return s
}

func newSearchClient(config *Config, l *zap.Logger) *francetravail.Client {
	if config.FranceTravail == nil {
		l.Fatal("france-travail credentials are required",
			zap.String("hint", "set france-travail.client-id-file and france-travail.client-secret-file"),
		)
	}

	clientID, err := secrets.Load(secrets.Source{
		Name: "france travail client id",
		File: config.FranceTravail.ClientIDFile,
	})
	if err != nil {
		l.Fatal("loading france travail client id", zap.Error(err))
	}

	clientSecret, err := secrets.Load(secrets.Source{
		Name: "france travail client secret",
		File: config.FranceTravail.ClientSecretFile,
	})
	if err != nil {
		l.Fatal("loading france travail client secret", zap.Error(err))
	}

	return francetravail.New(l, clientID, clientSecret)
}

func newEngine(config *Config) *scoring.Engine {
	cfg := scoring.Config{}
	if config.Scoring != nil {
		cfg.Multiplier = config.Scoring.Multiplier
		cfg.ExtraStopWords = config.Scoring.ExtraStopWords
	}
	return scoring.NewEngine(cfg)
}

func newGate(config *Config, l *zap.Logger) *notify.Gate {
	var sender notify.Sender

	if config.SMTP != nil && config.SMTP.Host != "" {
		password := ""
		if config.SMTP.PasswordFile != "" {
			var err error
			password, err = secrets.Load(secrets.Source{
				Name: "smtp password",
				File: config.SMTP.PasswordFile,
			})
			if err != nil {
				l.Fatal("loading smtp password", zap.Error(err))
			}
		}

		sender = &notify.SMTPSender{
			Host:     config.SMTP.Host,
			Port:     config.SMTP.Port,
			Username: config.SMTP.Username,
			Password: password,
			From:     config.SMTP.From,
		}
	} else {
		l.Warn("smtp is not configured, notifications will be logged only")
		sender = notify.NopSender{}
	}

	return notify.NewGate(sender, config.SiteURL, l)
}

func newChecker(config *Config, s *store.Store, l *zap.Logger) *alerts.Checker {
	return alerts.NewChecker(s, newSearchClient(config, l), newEngine(config), newGate(config, l), l)
}
