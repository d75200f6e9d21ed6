package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/screen"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TIMESHEET"

var (
	cfgFile string
	cfg     *internal.Config
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Timesheet Management",
	Long:  `Submit daily work logs, review them as an admin, and run the reference API server.`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		// the server logs to stdout; the CLI keeps its log out of the terminal
		opts := logger.Options{
			Env:          os.Getenv("APP_ENV"),
			Level:        cfg.Logging.Level,
			Format:       cfg.Logging.Format,
			File:         internal.ExpandHome(cfg.Logging.File),
			Console:      cfg.Logging.Level == "debug",
			ConsoleLevel: "debug",
		}
		if cmd.Name() == serveCommandName {
			opts.File = ""
			opts.Console = false
		}
		if opts.File != "" {
			if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		logger.Setup(opts)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !screen.IsReported(err) {
			color.New(color.FgRed).Fprintln(os.Stderr, "Error:", screen.Message(err))
		}
		os.Exit(1)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.user_agent", "timesheet-cli")

	v.SetDefault("session.driver", "file")
	v.SetDefault("session.path", "~/.timesheet/session.json")
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.prefix", "timesheet:session:")
	v.SetDefault("session.redis.timeout", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "~/.timesheet/timesheet.log")

	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.base_path", "/api")
	v.SetDefault("http_server.allowed_origins", "*")
	v.SetDefault("http_server.read_header_timeout", "5s")
	v.SetDefault("http_server.read_timeout", "15s")
	v.SetDefault("http_server.write_timeout", "30s")
	v.SetDefault("http_server.idle_timeout", "60s")
	v.SetDefault("http_server.auto_migrate", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.source", "timesheet.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	v.SetDefault("security.jwt_secret", "change-me-before-deploying-this-server")
	v.SetDefault("security.access_token_duration", "24h")
	v.SetDefault("security.bcrypt_cost", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func loadConfig(path string) (*internal.Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".timesheet"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var c internal.Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yml or ~/.timesheet/config.yml)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, tabsCmd)
	rootCmd.AddCommand(dashboardCmd, timesheetCmd, adminCmd)
	rootCmd.AddCommand(httpServerCmd, migrateCmd, seedCmd)
}
