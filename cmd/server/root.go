package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	port           int
	allowedOrigins []string
	clientURL      string
	postgresURL    string
	logLevel       string
	prettyLogs     bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if len(c.allowedOrigins) == 0 {
		return errors.New("at least one --allowed-origin is required")
	}
	return nil
}

func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.bind, c.port)
}

func newRootCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GUESSER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "afl-guesser",
		Short:         "Multiplayer guess-the-AFL-player game server.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSER_PORT)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origin", nil, "origin allowed to connect, repeatable (env: GUESSER_ALLOWED_ORIGIN)")
	fs.StringVar(&cfg.clientURL, "client-url", "http://localhost:3000", "web client base URL for short links (env: GUESSER_CLIENT_URL)")
	fs.StringVar(&cfg.postgresURL, "postgres-url", "", "postgres catalog URL; the embedded catalog is used when empty (env: GUESSER_POSTGRES_URL)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error (env: GUESSER_LOG_LEVEL)")
	fs.BoolVar(&cfg.prettyLogs, "pretty-logs", false, "human-readable console logs instead of JSON (env: GUESSER_PRETTY_LOGS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.AddCommand(newServeCmd(cfg))
	cmd.AddCommand(newImportCmd(cfg))

	return cmd
}
