package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog/migrations"
	"github.com/SexyZoe/AFL-Player-Guesser-sub000/logger"
)

func newImportCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <players.csv|players.json>",
		Short: "Load a player dump into the postgres catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.postgresURL == "" {
				return fmt.Errorf("import requires --postgres-url")
			}
			return runImport(cmd, cfg, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, cfg *Config, path string) error {
	log := logger.New(cfg.logLevel, cfg.prettyLogs)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var players []catalog.Player
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		players, err = catalog.ReadCSV(f)
	case ".json":
		players, err = catalog.ReadJSON(f)
	default:
		return fmt.Errorf("unsupported file extension %q (want .csv or .json)", ext)
	}
	if err != nil {
		return err
	}

	cleaned := catalog.Normalize(players)
	if len(cleaned) == 0 {
		return fmt.Errorf("%s contains no usable players", path)
	}
	log.Info().
		Int("parsed", len(players)).
		Int("kept", len(cleaned)).
		Msg("player dump normalized")

	if err := migrations.Migrate(cfg.postgresURL); err != nil {
		return err
	}
	repo, err := catalog.NewPostgresRepo(cmd.Context(), cfg.postgresURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ReplaceAll(cmd.Context(), cleaned); err != nil {
		return err
	}
	log.Info().Int("players", len(cleaned)).Msg("catalog replaced")
	return nil
}
