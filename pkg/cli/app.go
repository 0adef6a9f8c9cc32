// Package cli wires the regwatch commands: dataset import, entity
// linking, network and temporal analysis, risk scoring, and the local
// API server.
package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
	"github.com/civicsignal/regwatch/pkg/logging"
	"github.com/civicsignal/regwatch/pkg/states"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite database file",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	stateFlag = &urfave.StringFlag{
		Name:  "state",
		Usage: "Two-letter state code scoping the operation (e.g. MD)",
	}

	statesFileFlag = &urfave.StringFlag{
		Name:  "states-file",
		Usage: "Path to a YAML state table overriding the embedded one",
	}

	engineFileFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Path to a YAML engine tuning file overriding the defaults",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultLogger(false)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	DBPath   string
	State    string
	Debug    bool
	DB       *sql.DB
	Profiles []*states.Profile
	Engine   entity.Config
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "regwatch",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for cross-linking state licensing and business registration records",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			formatFlag,
			stateFlag,
			statesFileFlag,
			engineFileFlag,
		},
		Commands: []*urfave.Command{
			authCmd,
			importCmd,
			linkCmd,
			analyzeCmd,
			geocodeCmd,
			requestCmd,
			reportCmd,
			serverCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultLogger(true)
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			dbPath := c.String(dbFilePathFlag.Name)
			if dbPath == "" {
				dbPath = path.Join(getHomeDir(), data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			profiles, err := loadProfiles(c.String(statesFileFlag.Name))
			if err != nil {
				return fmt.Errorf("loading state table: %w", err)
			}

			engine, err := loadEngineConfig(c.String(engineFileFlag.Name))
			if err != nil {
				return fmt.Errorf("loading engine config: %w", err)
			}

			state := c.String(stateFlag.Name)
			if state != "" {
				p, profileErr := states.Get(profiles, state)
				if profileErr != nil {
					return profileErr
				}
				state = p.Code
				engine = p.Apply(engine)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				DBPath:   dbPath,
				State:    state,
				Debug:    c.Bool(debugFlag.Name),
				DB:       db,
				Profiles: profiles,
				Engine:   engine,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// loadEngineConfig returns the default tuning, overlaid with a user YAML
// file when one is given. Fields absent from the file keep their defaults.
func loadEngineConfig(path string) (entity.Config, error) {
	engine := entity.DefaultConfig()
	if path == "" {
		return engine, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return engine, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &engine); err != nil {
		return engine, fmt.Errorf("parsing %s: %w", path, err)
	}
	return engine, nil
}

func loadProfiles(path string) ([]*states.Profile, error) {
	if path != "" {
		return states.LoadFile(path)
	}
	return states.Load()
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}

	dirName := ".regwatch"
	dirPath := filepath.Join(home, dirName)
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dirPath)
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			slog.Debug("error creating dir", "path", dirPath, "error", err)
			return home
		}
	}
	return dirPath
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
