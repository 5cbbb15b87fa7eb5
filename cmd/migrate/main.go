package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/logger"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up              apply every pending migration
  down            roll back every migration
  steps <n>       apply n migrations, or roll back when n is negative
  goto <version>  migrate up or down to an exact version
  force <version> mark a version as applied without running it
  version         print the current version and dirty flag

Flags:
`

// command is a parsed CLI invocation. arg is only meaningful for steps, goto and force.
type command struct {
	name string
	arg  int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	cmd := command{name: strings.ToLower(args[0])}
	switch cmd.name {
	case "up", "down", "version":
		return cmd, nil
	case "steps", "goto", "force":
		if len(args) < 2 {
			return command{}, fmt.Errorf("%s requires a numeric argument", cmd.name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("%s: invalid number %q", cmd.name, args[1])
		}
		if cmd.name != "steps" && n < 0 {
			return command{}, fmt.Errorf("%s: version must not be negative", cmd.name)
		}
		if cmd.name == "steps" && n == 0 {
			return command{}, errors.New("steps: n must not be zero")
		}
		cmd.arg = n
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", args[0])
	}
}

// migrateLogger routes golang-migrate progress output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func run(m *migrate.Migrate, cmd command, log zerolog.Logger) error {
	var err error
	switch cmd.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(cmd.arg)
	case "goto":
		err = m.Migrate(uint(cmd.arg))
	case "force":
		err = m.Force(cmd.arg)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info().Msg("No migrations applied yet")
			return nil
		}
		if verr != nil {
			return verr
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("command", cmd.name).Msg("Schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("command", cmd.name).Int("arg", cmd.arg).Msg("Migration finished")
	return nil
}

func main() {
	var migrationDir string
	var verbose bool
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.BoolVar(&verbose, "verbose", false, "Log every migration step")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "migrate")

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		log.Error().Err(err).Msg("Invalid invocation")
		flag.Usage()
		os.Exit(2)
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Failed to initialize migrations")
	}
	m.Log = migrateLogger{log: log, verbose: verbose}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()

	if err := run(m, cmd, log); err != nil {
		log.Error().Err(err).Str("command", cmd.name).Msg("Migration failed")
		os.Exit(1)
	}
}
