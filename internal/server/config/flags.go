package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-m string   metrics bind address (e.g., ":9100")
//	-a bool     apply migrations on startup
//	-n int      maximum open database connections
//	-t int      connection max lifetime, minutes
//	-l string   log level (debug, info, warn, error)
//
// Arguments are first narrowed with flagx.FilterArgs so flags owned by other
// components (-c) do not trip the parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-m", "-a", "-n", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address")
	fs.BoolVar(&config.AutoMigrate, "a", config.AutoMigrate, "apply migrations on startup")
	fs.IntVar(&config.MaxOpenConns, "n", config.MaxOpenConns, "max open connections")
	connMaxLifetime := fs.Int("t", int(config.ConnMaxLifetime.Minutes()), "connection max lifetime (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConnMaxLifetime = time.Duration(*connMaxLifetime) * time.Minute
}
