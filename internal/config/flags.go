package config

import (
	"flag"
	"os"

	"github.com/loopjournal/loop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-l string   path of the on-device SQLite database
//	-r string   DSN of the hosted sync database
//	-sync       enable the remote backend
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-r", "-sync"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDSN, "l", cfg.LocalDSN, "path of the local database")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "DSN of the remote sync database")
	fs.BoolVar(&cfg.SyncEnabled, "sync", cfg.SyncEnabled, "enable the remote backend")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
