package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkoval-dev/peercall/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-n string   NATS cluster URL
//	-d string   PostgreSQL DSN
//	-l string   path of the local SQLite identity cache
//	-r string   call-engine room
//	-t int      invitation ring/ack timeout in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-n", "-d", "-l", "-r", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.NatsURL, "n", cfg.NatsURL, "NATS cluster URL")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.LocalDBPath, "l", cfg.LocalDBPath, "path of the local identity cache")
	fs.StringVar(&cfg.CallRoom, "r", cfg.CallRoom, "call-engine room")
	inviteTimeout := fs.Int("t", int(cfg.InviteTimeout.Seconds()), "invitation timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.InviteTimeout = time.Duration(*inviteTimeout) * time.Second
}
