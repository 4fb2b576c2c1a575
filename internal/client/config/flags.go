package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/quizera/internal/flagx"
)

// parseFlags populates cfg from command-line flags:
//
//	-a string   backend base URL override
//	-H string   host name used for backend detection
//	-d string   local data file
//	-t int      request timeout (seconds)
//	-g int      quiz generation timeout (seconds)
//	-i int      online check interval (seconds)
//	-l string   log level
//
// args is filtered with flagx.FilterArgs first so flags owned by other loaders
// (-c) do not break parsing. A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-H", "-d", "-t", "-g", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "backend base URL override")
	fs.StringVar(&cfg.Host, "H", cfg.Host, "host name used to pick the backend")
	fs.StringVar(&cfg.DataFile, "d", cfg.DataFile, "local data file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	generate := fs.Int("g", int(cfg.GenerateTimeout.Seconds()), "quiz generation timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.GenerateTimeout = time.Duration(*generate) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
