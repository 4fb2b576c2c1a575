package config

import (
	"log"
	"os"
	"time"
)

// Config holds runtime settings for the QuizEra CLI.
//
// Fields:
//   - APIURL: explicit backend base URL; when set it wins over host detection.
//   - Host: host name the client runs under, fed to the backend locator.
//   - DataFile: SQLite file holding the session and the generation history.
//   - RequestTimeout: upper bound for a single backend request.
//   - GenerateTimeout: upper bound for a quiz generation request.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - LogLevel / LogFormat / LogBackend: see logging.New.
type Config struct {
	APIURL              string
	Host                string
	DataFile            string
	RequestTimeout      time.Duration
	GenerateTimeout     time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
	LogBackend          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = ""
	c.Host = "localhost"
	c.DataFile = "quizera.db"
	c.RequestTimeout = 30 * time.Second
	c.GenerateTimeout = 2 * time.Minute
	c.OnlineCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = "slog"
}

// SecretFile is the path of the device secret that seals the persisted
// session. It lives next to DataFile.
func (c *Config) SecretFile() string {
	return c.DataFile + ".key"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), a JSON file (if given) and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, ".env"); err != nil {
		log.Printf("ignoring dotenv file: %v", err)
	}
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
