package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/quizera/internal/flagx"
	"github.com/dmitrijs2005/quizera/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "30s" or as nanoseconds. Empty
// values leave the corresponding Config field untouched.
type JsonConfig struct {
	APIURL              string         `json:"api_url"`
	Host                string         `json:"host"`
	DataFile            string         `json:"data_file"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	GenerateTimeout     timex.Duration `json:"generate_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
	LogBackend          string         `json:"log_backend"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config
// in args. Without the flag it does nothing. It panics on read or unmarshal
// errors, like parseFlags does on bad flags.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.Host, jc.Host)
	setString(&cfg.DataFile, jc.DataFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.GenerateTimeout.Duration > 0 {
		cfg.GenerateTimeout = jc.GenerateTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
