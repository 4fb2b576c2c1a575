// Package config loads runtime configuration for the QuizEra CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a .env file in the working directory is loaded first,
//     then QUIZERA_API_URL, QUIZERA_HOST, QUIZERA_DATA_FILE and
//     QUIZERA_LOG_LEVEL are read.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "api_url": "https://custom.example/api",
//	  "host": "myapp.vercel.app",
//	  "data_file": "/home/me/.quizera/quizera.db",
//	  "request_timeout": "30s",
//	  "online_check_interval": "10s",
//	  "log_level": "debug",
//	  "log_format": "json",
//	  "log_backend": "zap"
//	}
//
// APIURL and Host are the inputs of the backend locator; the resolved base
// URL is computed once at start-up and never changes afterwards.
package config
