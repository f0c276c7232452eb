// Package config loads server configuration from flags, the
// environment, and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ogforum/excovote/internal/auth"
)

// Config holds everything the server needs to start
type Config struct {
	Port       int
	DBPath     string
	LogLevel   string
	// BaseURL is the public URL of the nomination form, used in the
	// admin QR code. Point it at the frontend when one is deployed;
	// the default is this server, which answers with a service
	// landing page.
	BaseURL    string
	MatcherURL string // external matcher service, empty means in-process
	Admins     []auth.Admin
}

// Load parses args with environment fallbacks. A .env file in the
// working directory is folded into the environment first if present.
func Load(args []string) (Config, error) {
	// Missing .env is the normal case in production
	_ = godotenv.Load()

	var cfg Config
	var adminSpec string

	fs := flag.NewFlagSet("excovote", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 0, "Server port")
	fs.StringVar(&cfg.DBPath, "db", "", "Path to the SQLite database file")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL for the nomination form")
	fs.StringVar(&cfg.MatcherURL, "matcher-url", "", "External name matcher URL (optional)")
	fs.StringVar(&adminSpec, "admins", "", "Admin accounts (prefer EXCOVOTE_ADMINS env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("EXCOVOTE_DB")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "excovote.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("EXCOVOTE_LOG_LEVEL")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("EXCOVOTE_BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.MatcherURL == "" {
		cfg.MatcherURL = os.Getenv("EXCOVOTE_MATCHER_URL")
	}

	if adminSpec == "" {
		adminSpec = os.Getenv("EXCOVOTE_ADMINS")
	}
	if adminSpec == "" {
		return Config{}, errors.New("admin accounts required (use -admins or EXCOVOTE_ADMINS env)")
	}
	admins, err := ParseAdmins(adminSpec)
	if err != nil {
		return Config{}, err
	}
	cfg.Admins = admins

	return cfg, nil
}

// ParseAdmins parses a comma-separated admin list. Each entry is
// username:sha256hex or username:sha256hex:super.
func ParseAdmins(spec string) ([]auth.Admin, error) {
	var admins []auth.Admin
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("malformed admin entry %q (want username:sha256hex[:super])", entry)
		}

		admin := auth.Admin{
			Username:     strings.TrimSpace(parts[0]),
			PasswordHash: strings.ToLower(strings.TrimSpace(parts[1])),
		}
		if admin.Username == "" {
			return nil, fmt.Errorf("admin entry %q has an empty username", entry)
		}
		if len(admin.PasswordHash) != 64 {
			return nil, fmt.Errorf("admin entry %q: password hash must be hex sha256", entry)
		}
		if len(parts) == 3 {
			if parts[2] != "super" {
				return nil, fmt.Errorf("admin entry %q: third field must be \"super\"", entry)
			}
			admin.Super = true
		}

		admins = append(admins, admin)
	}

	if len(admins) == 0 {
		return nil, errors.New("no admin accounts defined")
	}
	return admins, nil
}
