package ioc

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
)

// Template file names written by GenerateTemplates.
const (
	AppConfigFile  = "app-config.json"
	PropertiesFile = "application-properties.json"

	templatesLockFile = ".ioc-templates.lock"
)

// Environment variables applied on top of a loaded Config.
const (
	EnvPropertiesPath = "IOC_PROPERTIES_PATH"
	EnvServerHost     = "IOC_SERVER_HOST"
	EnvServerPort     = "IOC_SERVER_PORT"
	EnvDatabaseURI    = "IOC_DATABASE_URI"
)

// ServerConfig is the address the HTTP boundary listens on.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Config is the application configuration. It is separate from the
// properties document: it locates that document and describes the
// boundaries around the container.
type Config struct {
	PropertiesPath string       `json:"properties_file_path"`
	Server         ServerConfig `json:"server_config"`
	DatabaseURI    string       `json:"database_uri"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		PropertiesPath: PropertiesFile,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DatabaseURI: "sqlite:///:memory:",
	}
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// LoadConfig reads the JSON configuration at path over DefaultConfig, then
// applies environment overrides. The given .env files are loaded first
// (".env" when none are given); a missing .env file is not an error.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrapf(err, "could not load environment file %s", f)
		}
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "could not read config file %s", path)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, pkgerrors.Wrapf(err, "could not parse config file %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPropertiesPath); v != "" {
		c.PropertiesPath = v
	}
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid %s=%q", EnvServerPort, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvDatabaseURI); v != "" {
		c.DatabaseURI = v
	}
	return nil
}

// GenerateTemplates writes the configuration and properties templates into
// dir unless they already exist. It returns the paths it wrote. Concurrent
// generators on the same dir are serialized with a file lock.
func GenerateTemplates(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrapf(err, "could not create template dir %s", dir)
	}

	lock := flock.New(filepath.Join(dir, templatesLockFile))
	if err := lock.Lock(); err != nil {
		return nil, pkgerrors.Wrapf(err, "could not lock template dir %s", dir)
	}
	defer lock.Unlock()

	cfg := DefaultConfig()
	cfg.PropertiesPath = filepath.Join(dir, PropertiesFile)

	templates := []struct {
		name    string
		content any
	}{
		{AppConfigFile, cfg},
		{PropertiesFile, map[string]any{}},
	}

	var written []string
	for _, tpl := range templates {
		target := filepath.Join(dir, tpl.name)

		if _, err := os.Stat(target); err == nil {
			slog.Info("template already exists", "path", target)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return written, pkgerrors.Wrapf(err, "could not stat %s", target)
		}

		data, err := json.MarshalIndent(tpl.content, "", "  ")
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
			return written, pkgerrors.Wrapf(err, "could not write template %s", target)
		}

		slog.Info("template generated", "path", target)
		written = append(written, target)
	}

	return written, nil
}
