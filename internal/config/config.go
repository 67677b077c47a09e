package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// FileName is the env file read from the tool root when --env-file is not given.
const FileName = "compose.env"

// Config captures the settings stored in compose.env. Keys the struct does
// not model are preserved in Extra so they still reach the compose process.
type Config struct {
	ComposeProfile     string
	DevSourcePath      string
	SrcDir             string
	ComposeBinary      string
	ComposeProjectName string
	APIHost            string
	APIPort            string
	APIProtocol        string
	APIRoot            string
	Extra              map[string]string
}

var (
	// ErrInvalidBinary indicates COMPOSE_BINARY names an unsupported engine.
	ErrInvalidBinary = errors.New("COMPOSE_BINARY must be podman or docker")
	// ErrInvalidPort indicates API_PORT is not a port number.
	ErrInvalidPort = errors.New("API_PORT must be a number between 1 and 65535")
)

// Default returns the baseline configuration for a tool checkout at root.
func Default(root string) Config {
	cfg := Config{}
	cfg.applyDefaults(root)
	return cfg
}

func (c *Config) applyDefaults(root string) {
	if c.SrcDir == "" {
		c.SrcDir = filepath.Dir(filepath.Clean(root))
	}
	if c.ComposeBinary == "" {
		c.ComposeBinary = "podman"
	} else {
		c.ComposeBinary = strings.ToLower(c.ComposeBinary)
	}
	if c.ComposeProjectName == "" {
		c.ComposeProjectName = "oci_env"
	}
	if c.APIHost == "" {
		c.APIHost = "localhost"
	}
	if c.APIPort == "" {
		c.APIPort = "5001"
	}
	if c.APIProtocol == "" {
		c.APIProtocol = "http"
	}
	if c.APIRoot == "" {
		c.APIRoot = "/pulp/"
	}
	if c.Extra == nil {
		c.Extra = map[string]string{}
	}
}

// Validate ensures the configuration can drive the engine.
func (c Config) Validate() error {
	switch c.ComposeBinary {
	case "podman", "docker":
	default:
		return ErrInvalidBinary
	}
	port, err := strconv.Atoi(c.APIPort)
	if err != nil || port < 1 || port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// Load reads the env file at path. A missing file yields Default(root).
func Load(root, path string) (Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(root), nil
		}
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := fromMap(values)
	cfg.applyDefaults(root)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Exists reports whether an env file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fromMap(values map[string]string) Config {
	cfg := Config{Extra: map[string]string{}}
	for key, value := range values {
		if field := cfg.field(key); field != nil {
			*field = value
			continue
		}
		cfg.Extra[key] = value
	}
	return cfg
}

func (c *Config) field(key string) *string {
	switch key {
	case "COMPOSE_PROFILE":
		return &c.ComposeProfile
	case "DEV_SOURCE_PATH":
		return &c.DevSourcePath
	case "SRC_DIR":
		return &c.SrcDir
	case "COMPOSE_BINARY":
		return &c.ComposeBinary
	case "COMPOSE_PROJECT_NAME":
		return &c.ComposeProjectName
	case "API_HOST":
		return &c.APIHost
	case "API_PORT":
		return &c.APIPort
	case "API_PROTOCOL":
		return &c.APIProtocol
	case "API_ROOT":
		return &c.APIRoot
	}
	return nil
}

// Map returns every setting keyed by its env name.
func (c Config) Map() map[string]string {
	m := make(map[string]string, len(c.Extra)+9)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["COMPOSE_PROFILE"] = c.ComposeProfile
	m["DEV_SOURCE_PATH"] = c.DevSourcePath
	m["SRC_DIR"] = c.SrcDir
	m["COMPOSE_BINARY"] = c.ComposeBinary
	m["COMPOSE_PROJECT_NAME"] = c.ComposeProjectName
	m["API_HOST"] = c.APIHost
	m["API_PORT"] = c.APIPort
	m["API_PROTOCOL"] = c.APIProtocol
	m["API_ROOT"] = c.APIRoot
	return m
}

// Environ renders the settings as sorted KEY=VALUE pairs.
func (c Config) Environ() []string {
	m := c.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+m[k])
	}
	return env
}

// Projects splits DEV_SOURCE_PATH into project names, dropping empty entries.
func (c Config) Projects() []string {
	return splitList(c.DevSourcePath)
}

// Profiles splits COMPOSE_PROFILE into profile names.
func (c Config) Profiles() []string {
	return splitList(c.ComposeProfile)
}

// StatusURL is the API endpoint polled for readiness.
func (c Config) StatusURL(apiRoot string) string {
	if apiRoot == "" {
		apiRoot = c.APIRoot
	}
	if !strings.HasPrefix(apiRoot, "/") {
		apiRoot = "/" + apiRoot
	}
	if !strings.HasSuffix(apiRoot, "/") {
		apiRoot += "/"
	}
	return fmt.Sprintf("%s://%s:%s%sapi/v3/status/", c.APIProtocol, c.APIHost, c.APIPort, apiRoot)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ":") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
