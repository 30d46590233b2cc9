package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/cvtopo/pkg/cache"
	"github.com/matzehuels/cvtopo/pkg/configlet"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
	"github.com/matzehuels/cvtopo/pkg/server"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// configFile is the name searched in the working directory and the user
// config directory.
const configFile = appName + ".toml"

// Config holds settings shared by all commands. Values are resolved in the
// order flag, environment, config file, default.
type Config struct {
	ReservedRoot       string `toml:"reserved_root"`
	ConfigletPrefix    string `toml:"configlet_prefix"`
	ConfigletExtension string `toml:"configlet_extension"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`

	// Path is the config file that was loaded, if any.
	Path string `toml:"-"`
	// Unknown lists keys in the file that matched no setting.
	Unknown []string `toml:"-"`
}

type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	Size     int    `toml:"size"`
	RedisURL string `toml:"redis_url"`
}

type StoreConfig struct {
	// URI is a directory or a mongodb:// connection string.
	URI string `toml:"uri"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in settings.
func defaultConfig() *Config {
	cfg := &Config{
		ReservedRoot:       topology.DefaultReservedRoot,
		ConfigletPrefix:    pipeline.DefaultConfigletPrefix,
		ConfigletExtension: configlet.DefaultExtension,
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Size:    cache.DefaultMemorySize,
		},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
	if dir, err := cacheDir(); err == nil {
		cfg.Cache.Dir = dir
	}
	if dir, err := dataDir(); err == nil {
		cfg.Store.URI = filepath.Join(dir, "snapshots")
	}
	return cfg
}

// loadConfig loads .env, then the config file at path (or the first one
// found in the search path when path is empty), then CVTOPO_* overrides.
func loadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path == "" {
		path = os.Getenv("CVTOPO_CONFIG")
	}
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c.Path = path
	for _, key := range md.Undecoded() {
		c.Unknown = append(c.Unknown, key.String())
	}
	return nil
}

// applyEnv overrides settings from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CVTOPO_RESERVED_ROOT":       &c.ReservedRoot,
		"CVTOPO_CONFIGLET_PREFIX":    &c.ConfigletPrefix,
		"CVTOPO_CONFIGLET_EXTENSION": &c.ConfigletExtension,
		"CVTOPO_CACHE_BACKEND":       &c.Cache.Backend,
		"CVTOPO_CACHE_DIR":           &c.Cache.Dir,
		"CVTOPO_REDIS_URL":           &c.Cache.RedisURL,
		"CVTOPO_STORE":               &c.Store.URI,
		"CVTOPO_ADDR":                &c.Server.Addr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("CVTOPO_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("CVTOPO_CACHE_SIZE: invalid size %q", v)
		}
		c.Cache.Size = n
	}
	return nil
}

// cacheConfig converts the settings for cache.Open.
func (c *Config) cacheConfig() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		Size:     c.Cache.Size,
		RedisURL: c.Cache.RedisURL,
	}
}

func findConfig() string {
	candidates := []string{configFile}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, configFile))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
