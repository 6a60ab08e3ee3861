package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/router"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "fsroutes.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "fsroutes.yaml"

	// DefaultPagesDir is the default page directory.
	DefaultPagesDir = "pages"

	// DefaultServerDir is the default server directory. Endpoints live in
	// its api and routes subdirectories.
	DefaultServerDir = "server"

	// DefaultIgnorePrefix marks files and directories the scanners skip.
	DefaultIgnorePrefix = "_"

	// DefaultInspectHost is the default inspector host.
	DefaultInspectHost = "localhost"

	// DefaultInspectPort is the default inspector port.
	DefaultInspectPort = 3100

	// DefaultWatchInterval is the default polling interval.
	DefaultWatchInterval = "250ms"
)

// configFileNames are tried in order by Load.
var configFileNames = []string{ConfigFileName, YAMLConfigFileName, "fsroutes.yml"}

// Config represents the complete fsroutes configuration.
type Config struct {
	// PagesDir is the page directory, relative to the project root.
	PagesDir string `json:"pagesDir,omitempty" yaml:"pagesDir,omitempty"`

	// ServerDir is the server directory, relative to the project root.
	ServerDir string `json:"serverDir,omitempty" yaml:"serverDir,omitempty"`

	// Extensions are the route file extensions, with leading dot.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// IgnorePrefix marks files and directories to skip.
	IgnorePrefix string `json:"ignorePrefix,omitempty" yaml:"ignorePrefix,omitempty"`

	// Inspect contains route inspector settings.
	Inspect InspectConfig `json:"inspect,omitempty" yaml:"inspect,omitempty"`

	// Watch contains file watcher settings.
	Watch WatchConfig `json:"watch,omitempty" yaml:"watch,omitempty"`

	// root is the project root directory.
	root string

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectConfig contains route inspector settings.
type InspectConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// WatchConfig contains file watcher settings.
type WatchConfig struct {
	// Interval is the polling interval as a duration string (e.g., "250ms").
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`

	// Ignore contains glob patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// New creates a new Config with default values rooted at the working
// directory.
func New() *Config {
	c := &Config{root: "."}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory. It looks for
// fsroutes.json, then fsroutes.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("R120").
		WithDetail("No fsroutes.json or fsroutes.yaml found in " + dir).
		WithSuggestion("Run 'fsroutes init' to create one, or rely on the defaults")
}

// LoadOrDefault is Load, returning defaults rooted at dir when no config
// file exists.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "R120") {
		cfg = New()
		cfg.root = dir
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R120").
				WithDetail("No config file at " + path).
				WithFiles(path)
		}
		return nil, errors.New("R121").WithFiles(path).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("R121").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithFiles(path).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.root = filepath.Dir(path)
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on its extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("R121").WithFiles(path).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R121").WithFiles(path).Wrap(err)
	}

	c.configPath = path
	c.root = filepath.Dir(path)
	return nil
}

// Path returns the path where the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Root returns the absolute project root.
func (c *Config) Root() string {
	root, err := filepath.Abs(c.root)
	if err != nil {
		return c.root
	}
	return root
}

// SetRoot changes the project root without reloading.
func (c *Config) SetRoot(dir string) {
	c.root = dir
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.PagesDir == "" {
		c.PagesDir = DefaultPagesDir
	}
	if c.ServerDir == "" {
		c.ServerDir = DefaultServerDir
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), router.DefaultExtensions...)
	}
	if c.IgnorePrefix == "" {
		c.IgnorePrefix = DefaultIgnorePrefix
	}
	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultInspectHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultInspectPort
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = DefaultWatchInterval
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("R122").
			WithDetail("inspect.port must be between 0 and 65535").
			WithFiles(c.configFiles()...)
	}

	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil || d <= 0 {
		return errors.New("R122").
			WithDetail("watch.interval must be a positive duration such as \"250ms\", got " + strconv.Quote(c.Watch.Interval)).
			WithFiles(c.configFiles()...)
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.New("R122").
				WithDetail("extensions must start with a dot, got " + strconv.Quote(ext)).
				WithFiles(c.configFiles()...)
		}
	}

	for _, pattern := range c.Watch.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.New("R122").
				WithDetail("watch.ignore has a malformed pattern " + strconv.Quote(pattern)).
				WithFiles(c.configFiles()...).
				Wrap(err)
		}
	}
	return nil
}

func (c *Config) configFiles() []string {
	if c.configPath == "" {
		return nil
	}
	return []string{c.configPath}
}

// WatchInterval returns the parsed polling interval, falling back to the
// default when the configured value is malformed.
func (c *Config) WatchInterval() time.Duration {
	if d, err := time.ParseDuration(c.Watch.Interval); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultWatchInterval)
	return d
}

// InspectAddress returns the address string for the route inspector.
func (c *Config) InspectAddress() string {
	return net.JoinHostPort(c.Inspect.Host, strconv.Itoa(c.Inspect.Port))
}

// resolve returns path made absolute against the project root.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root(), path)
}

// PagesPath returns the absolute path to the page directory.
func (c *Config) PagesPath() string {
	return c.resolve(c.PagesDir)
}

// ServerPath returns the absolute path to the server directory.
func (c *Config) ServerPath() string {
	return c.resolve(c.ServerDir)
}

// EndpointPath returns the absolute directory scanned for endpoints of kind.
func (c *Config) EndpointPath(kind router.EndpointKind) string {
	return filepath.Join(c.ServerPath(), kind.String())
}

// ScannerOptions returns the scanner options the config describes.
func (c *Config) ScannerOptions() []router.ScannerOption {
	return []router.ScannerOption{
		router.WithExtensions(c.Extensions...),
		router.WithIgnorePrefix(c.IgnorePrefix),
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories from startDir to find the project
// root: the nearest directory holding a config file or, failing that, the
// nearest one holding a pages directory.
func FindProjectRoot(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	var withPages string
	for dir := start; ; {
		if Exists(dir) {
			return dir, nil
		}
		if withPages == "" && isDir(filepath.Join(dir, DefaultPagesDir)) {
			withPages = dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if withPages != "" {
		return withPages, nil
	}
	return "", errors.New("R123").
		WithDetail("No fsroutes.json, fsroutes.yaml or pages directory found in " + startDir + " or any parent directory").
		WithSuggestion("Run the command from a project directory or pass --dir")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
