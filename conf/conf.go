package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codetrek/needle/shared/running"
	fsutils "github.com/codetrek/needle/utils/fs"
)

const (
	DefaultHomeDir = ".needle"

	DefaultLogMaxSize    = 10 // megabytes
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28 // days

	// Workers above NumCPU*MaxWorkersPerCPU are clamped back to NumCPU.
	MaxWorkersPerCPU = 4

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	LevelInfo  = "info"
	LevelDebug = "debug"
)

type Search struct {
	Workers      int      `yaml:"workers,omitempty"`
	Hidden       bool     `yaml:"hidden,omitempty"`
	UseGitIgnore bool     `yaml:"use_git_ignore,omitempty"`
	Exclude      []string `yaml:"exclude,omitempty"`
}

type Output struct {
	SeparateTables bool   `yaml:"separate_tables,omitempty"`
	Color          string `yaml:"color,omitempty"`
}

type Logging struct {
	Stderr     bool   `yaml:"stderr,omitempty"`
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAge     int    `yaml:"max_age,omitempty"`
}

type Conf struct {
	HomePath string  `yaml:"home_path,omitempty"`
	Search   Search  `yaml:"search,omitempty"`
	Output   Output  `yaml:"output,omitempty"`
	Logging  Logging `yaml:"logging,omitempty"`
}

var conf *Conf

var confFile string

// Get returns the loaded configuration, or the defaults if nothing was loaded.
func Get() *Conf {
	if conf == nil {
		conf = defaults(defaultHomePath())
	}
	return conf
}

// File returns the path of the loaded config file ("" if none existed).
func File() string {
	return confFile
}

func defaultHomePath() string {
	return filepath.Join(running.UserHomeDir(), DefaultHomeDir)
}

// SearchPaths lists the locations Load looks at, in order.
func SearchPaths() []string {
	return []string{
		filepath.Join(running.ExecutablePath(), "config.local.yaml"),
		filepath.Join(defaultHomePath(), "config.yaml"),
		filepath.Join(running.ExecutablePath(), "config.yaml"),
	}
}

// Load reads the first config file found in SearchPaths. No file at all is
// fine: the defaults are used.
func Load() error {
	confFile = ""
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			confFile = path
			break
		}
	}

	if confFile == "" {
		conf = defaults(defaultHomePath())
		normalize(conf)
		return nil
	}

	return LoadFile(confFile)
}

// LoadFile reads the configuration from path. A missing file yields the
// defaults; malformed YAML is an error.
func LoadFile(path string) error {
	c := defaults(defaultHomePath())

	confBytes, err := fsutils.ReadFileOr(path, []byte(``))
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(confBytes, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	normalize(c)
	conf = c
	confFile = path
	return nil
}

func defaults(homePath string) *Conf {
	return &Conf{
		HomePath: homePath,
		Search: Search{
			Workers: runtime.NumCPU(),
		},
		Output: Output{
			Color: ColorAuto,
		},
		Logging: Logging{
			Level:      LevelInfo,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
		},
	}
}

func normalize(c *Conf) {
	if c.HomePath == "" {
		c.HomePath = defaultHomePath()
	}

	if c.Search.Workers <= 0 || c.Search.Workers > runtime.NumCPU()*MaxWorkersPerCPU {
		c.Search.Workers = runtime.NumCPU()
	}

	switch c.Output.Color = strings.ToLower(c.Output.Color); c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		c.Output.Color = ColorAuto
	}

	switch c.Logging.Level = strings.ToLower(c.Logging.Level); c.Logging.Level {
	case LevelInfo, LevelDebug:
	default:
		c.Logging.Level = LevelInfo
	}

	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.HomePath, "logs", "needle.log")
	}

	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = DefaultLogMaxSize
	}

	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}

	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = DefaultLogMaxAge
	}
}
