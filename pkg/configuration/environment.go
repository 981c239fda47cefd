package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looking first in the working
// directory and then in the nearest parent holding a go.mod.
func LoadEnv(envFiles []string) (int, error) {
	root := moduleRoot()
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		switch {
		case fs.FileExists(file):
			existingFiles = append(existingFiles, file)
		case root != "" && !filepath.IsAbs(file) && fs.FileExists(filepath.Join(root, file)):
			existingFiles = append(existingFiles, filepath.Join(root, file))
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"orgnav"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type LocatorOptions struct {
	MaxAttempts int           `env:"ORGNAV_LOCATOR_MAX_ATTEMPTS" envDefault:"50"`
	Interval    time.Duration `env:"ORGNAV_LOCATOR_INTERVAL" envDefault:"100ms"`
	FitAttempt  int           `env:"ORGNAV_LOCATOR_FIT_ATTEMPT" envDefault:"3"`
}

func (o *LocatorOptions) Validate() error {
	if o.MaxAttempts <= 0 {
		return fmt.Errorf("locator max attempts must be positive, got %d", o.MaxAttempts)
	}
	if o.Interval <= 0 {
		return fmt.Errorf("locator interval must be positive, got %s", o.Interval)
	}
	if o.FitAttempt <= 0 || o.FitAttempt > o.MaxAttempts {
		return fmt.Errorf("locator fit attempt must be within [1,%d], got %d", o.MaxAttempts, o.FitAttempt)
	}
	return nil
}

// CanvasOptions configure the headless surface used by the CLI and the API.
type CanvasOptions struct {
	Width       float64       `env:"ORGNAV_SCREEN_WIDTH" envDefault:"1280"`
	Height      float64       `env:"ORGNAV_SCREEN_HEIGHT" envDefault:"800"`
	RenderDelay time.Duration `env:"ORGNAV_RENDER_DELAY" envDefault:"0s"`
	Virtualize  bool          `env:"ORGNAV_VIRTUALIZE" envDefault:"true"`
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	Locator    LocatorOptions
	Canvas     CanvasOptions

	// DataSource selects the entity provider: "file" or "postgres".
	DataSource  string `env:"ORGNAV_DATA_SOURCE" envDefault:"file"`
	DatasetPath string `env:"ORGNAV_DATASET" envDefault:"data/org.yaml"`
	AnchorsPath string `env:"ORGNAV_ANCHORS" envDefault:""`
	// NodesPath points at the renderer's node positions. Without it the
	// session mounts a grid placement derived from the hierarchy.
	NodesPath   string `env:"ORGNAV_NODES" envDefault:""`
	SearchLimit int    `env:"ORGNAV_SEARCH_LIMIT" envDefault:"10"`

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:""`
	// The API echoes this header back; a random uuidv4 is used when it is missing.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

// Load builds a configuration from the given env files without touching the singleton.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Locator.Validate(); err != nil {
		return fmt.Errorf("locator configuration error: %w", err)
	}
	if err := c.validateDataSource(); err != nil {
		return err
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("invalid ORGNAV_SEARCH_LIMIT=%d (expected > 0)", c.SearchLimit)
	}

	if strings.TrimSpace(c.LogPath) == "" {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
	} else {
		f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
		if err != nil {
			return err
		}
		c.logFile = f
		c.logger = logger
	}

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validateDataSource() error {
	source := strings.ToLower(strings.TrimSpace(c.DataSource))
	if source == "" {
		source = "file"
	}
	switch source {
	case "file", "postgres":
	default:
		return fmt.Errorf("invalid ORGNAV_DATA_SOURCE=%q (expected file|postgres)", c.DataSource)
	}
	c.DataSource = source
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
