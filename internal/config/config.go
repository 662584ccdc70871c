// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Images   ImageConfig    `mapstructure:"images"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HTTPConfig configures the fetch retry ladder.
type HTTPConfig struct {
	MaxAttempts        int     `mapstructure:"max_attempts"`
	BaseTimeoutSeconds float64 `mapstructure:"base_timeout_seconds"`
	TimeoutMultiplier  float64 `mapstructure:"timeout_multiplier"`
	UserAgent          string  `mapstructure:"user_agent"`
}

// PoolConfig sizes the acquisition worker pool, shared across categories.
type PoolConfig struct {
	Workers int `mapstructure:"workers"`
}

// ThrottleConfig shapes the randomized delay between categories.
type ThrottleConfig struct {
	BaseSeconds float64 `mapstructure:"base_seconds"`
	MaxSeconds  float64 `mapstructure:"max_seconds"`
	Growth      float64 `mapstructure:"growth"`
	Jitter      float64 `mapstructure:"jitter"`
}

// SheetConfig describes the master workbook layout.
type SheetConfig struct {
	Name            string            `mapstructure:"name"`
	CategoryColumn  int               `mapstructure:"category_column"`
	ColumnLetters   map[string]string `mapstructure:"column_letters"`
	ExcludedFields  []string          `mapstructure:"excluded_fields"`
	FullWidthFields []string          `mapstructure:"full_width_fields"`
}

// ImageConfig controls resize geometry and workbook cell sizing.
type ImageConfig struct {
	ResizeWidth  int     `mapstructure:"resize_width"`
	ResizeHeight int     `mapstructure:"resize_height"`
	ColumnWidth  float64 `mapstructure:"column_width"`
	RowHeight    float64 `mapstructure:"row_height"`
}

// OutputConfig sets the results tree and scratch directory locations.
// An empty ResultsDir anchors the tree at the user's desktop; an empty
// WorkDir means a per-run directory under the system temp dir.
type OutputConfig struct {
	ResultsDir  string `mapstructure:"results_dir"`
	ExcelSubdir string `mapstructure:"excel_subdir"`
	HTMLSubdir  string `mapstructure:"html_subdir"`
	WorkDir     string `mapstructure:"work_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRONOGRAMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.base_timeout_seconds", 10.0)
	v.SetDefault("http.timeout_multiplier", 1.5)
	v.SetDefault("http.user_agent", "cronograma/0.1")
	v.SetDefault("pool.workers", DefaultWorkers())
	v.SetDefault("throttle.base_seconds", 5.0)
	v.SetDefault("throttle.max_seconds", 12.0)
	v.SetDefault("throttle.growth", 1.5)
	v.SetDefault("throttle.jitter", 0.2)
	v.SetDefault("sheet.name", "Export")
	v.SetDefault("sheet.category_column", 2)
	v.SetDefault("sheet.column_letters", map[string]string{
		"24": "Y",
		"25": "Z",
		"26": "AA",
		"27": "AB",
		"28": "AC",
		"29": "AD",
	})
	v.SetDefault("sheet.excluded_fields", []string{
		"Conca-1",
		"Total Horas",
		"Recorridospedestres",
		"Recuento de Combinada",
	})
	v.SetDefault("sheet.full_width_fields", []string{"ObservacionesHallazgo"})
	v.SetDefault("images.resize_width", 300)
	v.SetDefault("images.resize_height", 300)
	v.SetDefault("images.column_width", 50.0)
	v.SetDefault("images.row_height", 245.0)
	v.SetDefault("output.excel_subdir", "hallazgos excel")
	v.SetDefault("output.html_subdir", "hallazgos html")
	v.SetDefault("logging.development", true)
}

// DefaultWorkers computes the fixed pool size from the core count.
func DefaultWorkers() int {
	n := runtime.NumCPU()*2 + 4
	if n > 32 {
		n = 32
	}
	return n
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.HTTP.BaseTimeoutSeconds <= 0 {
		return fmt.Errorf("http.base_timeout_seconds must be > 0")
	}
	if c.HTTP.TimeoutMultiplier < 1 {
		return fmt.Errorf("http.timeout_multiplier must be >= 1")
	}
	if c.Pool.Workers <= 0 {
		return fmt.Errorf("pool.workers must be > 0")
	}
	if c.Throttle.Jitter < 0 || c.Throttle.Jitter >= 1 {
		return fmt.Errorf("throttle.jitter must be in [0, 1)")
	}
	if c.Sheet.Name == "" {
		return fmt.Errorf("sheet.name must be set")
	}
	if c.Sheet.CategoryColumn <= 0 {
		return fmt.Errorf("sheet.category_column must be > 0")
	}
	if len(c.Sheet.ColumnLetters) == 0 {
		return fmt.Errorf("sheet.column_letters must not be empty")
	}
	for k, letter := range c.Sheet.ColumnLetters {
		if _, err := strconv.Atoi(k); err != nil {
			return fmt.Errorf("sheet.column_letters key %q is not a column index", k)
		}
		if letter == "" {
			return fmt.Errorf("sheet.column_letters[%s] must not be empty", k)
		}
	}
	if c.Images.ResizeWidth <= 0 || c.Images.ResizeHeight <= 0 {
		return fmt.Errorf("images.resize_width and images.resize_height must be > 0")
	}
	return nil
}

// BaseTimeout returns the first-attempt fetch timeout.
func (c Config) BaseTimeout() time.Duration {
	return time.Duration(c.HTTP.BaseTimeoutSeconds * float64(time.Second))
}

// ImageColumns returns the configured image-column keys in ascending order.
func (c Config) ImageColumns() []int {
	cols := make([]int, 0, len(c.Sheet.ColumnLetters))
	for k := range c.Sheet.ColumnLetters {
		if n, err := strconv.Atoi(k); err == nil {
			cols = append(cols, n)
		}
	}
	sort.Ints(cols)
	return cols
}

// ColumnLetterMap returns the image-column map keyed by integer index.
func (c Config) ColumnLetterMap() map[int]string {
	m := make(map[int]string, len(c.Sheet.ColumnLetters))
	for k, letter := range c.Sheet.ColumnLetters {
		if n, err := strconv.Atoi(k); err == nil {
			m[n] = letter
		}
	}
	return m
}

// ColumnLetter resolves an image-column key to its workbook column letter.
func (c Config) ColumnLetter(col int) (string, bool) {
	letter, ok := c.Sheet.ColumnLetters[strconv.Itoa(col)]
	return letter, ok
}

// IsImageColumn reports whether the 0-based cell index is an image column.
func (c Config) IsImageColumn(col int) bool {
	_, ok := c.Sheet.ColumnLetters[strconv.Itoa(col)]
	return ok
}
