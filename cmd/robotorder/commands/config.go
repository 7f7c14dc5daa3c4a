package commands

import (
	"fmt"
	"path/filepath"
	"robotorder/internal/browser"
	"robotorder/internal/notify"
	"robotorder/internal/pipeline"
	"robotorder/internal/submitter"
	"robotorder/lib/configutil"
	configlibsql "robotorder/lib/configutil/libsql"
	"time"
)

type BrowserConfig struct {
	// Headed shows the browser window, the browser runs headless otherwise.
	Headed    bool `json:"headed"`
	SlowMoMs  int  `json:"slowmo_ms"`
	TimeoutMs int  `json:"timeout_ms"`
	// Install downloads the playwright driver and chromium before the run.
	Install bool `json:"install"`
}

type Config struct {
	SiteUrl           string              `json:"site_url"`
	FeedUrl           string              `json:"feed_url"`
	FeedPath          string              `json:"feed_path"`
	OutputDir         string              `json:"output_dir"`
	MaxSubmitAttempts int                 `json:"max_submit_attempts"`
	ModalTimeoutMs    int                 `json:"modal_timeout_ms"`
	Browser           BrowserConfig       `json:"browser"`
	RunLog            configlibsql.Struct `json:"run_log"`
	// Notify mails a summary of every run, it is disabled unless a server and recipients are set.
	Notify  notify.Config `json:"notify"`
	Verbose bool          `json:"verbose"`
}

func defaultConfig() Config {
	return Config{
		SiteUrl:           "https://robotsparebinindustries.com/",
		FeedUrl:           "https://robotsparebinindustries.com/orders.csv",
		FeedPath:          "orders.csv",
		OutputDir:         "output",
		MaxSubmitAttempts: submitter.DefaultOptions().MaxAttempts,
		ModalTimeoutMs:    int(submitter.DefaultOptions().ModalTimeout.Milliseconds()),
		Browser: BrowserConfig{
			TimeoutMs: 30_000,
		},
	}
}

// ReadConfig reads the config at `path` (and its .local override) on top of the
// defaults, a missing file leaves every default in place.
func ReadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadWithDefaults(path, defaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg.RunLog.File == "" && cfg.RunLog.Url == "" {
		cfg.RunLog.File = filepath.Join(cfg.OutputDir, "runs.db")
	}
	if cfg.MaxSubmitAttempts < 0 {
		return Config{}, fmt.Errorf("max_submit_attempts must be positive, got %d", cfg.MaxSubmitAttempts)
	}
	return cfg, nil
}

func (c Config) Paths() pipeline.Paths {
	return pipeline.Paths{Output: c.OutputDir}
}

func (c Config) BrowserOptions() browser.Options {
	return browser.Options{
		Headless: !c.Browser.Headed,
		SlowMo:   time.Duration(c.Browser.SlowMoMs) * time.Millisecond,
		Timeout:  time.Duration(c.Browser.TimeoutMs) * time.Millisecond,
		Install:  c.Browser.Install,
	}
}

func (c Config) SubmitterOptions() submitter.Options {
	return submitter.Options{
		MaxAttempts:  c.MaxSubmitAttempts,
		ModalTimeout: time.Duration(c.ModalTimeoutMs) * time.Millisecond,
	}
}
