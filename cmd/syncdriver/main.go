// Package main provides the syncdriver CLI, a small shell for adding,
// reading and deleting cookies through either the in-memory driver or a
// real Chromium session.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/entrhq/syncdriver/pkg/browser"
	appconfig "github.com/entrhq/syncdriver/pkg/config"
	"github.com/entrhq/syncdriver/pkg/driver"
	"github.com/entrhq/syncdriver/pkg/fixture"
	"github.com/entrhq/syncdriver/pkg/logging"
	"github.com/entrhq/syncdriver/pkg/session"
)

const version = "0.1.0"

const (
	backendMemory  = "memory"
	backendBrowser = "browser"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Backend     string
	URL         string
	ConfigFile  string
	Fixtures    string
	Headless    bool
	ShowVersion bool

	// headlessSet records whether -headless was given explicitly
	headlessSet bool

	// Args is the command to run. Empty means read commands from stdin.
	Args []string
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("syncdriver v%s\n", version)
		return
	}

	if err := run(config); err != nil {
		log.Printf("syncdriver: %v", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.Backend, "backend", backendMemory, "Driver backend: memory or browser")
	flag.StringVar(&config.URL, "url", "", "Page to open before running commands")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (default ~/.syncdriver/config.json)")
	flag.StringVar(&config.Fixtures, "fixtures", "", "YAML cookie fixture to add after opening -url")
	flag.BoolVar(&config.Headless, "headless", true, "Run Chromium without a window (browser backend)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syncdriver - synchronous cookie driver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: syncdriver [options] [command [args...]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nWithout a command, one command per line is read from stdin.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  syncdriver -url http://www.example.com/ add sid abc\n")
		fmt.Fprintf(os.Stderr, "  syncdriver -backend browser -url https://example.com/ list\n")
		fmt.Fprintf(os.Stderr, "  printf 'open http://a.test/\\nadd x 1\\nlist\\n' | syncdriver\n")
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			config.headlessSet = true
		}
	})
	config.Args = flag.Args()
	return config
}

// run wires configuration, logging and the chosen backend, then executes
// the command or stdin script.
func run(cliConfig *CLIConfig) error {
	logger, err := logging.NewLogger("cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()

	if err := appconfig.Initialize(cliConfig.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg := appconfig.Global()
	if err := cfg.Browser().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	drv, shutdown, err := openDriver(cliConfig, cfg.Browser().Snapshot(), logger)
	if err != nil {
		return err
	}
	defer shutdown()

	// Release the browser on Ctrl-C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warnf("interrupted, shutting down")
		shutdown()
		os.Exit(130)
	}()

	if cliConfig.URL != "" {
		if err := drv.Get(cliConfig.URL); err != nil {
			return fmt.Errorf("failed to open %s: %w", cliConfig.URL, err)
		}
	}

	fixtures := cliConfig.Fixtures
	if fixtures == "" {
		fixtures = cfg.Cookies().FixtureFile()
	}
	if fixtures != "" {
		cookies, err := fixture.Load(fixtures)
		if err != nil {
			return err
		}
		if err := fixture.Apply(drv.Manage(), cookies); err != nil {
			return err
		}
		logger.Infof("seeded %d cookie(s) from %s", len(cookies), fixtures)
	}

	sh := newShell(drv, cfg.Cookies(), os.Stdout, logger)
	if len(cliConfig.Args) == 0 {
		return sh.script(os.Stdin)
	}
	return sh.exec(cliConfig.Args)
}

// openDriver starts the configured backend. The returned function releases
// it exactly once, however many goroutines call it.
func openDriver(cliConfig *CLIConfig, settings appconfig.BrowserSettings, logger *logging.Logger) (driver.Driver, func(), error) {
	switch cliConfig.Backend {
	case backendMemory:
		s := session.New(session.WithLogger(logger))
		return s, sync.OnceFunc(func() { _ = s.Quit() }), nil

	case backendBrowser:
		headless := settings.Headless
		if cliConfig.headlessSet {
			headless = cliConfig.Headless
		}

		manager := browser.NewSessionManager(logger)
		manager.SetMaxSessions(settings.MaxSessions)
		manager.SetIdleTimeout(settings.IdleTimeout)
		if err := manager.Initialize(); err != nil {
			return nil, nil, err
		}

		s, err := manager.StartSession("cli", browser.SessionOptions{
			Headless: headless,
			Viewport: &browser.Viewport{
				Width:  settings.ViewportWidth,
				Height: settings.ViewportHeight,
			},
			Timeout:           float64(settings.Timeout / time.Millisecond),
			IgnoreHTTPSErrors: settings.IgnoreHTTPSErrors,
			WaitUntil:         settings.WaitUntil,
		})
		if err != nil {
			_ = manager.Shutdown()
			return nil, nil, err
		}
		return s, sync.OnceFunc(func() { _ = manager.Shutdown() }), nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want %s or %s)", cliConfig.Backend, backendMemory, backendBrowser)
	}
}
