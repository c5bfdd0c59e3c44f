package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
	"github.com/mgomes/cdgcview/internal/config"
	"github.com/mgomes/cdgcview/internal/metrics"
	"github.com/mgomes/cdgcview/internal/tui"
	"golang.org/x/sync/errgroup"
)

const setupProbeTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	baseURL := flag.String("base-url", "", "catalog service address (overrides config)")
	query := flag.String("q", "", "open search and run this query")
	doLineage := flag.Bool("lineage", false, "open the lineage explorer and load a graph")
	assetID := flag.String("asset", "", "root asset id (use with -lineage)")
	depth := flag.Int("depth", 0, "lineage depth (use with -lineage)")
	doSetup := flag.Bool("setup", false, "run setup wizard")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	path := *configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get config path: %v\n", err)
			os.Exit(1)
		}
		path = p
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	if *doSetup {
		if err := runSetup(cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	opts := runOptions{
		configPath: path,
		query:      *query,
		lineage:    *doLineage,
		assetID:    *assetID,
		depth:      *depth,
		pinnedURL:  *baseURL,
	}
	if err := run(cfg, logger, opts); err != nil {
		logger.Error("cdgcview exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	query      string
	lineage    bool
	assetID    string
	depth      int
	// pinnedURL is the -base-url flag; config reloads do not override it.
	pinnedURL string
}

func run(cfg *config.Config, logger *slog.Logger, opts runOptions) error {
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	client, err := catalog.NewClient(cfg.BaseURL, catalog.WithLogger(logger))
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Catalog:        client,
		BaseURL:        client.BaseURL(),
		Logger:         logger,
		DefaultDepth:   cfg.DefaultDepth,
		SearchLimit:    cfg.SearchLimit,
		RequestTimeout: timeout,
	})

	switch {
	case opts.query != "":
		app = app.OpenSearch(opts.query)
	case opts.lineage:
		app = app.OpenLineage(opts.assetID, opts.depth)
	}

	program := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	watcher, err := config.NewWatcher(opts.configPath, func(next *config.Config) {
		if opts.pinnedURL != "" {
			next.BaseURL = opts.pinnedURL
		}
		c, err := catalog.NewClient(next.BaseURL, catalog.WithLogger(logger))
		if err != nil {
			logger.Warn("ignoring reloaded config", "error", err)
			return
		}
		logger.Info("config reloaded", "base_url", c.BaseURL())
		program.Send(tui.CatalogChangedMsg{Catalog: c, BaseURL: c.BaseURL()})
	})
	if err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		watcher.SetErrorHandler(func(err error) {
			logger.Warn("config watch", "error", err)
		})
		g.Go(func() error {
			if err := watcher.Start(gctx); err != nil {
				logger.Warn("config hot reload disabled", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	path := cfg.LogFile
	if path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler), func() { f.Close() }, nil //nolint:errcheck
}

func runSetup(cfg *config.Config, path string) error {
	model := newSetupRunner(cfg)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	if runner, ok := finalModel.(setupRunner); ok && runner.baseURL != "" {
		cfg.BaseURL = runner.baseURL
		if runner.depth > 0 {
			cfg.DefaultDepth = runner.depth
		}
		if err := cfg.SaveFile(path); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	}

	return fmt.Errorf("setup cancelled")
}

type setupRunner struct {
	setupModel tui.SetupModel
	baseURL    string
	depth      int
}

func newSetupRunner(cfg *config.Config) setupRunner {
	return setupRunner{
		setupModel: tui.NewSetupModel(cfg.BaseURL, cfg.DefaultDepth),
	}
}

type setupCheckedMsg struct {
	baseURL string
	depth   int
	err     error
}

func (m setupRunner) Init() tea.Cmd {
	return tea.Batch(m.setupModel.Init(), tea.EnableBracketedPaste)
}

func (m setupRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SetupSubmitMsg:
		return m, probeService(msg)

	case setupCheckedMsg:
		if msg.err != nil {
			return m.forward(tui.SetupErrorMsg{Error: "Service check failed: " + msg.err.Error()})
		}
		m.baseURL = msg.baseURL
		m.depth = msg.depth
		return m, tea.Quit

	default:
		return m.forward(msg)
	}
}

func (m setupRunner) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.setupModel.Update(msg)
	if sm, ok := newModel.(tui.SetupModel); ok {
		m.setupModel = sm
	}
	return m, cmd
}

func (m setupRunner) View() string {
	return m.setupModel.View()
}

// probeService checks the submitted address with a health probe off the
// update loop.
func probeService(msg tui.SetupSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		client, err := catalog.NewClient(msg.BaseURL)
		if err != nil {
			return setupCheckedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), setupProbeTimeout)
		defer cancel()

		if _, err := client.Health(ctx); err != nil {
			return setupCheckedMsg{err: err}
		}
		return setupCheckedMsg{baseURL: client.BaseURL(), depth: msg.Depth}
	}
}
