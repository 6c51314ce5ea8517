package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/noticeboard/internal/board"
	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/dismissal"
	"github.com/pders01/noticeboard/internal/fetch"
	"github.com/pders01/noticeboard/internal/links"
	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/search"
	"github.com/pders01/noticeboard/internal/storage"
	"github.com/pders01/noticeboard/internal/tui"
	"github.com/pders01/noticeboard/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var flags struct {
	configPath string
	sessionID  string
	logLevel   string
	ephemeral  bool
}

var rootCmd = &cobra.Command{
	Use:           "noticeboard",
	Short:         "Service links with a status banner",
	Long:          "noticeboard lists service links and surfaces the most relevant maintenance, incident or info notice.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&flags.sessionID, "session", "", "Session id to keep dismissals in (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "Keep dismissals in memory only")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs once configuration is loaded.
type env struct {
	cfg     *config.Config
	store   *storage.Store
	session *board.Session
	board   *board.Manager
	catalog *links.Catalog
}

type sessionMode int

const (
	// joinSession uses the configured session or none at all.
	joinSession sessionMode = iota
	// ownSession starts a session when none is configured.
	ownSession
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.sessionID != "" {
		cfg.Session.ID = flags.sessionID
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.File == "-" {
		debuglog.SetOutput(level, os.Stderr)
		return cfg, nil
	}
	if err := debuglog.Setup(level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("setting up log: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	path, err := validation.NewFilePathValidator().ValidateFile(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("session path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return storage.NewStoreWithTimeout(path, cfg.Session.Timeout)
}

func newEnv(mode sessionMode) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	needStore := !flags.ephemeral && (cfg.Session.ID != "" || mode == ownSession)
	if needStore {
		if e.store, err = openStore(cfg); err != nil {
			return nil, err
		}
	}

	if mode == ownSession && cfg.Session.ID == "" {
		e.session, err = board.StartSession(e.store)
	} else {
		e.session, err = board.JoinSession(e.store, cfg.Session.ID)
	}
	if err != nil {
		e.close()
		return nil, fmt.Errorf("opening session: %w", err)
	}

	source, err := fetch.NewRegistry(fetch.NewHTTPClient(cfg)).Build(cfg)
	if err != nil {
		e.close()
		return nil, err
	}

	index, err := search.NewIndex()
	if err != nil {
		e.close()
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	e.board = board.NewManager(
		fetch.NewTracker(source),
		dismissal.NewStore(e.session.Backend),
		index,
		notice.Policy{GroupThreshold: cfg.Selection.GroupThreshold},
	)

	if e.catalog, err = loadCatalog(cfg); err != nil {
		e.close()
		return nil, err
	}
	tui.ApplyColors(cfg.UI.Colors)

	debuglog.WithFields(debuglog.Fields{
		"source":  source.Name(),
		"session": e.session.ID,
	}).Debugf("environment ready")
	return e, nil
}

func (e *env) close() {
	if e.board != nil {
		e.board.Close()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			debuglog.Warnf("closing session store: %v", err)
		}
	}
	if err := debuglog.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
	}
}

// refresh fetches once. Commands that can live without notices pass
// required=false and carry on with an empty list.
func (e *env) refresh(ctx context.Context, required bool) error {
	err := e.board.Refresh(ctx)
	if err == nil {
		return nil
	}
	debuglog.Warnf("notice refresh failed: %v", err)
	if required || errors.Is(err, context.Canceled) {
		return fmt.Errorf("fetching notices: %w", err)
	}
	return nil
}

func requirePersistent(e *env) error {
	if !e.session.Persistent() {
		return errors.New("no session: start one with `noticeboard session start` and pass --session")
	}
	return nil
}
