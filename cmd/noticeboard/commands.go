package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/links"
	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/opener"
	"github.com/pders01/noticeboard/internal/storage"
	"github.com/pders01/noticeboard/internal/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(tui.VersionBanner(Version))
		fmt.Printf("noticeboard %s\n", Version)
		fmt.Println("Service status notices")
		fmt.Println("github.com/pders01/noticeboard")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate default config file",
	Run: func(cmd *cobra.Command, args []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "noticeboard", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

var bannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Print the notice that would be shown right now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.refresh(cmd.Context(), false); err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		if banner := tui.RenderBanner(e.board.Selection(), time.Now(), width); banner != "" {
			fmt.Fprintln(cmd.OutOrStdout(), banner)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every fetched notice with its category and state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.refresh(cmd.Context(), true); err != nil {
			return err
		}
		notices := e.board.Notices()
		out := cmd.OutOrStdout()
		if len(notices) == 0 {
			fmt.Fprintln(out, "No notices")
			return nil
		}

		now := time.Now()
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "#", "CATEGORY", "STATE", "TITLE", "UPDATED")
		for _, n := range notices {
			category, _, state := notice.Evaluate(n, now)
			shown := string(state)
			if e.board.IsDismissed(n.ID) {
				shown += " (dismissed)"
			}
			updated := ""
			if !n.UpdatedAt.IsZero() {
				updated = humanize.RelTime(n.UpdatedAt, now, "ago", "from now")
			}
			t.Row(strconv.FormatInt(n.ID, 10), numberOf(n), string(category), shown, n.Title, updated)
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id|#number>",
	Short: "Render a single notice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.refresh(cmd.Context(), true); err != nil {
			return err
		}
		n, ok := e.board.Find(args[0])
		if !ok {
			return fmt.Errorf("no notice %q", args[0])
		}

		md := tui.NoticeMarkdown(n, time.Now())
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		return renderMarkdown(cmd.OutOrStdout(), md, e.cfg.UI.WordWrapMaxWidth)
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id|#number>",
	Short: "Hide a notice for the rest of the session",
	Long:  "Hide a notice for the rest of the session. Without an id the notice currently shown is dismissed.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := requirePersistent(e); err != nil {
			return err
		}
		if err := e.refresh(cmd.Context(), true); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			sel := e.board.Selection()
			if sel.Empty() {
				fmt.Fprintln(out, tui.MsgNoNotice)
				return nil
			}
			e.board.Dismiss(sel.Unit)
			fmt.Fprintln(out, tui.MsgDismissedCount(len(sel.Unit.NoticeIDs)))
			return nil
		}

		n, err := e.board.DismissRef(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Dismissed %d %s\n", n.ID, n.Title)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the fetched notices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.refresh(cmd.Context(), true); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		results, err := e.board.Search(strings.Join(args, " "), limit)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No matches")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%d %s %s\n", r.Notice.ID, numberOf(r.Notice), r.Notice.Title)
			if r.Snippet != "" {
				fmt.Fprintf(out, "    %s\n", r.Snippet)
			}
		}
		return nil
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the link hub, flagging links affected by the current notice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(joinSession)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.refresh(cmd.Context(), false); err != nil {
			return err
		}
		var services []string
		if sel := e.board.Selection(); !sel.Empty() {
			services = sel.Unit.AllServices()
		}

		out := cmd.OutOrStdout()
		for _, l := range e.catalog.All() {
			marker := " "
			if l.AffectedBy(services) {
				marker = "!"
			}
			fmt.Fprintf(out, "%s %-16s %s\n", marker, l.Name, l.URL)
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <name>",
	Short: "Open a link in the browser",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		link, ok := catalog.Find(name)
		if !ok {
			return fmt.Errorf("no link named %q", name)
		}
		if err := opener.NewLauncher(cfg).Open(link.URL); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.MsgOpened(link.Name))
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage dismissal sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session and print its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *config.Config, store *storage.Store) error {
			s, err := store.StartSession()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			return nil
		})
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end [id]",
	Short: "End a session, forgetting its dismissals",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *storage.Store) error {
			id := cfg.Session.ID
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" {
				return errors.New("no session id given")
			}
			if err := store.EndSession(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ended session %s\n", id)
			return nil
		})
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *config.Config, store *storage.Store) error {
			sessions, err := store.Sessions()
			if err != nil {
				return err
			}
			now := time.Now()
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  started %s\n", s.ID, humanize.RelTime(s.StartedAt, now, "ago", "from now"))
			}
			return nil
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the link hub (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	bannerCmd.Flags().Int("width", 80, "Banner width")
	showCmd.Flags().Bool("raw", false, "Print markdown without rendering")
	searchCmd.Flags().Int("limit", 10, "Maximum number of results")

	configCmd.AddCommand(configGenCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd, sessionListCmd)
	rootCmd.AddCommand(
		versionCmd,
		configCmd,
		bannerCmd,
		listCmd,
		showCmd,
		dismissCmd,
		searchCmd,
		linksCmd,
		openCmd,
		sessionCmd,
		tuiCmd,
	)
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := newEnv(ownSession)
	if err != nil {
		return err
	}
	defer e.close()

	app := tui.NewApp(e.cfg, e.board, e.session, e.catalog, opener.NewLauncher(e.cfg))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	_, runErr := p.Run()
	// The app ends its session on quit; this covers a killed program.
	if err := e.session.End(); err != nil {
		debuglog.Warnf("ending session failed: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}

func withStore(fn func(*config.Config, *storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if flags.ephemeral {
		return errors.New("sessions are not kept with --ephemeral")
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func loadCatalog(cfg *config.Config) (*links.Catalog, error) {
	catalog, err := links.Load(cfg.Links.File)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}
	return catalog, nil
}

func renderMarkdown(w io.Writer, md string, wrap int) error {
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering notice: %w", err)
	}
	fmt.Fprint(w, rendered)
	return nil
}

func numberOf(n notice.RawNotice) string {
	if n.Number <= 0 {
		return "-"
	}
	return "#" + strconv.Itoa(n.Number)
}
