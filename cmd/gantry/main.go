package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshharrison/gantry/internal/claude"
	"github.com/joshharrison/gantry/internal/config"
	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/logging"
	"github.com/joshharrison/gantry/internal/reporter"
	"github.com/joshharrison/gantry/internal/snapshot"
	"github.com/joshharrison/gantry/internal/store"
	"github.com/joshharrison/gantry/internal/store/postgres"
	"github.com/joshharrison/gantry/internal/tasks"
	"github.com/joshharrison/gantry/internal/ui"
	"github.com/joshharrison/gantry/internal/viewer"
)

var (
	flagConfig      string
	flagStoreDir    string
	flagDatabaseURL string
	flagLogLevel    string
	flagLogFormat   string

	flagProject string
	flagVersion string
	flagModule  string
	flagGroup   string
	flagNow     string
	flagJSON    bool
	flagGantt   bool
	flagSave    bool
	flagNarrate bool
	flagModel   string
	flagWidth   int
	flagAddr    string
)

var (
	cfg config.Config
	log *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gantry",
		Short: "Schedule health analytics for project timelines",
		Long: `Gantry reads versioned project timelines, classifies every activity's
schedule health, attributes delay to root causes, simulates the cost burn and
ranks responsibility load, then reports the results in the terminal, as JSON
or over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = resolveConfig(cmd)
			if err != nil {
				return err
			}
			log = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default gantry.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagStoreDir, "store-dir", "", "Timeline store directory")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Postgres URL; overrides the file store")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(modulesCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers command-line flags over the loaded config.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(flagConfig, ".env")
	if err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("store-dir") {
		c.StoreDir = flagStoreDir
	}
	if flags.Changed("database-url") {
		c.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = flagLogFormat
	}
	if flags.Changed("model") {
		c.Model = flagModel
	}
	if flags.Changed("width") {
		c.GanttWidth = flagWidth
	}
	if flags.Changed("addr") {
		c.Addr = flagAddr
	}
	return c, c.Validate()
}

// openStore returns the configured timeline store and person directory.
// The returned func releases any held connections.
func openStore(ctx context.Context) (store.TimelineStore, store.PersonDirectory, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Debug("using postgres store")
		return pg, pg, pg.Close, nil
	}
	fs := store.NewFileStore(cfg.StoreDir)
	log.Debug("using file store", "root", cfg.StoreDir)
	return fs, fs, func() {}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, stopping..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func resolveNow() (time.Time, error) {
	if flagNow == "" {
		return time.Now(), nil
	}
	t, ok := dates.Parse(flagNow)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --now %q", flagNow)
	}
	return t, nil
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute schedule health, delay, cost and responsibility indicators",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			now, err := resolveNow()
			if err != nil {
				return err
			}

			ts, people, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := ts.Timeline(ctx, flagProject, flagVersion)
			if err != nil {
				return fmt.Errorf("load timeline: %w", err)
			}
			labels, err := people.Labels(ctx)
			if err != nil {
				log.Warn("person directory unavailable", "error", err)
			}

			rep := engine.Compute(doc.Timeline, engine.Input{
				Module:  flagModule,
				Group:   flagGroup,
				Now:     now,
				People:  labels,
				Options: cfg.Analytics,
			})
			for _, w := range rep.Warnings {
				log.Warn(w, "project", doc.Project, "version", doc.Version)
			}
			rpt := reporter.New(rep, doc.Project, doc.Version)

			if flagSave {
				h, err := snapshot.Open(cfg.HistoryDir, doc.Project)
				if err != nil {
					return err
				}
				e, err := h.Record(doc.Version, rep.Now, time.Now(), rep.KPIs)
				if err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				log.Info("snapshot saved", "id", e.ID, "headline", rpt.Headline())
			}

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintLogo(os.Stdout)
			rpt.PrintSummary(os.Stdout)
			if flagGantt {
				fmt.Println()
				rpt.PrintGantt(os.Stdout, cfg.GanttWidth)
			}

			if flagNarrate {
				fmt.Printf("\n🔍 %s\n", ui.Dim("Asking Claude for a briefing..."))
				client, err := claude.NewClient(cfg.AnthropicAPIKey, cfg.Model)
				if err != nil {
					return err
				}
				b, err := client.Brief(ctx, claude.NewDigest(doc.Project, doc.Version, rep))
				if err != nil {
					return fmt.Errorf("narrate: %w", err)
				}
				reporter.PrintBriefing(os.Stdout, b)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagProject, "project", "", "Project name")
	cmd.Flags().StringVar(&flagVersion, "version", "", "Timeline version (default latest)")
	cmd.Flags().StringVar(&flagModule, "module", "", "Only include this module")
	cmd.Flags().StringVar(&flagGroup, "group", "", "Only include this group")
	cmd.Flags().StringVar(&flagNow, "now", "", "Reference day (default today)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	cmd.Flags().BoolVar(&flagGantt, "gantt", false, "Draw an ASCII Gantt chart")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Record a KPI snapshot for trend tracking")
	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Add a Claude-written briefing")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model for --narrate")
	cmd.Flags().IntVar(&flagWidth, "width", 0, "Gantt chart width in columns")
	cmd.MarkFlagRequired("project")

	return cmd
}

func modulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List projects, or a project's versions, modules and groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			ts, _, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if flagProject == "" {
				projects, err := ts.Projects(ctx)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(map[string]interface{}{"projects": projects})
				}
				fmt.Printf("📁 %s\n", ui.BoldCyan("Projects"))
				for _, p := range projects {
					fmt.Printf("  %s\n", p)
				}
				return nil
			}

			versions, err := ts.Versions(ctx, flagProject)
			if err != nil {
				return err
			}
			doc, err := ts.Timeline(ctx, flagProject, flagVersion)
			if err != nil {
				return fmt.Errorf("load timeline: %w", err)
			}
			modules := tasks.ModuleNames(doc.Timeline)
			groups := tasks.GroupNames(doc.Timeline)

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"project":  doc.Project,
					"version":  doc.Version,
					"versions": versions,
					"modules":  modules,
					"groups":   groups,
				})
			}

			fmt.Printf("📁 %s %s\n", ui.BoldCyan(doc.Project), ui.Dim("v"+doc.Version))
			fmt.Printf("Versions:  %v\n", versions)
			fmt.Printf("Activities: %d\n\n", doc.Timeline.ActivityCount())
			fmt.Printf("%s\n", ui.BoldWhite("Modules"))
			for _, m := range modules {
				fmt.Printf("  %s\n", ui.ModuleLabel(m))
			}
			fmt.Printf("%s\n", ui.BoldWhite("Groups"))
			for _, g := range groups {
				fmt.Printf("  %s\n", g)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagProject, "project", "", "Project name (omit to list projects)")
	cmd.Flags().StringVar(&flagVersion, "version", "", "Timeline version (default latest)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	return cmd
}

func trendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show how recorded KPI snapshots changed over time",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := snapshot.Open(cfg.HistoryDir, flagProject)
			if err != nil {
				return err
			}
			trend := h.Trend()

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"project": flagProject,
					"entries": h.Entries,
					"trend":   trend,
				})
			}

			if len(h.Entries) == 0 {
				fmt.Printf("No snapshots recorded for %s. Run %s first.\n",
					ui.Bold(flagProject), ui.Cyan("gantry report --save"))
				return nil
			}

			fmt.Printf("📈 %s %s\n\n", ui.BoldCyan("KPI trend"), ui.Dim(flagProject))
			for _, e := range h.Entries {
				fmt.Printf("  %-8s %s  %3d%% complete  %2d at risk  %6.1f delay days\n",
					ui.BoldMagenta("v"+e.Version), e.AsOf, e.KPIs.CompletionPct, e.KPIs.RiskLoad, e.KPIs.TotalDelayDays)
			}
			if len(trend) > 0 {
				fmt.Println()
				for _, d := range trend {
					fmt.Printf("  %s → %s  completion %s  risk %s  delay %s\n",
						ui.Dim(d.From), ui.Dim(d.To),
						signedInt(d.CompletionPct, true), signedInt(d.RiskLoad, false), signedFloat(d.TotalDelayDays))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagProject, "project", "", "Project name")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	cmd.MarkFlagRequired("project")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			ts, people, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := viewer.New(ts, people, cfg.Analytics, log)
			fmt.Printf("🌐 %s http://localhost%s\n", ui.BoldCyan("Gantry viewer:"), cfg.Addr)
			return srv.Serve(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :7171)")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("migrate needs --database-url or GANTRY_DATABASE_URL")
			}
			ctx, cancel := signalContext()
			defer cancel()

			pg, err := postgres.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pg.Close()

			applied, err := pg.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Printf("✅ %s\n", ui.Green("Schema up to date"))
				return nil
			}
			fmt.Printf("✅ %s %v\n", ui.Green("Applied migrations"), applied)
			return nil
		},
	}
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// signedInt colors a change. up says whether an increase is good news.
func signedInt(n int, up bool) string {
	s := fmt.Sprintf("%+d", n)
	switch {
	case n == 0:
		return ui.Dim(s)
	case (n > 0) == up:
		return ui.Green(s)
	default:
		return ui.Red(s)
	}
}

func signedFloat(v float64) string {
	s := fmt.Sprintf("%+.1f", v)
	switch {
	case v == 0:
		return ui.Dim(s)
	case v < 0:
		return ui.Green(s)
	default:
		return ui.Red(s)
	}
}
