package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/folio/pkg/book"
	"github.com/macropower/folio/pkg/config"
	"github.com/macropower/folio/pkg/fonts"
	"github.com/macropower/folio/pkg/log"
	"github.com/macropower/folio/pkg/mcp"
	"github.com/macropower/folio/pkg/state"
	"github.com/macropower/folio/pkg/telemetry"
	"github.com/macropower/folio/pkg/ui"
	"github.com/macropower/folio/pkg/ui/theme"
)

const (
	cmdExamples = `  # Read a book:
  folio ./moby-dick.fb2

  # Read a directory of chapters, one section per file:
  folio ./notes

  # Reload when the book changes on disk:
  folio ./draft.md --watch

  # Let an MCP client turn the pages:
  folio ./draft.md --serve-mcp localhost:8080

  # Send output to a file (disables TUI):
  folio ./moby-dick.fb2 > moby-dick.txt`

	logRingSize = 100
)

var bookExtensions = []string{"fb2", "md", "markdown", "txt"}

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoBook        = errors.New("no book given")
)

type RunArgs struct {
	*RootArgs

	Path         string
	ConfigPath   string
	ServeMCP     string
	OTLPEndpoint string
	Watch        bool
	WriteConfig  bool
	ShowConfig   bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.ConfigPath, "config", "", "Path to the folio configuration file")
	cmd.Flags().StringVar(&ra.ServeMCP, "serve-mcp", "", "Serve the MCP server at the specified address")
	cmd.Flags().StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint")
	cmd.Flags().BoolVarP(&ra.Watch, "watch", "w", false, "Watch the book for changes and reload it")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration file and exit")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active configuration and exit")

	must(cmd.MarkFlagFilename("config", "yaml", "yml"))
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [book]",
		Short:             "Default command, can be used explicitly if the book path is ambiguous",
		Example:           cmdExamples,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: runCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ra.Path = args[0]
			}

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func runCompletion(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return bookExtensions, cobra.ShellCompDirectiveFilterFileExt
	}

	return nil, cobra.ShellCompDirectiveNoFileComp
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	configPath := ra.ConfigPath
	if configPath == "" {
		configPath = config.GetPath()
	}

	err := config.WriteDefaultConfig(configPath, ra.WriteConfig)
	if err != nil {
		slog.Error("write default config", slog.Any("err", err))
	}
	if ra.WriteConfig {
		// Errors are fatal only when writing was asked for.
		return err
	}

	cfg, t, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if ra.ShowConfig {
		slog.Info("active configuration", slog.String("path", configPath))

		return showConfig(cmd.OutOrStdout(), cfg, t)
	}

	if ra.Path == "" {
		return ErrNoBook
	}

	err = cfg.UI.RegisterThemes()
	if err != nil {
		return fmt.Errorf("register themes: %w", err)
	}

	b, err := book.Load(ra.Path)
	if err != nil {
		return fmt.Errorf("load book: %w", err)
	}

	// If stdout is not a terminal, print the text instead.
	if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // G115: Fd fits in int.
		_, err := b.WriteTo(cmd.OutOrStdout())
		return err
	}

	// The UI owns the terminal, so logs are kept and printed on exit.
	logRing := log.NewRing(logRingSize)

	logHandler, err := log.NewHandler(logRing, ra.LogLevel, ra.LogFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}

	slog.SetDefault(slog.New(logHandler))

	defer flushLogs(cmd.ErrOrStderr(), logRing)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, ra.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Error("shut down telemetry", slog.Any("err", err))
		}
	}()

	in := ui.Input{
		Book:   b,
		Path:   ra.Path,
		Finder: fonts.NewFinder(fonts.WithUserDirs(append(fonts.DefaultUserDirs(), cfg.FontDirs...)...)),
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = state.DefaultPath()
	}

	store, err := state.Open(statePath)
	if err != nil {
		slog.Warn("reading positions will not be kept", slog.Any("err", err))
	} else {
		in.Store = store

		defer func() {
			err := store.Close()
			if err != nil {
				slog.Error("close state db", slog.Any("err", err))
			}
		}()
	}

	p, remote := ui.NewProgram(cfg.UI, in)

	if ra.Watch {
		w, err := book.NewWatcher(ra.Path)
		if err != nil {
			return fmt.Errorf("watch book: %w", err)
		}

		defer func() {
			err := w.Close()
			if err != nil {
				slog.Error("close watcher", slog.Any("err", err))
			}
		}()

		go w.Run(ctx, func(string) {
			p.Send(ui.ReloadMsg{})
		})
	}

	if ra.ServeMCP != "" {
		mcpServer := mcp.NewServer(ra.ServeMCP, remote)

		go func() {
			err := mcpServer.Serve(ctx)
			if err != nil {
				slog.Error("MCP server failed", slog.Any("err", err))
			}
		}()
	}

	_, err = p.Run()
	if err != nil {
		slog.Error("run UI", slog.Any("err", err))

		return fmt.Errorf("ui program failure: %w", err)
	}

	return nil
}

// loadConfig reads the config at path. A missing or unreadable file means
// defaults, an invalid one is an error.
func loadConfig(path string) (*config.Config, *theme.Theme, error) {
	cl, err := config.NewConfigLoaderFromFile(path, config.WithThemeFromData())
	if err != nil {
		slog.Warn("could not read config, using defaults", slog.Any("err", err))

		return config.NewConfig(), theme.Default, nil
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidConfig, path, err)
	}

	return cfg, cl.GetTheme(), nil
}

func showConfig(w io.Writer, cfg *config.Config, t *theme.Theme) error {
	b, err := cfg.MarshalYAML()
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	formatter := "noop"
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: Fd fits in int.
		formatter = "terminal16m"
	}

	err = quick.Highlight(w, string(b), "yaml", formatter, t.Chroma.Name)
	if err != nil {
		return fmt.Errorf("highlight config: %w", err)
	}

	return nil
}

func flushLogs(w io.Writer, ring *log.Ring) {
	slog.Debug("flush logs to console",
		slog.Int("count", ring.Len()),
		slog.Int("dropped", ring.Dropped()),
	)

	must(ring.Flush(w))
}
