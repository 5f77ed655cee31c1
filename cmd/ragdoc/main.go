package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ragdoc"
	ragprom "github.com/fwojciec/ragdoc/prometheus"
	"github.com/fwojciec/ragdoc/toml"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Stdin is read by the chat command.
	Stdin io.Reader

	// Interactive reports whether Stdin is a terminal.
	Interactive bool

	// Services for end-to-end testing. Nil fields are built from the
	// configuration.
	Sitemaps     ragdoc.SitemapService
	Fetcher      ragdoc.Fetcher
	Embedder     ragdoc.Embedder
	Generator    ragdoc.Generator
	Index        ragdoc.IndexService
	TokenCounter ragdoc.TokenCounter

	closers []io.Closer
	server  *http.Server
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv:      os.Getenv,
		Stdin:       os.Stdin,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// Close releases clients opened by Run in reverse order.
func (m *Main) Close() error {
	var errs []error
	if m.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, m.server.Shutdown(ctx))
		cancel()
		m.server = nil
	}
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:         ctx,
		Stdin:       m.Stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Interactive: m.Interactive,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ragdoc"),
		kong.Description("Crawl a documentation site, index it, and ask questions about it"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ragdoc --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := m.loadConfig(cli, cmd)
	if err != nil {
		return report(stderr, err)
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	var metrics *ragprom.Metrics
	if cli.MetricsAddr != "" {
		metrics = ragprom.NewMetrics()
		if err := m.serveMetrics(cli.MetricsAddr, metrics); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		deps.Logger.Info("serving metrics", "addr", cli.MetricsAddr)
	}
	defer m.Close()

	if err := m.wire(deps, cmd, metrics); err != nil {
		return report(stderr, err)
	}

	return kongCtx.Run(deps)
}

// loadConfig layers defaults, the TOML file, the environment and the
// command's flags, then validates what cmd needs.
func (m *Main) loadConfig(cli *CLI, cmd string) (ragdoc.Config, error) {
	cfg, err := toml.LoadConfig(cli.Config, ragdoc.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	if err := cfg.LoadEnv(m.Getenv); err != nil {
		return cfg, err
	}

	switch cmd {
	case "crawl":
		cli.Crawl.apply(&cfg)
		return cfg, cfg.ValidateCrawl()
	case "index":
		cli.Index.apply(&cfg)
		return cfg, cfg.ValidateIndex()
	case "ingest":
		cli.Ingest.apply(&cfg)
		if err := cfg.ValidateCrawl(); err != nil {
			return cfg, err
		}
		return cfg, cfg.ValidateIndex()
	case "ask":
		cli.Ask.apply(&cfg)
		return cfg, cfg.ValidateQuery()
	case "chat":
		cli.Chat.apply(&cfg)
		return cfg, cfg.ValidateQuery()
	}
	return cfg, nil
}

// wire builds the services cmd runs with.
func (m *Main) wire(deps *Dependencies, cmd string, metrics *ragprom.Metrics) error {
	var err error
	switch cmd {
	case "crawl":
		deps.Crawler, err = m.newCrawler(deps.Config, deps.Logger, metrics)
	case "index":
		deps.Pipeline, err = m.newPipeline(deps.Ctx, deps.Config, deps.Logger, metrics)
	case "ingest":
		if deps.Crawler, err = m.newCrawler(deps.Config, deps.Logger, metrics); err != nil {
			return err
		}
		deps.Pipeline, err = m.newPipeline(deps.Ctx, deps.Config, deps.Logger, metrics)
	case "ask", "chat":
		deps.Asker, err = m.newEngine(deps.Ctx, deps.Config, deps.Logger, metrics)
	}
	return err
}

func (m *Main) serveMetrics(addr string, metrics *ragprom.Metrics) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	m.server = srv
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// reportedError marks an error already printed to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether Run already printed err to its stderr.
func Reported(err error) bool {
	var reported *reportedError
	return errors.As(err, &reported)
}

// report prints err as "error: <message>" and marks it as reported.
func report(w io.Writer, err error) error {
	fmt.Fprintf(w, "error: %s\n", errorText(err))
	return &reportedError{err}
}

// errorText is the message printed for err. Internal errors carry no user
// message, so their full text is shown.
func errorText(err error) string {
	var berr *ragdoc.BatchError
	if errors.As(err, &berr) {
		return fmt.Sprintf("batch %d: %s", berr.Batch, errorText(berr.Err))
	}
	var qerr *ragdoc.QueryError
	if errors.As(err, &qerr) {
		return fmt.Sprintf("%s (after %s)", errorText(qerr.Err), qerr.State)
	}
	if ragdoc.ErrorCode(err) == ragdoc.EINTERNAL {
		return err.Error()
	}
	return ragdoc.ErrorMessage(err)
}
