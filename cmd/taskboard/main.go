package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/ldi/taskboard/internal/config"
	"github.com/ldi/taskboard/internal/db"
	"github.com/ldi/taskboard/internal/logger"
	"github.com/ldi/taskboard/internal/mcp"
	"github.com/ldi/taskboard/internal/server"
	"github.com/ldi/taskboard/internal/ui"
	"github.com/ldi/taskboard/pkg/models"
)

var (
	cfg     *config.Config
	log     zerolog.Logger
	dbPath  string
	verbose bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string) error {
	c, err := config.NewEnvReader().Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg = c

	flags := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&dbPath, "db-path", cfg.Database.Path, "Path to database file")
	flags.BoolVar(&verbose, "verbose", cfg.Verbose, "Enable verbose logging")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	command := "serve"
	var rest []string
	if flags.NArg() > 0 {
		command = flags.Arg(0)
		rest = flags.Args()[1:]
	}

	// Only serve owns stdout; mcp speaks JSON-RPC on it and the operator
	// commands print tables there.
	logOut := stderr
	if command == "serve" {
		logOut = stdout
	}
	log, err = logger.New(cfg.Env, verbose, logOut)
	if err != nil {
		return err
	}

	switch command {
	case "serve":
		return runServe(rest)
	case "mcp":
		return runMCP(rest)
	case "list-tasks":
		return runListTasks(rest)
	case "status":
		return runStatus(rest)
	case "board":
		return runBoard(rest)
	case "export":
		return runExport(rest)
	case "import":
		return runImport(rest)
	case "help":
		usage(flags)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintln(stderr, "Usage: taskboard [flags] <command> [arguments]")
	fmt.Fprintln(stderr, "\nCommands:")
	fmt.Fprintln(stderr, "  serve        Run the HTTP API (default)")
	fmt.Fprintln(stderr, "  mcp          Serve task tools over MCP on stdio")
	fmt.Fprintln(stderr, "  list-tasks   Print tasks, optionally filtered")
	fmt.Fprintln(stderr, "  status       Print task analytics")
	fmt.Fprintln(stderr, "  board        Render open and completed tasks")
	fmt.Fprintln(stderr, "  export FILE  Write all tasks to a JSONL snapshot")
	fmt.Fprintln(stderr, "  import FILE  Load tasks from a JSONL snapshot")
	fmt.Fprintln(stderr, "\nFlags:")
	flags.PrintDefaults()
}

// openDatabase opens the configured database and makes sure the schema
// exists.
func openDatabase(ctx context.Context) (*db.DB, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("opened database")
	return database, nil
}

func runServe(args []string) error {
	serveFlags := flag.NewFlagSet("serve", flag.ContinueOnError)
	serveFlags.SetOutput(stderr)
	host := serveFlags.String("host", cfg.HTTP.Host, "Host to listen on")
	port := serveFlags.String("port", cfg.HTTP.Port, "Port to listen on")
	if err := serveFlags.Parse(args); err != nil {
		return err
	}

	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := openDatabase(context.Background())
	if err != nil {
		return err
	}
	defer func() {
		database.Close()
		log.Info().Msg("closed database")
	}()

	srv := server.NewServer(database, log)
	addr := net.JoinHostPort(*host, *port)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": srv.Shutdown,
		},
	)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to listen and serve http: %w", err)
	case code := <-wait:
		log.Info().Int("exit_code", code).Msg("shut down http server")
		if code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}
		return nil
	}
}

func runMCP(args []string) error {
	database, err := openDatabase(context.Background())
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info().Str("path", dbPath).Msg("serving mcp on stdio")
	s := mcp.NewServer(database)
	return mcp.Serve(s)
}

func runListTasks(args []string) error {
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	taskFlags.SetOutput(stderr)
	statusFilter := taskFlags.String("status", "", "Filter by exact status")
	query := taskFlags.String("q", "", "Filter by title substring")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	var filter db.ListFilter
	if *statusFilter != "" {
		s := models.TaskStatus(*statusFilter)
		filter.Status = &s
	}
	if *query != "" {
		filter.Query = query
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var tasks []*models.Task
	err = database.WithSession(ctx, func(s *db.Session) error {
		var err error
		tasks, err = s.ListTasks(ctx, filter)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%-6s %-30s %-12s %-20s %-20s\n", "ID", "TITLE", "STATUS", "CREATED", "COMPLETED")
	fmt.Fprintln(stdout, strings.Repeat("-", 92))
	for _, t := range tasks {
		completed := "-"
		if t.CompletedAt != nil {
			completed = t.CompletedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(stdout, "%-6d %-30s %-12s %-20s %-20s\n",
			t.ID, truncate(t.Title, 30), t.Status, t.CreatedAt.UTC().Format("2006-01-02 15:04:05"), completed)
	}
	return nil
}

func runStatus(args []string) error {
	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var analytics *models.Analytics
	err = database.WithSession(ctx, func(s *db.Session) error {
		var err error
		analytics, err = s.Analytics(ctx)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Taskboard Status")
	fmt.Fprintln(stdout, "================")
	fmt.Fprintf(stdout, "Total Tasks:     %d\n", analytics.TotalTasks)
	fmt.Fprintf(stdout, "Completed Tasks: %d\n", analytics.CompletedTasks)
	if analytics.AverageCompletionSeconds != nil {
		fmt.Fprintf(stdout, "Avg Completion:  %.1fs\n", *analytics.AverageCompletionSeconds)
	} else {
		fmt.Fprintln(stdout, "Avg Completion:  n/a")
	}
	return nil
}

func runBoard(args []string) error {
	boardFlags := flag.NewFlagSet("board", flag.ContinueOnError)
	boardFlags.SetOutput(stderr)
	width := boardFlags.Int("width", 60, "Board width in columns")
	if err := boardFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	board := ui.NewBoard(*width)
	err = database.WithSession(ctx, func(s *db.Session) error {
		tasks, err := s.ListTasks(ctx, db.ListFilter{})
		if err != nil {
			return err
		}
		board.Add(tasks...)

		board.Analytics, err = s.Analytics(ctx)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, board.View())
	return nil
}

func runExport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskboard export FILE")
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var n int
	err = database.WithSession(ctx, func(s *db.Session) error {
		var err error
		n, err = s.ExportSnapshot(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Exported %d tasks to %s\n", n, args[0])
	return nil
}

func runImport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskboard import FILE")
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var n int
	err = database.WithSession(ctx, func(s *db.Session) error {
		var err error
		n, err = s.ImportSnapshot(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Imported %d tasks from %s\n", n, args[0])
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
