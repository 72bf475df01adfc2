// Package main is the skillmatch CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/cli"
	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/matching"
	"github.com/hyperjump/skillmatch/internal/queue"
	"github.com/hyperjump/skillmatch/internal/server"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/hyperjump/skillmatch/internal/watcher"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/skillmatch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present; when neither exists the built-in
// defaults (plus environment overrides) are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "consume":
		runConsume()
	case "add":
		runAdd()
	case "publish":
		runPublish()
	case "search":
		runSearch()
	case "compare":
		runCompare()
	case "clear":
		runClear()
	case "status":
		runStatus()
	case "inbox":
		runInbox()
	case "version", "--version", "-v":
		fmt.Printf("skillmatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`skillmatch - TF-IDF skill index and skill gap analysis

Usage: skillmatch <command> [flags] [args]

Commands:
  server               Run the HTTP API (plus inbox watcher and queue consumer when configured)
  consume              Run only the queue consumer
  add <file>           Add skills from a JSON submission file to the index
  publish <file>       Publish a JSON submission file to the queue
  search <query>       Search the skill index
  compare <file>       Run a gap analysis from a JSON file with employee_skills and required_skills
  clear                Remove every skill from the index
  status               Show index status
  inbox <add|remove|list> [path]
                       Manage inbox directories of a running server
  version              Print version
  help                 Show this help

Run "skillmatch <command> -h" for command flags.
`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fatalf("%v", err)
	}
	return format
}

// setup loads config, creates the logger and opens the engine.
func setup(configPath string, debug bool) (*config.Config, string, *zap.Logger, *matching.Engine) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("debug", debugMode))

	engine, err := initializeEngine(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return cfg, resolved, logger, engine
}

func initializeEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*matching.Engine, error) {
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	engine := matching.New(store, cfg, logger)
	if err := engine.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load skill index: %w", err)
	}
	return engine, nil
}

func closeEngine(engine *matching.Engine, logger *zap.Logger) {
	if err := engine.Close(); err != nil {
		logger.Error("failed to close engine", zap.Error(err))
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, engine := setup(*configPath, *debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inbox := watcher.NewWatcher(
		cfg.Inbox.Directories,
		cfg.Inbox.Extensions,
		cfg.Inbox.RecursiveOrDefault(),
		watcher.SubmissionHandler(engine, logger),
		watcher.WithLogger(logger),
	)
	if err := inbox.Start(ctx); err != nil {
		logger.Fatal("Failed to start inbox watcher", zap.Error(err))
	}
	go inbox.SyncExistingFiles()

	consumerDone := make(chan struct{})
	if cfg.Queue.URL != "" {
		consumer := queue.NewConsumer(cfg.Queue, engine, logger)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				logger.Error("queue consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	srv := server.NewServer(engine, &cfg.Server, logger, inbox, resolvedConfigPath, cfg)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	cancel()
	inbox.Stop()
	<-consumerDone
	closeEngine(engine, logger)
}

func runConsume() {
	fs := flag.NewFlagSet("consume", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger, engine := setup(*configPath, *debug)
	defer logger.Sync()
	if cfg.Queue.URL == "" {
		fatalf("queue.url (or RABBITMQ_URL) is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitForSignal()
		logger.Info("Shutting down...")
		cancel()
	}()
	err := queue.NewConsumer(cfg.Queue, engine, logger).Run(ctx)
	cancel()
	closeEngine(engine, logger)
	if err != nil {
		fatalf("Consumer failed: %v", err)
	}
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open storage directly)")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fatalf("Usage: skillmatch add [flags] <submission.json>")
	}
	records, err := readSkillsFile(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}

	var ids []int
	if *serverURL != "" {
		ids, err = addViaHTTP(*serverURL, records)
	} else {
		_, _, logger, engine := setup(*configPath, false)
		defer logger.Sync()
		defer closeEngine(engine, logger)
		ids, err = engine.AddSkills(context.Background(), records)
	}
	if err != nil {
		fatalf("Adding skills failed: %v", err)
	}
	fmt.Printf("Added %d skill(s): ids %v\n", len(ids), ids)
}

func runPublish() {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fatalf("Usage: skillmatch publish [flags] <submission.json>")
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	if cfg.Queue.URL == "" {
		fatalf("queue.url (or RABBITMQ_URL) is required")
	}
	ev, err := readSubmissionFile(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	if err := queue.Publish(cfg.Queue, ev); err != nil {
		fatalf("Publish failed: %v", err)
	}
	fmt.Printf("Published %d skill(s) to %s\n", len(ev.Skills), cfg.Queue.Name)
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front so that flag.Parse sees them.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open storage directly)")
	k := fs.Int("k", 0, "number of results (0 = configured default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: skillmatch search [flags] <query>\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), `
Examples:
  skillmatch search python
  skillmatch search machine learning -k 10
  skillmatch search --server http://localhost:8080 --output json "data analysis"
`)
	}
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	if *serverURL != "" {
		resp, err := searchViaHTTP(*serverURL, query, *k)
		if err != nil {
			fatalf("Search failed: %v", err)
		}
		if err := cli.WriteSearchResults(os.Stdout, resp, format); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}

	_, _, logger, engine := setup(*configPath, false)
	defer logger.Sync()
	defer closeEngine(engine, logger)
	resp, err := engine.Search(context.Background(), query, *k)
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runCompare() {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = compare locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fatalf("Usage: skillmatch compare [flags] <comparison.json>")
	}
	format := parseFormat(*outputFormat)
	req, err := readCompareFile(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}

	if *serverURL != "" {
		res, err := compareViaHTTP(*serverURL, req)
		if err != nil {
			fatalf("Gap analysis failed: %v", err)
		}
		if err := cli.WriteGapResult(os.Stdout, res, req.RequiredSkills, format); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	res, err := matching.NewAnalyzer(cfg, logger).Compare(req.EmployeeSkills, req.RequiredSkills)
	if err != nil {
		fatalf("Gap analysis failed: %v", err)
	}
	if err := cli.WriteGapResult(os.Stdout, res, req.RequiredSkills, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runClear() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open storage directly)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		if err := clearViaHTTP(*serverURL); err != nil {
			fatalf("Clear failed: %v", err)
		}
	} else {
		_, _, logger, engine := setup(*configPath, false)
		defer logger.Sync()
		defer closeEngine(engine, logger)
		if err := engine.ClearIndex(context.Background()); err != nil {
			fatalf("Clear failed: %v", err)
		}
	}
	fmt.Println("Skill index cleared")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var st *matching.Status
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		st = res
	} else {
		_, _, logger, engine := setup(*configPath, false)
		defer logger.Sync()
		defer closeEngine(engine, logger)
		res, err := engine.Status(context.Background())
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		st = res
	}
	if err := cli.WriteStatus(os.Stdout, st, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runInbox() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: skillmatch inbox <add|remove|list> [path]")
		fmt.Println("  skillmatch inbox add <path>     Add an inbox directory")
		fmt.Println("  skillmatch inbox remove <path>  Remove an inbox directory")
		fmt.Println("  skillmatch inbox list           List inbox directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("inbox", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fatalf("Usage: skillmatch inbox add <path>")
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if err := inboxAddViaHTTP(*serverURL, path); err != nil {
			fatalf("Add failed: %v", err)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fatalf("Usage: skillmatch inbox remove <path>")
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if err := inboxRemoveViaHTTP(*serverURL, path); err != nil {
			fatalf("Remove failed: %v", err)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		dirs, err := inboxListViaHTTP(*serverURL)
		if err != nil {
			fatalf("List failed: %v", err)
		}
		for _, d := range dirs {
			fmt.Println(d)
		}
	default:
		fatalf("Unknown inbox subcommand: %s", sub)
	}
}
