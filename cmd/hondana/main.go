// Package main is the Hondana CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/hondana/internal/cli"
	"github.com/hyperjump/hondana/internal/config"
	"github.com/hyperjump/hondana/internal/models"
	"github.com/hyperjump/hondana/internal/search"
	"github.com/hyperjump/hondana/internal/server"
	"github.com/hyperjump/hondana/internal/storage"
	"github.com/hyperjump/hondana/internal/suggest"
	"github.com/hyperjump/hondana/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/hondana/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "hondana server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
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
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "add":
		runAdd()
	case "delete":
		runDelete()
	case "history":
		runHistory()
	case "popular":
		runPopular()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("hondana version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (search requests, history writes, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Searcher,
		components.Storage,
		components.Suggester,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage and hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: hondana search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matching is fuzzy: typos still find close titles, authors, and categories.
  • Use --type to search one entity list (books, authors, categories).
  • Use --threshold to tune match strictness (0 = everything, 1 = exact).
  • --page and --page-size control pagination.

Examples:
  hondana search harry potter
  hondana search "harry potter"                  # same as above
  hondana search --type authors rowling
  hondana search --threshold 0.4 harey poter     # tolerate heavier typos
  hondana search --page 2 --page-size 5 fantasy
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "harry potter" vs harry potter).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchThresholdDefaultFromConfig loads config at path and returns the default
// fuzzy threshold. On load failure, returns 0.6.
func searchThresholdDefaultFromConfig(path string) float64 {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return 0.6
	}
	return cfg.Search.FuzzyThreshold
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "hondana search \"query\" -threshold 0.5"
// would otherwise leave -threshold unparsed.
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

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])
	configPath := searchConfigPathFromArgs(searchArgs, defaultConfigPath)
	defaultThreshold := searchThresholdDefaultFromConfig(configPath)

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	entityType := fs.String("type", "all", "entity type: all, books, authors, or categories")
	threshold := fs.Float64("threshold", defaultThreshold, "minimum similarity score in [0,1]")
	page := fs.Int("page", 1, "result page (1-based)")
	pageSize := fs.Int("page-size", 0, "results per page (0 = server default)")
	userEmail := fs.String("user", "", "user email recorded with the search")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	request := &models.SearchRequest{
		Query:     queryStr,
		Type:      models.EntityType(*entityType),
		Threshold: threshold,
		Page:      *page,
		PageSize:  *pageSize,
		UserEmail: *userEmail,
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids SQLite lock conflict).
		response, err := searchViaHTTP(*serverURL, request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	response, err := components.Searcher.Search(context.Background(), request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, request *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	title := fs.String("title", "", "book title (required)")
	author := fs.String("author", "", "author name")
	genre := fs.String("genre", "", "genre/category")
	description := fs.String("description", "", "book description")
	price := fs.Float64("price", 0, "price")
	rating := fs.Float64("rating", 0, "rating in [0,5], 0 = unrated")
	inStock := fs.Bool("in-stock", true, "whether the book is in stock")
	_ = fs.Parse(os.Args[2:])

	if *title == "" {
		fmt.Println("Usage: hondana add --title <title> [flags]")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	book := &models.Book{
		ID:          uuid.NewString(),
		Title:       *title,
		Author:      *author,
		Genre:       *genre,
		Description: *description,
		Price:       *price,
		Rating:      *rating,
		InStock:     *inStock,
	}
	if err := components.Storage.CreateBook(context.Background(), book); err != nil {
		fmt.Printf("Adding book failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Book added: %s\n", book.ID)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: hondana delete [flags] <book-id>")
		os.Exit(1)
	}
	bookID := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if err := components.Storage.DeleteBook(context.Background(), bookID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Book deleted: %s\n", bookID)
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	userEmail := fs.String("user", "", "user email (default: anonymous)")
	limit := fs.Int("limit", 20, "maximum number of entries")
	clear := fs.Bool("clear", false, "clear history instead of listing it")
	_ = fs.Parse(os.Args[2:])

	query := url.Values{}
	if *userEmail != "" {
		query.Set("user_email", *userEmail)
	}

	if *clear {
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/search/history?"+query.Encode(), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Clear failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println("History cleared")
		return
	}

	query.Set("limit", fmt.Sprintf("%d", *limit))
	resp, err := http.Get(*serverURL + "/api/v1/search/history?" + query.Encode())
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Printf("History failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		History []models.SearchHistoryItem `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Printf("Parse failed: %v\n", err)
		os.Exit(1)
	}
	for _, item := range out.History {
		ts := time.UnixMilli(item.Timestamp).Format(time.RFC3339)
		fmt.Printf("%s  %-10s  %3d results  %s\n", ts, item.SearchType, item.ResultCount, item.Query)
	}
}

func runPopular() {
	fs := flag.NewFlagSet("popular", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "maximum number of entries")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/search/popular?limit=%d", *serverURL, *limit))
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Printf("Popular failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		Popular []models.PopularSearch `json:"popular"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Printf("Parse failed: %v\n", err)
		os.Exit(1)
	}
	for _, p := range out.Popular {
		fmt.Printf("%4d  %s\n", p.Count, p.Query)
	}
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Books          int64                  `json:"books"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		components, err := initializeComponents(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		bookCount, err := components.Storage.CountBooks(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count books failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Books: bookCount,
			Config: map[string]interface{}{
				"character_ngram_size": cfg.Search.CharacterNgramSize,
				"word_ngram_size":      cfg.Search.WordNgramSize,
				"fuzzy_threshold":      cfg.Search.FuzzyThreshold,
				"database_path":        cfg.Storage.DatabasePath,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("books:              %d   # count of catalog books\n", status.Books)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # database size on disk\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"character_ngram_size", "word_ngram_size", "fuzzy_threshold", "database_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-20s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage   *storage.SQLiteStorage
	Searcher  *search.Searcher
	Suggester suggest.Provider
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	searcher := search.NewSearcher(store, &cfg.Search)
	return &Components{
		Storage:   store,
		Searcher:  searcher,
		Suggester: suggest.FallbackProvider{},
	}, nil
}

func printUsage() {
	fmt.Println(`hondana - Fuzzy bookstore catalog search

Usage:
  hondana server [flags]           Start the HTTP server
  hondana search [flags] <query>   Search books, authors, and categories
  hondana add [flags]              Add a book to the catalog
  hondana delete [flags] <id>      Delete a book
  hondana history [flags]          Show or clear search history
  hondana popular [flags]          Show most frequent searches
  hondana status [flags]           Show catalog/storage status
  hondana version                  Show version
  hondana help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/hondana/config.yaml)
  --debug            Enable debug logging (search requests, history writes, etc.)

Search Flags:
  --config string    Config file path (for direct storage mode; also used for the default threshold)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --type string      Entity type: all, books, authors, or categories (default: all)
  --threshold float  Minimum similarity score in [0,1] (default from config, or 0.6)
  --page int         Result page, 1-based (default: 1)
  --page-size int    Results per page (0 = configured default)
  --user string      User email recorded with the search

Add Flags:
  --config string    Config file path
  --title string     Book title (required)
  --author string    Author name
  --genre string     Genre/category
  --price float      Price
  --rating float     Rating in [0,5], 0 = unrated
  --in-stock         Whether the book is in stock (default: true)

History Flags:
  --server string    Server URL (default: http://localhost:8080)
  --user string      User email (default: anonymous)
  --limit int        Maximum number of entries (default: 20)
  --clear            Clear history instead of listing it

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  hondana server
  hondana search "harry potter"
  hondana search --type authors rowling
  hondana search --threshold 0.4 harey poter
  hondana add --title "Dune" --author "Frank Herbert" --genre "Science Fiction" --price 15
  hondana delete 4f7a1c2e
  hondana history --user reader@example.com
  hondana popular
  hondana status --output json`)
}
