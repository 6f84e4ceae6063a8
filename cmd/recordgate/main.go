// ABOUTME: Entry point for the recordgate server
// ABOUTME: Subcommands to serve, write a config, check health and mint tokens

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/recordgate/internal/auth"
	"github.com/2389/recordgate/internal/config"
	"github.com/2389/recordgate/internal/gateway"
)

// Version is set at build time.
var version = "dev"

const banner = `
                          _             _
 _ __ ___  ___ ___  _ __ __| | __ _  __ _| |_ ___
| '__/ _ \/ __/ _ \| '__/ _' |/ _' |/ _' | __/ _ \
| | |  __/ (_| (_) | | | (_| | (_| | (_| | ||  __/
|_|  \___|\___\___/|_|  \__,_|\__, |\__,_|\__\___|
                              |___/
`

// getConfigPath returns the path to the server config file.
// Priority: RECORDGATE_CONFIG env var > XDG_CONFIG_HOME/recordgate/config.yaml > ~/.config/recordgate/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("RECORDGATE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "recordgate", "config.yaml")
}

func usage() {
	fmt.Println("Usage: recordgate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve              Start the server")
	fmt.Println("  init               Create a new config file interactively")
	fmt.Println("  health             Check server health and store readiness")
	fmt.Println("  token --key KEY    Issue a session token for an API key in the store")
	fmt.Println("  version            Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, getConfigPath())
	case "health":
		err = runHealth(ctx)
	case "token":
		err = runToken(ctx, os.Args[2:])
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s %s\n", cfg.Store.Backend, storeTarget(cfg.Store))
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	if cfg.Server.GRPCAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("gRPC:      %s\n", cfg.Server.GRPCAddr)
	}
	if cfg.Updates.Dir != "" {
		green.Print("    ▶ ")
		fmt.Printf("Updates:   %s -> %s\n", cfg.Updates.Path, cfg.Updates.Dir)
	}

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting recordgate",
		"config", configPath,
		"store", cfg.Store.Backend,
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"response", cfg.Query.Response,
	)

	gw, err := gateway.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

// storeTarget describes where the configured backend reads from, without secrets.
func storeTarget(cfg config.StoreConfig) string {
	switch cfg.Backend {
	case config.BackendPostgres:
		return "(dsn configured)"
	case config.BackendRedis:
		return cfg.Redis.Addr
	default:
		return cfg.Path
	}
}

// localURL turns a listen address into a URL reachable from this host.
func localURL(addr, path string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + path
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + path
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	for _, path := range []string{"/health", "/health/ready"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, localURL(cfg.Server.HTTPAddr, path), nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		fmt.Printf("%-14s %s\n", path, strings.TrimSpace(string(body)))
	}

	color.New(color.FgGreen).Println("healthy")
	return nil
}

// parseKeyFlag accepts "--key value", "--key=value", "-k value" and "-k=value".
func parseKeyFlag(args []string) (string, error) {
	var key string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--key" || arg == "-k":
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			key = args[i+1]
			i++
		case strings.HasPrefix(arg, "--key="):
			key = strings.TrimPrefix(arg, "--key=")
		case strings.HasPrefix(arg, "-k="):
			key = strings.TrimPrefix(arg, "-k=")
		case strings.HasPrefix(arg, "-"):
			return "", fmt.Errorf("unknown flag: %s", arg)
		default:
			return "", fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("--key flag is required")
	}
	return key, nil
}

// runToken issues a token the same way /auth does, reading the store directly.
func runToken(ctx context.Context, args []string) error {
	key, err := parseKeyFlag(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// Keep stdout for the token alone.
	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}

	s, err := gateway.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	token, err := auth.NewGate(s, verifier, logger).Authenticate(ctx, key)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

// generateSecret returns a random base64 signing secret.
func generateSecret() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func runInit(in io.Reader, defaultConfigPath string) error {
	reader := bufio.NewReader(in)

	fmt.Println("recordgate configuration setup")
	fmt.Println("==============================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", config.DefaultHTTPAddr)
	grpcAddr := prompt(reader, "gRPC address (empty to disable)", "")

	fmt.Println("\n--- Record Store ---")
	backend := prompt(reader, "Backend (json/sqlite/postgres/redis)", config.BackendJSON)

	var storeBlock strings.Builder
	storeBlock.WriteString("store:\n")
	storeBlock.WriteString(fmt.Sprintf("  backend: %q\n", backend))
	switch backend {
	case config.BackendSQLite:
		storeBlock.WriteString(fmt.Sprintf("  path: %q\n", prompt(reader, "SQLite database path", "records.db")))
		storeBlock.WriteString(fmt.Sprintf("  driver: %q\n", prompt(reader, "SQLite driver (sqlite/sqlite3)", "sqlite")))
	case config.BackendPostgres:
		storeBlock.WriteString(fmt.Sprintf("  dsn: %q\n", prompt(reader, "PostgreSQL DSN", "postgres://localhost:5432/recordgate")))
	case config.BackendRedis:
		storeBlock.WriteString("  redis:\n")
		storeBlock.WriteString(fmt.Sprintf("    addr: %q\n", prompt(reader, "Redis address", "localhost:6379")))
		storeBlock.WriteString(fmt.Sprintf("    key: %q\n", prompt(reader, "Redis list key", "recordgate:records")))
	default:
		storeBlock.WriteString(fmt.Sprintf("  path: %q\n", prompt(reader, "JSON data file", "data.json")))
	}

	fmt.Println("\n--- Queries ---")
	response := prompt(reader, "Response shape (all/first)", "all")

	fmt.Println("\n--- Tailscale Configuration ---")
	tailscaleEnabled := yes(prompt(reader, "Enable Tailscale?", "no"))

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "recordgate")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = yes(prompt(reader, "Ephemeral node?", "no"))
		tsFunnel = yes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	var cfg strings.Builder
	cfg.WriteString("# recordgate configuration\n")
	cfg.WriteString("# Generated by recordgate init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	if grpcAddr != "" {
		cfg.WriteString(fmt.Sprintf("  grpc_addr: %q\n", grpcAddr))
	}
	cfg.WriteString("\n")

	cfg.WriteString(storeBlock.String())
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", secret))
	cfg.WriteString("\n")

	cfg.WriteString("query:\n")
	cfg.WriteString(fmt.Sprintf("  response: %q\n", response))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the signing secret.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  RECORDGATE_CONFIG=%s recordgate serve\n", outputFile)

	return nil
}

func yes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "yes" || a == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
