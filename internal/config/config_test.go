// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/recordgate/internal/auth"
	"github.com/2389/recordgate/internal/query"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "127.0.0.1:3010"
  grpc_addr: "127.0.0.1:50051"

store:
  backend: "sqlite"
  path: "./records.db"
  driver: "sqlite3"

auth:
  jwt_secret: "`+testSecret+`"

query:
  response: "first"

updates:
  dir: "./updates"
  path: "/files"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:3010" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:3010")
	}
	if cfg.Server.GRPCAddr != "127.0.0.1:50051" {
		t.Errorf("Server.GRPCAddr = %q, want %q", cfg.Server.GRPCAddr, "127.0.0.1:50051")
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "./records.db" || cfg.Store.Driver != "sqlite3" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Query.Response != "first" {
		t.Errorf("Query.Response = %q, want %q", cfg.Query.Response, "first")
	}
	if cfg.Updates.Path != "/files/" {
		t.Errorf("Updates.Path = %q, want %q", cfg.Updates.Path, "/files/")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[server]
http_addr = "127.0.0.1:3010"

[store]
backend = "redis"

[store.redis]
addr = "localhost:6379"
db = 2
key = "records"

[auth]
jwt_secret = "`+testSecret+`"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Backend != BackendRedis {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendRedis)
	}
	if cfg.Store.Redis.Addr != "localhost:6379" || cfg.Store.Redis.DB != 2 || cfg.Store.Redis.Key != "records" {
		t.Errorf("Store.Redis = %+v", cfg.Store.Redis)
	}
	if cfg.Query.Response != "all" {
		t.Errorf("Query.Response default = %q, want %q", cfg.Query.Response, "all")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
store:
  path: "/root/http/data.json"
auth:
  jwt_secret: "`+testSecret+`"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Server.GRPCAddr != "" {
		t.Errorf("Server.GRPCAddr = %q, want empty", cfg.Server.GRPCAddr)
	}
	if cfg.Store.Backend != BackendJSON {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendJSON)
	}
	if cfg.Updates.Path != DefaultUpdatesPath {
		t.Errorf("Updates.Path = %q, want %q", cfg.Updates.Path, DefaultUpdatesPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("RECORDGATE_TEST_SECRET", testSecret)
	t.Setenv("RECORDGATE_TEST_DATA", "/srv/data.json")

	configPath := writeConfig(t, "config.yaml", `
store:
  path: "${RECORDGATE_TEST_DATA}"
auth:
  jwt_secret: "${RECORDGATE_TEST_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != testSecret {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, testSecret)
	}
	if cfg.Store.Path != "/srv/data.json" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "/srv/data.json")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing secret",
			content: "store:\n  path: data.json\n",
			wantErr: "auth.jwt_secret is required",
		},
		{
			name:    "short secret",
			content: "store:\n  path: data.json\nauth:\n  jwt_secret: short\n",
			wantErr: "at least 32 bytes",
		},
		{
			name:    "json backend without path",
			content: "auth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "store.path is required",
		},
		{
			name:    "postgres without dsn",
			content: "store:\n  backend: postgres\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "store.dsn is required",
		},
		{
			name:    "redis without addr",
			content: "store:\n  backend: redis\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "store.redis.addr is required",
		},
		{
			name:    "unknown backend",
			content: "store:\n  backend: mongo\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "unknown store.backend",
		},
		{
			name:    "bad sqlite driver",
			content: "store:\n  backend: sqlite\n  path: x.db\n  driver: duckdb\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "store.driver",
		},
		{
			name:    "bad response shape",
			content: "store:\n  path: data.json\nquery:\n  response: last\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "query.response",
		},
		{
			name:    "tailscale without hostname",
			content: "tailscale:\n  enabled: true\nstore:\n  path: data.json\nauth:\n  jwt_secret: " + testSecret + "\n",
			wantErr: "tailscale.hostname is required",
		},
		{
			name:    "invalid yaml",
			content: "store: [unclosed",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tt.content))
			if err == nil {
				t.Fatal("Load() should have returned an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MatchesAuthAndQueryRules(t *testing.T) {
	base := func() *Config {
		c := &Config{Store: StoreConfig{Path: "data.json"}}
		c.ApplyDefaults()
		return c
	}

	c := base()
	c.Auth.JWTSecret = strings.Repeat("s", auth.MinSecretLength)
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() with %d-byte secret error = %v", auth.MinSecretLength, err)
	}
	if _, err := auth.NewJWTVerifier([]byte(c.Auth.JWTSecret)); err != nil {
		t.Errorf("NewJWTVerifier() rejected a secret Validate accepted: %v", err)
	}

	c.Auth.JWTSecret = strings.Repeat("s", auth.MinSecretLength-1)
	if err := c.Validate(); err == nil {
		t.Error("Validate() accepted a secret shorter than auth.MinSecretLength")
	}

	for _, shape := range []query.Shape{query.ShapeAll, query.ShapeFirst} {
		c = base()
		c.Auth.JWTSecret = testSecret
		c.Query.Response = string(shape)
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() response %q error = %v", shape, err)
		}
	}

	c = base()
	c.Auth.JWTSecret = testSecret
	c.Query.Response = "last"
	if err := c.Validate(); !errors.Is(err, query.ErrUnknownShape) {
		t.Errorf("Validate() response \"last\" error = %v, want ErrUnknownShape", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v, want reading config file error", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RG_A", "alpha")

	got := expandEnvVars("a=${RG_A} b=${RG_UNSET_VARIABLE} c=$RG_A")
	want := "a=alpha b= c=$RG_A"
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}
