package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/evvaletov/tracked"
	"gopkg.in/yaml.v3"
)

// ServerConfig is what the HTTP layer reads at startup.
type ServerConfig struct {
	Host string
	Port int
	TLS  bool
}

// DatabaseConfig is what the storage layer reads at startup.
type DatabaseConfig struct {
	DSN      string
	MaxConns int
}

// LoggingConfig is what the logging setup reads at startup.
type LoggingConfig struct {
	Level  string
	Format string
}

// ConfigManager loads layered YAML configuration through access-tracking
// wrappers, so that after startup it can report every key no component read.
type ConfigManager struct{}

func NewConfigManager() *ConfigManager { return &ConfigManager{} }

// LoadConfig reads base.yaml, overlays <env>.yaml when present, expands
// environment variables, and wraps the merged tree for tracking.
func (cm *ConfigManager) LoadConfig(env string) (*tracked.Map, error) {
	baseData, err := cm.loadFile("base.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	base, err := tracked.FromYAML(cm.expandEnvVars(baseData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base config: %w", err)
	}
	merged := base.Raw()

	envFile := fmt.Sprintf("%s.yaml", env)
	if cm.fileExists(envFile) {
		envData, err := cm.loadFile(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", env, err)
		}
		overlay, err := tracked.FromYAML(cm.expandEnvVars(envData))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s config: %w", env, err)
		}
		merged = mergeTrees(merged, overlay.Raw())
	}

	return tracked.NewMap(merged), nil
}

// AuditConfig simulates application startup: every component reads its own
// settings through the wrapper, then whatever was never read is reported.
func (cm *ConfigManager) AuditConfig(env string, strict bool) error {
	cfg, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	server := readServerConfig(cfg)
	db := readDatabaseConfig(cfg)
	logging := readLoggingConfig(cfg)

	fmt.Printf("✅ Loaded configuration for environment '%s'\n", env)
	fmt.Printf("   server:   %s:%d (tls=%v)\n", server.Host, server.Port, server.TLS)
	fmt.Printf("   database: %s (maxConns=%d)\n", db.DSN, db.MaxConns)
	fmt.Printf("   logging:  level=%s format=%s\n", logging.Level, logging.Format)

	unused := cfg.Unaccessed()
	if len(unused) == 0 {
		fmt.Println("✅ Every configuration key was consumed")
		return nil
	}

	fmt.Printf("⚠️  %d configuration key(s) were never read:\n", len(unused))
	for _, path := range unused {
		fmt.Printf("   - %s\n", path)
	}
	if strict {
		return fmt.Errorf("%d unused configuration key(s)", len(unused))
	}
	return nil
}

// ShowConfig prints the merged configuration with secrets masked.
func (cm *ConfigManager) ShowConfig(env string, maskSecrets bool) error {
	cfg, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	tree := cfg.Raw()
	if maskSecrets {
		tree = maskTree(tree)
	}
	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Printf("📋 Configuration for environment: %s\n", env)
	fmt.Println("=" + strings.Repeat("=", len(env)+25))
	fmt.Print(string(data))
	return nil
}

// GenerateTemplate writes starter configuration files. The development
// overlay carries a deliberately misspelled key so the audit has something
// to find on the first run.
func (cm *ConfigManager) GenerateTemplate() error {
	templates := map[string]string{
		"base.yaml": `# Base configuration (common settings)
server:
  host: "0.0.0.0"
  port: 8080
  tls: false

database:
  dsn: "postgres://localhost/myapp"
  maxConns: 10

logging:
  level: "info"
  format: "json"
`,
		"development.yaml": `# Development environment overrides
server:
  port: 3000

database:
  dsn: "${DB_DSN:-postgres://localhost/myapp_dev}"
  maxConss: 25

logging:
  level: "debug"
`,
	}

	for filename, content := range templates {
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("📝 Generated %s\n", filename)
	}

	fmt.Println("✅ Template configuration files generated!")
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration files as needed")
	fmt.Println("2. Audit with: go run . audit --env=development")
	return nil
}

func (cm *ConfigManager) loadFile(filename string) ([]byte, error) {
	if !cm.fileExists(filename) {
		return nil, fmt.Errorf("file %s does not exist", filename)
	}
	return os.ReadFile(filename)
}

func (cm *ConfigManager) fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

func (cm *ConfigManager) expandEnvVars(data []byte) []byte {
	// Match ${VAR} and ${VAR:-default} patterns
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	result := re.ReplaceAllStringFunc(string(data), func(match string) string {
		varExpr := match[2 : len(match)-1]

		if strings.Contains(varExpr, ":-") {
			parts := strings.SplitN(varExpr, ":-", 2)
			if value := os.Getenv(parts[0]); value != "" {
				return value
			}
			return parts[1]
		}
		return os.Getenv(varExpr)
	})

	return []byte(result)
}

// mergeTrees overlays override onto base, descending into mappings present
// on both sides. Everything else is replaced wholesale.
func mergeTrees(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		if bm, ok := result[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				result[k] = mergeTrees(bm, om)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// maskTree copies the tree, replacing the values of secret-looking keys.
func maskTree(tree map[string]any) map[string]any {
	masked := make(map[string]any, len(tree))
	for k, v := range tree {
		switch t := v.(type) {
		case map[string]any:
			masked[k] = maskTree(t)
		default:
			lower := strings.ToLower(k)
			if strings.Contains(lower, "password") || strings.Contains(lower, "secret") || lower == "dsn" {
				masked[k] = "***masked***"
			} else {
				masked[k] = v
			}
		}
	}
	return masked
}

// The component readers below stand in for an application's startup path.
// Each reads only the keys its subsystem understands; type checks stay on
// the application side.

func readServerConfig(cfg *tracked.Map) ServerConfig {
	out := ServerConfig{Host: "0.0.0.0", Port: 8080}
	server, err := cfg.Get("server")
	if err != nil {
		return out
	}
	srv, ok := server.(*tracked.Map)
	if !ok {
		return out
	}
	out.Host = strAt(srv, "host", out.Host)
	out.Port = intAt(srv, "port", out.Port)
	out.TLS = boolAt(srv, "tls", false)
	return out
}

func readDatabaseConfig(cfg *tracked.Map) DatabaseConfig {
	out := DatabaseConfig{DSN: "postgres://localhost/app", MaxConns: 10}
	database, err := cfg.Get("database")
	if err != nil {
		return out
	}
	db, ok := database.(*tracked.Map)
	if !ok {
		return out
	}
	out.DSN = strAt(db, "dsn", out.DSN)
	out.MaxConns = intAt(db, "maxConns", out.MaxConns)
	return out
}

func readLoggingConfig(cfg *tracked.Map) LoggingConfig {
	out := LoggingConfig{Level: "info", Format: "json"}
	logging, err := cfg.Get("logging")
	if err != nil {
		return out
	}
	lg, ok := logging.(*tracked.Map)
	if !ok {
		return out
	}
	out.Level = strAt(lg, "level", out.Level)
	out.Format = strAt(lg, "format", out.Format)
	return out
}

func strAt(m *tracked.Map, key, def string) string {
	if s, ok := m.GetOr(key, def).(string); ok {
		return s
	}
	return def
}

func intAt(m *tracked.Map, key string, def int) int {
	switch n := m.GetOr(key, def).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func boolAt(m *tracked.Map, key string, def bool) bool {
	if b, ok := m.GetOr(key, def).(bool); ok {
		return b
	}
	return def
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cm := NewConfigManager()

	switch os.Args[1] {
	case "audit":
		env := getEnvFlag()
		strict := getBoolFlag("--strict")
		if err := cm.AuditConfig(env, strict); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Audit failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		env := getEnvFlag()
		maskSecrets := !getBoolFlag("--no-mask")
		if err := cm.ShowConfig(env, maskSecrets); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Show failed: %v\n", err)
			os.Exit(1)
		}

	case "generate":
		if err := cm.GenerateTemplate(); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Generate failed: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`🎯 tracked Config Manager Sample

Usage: %s <command> [flags...]

Commands:
  audit [--env=<env>] [--strict]   Load config, read it like the app would,
                                   and report keys nothing consumed
  show [--env=<env>] [--no-mask]   Show merged configuration (default: mask secrets)
  generate                         Generate template configuration files

Flags:
  --env=<environment>      Environment (default: development)
  --strict                 Exit non-zero when unused keys remain
  --no-mask                Don't mask sensitive information

Environment Files:
  base.yaml               Base configuration (required)
  <environment>.yaml      Environment-specific overrides (optional)

`, os.Args[0])
}

func getEnvFlag() string {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "--env=") {
			return strings.TrimPrefix(arg, "--env=")
		}
	}
	return "development"
}

func getBoolFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
