package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evvaletov/tracked"
	"github.com/evvaletov/tracked/audit"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	switch os.Args[1] {
	case "audit":
		auditCmd(os.Args[2:])
	case "paths":
		pathsCmd(os.Args[2:])
	case "dump":
		dumpCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `tracked CLI

Usage:
  tracked audit -config FILE -ref FILE [-format json|yaml|toml] [-v]
  tracked paths -f FILE [-format json|yaml|toml]
  tracked dump  -f FILE [-format json|yaml|toml]

Commands:
  audit  consume the config along every path the reference defines, then
         report config keys the reference does not know (unknown) and
         reference keys the config does not supply (missing); exits 1 when
         either list is non-empty
  paths  print every mapping-key path in a file
  dump   print the decoded, normalized tree with concrete Go types

The format is inferred from the file extension when -format is omitted.`)
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	var configPath, refPath, format string
	var verbose bool
	fs.StringVar(&configPath, "config", "", "configuration file to audit")
	fs.StringVar(&refPath, "ref", "", "reference file naming the known keys")
	fs.StringVar(&format, "format", "", "input format for both files (json|yaml|toml)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if configPath == "" || refPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	logger := newLogger(verbose)
	defer func() { _ = logger.Sync() }()

	cfg := loadFile(logger, configPath, format)
	ref := loadFile(logger, refPath, format)
	logger.Debug("comparing trees",
		zap.String("config", configPath),
		zap.String("ref", refPath),
		zap.Int("configKeys", cfg.Len()),
		zap.Int("refKeys", ref.Len()))

	res := audit.Compare(cfg, ref.Raw())
	for _, p := range res.Missing {
		fmt.Printf("%s %s\n", color.YellowString("missing:"), p)
	}
	for _, p := range res.Unknown {
		fmt.Printf("%s %s\n", color.RedString("unknown:"), p)
	}
	if !res.Empty() {
		os.Exit(1)
	}
	fmt.Println("ok: config and reference agree on keys")
}

func pathsCmd(args []string) {
	fs := flag.NewFlagSet("paths", flag.ExitOnError)
	var file, format string
	fs.StringVar(&file, "f", "", "file to list paths of")
	fs.StringVar(&format, "format", "", "input format (json|yaml|toml)")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	m := loadFile(zap.NewNop(), file, format)
	for _, p := range audit.Paths(m.Raw()) {
		fmt.Println(p)
	}
}

func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var file, format string
	fs.StringVar(&file, "f", "", "file to dump")
	fs.StringVar(&format, "format", "", "input format (json|yaml|toml)")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	m := loadFile(zap.NewNop(), file, format)
	spew.Dump(m.Raw())
}

func newLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		fatalf("logger: %v", err)
	}
	return logger
}

func loadFile(logger *zap.Logger, path, format string) *tracked.Map {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	f := format
	if f == "" {
		f = formatFromExt(path)
	}
	logger.Debug("decoding file",
		zap.String("path", path),
		zap.String("format", f),
		zap.Int("bytes", len(data)))
	var m *tracked.Map
	switch f {
	case "json":
		m, err = tracked.FromJSON(data)
	case "yaml", "yml":
		m, err = tracked.FromYAML(data)
	case "toml":
		m, err = tracked.FromTOML(data)
	default:
		fatalf("cannot infer format of %s (use -format)", path)
	}
	if err != nil {
		fatalf("decode %s: %v", path, err)
	}
	return m
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
