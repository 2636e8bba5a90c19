// Command dirschema is the CLI front-end for the DirSchema evaluation
// engine: it loads a rule document and a target directory, runs the
// Driver, and reports pass/fail per path. Its flag-subcommand shape follows
// gofulmen's cmd/gofulmen-schema/main.go ("validate"/"validate-schema"
// style), adapted to DirSchema's single "check" operation.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dirschema/dirschema-go/driver"
	"github.com/dirschema/dirschema-go/dsconfig"
	"github.com/dirschema/dirschema-go/dslog"
	"github.com/dirschema/dirschema-go/eval"
	"github.com/dirschema/dirschema-go/jsonvalidator"
	"github.com/dirschema/dirschema-go/plugin/nonempty"
	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/schemaresolve"
	"github.com/dirschema/dirschema-go/treeadapter/fsadapter"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "check":
		if err := runCheck(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dirschema check --rules <doc> --target <dir> [--format text|json]")
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	rulesPath := fs.String("rules", "", "Path to the dirschema rule document (YAML or JSON)")
	targetDir := fs.String("target", "", "Directory to evaluate")
	format := fs.String("format", "text", "Output format (text|json)")
	configPath := fs.String("config", "", "Path to a dirschema config.yaml (defaults to the XDG location)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *rulesPath == "" {
		return errors.New("--rules is required")
	}
	if *targetDir == "" {
		return errors.New("--target is required")
	}

	userConfigPath := *configPath
	if userConfigPath == "" {
		userConfigPath = dsconfig.UserConfigPath()
	}
	absTarget, err := filepath.Abs(*targetDir)
	if err != nil {
		return fmt.Errorf("resolve target dir: %w", err)
	}
	cfg, err := dsconfig.Load(userConfigPath, &dsconfig.DriverConfig{
		SchemaBaseDir: filepath.Dir(*rulesPath),
		WorkingDir:    absTarget,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := dslog.New(dslog.Config{Level: cfg.LogLevel, Service: "dirschema", FilePath: cfg.LogFilePath})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() // nolint:errcheck -- best-effort flush on exit

	data, err := os.ReadFile(*rulesPath) // #nosec G304 -- operator-supplied CLI path
	if err != nil {
		return fmt.Errorf("read rules: %w", err)
	}
	root, err := rule.Parse(data)
	if err != nil {
		return fmt.Errorf("parse rules: %w", err)
	}

	adapter, err := fsadapter.New(fsadapter.Config{Root: absTarget})
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}

	validator := jsonvalidator.New()
	for _, name := range cfg.Plugins {
		if name == nonempty.Name {
			nonempty.Register(validator)
		}
	}

	resolver := schemaresolve.New(schemaresolve.Options{
		LocalBase:  cfg.SchemaBaseDir,
		WorkingDir: cfg.WorkingDir,
	})
	evaluator := eval.New(adapter, cfg.Convention, resolver, validator)
	d := driver.New(evaluator, adapter, cfg.Convention, logger)

	result, err := d.Run(&root)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return emit(result, *format)
}

func emit(result driver.Result, format string) error {
	switch format {
	case "json":
		payload := map[string]any{
			"runId":       result.RunID,
			"pathsTotal":  len(result.Paths),
			"pathsFailed": len(result.Reports),
			"reports":     result.Reports,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	default:
		if len(result.Reports) == 0 {
			fmt.Printf("dirschema: %d paths checked, all passed\n", len(result.Paths))
		} else {
			fmt.Printf("dirschema: %d of %d paths failed\n", len(result.Reports), len(result.Paths))
			for _, p := range result.Paths {
				report, failed := result.Reports[p]
				if !failed {
					continue
				}
				printReport(p, report, 0)
			}
		}
	}

	if len(result.Reports) > 0 {
		os.Exit(1)
	}
	return nil
}

func printReport(path string, report *eval.Report, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if depth == 0 {
		fmt.Printf("%s- %s: %s\n", indent, path, report.Message)
	} else {
		fmt.Printf("%s- %s\n", indent, report.Message)
	}
	for _, child := range report.Children {
		fmt.Printf("%s  [%s]\n", indent, child.Key)
		if child.Report != nil {
			printReport(path, child.Report, depth+2)
		}
	}
}
