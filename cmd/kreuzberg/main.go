// Command kreuzberg extracts text and metadata from documents.
//
// Usage:
//
//	kreuzberg extract [-config file] [-ocr] [-json] FILE...
//	kreuzberg detect FILE
//	kreuzberg config [-file path]
//	kreuzberg version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
	"github.com/kreuzberg-dev/kreuzberg-go/extract"
	"github.com/kreuzberg-dev/kreuzberg-go/observer"
	"github.com/kreuzberg-dev/kreuzberg-go/ocr/tesseract"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "detect":
		err = runDetect(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "version":
		fmt.Println(kreuzberg.Version())
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "kreuzberg:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  kreuzberg extract [-config file] [-ocr] [-json] FILE...
  kreuzberg detect FILE
  kreuzberg config [-file path]
  kreuzberg version`)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a kreuzberg config file (default: discover)")
	enableOCR := fs.Bool("ocr", false, "register the tesseract OCR backend")
	asJSON := fs.Bool("json", false, "emit full results as JSON instead of plain content")
	otelExport := fs.Bool("otel", false, "export traces and metrics via OTLP")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("extract: at least one file is required")
	}

	ctx := context.Background()
	if *otelExport {
		_, shutdown, err := observer.Init(ctx)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer shutdown(ctx)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *enableOCR {
		if err := tesseract.Register(); err != nil {
			slog.Warn("tesseract backend unavailable", "error", err)
		}
	}

	if len(paths) == 1 {
		result, err := extract.File(ctx, paths[0], cfg)
		if err != nil {
			return err
		}
		return printResult(result, *asJSON)
	}

	results, err := extract.BatchFiles(ctx, paths, cfg)
	if err != nil {
		return err
	}
	for i, result := range results {
		if len(paths) > 1 && !*asJSON {
			fmt.Printf("==> %s <==\n", paths[i])
		}
		if err := printResult(result, *asJSON); err != nil {
			return err
		}
	}
	return nil
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("detect: exactly one file is required")
	}
	mimeType, err := kreuzberg.DetectMimeTypeFromPath(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(mimeType)
	return nil
}

// runConfig resolves and prints the effective configuration as canonical
// JSON, which doubles as a validation check for hand-written config files.
func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	file := fs.String("file", "", "config file to load (default: discover)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*file)
	if err != nil {
		return err
	}
	if cfg == nil {
		fmt.Println("{}")
		return nil
	}
	out, err := kreuzberg.ToJSON(cfg)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// loadConfig loads the named file, or discovers one from the working
// directory upward. A missing discovered config means engine defaults.
func loadConfig(path string) (*kreuzberg.ExtractionConfig, error) {
	if path != "" {
		return kreuzberg.FromFile(path)
	}
	cfg, _, err := kreuzberg.Discover()
	if errors.Is(err, kreuzberg.ErrConfigNotFound) {
		return nil, nil
	}
	return cfg, err
}

func printResult(result *kreuzberg.ExtractionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Println(result.Content)
	return nil
}
