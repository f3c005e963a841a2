// Command connexion resolves JSON References in schema documents and
// validates JSON/YAML instances against OpenAPI schemas.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/minet/connexion"
	"github.com/minet/connexion/jsonref"
	"github.com/minet/connexion/validator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("connexion v%s\n", connexion.Version())
	case "help", "-h", "--help":
		printUsage()
	case "resolve":
		if err := handleResolve(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if err := handleValidate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`connexion - runtime schema resolution and validation

Usage:
  connexion <command> [flags]

Commands:
  resolve    Resolve all $ref references in a schema document
  validate   Validate an instance document against a schema
  version    Print version information
  help       Show this help

Run 'connexion <command> -h' for command-specific flags.
`)
}

func handleResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "emit resolved schema as JSON instead of YAML")
	baseDir := fs.String("base-dir", "", "base directory for relative file references (default: schema file's directory)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: connexion resolve [flags] <schema-file>")
	}
	specPath := fs.Arg(0)

	spec, err := loadDocument(specPath)
	if err != nil {
		return err
	}

	opts := []jsonref.Option{
		jsonref.WithBaseDir(resolveBaseDir(*baseDir, specPath)),
	}
	if *verbose {
		opts = append(opts, jsonref.WithLogger(debugLogger()))
	}

	resolved, err := jsonref.Resolve(spec, opts...)
	if err != nil {
		return err
	}

	var out []byte
	if *jsonOut {
		out, err = json.MarshalIndent(resolved, "", "  ")
	} else {
		out, err = yaml.Marshal(resolved)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize resolved schema: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func handleValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema document (YAML or JSON), required")
	instancePath := fs.String("instance", "", "instance document to validate, required")
	mode := fs.String("mode", "request", "validation mode: request or response")
	baseDir := fs.String("base-dir", "", "base directory for relative file references")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schemaPath == "" || *instancePath == "" {
		return fmt.Errorf("both -schema and -instance are required")
	}

	registry, err := registryForMode(*mode)
	if err != nil {
		return err
	}

	spec, err := loadDocument(*schemaPath)
	if err != nil {
		return err
	}
	instance, err := loadDocument(*instancePath)
	if err != nil {
		return err
	}

	opts := []jsonref.Option{
		jsonref.WithBaseDir(resolveBaseDir(*baseDir, *schemaPath)),
	}
	if *verbose {
		opts = append(opts, jsonref.WithLogger(debugLogger()))
	}

	resolved, err := jsonref.Resolve(spec, opts...)
	if err != nil {
		return err
	}
	schema, ok := resolved.(map[string]any)
	if !ok {
		return fmt.Errorf("schema root must be an object, got %T", resolved)
	}

	v := validator.NewWithRegistry(schema, registry)
	errs := v.Validate(instance)
	if len(errs) == 0 {
		fmt.Println("✓ instance is valid")
		return nil
	}

	for _, e := range errs {
		printValidationError(e, 0)
	}
	return fmt.Errorf("instance is invalid (%d errors)", len(errs))
}

// printValidationError prints an error and its nested context, indented by
// nesting depth.
func printValidationError(e *validator.ValidationError, depth int) {
	indent := strings.Repeat("    ", depth)
	fmt.Printf("%s✗ %s\n", indent, e)
	for _, nested := range e.Context {
		printValidationError(nested, depth+1)
	}
}

// registryForMode maps a -mode flag value to a keyword registry.
func registryForMode(mode string) (validator.Registry, error) {
	switch mode {
	case "request":
		return validator.RequestRegistry(), nil
	case "response":
		return validator.ResponseRegistry(), nil
	default:
		return nil, fmt.Errorf("invalid mode %q (must be request or response)", mode)
	}
}

// resolveBaseDir picks the base directory for relative file references:
// the explicit flag when set, otherwise the schema file's directory.
func resolveBaseDir(flagValue, specPath string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Dir(specPath)
}

// loadDocument reads and parses a YAML or JSON document from disk.
func loadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc any
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON: %w", path, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// debugLogger returns a jsonref.Logger emitting debug-level text to stderr.
func debugLogger() jsonref.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return jsonref.NewSlogAdapter(slog.New(handler))
}
