// cmd/tools/location-registry/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/pkg/locations"
)

const defaultPath = "locations.json"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, time.Now))
}

func run(args []string, out io.Writer, now func() time.Time) int {
	if len(args) < 1 {
		help(out)
		return 1
	}

	var err error
	switch args[0] {
	case "init":
		err = runInit(args[1:], out, now)
	case "add":
		err = runAdd(args[1:], out, now)
	case "update":
		err = runUpdate(args[1:], out, now)
	case "validate":
		err = runValidate(args[1:], out)
	case "list":
		err = runList(args[1:], out)
	case "help", "-h", "--help":
		help(out)
		return 0
	default:
		help(out)
		return 1
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runInit(args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultPath, "registry file to create")
	fromFIPS := fs.Bool("from-fips", true, "seed with the embedded US state FIPS table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*path); err == nil {
		return fmt.Errorf("%s already exists", *path)
	}

	reg := &locations.Registry{Version: "1.0.0", LastUpdated: now().UTC().Format(time.RFC3339)}
	if *fromFIPS {
		for code, name := range locations.Default() {
			reg.Locations = append(reg.Locations, locations.Entry{Code: code, Name: name})
		}
	}
	if err := locations.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %s with %d location(s)\n", *path, len(reg.Locations))
	return nil
}

func runAdd(args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultPath, "registry file")
	code := fs.String("code", "", "location code (e.g. 06 or US)")
	name := fs.String("name", "", "display name (e.g. California)")
	abbr := fs.String("abbreviation", "", "optional abbreviation (e.g. CA)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" || *name == "" {
		fs.Usage()
		return errors.New("code and name are required for add")
	}

	reg, err := loadOrNew(*path, now)
	if err != nil {
		return err
	}
	padded := models.PadLocationCode(*code)
	if reg.Find(padded) >= 0 {
		return fmt.Errorf("location %s already exists", padded)
	}
	reg.Locations = append(reg.Locations, locations.Entry{Code: padded, Name: *name, Abbreviation: *abbr})
	reg.LastUpdated = now().UTC().Format(time.RFC3339)
	if err := locations.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added location %s (%s)\n", padded, *name)
	return nil
}

func runUpdate(args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultPath, "registry file")
	code := fs.String("code", "", "location code to update")
	field := fs.String("field", "", "field to update: name or abbreviation")
	value := fs.String("value", "", "new value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" || *field == "" {
		fs.Usage()
		return errors.New("code and field are required for update")
	}

	reg, err := locations.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	padded := models.PadLocationCode(*code)
	i := reg.Find(padded)
	if i < 0 {
		return fmt.Errorf("location %s not found", padded)
	}
	switch *field {
	case "name":
		if *value == "" {
			return errors.New("name cannot be empty")
		}
		reg.Locations[i].Name = *value
	case "abbreviation":
		reg.Locations[i].Abbreviation = *value
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}
	reg.LastUpdated = now().UTC().Format(time.RFC3339)
	if err := locations.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated location %s, field %s to %q\n", padded, *field, *value)
	return nil
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultPath, "registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg, err := locations.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(out, "Registry validation passed. Found %d location(s).\n", len(reg.Locations))
	return nil
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "registry file; empty lists the embedded FIPS table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mapping, err := locations.Resolve(*path)
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(mapping))
	for code := range mapping {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "%-6s %s\n", code, mapping[code])
	}
	return nil
}

func loadOrNew(path string, now func() time.Time) (*locations.Registry, error) {
	reg, err := locations.LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return &locations.Registry{Version: "1.0.0", LastUpdated: now().UTC().Format(time.RFC3339)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: location-registry <command> [flags]

Maintains a custom location mapping file. Point the builder at it with
locations.mapping_file in dashboard-builder.yaml.

Commands:
  init      Create a registry, seeded with the US state FIPS table
  add       Add a location
  update    Update a location's name or abbreviation
  validate  Validate the registry file
  list      Print the resolved code to name table
  help      Show this help message

Examples:
  location-registry init -path configs/locations.json
  location-registry add -path configs/locations.json -code US -name "United States"
  location-registry update -path configs/locations.json -code 6 -field abbreviation -value CA
`)
}
