// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"risk-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

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
	case "sync":
		err = syncCmd(args[1:], out, now)
	case "update":
		err = updateCmd(args[1:], out, now)
	case "validate":
		err = validateCmd(args[1:], out)
	case "help", "-h", "--help":
		help(out)
		return 0
	default:
		fmt.Fprintf(out, "Unknown command: %s\n", args[0])
		help(out)
		return 1
	}

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	return 0
}

// syncCmd writes the built-in worker activities into the registry, keeping
// any other activities already present.
func syncCmd(args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	version := fs.String("version", "1.0.0", "Version stamped on every built-in activity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.New("1.0.0")
	}

	for _, a := range builtinActivities(*version) {
		if reg.Upsert(a, now()) {
			fmt.Fprintf(out, "Updated activity: %s\n", a.ID)
		} else {
			fmt.Fprintf(out, "Added activity: %s\n", a.ID)
		}
	}

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry invalid after sync: %w", err)
	}
	return registry.SaveRegistry(reg, *path)
}

func updateCmd(args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, etc.)")
	value := fs.String("value", "", "New value for the field")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *field == "" || *value == "" {
		return fmt.Errorf("id, field, and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity, ok := reg.Find(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}

	updated := *activity
	switch *field {
	case "status":
		updated.ImplementationStatus = *value
	case "version":
		updated.Version = *value
	case "displayName":
		updated.DisplayName = *value
	case "description":
		updated.Description = *value
	case "timeout":
		updated.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		updated.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	reg.Upsert(updated, now())
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := registry.SaveRegistry(reg, *path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func validateCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: registry-updater <command> [flags]

Commands:
  sync     Write the built-in risk workers into the registry
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater sync -path configs/activity-registry.json
  registry-updater update -id send-risk-alert -field status -value verified
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
