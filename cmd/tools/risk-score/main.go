// cmd/tools/risk-score/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"risk-workers/internal/risk"
)

const (
	exitOK      = 0
	exitError   = 1
	exitInvalid = 2
)

type output struct {
	Scores      risk.Scores      `json:"scores"`
	Levels      risk.Levels      `json:"levels"`
	Explanation risk.Explanation `json:"explanation"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("risk-score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "-", "Path to a risk assessment JSON file, or - for stdin")
	compact := fs.Bool("compact", false, "Print compact JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: risk-score [-input file.json] [-compact]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	payload, err := readInput(*inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input: %v\n", err)
		return exitError
	}

	result, err := risk.Assess(payload)
	if err != nil {
		failure, ok := err.(*risk.ValidationFailure)
		if !ok {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stderr, "Invalid input (%d errors):\n", len(failure.Errors))
		for _, fe := range failure.Errors {
			fmt.Fprintf(stderr, "  %s [%s]: %s\n", fe.Field, fe.Reason, fe.Message)
		}
		return exitInvalid
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(output{
		Scores:      result.Scores,
		Levels:      risk.LevelsFor(result.Scores),
		Explanation: result.Explanation,
	}); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitError
	}
	return exitOK
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
