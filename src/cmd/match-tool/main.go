// match-tool runs the label matcher offline against a profile file. Useful
// for tuning MATCH_THRESHOLD and checking what a recognized label would
// resolve to, without touching the screen or the clipboard.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"profile-clip/src/config"
	"profile-clip/src/match"
	"profile-clip/src/profile"
)

type cliOptions struct {
	text        string
	profilePath string
	threshold   float64
	jsonOutput  bool
	verbose     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"match-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "match-tool",
		Short:         "Match a recognized label against the profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "Recognized label text (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "Path to profile YAML (overrides PROFILE_PATH)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Similarity threshold override (0 keeps the configured value)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output candidates as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{ProfilePathOverride: opts.profilePath})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	threshold := cfg.MatchThreshold
	if opts.threshold > 0 {
		threshold = opts.threshold
	}

	text := opts.text
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("no text to match")
	}

	store, err := profile.Open(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to open profile %s: %w", cfg.ProfilePath, err)
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Profile: %s (%d fields), threshold %.2f\n",
			store.Path(), len(store.Fields()), threshold)
	}

	candidates := match.Match(text, store.Fields(), threshold)
	return outputResult(text, threshold, candidates, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-text":
			normalized[i] = "--text"
		case strings.HasPrefix(arg, "-text="):
			normalized[i] = "--text=" + arg[len("-text="):]
		case arg == "-profile":
			normalized[i] = "--profile"
		case strings.HasPrefix(arg, "-profile="):
			normalized[i] = "--profile=" + arg[len("-profile="):]
		case arg == "-json":
			normalized[i] = "--json"
		case strings.HasPrefix(arg, "-json="):
			normalized[i] = "--json=" + arg[len("-json="):]
		case arg == "-verbose":
			normalized[i] = "--verbose"
		case strings.HasPrefix(arg, "-verbose="):
			normalized[i] = "--verbose=" + arg[len("-verbose="):]
		}
	}

	return normalized
}

type matchResult struct {
	Text       string           `json:"text"`
	Threshold  float64          `json:"threshold"`
	Candidates []matchCandidate `json:"candidates"`
}

type matchCandidate struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

func outputResult(text string, threshold float64, candidates []match.Candidate, jsonOutput bool) error {
	if jsonOutput {
		result := matchResult{Text: text, Threshold: threshold, Candidates: []matchCandidate{}}
		for _, c := range candidates {
			result.Candidates = append(result.Candidates, matchCandidate{Label: c.Label, Value: c.Value, Score: c.Score})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	if len(candidates) == 0 {
		return fmt.Errorf("no match at or above threshold %.2f", threshold)
	}
	for _, c := range candidates {
		fmt.Printf("%.0f%%\t%s\t%s\n", c.Score*100, c.Label, c.Value)
	}
	return nil
}
