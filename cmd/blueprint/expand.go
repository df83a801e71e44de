package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/cache"
	"github.com/ritzau/blueprint/pkg/config"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/metrics"
	"github.com/ritzau/blueprint/pkg/output"
	"github.com/ritzau/blueprint/pkg/store"
)

var (
	expandInstructions string
	expandApply        bool
)

var expandCmd = &cobra.Command{
	Use:   "expand <node-id>",
	Short: "Ask a language model to expand a mind-map node",
	Long: `Expand sends a mind-map node with its parent and siblings to the configured
model and stores the returned suggestions on the node as pending.

With --apply every suggestion is accepted right away. The diagram file is
updated in both cases.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
	f := expandCmd.Flags()
	f.StringVarP(&expandInstructions, "instructions", "i", "", "Extra guidance for the model")
	f.BoolVar(&expandApply, "apply", false, "Accept all suggestions")
	addAIFlags(expandCmd)
}

// addAIFlags registers the flags mapped onto the ai.* config keys.
func addAIFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("ai-provider", "openai", "Model provider: openai or anthropic")
	f.String("ai-model", "", "Model name (default depends on provider)")
	f.String("ai-key", "", "API key (or set BLUEPRINT_AI_KEY)")
	f.String("ai-baseurl", "", "Override the provider API base URL")
}

// newExpander builds the expander with caching, metrics and a circuit breaker.
func newExpander(c *config.Config, rec metrics.Recorder) (*expander.Expander, error) {
	completer, err := expander.NewCompleter(c.CompleterConfig())
	if err != nil {
		return nil, err
	}
	return expander.New(completer,
		expander.WithCache(cache.NewMemory(256), c.AI.TTL),
		expander.WithRecorder(rec),
		expander.WithBreaker(expander.DefaultBreakerConfig(completer.Provider())),
	), nil
}

func runExpand(cmd *cobra.Command, args []string) error {
	nodeID := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, _, err := diagram.ImportFile(cfg.Diagram)
	if err != nil {
		return err
	}
	st := store.New(g)

	exp, err := newExpander(cfg, metrics.Nop{})
	if err != nil {
		return err
	}
	result, err := exp.ExpandNode(ctx, st, nodeID, expandInstructions)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", nodeID, err)
	}
	if result.Reasoning != "" {
		fmt.Printf("Reasoning: %s\n\n", result.Reasoning)
	}

	if expandApply {
		for _, s := range result.Suggestions {
			if _, err := expander.Accept(ctx, st, nodeID, s.ID); err != nil {
				return fmt.Errorf("applying %s: %w", s.ID, err)
			}
		}
	}

	n, err := st.Node(nodeID)
	if err != nil {
		return err
	}
	output.PrintSuggestions(os.Stdout, n)
	return diagram.ExportFile(cfg.Diagram, st.Snapshot())
}
