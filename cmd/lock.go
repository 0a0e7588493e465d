package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/star-engine/internal/integrity"
)

var lockContextPairs []string

var lockCmd = &cobra.Command{
	Use:   "lock [text]",
	Short: "Run text through the three-stage integrity lock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := parseContextPairs(lockContextPairs)
		if err != nil {
			return err
		}

		protocol, err := buildProtocol()
		if err != nil {
			return err
		}

		rec, err := protocol.Process(args[0], ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

// buildProtocol constructs the integrity protocol, loading a rule override
// file when one is configured.
func buildProtocol() (*integrity.Protocol, error) {
	if cfg.Engine.IntegrityRulesPath == "" {
		return integrity.New(cfg.Engine), nil
	}

	rules, err := integrity.LoadRules(cfg.Engine.IntegrityRulesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load integrity rules")
	}
	return integrity.New(cfg.Engine, integrity.WithRules(rules)), nil
}

func parseContextPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	ctx := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("context pair %q is not key=value", pair)
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "context value for %q", key)
		}
		ctx[key] = val
	}
	return ctx, nil
}

func init() {
	lockCmd.Flags().StringSliceVar(&lockContextPairs, "context", nil, "context values as key=value pairs")
	rootCmd.AddCommand(lockCmd)
}
