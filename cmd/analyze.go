package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/star-engine/internal/engine"
)

var analyzeMetrics engine.MetricSet

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Evaluate one metric set and print the verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := engine.New(cfg.Engine)
		result := eng.Evaluate(analyzeMetrics)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.Float64Var(&analyzeMetrics.Alignment, "alignment", 0, "alignment component")
	f.Float64Var(&analyzeMetrics.Separation, "separation", 0, "separation component")
	f.Float64Var(&analyzeMetrics.Dt, "dt", 1, "time delta for the growth rate")
	f.Float64Var(&analyzeMetrics.OmegaTruth, "omega-truth", 0, "truth signal")
	f.Float64Var(&analyzeMetrics.TargetFalsehood, "target-falsehood", 0, "falsehood reference")
	f.Float64Var(&analyzeMetrics.Resistance, "resistance", 1, "resistance term")
	f.Float64Var(&analyzeMetrics.I1, "i1", 1, "density factor i1")
	f.Float64Var(&analyzeMetrics.I2, "i2", 1, "density factor i2")
	f.Float64Var(&analyzeMetrics.I3, "i3", 1, "density factor i3")
	f.Float64Var(&analyzeMetrics.I4, "i4", 1, "density factor i4")
	rootCmd.AddCommand(analyzeCmd)
}
