package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/burst-composer/internal/config"
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility [photo-dir]",
	Short: "Decide whether a burst is worth compositing",
	Long: `Run the full analysis on a photo burst and report whether face
swapping between frames could meaningfully improve the result, with an
estimated improvement per person.`,
	Args: cobra.ExactArgs(1),
	RunE: runEligibility,
}

func init() {
	rootCmd.AddCommand(eligibilityCmd)

	eligibilityCmd.Flags().String("cluster-id", "", "Cluster identifier (defaults to directory name)")
	eligibilityCmd.Flags().Bool("json", false, "Output raw JSON instead of text")
}

func runEligibility(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	clusterID := mustGetString(cmd, "cluster-id")
	jsonOutput := mustGetBool(cmd, "json")

	cluster, err := loadCluster(args[0], clusterID)
	if err != nil {
		return err
	}

	analyzer, _, cleanup, err := buildPipeline(cfg, 0, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := analyzer.AssessEligibility(context.Background(), cluster)
	if err != nil {
		return fmt.Errorf("assessing eligibility: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if !result.IsEligible {
		fmt.Printf("Not eligible (%s), confidence %.2f\n", result.Reason, result.Confidence)
		return nil
	}

	fmt.Printf("Eligible for compositing, confidence %.2f\n", result.Confidence)
	for _, imp := range result.Improvements {
		fmt.Printf("  person %s: %s from %s (confidence %.2f)\n",
			shortID(imp.PersonID), imp.Category, imp.SourcePhotoID, imp.Confidence)
	}
	return nil
}
