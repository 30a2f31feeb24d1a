package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [photo-dir]",
	Short: "Analyze face quality across a photo burst",
	Long: `Analyze every photo in a directory as one burst cluster.
Each detected face is scored for eye openness, expression, sharpness
and pose, faces are grouped by person across photos, and per-person
improvement potential is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("cluster-id", "", "Cluster identifier (defaults to directory name)")
	analyzeCmd.Flags().Int("concurrency", 0, "Number of parallel photo workers (0 = config default)")
	analyzeCmd.Flags().Bool("json", false, "Output raw JSON instead of a table")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	clusterID := mustGetString(cmd, "cluster-id")
	concurrency := mustGetInt(cmd, "concurrency")
	jsonOutput := mustGetBool(cmd, "json")

	cluster, err := loadCluster(args[0], clusterID)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	onProgress := func(info analysis.ProgressInfo) {
		if bar == nil {
			return
		}
		if info.Phase == "scoring" {
			_ = bar.Set(info.Current)
		}
	}
	if !jsonOutput {
		bar = progressbar.NewOptions(len(cluster.Photos),
			progressbar.OptionSetDescription("Scoring photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	analyzer, _, cleanup, err := buildPipeline(cfg, concurrency, onProgress)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := analyzer.AnalyzeCluster(context.Background(), cluster)
	if err != nil {
		return fmt.Errorf("analyzing cluster: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printAnalysis(result)
	return nil
}

func printAnalysis(result *analysis.ClusterFaceAnalysis) {
	fmt.Printf("Cluster %s: %d photos, %d tracked persons\n",
		result.ClusterID, result.PhotoCount, len(result.Persons))
	fmt.Printf("Base photo: %s\n", result.BasePhotoID)
	fmt.Printf("Overall improvement potential: %.2f\n\n", result.OverallImprovement)

	if len(result.Persons) == 0 {
		fmt.Println("No person appears in two or more photos with meaningful quality variation.")
		return
	}

	ids := make([]string, 0, len(result.Persons))
	for id := range result.Persons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		p := result.Persons[id]
		rows = append(rows, []string{
			shortID(id),
			fmt.Sprintf("%d", len(p.Faces)),
			fmt.Sprintf("%.2f (%s)", p.Best.Composite, p.Best.PhotoID),
			fmt.Sprintf("%.2f (%s)", p.Worst.Composite, p.Worst.PhotoID),
			fmt.Sprintf("%.2f", p.ImprovementPotential),
		})
	}

	fmt.Println(renderTable(
		[]string{"Person", "Faces", "Best", "Worst", "Potential"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight},
	))
}

// shortID truncates a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
