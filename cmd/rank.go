package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/burst-composer/internal/config"
)

var rankCmd = &cobra.Command{
	Use:   "rank [photo-dir]",
	Short: "Rank faces within each photo by quality",
	Long: `Score every detected face in every photo of a directory and print
them ordered by composite quality, best first. No identity tracking is
performed; use this to inspect per-photo scoring in isolation.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().Bool("json", false, "Output raw JSON instead of a table")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	cluster, err := loadCluster(args[0], "")
	if err != nil {
		return err
	}

	analyzer, _, cleanup, err := buildPipeline(cfg, 0, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	ranked, err := analyzer.RankFaces(context.Background(), cluster.Photos)
	if err != nil {
		return fmt.Errorf("ranking faces: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ranked)
	}

	photoIDs := make([]string, 0, len(ranked))
	for id := range ranked {
		photoIDs = append(photoIDs, id)
	}
	sort.Strings(photoIDs)

	var rows [][]string
	for _, photoID := range photoIDs {
		for _, face := range ranked[photoID] {
			eyes := "closed"
			if face.Eyes.BothOpen() {
				eyes = "open"
			}
			rows = append(rows, []string{
				photoID,
				fmt.Sprintf("%d", face.FaceIndex),
				fmt.Sprintf("%.2f", face.Composite),
				eyes,
				fmt.Sprintf("%.2f", face.Expression.Naturalness),
				fmt.Sprintf("%.2f", face.Sharpness),
			})
		}
	}
	if len(rows) == 0 {
		fmt.Println("No faces detected.")
		return nil
	}

	fmt.Println(renderTable(
		[]string{"Photo", "Face", "Composite", "Eyes", "Naturalness", "Sharpness"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight},
	))
	return nil
}
