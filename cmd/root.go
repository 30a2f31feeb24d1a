package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "burst-composer",
	Short: "A CLI tool for analyzing face quality across photo bursts",
	Long: `Burst Composer analyzes clusters of near-simultaneous photos,
scores every detected face for eye openness, expression, sharpness and
pose, tracks each person across the burst, and decides whether swapping
faces between frames could produce a better composite shot.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
