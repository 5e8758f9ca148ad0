package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "pathfinder",
		Short: "Career planning engine: major research, career analysis and job market matching",
	}

	root.AddCommand(serveCMD(), migrateCMD(), loadJobsCMD(), analyzeCMD(), validateCMD(), versionCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
