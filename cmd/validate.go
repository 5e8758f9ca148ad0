package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathfinder-app/pathfinder/internal/agent/qa"
)

func validateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.json>",
		Short: "Validate a compiled career plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := qa.ValidatePlanFile(args[0]); err != nil {
				return fmt.Errorf("plan %s: %w", args[0], err)
			}
			fmt.Printf("plan %s is valid\n", args[0])
			return nil
		},
	}
}
