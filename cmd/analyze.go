package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/pathfinder-app/pathfinder/config"
	agentcore "github.com/pathfinder-app/pathfinder/internal/agent/core"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/match"
	"github.com/pathfinder-app/pathfinder/internal/store"
)

const (
	promptAgain = "Analyze another query"
	promptQuit  = "Quit"
)

func analyzeCMD() *cobra.Command {
	var cfgPath string
	var once bool

	var analyze = &cobra.Command{
		Use:   "analyze [query]",
		Short: "Run a career analysis from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.LoadConfig(cfgPath)
			logger := log.New(log.Writer(), "[ANALYZE] ", log.LstdFlags)

			tele := telemetry.NewTelemetry(cfg.Telemetry)
			defer tele.Shutdown()

			var catalogue match.Catalogue = match.NewMemCatalogue(nil)
			var st *store.Store
			if err := cfg.Storage.Postgres.Validate(); err == nil {
				if opened, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN()); err != nil {
					logger.Printf("job catalogue unavailable, matches will be empty: %v", err)
				} else {
					st = opened
					defer st.Close()
					catalogue = st
				}
			}
			matcher := match.NewAggregator(catalogue, match.Options{
				Threshold:        cfg.Catalogue.MatchThreshold,
				MaxCandidates:    cfg.Catalogue.MaxCandidates,
				ExampleLimit:     cfg.Catalogue.ExampleLimit,
				DescriptionLimit: cfg.Catalogue.DescriptionLimit,
			})

			storage, err := agentcore.NewStorage(ctx, cfg.Storage, st)
			if err != nil {
				logger.Printf("plan storage unavailable: %v", err)
				storage = &agentcore.NullStorage{}
			}
			orch, err := agentcore.NewOrchestrator(ctx, cfg, logger, tele, matcher, storage)
			if err != nil {
				return fmt.Errorf("creating orchestrator: %w", err)
			}
			if !orch.Ready() {
				logger.Printf("no LLM provider configured, using builtin research data")
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			for {
				if query == "" {
					prompt := promptui.Prompt{Label: "Career interests"}
					query, err = prompt.Run()
					if err != nil {
						return nil
					}
					if strings.TrimSpace(query) == "" {
						continue
					}
				}

				plan, err := orch.Analyze(ctx, agentcore.CareerQuery{Query: query})
				if err != nil {
					logger.Printf("analysis failed: %v", err)
				} else {
					pretty, _ := json.MarshalIndent(plan, "", "  ")
					fmt.Println(string(pretty))
				}

				if once {
					return nil
				}
				next := promptui.Select{
					Label: "Done",
					Items: []string{promptAgain, promptQuit},
				}
				_, choice, err := next.Run()
				if err != nil || choice == promptQuit {
					return nil
				}
				query = ""
			}
		},
	}
	analyze.Flags().BoolVar(&once, "once", false, "exit after a single analysis")
	analyze.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return analyze
}
