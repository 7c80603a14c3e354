package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finpsyche/advisor/backend/internal/app"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the emotion and personality models and overwrite their artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			set, err := app.LoadRules(cfg.Advisor.RulesFile)
			if err != nil {
				return err
			}

			nb, err := app.LoadEmotionModel(cfg.Advisor, true)
			switch {
			case app.IsMissingData(err):
				fmt.Fprintf(out, "emotion: SKIPPED (no training data at %s)\n", cfg.Advisor.EmotionTrainingCSV)
			case err != nil:
				return fmt.Errorf("training emotion model: %w", err)
			default:
				fmt.Fprintf(out, "emotion: OK (%d labels)\n", len(nb.Labels()))
			}

			centroid, err := app.LoadPersonalityModel(cfg.Advisor, set, true)
			if err != nil {
				return fmt.Errorf("training personality model: %w", err)
			}
			fmt.Fprintf(out, "personality: OK (%d labels)\n", len(centroid.Labels))
			return nil
		},
	}
}
