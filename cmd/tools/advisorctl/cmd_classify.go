package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finpsyche/advisor/backend/internal/app"
)

type classification struct {
	Message               string   `json:"message"`
	Casual                bool     `json:"casual"`
	Emotion               string   `json:"emotion,omitempty"`
	EmotionScore          *float64 `json:"emotionScore,omitempty"`
	Personality           string   `json:"personality,omitempty"`
	PersonalityConfidence *float64 `json:"personalityConfidence,omitempty"`
	Advice                string   `json:"advice,omitempty"`
}

func classifyCmd() *cobra.Command {
	var compose bool

	cmd := &cobra.Command{
		Use:   "classify [message]",
		Short: "Show the casual, emotion and personality verdicts for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := app.NewAnalysis(cfg.Advisor)
			if err != nil {
				return err
			}

			message := strings.Join(args, " ")
			out := classification{Message: message, Casual: analysis.Casual.IsCasual(message)}
			if !out.Casual {
				emo := analysis.Emotion.Predict(message)
				pers := analysis.Personality.Predict(message, emo)
				out.Emotion, out.EmotionScore = string(emo.Label), &emo.Score
				out.Personality, out.PersonalityConfidence = string(pers.Label), &pers.Confidence
				if compose {
					out.Advice = analysis.Composer.Compose(message, pers, emo, nil)
				}
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&compose, "compose", false, "also print the composer's fallback advice")
	return cmd
}
