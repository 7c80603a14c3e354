package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/service/speech"
)

func speakCmd() *cobra.Command {
	var (
		outPath   string
		voice     string
		emo       string
		intensity float64
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Synthesize cleaned advice to an audio file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := speech.NewServiceFromConfig(cfg.Speech)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			sessionID := fmt.Sprintf("cli-%d", time.Now().UnixNano())
			result := emotion.Result{Label: emotion.Label(emo), Score: intensity}
			clip, err := svc.SynthesizeAdvice(ctx, sessionID, strings.Join(args, " "), voice, result)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = sessionID + "." + clip.Format
			}
			if err := os.WriteFile(outPath, clip.AudioData, 0o644); err != nil {
				return fmt.Errorf("writing audio: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spoke %q -> %s (%d bytes)\n", clip.Text, outPath, len(clip.AudioData))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <session>.<format>)")
	cmd.Flags().StringVar(&voice, "voice", "", "voice id (default SPEECH_TTS_VOICE)")
	cmd.Flags().StringVar(&emo, "emotion", "", "user emotion label used to pick a speaking style")
	cmd.Flags().Float64Var(&intensity, "intensity", 0.5, "emotion intensity in [0,1]")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "request timeout")
	return cmd
}
