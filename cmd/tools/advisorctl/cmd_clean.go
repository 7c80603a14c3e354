package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finpsyche/advisor/backend/internal/advice"
)

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [text]",
		Short: "Run text through the advice sanitizer (reads stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), advice.Clean(text))
			return nil
		},
	}
}
