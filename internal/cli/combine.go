package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/adapters/storage"
	"github.com/satriahrh/voxtag/usecase"
)

func NewCombineCmd(deps *Dependencies) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "combine <input.wav>...",
		Short: "Concatenate local WAV clips into one file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments := make([][]byte, len(args))
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					// unreadable inputs are skipped like undecodable ones
					deps.Logger.Warn("Skipping unreadable input", zap.String("path", path), zap.Error(err))
					continue
				}
				segments[i] = data
			}

			combiner := usecase.NewCombiner(storage.NewMemoryStorage(), usecase.CombinerConfig{
				MaxSegments: deps.Config.Combine.MaxSegments,
				MaxDuration: deps.Config.Combine.MaxDuration(),
			}, nil, deps.Logger)

			combined, err := combiner.CombineData(cmd.Context(), segments)
			if err != nil {
				return err
			}

			if output == "" {
				output = combined.Filename
			}
			if err := os.WriteFile(output, combined.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			for _, skipped := range combined.SkippedIDs {
				if index, err := strconv.Atoi(skipped); err == nil && index < len(args) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", args[index])
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d clips, %s)\n",
				output, len(combined.SourceIDs), time.Duration(combined.Duration*float64(time.Second)).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default combined_<id>.wav)")
	return cmd
}
