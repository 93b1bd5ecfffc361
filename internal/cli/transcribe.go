package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satriahrh/voxtag/adapters/stt"
	"github.com/satriahrh/voxtag/usecase"
)

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "transcribe <input.wav>",
		Short: "Transcribe a local WAV clip with the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg := deps.Config.Transcription
			if backend != "" {
				cfg.Backend = backend
			}
			recognizer, err := stt.New(cfg, deps.Logger)
			if err != nil {
				return err
			}

			gateway := usecase.NewTranscriptionGateway(recognizer, cfg.TempDir, cfg.Timeout(), nil, deps.Logger)
			text := gateway.Transcribe(cmd.Context(), data, cfg.EffectiveAPIKey())
			if text == "" {
				return fmt.Errorf("no API key configured for %s; set ASSEMBLY_API_KEY or VOXTAG_TRANSCRIPTION_API_KEY", cfg.Backend)
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "", "override transcription.backend")
	return cmd
}
