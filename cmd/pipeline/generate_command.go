package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhirajadhikary06/voiceurresume/internal/intake"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/internal/summarizer"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		documentPath string
		photoPath    string
		language     string
		scriptPath   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the pipeline once for a local resume and photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger()

			for _, p := range []string{documentPath, photoPath} {
				info, err := os.Stat(p)
				if err != nil {
					return fmt.Errorf("inspect %s: %w", p, err)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", p)
				}
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := newApp(runCtx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			req := models.Request{ID: uuid.NewString(), Language: language}
			if req.DocumentKey, err = intake.Upload(runCtx, a.blobs, req.ID, documentPath); err != nil {
				return err
			}
			if req.PhotoKey, err = intake.Upload(runCtx, a.blobs, req.ID, photoPath); err != nil {
				return err
			}

			result, err := a.proc.Process(runCtx, req)
			if err != nil {
				return fmt.Errorf("request %s: %w", req.ID, err)
			}

			if scriptPath != "" {
				title := "Narration for " + filepath.Base(documentPath)
				if err := summarizer.WriteScriptDocx(title, result.Summary, scriptPath); err != nil {
					log.Warn(runCtx, "Failed to write script: %v", err)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Script: %s\n", scriptPath)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Video: %s (%s)\n", result.VideoKey, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "", "Resume file (PDF or DOCX)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Portrait photo (PNG or JPEG)")
	cmd.Flags().StringVar(&language, "language", "", "Speech language tag (defaults to speech.language)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Also write the narration script to this .docx file")
	_ = cmd.MarkFlagRequired("document")
	_ = cmd.MarkFlagRequired("photo")

	return cmd
}
