package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/internal/recordstore"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List generated videos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := recordstore.New(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos generated yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecords(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show (0 for all)")
	return cmd
}

func renderRecords(records []models.VideoRecord) string {
	headers := []string{"Created", "Request", "Backend", "Video", "Document"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.RequestID,
			rec.Backend,
			rec.VideoKey,
			rec.DocumentKey,
		})
	}
	return renderTable(headers, rows, nil)
}
