package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/formatter"
	"github.com/desertthunder/trackdl/internal/shared"
)

// HistoryList prints recorded downloads, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, closeFn, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	criteria := map[string]any{
		"limit": int(cmd.Int("limit")),
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	records, err := history.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if cmd.Bool("json") {
		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			data, err := formatter.ToMetadataJSON(rec)
			if err != nil {
				return err
			}
			var item map[string]any
			if err := json.Unmarshal(data, &item); err != nil {
				return fmt.Errorf("failed to decode record: %w", err)
			}
			items = append(items, item)
		}
		return r.writeJSON(items, true)
	}

	if len(records) == 0 {
		r.writePlain("No downloads recorded.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Download History (%d)", len(records)))
	for _, rec := range records {
		marker := "✓"
		detail := fmt.Sprintf("%s, %s", shared.FormatBytes(rec.SizeBytes), rec.Strategy)
		if rec.Status == "error" {
			marker = "✗"
			detail = rec.Failure
		}
		r.writePlain("%s #%d %s - %s (%s)\n", marker, rec.Sequence, rec.Artist, rec.Title, detail)
	}
	return nil
}

// HistoryExport writes the history to disk as CSV, Markdown, or plain text.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	history, closeFn, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := history.List(map[string]any{})
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	path, err := formatter.WriteHistoryExport(records, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("history exported", "path", path, "records", len(records))
	r.writePlain("Exported %d records to %s\n", len(records), path)
	return nil
}
