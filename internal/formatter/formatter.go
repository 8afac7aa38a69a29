// package formatter provides functions to export download history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
)

// HistoryToCSV converts download history records to CSV format with columns:
// Sequence, Title, Artist, Album, Duration, Strategy, Filename, Size, Status, Failure, Date
func HistoryToCSV(records []*models.PersistedDownload) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "Title", "Artist", "Album", "Duration", "Strategy", "Filename", "Size", "Status", "Failure", "Date"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.Sequence, 10),
			rec.Title,
			rec.Artist,
			rec.Album,
			shared.FormatDuration(rec.DurationMS),
			rec.Strategy,
			rec.Filename,
			strconv.FormatInt(rec.SizeBytes, 10),
			rec.Status,
			rec.Failure,
			rec.CreatedAt().Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown converts download history records to a Markdown document
func HistoryToMarkdown(records []*models.PersistedDownload) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Download History\n\n")
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(records)))

	for i, rec := range records {
		line := fmt.Sprintf("%d. %s - %s", i+1, rec.Artist, rec.Title)
		if rec.Album != "" {
			line += fmt.Sprintf(" (%s)", rec.Album)
		}
		if rec.Status == "complete" {
			line += fmt.Sprintf(" [%s, %s via %s]", shared.FormatDuration(rec.DurationMS), shared.FormatBytes(rec.SizeBytes), rec.Strategy)
		} else {
			line += fmt.Sprintf(" [failed: %s]", rec.Failure)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// HistoryToText converts download history records to plain text format
func HistoryToText(records []*models.PersistedDownload) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Downloads: %d\n\n", len(records)))

	for i, rec := range records {
		status := rec.Status
		if rec.Status == "error" && rec.Failure != "" {
			status = rec.Failure
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, rec.Artist, rec.Title, status))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of a single history record
func ToMetadataJSON(rec *models.PersistedDownload) ([]byte, error) {
	return shared.MarshalJSON(map[string]any{
		"id":          rec.ID(),
		"sequence":    rec.Sequence,
		"title":       rec.Title,
		"artist":      rec.Artist,
		"album":       rec.Album,
		"duration_ms": rec.DurationMS,
		"strategy":    rec.Strategy,
		"filename":    rec.Filename,
		"size_bytes":  rec.SizeBytes,
		"status":      rec.Status,
		"failure":     rec.Failure,
		"elapsed_ms":  rec.ElapsedMS,
		"created_at":  rec.CreatedAt(),
	}, true)
}

// WriteHistoryExport writes history records to disk in the requested format.
//
// format is one of "csv", "markdown", or "text"; the extension is derived
// from it. Returns the path of the written file.
func WriteHistoryExport(records []*models.PersistedDownload, format, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "downloads"
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch format {
	case "csv":
		data, err = HistoryToCSV(records)
		ext = ".csv"
	case "markdown", "md":
		data, err = HistoryToMarkdown(records)
		ext = ".md"
	case "text", "txt", "":
		data, err = HistoryToText(records)
		ext = ".txt"
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", err
	}

	path := baseFilepath + ext
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
