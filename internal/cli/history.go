package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"jobsniper/internal/history"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List recent analysis runs",
	Long: `List recent analysis runs from the local history database, or print
one stored run in full when an ID is given. Each run stores the full
analysis report including the parsed profile, the job match, and the
skill recommendations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if !cfg.History.Enabled || !cfg.Features["history"] {
		return fmt.Errorf("analysis history is disabled in the configuration")
	}

	store, err := history.NewStore(cfg.History.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open analysis history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.LogError(err, "Failed to close analysis history")
		}
	}()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history ID %q", args[0])
		}
		out, err := showHistoryEntry(cmd.Context(), store, id)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	entries, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read analysis history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}

	for _, entry := range entries {
		line := map[string]any{
			"id":         entry.ID,
			"created_at": entry.CreatedAt,
			"name":       entry.Report.Profile.Name,
			"provider":   entry.Report.Profile.Provider,
			"degraded":   entry.Report.Degraded,
		}
		if entry.Report.Match != nil {
			line["match_score"] = entry.Report.Match.MatchScore
			line["grade"] = entry.Report.Match.Grade
		}
		data, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("failed to encode history entry: %w", err)
		}
		fmt.Println(string(data))
	}

	return nil
}

// showHistoryEntry renders one stored analysis report in full
func showHistoryEntry(ctx context.Context, store *history.Store, id int64) (string, error) {
	entry, err := store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read analysis history: %w", err)
	}
	if entry == nil {
		return "", fmt.Errorf("no stored analysis with ID %d", id)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode history entry: %w", err)
	}
	return string(data), nil
}
