package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "fiber-meter/internal/application"
	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Последние замеры из журнала",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		records, err := rt.services.HistoryService.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := report.MarshalIndent(records)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", app.DefaultHistoryLimit, "сколько записей показать")
}

func printHistory(w io.Writer, records []entity.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No measurements yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSOURCE\tIMAGE\tLENGTH\tCONFIDENCE")
	for _, rec := range records {
		length := "-"
		if rec.Reading.Detected() {
			length = report.FormatNumber(rec.Reading.Length()) + " " + rec.Reading.Unit
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d%%\n",
			rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.Source, rec.ImageName, length, rec.Reading.Confidence)
	}
	_ = tw.Flush()
}
