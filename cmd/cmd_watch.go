package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/domain/measure"
	"fiber-meter/internal/infrastructure/report"
	"fiber-meter/internal/infrastructure/watch"
)

var (
	watchInitial  bool
	watchDebounce = watch.DefaultDebounce
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Замерять каждый новый снимок, появившийся в каталоге",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := buildRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, errs, err := watch.Start(ctx, watch.Config{
			Dir:         args[0],
			Debounce:    watchDebounce,
			InitialScan: watchInitial,
		}, logger.Named("watch"))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "👀 Watching %s (ctrl+c to stop)\n", args[0])
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				r := rt.services.MeasurementService.ProcessImage(ctx, entity.SourceWatch, path)
				logger.Info("image measured",
					zap.String("path", path),
					zap.Bool("detected", r.Detected()),
					zap.Int("confidence", r.Confidence),
					zap.String("level", string(measure.LevelOf(r.Confidence))),
				)
				fmt.Fprintln(out, watchLine(path, r))
			case err, ok := <-errs:
				if ok && err != nil {
					logger.Warn("watch error", zap.Error(err))
				}
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "сначала замерить уже лежащие в каталоге снимки")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "пауза, после которой файл считается записанным")
}

func watchLine(path string, r *entity.Reading) string {
	switch {
	case r.Error != "":
		return fmt.Sprintf("💥 %s: %s", path, r.Error)
	case r.Detected():
		return fmt.Sprintf("✅ %s: %s %s (%d%%, %s)", path, report.FormatNumber(r.Length()), r.Unit, r.Confidence, measure.LevelOf(r.Confidence))
	default:
		return fmt.Sprintf("❌ %s: no measurement detected", path)
	}
}
