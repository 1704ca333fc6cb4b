package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

var analyzeOut string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Замер длины по одному снимку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		reading := rt.services.MeasurementService.ProcessImage(cmd.Context(), entity.SourceCLI, args[0])
		return emitResult(cmd.OutOrStdout(), reading, report.RenderReading(reading), analyzeOut)
	},
}

var compareOut string

var compareCmd = &cobra.Command{
	Use:   "compare <image1> <image2>",
	Short: "Разница длин по двум снимкам",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		c := rt.services.MeasurementService.CompareImages(cmd.Context(), entity.SourceCLI, args[0], args[1])
		return emitResult(cmd.OutOrStdout(), c, report.RenderComparison(c), compareOut)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "сохранить результат в JSON-файл")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "сохранить результат в JSON-файл")
}

// emitResult печатает результат текстом или JSON и при необходимости сохраняет его.
func emitResult(w io.Writer, result any, text, outPath string) error {
	if jsonOutput {
		data, err := report.MarshalIndent(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprint(w, text)
	}

	if outPath != "" {
		if err := report.WriteJSON(outPath, result); err != nil {
			return err
		}
		fmt.Fprintf(w, "Results saved to: %s\n", outPath)
	}
	return nil
}
