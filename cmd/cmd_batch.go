package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	app "fiber-meter/internal/application"
	"fiber-meter/internal/domain/entity"
	"fiber-meter/internal/infrastructure/report"
)

var (
	batchOutput  string
	batchWorkers int
	batchXLSX    bool
	batchYes     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Обработать все снимки каталога и сохранить JSON-отчёт",
	Long: `Обрабатывает jpg, jpeg, png, bmp, tiff и gif из каталога (без подкаталогов)
и пишет отчёт в этот же каталог. Без аргумента спрашивает каталог в диалоге.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("workers") {
			cfg.Batch.Workers = batchWorkers
		}
		if cmd.Flags().Changed("xlsx") {
			cfg.Batch.XLSX = batchXLSX
		}
		output := cfg.Batch.OutputName
		if cmd.Flags().Changed("output") {
			output = batchOutput
		}

		rt, err := buildRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		runner := &batchRunner{
			svc:     rt.services.BatchService,
			out:     out,
			workers: cfg.Batch.Workers,
		}

		if len(args) == 1 {
			return runner.run(cmd.Context(), args[0], output)
		}
		return runner.interactive(cmd.Context(), cmd.InOrStdin(), batchYes)
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchOutput, "output", "o", app.DefaultReportName, "имя файла отчёта")
	f.IntVarP(&batchWorkers, "workers", "w", 1, "сколько снимков обрабатывать одновременно")
	f.BoolVar(&batchXLSX, "xlsx", false, "дополнительно сохранить отчёт в Excel")
	f.BoolVarP(&batchYes, "yes", "y", false, "не спрашивать подтверждение")
}

type batchRunner struct {
	svc     *app.BatchService
	out     io.Writer
	workers int
}

func (r *batchRunner) run(ctx context.Context, dir, output string) error {
	fmt.Fprintf(r.out, "\n📁 Scanning directory: %s\n", dir)

	files, err := r.svc.Discover(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(r.out, "❌ No image files found in %s\n", dir)
		fmt.Fprintf(r.out, "   Supported formats: %s\n", strings.Join(entity.ImageExtensions, ", "))
		return nil
	}

	fmt.Fprintf(r.out, "✅ Found %d image files\n", len(files))
	for i, f := range files {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, filepath.Base(f))
	}
	fmt.Fprintf(r.out, "\n🔄 Starting batch processing...\n%s\n", strings.Repeat("=", 60))

	rep, err := r.svc.ProcessDirectory(ctx, dir, app.BatchOptions{
		Workers:  r.workers,
		Progress: r.printProgress,
	})
	if errors.Is(err, entity.ErrNoImages) {
		fmt.Fprintf(r.out, "❌ No image files found in %s\n", dir)
		return nil
	}
	if err != nil {
		return err
	}

	paths, err := r.svc.WriteReport(rep, dir, output)
	if err != nil {
		fmt.Fprintf(r.out, "❌ Error saving results: %v\n", err)
		if len(paths) == 0 {
			return err
		}
	}
	printBatchSummary(r.out, rep, paths)
	return nil
}

func (r *batchRunner) printProgress(p app.Progress) {
	e := p.Entry
	fmt.Fprintf(r.out, "\n[%d/%d] Processed: %s\n", p.Index, p.Total, e.Filename)
	if e.Detected() {
		fmt.Fprintf(r.out, "   ✅ Found: %s %s (confidence: %d%%)\n", report.FormatNumber(e.Length()), e.Unit, e.Confidence)
	} else {
		fmt.Fprintf(r.out, "   ❌ No measurement detected\n")
	}
	fmt.Fprintf(r.out, "   ⏱️  Processing time: %.1fs\n", e.ProcessingTimeSeconds)
	if p.Index < p.Total {
		fmt.Fprintf(r.out, "   🕐 Estimated remaining: %s\n", formatRemaining(p.Remaining))
	}
}

func printBatchSummary(w io.Writer, rep *entity.BatchReport, paths []string) {
	s := rep.Summary
	fmt.Fprintf(w, "\n%s\n📊 BATCH PROCESSING COMPLETE!\n%s\n", strings.Repeat("=", 60), strings.Repeat("=", 60))
	fmt.Fprintf(w, "✅ Successfully processed: %d/%d files\n", s.SuccessfullyProcessed, s.TotalFiles)
	fmt.Fprintf(w, "⏱️  Total time: %.1f minutes\n", s.TotalProcessingTimeSeconds/60)
	for _, p := range paths {
		fmt.Fprintf(w, "💾 Results saved to: %s\n", p)
	}
	fmt.Fprintf(w, "🔍 Measurements detected in: %d/%d files\n", s.DetectedCount, len(rep.Results))

	detected := rep.Detected()
	if len(detected) == 0 {
		return
	}
	fmt.Fprintf(w, "\n📏 Detected measurements:\n")
	for _, e := range detected {
		fmt.Fprintf(w, "   • %s: %s %s (%d%% confidence)\n", e.Filename, report.FormatNumber(e.Length()), e.Unit, e.Confidence)
	}
}

// formatRemaining печатает оценку в виде "2m 5s".
func formatRemaining(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// interactive повторяет диалог: каталог, имя отчёта, подтверждение.
func (r *batchRunner) interactive(ctx context.Context, in io.Reader, assumeYes bool) error {
	sc := bufio.NewScanner(in)
	prompt := func(text string) (string, bool) {
		fmt.Fprint(r.out, text)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	fmt.Fprintf(r.out, "🚀 Batch Fiber Length Processor\n%s\n", strings.Repeat("=", 40))
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, ok := prompt("\n📁 Enter directory path containing images:\n   (or 'quit' to exit)\n➤ ")
		if !ok {
			return sc.Err()
		}
		dir := strings.Trim(line, `"'`)

		switch strings.ToLower(dir) {
		case "quit", "exit", "q":
			fmt.Fprintln(r.out, "👋 Goodbye!")
			return nil
		}
		if dir == "" {
			fmt.Fprintln(r.out, "❌ Please enter a valid directory path")
			continue
		}
		info, err := os.Stat(dir)
		if err != nil {
			fmt.Fprintf(r.out, "❌ Directory not found: %s\n", dir)
			continue
		}
		if !info.IsDir() {
			fmt.Fprintf(r.out, "❌ Path is not a directory: %s\n", dir)
			continue
		}

		name, ok := prompt(fmt.Sprintf("\n💾 Enter output filename (default: %s):\n➤ ", app.DefaultReportName))
		if !ok {
			return sc.Err()
		}
		name = app.NormalizeOutputName(name)

		fmt.Fprintf(r.out, "\n📋 Processing Summary:\n   Input Directory: %s\n   Output File: %s\n", dir, name)

		if !assumeYes {
			answer, ok := prompt("\nStart processing? (y/n): ")
			if !ok {
				return sc.Err()
			}
			if a := strings.ToLower(answer); a != "y" && a != "yes" {
				fmt.Fprintln(r.out, "❌ Processing cancelled")
				continue
			}
		}

		if err := r.run(ctx, dir, name); err != nil {
			fmt.Fprintf(r.out, "❌ %v\n", err)
		}
	}
}
