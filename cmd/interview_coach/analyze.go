package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/speech"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Critique a recorded or transcribed answer and print the feedback document",
	Long: `Run the feedback pipeline on one answer (--transcript or --audio) or on every answer in a
directory (--dir). Files ending in .txt or .md are treated as transcripts; anything else as audio.
Feedback is only stored when --persist is set.`,
	RunE: runAnalyze,
}

var (
	analyzeQuestion    string
	analyzeTranscript  string
	analyzeAudio       string
	analyzeDir         string
	analyzeResponseID  string
	analyzeOutput      string
	analyzePersist     bool
	analyzeConcurrency int
	analyzeVerbose     bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeQuestion, "question", "q", "", "Interview question the answer responds to (required)")
	analyzeCmd.Flags().StringVarP(&analyzeTranscript, "transcript", "t", "", "Path to a transcript text file")
	analyzeCmd.Flags().StringVarP(&analyzeAudio, "audio", "a", "", "Path to an audio recording")
	analyzeCmd.Flags().StringVar(&analyzeDir, "dir", "", "Directory of transcripts and recordings to analyze")
	analyzeCmd.Flags().StringVar(&analyzeResponseID, "response-id", "", "Response ID (default: random UUID; file name in --dir mode)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Output file, or output directory with --dir (default: stdout)")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "Store feedback in the configured store")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a scorecard and normalization report to stderr")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 4, "Files analyzed at once in --dir mode")

	_ = analyzeCmd.MarkFlagRequired("question")
	analyzeCmd.MarkFlagsMutuallyExclusive("transcript", "audio", "dir")
	analyzeCmd.MarkFlagsOneRequired("transcript", "audio", "dir")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var files []string
	switch {
	case analyzeDir != "":
		if files, err = answerFiles(analyzeDir); err != nil {
			return err
		}
	case analyzeTranscript != "":
		files = []string{analyzeTranscript}
	default:
		files = []string{analyzeAudio}
	}

	generator, client, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	var transcriber speech.Transcriber
	if needsTranscriber(files) {
		t, closeTranscriber, err := newTranscriber(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to create transcriber: %w", err)
		}
		defer closeTranscriber()
		transcriber = t
	}

	var store interview.Store
	if analyzePersist {
		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("--persist requires a store (config store is %q)", cfg.Store)
		}
		defer s.Close()
		store = s
	}

	svc := interview.NewService(transcriber, generator, store, log)

	if analyzeDir != "" {
		return runBatch(ctx, svc, files, analyzeQuestion, analyzeOutput, analyzeConcurrency, cmd.OutOrStdout())
	}

	id := analyzeResponseID
	if id == "" {
		id = uuid.NewString()
	}
	out, runErr := analyzeFile(ctx, svc, files[0], id, analyzeQuestion)
	if out != nil {
		if analyzeVerbose {
			printer := observability.NewPrinter(cmd.ErrOrStderr())
			printer.PrintFeedback(&out.Feedback, out.Metrics)
			printer.PrintReport(out.Report)
		}
		if err := writeOutcome(out, analyzeOutput, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return runErr
}

// analyzeFile runs the pipeline on one transcript or recording.
func analyzeFile(ctx context.Context, svc *interview.Service, path, responseID, question string) (*interview.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if isTranscript(path) {
		return svc.SubmitTranscript(ctx, interview.TranscriptRequest{
			ResponseID: responseID,
			Question:   question,
			Transcript: string(data),
		})
	}
	return svc.SubmitAudio(ctx, interview.AudioRequest{
		ResponseID: responseID,
		Question:   question,
		Audio:      speech.Audio{Data: data, Filename: filepath.Base(path)},
	})
}

// batchResult is one line of the --dir summary.
type batchResult struct {
	File       string
	ResponseID string
	Score      int
	Fallback   bool
	Err        error
}

// runBatch analyzes files concurrently. Each file is still one sequential pipeline run, and a
// failed file does not stop the others.
func runBatch(ctx context.Context, svc *interview.Service, files []string, question, outDir string, limit int, w io.Writer) error {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]batchResult, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range files {
		g.Go(func() error {
			id := responseIDFor(path)
			res := batchResult{File: filepath.Base(path), ResponseID: id}

			out, err := analyzeFile(gCtx, svc, path, id, question)
			res.Err = err
			if out != nil {
				res.Score = out.Feedback.OverallScore()
				res.Fallback = out.Report.FallbackUsed()
				if outDir != "" {
					dest := filepath.Join(outDir, id+".feedback.json")
					if werr := writeOutcome(out, dest, nil); werr != nil {
						res.Err = errors.Join(res.Err, werr)
					}
				}
			}
			results[i] = res

			// Cancellation is the only error that stops the batch.
			return gCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\tERROR\t%v\n", r.File, r.ResponseID, r.Err)
			failed = append(failed, fmt.Errorf("%s: %w", r.File, r.Err))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\tfallback=%t\n", r.File, r.ResponseID, r.Score, r.Fallback)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d answers failed: %w", len(failed), len(files), errors.Join(failed...))
	}
	return nil
}

// writeOutcome writes indented JSON to path, or to w when path is empty.
func writeOutcome(out *interview.Outcome, path string, w io.Writer) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// answerFiles lists regular, non-hidden files in dir in name order. It fails when two
// files would map to the same response id.
func answerFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no answer files in %s", dir)
	}
	sort.Strings(files)

	// Each file's name becomes its response id and output file name, so two files
	// that differ only by extension would overwrite each other.
	seen := make(map[string]string, len(files))
	for _, f := range files {
		id := responseIDFor(f)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%s and %s share response id %q; rename one", filepath.Base(prev), filepath.Base(f), id)
		}
		seen[id] = f
	}
	return files, nil
}

func isTranscript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func needsTranscriber(files []string) bool {
	for _, f := range files {
		if !isTranscript(f) {
			return true
		}
	}
	return false
}

func responseIDFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
