package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/speech"
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Synthesize the audio prompt for an interview question",
	RunE:  runSpeak,
}

var (
	speakQuestion string
	speakOutput   string
)

func init() {
	speakCmd.Flags().StringVarP(&speakQuestion, "question", "q", "", "Interview question to read aloud (required)")
	speakCmd.Flags().StringVarP(&speakOutput, "out", "o", "question.mp3", "Output audio file")
	_ = speakCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	synth, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}
	if synth == nil {
		return fmt.Errorf("speech synthesis requires OPENAI_API_KEY")
	}

	text, err := speech.QuestionText(speakQuestion)
	if err != nil {
		return err
	}
	audio, contentType, err := synth.Synthesize(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("failed to synthesize question: %w", err)
	}
	if err := os.WriteFile(speakOutput, audio, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes of %s to %s\n", len(audio), contentType, speakOutput)
	return nil
}
