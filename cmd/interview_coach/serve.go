package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts recorded answers and returns and stores feedback documents.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config, default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	generator, client, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	transcriber, closeTranscriber, err := newTranscriber(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}
	defer closeTranscriber()

	synthesizer, err := newSynthesizer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{Synthesizer: synthesizer, Logger: log}
	var pipelineStore interview.Store
	if store != nil {
		defer store.Close()
		pipelineStore = store
		deps.Health = store
	}
	deps.Pipeline = interview.NewService(transcriber, generator, pipelineStore, log)

	log.Info("configured",
		"llm_provider", cfg.LLMProvider,
		"model", client.GetModel(llm.TierStandard),
		"transcription_provider", cfg.TranscriptionProvider,
		"store", cfg.Store,
		"speech_synthesis", synthesizer != nil)

	srv, err := server.New(server.Config{
		Port:          cfg.Port,
		CORSOrigin:    cfg.CORSOrigin,
		MaxAudioBytes: cfg.MaxAudioBytes,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
