package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"call-insights-go/internal/api"
	"call-insights-go/internal/config"
	"call-insights-go/internal/dataset"
	"call-insights-go/internal/events"
	"call-insights-go/internal/export"
	"call-insights-go/internal/extractor"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/pipeline"
	"call-insights-go/internal/store"
	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-insights-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.ValidateForProcessing(); err != nil {
		log.WithError(err).Fatal("configuration incomplete")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// LLM extraction client
	opts := []extractor.Option{
		extractor.WithTimeout(cfg.LLMTimeout),
		extractor.WithMaxRetry(cfg.LLMMaxRetry),
		extractor.WithMaxInvalid(cfg.LLMMaxInvalid),
	}
	if cfg.MockLLM {
		log.Warn("mock LLM mode ON")
		opts = append(opts, extractor.WithMock())
	}
	llm := extractor.NewClient(cfg.LLMGatewayURL, cfg.LLMAPIKey, cfg.LLMModel, opts...)

	// Transcription provider
	var transcriber transcription.Provider
	switch cfg.TranscribeProvider {
	case "assemblyai":
		transcriber = transcription.NewAssemblyAI(cfg.AssemblyAIKey, cfg.TranscribeLanguage)
	case "mock":
		log.Warn("mock transcription mode ON")
		transcriber = transcription.Mock{}
	default:
		transcriber = transcription.NewHTTPClient(cfg.TranscribeURL)
	}

	pipe := pipeline.New(transcriber, llm, cfg.CallTimeout)

	// Batch mode: process a spreadsheet of calls, write the workbook, exit.
	if cfg.DatasetPath != "" {
		if err := runBatch(ctx, cfg, pipe, log); err != nil {
			log.WithError(err).Fatal("batch run failed")
		}
		return
	}

	// Optional postgres sink
	var repo api.Repository
	var db *store.Store
	if cfg.DatabaseURL != "" {
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("failed to ensure schema")
		}
		repo = db
		log.Info("database connected")
	}

	// Optional NATS feed from the recording platform
	var publisher api.Publisher
	if cfg.NatsURL != "" {
		nc, err := events.NewClient(cfg.NatsURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to NATS")
		}
		defer nc.Close()
		publisher = nc
		log.WithField("url", cfg.NatsURL).Info("NATS connected")

		err = nc.Subscribe(events.SubjectRecordingReady, func(subject string, data []byte) {
			var ev events.RecordingReadyEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.WithError(err).Warn("bad recording event payload")
				return
			}
			evLog := log.WithCall(ev.CallID).WithField("audio_url", ev.AudioURL)
			evLog.Info("recording ready event received")

			analysis, err := pipe.Process(ctx, types.CallRecord{CallID: ev.CallID, AudioURL: ev.AudioURL})
			if err != nil {
				evLog.WithError(err).Warn("event-driven processing failed")
				_ = nc.Publish(events.SubjectAnalysisFailed, events.AnalysisFailedEvent{
					CallID: ev.CallID,
					Reason: err.Error(),
				})
				return
			}
			if db != nil {
				if err := db.SaveAnalysis(ctx, analysis); err != nil {
					evLog.WithError(err).Error("failed to persist analysis")
				}
			}
			if err := nc.PublishCompleted(analysis); err != nil {
				evLog.WithError(err).Warn("failed to publish completed event")
			}
		})
		if err != nil {
			log.WithError(err).Fatal("failed to subscribe to recording events")
		}
	}

	srv := api.NewServer(pipe, repo, publisher)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	cancel()
}

func runBatch(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline, log *logger.Logger) error {
	log.WithField("dataset_path", cfg.DatasetPath).Info("loading call batch")
	records, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	log.WithField("calls", len(records)).Info("batch loaded")

	start := time.Now()
	var analyses []types.CallAnalysis
	for _, rec := range records {
		recLog := log.WithCall(rec.CallID)
		analysis, err := pipe.Process(ctx, rec)
		if err != nil {
			// one bad call must not block the rest of the batch
			recLog.WithError(err).Warn("call failed, continuing")
			continue
		}
		analyses = append(analyses, analysis)
	}
	log.WithField("analyzed", len(analyses)).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("batch processing done")

	if err := export.WriteWorkbook(cfg.ExportPath, analyses); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	log.WithField("export_path", cfg.ExportPath).Info("workbook written")
	return nil
}
