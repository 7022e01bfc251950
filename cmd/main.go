package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"viral-clip-gen/internal"
	"viral-clip-gen/internal/ai"
	"viral-clip-gen/internal/archive"
	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/media"
	"viral-clip-gen/internal/model"
	"viral-clip-gen/internal/pipeline"
	"viral-clip-gen/internal/retention"
	"viral-clip-gen/internal/server"
	"viral-clip-gen/internal/store"
)

func main() {
	// Load .env file if it exists (try multiple paths)
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		_ = godotenv.Load(path)
	}

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	if err := run(log); err != nil {
		log.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(log *logging.Logger) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	if err := model.ValidateProfiles(); err != nil {
		return err
	}
	for _, dir := range []string{cfg.UploadDir, cfg.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	ctx := context.Background()

	if err := store.Migrate(cfg.DatabaseURL, log); err != nil {
		return err
	}
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	contents := store.NewPG(pool)

	client, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		return err
	}
	retry := ai.DefaultRetryPolicy()

	exec := media.NewExecutor()
	guard := media.NewDiskGuard(cfg.WorkDir, log)
	cleaner := media.NewCleaner(cfg.WorkDir, log)
	prober := media.NewProber(exec)

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Audio:       media.NewAudioEffects(exec, guard, cleaner, log),
		Overlay:     media.NewVideoOverlay(exec, guard, cleaner, log, cfg.TargetSizeMB),
		Combiner:    media.NewCombiner(exec, guard, prober, cleaner, log, cfg.TargetSizeMB),
		Extractor:   media.NewAudioExtractor(exec, log),
		Transcriber: ai.NewTranscriber(client, retry, log),
		Generator:   ai.NewGenerator(client, retry, log),
		Store:       contents,
		Cleaner:     cleaner,
		OutputDir:   cfg.UploadDir,
		Log:         log,
	})

	var archiver archive.Archiver
	if cfg.ArchiveEnabled() {
		archiver, err = archive.New(cfg)
		if err != nil {
			return err
		}
		log.Infof("archival to s3 bucket %s enabled", cfg.S3Bucket)
	}
	sweeper := retention.NewSweeper([]string{cfg.UploadDir, cfg.WorkDir}, cfg.RetentionMaxAge, archiver, cfg.ArchiveMaxAge, log)
	if err := sweeper.Start(cfg.RetentionSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	return server.New(cfg, log, orch, contents, pool).Run()
}
