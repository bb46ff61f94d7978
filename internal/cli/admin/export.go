package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/dukaanlabs/dukaan/internal/config"
	"github.com/dukaanlabs/dukaan/internal/database"
	"github.com/dukaanlabs/dukaan/internal/jobs"
	"github.com/dukaanlabs/dukaan/internal/repository"
	"github.com/dukaanlabs/dukaan/internal/storage"
	"github.com/spf13/cobra"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Archive expired interactions now",
		Long:  "Drains interactions older than the retention window to S3 and removes them, then exits",
		RunE:  runExport,
	}

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasS3() {
		return fmt.Errorf("S3 is not configured (DUKAAN_S3_ENDPOINT, DUKAAN_S3_ACCESS_KEY_ID, DUKAAN_S3_SECRET_ACCESS_KEY required)")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}

	interactionRepo := repository.NewInteractionRepository(pool)
	processor := jobs.NewArchiveProcessor(interactionRepo, s3Client, cfg.ArchiveAfter)

	for {
		drained, err := processor.ProcessBatch(ctx)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if drained {
			break
		}
	}

	log.Println("export complete")
	return nil
}
