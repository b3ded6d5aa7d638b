package app

import (
	"fmt"
	"log"
	"strings"

	"ctxoptimizer/internal/artifact"
	"ctxoptimizer/internal/gateway/config"
)

// initArtifactStore picks the session artifact backend. Postgres wins when a
// DSN is configured, then S3, then the filesystem. The test env always runs
// in memory.
func initArtifactStore(cfg *config.Config) (artifact.Store, error) {
	if strings.EqualFold(cfg.Env, "test") {
		log.Printf("artifact store: in-memory")
		return artifact.NewMemoryStore(), nil
	}

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		store, err := artifact.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres artifact store: %w", err)
		}
		log.Printf("artifact store: postgres")
		return store, nil
	}

	if cfg.Artifact.CanUseS3() {
		store, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 artifact store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", cfg.Artifact.Bucket, cfg.Artifact.Endpoint)
		return store, nil
	}
	if cfg.Artifact.Enabled {
		log.Printf("artifact store: s3 config incomplete, using filesystem")
	}

	store, err := artifact.NewFSStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem artifact store: %w", err)
	}
	log.Printf("artifact store: filesystem dir=%s", cfg.DataDir)
	return store, nil
}
