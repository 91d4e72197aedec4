package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	kms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	vertexclient "github.com/GregMSThompson/novaspeak/internal/client/vertex"
	"github.com/GregMSThompson/novaspeak/internal/config"
	"github.com/GregMSThompson/novaspeak/internal/crypto"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/store"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

type Bootstrap struct {
	Log            *slog.Logger
	Metrics        metrics.Recorder
	Settings       store.KV
	KMS            *crypto.KMS
	VertexAdapter  *vertexclient.Adapter
	DefaultReadKey string

	closers []func() error
}

func Run(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	var err error
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Metrics = metrics.New(cfg.MetricsEnabled)

	bs.Settings, err = InitSettings(ctx, cfg)
	if err != nil {
		return bs, err
	}
	bs.closers = append(bs.closers, bs.Settings.Close)

	if cfg.KMSKeyName != "" {
		client, err := kms.NewKeyManagementClient(ctx)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, client.Close)
		bs.KMS = crypto.NewKMS(client, cfg.KMSKeyName)
	}

	if cfg.ReadAPIKeySecret != "" {
		bs.DefaultReadKey, err = readSecret(ctx, cfg.ProjectID, cfg.ReadAPIKeySecret)
		if err != nil {
			return bs, err
		}
	}

	if cfg.ProjectID != "" {
		bs.VertexAdapter, err = vertexclient.NewAdapter(ctx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
		if err != nil {
			return bs, err
		}
		bs.closers = append(bs.closers, bs.VertexAdapter.Close)
	} else {
		bs.Log.Warn("PROJECTID not set, insights disabled")
	}

	return bs, nil
}

func readSecret(ctx context.Context, projectID, secretID string) (string, error) {
	if projectID == "" {
		return "", errors.New("PROJECTID is required to read READ_API_KEY_SECRET")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()
	return store.NewSecretsStore(client, projectID).Secret(ctx, secretID)
}

// Close releases clients in reverse order of creation.
func (bs *Bootstrap) Close() {
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil {
			bs.Log.Warn("close failed", "error", err)
		}
	}
}
