package firebase

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	fbstorage "firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"

	"io.winapps.babytracker/internal/config"
)

// InitFirebase initializes and returns a Firebase app instance
func InitFirebase(ctx context.Context, cfg config.StorageConfig) (*firebase.App, error) {
	fbConfig := &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	}

	var app *firebase.App
	var err error
	if cfg.ServiceAccountPath != "" {
		app, err = firebase.NewApp(ctx, fbConfig, clientOptions(cfg)...)
	} else {
		// default credentials (Google Cloud deployment)
		app, err = firebase.NewApp(ctx, fbConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	return app, nil
}

// GetStorageClient returns the Firebase Storage client from the app.
func GetStorageClient(ctx context.Context, app *firebase.App) (*fbstorage.Client, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Storage client: %w", err)
	}
	return client, nil
}

// NewAdminClient returns a Cloud Storage client with the same credentials,
// used for bucket administration (create, ACL, labels) that the Firebase
// Storage client does not expose.
func NewAdminClient(ctx context.Context, cfg config.StorageConfig) (*gcs.Client, error) {
	client, err := gcs.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}
	return client, nil
}

func clientOptions(cfg config.StorageConfig) []option.ClientOption {
	if cfg.ServiceAccountPath == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
}
