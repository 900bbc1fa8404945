package utils

import (
	"context"
	"fmt"
	"os"

	"fashionstudio/config"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseClients bundles the Firebase services the API talks to.
type FirebaseClients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

// FirebaseInit initializes the Firebase App and the clients derived from it.
func FirebaseInit(ctx context.Context) (*FirebaseClients, error) {
	fbConfig := &firebase.Config{
		ProjectID:     config.AppConfig.FirebaseProjectID,
		StorageBucket: config.AppConfig.FirebaseStorageBucket,
	}
	var opts []option.ClientOption
	if path := config.AppConfig.FirebaseCredentialsFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			opts = append(opts, option.WithCredentialsFile(path))
			if fbConfig.ProjectID == "" {
				sa, err := config.LoadServiceAccount(path)
				if err != nil {
					return nil, fmt.Errorf("firebase: %w", err)
				}
				fbConfig.ProjectID = sa.ProjectID
			}
		} else {
			GetLogger().Warn("Firebase credentials file not found, using application default credentials", zap.String("path", path))
		}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}

	clients := &FirebaseClients{App: app, Auth: authClient}

	if config.AppConfig.StoreBackend == "firestore" {
		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase: error getting Firestore client: %w", err)
		}
		clients.Firestore = fs
	}

	if config.AppConfig.BlobBackend == "firebase" {
		st, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase: error getting Storage client: %w", err)
		}
		bucket, err := st.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("firebase: error opening default bucket: %w", err)
		}
		clients.Bucket = bucket
	}

	return clients, nil
}

// Close releases the long-lived Firestore connection.
func (f *FirebaseClients) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}
