package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/novaspeak/internal/errs"
)

type settingDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type firestoreKV struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *firestoreKV {
	return &firestoreKV{client: client}
}

func (s *firestoreKV) collection() *firestore.CollectionRef {
	return s.client.Collection("settings")
}

func (s *firestoreKV) Get(ctx context.Context, key string) (string, bool, error) {
	doc, err := s.collection().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, errs.NewDatabaseError("read", "failed to read setting", err)
	}
	var d settingDoc
	if err := doc.DataTo(&d); err != nil {
		return "", false, errs.NewDatabaseError("read", "failed to parse setting", err)
	}
	return d.Value, true, nil
}

func (s *firestoreKV) Put(ctx context.Context, key, value string) error {
	_, err := s.collection().Doc(key).Set(ctx, settingDoc{Value: value, UpdatedAt: time.Now()})
	if err != nil {
		return errs.NewDatabaseError("write", "failed to save setting", err)
	}
	return nil
}

func (s *firestoreKV) Close() error {
	return s.client.Close()
}
