package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepdeck/internal/apperr"
	"prepdeck/internal/model"
)

// SessionRepo is the narrow persistence contract the lifecycle manager consumes.
// GetByID and FindActiveByUser return (nil, nil) when nothing matches; the caller
// decides whether absence is an error.
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	FindActiveByUser(ctx context.Context, userID string) (*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a Mongo-backed session repository and ensures its
// indexes. The partial unique index on (userId, status=IN_PROGRESS) is what
// closes the concurrent-start race across processes.
func NewSessionRepo(ctx context.Context, client *mongo.Client, dbName string) (SessionRepo, error) {
	collection := client.Database(dbName).Collection("sessions")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": string(model.SessionInProgress)}),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "creating session index")
	}

	return &sessionRepo{collection: collection}, nil
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Version = 1

	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.KindConflict, "an interview is already in progress for this user")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "inserting session")
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "fetching session %s", id)
	}
	return &session, nil
}

// Update persists the full session document, guarded by an optimistic version
// check. A lost race surfaces as a storage error rather than a silent overwrite.
func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	prev := session.Version
	session.Version = prev + 1
	session.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID, "version": prev}, session)
	if err != nil {
		session.Version = prev
		return apperr.Wrap(apperr.KindStorage, err, "updating session %s", session.ID)
	}
	if result.MatchedCount == 0 {
		session.Version = prev
		return apperr.New(apperr.KindStorage, "session %s was modified concurrently", session.ID)
	}
	return nil
}

func (r *sessionRepo) FindActiveByUser(ctx context.Context, userID string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{
		"userId": userID,
		"status": string(model.SessionInProgress),
	}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "finding active session for user %s", userID)
	}
	return &session, nil
}
