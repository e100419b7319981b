package mongodb

import (
	"context"
	"fmt"
	"time"

	"hire_server/core/domain"
	"hire_server/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionApplications = "applications"

// ApplicationAdapter implements out.ApplicationRepository using MongoDB.
type ApplicationAdapter struct {
	collection *mongo.Collection
}

// NewApplicationAdapter creates a new MongoDB application adapter.
func NewApplicationAdapter(db *mongo.Database) *ApplicationAdapter {
	return &ApplicationAdapter{collection: db.Collection(collectionApplications)}
}

// EnsureIndexes creates necessary indexes for the collection. The unique
// compound index on (job_id, applicant_id) enforces one application per
// user per job even under concurrent requests.
func (a *ApplicationAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type applicationDocument struct {
	ID          string    `bson:"id"`
	JobID       string    `bson:"job_id"`
	ApplicantID string    `bson:"applicant_id"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (a *ApplicationAdapter) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	return a.findOne(ctx, bson.M{"id": id})
}

func (a *ApplicationAdapter) GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error) {
	return a.findOne(ctx, bson.M{"job_id": jobID, "applicant_id": applicantID})
}

func (a *ApplicationAdapter) findOne(ctx context.Context, filter bson.M) (*domain.Application, error) {
	var doc applicationDocument
	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return applicationToEntity(&doc), nil
}

func (a *ApplicationAdapter) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	return a.list(ctx, bson.M{"applicant_id": applicantID})
}

func (a *ApplicationAdapter) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	return a.list(ctx, bson.M{"job_id": jobID})
}

func (a *ApplicationAdapter) list(ctx context.Context, filter bson.M) ([]*domain.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*domain.Application
	for cursor.Next(ctx) {
		var doc applicationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode application: %w", err)
		}
		apps = append(apps, applicationToEntity(&doc))
	}
	return apps, cursor.Err()
}

func (a *ApplicationAdapter) CreateApplication(ctx context.Context, app *domain.Application) error {
	_, err := a.collection.InsertOne(ctx, applicationToDocument(app))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.AlreadyExists("application")
	}
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (a *ApplicationAdapter) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("application")
	}
	return nil
}

func (a *ApplicationAdapter) DeleteApplication(ctx context.Context, id string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return nil
}

func (a *ApplicationAdapter) DeleteByJob(ctx context.Context, jobID string) (int, error) {
	result, err := a.collection.DeleteMany(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}
	return int(result.DeletedCount), nil
}

func (a *ApplicationAdapter) DeleteByJobs(ctx context.Context, jobIDs []string) (int, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	result, err := a.collection.DeleteMany(ctx, bson.M{"job_id": bson.M{"$in": jobIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}
	return int(result.DeletedCount), nil
}

// DeleteByApplicant removes one applicant's applications and returns the
// deleted records so the caller can prune the affected jobs.
func (a *ApplicationAdapter) DeleteByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	apps, err := a.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	if _, err := a.collection.DeleteMany(ctx, bson.M{"applicant_id": applicantID}); err != nil {
		return nil, fmt.Errorf("failed to delete applications: %w", err)
	}
	return apps, nil
}

func applicationToDocument(app *domain.Application) *applicationDocument {
	return &applicationDocument{
		ID:          app.ID,
		JobID:       app.JobID,
		ApplicantID: app.ApplicantID,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func applicationToEntity(doc *applicationDocument) *domain.Application {
	return &domain.Application{
		ID:          doc.ID,
		JobID:       doc.JobID,
		ApplicantID: doc.ApplicantID,
		Status:      domain.ApplicationStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
