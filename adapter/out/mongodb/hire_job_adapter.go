package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"hire_server/core/domain"
	"hire_server/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionJobs = "jobs"

// JobAdapter implements out.JobRepository using MongoDB.
type JobAdapter struct {
	collection *mongo.Collection
}

// NewJobAdapter creates a new MongoDB job adapter.
func NewJobAdapter(db *mongo.Database) *JobAdapter {
	return &JobAdapter{collection: db.Collection(collectionJobs)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *JobAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "company_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "posted_by_user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type jobDocument struct {
	ID                string    `bson:"id"`
	Title             string    `bson:"title"`
	Description       string    `bson:"description"`
	Requirements      []string  `bson:"requirements,omitempty"`
	Salary            int64     `bson:"salary"`
	Location          string    `bson:"location,omitempty"`
	JobType           string    `bson:"job_type,omitempty"`
	ExperienceLevel   int       `bson:"experience_level"`
	Positions         int       `bson:"positions"`
	CompanyID         string    `bson:"company_id"`
	PostedByUserID    string    `bson:"posted_by_user_id"`
	ApplicationIDs    []string  `bson:"application_ids,omitempty"`
	ApplicationsCount int       `bson:"applications_count"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (a *JobAdapter) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var doc jobDocument
	err := a.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return jobToEntity(&doc), nil
}

func (a *JobAdapter) GetJobsByIDs(ctx context.Context, ids []string) ([]*domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := a.collection.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []*domain.Job
	for cursor.Next(ctx) {
		var doc jobDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, jobToEntity(&doc))
	}
	return jobs, cursor.Err()
}

// ListJobs filters jobs. The keyword matches whole words in the title or
// description, case-insensitive.
func (a *JobAdapter) ListJobs(ctx context.Context, filter *domain.JobFilter, skip, limit int) ([]*domain.Job, int, error) {
	query := bson.M{}
	if filter != nil {
		if filter.CompanyID != "" {
			query["company_id"] = filter.CompanyID
		}
		if filter.PostedByUserID != "" {
			query["posted_by_user_id"] = filter.PostedByUserID
		}
		if filter.Location != "" {
			query["location"] = primitive.Regex{
				Pattern: regexp.QuoteMeta(filter.Location),
				Options: "i",
			}
		}
		if filter.Title != "" {
			query["title"] = primitive.Regex{
				Pattern: regexp.QuoteMeta(filter.Title),
				Options: "i",
			}
		}
		if filter.Keyword != "" {
			pattern := primitive.Regex{
				Pattern: `\b` + regexp.QuoteMeta(filter.Keyword) + `\b`,
				Options: "i",
			}
			query["$or"] = bson.A{
				bson.M{"title": pattern},
				bson.M{"description": pattern},
			}
		}
	}

	total, err := a.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := a.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []*domain.Job
	for cursor.Next(ctx) {
		var doc jobDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, jobToEntity(&doc))
	}
	return jobs, int(total), cursor.Err()
}

func (a *JobAdapter) CreateJob(ctx context.Context, job *domain.Job) error {
	_, err := a.collection.InsertOne(ctx, jobToDocument(job))
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (a *JobAdapter) UpdateJob(ctx context.Context, job *domain.Job) error {
	// Counter and id list are owned by the atomic operations below, so a
	// full-document update must not touch them.
	update := bson.M{"$set": bson.M{
		"title":            job.Title,
		"description":      job.Description,
		"requirements":     job.Requirements,
		"salary":           job.Salary,
		"location":         job.Location,
		"job_type":         job.JobType,
		"experience_level": job.ExperienceLevel,
		"positions":        job.Positions,
		"updated_at":       job.UpdatedAt,
	}}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": job.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("job")
	}
	return nil
}

func (a *JobAdapter) DeleteJob(ctx context.Context, id string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// DeleteJobsByCompany removes every job of one company and returns their
// ids so the caller can cascade to applications.
func (a *JobAdapter) DeleteJobsByCompany(ctx context.Context, companyID string) ([]string, error) {
	filter := bson.M{"company_id": companyID}

	cursor, err := a.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			cursor.Close(ctx)
			return nil, fmt.Errorf("failed to decode job id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	cursor.Close(ctx)
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if _, err := a.collection.DeleteMany(ctx, filter); err != nil {
			return nil, fmt.Errorf("failed to delete jobs: %w", err)
		}
	}
	return ids, nil
}

// AppendApplication links a new application and bumps the counter in one
// atomic update.
func (a *JobAdapter) AppendApplication(ctx context.Context, jobID, applicationID string) error {
	update := bson.M{
		"$push": bson.M{"application_ids": applicationID},
		"$inc":  bson.M{"applications_count": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": jobID}, update)
	if err != nil {
		return fmt.Errorf("failed to append application: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("job")
	}
	return nil
}

// RemoveApplication unlinks an application. The pull and the floored
// decrement run as separate updates; the filter on the second keeps the
// counter from going negative.
func (a *JobAdapter) RemoveApplication(ctx context.Context, jobID, applicationID string) error {
	pull := bson.M{
		"$pull": bson.M{"application_ids": applicationID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": jobID}, pull)
	if err != nil {
		return fmt.Errorf("failed to remove application: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("job")
	}
	return a.DecrementApplications(ctx, jobID)
}

func (a *JobAdapter) IncrementApplications(ctx context.Context, jobID string) error {
	update := bson.M{
		"$inc": bson.M{"applications_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": jobID}, update)
	if err != nil {
		return fmt.Errorf("failed to increment counter: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("job")
	}
	return nil
}

// DecrementApplications decrements the counter, floored at zero.
func (a *JobAdapter) DecrementApplications(ctx context.Context, jobID string) error {
	filter := bson.M{"id": jobID, "applications_count": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"applications_count": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	// No match means the counter is already zero, which is fine.
	if _, err := a.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to decrement counter: %w", err)
	}
	return nil
}

// PruneApplications unlinks several applications at once. The counter
// is left alone: the caller knows which of the pruned applications were
// still undecided and adjusts it itself.
func (a *JobAdapter) PruneApplications(ctx context.Context, jobID string, applicationIDs []string) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	pull := bson.M{
		"$pull": bson.M{"application_ids": bson.M{"$in": applicationIDs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := a.collection.UpdateOne(ctx, bson.M{"id": jobID}, pull); err != nil {
		return fmt.Errorf("failed to prune applications: %w", err)
	}
	return nil
}

func jobToDocument(j *domain.Job) *jobDocument {
	return &jobDocument{
		ID:                j.ID,
		Title:             j.Title,
		Description:       j.Description,
		Requirements:      j.Requirements,
		Salary:            j.Salary,
		Location:          j.Location,
		JobType:           j.JobType,
		ExperienceLevel:   j.ExperienceLevel,
		Positions:         j.Positions,
		CompanyID:         j.CompanyID,
		PostedByUserID:    j.PostedByUserID,
		ApplicationIDs:    j.ApplicationIDs,
		ApplicationsCount: j.ApplicationsCount,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
}

func jobToEntity(doc *jobDocument) *domain.Job {
	return &domain.Job{
		ID:                doc.ID,
		Title:             doc.Title,
		Description:       doc.Description,
		Requirements:      doc.Requirements,
		Salary:            doc.Salary,
		Location:          doc.Location,
		JobType:           doc.JobType,
		ExperienceLevel:   doc.ExperienceLevel,
		Positions:         doc.Positions,
		CompanyID:         doc.CompanyID,
		PostedByUserID:    doc.PostedByUserID,
		ApplicationIDs:    doc.ApplicationIDs,
		ApplicationsCount: doc.ApplicationsCount,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}
