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

const collectionUsers = "users"

// UserAdapter implements out.UserRepository using MongoDB.
type UserAdapter struct {
	collection *mongo.Collection
}

// NewUserAdapter creates a new MongoDB user adapter.
func NewUserAdapter(db *mongo.Database) *UserAdapter {
	return &UserAdapter{collection: db.Collection(collectionUsers)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *UserAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type userProfileDocument struct {
	Bio                string   `bson:"bio,omitempty"`
	Skills             []string `bson:"skills,omitempty"`
	ResumeURL          string   `bson:"resume_url,omitempty"`
	ResumeOriginalName string   `bson:"resume_original_name,omitempty"`
	ProfilePhotoURL    string   `bson:"profile_photo_url,omitempty"`
}

type userDocument struct {
	ID           string              `bson:"id"`
	Fullname     string              `bson:"fullname"`
	Email        string              `bson:"email"`
	PhoneNumber  string              `bson:"phone_number"`
	PasswordHash string              `bson:"password_hash"`
	Role         string              `bson:"role"`
	Profile      userProfileDocument `bson:"profile"`
	SavedJobs    []string            `bson:"saved_jobs,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func (a *UserAdapter) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return a.findOne(ctx, bson.M{"id": id})
}

func (a *UserAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return a.findOne(ctx, bson.M{"email": email})
}

func (a *UserAdapter) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userToEntity(&doc), nil
}

// ListUsers serves the admin account listing. Admin accounts are
// excluded regardless of the filter.
func (a *UserAdapter) ListUsers(ctx context.Context, f *domain.UserFilter, skip, limit int) ([]*domain.User, int, error) {
	filter := bson.M{"role": bson.M{"$ne": string(domain.RoleAdmin)}}
	if f != nil {
		if f.Role != "" {
			filter["role"] = string(f.Role)
		}
		if f.Search != "" {
			filter["fullname"] = primitive.Regex{
				Pattern: regexp.QuoteMeta(f.Search),
				Options: "i",
			}
		}
	}

	total, err := a.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, userToEntity(&doc))
	}
	return users, int(total), cursor.Err()
}

func (a *UserAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := a.collection.InsertOne(ctx, userToDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.AlreadyExists("user with this email")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (a *UserAdapter) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := a.collection.ReplaceOne(ctx, bson.M{"id": user.ID}, userToDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.AlreadyExists("user with this email")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (a *UserAdapter) DeleteUser(ctx context.Context, id string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// AddSavedJob adds a bookmark with set semantics.
func (a *UserAdapter) AddSavedJob(ctx context.Context, userID, jobID string) error {
	update := bson.M{
		"$addToSet": bson.M{"saved_jobs": jobID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to add saved job: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (a *UserAdapter) RemoveSavedJob(ctx context.Context, userID, jobID string) error {
	update := bson.M{
		"$pull": bson.M{"saved_jobs": jobID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove saved job: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (a *UserAdapter) SetSavedJobs(ctx context.Context, userID string, jobIDs []string) error {
	update := bson.M{
		"$set": bson.M{"saved_jobs": jobIDs, "updated_at": time.Now().UTC()},
	}
	result, err := a.collection.UpdateOne(ctx, bson.M{"id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to set saved jobs: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func userToDocument(u *domain.User) *userDocument {
	return &userDocument{
		ID:           u.ID,
		Fullname:     u.Fullname,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Profile: userProfileDocument{
			Bio:                u.Profile.Bio,
			Skills:             u.Profile.Skills,
			ResumeURL:          u.Profile.ResumeURL,
			ResumeOriginalName: u.Profile.ResumeOriginalName,
			ProfilePhotoURL:    u.Profile.ProfilePhotoURL,
		},
		SavedJobs: u.SavedJobs,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userToEntity(doc *userDocument) *domain.User {
	return &domain.User{
		ID:           doc.ID,
		Fullname:     doc.Fullname,
		Email:        doc.Email,
		PhoneNumber:  doc.PhoneNumber,
		PasswordHash: doc.PasswordHash,
		Role:         domain.Role(doc.Role),
		Profile: domain.Profile{
			Bio:                doc.Profile.Bio,
			Skills:             doc.Profile.Skills,
			ResumeURL:          doc.Profile.ResumeURL,
			ResumeOriginalName: doc.Profile.ResumeOriginalName,
			ProfilePhotoURL:    doc.Profile.ProfilePhotoURL,
		},
		SavedJobs: doc.SavedJobs,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
