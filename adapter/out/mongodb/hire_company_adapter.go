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

const collectionCompanies = "companies"

// CompanyAdapter implements out.CompanyRepository using MongoDB.
type CompanyAdapter struct {
	collection *mongo.Collection
}

// NewCompanyAdapter creates a new MongoDB company adapter.
func NewCompanyAdapter(db *mongo.Database) *CompanyAdapter {
	return &CompanyAdapter{collection: db.Collection(collectionCompanies)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *CompanyAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_user_id", Value: 1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type companyDocument struct {
	ID          string    `bson:"id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Website     string    `bson:"website,omitempty"`
	Location    string    `bson:"location,omitempty"`
	LogoURL     string    `bson:"logo_url,omitempty"`
	OwnerUserID string    `bson:"owner_user_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (a *CompanyAdapter) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	return a.findOne(ctx, bson.M{"id": id})
}

func (a *CompanyAdapter) GetCompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	return a.findOne(ctx, bson.M{"name": name})
}

func (a *CompanyAdapter) findOne(ctx context.Context, filter bson.M) (*domain.Company, error) {
	var doc companyDocument
	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return companyToEntity(&doc), nil
}

func (a *CompanyAdapter) ListCompaniesByOwner(ctx context.Context, ownerUserID string) ([]*domain.Company, error) {
	companies, _, err := a.list(ctx, bson.M{"owner_user_id": ownerUserID}, 0, 0)
	return companies, err
}

func (a *CompanyAdapter) ListCompanies(ctx context.Context, search string, skip, limit int) ([]*domain.Company, int, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}
	}
	return a.list(ctx, filter, skip, limit)
}

func (a *CompanyAdapter) list(ctx context.Context, filter bson.M, skip, limit int) ([]*domain.Company, int, error) {
	total, err := a.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer cursor.Close(ctx)

	var companies []*domain.Company
	for cursor.Next(ctx) {
		var doc companyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode company: %w", err)
		}
		companies = append(companies, companyToEntity(&doc))
	}
	return companies, int(total), cursor.Err()
}

func (a *CompanyAdapter) CreateCompany(ctx context.Context, company *domain.Company) error {
	_, err := a.collection.InsertOne(ctx, companyToDocument(company))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.AlreadyExists("company with this name")
	}
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (a *CompanyAdapter) UpdateCompany(ctx context.Context, company *domain.Company) error {
	result, err := a.collection.ReplaceOne(ctx, bson.M{"id": company.ID}, companyToDocument(company))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.AlreadyExists("company with this name")
	}
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("company")
	}
	return nil
}

func (a *CompanyAdapter) DeleteCompany(ctx context.Context, id string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

// DeleteCompaniesByOwner removes every company of one owner and returns
// their ids so the caller can cascade further.
func (a *CompanyAdapter) DeleteCompaniesByOwner(ctx context.Context, ownerUserID string) ([]string, error) {
	filter := bson.M{"owner_user_id": ownerUserID}

	cursor, err := a.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}
	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			cursor.Close(ctx)
			return nil, fmt.Errorf("failed to decode company id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	cursor.Close(ctx)
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if _, err := a.collection.DeleteMany(ctx, filter); err != nil {
			return nil, fmt.Errorf("failed to delete companies: %w", err)
		}
	}
	return ids, nil
}

func companyToDocument(c *domain.Company) *companyDocument {
	return &companyDocument{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Location:    c.Location,
		LogoURL:     c.LogoURL,
		OwnerUserID: c.OwnerUserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func companyToEntity(doc *companyDocument) *domain.Company {
	return &domain.Company{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Website:     doc.Website,
		Location:    doc.Location,
		LogoURL:     doc.LogoURL,
		OwnerUserID: doc.OwnerUserID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
