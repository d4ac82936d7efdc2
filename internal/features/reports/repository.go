package reports

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

const collectionName = "reports"

// Repository is the MongoDB Store.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the indexes the list queries rely on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "wallet_address", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_blacklisted", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *Repository) Create(ctx context.Context, report *Report) error {
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Report not found")
		}
		return nil, err
	}
	return &report, nil
}

// listSort orders newest first with the id as tiebreak, matching MemoryStore.
var listSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	opts := options.Find().SetSort(listSort)

	cursor, err := r.collection.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*Report, error) {
	set := patch.set()
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report Report
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Report not found")
		}
		return nil, err
	}
	return &report, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
