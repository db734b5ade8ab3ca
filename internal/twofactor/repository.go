package twofactor

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository persists per-user two-factor configuration. Disable and Enable
// must each be a single atomic write: readers never observe enabled=false
// together with a non-empty method set.
type Repository interface {
	Get(ctx context.Context, sub string) (*Config, error)
	Disable(ctx context.Context, sub string) error
	Enable(ctx context.Context, sub, method string) error
}

// MongoRepository stores the two-factor fields embedded in the users
// collection, so each change is one single-document update.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Get(ctx context.Context, sub string) (*Config, error) {
	var doc struct {
		Enabled bool     `bson:"twoFactorEnabled"`
		Methods []string `bson:"twoFactorMethods"`
	}
	if err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.Methods == nil {
		doc.Methods = []string{}
	}
	return &Config{Enabled: doc.Enabled, Methods: doc.Methods}, nil
}

func (r *MongoRepository) Disable(ctx context.Context, sub string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"sub": sub}, bson.M{"$set": bson.M{
		"twoFactorEnabled": false,
		"twoFactorMethods": []string{},
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Enable(ctx context.Context, sub, method string) error {
	// $addToSet keeps Methods a set under concurrent enables
	res, err := r.col.UpdateOne(ctx, bson.M{"sub": sub}, bson.M{
		"$set":      bson.M{"twoFactorEnabled": true},
		"$addToSet": bson.M{"twoFactorMethods": method},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
