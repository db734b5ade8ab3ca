package trending

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository reads ranked hashtag usage.
type Repository interface {
	// Top returns the limit most-used hashtags, most used first. Ties are
	// broken alphabetically by name so the ranking is stable across calls.
	Top(ctx context.Context, limit int) ([]Tag, error)
}

// Recorder appends hashtag usage records. Implemented alongside Repository;
// split so the posts service only sees the write side.
type Recorder interface {
	Record(ctx context.Context, postID string, names []string) error
}

// MongoRepository delegates grouping/counting to a Mongo aggregation pipeline
// over the hashtags collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Top(ctx context.Context, limit int) ([]Tag, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$name"},
			{Key: "postsCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "postsCount", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Tag{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Record(ctx context.Context, postID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(names))
	for _, n := range names {
		docs = append(docs, UsageRecord{Name: n, PostID: postID, CreatedAt: now})
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}
