package mapstore

import (
	"context"
	"fmt"
	"time"

	"github.com/davidvelascogarcia/hns/grid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mapDocument is the stored form of an occupancy map.
type mapDocument struct {
	Name string  `bson:"_id"`
	Rows [][]int `bson:"rows"`
}

// MongoRepo loads maps from a MongoDB collection, for deployments where
// maps are provisioned centrally instead of shipped as files.
type MongoRepo struct {
	collection *mongo.Collection
}

// NewMongoRepo creates a map repository over the given MongoDB client,
// database name, and collection name.
func NewMongoRepo(client *mongo.Client, dbName, collectionName string) *MongoRepo {
	return &MongoRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// ByName retrieves a map by its identifier.
func (r *MongoRepo) ByName(ctx context.Context, name string) (*grid.Grid, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var doc mapDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		return nil, fmt.Errorf("loading map %q: %w", name, err)
	}

	rows := make([][]grid.Status, len(doc.Rows))
	for i, row := range doc.Rows {
		rows[i] = make([]grid.Status, len(row))
		for j, code := range row {
			status, err := grid.StatusFromCode(code)
			if err != nil {
				return nil, fmt.Errorf("map %q row %d col %d: %w", name, i, j, err)
			}
			rows[i][j] = status
		}
	}

	g, err := grid.New(rows)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}
	return g, nil
}
