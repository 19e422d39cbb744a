package db

import (
	"context"
	"errors"
	"time"

	"github-topic-bot/internal/config"
	"github-topic-bot/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrDuplicateMapping is returned by Save when a mapping for the same
// repository already exists.
var ErrDuplicateMapping = errors.New("repository mapping already exists")

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	Mappings *mongo.Collection
}

func Connect(cfg *config.Config) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.MongoDBURI)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.DatabaseName)

	d := &DB{
		Client:   client,
		Database: database,
		Mappings: database.Collection("repo_topic_mappings"),
	}

	if err := d.createIndexes(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique index backs the one-mapping-per-repo invariant.
	_, err := d.Mappings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "repo_full_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// FindByRepo returns the mapping for a repository, or nil if none exists.
func (d *DB) FindByRepo(ctx context.Context, repoFullName string) (*models.RepoTopicMapping, error) {
	var mapping models.RepoTopicMapping
	err := d.Mappings.FindOne(ctx, bson.M{"repo_full_name": repoFullName}).Decode(&mapping)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (d *DB) ExistsByRepo(ctx context.Context, repoFullName string) (bool, error) {
	opts := options.Count().SetLimit(1)
	count, err := d.Mappings.CountDocuments(ctx, bson.M{"repo_full_name": repoFullName}, opts)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new mapping. Returns ErrDuplicateMapping if the
// repository is already mapped.
func (d *DB) Save(ctx context.Context, mapping *models.RepoTopicMapping) error {
	res, err := d.Mappings.InsertOne(ctx, mapping)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateMapping
	}
	if err != nil {
		return err
	}

	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		mapping.ID = id
	}
	return nil
}

// DeleteByRepo removes the mapping for a repository. Deleting a
// repository that has no mapping is a no-op.
func (d *DB) DeleteByRepo(ctx context.Context, repoFullName string) error {
	_, err := d.Mappings.DeleteOne(ctx, bson.M{"repo_full_name": repoFullName})
	return err
}

// ListAll returns every mapping in insertion order.
func (d *DB) ListAll(ctx context.Context) ([]models.RepoTopicMapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.Mappings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var mappings []models.RepoTopicMapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}
