package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"forum-account/internal/config"
)

const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// NewMongoClient conecta con MongoDB y verifica la conexion con un ping.
func NewMongoClient(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EmailCollation compara emails sin distinguir mayusculas. Las consultas por
// email deben usarla para aprovechar el indice email_ci.
func EmailCollation() *options.Collation {
	return &options.Collation{Locale: "en", Strength: 2}
}

// UserIndexes son los indices unicos de users.
func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_ci").SetUnique(true).SetCollation(EmailCollation()),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}

// EnsureIndexes crea los indices unicos de users y los indices por autor
// de posts y comments.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(UsersCollection).Indexes().CreateMany(ctx, UserIndexes())
	if err != nil {
		return err
	}
	for _, name := range []string{PostsCollection, CommentsCollection} {
		_, err := database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "authorId", Value: 1}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PingMongo verifica conectividad con MongoDB.
func PingMongo(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, nil)
}
