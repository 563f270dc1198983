package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"forum-account/internal/db"
)

// AuthorNameRepository mantiene el authorName desnormalizado de posts o
// comments. UpdateAuthorName es idempotente.
type AuthorNameRepository interface {
	UpdateAuthorName(ctx context.Context, authorID, name string) (int64, error)
}

// MongoAuthorRepository actualiza una coleccion con campos authorId/authorName.
type MongoAuthorRepository struct {
	coll mongoCollection
}

func NewMongoPostAuthorRepository(database *mongo.Database) *MongoAuthorRepository {
	return &MongoAuthorRepository{coll: database.Collection(db.PostsCollection)}
}

func NewMongoCommentAuthorRepository(database *mongo.Database) *MongoAuthorRepository {
	return &MongoAuthorRepository{coll: database.Collection(db.CommentsCollection)}
}

func (r *MongoAuthorRepository) UpdateAuthorName(ctx context.Context, authorID, name string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(authorID)
	if err != nil {
		// Ningun documento puede referenciar un id invalido.
		return 0, nil
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "authorId", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "authorName", Value: name}}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PgAuthorRepository actualiza author_name en posts o comments.
type PgAuthorRepository struct {
	db    pgxQuerier
	query string
}

func NewPgPostAuthorRepository(pool *pgxpool.Pool) *PgAuthorRepository {
	return &PgAuthorRepository{db: pool, query: `UPDATE posts SET author_name = $2 WHERE author_id = $1`}
}

func NewPgCommentAuthorRepository(pool *pgxpool.Pool) *PgAuthorRepository {
	return &PgAuthorRepository{db: pool, query: `UPDATE comments SET author_name = $2 WHERE author_id = $1`}
}

func (r *PgAuthorRepository) UpdateAuthorName(ctx context.Context, authorID, name string) (int64, error) {
	if _, err := uuid.Parse(authorID); err != nil {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, r.query, authorID, name)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
