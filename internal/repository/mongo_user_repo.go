package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"forum-account/internal/db"
	"forum-account/internal/domain"
)

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// mongoCollection es el subconjunto de *mongo.Collection que usan los
// repositorios.
type mongoCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error)
}

// MongoUserRepository implementa UserRepository sobre la coleccion users.
type MongoUserRepository struct {
	coll mongoCollection
	now  func() time.Time
}

func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		coll: database.Collection(db.UsersCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	now := r.now()
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.User{}, translateMongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, options.FindOne().SetCollation(db.EmailCollation()))
}

func (r *MongoUserRepository) GetByName(ctx context.Context, name string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *MongoUserRepository) UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: r.now()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *update.PasswordHash})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return domain.User{}, translateMongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return domain.User{}, translateMongoErr(err)
	}
	return doc.toDomain(), nil
}

func translateMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
