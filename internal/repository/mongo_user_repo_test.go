package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"forum-account/internal/domain"
)

type fakeCollection struct {
	calls      int
	inserted   interface{}
	insertErr  error
	filter     interface{}
	update     interface{}
	findOpts   options.FindOneOptions
	updateOpts options.FindOneAndUpdateOptions
	doc        interface{}
	findErr    error
	updateRes  *mongo.UpdateResult
	updateErr  error
}

func applyOpts[T any](opts []options.Lister[T]) T {
	var args T
	for _, o := range opts {
		for _, fn := range o.List() {
			_ = fn(&args)
		}
	}
	return args
}

func (f *fakeCollection) result() *mongo.SingleResult {
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	return mongo.NewSingleResultFromDocument(f.doc, nil, nil)
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	f.calls++
	f.inserted = document
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &mongo.InsertOneResult{Acknowledged: true}, nil
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.calls++
	f.filter = filter
	f.findOpts = applyOpts(opts)
	return f.result()
}

func (f *fakeCollection) FindOneAndUpdate(_ context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult {
	f.calls++
	f.filter = filter
	f.update = update
	f.updateOpts = applyOpts(opts)
	return f.result()
}

func (f *fakeCollection) UpdateMany(_ context.Context, filter interface{}, update interface{}, _ ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error) {
	f.calls++
	f.filter = filter
	f.update = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateRes, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newFakeMongoUserRepo(coll *fakeCollection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll, now: func() time.Time { return fixedNow }}
}

func storedUser(oid bson.ObjectID) userDocument {
	return userDocument{
		ID:        oid,
		Name:      "Ann",
		Email:     "ann@x.com",
		Password:  "$2a$10$hash",
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow.Add(time.Hour),
	}
}

func TestTranslateMongoErr(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error collection: forum.users index: email_ci"}},
	}
	other := errors.New("server selection timeout")

	require.ErrorIs(t, translateMongoErr(mongo.ErrNoDocuments), ErrNotFound)
	require.ErrorIs(t, translateMongoErr(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), ErrNotFound)
	require.ErrorIs(t, translateMongoErr(dup), ErrDuplicate)
	require.ErrorIs(t, translateMongoErr(other), other)
}

func TestUserDocumentToDomain(t *testing.T) {
	oid := bson.NewObjectID()
	user := storedUser(oid).toDomain()

	assert.Equal(t, oid.Hex(), user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.Equal(t, fixedNow, user.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), user.UpdatedAt)
}

func TestMongoUserRepository_Create(t *testing.T) {
	coll := &fakeCollection{}
	repo := newFakeMongoUserRepo(coll)

	user, err := repo.Create(context.Background(), domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.NoError(t, err)

	doc, ok := coll.inserted.(userDocument)
	require.True(t, ok, "expected userDocument, got %T", coll.inserted)
	assert.False(t, doc.ID.IsZero())
	assert.Equal(t, doc.ID.Hex(), user.ID)
	assert.Equal(t, "Ann", doc.Name)
	assert.Equal(t, "ann@x.com", doc.Email)
	assert.Equal(t, "hash", doc.Password)
	assert.Equal(t, fixedNow, doc.CreatedAt)
	assert.Equal(t, fixedNow, doc.UpdatedAt)
	assert.Equal(t, fixedNow, user.CreatedAt)
}

func TestMongoUserRepository_CreateDuplicate(t *testing.T) {
	coll := &fakeCollection{insertErr: mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}}
	repo := newFakeMongoUserRepo(coll)

	_, err := repo.Create(context.Background(), domain.User{Name: "Ann", Email: "ann@x.com"})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMongoUserRepository_GetByID(t *testing.T) {
	oid := bson.NewObjectID()
	coll := &fakeCollection{doc: storedUser(oid)}
	repo := newFakeMongoUserRepo(coll)

	user, err := repo.GetByID(context.Background(), oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}}, coll.filter)
	assert.Equal(t, oid.Hex(), user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.True(t, user.UpdatedAt.Equal(fixedNow.Add(time.Hour)))
}

func TestMongoUserRepository_GetByIDMalformed(t *testing.T) {
	coll := &fakeCollection{}
	repo := newFakeMongoUserRepo(coll)

	_, err := repo.GetByID(context.Background(), "not-an-object-id")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, coll.calls)
}

func TestMongoUserRepository_GetByEmailIgnoresCase(t *testing.T) {
	coll := &fakeCollection{doc: storedUser(bson.NewObjectID())}
	repo := newFakeMongoUserRepo(coll)

	_, err := repo.GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "email", Value: "ann@x.com"}}, coll.filter)
	require.NotNil(t, coll.findOpts.Collation)
	assert.Equal(t, "en", coll.findOpts.Collation.Locale)
	assert.Equal(t, 2, coll.findOpts.Collation.Strength)
}

func TestMongoUserRepository_GetByEmailNotFound(t *testing.T) {
	coll := &fakeCollection{findErr: mongo.ErrNoDocuments}
	repo := newFakeMongoUserRepo(coll)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMongoUserRepository_GetByName(t *testing.T) {
	coll := &fakeCollection{doc: storedUser(bson.NewObjectID())}
	repo := newFakeMongoUserRepo(coll)

	user, err := repo.GetByName(context.Background(), "Ann")
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "name", Value: "Ann"}}, coll.filter)
	assert.Nil(t, coll.findOpts.Collation)
	assert.Equal(t, "Ann", user.Name)
}

func TestMongoUserRepository_UpdateByID(t *testing.T) {
	oid := bson.NewObjectID()
	updated := storedUser(oid)
	updated.Name = "Bob"
	coll := &fakeCollection{doc: updated}
	repo := newFakeMongoUserRepo(coll)

	name, hash := "Bob", "newhash"
	user, err := repo.UpdateByID(context.Background(), oid.Hex(), domain.UserUpdate{Name: &name, PasswordHash: &hash})
	require.NoError(t, err)

	assert.Equal(t, bson.D{{Key: "_id", Value: oid}}, coll.filter)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "updatedAt", Value: fixedNow},
		{Key: "name", Value: "Bob"},
		{Key: "password", Value: "newhash"},
	}}}, coll.update)
	require.NotNil(t, coll.updateOpts.ReturnDocument)
	assert.Equal(t, options.After, *coll.updateOpts.ReturnDocument)
	assert.Equal(t, "Bob", user.Name)
}

func TestMongoUserRepository_UpdateByIDPasswordOnly(t *testing.T) {
	oid := bson.NewObjectID()
	coll := &fakeCollection{doc: storedUser(oid)}
	repo := newFakeMongoUserRepo(coll)

	hash := "newhash"
	_, err := repo.UpdateByID(context.Background(), oid.Hex(), domain.UserUpdate{PasswordHash: &hash})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "updatedAt", Value: fixedNow},
		{Key: "password", Value: "newhash"},
	}}}, coll.update)
}

func TestMongoUserRepository_UpdateByIDErrors(t *testing.T) {
	name := "Bob"
	update := domain.UserUpdate{Name: &name}

	coll := &fakeCollection{}
	_, err := newFakeMongoUserRepo(coll).UpdateByID(context.Background(), "xyz", update)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, coll.calls)

	coll = &fakeCollection{findErr: mongo.ErrNoDocuments}
	_, err = newFakeMongoUserRepo(coll).UpdateByID(context.Background(), bson.NewObjectID().Hex(), update)
	require.ErrorIs(t, err, ErrNotFound)

	coll = &fakeCollection{findErr: mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}}
	_, err = newFakeMongoUserRepo(coll).UpdateByID(context.Background(), bson.NewObjectID().Hex(), update)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMongoAuthorRepository_UpdateAuthorName(t *testing.T) {
	oid := bson.NewObjectID()
	coll := &fakeCollection{updateRes: &mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}}
	repo := &MongoAuthorRepository{coll: coll}

	n, err := repo.UpdateAuthorName(context.Background(), oid.Hex(), "Bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, bson.D{{Key: "authorId", Value: oid}}, coll.filter)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{{Key: "authorName", Value: "Bob"}}}}, coll.update)
}

func TestMongoAuthorRepository_UpdateAuthorNameInvalidID(t *testing.T) {
	coll := &fakeCollection{}
	repo := &MongoAuthorRepository{coll: coll}

	n, err := repo.UpdateAuthorName(context.Background(), "not-hex", "Bob")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, coll.calls)
}

func TestMongoAuthorRepository_UpdateAuthorNameError(t *testing.T) {
	boom := errors.New("write concern timeout")
	repo := &MongoAuthorRepository{coll: &fakeCollection{updateErr: boom}}

	_, err := repo.UpdateAuthorName(context.Background(), bson.NewObjectID().Hex(), "Bob")
	require.ErrorIs(t, err, boom)
}
