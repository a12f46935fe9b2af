package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore is the MongoDB implementation of Store for hosts that do not
// run Postgres. A unique index on (post_id, user_id) provides the same
// insert-if-absent semantics; duplicate-key errors translate to
// created=false. Call EnsureIndexes once at startup.
type MongoStore struct {
	notifications *mongo.Collection
	readStates    *mongo.Collection
}

type mongoEntry struct {
	PostID    string    `bson:"post_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type mongoReadState struct {
	PrivateTopicID string    `bson:"private_topic_id"`
	UserID         string    `bson:"user_id"`
	ReadAt         time.Time `bson:"read_at"`
}

// NewMongoStore creates a ledger store over the given database. Collections
// used: user_post_notifications, private_topic_read_states.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		notifications: db.Collection("user_post_notifications"),
		readStates:    db.Collection("private_topic_read_states"),
	}
}

// EnsureIndexes creates the unique indexes the store's atomicity depends on.
// Must succeed before the store is used for fan-out.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.readStates.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "private_topic_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) CreateIfAbsent(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	_, err := s.notifications.InsertOne(ctx, mongoEntry{
		PostID:    postID.String(),
		UserID:    userID.String(),
		CreatedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MongoStore) NotifiedUserIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	cursor, err := s.notifications.Find(ctx, bson.D{{Key: "post_id", Value: postID.String()}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []uuid.UUID
	for cursor.Next(ctx) {
		var entry mongoEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(entry.UserID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, cursor.Err()
}

func (s *MongoStore) FindReadState(ctx context.Context, privateTopicID, userID uuid.UUID) (*ReadState, error) {
	filter := bson.D{
		{Key: "private_topic_id", Value: privateTopicID.String()},
		{Key: "user_id", Value: userID.String()},
	}
	var doc mongoReadState
	if err := s.readStates.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &ReadState{PrivateTopicID: privateTopicID, UserID: userID, ReadAt: doc.ReadAt}, nil
}

func (s *MongoStore) UpsertReadState(ctx context.Context, state ReadState) error {
	filter := bson.D{
		{Key: "private_topic_id", Value: state.PrivateTopicID.String()},
		{Key: "user_id", Value: state.UserID.String()},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "read_at", Value: state.ReadAt}}}}
	_, err := s.readStates.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}

func (s *MongoStore) DeleteReadState(ctx context.Context, privateTopicID, userID uuid.UUID) error {
	_, err := s.readStates.DeleteOne(ctx, bson.D{
		{Key: "private_topic_id", Value: privateTopicID.String()},
		{Key: "user_id", Value: userID.String()},
	})
	return err
}
