package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/models"
)

// MongoStore keeps users and strategies in two collections. Integer ids come
// from a counters collection so clients see the same id shape as with SQL.
type MongoStore struct {
	client     *mongo.Client
	users      *mongo.Collection
	strategies *mongo.Collection
	counters   *mongo.Collection
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:     client,
		users:      db.Collection("users"),
		strategies: db.Collection("strategies"),
		counters:   db.Collection("counters"),
	}
}

// mongoURI only adds credentials when a password is set, so the default
// DB_USER=root does not force auth on an open local server.
func mongoURI(cfg *config.Config) string {
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(cfg.DBHost, cfg.DBPort)}
	if cfg.DBUser != "" && cfg.DBPassword != "" {
		u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
	}
	return u.String()
}

// OpenMongo connects with a pool of at most cfg.DBMaxConns, pings the
// primary and ensures the indexes exist.
func OpenMongo(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(mongoURI(cfg)).
		SetMaxPoolSize(uint64(cfg.DBMaxConns))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewMongoStore(client, client.Database(cfg.DBName))
	if err := s.Migrate(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Migrate creates the unique username index and the history index.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = s.strategies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo strategies index: %w", err)
	}
	return nil
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// nextID atomically increments and returns the named sequence.
func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("mongo next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return nil, err
	}
	u := models.User{ID: id, Username: username, Password: hashedPassword}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) InsertStrategy(ctx context.Context, st *models.Strategy) error {
	id, err := s.nextID(ctx, "strategies")
	if err != nil {
		return err
	}
	st.ID = id
	st.CreatedAt = time.Now().UTC()
	if _, err := s.strategies.InsertOne(ctx, st); err != nil {
		return fmt.Errorf("mongo insert strategy: %w", err)
	}
	return nil
}

func (s *MongoStore) ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.strategies.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find strategies: %w", err)
	}
	defer cur.Close(ctx)

	docs := []models.Strategy{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode strategies: %w", err)
	}
	return docs, nil
}
