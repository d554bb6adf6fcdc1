package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DocumentsCollection holds one BSON document per stored document.
const DocumentsCollection = "documents"

type storedDocument struct {
	Name      string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoBackend stores documents in MongoDB.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.RWMutex
}

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, mongoURL, dbName string) (*MongoBackend, error) {
	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "DB")
		return nil, fmt.Errorf("%w: connect: %v", ErrStorage, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "DB")
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %v", ErrStorage, err)
	}

	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	return NewMongoBackend(client, client.Database(dbName)), nil
}

// NewMongoBackend wraps an already connected database.
func NewMongoBackend(client *mongo.Client, db *mongo.Database) *MongoBackend {
	return &MongoBackend{client: client, collection: db.Collection(DocumentsCollection)}
}

// Load fetches the payload stored under name.
func (b *MongoBackend) Load(ctx context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var doc storedDocument
	err := b.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Payload), nil
}

// Save upserts the payload under name. A single-document update is atomic in MongoDB.
func (b *MongoBackend) Save(ctx context.Context, name string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	opts := options.Update().SetUpsert(true)
	_, err := b.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"payload": string(data), "updatedAt": time.Now().UTC()}},
		opts,
	)
	return err
}

// Ping measures a round trip to the primary.
func (b *MongoBackend) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.client.Ping(ctx, readpref.Primary())
}

// Status returns the status line shown by /status.
func (b *MongoBackend) Status(ctx context.Context) (string, bool) {
	return Status(ctx, b)
}

// Disconnect closes the client.
func (b *MongoBackend) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}
