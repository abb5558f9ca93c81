package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Index describes a compound index required by a query shape (equality fields first, then range/order).
type Index struct {
	Collection string
	Keys       bson.D
	Unique     bool
}

// RequiredIndexes lists the composite indexes the workflows rely on for combined filter+order queries.
var RequiredIndexes = []Index{
	{Collection: "cardapio", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "disponivel", Value: 1}, {Key: "categoria", Value: 1}, {Key: "nome", Value: 1}}},
	{Collection: "pedidos", Keys: bson.D{{Key: "mesa_id", Value: 1}, {Key: "status", Value: 1}, {Key: "hora_criacao", Value: -1}}},
	{Collection: "pedidos", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "status", Value: 1}, {Key: "hora_criacao", Value: 1}}},
	{Collection: "pedidos", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "status", Value: 1}, {Key: "hora_entrega", Value: 1}}},
	{Collection: "mesas", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "status", Value: 1}, {Key: "numero", Value: 1}}},
	{Collection: "mesas", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "numero", Value: 1}}, Unique: true},
	{Collection: "reservas", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "data_hora", Value: 1}}},
	{Collection: "estoque", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "quantidade", Value: 1}}},
	{Collection: "funcionarios", Keys: bson.D{{Key: "restauranteId", Value: 1}, {Key: "cargo", Value: 1}, {Key: "nome", Value: 1}}},
}

// Connect opens the client, pings the primary and returns a Store bound to cfg.Database.
func Connect(cfg Config) (*Store, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: cfg.Timeout,
	}, nil
}

// CreateIndexes ensures every index in RequiredIndexes exists.
func (s *Store) CreateIndexes(ctx context.Context) error {
	for _, idx := range RequiredIndexes {
		model := mongo.IndexModel{Keys: idx.Keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create %s index: %w", idx.Collection, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
