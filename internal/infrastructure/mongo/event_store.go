package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"github.com/jhoicas/facturacion-api/pkg/config"
	"github.com/jhoicas/facturacion-api/pkg/logger"
)

var _ repository.LogRepository = (*EventStore)(nil)

// EventStore bitácora documental: dos colecciones capped (flujo de facturación y sistema)
// con índice de expiración sobre ts.
type EventStore struct {
	client  *mongo.Client
	db      *mongo.Database
	streams map[entity.LogCategory]string
	maxSize int64
	ttl     time.Duration
	log     *logger.Logger
}

// Connect abre el cliente y verifica la conexión. No crea colecciones: ver Provision.
func Connect(ctx context.Context, cfg config.MongoConfig, log *logger.Logger) (*EventStore, error) {
	timeout := time.Duration(cfg.ServerSelectTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return NewEventStore(client, cfg, log), nil
}

// NewEventStore construye el store sobre un cliente ya conectado.
func NewEventStore(client *mongo.Client, cfg config.MongoConfig, log *logger.Logger) *EventStore {
	if log == nil {
		log = logger.Nop()
	}
	return &EventStore{
		client: client,
		db:     client.Database(cfg.Database),
		streams: map[entity.LogCategory]string{
			entity.CategoryBilling: cfg.BillingCollection,
			entity.CategorySystem:  cfg.SystemCollection,
		},
		maxSize: cfg.MaxSizeBytes(),
		ttl:     cfg.TTL(),
		log:     log,
	}
}

// Provision crea las colecciones capped que falten y sus índices, ambos flujos en paralelo.
func (s *EventStore) Provision(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("mongo: list collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range s.streams {
		g.Go(func() error {
			if !present[name] {
				opts := options.CreateCollection().SetCapped(true).SetSizeInBytes(s.maxSize)
				if err := s.db.CreateCollection(gctx, name, opts); err != nil {
					return fmt.Errorf("mongo: create capped %s: %w", name, err)
				}
			}
			return s.ensureIndexes(gctx, name)
		})
	}
	return g.Wait()
}

func (s *EventStore) ensureIndexes(ctx context.Context, name string) error {
	coll := s.db.Collection(name)
	lookups := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "level", Value: 1}, {Key: "module", Value: 1}},
			Options: options.Index().SetName("idx_level_module"),
		},
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetName("idx_uuid"),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, lookups); err != nil {
		return fmt.Errorf("mongo: indexes %s: %w", name, err)
	}

	ttl := mongo.IndexModel{
		Keys:    bson.D{{Key: "ts", Value: 1}},
		Options: options.Index().SetName("idx_ts_ttl").SetExpireAfterSeconds(int32(s.ttl.Seconds())),
	}
	if _, err := coll.Indexes().CreateOne(ctx, ttl); err != nil {
		// Algunos servidores no aceptan TTL en colecciones capped; el tope de tamaño sigue vigente.
		s.log.Warn().Err(err).Str("collection", name).Msg("índice TTL rechazado; se crea índice simple sobre ts")
		plain := mongo.IndexModel{
			Keys:    bson.D{{Key: "ts", Value: -1}},
			Options: options.Index().SetName("idx_ts"),
		}
		if _, err := coll.Indexes().CreateOne(ctx, plain); err != nil {
			return fmt.Errorf("mongo: index ts %s: %w", name, err)
		}
	}
	return nil
}

// Exists indica si la colección del flujo existe (diagnóstico).
func (s *EventStore) Exists(ctx context.Context, category entity.LogCategory) (bool, error) {
	name, ok := s.streams[category]
	if !ok {
		return false, nil
	}
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("mongo: list collections: %w", err)
	}
	return len(names) == 1, nil
}

// Insert agrega el evento en el flujo de su categoría.
func (s *EventStore) Insert(ctx context.Context, e *entity.LogEvent) error {
	coll, err := s.collection(e.Category)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, toEventModel(e)); err != nil {
		return fmt.Errorf("mongo: insert event: %w", err)
	}
	return nil
}

// List eventos más recientes primero.
func (s *EventStore) List(ctx context.Context, f entity.LogFilter) ([]*entity.LogEvent, error) {
	category := f.Category
	if category == "" {
		category = entity.CategoryBilling
	}
	coll, err := s.collection(category)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if f.Level != "" {
		filter["level"] = string(f.Level)
	}
	if f.Module != "" {
		filter["module"] = f.Module
	}
	if f.InvoiceID != "" {
		filter["uuid"] = f.InvoiceID
	}
	limit := int64(f.Limit)
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: -1}}).SetLimit(limit)

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find events: %w", err)
	}
	var models []eventModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongo: decode events: %w", err)
	}
	events := make([]*entity.LogEvent, 0, len(models))
	for i := range models {
		events = append(events, fromEventModel(&models[i], category))
	}
	return events, nil
}

// Ping verifica que el servidor responda.
func (s *EventStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close desconecta el cliente.
func (s *EventStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *EventStore) collection(category entity.LogCategory) (*mongo.Collection, error) {
	name, ok := s.streams[category]
	if !ok || name == "" {
		return nil, fmt.Errorf("mongo: categoría sin colección: %q", category)
	}
	return s.db.Collection(name), nil
}
