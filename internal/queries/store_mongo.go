package queries

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rvaldezm/orderstream/pkg/logger"
)

const defaultRaceRetryDelay = 100 * time.Millisecond

// recordCollection is the subset of *mongo.Collection the store drives.
type recordCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

type mongoStore struct {
	coll           recordCollection
	indexes        mongo.IndexView
	logg           *logger.Logger
	raceRetryDelay time.Duration
	sleep          func(time.Duration)
}

// MongoStoreParams collects the dependencies for NewMongoStore.
type MongoStoreParams struct {
	Collection     *mongo.Collection
	Logger         *logger.Logger
	RaceRetryDelay time.Duration
}

// NewMongoStore builds a Store backed by the provided collection.
func NewMongoStore(params MongoStoreParams) (Store, error) {
	if params.Collection == nil {
		return nil, fmt.Errorf("mongo collection required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	delay := params.RaceRetryDelay
	if delay <= 0 {
		delay = defaultRaceRetryDelay
	}
	return &mongoStore{
		coll:           params.Collection,
		indexes:        params.Collection.Indexes(),
		logg:           params.Logger,
		raceRetryDelay: delay,
		sleep:          time.Sleep,
	}, nil
}

// EnsureIndexes creates the unique order-id index and the descending
// queried-at index used by the list endpoint.
func (s *mongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "queried_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("creating query record indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) Upsert(ctx context.Context, record QueryRecord) (UpsertResult, error) {
	existing, err := s.FindByOrderID(ctx, record.OrderID)
	if err != nil && err != ErrRecordNotFound {
		return UpsertResult{}, err
	}

	if existing == nil {
		_, insertErr := s.coll.InsertOne(ctx, record)
		if insertErr == nil {
			return UpsertResult{Created: true, Record: record}, nil
		}
		if !mongo.IsDuplicateKeyError(insertErr) {
			return UpsertResult{}, fmt.Errorf("inserting query record: %w", insertErr)
		}

		// A concurrent delivery inserted first. Re-read the winner right
		// away, and once more after a short delay in case the winning
		// write is not yet visible. One delayed retry only.
		s.logg.Warn(ctx, fmt.Sprintf("duplicate insert for order %d, merging into winner", record.OrderID))
		existing, err = s.FindByOrderID(ctx, record.OrderID)
		if err == ErrRecordNotFound {
			s.sleep(s.raceRetryDelay)
			existing, err = s.FindByOrderID(ctx, record.OrderID)
		}
		if err == ErrRecordNotFound {
			return UpsertResult{}, fmt.Errorf("order %d: duplicate key but record not readable", record.OrderID)
		}
		if err != nil {
			return UpsertResult{}, err
		}
	}

	merged := existing.Merge(record)
	if err := s.replace(ctx, merged); err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{Created: false, Record: merged}, nil
}

func (s *mongoStore) replace(ctx context.Context, record QueryRecord) error {
	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		return fmt.Errorf("updating query record: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("query record %s vanished during merge", record.ID)
	}
	return nil
}

func (s *mongoStore) FindByOrderID(ctx context.Context, orderID int64) (*QueryRecord, error) {
	var record QueryRecord
	err := s.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding query record: %w", err)
	}
	return &record, nil
}

func (s *mongoStore) List(ctx context.Context, limit, offset int) ([]QueryRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "queried_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing query records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []QueryRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding query records: %w", err)
	}
	return records, nil
}

func (s *mongoStore) Totals(ctx context.Context) (*Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "form", Value: "$payment_form"},
				{Key: "status", Value: "$status"},
			}},
			{Key: "records", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "deliveries", Value: bson.D{{Key: "$sum", Value: "$metadata.processing_count"}}},
			{Key: "last_processed", Value: bson.D{{Key: "$max", Value: "$processed_at"}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating query records: %w", err)
	}
	defer cursor.Close(ctx)

	totals := &Totals{ByPaymentForm: map[string]int64{}, ByStatus: map[string]int64{}}
	for cursor.Next(ctx) {
		var row struct {
			ID struct {
				Form   string `bson:"form"`
				Status string `bson:"status"`
			} `bson:"_id"`
			Records       int64     `bson:"records"`
			Deliveries    int64     `bson:"deliveries"`
			LastProcessed time.Time `bson:"last_processed"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decoding totals row: %w", err)
		}
		totals.Records += row.Records
		totals.Deliveries += row.Deliveries
		totals.ByPaymentForm[row.ID.Form] += row.Records
		totals.ByStatus[row.ID.Status] += row.Records
		if totals.LastProcessedAt == nil || row.LastProcessed.After(*totals.LastProcessedAt) {
			last := row.LastProcessed
			totals.LastProcessedAt = &last
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating totals: %w", err)
	}
	return totals, nil
}
