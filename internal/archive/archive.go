// Package archive copies daily milk snapshots to a secondary document store
// so they outlive the relational database's retention.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// SnapshotArchive stores snapshots keyed by farm and day. Saving the same
// farm-day twice replaces the earlier document.
type SnapshotArchive interface {
	Save(ctx context.Context, snaps []domain.DailySnapshot) error
	Close(ctx context.Context) error
}

// Nop discards everything. It is used when no archive is configured.
type Nop struct{}

func (Nop) Save(context.Context, []domain.DailySnapshot) error { return nil }
func (Nop) Close(context.Context) error { return nil }

// snapshotDoc is the stored shape of a DailySnapshot.
type snapshotDoc struct {
	FarmID     string               `bson:"farm_id"`
	Day        string               `bson:"day"`
	Produced   primitive.Decimal128 `bson:"produced"`
	Sold       primitive.Decimal128 `bson:"sold"`
	Remaining  primitive.Decimal128 `bson:"remaining"`
	CowCount   int                  `bson:"cow_count"`
	ArchivedAt time.Time            `bson:"archived_at"`
}

func toDoc(s domain.DailySnapshot, now time.Time) (snapshotDoc, error) {
	produced, err := primitive.ParseDecimal128(s.Produced.String())
	if err != nil {
		return snapshotDoc{}, fmt.Errorf("produced: %w", err)
	}
	sold, err := primitive.ParseDecimal128(s.Sold.String())
	if err != nil {
		return snapshotDoc{}, fmt.Errorf("sold: %w", err)
	}
	remaining, err := primitive.ParseDecimal128(s.Remaining.String())
	if err != nil {
		return snapshotDoc{}, fmt.Errorf("remaining: %w", err)
	}
	return snapshotDoc{
		FarmID:     s.FarmID,
		Day:        s.Day,
		Produced:   produced,
		Sold:       sold,
		Remaining:  remaining,
		CowCount:   s.CowCount,
		ArchivedAt: now.UTC(),
	}, nil
}

// collection is the part of *mongo.Collection the archive uses.
type collection interface {
	UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Mongo archives snapshots in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   collection
	now    func() time.Time
}

// NewMongo connects to uri and verifies the connection with a ping.
func NewMongo(ctx context.Context, uri, database, coll string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(coll),
		now:    time.Now,
	}, nil
}

// Save upserts one document per snapshot.
func (m *Mongo) Save(ctx context.Context, snaps []domain.DailySnapshot) error {
	now := m.now()
	for _, s := range snaps {
		doc, err := toDoc(s, now)
		if err != nil {
			return fmt.Errorf("snapshot %s/%s: %w", s.FarmID, s.Day, err)
		}
		filter := bson.M{"farm_id": doc.FarmID, "day": doc.Day}
		_, err = m.coll.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to upsert snapshot %s/%s: %w", s.FarmID, s.Day, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
