package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mashamba/dairy-backend/internal/domain"
)

type upsertCall struct {
	filter bson.M
	doc    snapshotDoc
	upsert bool
}

type fakeColl struct {
	calls []upsertCall
	err   error
}

func (f *fakeColl) UpdateOne(_ context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	call := upsertCall{filter: filter.(bson.M), doc: update.(bson.M)["$set"].(snapshotDoc)}
	for _, o := range opts {
		if o.Upsert != nil {
			call.upsert = *o.Upsert
		}
	}
	f.calls = append(f.calls, call)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func snap(day, produced, sold string) domain.DailySnapshot {
	p, s := decimal.RequireFromString(produced), decimal.RequireFromString(sold)
	return domain.DailySnapshot{FarmID: "farm-1", Day: day, Produced: p, Sold: s, Remaining: p.Sub(s), CowCount: 3}
}

func TestMongo_SaveUpsertsByFarmAndDay(t *testing.T) {
	fc := &fakeColl{}
	now := time.Date(2024, 6, 11, 0, 5, 0, 0, time.UTC)
	m := &Mongo{coll: fc, now: func() time.Time { return now }}

	err := m.Save(context.Background(), []domain.DailySnapshot{snap("2024-06-10", "42.5", "40"), snap("2024-06-09", "10", "12")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(fc.calls) != 2 {
		t.Fatalf("calls=%d", len(fc.calls))
	}
	first := fc.calls[0]
	if first.filter["farm_id"] != "farm-1" || first.filter["day"] != "2024-06-10" || !first.upsert {
		t.Fatalf("unexpected call %+v", first)
	}
	if first.doc.Produced.String() != "42.5" || first.doc.Remaining.String() != "2.5" {
		t.Fatalf("decimals: produced=%s remaining=%s", first.doc.Produced, first.doc.Remaining)
	}
	if !first.doc.ArchivedAt.Equal(now) || first.doc.CowCount != 3 {
		t.Fatalf("doc=%+v", first.doc)
	}
	if got := fc.calls[1].doc.Remaining.String(); got != "-2" {
		t.Fatalf("oversold remaining=%s", got)
	}
}

func TestMongo_SaveWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := &Mongo{coll: &fakeColl{err: boom}, now: time.Now}
	err := m.Save(context.Background(), []domain.DailySnapshot{snap("2024-06-10", "1", "0")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestNop(t *testing.T) {
	var a SnapshotArchive = Nop{}
	if err := a.Save(context.Background(), []domain.DailySnapshot{snap("2024-06-10", "1", "0")}); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := (&Mongo{}).Close(context.Background()); err != nil {
		t.Fatalf("Close without client: %v", err)
	}
}
