package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/store/memstore"
)

// plainStore hides UpsertOn so the gateway takes the read-then-write path.
type plainStore struct {
	inner *memstore.Store
}

func (p plainStore) SelectEq(ctx context.Context, table, column string, value any) ([]store.Document, error) {
	return p.inner.SelectEq(ctx, table, column, value)
}

func (p plainStore) Insert(ctx context.Context, table string, doc store.Document) error {
	return p.inner.Insert(ctx, table, doc)
}

func (p plainStore) Update(ctx context.Context, table string, patch store.Document, column string, value any) error {
	return p.inner.Update(ctx, table, patch, column, value)
}

// flakyStore fails the first failures calls of every method.
type flakyStore struct {
	plainStore
	failures int
	calls    int
}

func (f *flakyStore) SelectEq(ctx context.Context, table, column string, value any) ([]store.Document, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.plainStore.SelectEq(ctx, table, column, value)
}

func gateways() map[string]func() (*store.Gateway, *memstore.Store) {
	return map[string]func() (*store.Gateway, *memstore.Store){
		"conditional": func() (*store.Gateway, *memstore.Store) {
			mem := memstore.New()
			return store.NewGateway(mem), mem
		},
		"read-then-write": func() (*store.Gateway, *memstore.Store) {
			mem := memstore.New()
			return store.NewGateway(plainStore{inner: mem}), mem
		},
	}
}

func TestGateway_InsertThenFind(t *testing.T) {
	for name, build := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gw, _ := build()
			record := sampleRecord("x@y.z")

			op, err := gw.Upsert(ctx, "x@y.z", record)
			if err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if op != store.OutcomeInserted {
				t.Fatalf("expected insert, got %s", op)
			}

			got, found, err := gw.FindByIdentifier(ctx, "x@y.z")
			if err != nil || !found {
				t.Fatalf("find: found=%v err=%v", found, err)
			}
			if diff := cmp.Diff(record, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"High Ticket", "Low Ticket"}, got.TicketOrder); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGateway_UpsertIsIdempotent(t *testing.T) {
	for name, build := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gw, mem := build()
			record := sampleRecord("x@y.z")

			if _, err := gw.Upsert(ctx, "x@y.z", record); err != nil {
				t.Fatalf("first upsert: %v", err)
			}
			op, err := gw.Upsert(ctx, "x@y.z", record)
			if err != nil {
				t.Fatalf("second upsert: %v", err)
			}
			if op != store.OutcomeUpdated {
				t.Fatalf("expected update, got %s", op)
			}
			if n := mem.Len(store.TableSubmissions); n != 1 {
				t.Fatalf("expected one row, got %d", n)
			}
			got, _, _ := gw.FindByIdentifier(ctx, "x@y.z")
			if diff := cmp.Diff(record, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGateway_UpsertOverwritesEveryField(t *testing.T) {
	for name, build := range gateways() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gw, _ := build()

			first := sampleRecord("x@y.z")
			first.UVPType = model.UVPTypeOther
			desc := "Sound healing"
			first.OtherUVPDesc = &desc
			if _, err := gw.Upsert(ctx, "x@y.z", first); err != nil {
				t.Fatalf("first upsert: %v", err)
			}

			second := sampleRecord("x@y.z")
			second.TicketOrder = []string{"Low Ticket"}
			second.TicketItems = second.TicketItems[1:]
			second.NumTicketItems = 1
			if _, err := gw.Upsert(ctx, "x@y.z", second); err != nil {
				t.Fatalf("second upsert: %v", err)
			}

			got, _, err := gw.FindByIdentifier(ctx, "x@y.z")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if diff := cmp.Diff(second, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGateway_NotFound(t *testing.T) {
	gw := store.NewGateway(memstore.New())
	_, found, err := gw.FindByIdentifier(context.Background(), "nobody@example.com")
	if err != nil || found {
		t.Fatalf("expected (false, nil), got (%v, %v)", found, err)
	}
	if _, _, err := gw.FindByIdentifier(context.Background(), "  "); !errors.Is(err, store.ErrEmptyIdentifier) {
		t.Fatalf("expected ErrEmptyIdentifier, got %v", err)
	}
}

func TestGateway_IdentifierMismatch(t *testing.T) {
	gw := store.NewGateway(memstore.New())
	_, err := gw.Upsert(context.Background(), "a@b.co", sampleRecord("c@d.co"))
	if !errors.Is(err, store.ErrIdentifierMismatch) {
		t.Fatalf("expected ErrIdentifierMismatch, got %v", err)
	}
}

func TestGateway_Retry(t *testing.T) {
	ctx := context.Background()

	flaky := &flakyStore{plainStore: plainStore{inner: memstore.New()}, failures: 1}
	if _, _, err := store.NewGateway(flaky).FindByIdentifier(ctx, "a@b.co"); err == nil {
		t.Fatalf("single attempt should surface the failure")
	}

	flaky = &flakyStore{plainStore: plainStore{inner: memstore.New()}, failures: 2}
	gw := store.NewGateway(flaky, store.WithRetry(3, 0))
	if _, found, err := gw.FindByIdentifier(ctx, "a@b.co"); err != nil || found {
		t.Fatalf("expected recovery after retries, got found=%v err=%v", found, err)
	}
	if flaky.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", flaky.calls)
	}
}

func TestGateway_Conditional(t *testing.T) {
	if !store.NewGateway(memstore.New()).Conditional() {
		t.Fatalf("memstore supports conditional writes")
	}
	if store.NewGateway(plainStore{inner: memstore.New()}).Conditional() {
		t.Fatalf("plain store must not report conditional writes")
	}
}

func sampleRecord(email string) model.FormSubmission {
	return model.FormSubmission{
		Email:           email,
		AvatarDesc:      "Founders",
		AvatarPainList:  "Burnout",
		UniqueValueProp: "Weekly calls",
		UVPType:         "Bespoke",
		LeadMagnetDesc:  "Free checklist",
		NumTicketItems:  2,
		TicketOrder:     []string{"High Ticket", "Low Ticket"},
		TicketItems: []model.TicketItem{
			{ProductName: "Retreat", ProductType: "In-Person Retreat", Price: 3000, FeaturesDesc: "Five days", Benefits: "Reset"},
			{ProductName: "Starter", ProductType: "Online Course", Price: 100, FeaturesDesc: "Six modules", Benefits: "Calm"},
		},
	}
}
