package audit

import (
	"testing"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/store"
)

func TestLogEventAssignsMonotonicIDs(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	actor := govledger.Identity("attestor-1")

	for want := int64(0); want < 4; want++ {
		id, err := ctrl.LogEvent(db, 100, "Revenue Recorded", 500, actor)
		if err != nil {
			t.Fatal(err)
		}
		if id != want {
			t.Fatalf("want id %d, got %d", want, id)
		}
	}

	count, err := ctrl.Count(db)
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("want count 4, got %d", count)
	}
}

func TestGetEntry(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	id, err := ctrl.LogEvent(db, 7, "Vote Cast", 3, "voter-a")
	if err != nil {
		t.Fatal(err)
	}

	entry, err := ctrl.GetEntry(db, id)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Label != "Vote Cast" || entry.Amount != 3 || entry.Actor != "voter-a" || entry.Tick != 7 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := ctrl.GetEntry(db, 42); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound, got %+v", err)
	}
}

func TestListClampsRange(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	for i := 0; i < 5; i++ {
		if _, err := ctrl.LogEvent(db, govledger.Tick(i), "Proposal Submitted", int64(i), "proposer"); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := ctrl.List(db, 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[2].ID != 4 {
		t.Fatalf("unexpected ids: %+v", entries)
	}

	if entries, _ := ctrl.List(db, 9, 12); entries != nil {
		t.Fatalf("want empty result, got %+v", entries)
	}
}

func TestRejectsInvalidEntries(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	if _, err := ctrl.LogEvent(db, 1, "", 0, "actor"); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want ErrEmpty for empty label, got %+v", err)
	}
	if _, err := ctrl.LogEvent(db, 1, "Revenue Recorded", 0, ""); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want ErrEmpty for empty actor, got %+v", err)
	}
}
