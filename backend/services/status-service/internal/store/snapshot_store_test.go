package store

import (
	"sync"
	"testing"

	"evdash/backend/services/status-service/internal/models"
)

func TestNewSnapshotStoreStartsAtDefault(t *testing.T) {
	s := NewSnapshotStore()
	if got := s.Read(); got != models.DefaultStatus() {
		t.Fatalf("expected default status, got %+v", got)
	}
}

func TestMergeKeepsPreviousValuesForMissingFields(t *testing.T) {
	s := NewSnapshotStore()

	got := s.Merge(models.StatusUpdate{Power: "3.5 kW", Status: models.StatusCharging})
	if got.Power != "3.5 kW" || got.Status != models.StatusCharging {
		t.Fatalf("expected pushed fields applied, got %+v", got)
	}
	if got.UID != "N/A" || got.Username != "Guest" {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", got)
	}

	got = s.Merge(models.StatusUpdate{UID: "X"})
	if got.UID != "X" || got.Power != "3.5 kW" || got.Status != models.StatusCharging {
		t.Fatalf("unexpected snapshot after second merge: %+v", got)
	}

	got = s.Merge(models.StatusUpdate{})
	if got != s.Read() || got.UID != "X" {
		t.Fatalf("empty merge must be a no-op, got %+v", got)
	}
	if s.Merges() != 3 {
		t.Fatalf("expected 3 merges, got %d", s.Merges())
	}
}

func TestFalsyValuesNeverOverwrite(t *testing.T) {
	s := NewSnapshotStore()
	s.Merge(models.ParseStatusUpdate([]byte(`{"uid":"A1","power":"7 kW","energy":"1.2 kWh"}`)))

	sequences := []string{
		`{"uid":"","power":null}`,
		`{"energy":0,"status":false}`,
		`{}`,
		`not json`,
		`{"uid":{"nested":true},"username":[1,2]}`,
	}
	for _, body := range sequences {
		s.Merge(models.ParseStatusUpdate([]byte(body)))
	}

	got := s.Read()
	if got.UID != "A1" || got.Power != "7 kW" || got.Energy != "1.2 kWh" {
		t.Fatalf("falsy pushes overwrote values: %+v", got)
	}
	if got.Status != models.StatusStandby || got.Username != "Guest" {
		t.Fatalf("falsy pushes overwrote defaults: %+v", got)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	s := NewSnapshotStore()
	snap := s.Read()
	snap.UID = "mutated"
	if s.Read().UID != "N/A" {
		t.Fatalf("store state changed through returned value")
	}
}

func TestConcurrentMergesAreNotTorn(t *testing.T) {
	s := NewSnapshotStore()
	updates := []models.StatusUpdate{
		{UID: "a", Username: "a", Power: "a", Energy: "a", Duration: "a", Status: "a"},
		{UID: "b", Username: "b", Power: "b", Energy: "b", Duration: "b", Status: "b"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		u := updates[i%2]
		go func() {
			defer wg.Done()
			s.Merge(u)
		}()
		go func() {
			defer wg.Done()
			snap := s.Read()
			if snap.UID == "N/A" {
				return
			}
			if snap.Username != snap.UID || snap.Power != snap.UID || snap.Status != snap.UID {
				t.Errorf("torn snapshot observed: %+v", snap)
			}
		}()
	}
	wg.Wait()
}
