package seeds

import "testing"

func TestLoadResourceSeeds(t *testing.T) {
	s, err := LoadResourceSeeds("resources.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Instructors) != 3 || len(s.RoomTypes) != 3 || len(s.Rooms) != 4 {
		t.Fatalf("unexpected counts: %d/%d/%d", len(s.Instructors), len(s.RoomTypes), len(s.Rooms))
	}

	types := map[string]bool{}
	for _, rt := range s.RoomTypes {
		types[rt.ID.String()] = true
	}
	for _, r := range s.Rooms {
		if !types[r.RoomTypeID.String()] {
			t.Errorf("room %s refers to unknown room type %s", r.Name, r.RoomTypeID)
		}
	}
}

func TestLoadResourceSeedsMissingFile(t *testing.T) {
	if _, err := LoadResourceSeeds("does-not-exist.json"); err == nil {
		t.Fatal("expected error")
	}
}
