package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateParticipation_DuplicateRejectedByIndex(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := CreateParticipation(ctx, db, "42", "Bob", "Tacos", "http://x/1.png", now); err != nil {
		t.Fatalf("first CreateParticipation: %v", err)
	}

	_, err := CreateParticipation(ctx, db, "42", "Bobby", "Tacos", "http://x/2.png", now)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	total, err := CountParticipations(ctx, db, "Tacos")
	if err != nil {
		t.Fatalf("CountParticipations: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 row after duplicate insert, got %d", total)
	}

	// Same user, different dish is fine.
	if _, err := CreateParticipation(ctx, db, "42", "Bob", "Ramen", "http://x/3.png", now); err != nil {
		t.Fatalf("different dish: %v", err)
	}
}

func TestHasParticipation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ok, err := HasParticipation(ctx, db, "42", "Tacos")
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}

	if _, err := CreateParticipation(ctx, db, "42", "Bob", "Tacos", "http://x/1.png", time.Now().UTC()); err != nil {
		t.Fatalf("CreateParticipation: %v", err)
	}

	ok, err = HasParticipation(ctx, db, "42", "Tacos")
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}
}

func TestDeleteParticipations_CaseInsensitiveName_ExactDish(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []struct{ id, name, dish string }{
		{"1", "Bob", "Tacos"},
		{"2", "BOB", "Tacos"},
		{"3", "Bob", "tacos"}, // dish is case-sensitive, must survive
		{"4", "Alice", "Tacos"},
	}
	for _, s := range seed {
		if _, err := CreateParticipation(ctx, db, s.id, s.name, s.dish, "http://x/p.png", now); err != nil {
			t.Fatalf("seed %+v: %v", s, err)
		}
	}

	n, err := DeleteParticipations(ctx, db, "bob", "Tacos")
	if err != nil {
		t.Fatalf("DeleteParticipations: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", n)
	}

	// Zero matches is a zero-count success, not an error.
	n, err = DeleteParticipations(ctx, db, "nobody", "Tacos")
	if err != nil {
		t.Fatalf("DeleteParticipations zero match: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows deleted, got %d", n)
	}
}

func TestLeaderboard_SortedAndBounded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Alice: 3, Bob: 2, Carol: 1 (one row per dish to satisfy the index).
	seed := []struct{ id, name, dish string }{
		{"a", "Alice", "Tacos"}, {"a", "Alice", "Ramen"}, {"a", "Alice", "Pizza"},
		{"b", "Bob", "Tacos"}, {"b", "Bob", "Ramen"},
		{"c", "Carol", "Tacos"},
	}
	for _, s := range seed {
		if _, err := CreateParticipation(ctx, db, s.id, s.name, s.dish, "http://x/p.png", now); err != nil {
			t.Fatalf("seed %+v: %v", s, err)
		}
	}

	rows, err := Leaderboard(ctx, db, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserName != "Alice" || rows[0].Count != 3 {
		t.Fatalf("expected Alice/3 first, got %+v", rows[0])
	}
	if rows[1].UserName != "Bob" || rows[1].Count != 2 {
		t.Fatalf("expected Bob/2 second, got %+v", rows[1])
	}
}
