package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/housecup/internal/domain/model"
)

// populate fills a store with a roster sized like a large school.
func populate(b *testing.B, s Store, houses, players, events int) {
	b.Helper()
	ctx := context.Background()
	if _, err := s.PutCategory(ctx, model.Category{ID: "c", Label: "All"}); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < houses; i++ {
		if _, err := s.PutHouse(ctx, model.House{ID: fmt.Sprintf("h%d", i), Name: fmt.Sprintf("House %d", i)}); err != nil {
			b.Fatal(err)
		}
	}
	for i := 0; i < players; i++ {
		if _, err := s.PutPlayer(ctx, model.Player{ID: fmt.Sprintf("p%d", i), Name: "x", HouseID: fmt.Sprintf("h%d", i%houses), CategoryID: "c"}); err != nil {
			b.Fatal(err)
		}
	}
	for i := 0; i < events; i++ {
		if _, err := s.PutEvent(ctx, model.Event{ID: fmt.Sprintf("e%d", i), Name: "x", Type: model.EventIndividual, CategoryID: "c", Schedule: model.ScoringSchedule{1: 3, 2: 2, 3: 1}}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryStore_Snapshot(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()
	populate(b, store, 8, 2000, 200)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Snapshot(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryStore_PutPlayer(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()
	populate(b, store, 8, 0, 0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := model.Player{ID: fmt.Sprintf("p%d", i), Name: "x", HouseID: fmt.Sprintf("h%d", i%8), CategoryID: "c"}
		if _, err := store.PutPlayer(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSQLiteStore_PutPlayer(b *testing.B) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, b.TempDir()+"/bench.db")
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	populate(b, store, 8, 200, 20)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := model.Player{ID: fmt.Sprintf("q%d", i), Name: "x", HouseID: fmt.Sprintf("h%d", i%8), CategoryID: "c"}
		if _, err := store.PutPlayer(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}
