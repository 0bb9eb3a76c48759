package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	lead := &Lead{
		Name:    "Maria Silva",
		Phone:   "+55 11 91234-5678",
		Email:   "maria@exemplo.com.br",
		Company: "Exemplo Ltda",
	}
	if err := s.CreateLead(ctx, lead); err != nil {
		t.Fatalf("CreateLead returned error: %v", err)
	}

	if lead.ID == 0 {
		t.Error("CreateLead did not assign an ID")
	}
	if lead.CreatedAt.IsZero() {
		t.Error("CreateLead did not assign a creation timestamp")
	}

	got, err := s.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead returned error: %v", err)
	}
	if got.Name != lead.Name || got.Phone != lead.Phone || got.Email != lead.Email || got.Company != lead.Company {
		t.Errorf("GetLead = %+v, expected fields from %+v", got, lead)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemory()

	_, err := s.GetLead(context.Background(), 42)
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("GetLead for unknown ID returned %v, expected ErrLeadNotFound", err)
	}
}

func TestMemoryStoreMonotonicIDs(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var previous int64
	for i := 0; i < 5; i++ {
		lead := &Lead{Name: "n", Phone: "p", Email: "e"}
		if err := s.CreateLead(ctx, lead); err != nil {
			t.Fatalf("CreateLead returned error: %v", err)
		}
		if lead.ID <= previous {
			t.Fatalf("lead ID %d is not greater than previous %d", lead.ID, previous)
		}
		previous = lead.ID
	}
}

func TestMemoryStoreConcurrentCreates(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	ids := make(chan int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lead := &Lead{Name: "n", Phone: "p", Email: "e"}
			if err := s.CreateLead(ctx, lead); err != nil {
				t.Errorf("CreateLead returned error: %v", err)
				return
			}
			ids <- lead.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate lead ID %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d unique IDs, got %d", workers, len(seen))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	lead := &Lead{Name: "Maria Silva", Phone: "p", Email: "e"}
	if err := s.CreateLead(ctx, lead); err != nil {
		t.Fatalf("CreateLead returned error: %v", err)
	}

	first, err := s.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead returned error: %v", err)
	}
	first.Name = "mutated"

	second, err := s.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead returned error: %v", err)
	}
	if second.Name != "Maria Silva" {
		t.Errorf("stored lead was mutated through a returned copy: %q", second.Name)
	}
}
