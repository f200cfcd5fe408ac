package memory

import (
	"context"
	"testing"
	"time"

	"costmanager/internal/core"
)

func TestMemoryStoreAddAndList(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return at })

	c, err := s.AddCost(context.Background(), core.NewCost{Sum: 100, Currency: core.USD, Category: "Food", Description: "groceries"})
	if err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if c.ID == "" || !c.Date.Equal(at) {
		t.Fatalf("unexpected generated fields: %+v", c)
	}

	all, err := s.GetAllCosts(context.Background())
	if err != nil || len(all) != 1 || all[0] != c {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}

	// Returned slice is a copy.
	all[0].Sum = 1
	again, _ := s.GetAllCosts(context.Background())
	if again[0].Sum != 100 {
		t.Fatalf("store mutated through returned slice")
	}
}

func TestMemoryStoreUniqueIDs(t *testing.T) {
	s := New()
	seen := map[string]struct{}{}
	for i := 0; i < 500; i++ {
		c, err := s.AddCost(context.Background(), core.NewCost{Sum: 1, Currency: core.EUR, Category: "c", Description: "d"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, dup := seen[c.ID]; dup {
			t.Fatalf("duplicate id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
}
