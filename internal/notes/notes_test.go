package notes

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestCreate(t *testing.T) {
	c := NewCollection()
	c.now = fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	n := c.Create("buy milk")

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "buy milk", n.Content)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC), n.CreatedAt)
	assert.Equal(t, 1, c.Len())
}

func TestCreateUniqueIDs(t *testing.T) {
	c := NewCollection()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := c.Create("note")
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestListNewestFirst(t *testing.T) {
	c := NewCollection()
	c.now = fixedClock(time.Now())

	first := c.Create("first")
	second := c.Create("second")

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestListReturnsCopy(t *testing.T) {
	c := NewCollection()
	c.Create("original")

	list := c.List()
	list[0].Content = "mutated"

	got := c.List()
	assert.Equal(t, "original", got[0].Content)
}

func TestDelete(t *testing.T) {
	c := NewCollection()
	n1 := c.Create("one")
	n2 := c.Create("two")

	assert.True(t, c.Delete(n1.ID))

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, n2.ID, list[0].ID)

	_, ok := c.Get(n1.ID)
	assert.False(t, ok)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	c := NewCollection()
	c.Create("one")
	c.Create("two")

	assert.False(t, c.Delete("does-not-exist"))
	assert.Equal(t, 2, c.Len())
}

func TestSearch(t *testing.T) {
	c := NewCollection()
	c.Create("Comprar leite")
	c.Create("Reunião às 10h")
	c.Create("leite de aveia")
	c.Create("dois  espaços")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"empty query lists all", "", 4},
		{"whitespace is matched literally", "  ", 1},
		{"leading space is kept", " leite", 1},
		{"case insensitive", "LEITE", 2},
		{"accented", "reunião", 1},
		{"no match", "pão", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, c.Search(tt.query), tt.want)
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCollection()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			n := c.Create("note")
			c.Get(n.ID)
		}()
		go func() {
			defer wg.Done()
			c.List()
			c.Search("no")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, c.Len())
}
