package notes

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Note is an immutable submitted note. Only deletion changes the collection.
type Note struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

// Collection holds notes in memory, newest first.
type Collection struct {
	mu    sync.RWMutex
	notes []Note
	now   func() time.Time
}

func NewCollection() *Collection {
	return &Collection{now: time.Now}
}

// Create stores a new note and returns it.
func (c *Collection) Create(content string) Note {
	n := Note{
		ID:        uuid.NewString(),
		CreatedAt: c.now(),
		Content:   content,
	}

	c.mu.Lock()
	c.notes = append([]Note{n}, c.notes...)
	c.mu.Unlock()

	log.Printf("Notes: created %s (%d chars)", n.ID, len(content))
	return n
}

// Delete removes the note with the given id. Unknown ids are a no-op.
func (c *Collection) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notes {
		if n.ID == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			log.Printf("Notes: deleted %s", id)
			return true
		}
	}
	return false
}

func (c *Collection) Get(id string) (Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, n := range c.notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// List returns a copy of all notes, newest first.
func (c *Collection) List() []Note {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// Search returns the notes whose content contains query, ignoring case.
// The query is used as typed, spaces included. An empty query matches
// everything.
func (c *Collection) Search(query string) []Note {
	query = strings.ToLower(query)
	if query == "" {
		return c.List()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Note
	for _, n := range c.notes {
		if strings.Contains(strings.ToLower(n.Content), query) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notes)
}
