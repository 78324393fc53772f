package notify

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one transient, dismissible toast.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Center collects user-facing notifications until the UI drains them.
// Retention is a small ring: old toasts fall off rather than pile up.
type Center struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

func NewCenter() *Center {
	return &Center{max: 50}
}

func (c *Center) Push(level Level, message string) Notification {
	n := Notification{
		ID:        ksuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, n)
	if len(c.items) > c.max {
		c.items = c.items[len(c.items)-c.max:]
	}
	return n
}

func (c *Center) Success(message string) { c.Push(LevelSuccess, message) }
func (c *Center) Error(message string)   { c.Push(LevelError, message) }
func (c *Center) Info(message string)    { c.Push(LevelInfo, message) }

// Drain hands back every pending notification and clears the queue.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil
	return out
}
