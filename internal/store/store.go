package store

import (
	"errors"
	"time"

	"github.com/calvinwijaya/counterpoint/internal/game"
	"github.com/google/uuid"
)

// ErrTableNotFound is returned for unknown table ids
var ErrTableNotFound = errors.New("table not found")

// Table is one game in progress together with the engine that drives it
type Table struct {
	ID        string       `json:"id"`
	Rules     game.Rules   `json:"rules"`
	State     game.State   `json:"game"`
	Engine    *game.Engine `json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewTable creates a table in setup with a fresh engine. A nil rng gives the
// engine a time seeded source.
func NewTable(rules game.Rules, rng game.Source, names []string) (Table, error) {
	engine, err := game.NewEngine(rng, rules)
	if err != nil {
		return Table{}, err
	}
	return Table{
		ID:     uuid.New().String(),
		Rules:  rules,
		State:  engine.NewGame(names),
		Engine: engine,
	}, nil
}

// Store defines the interface for table storage
type Store interface {
	// SaveTable adds or replaces a table and returns it as stored
	SaveTable(t Table) (Table, error)

	// GetTable retrieves a table by ID
	GetTable(id string) (Table, error)

	// UpdateTable runs fn on a table and saves the result. Calls for the same
	// table never overlap, so fn may use the table's engine.
	UpdateTable(id string, fn func(t *Table) error) (Table, error)

	// DeleteTable removes a table from the store
	DeleteTable(id string) error

	// ListTables returns all tables, oldest first
	ListTables() ([]Table, error)
}
