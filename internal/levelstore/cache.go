package levelstore

import (
	"fmt"
	"io"
	"log"
	"sync"

	"sentinel/internal/config"
	"sentinel/internal/grid"
)

// Generator produces the grid of a level.
type Generator interface {
	Generate(level int) (*grid.Grid, error)
}

// Cache serves grids from a Store and falls back to a Generator on a miss.
// Grids already served stay decoded in memory. Every call returns a grid the
// caller owns. Safe for concurrent use.
type Cache struct {
	store     Store
	levels    config.LevelsConfig
	generator Generator
	logger    *log.Logger

	mu  sync.Mutex
	hot map[Key]*grid.Grid
}

func NewCache(store Store, levels config.LevelsConfig, generator Generator, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cache{
		store:     store,
		levels:    levels,
		generator: generator,
		logger:    logger,
		hot:       make(map[Key]*grid.Grid),
	}
}

// Grid returns level, generating and storing it if needed. A failed save is
// logged and does not fail the call.
func (c *Cache) Grid(level int) (*grid.Grid, error) {
	key, err := KeyFor(c.levels, level)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.hot[key]; ok {
		return g.Clone(), nil
	}

	snap, ok, err := c.store.Load(key)
	if err != nil {
		c.logger.Printf("level store load %v: %v", key, err)
	}
	if ok {
		g, err := grid.FromSnapshot(snap)
		if err == nil {
			c.hot[key] = g
			return g.Clone(), nil
		}
		c.logger.Printf("level store snapshot %v unusable: %v", key, err)
	}

	c.logger.Printf("level store miss %v", key)
	g, err := c.generator.Generate(level)
	if err != nil {
		return nil, fmt.Errorf("generate level %d: %w", level, err)
	}
	if err := c.store.Save(key, g.Snapshot()); err != nil {
		c.logger.Printf("level store save %v: %v", key, err)
	}
	c.hot[key] = g
	return g.Clone(), nil
}
