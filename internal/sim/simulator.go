// Package sim wires a generated level to the player economy and the
// opponents, and pumps them one tick at a time.
package sim

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"sentinel/internal/ai"
	"sentinel/internal/config"
	"sentinel/internal/events"
	"sentinel/internal/gameplay"
	"sentinel/internal/grid"
	"sentinel/internal/levelstore"
	"sentinel/internal/random"
	"sentinel/internal/terrain"
	"sentinel/internal/timemachine"
)

// VisibilityFunc builds the opponents' view of a freshly generated grid.
type VisibilityFunc func(g *grid.Grid) ai.Visibility

type options struct {
	logger *log.Logger
	store  levelstore.Store
}

type Option func(*options)

func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore serves the level from store, generating and saving it on a miss.
func WithStore(store levelstore.Store) Option {
	return func(o *options) { o.store = store }
}

// Simulator is one game of one level. It is not safe for concurrent use.
type Simulator struct {
	session   string
	level     config.Level
	grid      *grid.Grid
	queue     *events.Queue
	economy   *gameplay.Economy
	player    *gameplay.PlayerOperations
	opponents *ai.Opponents
	machine   *timemachine.TimeMachine
	logger    *log.Logger
	reported  bool
}

func New(cfg *config.Config, level int, visibility VisibilityFunc, opts ...Option) (*Simulator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if visibility == nil {
		return nil, errors.New("simulator needs a visibility")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	session := uuid.NewString()
	generator, err := terrain.NewGenerator(cfg.Levels, o.logger)
	if err != nil {
		return nil, err
	}
	var g *grid.Grid
	if o.store != nil {
		g, err = levelstore.NewCache(o.store, cfg.Levels, generator, o.logger).Grid(level)
	} else {
		g, err = generator.Generate(level)
	}
	if err != nil {
		return nil, err
	}
	vis := visibility(g)
	if vis == nil {
		return nil, errors.New("visibility func returned nil")
	}

	lv := cfg.Levels.ForLevel(level)
	rng := random.New(lv.Number)
	queue := events.NewQueue(session)
	economy := gameplay.NewEconomy(cfg.Simulation.StartingEnergy, queue)
	terrainOps := gameplay.NewTerrainOperations(g)
	player := gameplay.NewPlayerOperations(terrainOps, economy, queue, rng)

	opponents, err := ai.NewOpponents(ai.Deps{
		Grid:          g,
		Terrain:       terrainOps,
		Economy:       economy,
		Queue:         queue,
		RNG:           rng,
		Visibility:    vis,
		RotationSteps: lv.RotationSteps,
		Logger:        o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opponents: %w", err)
	}
	machine := timemachine.New(o.logger)
	if err := opponents.Register(machine,
		cfg.Simulation.AbsorbInterval.Duration(),
		lv.RotationInterval(),
		cfg.Simulation.DetectionInterval.Duration(),
	); err != nil {
		return nil, err
	}

	s := &Simulator{
		session:   session,
		level:     lv,
		grid:      g,
		queue:     queue,
		economy:   economy,
		player:    player,
		opponents: opponents,
		machine:   machine,
		logger:    o.logger,
	}
	if !player.EnterScene() {
		return nil, fmt.Errorf("level %d: cannot enter the start tile", level)
	}
	machine.Start()
	s.logger.Printf("session %s level %d: %d opponents, energy %d", session, lv.Number, len(g.Opponents()), economy.Energy())
	return s, nil
}

// Handle runs one tick at now and returns the events it produced, including
// any pushed by player operations since the previous tick. The scheduler
// stops once the game has ended.
func (s *Simulator) Handle(now time.Duration, ctx any) []events.Event {
	s.queue.SetClock(now)
	if !s.economy.Ended() {
		s.machine.Handle(now, ctx)
	}
	if s.economy.Ended() {
		s.machine.Stop()
		if !s.reported {
			s.reported = true
			s.logger.Printf("session %s ended at %v: %s with energy %d", s.session, now, s.economy.Outcome(), s.economy.Energy())
		}
	}
	return s.queue.Drain()
}

func (s *Simulator) Session() string                    { return s.session }
func (s *Simulator) Level() config.Level                { return s.level }
func (s *Simulator) Grid() *grid.Grid                   { return s.grid }
func (s *Simulator) Player() *gameplay.PlayerOperations { return s.player }
func (s *Simulator) Economy() *gameplay.Economy         { return s.economy }
func (s *Simulator) Opponents() *ai.Opponents           { return s.opponents }
func (s *Simulator) Outcome() events.Outcome            { return s.economy.Outcome() }
func (s *Simulator) Running() bool                      { return s.machine.Started() }

func (s *Simulator) Stop() { s.machine.Stop() }

// Start resumes a stopped game. A finished game stays stopped.
func (s *Simulator) Start() bool {
	if s.economy.Ended() {
		return false
	}
	s.machine.Start()
	return true
}
