package matchmaking

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cabot-server/ai"
	"cabot-server/config"
	"cabot-server/game"
	"cabot-server/matcherrors"
)

// Table is one running solo match: a human against an AI policy. The WebSocket read loop and the HTTP
// handlers reach the same match from different goroutines, so all access goes through Do.
type Table struct {
	ID         string
	PlayerName string
	AIName     string
	Created    time.Time

	mu    sync.Mutex
	match *game.Match
}

// Do runs fn with exclusive access to the match.
func (t *Table) Do(fn func(m *game.Match)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.match)
}

// Matchmaker creates solo matches and keeps the registry of live tables.
type Matchmaker struct {
	config *config.Config

	mu     sync.Mutex
	rng    *rand.Rand
	tables map[string]*Table
	now    func() time.Time
}

// NewMatchmaker creates a new Matchmaker. seed drives profile selection and every match's shuffles.
func NewMatchmaker(cfg *config.Config, seed int64) *Matchmaker {
	return &Matchmaker{
		config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
		tables: make(map[string]*Table),
		now:    time.Now,
	}
}

// ValidateName checks a display name against the configured length limit.
func (mm *Matchmaker) ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > mm.config.MaxNameLength {
		return fmt.Errorf("%w: must be between 1 and %d characters", matcherrors.ErrInvalidName, mm.config.MaxNameLength)
	}
	return nil
}

// Start creates a match for the named player against a randomly chosen AI profile.
func (mm *Matchmaker) Start(name string) (*Table, error) {
	if err := mm.ValidateName(name); err != nil {
		return nil, err
	}

	mm.mu.Lock()
	profile := mm.pickProfile()
	matchRng := rand.New(rand.NewSource(mm.rng.Int63()))
	mm.mu.Unlock()

	id := uuid.NewString()
	m := game.NewMatch(game.MatchOptions{
		ID:             id,
		Opponent:       ai.NewPolicy(profile),
		Session:        game.NewSession(game.Human),
		Rand:           matchRng,
		Now:            mm.now,
		RevealDuration: mm.config.RevealDuration(),
	})
	t := &Table{
		ID:         id,
		PlayerName: name,
		AIName:     profile.Name,
		Created:    mm.now(),
		match:      m,
	}

	mm.mu.Lock()
	mm.tables[id] = t
	total := len(mm.tables)
	mm.mu.Unlock()

	slog.Info("match created", "tag", "matchmaking", "match", id, "player", name, "ai", profile.Name, "tables", total)
	return t, nil
}

func (mm *Matchmaker) pickProfile() ai.Profile {
	if len(mm.config.AIProfiles) == 0 {
		return ai.Profile{Name: "AI"}
	}
	p := mm.config.AIProfiles[mm.rng.Intn(len(mm.config.AIProfiles))]
	return ai.Profile{Name: p.Name}
}

// Lookup returns the live table with the given id.
func (mm *Matchmaker) Lookup(id string) (*Table, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	t, ok := mm.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matcherrors.ErrMatchNotFound, id)
	}
	return t, nil
}

// Release drops a table from the registry. Unknown ids are ignored.
func (mm *Matchmaker) Release(id string) {
	mm.mu.Lock()
	_, ok := mm.tables[id]
	delete(mm.tables, id)
	total := len(mm.tables)
	mm.mu.Unlock()
	if ok {
		slog.Info("match released", "tag", "matchmaking", "match", id, "tables", total)
	}
}

// Count returns the number of live tables.
func (mm *Matchmaker) Count() int {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return len(mm.tables)
}
