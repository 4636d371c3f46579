package leveling

import (
	"fmt"
	"math/rand"
	"sync"

	"antigravity/focus/internal/models"
)

// Tiers is the ordered cultivation ladder. Rank advancement draws a tier
// uniformly from this table, so a draw can land below the current tier;
// ranks are not monotonic.
var Tiers = []string{
	"炼气期", "筑基期", "金丹期",
	"元婴期", "化神期", "炼虚期",
	"合体期", "大乘期", "渡劫期",
	"人仙境", "真仙境", "玄仙境",
	"金仙境", "太乙境", "大罗境",
	"道祖境", "混元无极", "创世神",
}

const (
	// MinAdvanceSeconds is the smallest experience gain eligible for a
	// rank-advancement draw.
	MinAdvanceSeconds = 10
	// AdvanceChancePercent is the probability, out of 100, that an eligible
	// completion advances the rank.
	AdvanceChancePercent = 33
	// MaxStage is the highest sub-stage within a tier.
	MaxStage = 9
)

// Outcome is the result of applying a completed task to a level record.
// ExpGain is always granted; NewRank is set only when LeveledUp is true.
type Outcome struct {
	ExpGain   int64
	LeveledUp bool
	NewRank   string
}

// Engine computes experience grants and probabilistic rank advancement.
// The random source is process-wide and mutex-guarded so concurrent
// completions draw independently without corrupting its state.
type Engine struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewEngine seeds the engine's random source; production wiring passes a
// time-derived seed, tests pass a fixed one.
func NewEngine(seed int64) *Engine {
	return &Engine{rnd: rand.New(rand.NewSource(seed))}
}

// NewEngineWithSource builds an engine over an explicit source, for tests
// that need full control of the draws.
func NewEngineWithSource(src rand.Source) *Engine {
	return &Engine{rnd: rand.New(src)}
}

// Apply computes the leveling outcome for a completed task. Experience
// always increases by expGain; the rank is replaced outright when the
// advancement draw succeeds. Persistence is the caller's concern.
func (e *Engine) Apply(expGain int64) Outcome {
	out := Outcome{ExpGain: expGain}
	if expGain < MinAdvanceSeconds {
		return out
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rnd.Intn(100) < AdvanceChancePercent {
		tier := Tiers[e.rnd.Intn(len(Tiers))]
		stage := e.rnd.Intn(MaxStage) + 1
		out.LeveledUp = true
		out.NewRank = FormatRank(tier, stage)
	}
	return out
}

// FormatRank renders the two-part rank label for a tier and stage.
func FormatRank(tier string, stage int) string {
	return fmt.Sprintf("%s - %d层", tier, stage)
}

// NewDefaultLevel is the record created on a user's first completion.
func NewDefaultLevel(ownerID uint) *models.UserLevel {
	return &models.UserLevel{
		OwnerID:         ownerID,
		TotalExperience: 0,
		CultivationRank: models.DefaultRank,
	}
}
