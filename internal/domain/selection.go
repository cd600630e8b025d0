package domain

import (
	"math/rand"
	"sync"
	"time"
)

// Picker is the selection engine. It owns its randomness source so tests can
// seed it deterministically. Draws are serialized internally: the command
// loop and the scheduler share one Picker, and *rand.Rand is not safe for
// concurrent use.
type Picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPicker builds a Picker from the given source; a nil source means a
// time-seeded one.
func NewPicker(src rand.Source) *Picker {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Picker{rnd: rand.New(src)}
}

// Pick draws one victim from the pool. With an empty privileged subset the
// draw is uniform and the category is CategoryVictim. With a non-empty one,
// a Bernoulli trial with the given bias decides between the privileged subset
// (CategoryOwner) and the rest of the pool; if the rest is empty the
// privileged subset wins regardless of the trial.
//
// The pool must be non-empty. Pick performs no writes; consuming the limit
// slot is the caller's job, before the draw.
func (p *Picker) Pick(pool []int64, privileged map[int64]bool, bias float64) (int64, Category) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(privileged) == 0 {
		return pool[p.rnd.Intn(len(pool))], CategoryVictim
	}

	var priv, rest []int64
	for _, id := range pool {
		if privileged[id] {
			priv = append(priv, id)
		} else {
			rest = append(rest, id)
		}
	}
	if len(priv) == 0 {
		// privileged identity excluded or absent from the pool
		return rest[p.rnd.Intn(len(rest))], CategoryVictim
	}
	if len(rest) == 0 {
		return priv[p.rnd.Intn(len(priv))], CategoryOwner
	}
	if p.rnd.Float64() < bias {
		return priv[p.rnd.Intn(len(priv))], CategoryOwner
	}
	return rest[p.rnd.Intn(len(rest))], CategoryVictim
}

// PickPhrase draws one template from a non-empty list.
func (p *Picker) PickPhrase(phrases []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return phrases[p.rnd.Intn(len(phrases))]
}

// EffectiveBias resolves the owner-selection probability for a chat and pool.
// Auto mode gives the owner uniform odds (1/|pool|) when present, zero when
// excluded or absent. Explicit mode uses the stored probability with the
// (0,1) normalization from ExplicitBias.
func EffectiveBias(c *ChatSettings, pool []int64, privileged map[int64]bool) float64 {
	switch c.BiasMode {
	case BiasExplicit:
		return c.ExplicitBias()
	default:
		if len(pool) == 0 {
			return 0
		}
		for _, id := range pool {
			if privileged[id] {
				return 1 / float64(len(pool))
			}
		}
		return 0
	}
}
