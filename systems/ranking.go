package systems

import (
	"math/rand"

	"github.com/pthm-cable/planisuss/components"
	"github.com/pthm-cable/planisuss/config"
)

// Mover is the read view of a lone animal or a group that ranking needs.
// Group movers report mean energy and mean attitude over their members.
type Mover struct {
	Kind      components.Kind
	Pos       components.Coords
	Energy    float64
	MaxEnergy float64
	Attitude  float64
	Size      int
	Group     bool
	Radius    int                 // awareness radius
	History   *components.History // groups only
	Escape    *components.Escape  // herbivore individuals only; updated in place
}

// RankParams bundles the weights for one species.
type RankParams struct {
	Weights   *config.RankingConfig
	MaxGrowth int
}

// Candidate is a reachable destination and its desirability.
type Candidate struct {
	Coords components.Coords
	Score  float64
}

// Ranking is the scored set of one-step destinations, in row-major order.
type Ranking struct {
	Candidates []Candidate
	Stay       components.Coords
	Tolerance  float64 // population the mover accepted this call
}

// Score returns the score of c and whether c is a candidate.
func (r Ranking) Score(c components.Coords) (float64, bool) {
	for _, cand := range r.Candidates {
		if cand.Coords == c {
			return cand.Score, true
		}
	}
	return 0, false
}

// Best returns the highest scoring candidate. Staying wins ties, other ties
// go to the first candidate in row-major order.
func (r Ranking) Best() Candidate {
	best := Candidate{Coords: r.Stay}
	found := false
	for _, cand := range r.Candidates {
		if cand.Coords == r.Stay {
			if !found || cand.Score >= best.Score {
				best = cand
				found = true
			}
			continue
		}
		if !found || cand.Score > best.Score {
			best = cand
			found = true
		}
	}
	return best
}

// RankMoves scores every land cell one step from the mover, including its own.
// All random draws go through rng in a fixed order: the tolerance jitter, then
// one coin flip per equal-population neighbour in row-major order.
func RankMoves(m *Mover, grid *Grid, p RankParams, rng *rand.Rand) Ranking {
	w := p.Weights
	var rk Ranking
	rk.Stay = m.Pos

	index := make(map[components.Coords]int, 9)
	for _, cell := range grid.Neighborhood(m.Pos, 1, true) {
		if !cell.IsLand() {
			continue
		}
		index[cell.Coords] = len(rk.Candidates)
		rk.Candidates = append(rk.Candidates, Candidate{Coords: cell.Coords})
	}
	if _, ok := index[m.Pos]; !ok {
		// A mover always stands on land; keep stay available even if the
		// caller built an inconsistent view.
		index[m.Pos] = len(rk.Candidates)
		rk.Candidates = append(rk.Candidates, Candidate{Coords: m.Pos})
	}
	add := func(c components.Coords, v float64) {
		if i, ok := index[c]; ok {
			rk.Candidates[i].Score += v
		}
	}

	spread := 1
	if m.Group {
		spread = 2
	}
	spread = min(spread, len(w.RingDecay)-1)

	aware := grid.Neighborhood(m.Pos, max(m.Radius, 1), true)

	// Threat and prey are sensed over the awareness window and felt, decayed,
	// on the reachable candidates.
	var threat components.Coords
	threatPenalty := 0.0
	hunger := 0.0
	if m.MaxEnergy > 0 {
		hunger = 1.5 - m.Energy/m.MaxEnergy
	}
	for _, cell := range aware {
		if !cell.IsLand() {
			continue
		}
		if n := len(cell.Carnivores); n > 0 && m.Kind == components.KindHerbivore && w.DangerWeight > 0 {
			penalty := float64(n) * w.DangerWeight
			propagate(rk.Candidates, cell.Coords, -penalty, w.RingDecay, spread)
			if cell.Coords != m.Pos && penalty > threatPenalty {
				threatPenalty = penalty
				threat = cell.Coords
			}
		}
		if n := len(cell.Herbivores); n > 0 && m.Kind == components.KindCarnivore && w.PreyWeight > 0 {
			propagate(rk.Candidates, cell.Coords, float64(n)*w.PreyWeight*hunger, w.RingDecay, spread)
		}
	}

	// Conspecifics: the smaller population is drawn to the larger one while the
	// combined crowd stays tolerable; beyond that a crowded cell repels.
	coef := w.ToleranceIndividual
	if m.Group {
		coef = w.ToleranceGroup
	}
	rk.Tolerance = m.Attitude*coef + (rng.Float64()*2-1)*w.ToleranceJitter
	n0 := max(grid.Cell(m.Pos).Count(m.Kind), m.Size)
	attract := w.SocialWeight * m.Attitude
	for i := range rk.Candidates {
		cand := &rk.Candidates[i]
		if cand.Coords == m.Pos {
			continue
		}
		nc := grid.Cell(cand.Coords).Count(m.Kind)
		if nc == 0 {
			continue
		}
		if float64(nc+n0) > rk.Tolerance {
			cand.Score -= w.RepulsionWeight * (1.5 - m.Attitude)
			continue
		}
		switch {
		case nc > n0:
			cand.Score += attract
		case nc == n0:
			if rng.Intn(2) == 0 {
				cand.Score += attract
			} else {
				add(m.Pos, attract)
			}
		}
	}

	for i := range rk.Candidates {
		cell := grid.Cell(rk.Candidates[i].Coords)
		rk.Candidates[i].Score += float64(cell.Vegetation.Density) * w.VegetationWeight
	}

	// Staying: herbivores rest when tired or well fed, carnivores get restless
	// as they starve.
	ratio := 0.0
	if m.MaxEnergy > 0 {
		ratio = m.Energy / m.MaxEnergy
	}
	switch m.Kind {
	case components.KindHerbivore:
		stay := w.StayEnergyWeight * (1 - ratio)
		if p.MaxGrowth > 0 {
			stay += float64(grid.Cell(m.Pos).Vegetation.Density) / float64(p.MaxGrowth) * w.StayVegetationWeight
		}
		add(m.Pos, stay)
	case components.KindCarnivore:
		add(m.Pos, w.StayEnergyWeight*(ratio-0.5))
	}

	if m.Escape != nil {
		if threatPenalty > 0 {
			m.Escape.Dir = components.Away(m.Pos, threat)
			m.Escape.Intensity = 1
		}
		if m.Escape.Intensity > w.EscapeThreshold && !m.Escape.Dir.IsZero() {
			add(m.Pos.Add(m.Escape.Dir), w.EscapeWeight*m.Escape.Intensity)
		}
		m.Escape.Intensity *= w.EscapeDecay
	}

	if m.History != nil && w.BacktrackPenalty != 0 {
		for i := range rk.Candidates {
			c := rk.Candidates[i].Coords
			if c != m.Pos && m.History.Contains(c) {
				rk.Candidates[i].Score -= w.BacktrackPenalty
			}
		}
	}

	return rk
}

// propagate adds value to every candidate within spread rings of source,
// scaled by the ring decay.
func propagate(cands []Candidate, source components.Coords, value float64, decay []float64, spread int) {
	for i := range cands {
		d := cands[i].Coords.Chebyshev(source)
		if d <= spread && d < len(decay) {
			cands[i].Score += value * decay[d]
		}
	}
}
