package apriori

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/itemset"
	"github.com/Hafizh1187/apriory/pkg/logging"
	"github.com/Hafizh1187/apriory/pkg/txset"
	"golang.org/x/sync/errgroup"
)

// FrequentItemset is an itemset whose support met the threshold.
type FrequentItemset struct {
	Items   itemset.Itemset
	Count   int
	Support float64
}

// LevelStats describes one level of the search.
type LevelStats struct {
	Level      int
	Candidates int
	Frequent   int
	Duration   time.Duration
}

// Frequent is the output of the miner: every frequent itemset, ordered by
// size and then canonically within each size.
type Frequent struct {
	Itemsets []FrequentItemset
	Levels   []LevelStats
	Total    int

	index map[string]int
}

// Lookup returns the frequent itemset equal to items. A Frequent returned by
// Miner.Mine is indexed already and safe for concurrent lookups.
func (f *Frequent) Lookup(items itemset.Itemset) (FrequentItemset, bool) {
	if f.index == nil {
		f.buildIndex()
	}
	i, ok := f.index[items.Key()]
	if !ok {
		return FrequentItemset{}, false
	}
	return f.Itemsets[i], true
}

// Len returns the number of frequent itemsets.
func (f *Frequent) Len() int {
	return len(f.Itemsets)
}

func (f *Frequent) buildIndex() {
	f.index = make(map[string]int, len(f.Itemsets))
	for i, fi := range f.Itemsets {
		f.index[fi.Items.Key()] = i
	}
}

// candidateBlock is how many candidates are reserved from the budget at once.
const candidateBlock = 1024

// Miner finds frequent itemsets level by level.
type Miner struct {
	set     *txset.Set
	counter *Counter
	opts    Options
}

// NewMiner validates opts and returns a Miner over set.
func NewMiner(set *txset.Set, opts Options) (*Miner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Miner{
		set:     set,
		counter: NewCounter(set),
		opts:    opts,
	}, nil
}

// Mine runs the level-wise search.
//
// Cancellation is observed between levels: a cancelled context aborts before
// the next level's candidates are generated and the partial result is
// discarded.
func (m *Miner) Mine(ctx context.Context) (*Frequent, error) {
	log := logctx.FromContext(ctx)
	out := &Frequent{Total: m.set.Len()}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	prev := m.levelOne()
	out.add(m.set, m.counter, prev)
	out.Levels = append(out.Levels, LevelStats{
		Level:      1,
		Candidates: m.set.NumItems(),
		Frequent:   len(prev.sets),
		Duration:   time.Since(start),
	})
	logging.LevelComplete(log, 1, time.Since(start)).
		Count("candidates", int64(m.set.NumItems())).
		Count("frequent", int64(len(prev.sets))).
		Log("level complete")

	for k := 2; len(prev.sets) > 0; k++ {
		if k > m.set.MaxLen() || k > MaxItemsetLength || (m.opts.MaxLength > 0 && k > m.opts.MaxLength) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		levelCtx := logctx.WithInt(ctx, "level", k)
		start := time.Now()

		next, stats, err := m.nextLevel(levelCtx, prev, k)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", k, err)
		}
		stats.Duration = time.Since(start)
		out.Levels = append(out.Levels, stats)
		out.add(m.set, m.counter, next)

		logging.LevelComplete(log, k, stats.Duration).
			Count("candidates", int64(stats.Candidates)).
			Count("frequent", int64(stats.Frequent)).
			Ratio("kept_pct", stats.Frequent, stats.Candidates).
			Log("level complete")

		prev = next
	}

	out.buildIndex()
	return out, nil
}

// level holds the frequent itemsets of one size as ascending ID slices,
// sorted lexicographically, with their counts.
type level struct {
	sets   [][]uint32
	counts []int
}

func (m *Miner) levelOne() level {
	var lv level
	for id := 0; id < m.set.NumItems(); id++ {
		count := m.set.ItemCount(uint32(id))
		if m.frequent(count) {
			lv.sets = append(lv.sets, []uint32{uint32(id)})
			lv.counts = append(lv.counts, count)
		}
	}
	return lv
}

func (m *Miner) frequent(count int) bool {
	return count > 0 && fraction(count, m.set.Len()) >= m.opts.MinSupport
}

func (m *Miner) nextLevel(ctx context.Context, prev level, k int) (level, LevelStats, error) {
	log := logctx.FromContext(ctx)
	stats := LevelStats{Level: k}

	perCandidate := uint64(k*4 + 32)
	var reserved uint64
	defer func() {
		if m.opts.Budget != nil && reserved > 0 {
			m.opts.Budget.Release(reserved)
		}
	}()
	reserve := func(n int) bool {
		if m.opts.Budget == nil {
			return true
		}
		bytes := uint64(n) * perCandidate
		if !m.opts.Budget.TryReserve(bytes) {
			return false
		}
		reserved += bytes
		return true
	}

	cands, err := generateCandidates(prev.sets, k, reserve)
	if err != nil {
		return level{}, stats, err
	}
	stats.Candidates = len(cands)
	log.Debug().Int("candidates", len(cands)).Msg("candidates generated")

	counts, err := m.countAll(cands)
	if err != nil {
		return level{}, stats, err
	}

	var next level
	for i, c := range cands {
		if m.frequent(counts[i]) {
			next.sets = append(next.sets, c)
			next.counts = append(next.counts, counts[i])
		}
	}
	stats.Frequent = len(next.sets)
	return next, stats, nil
}

// generateCandidates joins pairs of (k-1)-itemsets that share their first
// k-2 items and prunes every candidate with an infrequent (k-1)-subset.
// Because prev is sorted, the output is sorted too.
func generateCandidates(prev [][]uint32, k int, reserve func(n int) bool) ([][]uint32, error) {
	frequent := make(map[string]struct{}, len(prev))
	for _, s := range prev {
		frequent[idsKey(s)] = struct{}{}
	}

	var cands [][]uint32
	allowed := 0
	subset := make([]uint32, k-1)

	for i := 0; i < len(prev); i++ {
		for j := i + 1; j < len(prev); j++ {
			if !slices.Equal(prev[i][:k-2], prev[j][:k-2]) {
				break
			}

			cand := make([]uint32, k)
			copy(cand, prev[i])
			cand[k-1] = prev[j][k-2]

			// Dropping either of the last two items yields prev[i] or
			// prev[j], which are frequent already.
			if !allSubsetsFrequent(cand, subset, frequent) {
				continue
			}

			if len(cands) == allowed {
				if !reserve(candidateBlock) {
					return nil, fmt.Errorf("%w: %d candidates of size %d", ErrBudgetExceeded, len(cands), k)
				}
				allowed += candidateBlock
			}
			cands = append(cands, cand)
		}
	}
	return cands, nil
}

func allSubsetsFrequent(cand, buf []uint32, frequent map[string]struct{}) bool {
	k := len(cand)
	for drop := 0; drop < k-2; drop++ {
		buf = buf[:0]
		buf = append(buf, cand[:drop]...)
		buf = append(buf, cand[drop+1:]...)
		if _, ok := frequent[idsKey(buf)]; !ok {
			return false
		}
	}
	return true
}

// countAll counts support for every candidate. Workers own disjoint index
// ranges of counts, so no locking is needed.
func (m *Miner) countAll(cands [][]uint32) ([]int, error) {
	counts := make([]int, len(cands))
	workers := min(m.opts.Workers, len(cands))
	if workers <= 1 {
		for i, c := range cands {
			counts[i] = m.counter.count(c)
		}
		return counts, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (len(cands) + workers - 1) / workers
	for lo := 0; lo < len(cands); lo += chunk {
		hi := min(lo+chunk, len(cands))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				counts[i] = m.counter.count(cands[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count support: %w", err)
	}
	return counts, nil
}

func (f *Frequent) add(set *txset.Set, c *Counter, lv level) {
	for i, ids := range lv.sets {
		f.Itemsets = append(f.Itemsets, FrequentItemset{
			Items:   set.Decode(ids),
			Count:   lv.counts[i],
			Support: fraction(lv.counts[i], c.Total()),
		})
	}
	f.index = nil
}

func idsKey(ids []uint32) string {
	buf := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[4*i:], id)
	}
	return string(buf)
}
