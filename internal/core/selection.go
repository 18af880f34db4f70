package core

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"quizbank/pkg/domain"
)

// SelectResult reports how many targets were kept and how many were
// silently dropped as invalid.
type SelectResult struct {
	Selected int
	Dropped  int
}

// Selection returns the current selection in order. It may still name
// records deleted since it was made.
func (b *Bank) Selection() []domain.RecordID {
	return append([]domain.RecordID(nil), b.selection...)
}

// ClearSelection empties the selection so exports use the whole store.
func (b *Bank) ClearSelection() { b.selection = nil }

// SelectIDs replaces the selection with ids, in the given order and with
// duplicates kept. Identities not in the store are dropped. When nothing
// survives the selection is cleared and ErrEmptySelection is returned.
func (b *Bank) SelectIDs(ids []domain.RecordID) (SelectResult, error) {
	live := b.positions()
	sel := make([]domain.RecordID, 0, len(ids))
	for _, id := range ids {
		if _, ok := live[id]; ok {
			sel = append(sel, id)
		}
	}
	return b.commitSelection("ids", sel, len(ids)-len(sel))
}

// SelectPositions resolves zero-based positions against view and replaces
// the selection with the resulting identities. Positions outside view, or
// naming records no longer in the store, are dropped.
func (b *Bank) SelectPositions(view domain.View, positions []int) (SelectResult, error) {
	live := b.positions()
	sel := make([]domain.RecordID, 0, len(positions))
	for _, pos := range positions {
		e, ok := view.At(pos)
		if !ok {
			continue
		}
		if _, ok := live[e.ID]; ok {
			sel = append(sel, e.ID)
		}
	}
	return b.commitSelection("positions", sel, len(positions)-len(sel))
}

// SelectRandom replaces the selection with min(n, Len()) distinct records
// drawn uniformly without replacement, in draw order. n <= 0 clears the
// selection.
func (b *Bank) SelectRandom(n int) (SelectResult, error) {
	k := min(max(n, 0), len(b.entries))
	idx := make([]int, len(b.entries))
	for i := range idx {
		idx[i] = i
	}
	sel := make([]domain.RecordID, 0, k)
	for i := 0; i < k; i++ {
		j := i + b.intN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		sel = append(sel, b.entries[idx[i]].ID)
	}
	b.selection = sel
	b.logger.Debug("random selection", zap.Int("requested", n), zap.Int("selected", k))
	return SelectResult{Selected: k}, nil
}

func (b *Bank) commitSelection(kind string, sel []domain.RecordID, dropped int) (SelectResult, error) {
	res := SelectResult{Selected: len(sel), Dropped: dropped}
	if len(sel) == 0 {
		b.selection = nil
		b.logger.Debug("selection resolved empty", zap.String("kind", kind), zap.Int("dropped", dropped))
		return res, domain.ErrEmptySelection
	}
	b.selection = sel
	b.logger.Debug("selection set", zap.String("kind", kind), zap.Int("selected", res.Selected), zap.Int("dropped", dropped))
	return res, nil
}

func (b *Bank) intN(n int) int {
	if b.rng != nil {
		return b.rng.IntN(n)
	}
	return rand.IntN(n)
}
