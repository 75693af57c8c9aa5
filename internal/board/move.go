package board

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
)

// Move is a finished drag: put ApplicationID into column To at Index.
type Move struct {
	ApplicationID uint
	To            models.Status
	Index         int
}

// Pending is a speculative move waiting for the server. Updates covers the
// target column only; the source column is not re-sent.
type Pending struct {
	Token   uuid.UUID
	JobID   uint
	Status  models.Status
	Updates []dtos.KanbanUpdate
}

// Move applies m in place. A cross-column move clears the item's status
// until Confirm stamps the column's status onto it. Index is clamped to the
// target column bounds.
func (b *Board) Move(m Move) (Pending, error) {
	target := b.Column(m.To)
	if target == nil {
		return Pending{}, fmt.Errorf("move to %q: %w", m.To, ErrUnknownStatus)
	}
	ci, pos, ok := b.Find(m.ApplicationID)
	if !ok {
		return Pending{}, fmt.Errorf("move %d: %w", m.ApplicationID, ErrApplicationNotFound)
	}

	src := &b.Columns[ci]
	item := src.Items[pos]
	src.Items = append(src.Items[:pos:pos], src.Items[pos+1:]...)

	if src.Status != target.Status {
		item.Status = ""
	}
	idx := m.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(target.Items) {
		idx = len(target.Items)
	}
	target.Items = insertAt(target.Items, idx, item)

	return Pending{
		Token:   uuid.New(),
		JobID:   b.JobID,
		Status:  target.Status,
		Updates: columnUpdates(*target),
	}, nil
}

// Confirm stamps the acknowledged status and order onto local items. Items
// that have since left the column (or the board) are skipped so a late ack
// never contradicts the column an item sits in.
func (b *Board) Confirm(p Pending) {
	for _, u := range p.Updates {
		ci, pos, ok := b.Find(u.ApplicationID)
		if !ok || b.Columns[ci].Status != u.NewStatus {
			continue
		}
		item := &b.Columns[ci].Items[pos]
		item.Status = u.NewStatus
		item.KanbanOrder = u.NewOrder
	}
}

func columnUpdates(c Column) []dtos.KanbanUpdate {
	updates := make([]dtos.KanbanUpdate, len(c.Items))
	for i, a := range c.Items {
		updates[i] = dtos.KanbanUpdate{
			ApplicationID: a.ID,
			NewStatus:     c.Status,
			NewOrder:      i,
		}
	}
	return updates
}

func insertAt(items []models.Application, idx int, item models.Application) []models.Application {
	out := make([]models.Application, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, item)
	return append(out, items[idx:]...)
}
