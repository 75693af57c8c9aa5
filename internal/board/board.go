// Package board is the client-side kanban for one job: it projects the
// application list into status columns, applies drag moves locally and syncs
// the touched column back to the server.
package board

import (
	"errors"
	"fmt"
	"sort"

	"github.com/justsurfingit/hiring-board/internal/models"
)

var (
	ErrUnknownStatus        = errors.New("unknown status")
	ErrDuplicateApplication = errors.New("duplicate application")
	ErrForeignApplication   = errors.New("application belongs to another job")
	ErrApplicationNotFound  = errors.New("application not on board")
)

// Column holds the applications of one status in display order.
type Column struct {
	Status models.Status
	Items  []models.Application
}

func (c Column) indexOf(id uint) int {
	for i, a := range c.Items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Board is one column per status, in models.Statuses order.
type Board struct {
	JobID   uint
	Columns []Column
}

// Empty returns a board with every column present and no items.
func Empty(jobID uint) *Board {
	b := &Board{JobID: jobID, Columns: make([]Column, len(models.Statuses))}
	for i, s := range models.Statuses {
		b.Columns[i] = Column{Status: s, Items: []models.Application{}}
	}
	return b
}

// Project partitions apps into columns sorted by KanbanOrder, ties by ID.
// The input slice is not modified.
func Project(jobID uint, apps []models.Application) (*Board, error) {
	b := Empty(jobID)
	seen := make(map[uint]struct{}, len(apps))
	for _, a := range apps {
		if a.JobID != jobID {
			return nil, fmt.Errorf("application %d (job %d): %w", a.ID, a.JobID, ErrForeignApplication)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("application %d: %w", a.ID, ErrDuplicateApplication)
		}
		seen[a.ID] = struct{}{}

		idx := a.Status.Index()
		if idx < 0 {
			return nil, fmt.Errorf("application %d has status %q: %w", a.ID, a.Status, ErrUnknownStatus)
		}
		b.Columns[idx].Items = append(b.Columns[idx].Items, a)
	}
	for i := range b.Columns {
		items := b.Columns[i].Items
		sort.SliceStable(items, func(x, y int) bool {
			if items[x].KanbanOrder != items[y].KanbanOrder {
				return items[x].KanbanOrder < items[y].KanbanOrder
			}
			return items[x].ID < items[y].ID
		})
	}
	return b, nil
}

// Column returns the column for status, or nil.
func (b *Board) Column(status models.Status) *Column {
	idx := status.Index()
	if idx < 0 || idx >= len(b.Columns) {
		return nil
	}
	return &b.Columns[idx]
}

// Find reports the column index and position of an application.
func (b *Board) Find(id uint) (col, pos int, ok bool) {
	for ci, c := range b.Columns {
		if p := c.indexOf(id); p >= 0 {
			return ci, p, true
		}
	}
	return -1, -1, false
}

// Count is the number of applications across all columns.
func (b *Board) Count() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Items)
	}
	return n
}

// Clone deep-copies the board so speculative edits can be discarded.
func (b *Board) Clone() *Board {
	out := &Board{JobID: b.JobID, Columns: make([]Column, len(b.Columns))}
	for i, c := range b.Columns {
		items := make([]models.Application, len(c.Items))
		copy(items, c.Items)
		out.Columns[i] = Column{Status: c.Status, Items: items}
	}
	return out
}
