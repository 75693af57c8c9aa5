package services

import (
	"sync"
	"time"

	"github.com/justsurfingit/hiring-board/internal/dtos"
)

const subscriberBuffer = 64

// NotificationHub fans pipeline events out to stream subscribers. Each event
// belongs to a job; a subscriber either follows one job's board or, with job
// 0, every job. A bounded backlog lets reconnecting boards replay what they
// missed by sequence number.
type NotificationHub struct {
	mu      sync.Mutex
	seq     int64
	backlog int
	recent  []dtos.Notification
	streams map[*stream]struct{}
	buffer  int

	// OnSubscribersChanged is called with the open stream count.
	OnSubscribersChanged func(n int)
}

type stream struct {
	jobID uint
	ch    chan dtos.Notification
}

func (s *stream) wants(n dtos.Notification) bool {
	return s.jobID == 0 || s.jobID == n.JobID
}

func NewNotificationHub(backlog int) *NotificationHub {
	if backlog < 1 {
		backlog = 1
	}
	return &NotificationHub{
		backlog: backlog,
		buffer:  subscriberBuffer,
		streams: make(map[*stream]struct{}),
	}
}

// Publish stamps the next sequence number on an event of jobID and hands it
// to every stream following that job. A stream that cannot keep up is
// closed; its board reconnects and replays from its last sequence.
func (h *NotificationHub) Publish(jobID uint, event string, payload any) dtos.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	n := dtos.Notification{
		Seq:       h.seq,
		JobID:     jobID,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	h.recent = append(h.recent, n)
	if over := len(h.recent) - h.backlog; over > 0 {
		h.recent = append(h.recent[:0:0], h.recent[over:]...)
	}

	closed := false
	for s := range h.streams {
		if !s.wants(n) {
			continue
		}
		select {
		case s.ch <- n:
		default:
			h.closeLocked(s)
			closed = true
		}
	}
	if closed {
		h.countChangedLocked()
	}
	return n
}

// Subscribe opens a stream for jobID (0 for all jobs). It returns the
// backlogged events after fromSeq, the live channel and a cancel func that
// may be called more than once.
func (h *NotificationHub) Subscribe(jobID uint, fromSeq int64) ([]dtos.Notification, <-chan dtos.Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &stream{jobID: jobID, ch: make(chan dtos.Notification, h.buffer)}
	replay := make([]dtos.Notification, 0)
	for _, n := range h.recent {
		if n.Seq > fromSeq && s.wants(n) {
			replay = append(replay, n)
		}
	}
	h.streams[s] = struct{}{}
	h.countChangedLocked()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, open := h.streams[s]; open {
			h.closeLocked(s)
			h.countChangedLocked()
		}
	}
	return replay, s.ch, cancel
}

func (h *NotificationHub) closeLocked(s *stream) {
	close(s.ch)
	delete(h.streams, s)
}

func (h *NotificationHub) countChangedLocked() {
	if h.OnSubscribersChanged != nil {
		h.OnSubscribersChanged(len(h.streams))
	}
}
