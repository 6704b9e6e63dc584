package notify

import (
	"log"
	"strconv"
	"time"
)

const (
	untitled   = "(untitled)"
	noContents = "(no contents)"
)

// Scheduler maps task IDs onto reminder requests.
type Scheduler struct {
	center *Center
	logger *log.Logger
	now    func() time.Time
}

func NewScheduler(center *Center, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{center: center, logger: logger, now: time.Now}
}

// Key is the request ID used for a task.
func Key(taskID int) string {
	return strconv.Itoa(taskID)
}

// Cancel removes the reminder for taskID. Failures are logged, never
// returned, and a missing reminder is a no-op.
func (s *Scheduler) Cancel(taskID int) {
	if err := s.center.RemovePending(Key(taskID)); err != nil {
		s.logger.Printf("cancel reminder %d: %v", taskID, err)
	}
}

// LogPending asks for the pending list and logs it when the answer arrives.
// It never blocks the caller.
func (s *Scheduler) LogPending() {
	s.center.PendingRequests(func(reqs []Request) {
		for _, r := range reqs {
			s.logger.Printf("pending reminder id=%s fire_at=%s title=%q", r.ID, r.FireAt.Format(time.RFC3339), r.Title)
		}
	})
}

// Schedule registers the reminder for taskID at the given time, replacing
// any earlier one. A time that has already passed only clears the old one.
func (s *Scheduler) Schedule(taskID int, title, body string, at time.Time) error {
	if !at.After(s.now()) {
		return s.center.RemovePending(Key(taskID))
	}
	if title == "" {
		title = untitled
	}
	if body == "" {
		body = noContents
	}
	return s.center.Add(Request{
		ID:     Key(taskID),
		Title:  title,
		Body:   body,
		FireAt: at,
	})
}

func (s *Scheduler) Pending() []Request {
	return s.center.Pending()
}

// Deliver fires every reminder that is due now.
func (s *Scheduler) Deliver() ([]Request, error) {
	return s.center.Deliver(s.now())
}
