package services

import (
	"sync"

	"github.com/terraincognita07/khare/internal/models"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ProjectChange is one row-level change. Previous is set when the change may
// have moved the project away from a viewer, such as a contractor reassignment.
type ProjectChange struct {
	Type     ChangeType      `json:"type"`
	Project  models.Project  `json:"project"`
	Previous *models.Project `json:"-"`
}

func (change ProjectChange) relevantTo(viewer Viewer) bool {
	if change.Project.VisibleTo(viewer.Role, viewer.AccountID) {
		return true
	}
	return change.Previous != nil && change.Previous.VisibleTo(viewer.Role, viewer.AccountID)
}

type feedSubscriber struct {
	viewer  Viewer
	changes chan ProjectChange
}

// ProjectFeed fans project changes out to interested viewers. Publish never
// blocks: a subscriber whose buffer is full misses the change.
type ProjectFeed struct {
	mu          sync.Mutex
	subscribers map[int]*feedSubscriber
	nextID      int
	buffer      int
	dropped     int
}

func NewProjectFeed(buffer int) *ProjectFeed {
	if buffer <= 0 {
		buffer = 16
	}
	return &ProjectFeed{subscribers: make(map[int]*feedSubscriber), buffer: buffer}
}

func (feed *ProjectFeed) Subscribe(viewer Viewer) (<-chan ProjectChange, func()) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	id := feed.nextID
	feed.nextID++
	subscriber := &feedSubscriber{viewer: viewer, changes: make(chan ProjectChange, feed.buffer)}
	feed.subscribers[id] = subscriber

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			feed.mu.Lock()
			defer feed.mu.Unlock()
			delete(feed.subscribers, id)
			close(subscriber.changes)
		})
	}
	return subscriber.changes, cancel
}

func (feed *ProjectFeed) Publish(change ProjectChange) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	for _, subscriber := range feed.subscribers {
		if !change.relevantTo(subscriber.viewer) {
			continue
		}
		select {
		case subscriber.changes <- change:
		default:
			feed.dropped++
		}
	}
}

func (feed *ProjectFeed) Subscribers() int {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	return len(feed.subscribers)
}

// Dropped counts changes discarded because a subscriber was not keeping up.
func (feed *ProjectFeed) Dropped() int {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	return feed.dropped
}
