package services

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeFeed is the in-process change stream for roster and season-stats
// writes. Write paths publish per-group signals; live aggregators subscribe
// to both topics for their group. Signals are coalescing: a subscriber that
// is already behind receives at most one more wakeup.
type ChangeFeed struct {
	mu         sync.RWMutex
	rosterSubs map[uint]map[string]chan struct{}
	statsSubs  map[uint]map[string]chan struct{}
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		rosterSubs: make(map[uint]map[string]chan struct{}),
		statsSubs:  make(map[uint]map[string]chan struct{}),
	}
}

// SubscribeRoster registers for roster change signals of one group.
func (f *ChangeFeed) SubscribeRoster(groupID uint) (string, <-chan struct{}) {
	return subscribe(f, f.rosterSubs, groupID)
}

// SubscribeStats registers for season-stats change signals of one group.
func (f *ChangeFeed) SubscribeStats(groupID uint) (string, <-chan struct{}) {
	return subscribe(f, f.statsSubs, groupID)
}

func subscribe(f *ChangeFeed, subs map[uint]map[string]chan struct{}, groupID uint) (string, <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan struct{}, 1)
	if subs[groupID] == nil {
		subs[groupID] = make(map[string]chan struct{})
	}
	subs[groupID][id] = ch
	return id, ch
}

// UnsubscribeRoster removes a roster subscription. Safe to call twice.
func (f *ChangeFeed) UnsubscribeRoster(groupID uint, id string) {
	unsubscribe(f, f.rosterSubs, groupID, id)
}

// UnsubscribeStats removes a stats subscription. Safe to call twice.
func (f *ChangeFeed) UnsubscribeStats(groupID uint, id string) {
	unsubscribe(f, f.statsSubs, groupID, id)
}

func unsubscribe(f *ChangeFeed, subs map[uint]map[string]chan struct{}, groupID uint, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if group, ok := subs[groupID]; ok {
		if ch, ok := group[id]; ok {
			close(ch)
			delete(group, id)
		}
		if len(group) == 0 {
			delete(subs, groupID)
		}
	}
}

// PublishRosterChange signals every roster subscriber of the group.
func (f *ChangeFeed) PublishRosterChange(groupID uint) {
	publish(f, f.rosterSubs, groupID)
}

// PublishStatsChange signals every stats subscriber of the group.
func (f *ChangeFeed) PublishStatsChange(groupID uint) {
	publish(f, f.statsSubs, groupID)
}

func publish(f *ChangeFeed, subs map[uint]map[string]chan struct{}, groupID uint) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range subs[groupID] {
		// Non-blocking send; a pending signal already covers this change
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns roster and stats subscriber counts for a group.
func (f *ChangeFeed) SubscriberCount(groupID uint) (roster, stats int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rosterSubs[groupID]), len(f.statsSubs[groupID])
}

// Global change feed instance
var (
	globalChangeFeed *ChangeFeed
	changeFeedOnce   sync.Once
)

// GetChangeFeed returns the global change feed singleton.
func GetChangeFeed() *ChangeFeed {
	changeFeedOnce.Do(func() {
		globalChangeFeed = NewChangeFeed()
	})
	return globalChangeFeed
}
