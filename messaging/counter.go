package messaging

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/schoolhub/school-messaging-api/databases"
	"github.com/schoolhub/school-messaging-api/models"
)

type participantKey struct {
	kind models.ParticipantKind
	id   string
}

// Counter derives the unread message count per participant. The cache is an
// optimization only: a cold read always recomputes from the message store, and
// any write path that could change a count invalidates the affected entry.
type Counter struct {
	MDB databases.MessageDatabase

	mu    sync.Mutex
	cache map[participantKey]int64
}

// NewCounter initializes an unread counter over the given message database
func NewCounter(mdb databases.MessageDatabase) *Counter {
	return &Counter{MDB: mdb, cache: make(map[participantKey]int64)}
}

// UnreadCount returns the number of unread messages addressed to user
func (c *Counter) UnreadCount(ctx context.Context, user models.ParticipantRef) (int64, error) {
	key := participantKey{kind: user.Kind, id: user.ID}

	c.mu.Lock()
	if n, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()

	filter := bson.M{"recipient.kind": user.Kind, "recipient.id": user.ID, "isRead": false}
	n, err := c.MDB.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cache[key] = n
	c.mu.Unlock()
	return n, nil
}

// Refresh drops any cached count for user, forcing recomputation on next read
func (c *Counter) Refresh(user models.ParticipantRef) {
	c.mu.Lock()
	delete(c.cache, participantKey{kind: user.Kind, id: user.ID})
	c.mu.Unlock()
}
