package admin

import (
	"fmt"
	"sync"
	"time"

	"Zoom-License-Bot/internal/telegram"
)

// RoleCache answers "is this user an administrator of this chat" without
// hitting the Bot API on every button press. Entries are keyed by chat: a
// request for a different chat than the cached one forces a refresh, as does
// an entry older than the TTL.
type RoleCache struct {
	api telegram.API
	ttl time.Duration

	mu        sync.Mutex
	chatID    int64
	admins    map[int64]struct{}
	fetchedAt time.Time
}

const DefaultRoleTTL = 5 * time.Minute

func NewRoleCache(api telegram.API, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = DefaultRoleTTL
	}
	return &RoleCache{api: api, ttl: ttl}
}

// IsAdmin reports whether userID administers chatID, refreshing the cached
// member list when it is stale.
func (c *RoleCache) IsAdmin(chatID, userID int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if chatID != c.chatID || time.Since(c.fetchedAt) > c.ttl {
		members, err := c.api.ChatAdministrators(chatID)
		if err != nil {
			return false, fmt.Errorf("list administrators of %d: %w", chatID, err)
		}
		admins := make(map[int64]struct{}, len(members))
		for _, m := range members {
			if m.User != nil {
				admins[m.User.ID] = struct{}{}
			}
		}
		c.chatID = chatID
		c.admins = admins
		c.fetchedAt = time.Now()
	}

	_, ok := c.admins[userID]
	return ok, nil
}
