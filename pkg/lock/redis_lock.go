package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ai-parenting-be/internal/pkg/logger"
)

const (
	lockKeyPrefix = "chat:conv-lock:"
	lockTTL       = 30 * time.Second
)

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock grabbed by another writer is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ConversationLock serializes turn writes per conversation with a Redis
// SET NX lease. When Redis is unreachable the lock degrades open: the
// database transaction remains the consistency backstop.
type ConversationLock struct {
	client *redis.Client
	log    logger.ILogger
}

func NewConversationLock(client *redis.Client, log logger.ILogger) *ConversationLock {
	return &ConversationLock{client: client, log: log}
}

// Acquire tries to take the single-writer lease for a conversation. It
// returns a release func and whether the lease was obtained. The release
// func is always safe to call.
func (l *ConversationLock) Acquire(ctx context.Context, conversationId uuid.UUID) (func(), bool) {
	key := lockKeyPrefix + conversationId.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		l.log.Warn("lock", "redis unavailable, proceeding without conversation lock", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}

	return func() {
		// release runs on its own deadline, the request context may be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("lock", "failed to release conversation lock", map[string]interface{}{
				"conversation_id": conversationId.String(),
				"error":           err.Error(),
			})
		}
	}, true
}
