package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toltimed/models"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	sessionKeyPrefix = "booking:session:"
	lockKeyPrefix    = "booking:submit-lock:"
	receiptKeyPrefix = "booking:receipt:"

	// ReceiptRoutePrefix is where the receipt view is served.
	ReceiptRoutePrefix = "/api/booking/receipts/"

	DefaultSessionTTL = 30 * time.Minute
	DefaultReceiptTTL = 24 * time.Hour
)

var ErrReceiptNotFound = errors.New("receipt not found or expired")

// releaseLock deletes the lock only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore keeps wizard snapshots in Redis. Every save extends the TTL.
type RedisSessionStore struct {
	Client  redis.Cmdable
	TTL     time.Duration
	LockTTL time.Duration
}

// NewRedisSessionStore builds a store; ttl <= 0 selects DefaultSessionTTL.
// The submit lock outlives a submission by lockTTL at most.
func NewRedisSessionStore(client redis.Cmdable, ttl, lockTTL time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &RedisSessionStore{Client: client, TTL: ttl, LockTTL: lockTTL}
}

func (r *RedisSessionStore) Save(ctx context.Context, snapshot models.WizardSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := r.Client.Set(ctx, sessionKeyPrefix+snapshot.SessionID, data, r.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Load(ctx context.Context, sessionID string) (models.WizardSnapshot, error) {
	var snap models.WizardSnapshot
	data, err := r.Client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, ErrSessionNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("failed to read booking session: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse booking session %s: %w", sessionID, err)
	}
	return snap, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.Client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// AcquireSubmitLock takes the per-session lock. The returned token must be
// handed back to ReleaseSubmitLock.
func (r *RedisSessionStore) AcquireSubmitLock(ctx context.Context, sessionID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.Client.SetNX(ctx, lockKeyPrefix+sessionID, token, r.LockTTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseSubmitLock frees the lock if token still owns it. A lock that expired
// and was taken by another request is left alone.
func (r *RedisSessionStore) ReleaseSubmitLock(ctx context.Context, sessionID, token string) error {
	return releaseLock.Run(ctx, r.Client, []string{lockKeyPrefix + sessionID}, token).Err()
}

// SubmitLockHeld reports whether any request currently holds the lock.
func (r *RedisSessionStore) SubmitLockHeld(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.Client.Exists(ctx, lockKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RedisReceiptNavigator stores receipts for the receipt view to read back.
type RedisReceiptNavigator struct {
	Client redis.Cmdable
	TTL    time.Duration
}

// ShowReceipt stores receipt and returns the route serving it.
func (n *RedisReceiptNavigator) ShowReceipt(ctx context.Context, receipt models.Receipt) (string, error) {
	ttl := n.TTL
	if ttl <= 0 {
		ttl = DefaultReceiptTTL
	}
	data, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	if err := n.Client.Set(ctx, receiptKeyPrefix+receipt.BookingID, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	return ReceiptRoutePrefix + receipt.BookingID, nil
}

// GetReceipt returns a stored receipt.
func (n *RedisReceiptNavigator) GetReceipt(ctx context.Context, bookingID string) (*models.Receipt, error) {
	data, err := n.Client.Get(ctx, receiptKeyPrefix+bookingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	var receipt models.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}
	return &receipt, nil
}
