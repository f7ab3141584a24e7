package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Counter tracks validated (scanned) reservations per day for the back-office
// live counter. Keys expire after two days; the database remains the durable
// record, this is only the live view.
type Counter struct {
	Client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{Client: client}
}

const counterTTL = 48 * time.Hour

func dayKey(day string) string {
	return "validations:" + day
}

// Increment bumps today's counter and returns the new value.
func (c *Counter) Increment(ctx context.Context) (int64, error) {
	key := dayKey(time.Now().UTC().Format("2006-01-02"))
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		c.Client.Expire(ctx, key, counterTTL)
	}
	return count, nil
}

// Count reads the counter for the given day (YYYY-MM-DD). A missing key
// reads as zero.
func (c *Counter) Count(ctx context.Context, day string) (int64, error) {
	count, err := c.Client.Get(ctx, dayKey(day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
