package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// MatchQueue is the reliable queue feeding the matching workers. Job creation
// enqueues the job id; workers claim blocking and Ack once the matcher has run
// (the matcher's open-status precondition makes duplicate delivery harmless).
type MatchQueue interface {
	Enqueue(ctx context.Context, jobID string, priority int) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, jobID string) error
	RequeueStale(ctx context.Context, maxPerLane int64) (int64, error)
}

// Lane is one priority level of the queue: a pending list plus the processing
// list claimed entries move to.
type Lane struct {
	QueueKey      string
	ProcessingKey string
}

// redisMatchQueue backs the match queue with Redis lists, one lane per
// priority.
// Claim: BRPOPLPUSH lane.queue -> lane.processing, high lane first.
// Ack:   LREM from the processing list recorded in the processingMapKey hash.
// A reaper periodically moves stale processing entries back to their queue,
// giving at-least-once delivery when a worker dies mid-claim.
type redisMatchQueue struct {
	rdb              *redis.Client
	processingMapKey string

	// ordered high -> low; claims always drain higher lanes first
	lanes [3]Lane
}

func NewRedisMatchQueue(rdb *redis.Client, processingMapKey string, low, normal, high Lane) MatchQueue {
	return &redisMatchQueue{
		rdb:              rdb,
		processingMapKey: processingMapKey,
		lanes:            [3]Lane{high, normal, low},
	}
}

func (q *redisMatchQueue) laneByPriority(p int) Lane {
	switch {
	case p >= PriorityHigh:
		return q.lanes[0]
	case p <= PriorityLow:
		return q.lanes[2]
	default:
		return q.lanes[1]
	}
}

func (q *redisMatchQueue) Enqueue(ctx context.Context, jobID string, priority int) error {
	ln := q.laneByPriority(priority)
	return q.rdb.LPush(ctx, ln.QueueKey, jobID).Err()
}

// ClaimBlocking polls the lanes high->low with short blocking slots, so it is
// mostly blocking while still honoring priority. timeout <= 0 blocks until a
// job arrives or ctx is cancelled.
func (q *redisMatchQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	forever := timeout <= 0
	deadline := time.Now().Add(timeout)

	slot := 1 * time.Second
	if !forever && timeout < slot {
		slot = timeout
	}

	for {
		if !forever && time.Now().After(deadline) {
			return "", redis.Nil
		}

		for _, ln := range q.lanes {
			wait := slot
			if !forever {
				remain := time.Until(deadline)
				if remain <= 0 {
					return "", redis.Nil
				}
				if remain < wait {
					wait = remain
				}
			}

			id, err := q.rdb.BRPopLPush(ctx, ln.QueueKey, ln.ProcessingKey, wait).Result()
			if err == nil {
				// Remember which processing list holds this id so Ack can
				// remove it later.
				if hErr := q.rdb.HSet(ctx, q.processingMapKey, id, ln.ProcessingKey).Err(); hErr != nil {
					return "", hErr
				}
				return id, nil
			}
			if errors.Is(err, redis.Nil) {
				continue // lane empty during this slot
			}
			return "", err
		}
	}
}

func (q *redisMatchQueue) Ack(ctx context.Context, jobID string) error {
	processingKey, err := q.rdb.HGet(ctx, q.processingMapKey, jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Mapping is gone (reaped or manual intervention): sweep every
			// processing list.
			for _, ln := range q.lanes {
				_ = q.rdb.LRem(ctx, ln.ProcessingKey, 1, jobID).Err()
			}
			return nil
		}
		return err
	}

	if err := q.rdb.LRem(ctx, processingKey, 1, jobID).Err(); err != nil {
		return err
	}
	_ = q.rdb.HDel(ctx, q.processingMapKey, jobID).Err()
	return nil
}

// RequeueStale moves processing entries back onto their queue, lane by lane.
func (q *redisMatchQueue) RequeueStale(ctx context.Context, maxPerLane int64) (int64, error) {
	var moved int64

	for _, ln := range q.lanes {
		for i := int64(0); i < maxPerLane; i++ {
			id, err := q.rdb.RPopLPush(ctx, ln.ProcessingKey, ln.QueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					break
				}
				return moved, err
			}
			if id != "" {
				moved++
				_ = q.rdb.HDel(ctx, q.processingMapKey, id).Err()
			}
		}
	}

	return moved, nil
}
