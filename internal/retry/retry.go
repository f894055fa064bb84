package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Category classifies a failure by its origin so the coordinator can pick
// the right policy for it.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryNetwork    Category = "network"
	CategoryBrowser    Category = "browser"
	CategoryDetection  Category = "detection"
	CategoryBooking    Category = "booking"
	CategoryScheduling Category = "scheduling"
	CategorySystem     Category = "system"
)

// Policy describes how a category of failures is retried.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Retryable    bool
}

// DefaultPolicies applies the given base settings to every retryable
// category. Scheduling rejections are policy decisions by the backend and
// retrying them cannot change the answer.
func DefaultPolicies(maxAttempts int, baseDelay, maxDelay time.Duration) map[Category]Policy {
	std := Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: baseDelay,
		MaxDelay:     maxDelay,
		Multiplier:   2,
		Retryable:    true,
	}
	return map[Category]Policy{
		CategoryAuth:       std,
		CategoryNetwork:    std,
		CategoryBrowser:    std,
		CategoryDetection:  std,
		CategoryBooking:    std,
		CategorySystem:     std,
		CategoryScheduling: {MaxAttempts: 1, Retryable: false},
	}
}

// backOff builds the delay schedule for this policy. Randomization is off
// so retry spacing stays deterministic.
func (p Policy) backOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.MaxInterval = p.MaxDelay
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Failure wraps the final error of an exhausted operation with how it was
// classified and how many attempts were spent on it.
type Failure struct {
	Category Category
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure after %d attempt(s): %v", f.Category, f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Coordinator runs operations under the per-category policies.
type Coordinator struct {
	policies map[Category]Policy
	log      *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(policies map[Category]Policy, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		policies: policies,
		log:      log,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Coordinator) policy(cat Category) Policy {
	if p, ok := c.policies[cat]; ok {
		return p
	}
	return Policy{MaxAttempts: 1}
}

// Do runs op under the policy for cat. Attempts are separated by
// exponentially growing delays. A non-retryable category gets exactly one
// attempt. On exhaustion the last error comes back wrapped in a *Failure.
func (c *Coordinator) Do(ctx context.Context, cat Category, name string, op func(ctx context.Context) error) error {
	return c.DoClassified(ctx, name, func(error) Category { return cat }, op)
}

// Classifier maps an operation error to its failure category.
type Classifier func(error) Category

// DoClassified runs op and classifies each failure as it happens, so one
// operation can fail in different ways under different policies. A failure
// whose category is not retryable ends the operation immediately. Each
// category encountered keeps its own delay schedule.
func (c *Coordinator) DoClassified(ctx context.Context, name string, classify Classifier, op func(ctx context.Context) error) error {
	backoffs := map[Category]backoff.BackOff{}
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		cat := classify(err)
		p := c.policy(cat)
		if !p.Retryable || attempt >= p.MaxAttempts {
			return &Failure{Category: cat, Attempts: attempt, Err: err}
		}
		bo, ok := backoffs[cat]
		if !ok {
			bo = p.backOff()
			backoffs[cat] = bo
		}
		delay := bo.NextBackOff()
		c.log.Warn("operation failed, retrying",
			"op", name,
			"category", string(cat),
			"attempt", attempt,
			"delay", delay,
			"error", err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return &Failure{Category: cat, Attempts: attempt, Err: err}
		}
	}
}

// DoWithFallback runs op like DoClassified, but after the first failed
// attempt it invokes fallback once. A successful fallback ends the
// operation; if the fallback fails too, the remaining attempts of op
// continue under op's own failure classification. A nil fallback reduces
// this to DoClassified.
func (c *Coordinator) DoWithFallback(ctx context.Context, name string, classify Classifier, op, fallback func(ctx context.Context) error) error {
	fallbackTried := false
	wrapped := func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !fallbackTried && fallback != nil {
			fallbackTried = true
			c.log.Info("primary path failed, trying fallback", "op", name, "error", err)
			if fbErr := fallback(ctx); fbErr == nil {
				return nil
			} else {
				c.log.Warn("fallback failed", "op", name, "error", fbErr)
			}
		}
		return err
	}
	return c.DoClassified(ctx, name, classify, wrapped)
}
