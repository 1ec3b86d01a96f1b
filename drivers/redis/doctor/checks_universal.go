package doctor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// universalChecks hold regardless of the driver's configured Mode.
var universalChecks = []Check{
	{Name: "P1/S1 put-get round trip", Run: checkPutGetRoundTrip},
	{Name: "P2 ttl expiry", Run: checkTTLExpiry},
	{Name: "P3 add semantics", Run: checkAddSemantics},
	{Name: "P4 putMany/many round trip", Run: checkPutManyRoundTrip},
	{Name: "P5 increment sequence", Run: checkIncrementSequence},
	{Name: "P10/S6 concurrent add race", Run: checkConcurrentAddRace},
	{Name: "P11 rapid put last-writer-wins", Run: checkRapidPutLastWriterWins},
	{Name: "P12 forever has no ttl", Run: checkForeverTTL},
}

// checkPutGetRoundTrip is S1 literally: put("greet","hello",60s); get("greet")
// must return "hello" before the ttl elapses (P1).
func checkPutGetRoundTrip(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("greet")
	if err := d.Put(ctx, key, "hello", time.Minute); err != nil {
		return err
	}
	defer d.Forget(ctx, key)

	val, err := d.Get(ctx, key)
	if err != nil {
		return err
	}
	if val != "hello" {
		return fmt.Errorf("got %v, want %q", val, "hello")
	}
	return nil
}

// checkTTLExpiry is P2: once the ttl has elapsed, get must report absent.
func checkTTLExpiry(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("expiring")
	if err := d.Put(ctx, key, "v", time.Second); err != nil {
		return err
	}
	defer d.Forget(ctx, key)

	time.Sleep(1200 * time.Millisecond)

	_, err := d.Get(ctx, key)
	if err == nil {
		return fmt.Errorf("key still present after ttl elapsed")
	}
	if !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("unexpected error after expiry: %w", err)
	}
	return nil
}

// checkAddSemantics is P3: add on an absent key inserts and returns true;
// add on a present key leaves the value unchanged and returns false.
func checkAddSemantics(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("add")
	defer d.Forget(ctx, key)

	ok, err := d.Add(ctx, key, "first", time.Minute)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("add on absent key returned false")
	}

	ok, err = d.Add(ctx, key, "second", time.Minute)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("add on present key returned true")
	}

	val, err := d.Get(ctx, key)
	if err != nil {
		return err
	}
	if val != "first" {
		return fmt.Errorf("value changed after a losing add: got %v, want %q", val, "first")
	}
	return nil
}

// checkPutManyRoundTrip is P4: many(keys(M)) == M after putMany(M, ttl).
func checkPutManyRoundTrip(ctx context.Context, d *redisdriver.Driver) error {
	prefix := scratchKey("many")
	items := map[string]interface{}{
		prefix + ":a": "1",
		prefix + ":b": "2",
		prefix + ":c": "3",
	}
	if err := d.PutMultiple(ctx, items, time.Minute); err != nil {
		return err
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
		defer d.Forget(ctx, k)
	}

	got, err := d.GetMultiple(ctx, keys)
	if err != nil {
		return err
	}
	for k, want := range items {
		if got[k] != want {
			return fmt.Errorf("key %q: got %v, want %v", k, got[k], want)
		}
	}
	return nil
}

// checkIncrementSequence is P5: increment(K,1) applied 50 times from a
// fresh zero lands on 50.
func checkIncrementSequence(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("counter")
	defer d.Forget(ctx, key)

	if err := d.Put(ctx, key, 0, time.Minute); err != nil {
		return err
	}
	var n int64
	var err error
	for i := 0; i < 50; i++ {
		n, err = d.Increment(ctx, key, 1)
		if err != nil {
			return err
		}
	}
	if n != 50 {
		return fmt.Errorf("after 50 increments: got %d, want 50", n)
	}
	return nil
}

// checkConcurrentAddRace is S6: five parallel add(u, v_i, 60s) calls; exactly
// one must return true, and the surviving value must be that winner's (P10).
func checkConcurrentAddRace(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("race")
	defer d.Forget(ctx, key)

	const n = 5
	var wg sync.WaitGroup
	results := make([]bool, n)
	values := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i] = fmt.Sprintf("v_%d", i)
			results[i], errs[i] = d.Add(ctx, key, values[i], time.Minute)
		}(i)
	}
	wg.Wait()

	var winners int
	var winnerValue string
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			return errs[i]
		}
		if results[i] {
			winners++
			winnerValue = values[i]
		}
	}
	if winners != 1 {
		return fmt.Errorf("got %d winning add() calls, want exactly 1", winners)
	}

	val, err := d.Get(ctx, key)
	if err != nil {
		return err
	}
	if val != winnerValue {
		return fmt.Errorf("surviving value %v does not match the winning add's value %q", val, winnerValue)
	}
	return nil
}

// checkRapidPutLastWriterWins is P11: ten rapid puts from a single task
// leave get() returning the last one written.
func checkRapidPutLastWriterWins(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("sequence")
	defer d.Forget(ctx, key)

	var last string
	for i := 0; i < 10; i++ {
		last = fmt.Sprintf("v%d", i)
		if err := d.Put(ctx, key, last, time.Minute); err != nil {
			return err
		}
	}

	val, err := d.Get(ctx, key)
	if err != nil {
		return err
	}
	if val != last {
		return fmt.Errorf("got %v, want the last write %q", val, last)
	}
	return nil
}

// checkForeverTTL is P12: forever(K,v) yields a server-side ttl of -1.
func checkForeverTTL(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("forever")
	defer d.Forget(ctx, key)

	if err := d.Forever(ctx, key, "v"); err != nil {
		return err
	}
	ttl, err := d.TTL(ctx, key)
	if err != nil {
		return err
	}
	if ttl >= 0 {
		return fmt.Errorf("forever key has a ttl of %s, want no expiration", ttl)
	}
	return nil
}
