// Package checkpoint stores activity export positions in Redis.
//
// A long activity export can be interrupted at any page boundary. The
// exporter saves the cursor of the next page after each fully consumed page
// and deletes the checkpoint once the listing is exhausted, so a restarted
// export continues where the previous one stopped instead of starting over.
//
// # Basic Usage
//
//	store := checkpoint.NewStore(redisClient, 7*24*time.Hour)
//
//	key := checkpoint.Key{
//		ProfileID: "12345",
//		Filters:   url.Values{"status": []string{"COMPLETED"}},
//	}
//
//	cp, err := store.Get(ctx, key)
//	if errors.Is(err, checkpoint.ErrNotFound) {
//		// start from the first page
//	}
//
// Keys are deterministic: the same profile and filters always map to the
// same Redis key, independent of map iteration order.
package checkpoint
