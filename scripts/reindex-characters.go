package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	characterrepo "github.com/KirkDiggler/rpg-charforge/internal/repositories/character"
	"github.com/KirkDiggler/rpg-charforge/internal/repositories/indexed"
)

var (
	payloadPattern = indexed.RecordPattern(dnd5e.EntityTypeCharacter)
	indexKey       = characterrepo.IndexName
	seqKey         = indexed.SeqKey(characterrepo.IndexName)
)

// Just the fields needed to order recovered entries
type characterData struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Comparing character payloads with the index...")

	members, err := client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		log.Fatal("Failed to read index:", err)
	}
	inIndex := make(map[string]bool, len(members))
	for _, id := range members {
		inIndex[id] = true
	}

	// Payloads that no index entry points at
	var orphans []characterData
	payloads := map[string]bool{}
	iter := client.Scan(ctx, 0, payloadPattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, ok := indexed.RecordID(dnd5e.EntityTypeCharacter, key)
		if !ok {
			continue
		}
		payloads[id] = true
		if inIndex[id] {
			continue
		}

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}
		var c characterData
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			fmt.Printf("✗ Unreadable payload in %s, leaving it alone\n", key)
			continue
		}
		c.ID = id
		orphans = append(orphans, c)
	}
	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	dangling := danglingIDs(members, payloads)

	fmt.Printf("\nIndex has %d entries, found %d payloads\n", len(members), len(payloads))
	fmt.Printf("  %d payloads missing from the index\n", len(orphans))
	fmt.Printf("  %d index entries without a payload\n", len(dangling))

	if len(orphans) == 0 && len(dangling) == 0 {
		fmt.Println("Index is consistent!")
		return
	}

	for _, c := range orphans {
		fmt.Printf("  + %s\n", c.ID)
	}
	for _, id := range dangling {
		fmt.Printf("  - %s\n", id)
	}

	fmt.Print("\nApply these changes to the index? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response) // nolint:errcheck // empty answer means no

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	// Recovered entries go to the end of the index in creation order
	sort.SliceStable(orphans, func(i, j int) bool {
		return orphans[i].CreatedAt < orphans[j].CreatedAt
	})
	for _, c := range orphans {
		seq, err := client.Incr(ctx, seqKey).Result()
		if err != nil {
			log.Fatal("Failed to allocate index position:", err)
		}
		if err := client.ZAdd(ctx, indexKey, redis.Z{Score: float64(seq), Member: c.ID}).Err(); err != nil {
			fmt.Printf("Failed to index %s: %v\n", c.ID, err)
		} else {
			fmt.Printf("Indexed %s\n", c.ID)
		}
	}

	if len(dangling) > 0 {
		stale := make([]any, len(dangling))
		for i, id := range dangling {
			stale[i] = id
		}
		if err := client.ZRem(ctx, indexKey, stale...).Err(); err != nil {
			fmt.Printf("Failed to drop dangling entries: %v\n", err)
		} else {
			fmt.Printf("Dropped %d dangling entries\n", len(dangling))
		}
	}

	fmt.Println("\nReindex complete!")
}

// danglingIDs returns the index entries that have no payload, in index order.
func danglingIDs(members []string, payloads map[string]bool) []string {
	var dangling []string
	for _, id := range members {
		if !payloads[id] {
			dangling = append(dangling, id)
		}
	}
	return dangling
}
