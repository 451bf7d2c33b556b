// Package main prints what the offline mirror currently holds.
//
// Usage:
//
//	MIRROR_PATH=~/.eventdeck/mirror go run ./cmd/mirrorinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

func main() {
	dbPath := os.Getenv("MIRROR_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.eventdeck/mirror")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open mirror: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Mirror Inspection ===")
	fmt.Println()

	var (
		events []domain.Event
		tasks  []domain.Task
		token  bool
	)

	err = db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte("meta:session_token")); err == nil {
			token = true
		}
		if err := scan(txn, "event:", func(ev domain.Event) { events = append(events, ev) }); err != nil {
			return err
		}
		return scan(txn, "task:", func(t domain.Task) { tasks = append(tasks, t) })
	})
	if err != nil {
		log.Fatalf("Error iterating mirror: %v", err)
	}

	perEvent := make(map[domain.EntityID][]domain.Task)
	for _, t := range tasks {
		perEvent[t.EventID] = append(perEvent[t.EventID], t)
	}

	slices.SortFunc(events, func(a, b domain.Event) int {
		if a.Date < b.Date {
			return -1
		}
		if a.Date > b.Date {
			return 1
		}
		return 0
	})

	for _, ev := range events {
		fmt.Printf("Event: %s\n", ev.Title)
		fmt.Printf("  ID: %s\n", ev.ID)
		fmt.Printf("  Date: %s\n", ev.Date)
		fmt.Printf("  Participants: %d\n", ev.ParticipantCount)
		fmt.Printf("  Tasks: %d/%d done\n", ev.CompletedTaskCount, ev.TaskCount)
		for i, t := range perEvent[ev.ID] {
			if i < 5 { // Show first 5 tasks
				mark := " "
				if t.Completed {
					mark = "x"
				}
				fmt.Printf("    [%s] %s (%s)\n", mark, t.Description, t.AssignedToUsername)
			}
		}
		if n := len(perEvent[ev.ID]); n > 5 {
			fmt.Printf("    ... and %d more tasks\n", n-5)
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Events: %d\n", len(events))
	fmt.Printf("Tasks: %d\n", len(tasks))
	fmt.Printf("Session token stored: %t\n", token)
}

// scan decodes every JSON value under prefix. Undecodable values are logged
// and skipped.
func scan[T any](txn *badger.Txn, prefix string, fn func(T)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		err := item.Value(func(val []byte) error {
			var v T
			if err := json.Unmarshal(val, &v); err != nil {
				return err
			}
			fn(v)
			return nil
		})
		if err != nil {
			log.Printf("Error reading %s: %v", item.Key(), err)
		}
	}
	return nil
}
