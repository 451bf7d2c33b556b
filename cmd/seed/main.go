// Package main provides a tool to reset the offline mirror to the bundled
// dataset, optionally padded with generated tasks for dashboard testing.
//
// Usage:
//
//	MIRROR_PATH=~/.eventdeck/mirror go run ./cmd/seed
//	MIRROR_PATH=~/.eventdeck/mirror go run ./cmd/seed --extra-tasks 40
//	MIRROR_PATH=~/.eventdeck/mirror go run ./cmd/seed --reset   # Re-seed on next client start
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/mirror"
	"github.com/eventdeck/eventdeck-client/internal/seed"
)

var (
	extraTasks = flag.Int("extra-tasks", 0, "Generate this many additional tasks across the seeded events")
	resetOnly  = flag.Bool("reset", false, "Only drop the mirror so the client re-seeds it on start")
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("MIRROR_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.eventdeck/mirror")
	}

	fmt.Printf("Opening mirror at: %s\n", dbPath)

	db, err := mirror.Open(dbPath, false, nil)
	if err != nil {
		log.Fatalf("Failed to open mirror: %v", err)
	}
	defer db.Close()

	if *resetOnly {
		if err := db.Reset(); err != nil {
			log.Fatalf("Failed to reset mirror: %v", err)
		}
		fmt.Println("Mirror dropped; the client will re-seed it on next start.")
		return
	}

	data, err := seed.Load()
	if err != nil {
		log.Fatalf("Failed to load seed: %v", err)
	}

	tasks := data.Tasks
	if *extraTasks > 0 {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		tasks = append(tasks, generateTasks(rng, data, *extraTasks)...)
	}

	if err := db.Seed(context.Background(), data.Events, tasks); err != nil {
		log.Fatalf("Failed to seed mirror: %v", err)
	}

	fmt.Printf("Seeded %d events and %d tasks\n", len(data.Events), len(tasks))
}

var taskVerbs = []string{"Confirm", "Order", "Book", "Review", "Print", "Call about"}
var taskNouns = []string{"catering", "the projector", "name tags", "parking", "the playlist", "flowers"}

// generateTasks spreads n random tasks over the seeded events, due within
// the next three weeks so they show up as nearing due. Event counts are
// bumped to match.
func generateTasks(rng *rand.Rand, data *seed.Data, n int) []domain.Task {
	now := time.Now().UTC()
	out := make([]domain.Task, 0, n)

	for i := range n {
		ev := &data.Events[rng.Intn(len(data.Events))]
		user := data.Users[rng.Intn(len(data.Users))]
		done := rng.Float32() < 0.3

		due := now.Add(time.Duration(rng.Intn(21*24)) * time.Hour)
		task := domain.Task{
			ID:                 domain.NewEntityID(strconv.Itoa(9000 + i)),
			Description:        taskVerbs[rng.Intn(len(taskVerbs))] + " " + taskNouns[rng.Intn(len(taskNouns))],
			Completed:          done,
			DueDate:            due.Format(domain.ISOMillis),
			AssignedToID:       user.ID,
			AssignedToUsername: user.Username,
			EventID:            ev.ID,
			CreatedAt:          now.Format(domain.ISOMillis),
		}
		out = append(out, task)

		completed := 0
		if done {
			completed = 1
		}
		ev.AdjustCounts(1, completed, 0)
		if ev.Tasks != nil {
			ev.Tasks = append(ev.Tasks, task)
		}
	}
	return out
}
