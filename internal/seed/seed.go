// Package seed embeds the fallback dataset used when the backend is
// unreachable and no persisted mirror exists yet.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

//go:embed data/*.json
var files embed.FS

// Data is one decoded copy of the seed.
type Data struct {
	Events []domain.Event
	Tasks  []domain.Task
	Users  []domain.UserDetail
}

// Load decodes a fresh copy of the seed. Events carry their tasks as detail
// so that an event can be opened while offline.
func Load() (*Data, error) {
	var payloads []domain.EventPayload
	if err := decode("data/events.json", &payloads); err != nil {
		return nil, err
	}

	var tasks []domain.Task
	if err := decode("data/tasks.json", &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Normalize()
	}

	var users []domain.UserDetail
	if err := decode("data/users.json", &users); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(payloads))
	for _, p := range payloads {
		if p.Tasks == nil {
			p.Tasks = []domain.Task{}
			for _, t := range tasks {
				if t.EventID.Equal(p.ID) {
					p.Tasks = append(p.Tasks, t.Clone())
				}
			}
		}
		events = append(events, p.Normalize())
	}

	return &Data{Events: events, Tasks: tasks, Users: users}, nil
}

// MustLoad is like Load but panics on a corrupt embed.
func MustLoad() *Data {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// Summaries returns the directory view of the seed users.
func (d *Data) Summaries() []domain.UserSummary {
	out := make([]domain.UserSummary, len(d.Users))
	for i, u := range d.Users {
		out[i] = u.Summary()
	}
	return out
}

// Credentials maps every seed username to its development password.
func (d *Data) Credentials() map[string]string {
	out := make(map[string]string, len(d.Users))
	for _, u := range d.Users {
		out[u.Username] = u.Username + "-pass"
	}
	return out
}

func decode(name string, v any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode seed %s: %w", name, err)
	}
	return nil
}
