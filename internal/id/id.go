// Package id generates identifiers for records synthesized on the client.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for locally synthesized records.
const (
	PrefixEvent      = "evt"
	PrefixTask       = "task"
	PrefixAddress    = "addr"
	PrefixSubscriber = "sub"
	PrefixUser       = "usr"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "task-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Generator produces identifiers for a given prefix. Tests swap it for a
// deterministic sequence.
type Generator func(prefix string) string

// Sequence returns a Generator yielding prefix-1, prefix-2, ... per prefix.
func Sequence() Generator {
	counters := make(map[string]int)
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
}
