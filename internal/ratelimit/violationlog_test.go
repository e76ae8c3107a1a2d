package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeViolation(n int) Violation {
	return Violation{
		Time:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second),
		Username: fmt.Sprintf("user%d", n),
		IP:       "10.0.0.1",
		Action:   ActionInvoiceDownload,
	}
}

func TestViolationLog_AppendAndDrain(t *testing.T) {
	log := NewViolationLog()

	assert.Nil(t, log.Drain(), "drain of empty log returns nil")

	log.Append(makeViolation(1))
	log.Append(makeViolation(2))
	log.Append(makeViolation(3))
	require.Equal(t, 3, log.Len())

	entries := log.Drain()
	require.Len(t, entries, 3)
	assert.Equal(t, "user1", entries[0].Username)
	assert.Equal(t, "user3", entries[2].Username)

	assert.Equal(t, 0, log.Len(), "drain clears the log")
	assert.Nil(t, log.Drain())
}

func TestViolationLog_EvictsOldest(t *testing.T) {
	log := NewViolationLog()

	for i := 0; i < maxViolations+7; i++ {
		log.Append(makeViolation(i))
	}
	assert.Equal(t, maxViolations, log.Len())

	entries := log.Drain()
	require.Len(t, entries, maxViolations)
	// Первые семь записей вытеснены, порядок остальных сохранён.
	assert.Equal(t, "user7", entries[0].Username)
	assert.Equal(t, fmt.Sprintf("user%d", maxViolations+6), entries[maxViolations-1].Username)
}

func TestViolationLog_ConcurrentAppendDrain(t *testing.T) {
	log := NewViolationLog()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	var drained [][]Violation

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				log.Append(makeViolation(w*perWriter + i))
				if i%10 == 0 {
					batch := log.Drain()
					mu.Lock()
					drained = append(drained, batch)
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	total := log.Len()
	for _, batch := range drained {
		total += len(batch)
	}
	// Каждая запись попала ровно в один снимок либо осталась в журнале.
	assert.Equal(t, writers*perWriter, total)
}
