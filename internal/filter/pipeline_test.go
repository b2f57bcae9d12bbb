package filter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agridash/dealer-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func record(customer string, cat models.Category, amount float64, date time.Time) models.NormalizedRecord {
	return models.NormalizedRecord{
		CustomerName:    customer,
		ItemName:        "Bingo 100 ml",
		ItemNameCleaned: "bingo 100 ml",
		Category:        cat,
		Amount:          amount,
		Date:            date,
	}
}

func TestMatches(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	r := record("Agro Traders", models.CategoryBioStimulants, 150, d)

	t.Run("empty state matches everything", func(t *testing.T) {
		assert.True(t, Matches(r, models.FilterState{}))
	})

	t.Run("dimensions are ANDed", func(t *testing.T) {
		min := 100.0
		f := models.FilterState{
			Customers: []string{"Agro Traders"},
			MinAmount: &min,
		}
		assert.True(t, Matches(r, f))

		f.Customers = []string{"Someone Else"}
		assert.False(t, Matches(r, f))
	})

	t.Run("values within a dimension are ORed", func(t *testing.T) {
		f := models.FilterState{Customers: []string{"Someone Else", "agro traders"}}
		assert.True(t, Matches(r, f))
	})

	t.Run("date range bounds are inclusive", func(t *testing.T) {
		from, to := d, d
		assert.True(t, Matches(r, models.FilterState{DateFrom: &from, DateTo: &to}))

		before := d.AddDate(0, 0, -1)
		assert.False(t, Matches(r, models.FilterState{DateTo: &before}))
	})

	t.Run("search matches customer or item, case-insensitive", func(t *testing.T) {
		assert.True(t, Matches(r, models.FilterState{Search: "BINGO"}))
		assert.True(t, Matches(r, models.FilterState{Search: "agro"}))
		assert.False(t, Matches(r, models.FilterState{Search: "zumbaa"}))
	})
}

func TestApply(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []models.NormalizedRecord{
		record("A", models.CategoryBioFertilizers, 100, d),
		record("B", models.CategoryBioFertilizers, 200, d),
		record("A", models.CategoryBioFertilizers, 50, d),
	}

	t.Run("customer filter keeps matching rows", func(t *testing.T) {
		out := Apply(records, models.FilterState{Customers: []string{"A"}})
		require.Len(t, out, 2)
		sum := 0.0
		for _, r := range out {
			sum += r.Amount
		}
		assert.Equal(t, 150.0, sum)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Apply(nil, models.FilterState{}))
	})
}

func bigDataset(n int) []models.NormalizedRecord {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.NormalizedRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record(fmt.Sprintf("dealer-%d", i%7), models.CategoryBioStimulants, float64(i), d))
	}
	return out
}

func TestPipeline(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("debounce collapses rapid submissions into one pass with the last state", func(t *testing.T) {
		var mu sync.Mutex
		var passes int
		var lastState models.FilterState
		done := make(chan struct{}, 1)

		p := NewPipeline(Config{Debounce: 60 * time.Millisecond},
			func(_ []models.NormalizedRecord, state models.FilterState) {
				mu.Lock()
				passes++
				lastState = state
				mu.Unlock()
				done <- struct{}{}
			}, nil, logger)
		defer p.Close()

		records := bigDataset(10)
		for i := 1; i <= 5; i++ {
			p.Submit(records, models.FilterState{Search: fmt.Sprintf("state-%d", i)})
			time.Sleep(5 * time.Millisecond)
		}

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("debounced pass never ran")
		}
		// Allow any (incorrect) extra passes to surface.
		time.Sleep(150 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, passes)
		assert.Equal(t, "state-5", lastState.Search)
	})

	t.Run("chunked pass reports progress and matches the synchronous result", func(t *testing.T) {
		records := bigDataset(2500)
		state := models.FilterState{Customers: []string{"dealer-3"}}

		var mu sync.Mutex
		var progress []Progress
		resultCh := make(chan []models.NormalizedRecord, 1)

		p := NewPipeline(Config{ChunkSize: 500, SyncThreshold: 1000, Debounce: 10 * time.Millisecond},
			func(out []models.NormalizedRecord, _ models.FilterState) { resultCh <- out },
			func(pr Progress) {
				mu.Lock()
				progress = append(progress, pr)
				mu.Unlock()
			}, logger)
		defer p.Close()

		p.Submit(records, state)

		var out []models.NormalizedRecord
		select {
		case out = <-resultCh:
		case <-time.After(2 * time.Second):
			t.Fatal("chunked pass never completed")
		}

		assert.Equal(t, Apply(records, state), out)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, progress, 5)
		assert.Equal(t, Progress{Processed: 500, Total: 2500}, progress[0])
		assert.Equal(t, Progress{Processed: 2500, Total: 2500}, progress[4])
	})

	t.Run("superseded pass never publishes", func(t *testing.T) {
		records := bigDataset(50000)

		var mu sync.Mutex
		var published []models.FilterState
		done := make(chan struct{}, 2)

		p := NewPipeline(Config{ChunkSize: 100, SyncThreshold: 10, Debounce: 5 * time.Millisecond},
			func(_ []models.NormalizedRecord, state models.FilterState) {
				mu.Lock()
				published = append(published, state)
				mu.Unlock()
				done <- struct{}{}
			},
			// Slow each chunk down so the first pass is still in flight
			// when the second one is submitted.
			func(Progress) { time.Sleep(time.Millisecond) }, logger)
		defer p.Close()

		p.Submit(records, models.FilterState{Search: "first"})
		// Let the first chunked pass start, then supersede it.
		time.Sleep(20 * time.Millisecond)
		p.Submit(records, models.FilterState{Search: "second"})

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("second pass never completed")
		}
		time.Sleep(100 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, published, 1)
		assert.Equal(t, "second", published[0].Search)
	})

	t.Run("flush runs a pending pass immediately", func(t *testing.T) {
		resultCh := make(chan struct{}, 1)
		p := NewPipeline(Config{Debounce: time.Hour},
			func(_ []models.NormalizedRecord, _ models.FilterState) { resultCh <- struct{}{} },
			nil, logger)
		defer p.Close()

		p.Submit(bigDataset(5), models.FilterState{})
		p.Flush()

		select {
		case <-resultCh:
		case <-time.After(time.Second):
			t.Fatal("flush did not run the pending pass")
		}
	})

	t.Run("submit after close is ignored", func(t *testing.T) {
		p := NewPipeline(Config{Debounce: time.Millisecond},
			func(_ []models.NormalizedRecord, _ models.FilterState) {
				t.Error("pass ran after close")
			}, nil, logger)
		p.Close()
		p.Submit(bigDataset(5), models.FilterState{})
		time.Sleep(50 * time.Millisecond)
	})
}
