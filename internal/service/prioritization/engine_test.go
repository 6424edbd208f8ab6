package prioritization

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"topicpulse/internal/domain/topic"
	"topicpulse/internal/logging"
)

func newTestEngine(signals topic.SignalStore, pub topic.Publisher, minPriority float64) *Engine {
	cfg := testPrioritizationConfig()
	cfg.MinPriorityScore = minPriority
	weighted := &WeightedScorer{Weights: cfg.Weights}
	e := NewEngine(signals, pub, weighted, cfg, logging.Discard())
	e.now = func() time.Time { return time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC) }
	return e
}

func input(term string, score float64) topic.TopicInput {
	return topic.TopicInput{
		Term:      term,
		Score:     score,
		Metadata:  map[string]any{"source": "google_trends"},
		Timestamp: time.Now(),
	}
}

func TestPrioritizeScenarioPublishedAtThreshold(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		minPriority float64
		published   bool
	}{
		{0.425, true},
		{0.4, true},
		{0.43, false},
	} {
		pub := &fakePublisher{}
		e := newTestEngine(&fakeSignals{}, pub, tc.minPriority)

		got, err := e.Prioritize(context.Background(), input("quantum computing", 0.85))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got.PriorityScore-0.425) > 1e-12 {
			t.Fatalf("priority = %v, want 0.425", got.PriorityScore)
		}
		if got.Published != tc.published || (pub.count() == 1) != tc.published {
			t.Errorf("min %v: published = %v (count %d), want %v", tc.minPriority, got.Published, pub.count(), tc.published)
		}
	}
}

func TestPrioritizeAssemblesMetadata(t *testing.T) {
	t.Parallel()

	signals := &fakeSignals{rows: map[string]topic.Signals{
		"eclipse": {SearchVolume: 0.5, Competition: 0.25, HITLScore: 1},
	}}
	pub := &fakePublisher{}
	e := newTestEngine(signals, pub, 0.5)

	in := input("eclipse", 0.9)
	got, err := e.Prioritize(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	want := 0.5*0.2 + 0.25*0.2 + 0.9*0.5 + 1*0.1
	if math.Abs(got.PriorityScore-want) > 1e-12 {
		t.Fatalf("priority = %v, want %v", got.PriorityScore, want)
	}
	if got.Term != "eclipse" || got.OriginalScore != 0.9 {
		t.Errorf("unexpected %+v", got)
	}
	factors, ok := got.Metadata["priority_factors"].(map[string]float64)
	if !ok || factors["trend_score"] != 0.9 || factors["search_volume"] != 0.5 {
		t.Errorf("priority_factors = %#v", got.Metadata["priority_factors"])
	}
	if got.Metadata["prioritized_at"] != "2025-05-04T03:02:01Z" || got.Metadata["source"] != "google_trends" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	if _, mutated := in.Metadata["priority_factors"]; mutated {
		t.Error("input metadata mutated")
	}

	if pub.subjects[0] != "topics.prioritized" {
		t.Errorf("subject = %q", pub.subjects[0])
	}
	var sent topic.PrioritizedTopic
	if err := json.Unmarshal(pub.payloads[0], &sent); err != nil {
		t.Fatal(err)
	}
	if sent.Term != "eclipse" || !sent.Published {
		t.Errorf("payload = %+v", sent)
	}
}

func TestPrioritizeMissingSignalsDefaultToZero(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeSignals{}, &fakePublisher{}, 1)
	got, err := e.Prioritize(context.Background(), input("unknown", 0.6))
	if err != nil {
		t.Fatal(err)
	}
	factors := got.Metadata["priority_factors"].(map[string]float64)
	if factors["search_volume"] != 0 || factors["competition"] != 0 || factors["hitl_score"] != 0 || factors["trend_score"] != 0.6 {
		t.Fatalf("factors = %v", factors)
	}
}

func TestPrioritizeStoreFailure(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	e := newTestEngine(&fakeSignals{err: errors.New("relation does not exist")}, pub, 0)
	if _, err := e.Prioritize(context.Background(), input("ai", 0.9)); !topic.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if pub.count() != 0 {
		t.Fatal("nothing should be published")
	}
}

func TestPrioritizePublishFailure(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeSignals{}, &fakePublisher{err: errors.New("no responders")}, 0)
	got, err := e.Prioritize(context.Background(), input("ai", 0.9))
	if !topic.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if got.Term != "ai" || got.Published {
		t.Fatalf("topic should be returned unpublished, got %+v", got)
	}
}

func TestPrioritizeValidation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeSignals{}, &fakePublisher{}, 0)
	for _, in := range []topic.TopicInput{input(" ", 0.5), input("ai", math.NaN()), input("ai", math.Inf(-1))} {
		if _, err := e.Prioritize(context.Background(), in); !topic.IsValidation(err) {
			t.Errorf("input %+v: expected validation error, got %v", in, err)
		}
	}
}

func TestPriorityAlwaysInUnitInterval(t *testing.T) {
	t.Parallel()

	scorers := map[string]Scorer{
		"weighted": &WeightedScorer{Weights: testPrioritizationConfig().Weights},
		"learned-high": &LearnedScorer{Predictor: predictorFunc(func(context.Context, [4]float64) (float64, error) {
			return 7.5, nil
		})},
		"learned-negative": &LearnedScorer{Predictor: predictorFunc(func(context.Context, [4]float64) (float64, error) {
			return -3, nil
		})},
		"fallback": NewFallbackScorer(&LearnedScorer{Predictor: failingPredictor()},
			&WeightedScorer{Weights: testPrioritizationConfig().Weights}, time.Second, logging.Discard()),
	}

	signals := &fakeSignals{rows: map[string]topic.Signals{"big": {SearchVolume: 1e6, Competition: 50, HITLScore: 9}}}
	for name, s := range scorers {
		e := newTestEngine(signals, &fakePublisher{}, 2)
		e.SwapScorer(s)
		for _, score := range []float64{-4, 0, 0.5, 1, 12} {
			for _, term := range []string{"big", "none"} {
				got, err := e.Prioritize(context.Background(), input(term, score))
				if err != nil {
					t.Fatalf("%s: %v", name, err)
				}
				if got.PriorityScore < 0 || got.PriorityScore > 1 {
					t.Errorf("%s: priority %v out of range", name, got.PriorityScore)
				}
			}
		}
	}
}

func TestSwapScorerConcurrent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeSignals{}, &fakePublisher{}, 2)
	constant := func(v float64) Scorer {
		return &LearnedScorer{Predictor: predictorFunc(func(context.Context, [4]float64) (float64, error) { return v, nil })}
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.SwapScorer(constant(float64(i%2) * 0.5))
		}()
		go func() {
			defer wg.Done()
			got, err := e.Prioritize(context.Background(), input("ai", 0.9))
			if err != nil {
				t.Error(err)
				return
			}
			if got.PriorityScore != 0 && got.PriorityScore != 0.5 && math.Abs(got.PriorityScore-0.45) > 1e-12 {
				t.Errorf("unexpected priority %v", got.PriorityScore)
			}
		}()
	}
	wg.Wait()
}
