package prioritization

import (
	"context"
	"errors"
	"sync"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

type fakeSignals struct {
	rows map[string]topic.Signals
	err  error
}

func (f *fakeSignals) Lookup(_ context.Context, term string) (topic.Signals, bool, error) {
	if f.err != nil {
		return topic.Signals{}, false, f.err
	}
	s, ok := f.rows[term]
	return s, ok, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, payload)
	return "id", nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type predictorFunc func(ctx context.Context, features [4]float64) (float64, error)

func (p predictorFunc) Predict(ctx context.Context, features [4]float64) (float64, error) {
	return p(ctx, features)
}

var errModelDown = errors.New("endpoint unavailable")

func failingPredictor() topic.Predictor {
	return predictorFunc(func(context.Context, [4]float64) (float64, error) { return 0, errModelDown })
}

func slowPredictor(d time.Duration, v float64) topic.Predictor {
	return predictorFunc(func(ctx context.Context, _ [4]float64) (float64, error) {
		select {
		case <-time.After(d):
			return v, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
}

func testPrioritizationConfig() config.PrioritizationConfig {
	cfg := config.Default().Prioritization
	cfg.Weights = config.WeightsConfig{SearchVolume: 0.2, Competition: 0.2, TrendScore: 0.5, HITLScore: 0.1}
	cfg.PredictTimeout = 50 * time.Millisecond
	return cfg
}
