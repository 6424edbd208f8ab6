// internal/adapter/ml/predict_client.go

package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"topicpulse/internal/domain/topic"
)

var errNoPrediction = errors.New("endpoint returned no predictions")

// PredictClient calls a deployed prediction endpoint with one instance per
// request: {"instances": [[search_volume, competition, trend_score, hitl_score]]}
type PredictClient struct {
	client jsonClient
}

var _ topic.Predictor = (*PredictClient)(nil)

// NewPredictClient targets the full predict URL of a deployment
func NewPredictClient(endpointURL, apiKey string, client *http.Client) *PredictClient {
	return &PredictClient{client: newJSONClient(endpointURL, apiKey, client)}
}

// Predict returns the first prediction of the reply
func (p *PredictClient) Predict(ctx context.Context, features [4]float64) (float64, error) {
	payload := map[string]any{
		"instances": [][4]float64{features},
	}

	var resp struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := p.client.do(ctx, http.MethodPost, "", payload, &resp); err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return 0, errNoPrediction
	}

	return decodePrediction(resp.Predictions[0])
}

// decodePrediction accepts a bare number or a single-output vector
func decodePrediction(raw json.RawMessage) (float64, error) {
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, nil
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		return 0, fmt.Errorf("decode prediction %s: %w", raw, err)
	}
	if len(vector) == 0 {
		return 0, errNoPrediction
	}
	return vector[0], nil
}
