package reader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

func TestPredict(t *testing.T) {
	var gotReq predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := predictResponse{Answers: []Prediction{
			{PassageID: 7, Answer: "Eddard Stark", Score: 11.2, Probability: 0.93, Start: 23, End: 35},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(config.ReaderConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "roberta-base-squad2",
	})

	preds, err := client.Predict(context.Background(), "Who is the father of Arya Stark?",
		[]Passage{{ID: 7, Text: "Arya Stark is a daughter of Eddard Stark."}}, 3)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, uint(7), preds[0].PassageID)
	assert.Equal(t, "Eddard Stark", preds[0].Answer)

	assert.Equal(t, "roberta-base-squad2", gotReq.Model)
	assert.Equal(t, 3, gotReq.TopK)
	assert.Len(t, gotReq.Passages, 1)
}

func TestPredictNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(config.ReaderConfig{BaseURL: srv.URL, Model: "m"})
	_, err := client.Predict(context.Background(), "q", []Passage{{ID: 1, Text: "t"}}, 1)
	assert.Error(t, err)
}
