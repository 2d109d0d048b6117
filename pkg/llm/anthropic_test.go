package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestAnthropicComplete(t *testing.T) {
	var gotModel, gotPath, gotKey, gotSystem string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")

		var body struct {
			Model  string `json:"model"`
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		if len(body.System) > 0 {
			gotSystem = body.System[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       body.Model,
			"stop_reason": "end_turn",
			"content": []map[string]interface{}{
				{"type": "text", "text": "Sure.\n"},
				{"type": "text", "text": validReply},
			},
			"usage": map[string]interface{}{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	client := NewAnthropicClient("test-key", srv.URL)

	reply, err := client.Complete(context.Background(), "claude-haiku-4-5", "prompt")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Sure.\n"+validReply, reply)
	assert.Equal(t, "claude-haiku-4-5", gotModel)
	assert.Equal(t, true, strings.HasSuffix(gotPath, "/v1/messages"))
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, systemPrompt, gotSystem)
}

func TestAnthropicComplete_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient("test-key", srv.URL)

	_, err := client.Complete(context.Background(), "m", "prompt")

	assert.Equal(t, true, errors.Is(err, ErrUpstream))
}
