package llm

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

var testInput = OptimizeInput{
	Title:       "Widget Pro",
	Bullets:     []string{"b1"},
	Description: "d1",
}

func TestExtractOptimization(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  OptimizeResult
	}{
		{
			name:  "plain JSON",
			reply: `{"opt_title":"T","opt_bullets":["x"],"opt_description":"D","keywords":"k"}`,
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"x"}, OptDescription: "D", Keywords: "k"},
		},
		{
			name:  "prose then json fenced block",
			reply: "Sure! Here is the optimized listing:\n```json\n{\"opt_title\":\"Widget Pro Max\",\"opt_bullets\":[\"x\",\"y\"],\"opt_description\":\"better\",\"keywords\":\"a,b\"}\n```\nLet me know!",
			want:  OptimizeResult{OptTitle: "Widget Pro Max", OptBullets: []string{"x", "y"}, OptDescription: "better", Keywords: "a,b"},
		},
		{
			name:  "untagged fenced block",
			reply: "```\n{\"opt_title\":\"T\",\"opt_bullets\":[\"x\"],\"opt_description\":\"D\",\"keywords\":\"k\"}\n```",
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"x"}, OptDescription: "D", Keywords: "k"},
		},
		{
			name:  "brace span broken by trailing prose, fenced block wins",
			reply: "```json\n{\"opt_title\":\"T\",\"opt_bullets\":[\"x\"],\"opt_description\":\"D\",\"keywords\":\"k\"}\n```\nNote: adjust {brand} as needed.",
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"x"}, OptDescription: "D", Keywords: "k"},
		},
		{
			name:  "scalar bullets coerced to slice",
			reply: `{"opt_title":"T","opt_bullets":"only one","opt_description":"D","keywords":"k"}`,
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"only one"}, OptDescription: "D", Keywords: "k"},
		},
		{
			name:  "missing fields fall back to original",
			reply: `{"opt_bullets":["x"]}`,
			want:  OptimizeResult{OptTitle: "Widget Pro", OptBullets: []string{"x"}, OptDescription: "d1", Keywords: ""},
		},
		{
			name:  "missing bullets fall back to original",
			reply: `{"opt_title":"T","opt_description":"D","keywords":"k"}`,
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"b1"}, OptDescription: "D", Keywords: "k"},
		},
		{
			name:  "keyword array joined",
			reply: `{"opt_title":"T","opt_bullets":["x"],"opt_description":"D","keywords":["a","b"]}`,
			want:  OptimizeResult{OptTitle: "T", OptBullets: []string{"x"}, OptDescription: "D", Keywords: "a, b"},
		},
		{
			name:  "wrong typed title falls back",
			reply: `{"opt_title":{"text":"T"},"opt_bullets":["x"],"opt_description":"D","keywords":"k"}`,
			want:  OptimizeResult{OptTitle: "Widget Pro", OptBullets: []string{"x"}, OptDescription: "D", Keywords: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractOptimization(tt.reply, testInput)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExtractOptimization_Failures(t *testing.T) {
	replies := []string{
		"I'm sorry, I can't help with that.",
		"",
		"} backwards {",
		`{"unrelated":"object"}`,
		"```json\nnot json\n```",
	}

	for _, reply := range replies {
		_, err := ExtractOptimization(reply, testInput)
		assert.Equal(t, true, errors.Is(err, ErrParse))
	}
}
