package tts

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Hello there.", []string{"Hello there."}},
		{"multiple", "Hi! How are you? I'm fine.", []string{"Hi!", "How are you?", "I'm fine."}},
		{"no terminal punctuation", "trailing fragment", []string{"trailing fragment"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNullProviderRejects(t *testing.T) {
	var p Provider = NullProvider{}
	_, err := p.Synthesize(context.Background(), "hi", "default", 0, 1.0)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
	if p.Name() != "null" {
		t.Fatalf("Name() = %q, want null", p.Name())
	}
}
