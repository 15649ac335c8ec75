package sentiment

import "testing"

func TestScore(t *testing.T) {
	s := NewScorer(nil)

	tests := []struct {
		name       string
		text       string
		wantSign   int // -1, 0, +1
		wantTokens bool
	}{
		{"hype post", "$FOO to the moon! huge gem", +1, true},
		{"scam warning", "$BAR is a total rug, avoid this scam", -1, true},
		{"neutral words", "just had lunch with friends", 0, true},
		{"empty", "", 0, false},
		{"punctuation only", "!!! ??? ... $$$ 123", 0, false},
		{"single letters", "a b c d", 0, false},
		{"inflected bullish", "pumping and mooning hard", +1, true},
		{"inflected bearish", "devs dumped everything, holders rekt", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, tokens := s.Score(tt.text)

			if tt.wantTokens && tokens == 0 {
				t.Fatalf("Score(%q) tokens = 0, want > 0", tt.text)
			}
			if !tt.wantTokens {
				if tokens != 0 {
					t.Fatalf("Score(%q) tokens = %d, want 0", tt.text, tokens)
				}
				if score != 0 {
					t.Fatalf("Score(%q) score = %v, want 0 with no tokens", tt.text, score)
				}
				return
			}

			switch {
			case tt.wantSign > 0 && score <= 0:
				t.Errorf("Score(%q) = %v, want > 0", tt.text, score)
			case tt.wantSign < 0 && score >= 0:
				t.Errorf("Score(%q) = %v, want < 0", tt.text, score)
			case tt.wantSign == 0 && score != 0:
				t.Errorf("Score(%q) = %v, want 0", tt.text, score)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(nil)
	text := "$MOON mooning, up big, early gem, lfg"

	first, firstTokens := s.Score(text)
	for i := 0; i < 10; i++ {
		score, tokens := s.Score(text)
		if score != first || tokens != firstTokens {
			t.Fatalf("Score not deterministic: run %d got (%v, %d), want (%v, %d)",
				i, score, tokens, first, firstTokens)
		}
	}
}

func TestScoreExtraLexicon(t *testing.T) {
	s := NewScorer(map[string]float64{"giga": 5, "moon": -1})

	score, tokens := s.Score("giga")
	if tokens != 1 {
		t.Fatalf("tokens = %d, want 1", tokens)
	}
	if score != 5 {
		t.Errorf("extra term weight not applied: score = %v, want 5", score)
	}

	// Override wins over the built-in weight.
	score, _ = s.Score("moon")
	if score != -1 {
		t.Errorf("override not applied: score = %v, want -1", score)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"$FOO to the moon!", []string{"foo", "to", "the", "moon"}},
		{"PUMPING", []string{"pump"}},
		{"dumped, rekt", []string{"dump", "rekt"}},
		{"a 1 !", nil},
	}

	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
