package crawler

import "testing"

// TestExtractSentence tests intro sentence extraction.
func TestExtractSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		paragraphs []string
		person     string
		want       string
		found      bool
	}{
		{
			name:       "first sentence mentioning the name",
			paragraphs: []string{"She was born in London. She met Charles Babbage in 1833. Charles Babbage was impressed."},
			person:     "Charles Babbage",
			want:       "She met Charles Babbage in 1833.",
			found:      true,
		},
		{
			name:       "first matching paragraph wins",
			paragraphs: []string{"No mention here.", "Alan Turing broke codes!", "Alan Turing again."},
			person:     "Alan Turing",
			want:       "Alan Turing broke codes!",
			found:      true,
		},
		{
			name:       "question mark terminator",
			paragraphs: []string{"Who taught Grace Hopper? Nobody knows."},
			person:     "Grace Hopper",
			want:       "Who taught Grace Hopper?",
			found:      true,
		},
		{
			name:       "missing terminator is restored",
			paragraphs: []string{"It ends. Then came Marie Curie"},
			person:     "Marie Curie",
			want:       "Then came Marie Curie.",
			found:      true,
		},
		{
			name:       "not mentioned",
			paragraphs: []string{"Nothing to see."},
			person:     "Ada Lovelace",
			found:      false,
		},
		{
			name:       "empty name",
			paragraphs: []string{"Anything."},
			person:     "",
			found:      false,
		},
		{
			name:       "no paragraphs",
			paragraphs: nil,
			person:     "Ada Lovelace",
			found:      false,
		},
		{
			name:       "name containing a period",
			paragraphs: []string{"He worked with John Q. Public on it. Later he left."},
			person:     "John Q. Public",
			want:       "He worked with John Q. Public on it. Later he left.",
			found:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, found := ExtractSentence(tt.paragraphs, tt.person)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("sentence = %q, want %q", got, tt.want)
			}
		})
	}
}
