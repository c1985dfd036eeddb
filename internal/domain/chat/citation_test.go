package chat

import "testing"

func TestDedupeCitationsKeepsMaxScore(t *testing.T) {
	in := []Citation{
		{DocumentID: "A", Score: 0.9, Filename: "a1.pdf"},
		{DocumentID: "A", Score: 0.5, Filename: "a2.pdf"},
		{DocumentID: "B", Score: 0.7, Filename: "b.pdf"},
	}

	out := DedupeCitations(in)

	if len(out) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(out))
	}
	if out[0].DocumentID != "A" || out[0].Score != 0.9 {
		t.Fatalf("expected A@0.9 first, got %s@%v", out[0].DocumentID, out[0].Score)
	}
	if out[1].DocumentID != "B" || out[1].Score != 0.7 {
		t.Fatalf("expected B@0.7 second, got %s@%v", out[1].DocumentID, out[1].Score)
	}
}

func TestDedupeCitationsLaterHigherScoreWins(t *testing.T) {
	in := []Citation{
		{DocumentID: "doc1", Score: 0.3, Text: "low"},
		{DocumentID: "doc1", Score: 0.8, Text: "high"},
	}

	out := DedupeCitations(in)

	if len(out) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(out))
	}
	if out[0].Score != 0.8 || out[0].Text != "high" {
		t.Fatalf("expected winning entry with score 0.8, got %+v", out[0])
	}
}

func TestDedupeCitationsEmptyDocumentID(t *testing.T) {
	in := []Citation{
		{DocumentID: "", Score: 0.2},
		{DocumentID: "", Score: 0.4},
	}
	if got := DedupeCitations(in); len(got) != 2 {
		t.Fatalf("citations without document IDs must be kept, got %d", len(got))
	}
}

func TestLinkCitationMarkers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{
			name:    "in range",
			content: "See [1] and [2].",
			n:       2,
			want:    "See [1](#source-1) and [2](#source-2).",
		},
		{
			name:    "out of range untouched",
			content: "See [3].",
			n:       2,
			want:    "See [3].",
		},
		{
			name:    "no citations",
			content: "See [1].",
			n:       0,
			want:    "See [1].",
		},
		{
			name:    "non numeric untouched",
			content: "a [foo] b",
			n:       5,
			want:    "a [foo] b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkCitationMarkers(tt.content, tt.n); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkCitationMarkersIdempotent(t *testing.T) {
	content := "Answer [1] with detail [2]."
	once := LinkCitationMarkers(content, 2)
	twice := LinkCitationMarkers(once, 2)
	if once != twice {
		t.Fatalf("rewriting is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestCitationKind(t *testing.T) {
	doc := Citation{DocumentID: "d1"}
	if doc.Kind() != KindDocument {
		t.Fatalf("expected document kind, got %s", doc.Kind())
	}
	vid := Citation{DocumentID: "d2", Video: &VideoRef{VideoID: "v1", ClipStart: 3, ClipEnd: 9}}
	if vid.Kind() != KindVideo {
		t.Fatalf("expected video kind, got %s", vid.Kind())
	}
}
