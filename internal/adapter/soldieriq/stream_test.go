package soldieriq_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

// sseServer streams the given body as text/event-stream.
func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %q", auth)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range strings.SplitAfter(body, "\n\n") {
			_, _ = io.WriteString(w, frame)
			flusher.Flush()
		}
	}))
}

func collectEvents(t *testing.T, s *soldieriq.Stream) []chat.Event {
	t.Helper()
	var events []chat.Event
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("stream read failed: %v", err)
		}
		events = append(events, ev)
	}
}

func TestChatStreamDeltasAndCompletion(t *testing.T) {
	body := "event: message.delta\ndata: {\"data\":{\"content\":\"Hello\"}}\n\n" +
		"event: message.delta\ndata: {\"data\":{\"content\":\" world\"}}\n\n" +
		"event: run.completed\ndata: {}\n\n"
	srv := sseServer(t, body)
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{
		Message:   "hi",
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}
	defer func() { _ = stream.Close() }()

	events := collectEvents(t, stream)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Kind != chat.EventMessageDelta || events[0].Content != "Hello" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Content != " world" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[2].Kind != chat.EventRunCompleted || !events[2].Terminal() {
		t.Fatalf("expected terminal run.completed, got %+v", events[2])
	}
}

func TestChatStreamDoneSentinelIsNoOp(t *testing.T) {
	body := "event: message.delta\ndata: {\"data\":{\"content\":\"x\"}}\n\n" +
		"data: [DONE]\n\n" +
		"event: message.delta\ndata: {\"data\":{\"content\":\"y\"}}\n\n"
	srv := sseServer(t, body)
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{Message: "q", SessionID: "s"})
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}
	defer func() { _ = stream.Close() }()

	events := collectEvents(t, stream)
	if len(events) != 2 {
		t.Fatalf("[DONE] must not surface as an event, got %d events", len(events))
	}
	if events[0].Content+events[1].Content != "xy" {
		t.Fatalf("content corrupted around [DONE]: %+v", events)
	}
}

func TestChatStreamMalformedPayloadSkipped(t *testing.T) {
	body := "event: message.delta\ndata: {\"data\":{\"content\":\"a\"}}\n\n" +
		"event: message.delta\ndata: {not valid json\n\n" +
		"event: message.delta\ndata: {\"data\":{\"content\":\"b\"}}\n\n"
	srv := sseServer(t, body)
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{Message: "q", SessionID: "s"})
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}
	defer func() { _ = stream.Close() }()

	events := collectEvents(t, stream)
	if len(events) != 2 {
		t.Fatalf("malformed payload must be skipped without aborting, got %d events", len(events))
	}
	if events[0].Content != "a" || events[1].Content != "b" {
		t.Fatalf("surrounding events corrupted: %+v", events)
	}
}

func TestChatStreamUnrecognizedEventIgnored(t *testing.T) {
	body := "event: something.new\ndata: {\"data\":{}}\n\n" +
		"event: run.completed\ndata: {\"data\":{\"status\":\"success\"}}\n\n"
	srv := sseServer(t, body)
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{Message: "q", SessionID: "s"})
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}
	defer func() { _ = stream.Close() }()

	events := collectEvents(t, stream)
	if len(events) != 1 || events[0].Kind != chat.EventRunCompleted {
		t.Fatalf("expected only run.completed, got %+v", events)
	}
}

func TestChatStreamSearchToolCitations(t *testing.T) {
	// The backend double-encodes the result array as a JSON string.
	result := `[{\"file_id\":\"doc1\",\"text\":\"passage\",\"metadata\":{\"file_name\":\"a.pdf\",\"folder_name\":\"intel\",\"score\":0.92,\"file_key\":\"org/intel/a.pdf\"}},` +
		`{\"file_id\":\"vid1\",\"text\":\"\",\"metadata\":{\"file_name\":\"brief.mp4\",\"folder_name\":\"intel\",\"file_key\":\"org/intel/brief.mp4\",\"video_id\":\"v-9\",\"video_name\":\"Brief\",\"clip_start\":12.5,\"clip_end\":31.0,\"scene_id\":\"sc-2\",\"key_frame_timestamp\":14.2,\"keyframe_file_key\":\"org/intel/kf.jpg\"}}]`
	body := "event: tool.completed\ndata: {\"data\":{\"tool_name\":\"search_knowledge_base\",\"result\":\"" + result + "\"}}\n\n"
	srv := sseServer(t, body)
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	stream, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{Message: "q", SessionID: "s"})
	if err != nil {
		t.Fatalf("OpenChatStream failed: %v", err)
	}
	defer func() { _ = stream.Close() }()

	events := collectEvents(t, stream)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	sources := events[0].Sources
	if len(sources) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(sources))
	}

	doc := sources[0]
	if doc.DocumentID != "doc1" || doc.Score != 0.92 || doc.StorageKey != "org/intel/a.pdf" {
		t.Fatalf("unexpected document citation: %+v", doc)
	}
	if doc.Kind() != chat.KindDocument {
		t.Fatalf("expected document kind, got %s", doc.Kind())
	}

	vid := sources[1]
	if vid.Kind() != chat.KindVideo {
		t.Fatalf("expected video kind, got %s", vid.Kind())
	}
	if vid.Score != 0 {
		t.Fatalf("missing score must default to 0, got %v", vid.Score)
	}
	if vid.Text != "" {
		t.Fatalf("missing text must default to empty, got %q", vid.Text)
	}
	if vid.Video.ClipStart != 12.5 || vid.Video.ClipEnd != 31.0 || vid.Video.KeyframeStorageKey != "org/intel/kf.jpg" {
		t.Fatalf("video fields not passed through: %+v", vid.Video)
	}
}

func TestOpenChatStreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	client := soldieriq.NewClient(srv.URL)
	_, err := client.OpenChatStream(context.Background(), "test-token", soldieriq.ChatRequest{Message: "q", SessionID: "s"})
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !errors.Is(err, domain.ErrRequestRejected) {
		t.Fatalf("expected ErrRequestRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Fatalf("error must carry the server detail, got %q", err.Error())
	}
}
