package soldieriq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
)

// ChatRequest is the wire body for POST /api/chat.
type ChatRequest struct {
	Message        string     `json:"message"`
	DocumentIDs    []string   `json:"document_ids,omitempty"`
	FileNames      []string   `json:"file_names,omitempty"`
	SessionID      string     `json:"session_id"`
	Model          string     `json:"model,omitempty"`
	TAKCredentials *TAKConfig `json:"tak_credentials,omitempty"`
}

// Stream is one open chat response stream. It is not safe for concurrent
// use; a session reads it from a single consumer loop.
type Stream struct {
	body   io.ReadCloser
	frames *frameReader
}

// streamClient has no overall timeout: a chat stream stays open as long as
// the model generates. Liveness is the consumer's job (inactivity window).
var streamClient = &http.Client{
	Transport: otelhttp.NewTransport(http.DefaultTransport),
}

// OpenChatStream sends a chat request and returns the SSE response stream.
// Non-2xx responses are mapped to domain.ErrRequestRejected carrying the
// backend's detail; no stream is opened in that case.
func (c *Client) OpenChatStream(ctx context.Context, token string, req ChatRequest) (*Stream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open chat stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, rejectionError(resp.StatusCode, data)
	}

	return &Stream{body: resp.Body, frames: newFrameReader(resp.Body)}, nil
}

// Next returns the next chat event. It blocks until an event arrives, the
// stream ends (io.EOF), or the read fails. Sentinel [DONE] frames and
// malformed payloads never surface: the former are silent continuation
// markers, the latter are logged and skipped.
func (s *Stream) Next() (chat.Event, error) {
	for {
		raw, err := s.frames.next()
		if err != nil {
			return chat.Event{}, err
		}

		if raw.Data == "[DONE]" {
			// Continuation marker, not a terminal signal. Termination is
			// run.completed, a terminal error event, or end of stream.
			continue
		}

		ev, ok := decodeEvent(raw)
		if !ok {
			continue
		}
		return ev, nil
	}
}

// Close releases the underlying response body. Reads in flight fail and
// the consumer loop exits.
func (s *Stream) Close() error {
	return s.body.Close()
}

// wirePayload is the JSON carried by a data: line.
type wirePayload struct {
	Data struct {
		Content   string          `json:"content"`
		ToolName  string          `json:"tool_name"`
		ToolArgs  json.RawMessage `json:"tool_args"`
		Result    json.RawMessage `json:"result"`
		Error     string          `json:"error"`
		ErrorType string          `json:"error_type"`
		RunID     string          `json:"run_id"`
		Status    string          `json:"status"`
	} `json:"data"`
}

// decodeEvent maps a raw SSE frame onto a domain event. ok=false means the
// frame must be skipped (unrecognized type or unparsable payload); decoding
// problems never abort the stream.
func decodeEvent(raw rawEvent) (chat.Event, bool) {
	kind := chat.EventKind(raw.Type)
	switch kind {
	case chat.EventRunStarted, chat.EventMessageDelta, chat.EventToolStarted,
		chat.EventToolCompleted, chat.EventMessageCompleted, chat.EventRunCompleted,
		chat.EventError:
	default:
		slog.Debug("skipping unrecognized stream event", "type", raw.Type)
		return chat.Event{}, false
	}

	var payload wirePayload
	if err := json.Unmarshal([]byte(raw.Data), &payload); err != nil {
		slog.Warn("skipping malformed stream payload", "type", raw.Type, "error", err)
		return chat.Event{}, false
	}

	ev := chat.Event{
		Kind:     kind,
		Content:  payload.Data.Content,
		ToolName: payload.Data.ToolName,
		Err:      payload.Data.Error,
		RunID:    payload.Data.RunID,
	}

	if kind == chat.EventToolCompleted && payload.Data.ToolName == chat.SearchToolName {
		sources, err := decodeSearchResult(payload.Data.Result)
		if err != nil {
			slog.Warn("skipping unparsable search result", "error", err)
			return chat.Event{}, false
		}
		ev.Sources = sources
	}

	return ev, true
}

// searchRecord is one element of the knowledge-base search tool result.
type searchRecord struct {
	FileID   string `json:"file_id"`
	Text     string `json:"text"`
	Metadata struct {
		FileName          string  `json:"file_name"`
		FolderName        string  `json:"folder_name"`
		Score             float64 `json:"score"`
		FileKey           string  `json:"file_key"`
		VideoID           string  `json:"video_id"`
		VideoName         string  `json:"video_name"`
		ClipStart         float64 `json:"clip_start"`
		ClipEnd           float64 `json:"clip_end"`
		SceneID           string  `json:"scene_id"`
		KeyFrameTimestamp float64 `json:"key_frame_timestamp"`
		KeyframeFileKey   string  `json:"keyframe_file_key"`
	} `json:"metadata"`
}

// decodeSearchResult parses the tool result into citations. The backend
// double-encodes the array as a JSON string inside the payload; a directly
// embedded array is accepted too.
func decodeSearchResult(result json.RawMessage) ([]chat.Citation, error) {
	if len(result) == 0 {
		return nil, nil
	}

	raw := []byte(result)
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		raw = []byte(inner)
	}

	var records []searchRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode search result array: %w", err)
	}

	citations := make([]chat.Citation, 0, len(records))
	for _, r := range records {
		c := chat.Citation{
			DocumentID: r.FileID,
			Filename:   r.Metadata.FileName,
			FolderName: r.Metadata.FolderName,
			Text:       r.Text,
			Score:      r.Metadata.Score,
			StorageKey: r.Metadata.FileKey,
		}
		if r.Metadata.VideoID != "" {
			c.Video = &chat.VideoRef{
				VideoID:            r.Metadata.VideoID,
				VideoName:          r.Metadata.VideoName,
				ClipStart:          r.Metadata.ClipStart,
				ClipEnd:            r.Metadata.ClipEnd,
				SceneID:            r.Metadata.SceneID,
				KeyFrameTimestamp:  r.Metadata.KeyFrameTimestamp,
				KeyframeStorageKey: r.Metadata.KeyframeFileKey,
			}
		}
		citations = append(citations, c)
	}
	return citations, nil
}
