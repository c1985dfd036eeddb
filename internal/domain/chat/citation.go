package chat

import (
	"regexp"
	"strconv"
)

// Citation is one retrieved-passage reference returned by the knowledge-base
// search tool. The 1-based position in a turn's Sources slice is the index
// that inline [n] markers in the assistant text refer to.
type Citation struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	FolderName string  `json:"folder_name"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	StorageKey string  `json:"storage_key"`

	// FileURL is the presigned asset URL for StorageKey, filled in after
	// resolution. Empty until resolved.
	FileURL string `json:"file_url,omitempty"`

	// Video is set only for citations into video material.
	Video *VideoRef `json:"video,omitempty"`
}

// VideoRef carries the video-specific fields of a citation.
type VideoRef struct {
	VideoID            string  `json:"video_id"`
	VideoName          string  `json:"video_name,omitempty"`
	ClipStart          float64 `json:"clip_start,omitempty"` // seconds
	ClipEnd            float64 `json:"clip_end,omitempty"`   // seconds
	SceneID            string  `json:"scene_id,omitempty"`
	KeyFrameTimestamp  float64 `json:"key_frame_timestamp,omitempty"`
	KeyframeStorageKey string  `json:"keyframe_storage_key,omitempty"`

	// KeyframeURL is the presigned URL for KeyframeStorageKey, filled in
	// after resolution.
	KeyframeURL string `json:"keyframe_url,omitempty"`
}

// Kind classifies a citation by its source material.
type Kind string

const (
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
)

// Kind returns KindVideo when the citation points into video material.
func (c Citation) Kind() Kind {
	if c.Video != nil {
		return KindVideo
	}
	return KindDocument
}

// DedupeCitations collapses citations that share a DocumentID, keeping the
// entry with the highest score. Order is the first-occurrence order of the
// winning entries. Citations with an empty DocumentID are kept as-is.
func DedupeCitations(in []Citation) []Citation {
	if len(in) == 0 {
		return in
	}
	out := make([]Citation, 0, len(in))
	best := make(map[string]int, len(in)) // document ID -> index into out
	for _, c := range in {
		if c.DocumentID == "" {
			out = append(out, c)
			continue
		}
		if i, seen := best[c.DocumentID]; seen {
			if c.Score > out[i].Score {
				out[i] = c
			}
			continue
		}
		best[c.DocumentID] = len(out)
		out = append(out, c)
	}
	return out
}

// citationMarker matches an inline [n] marker, optionally already in link
// form. The optional link group makes LinkCitationMarkers idempotent.
var citationMarker = regexp.MustCompile(`\[(\d+)\](\(#source-\d+\))?`)

// LinkCitationMarkers rewrites inline [k] markers (1 <= k <= n) into
// [k](#source-k) anchors so a renderer can attach per-citation behavior.
// Markers already in link form and out-of-range indices are left untouched.
// Must only be called on terminal turns; while a turn is still streaming
// the citation set may be incomplete and indices would link wrongly.
func LinkCitationMarkers(content string, n int) string {
	if n <= 0 {
		return content
	}
	return citationMarker.ReplaceAllStringFunc(content, func(m string) string {
		sub := citationMarker.FindStringSubmatch(m)
		if sub[2] != "" {
			return m // already linked
		}
		k, err := strconv.Atoi(sub[1])
		if err != nil || k < 1 || k > n {
			return m
		}
		return "[" + sub[1] + "](#source-" + sub[1] + ")"
	})
}
