// Package capture turns externally captured text (clipboard watchers, editor
// plugins) into stored snippets.
package capture

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/ops"
	"github.com/offstack/offstack/internal/snippet"
)

// Payload is one capture event as produced by a capture source.
type Payload struct {
	Text      string  `json:"text"`
	IsCode    bool    `json:"is_code"`
	SourceApp *string `json:"source_app,omitempty"`
	Platform  string  `json:"platform,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Ingestor converts capture payloads into snippets. Each ingested payload
// produces exactly one signal: OnSnippet for a stored snippet, OnError for a
// rejected payload. Failed payloads are dropped, never retried.
type Ingestor struct {
	DB  *sql.DB
	Cfg *config.Config

	// OnSnippet is called with the stored snippet. Optional.
	OnSnippet func(*snippet.Snippet)

	// OnError is called with a human-readable reason. Optional.
	OnError func(reason string)
}

// Ingest derives a snippet from the payload and stores it. The title is the
// first non-empty line of the text; the language is guessed for code
// payloads and "unknown" otherwise.
func (in *Ingestor) Ingest(ctx context.Context, p Payload) {
	text := p.Text
	if strings.TrimSpace(text) == "" {
		in.fail("capture payload has no text")
		return
	}

	language := "unknown"
	if p.IsCode {
		language = snippet.GuessLanguage(text)
	}

	input := ops.CreateInput{
		Title:    snippet.DeriveTitle(text),
		Code:     text,
		Language: language,
		Tags:     provenanceTags(p),
	}

	out, err := ops.Create(ctx, in.DB, in.Cfg, input)
	if err != nil {
		in.fail("capture rejected: " + err.Error())
		return
	}
	if in.OnSnippet != nil {
		in.OnSnippet(out.Snippet)
	}
}

// IngestJSON decodes a raw capture event and ingests it. Malformed JSON is
// reported through OnError like any other bad payload.
func (in *Ingestor) IngestJSON(ctx context.Context, data []byte) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		in.fail("capture payload is not valid JSON: " + err.Error())
		return
	}
	in.Ingest(ctx, p)
}

func (in *Ingestor) fail(reason string) {
	if in.OnError != nil {
		in.OnError(reason)
	}
}

// provenanceTags records where a capture came from.
func provenanceTags(p Payload) []string {
	tags := []string{"captured"}
	if p.SourceApp != nil && *p.SourceApp != "" {
		tags = append(tags, "source:"+*p.SourceApp)
	}
	if p.Platform != "" {
		tags = append(tags, "platform:"+p.Platform)
	}
	return tags
}
