package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scandesk/docproc/internal/common"
	"github.com/scandesk/docproc/internal/llm"
)

// Extract implements llm.StructuredExtractor. The receipt schema is sent as a
// structured-output constraint and the response is re-validated locally; a
// response that narrowly misses the schema is sanitized once when
// LenientFields is set, otherwise the call fails.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"doc_type", req.DocType,
		"text_len", len(req.Text),
		"source", req.SourceHint,
	)

	schema := llm.ReceiptSchema()
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "receipt",
				"schema": schema,
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Text + "\n\nDocument type: " + string(req.DocType)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError("EXTRACTION_EMPTY", "no choices in completion response", common.ErrExtraction)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := llm.ValidateReceipt(content); err != nil {
		if !c.cfg.LenientFields {
			c.logger.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", err, "content", string(content),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, common.NewAppError("SCHEMA_VALIDATION", fmt.Sprintf("schema validation failed: %v", err), common.ErrExtraction)
		}
		cleaned, touched, sErr := llm.SanitizeReceiptJSON(content)
		if sErr != nil {
			c.logger.Error("llm.extract.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, common.NewAppError("SANITIZE_FAILED", fmt.Sprintf("sanitize failed: %v", sErr), common.ErrExtraction)
		}
		if vErr := llm.ValidateReceipt(cleaned); vErr != nil {
			c.logger.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(content),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, common.NewAppError("SCHEMA_VALIDATION", fmt.Sprintf("schema validation failed: %v", vErr), common.ErrExtraction)
		}
		c.logger.Warn("llm.extract.lenient_sanitize_applied",
			"req_id", rid, "touched", touched,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		content = cleaned
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

const systemPrompt = "You are an advanced receipt processing AI. " +
	"Extract structured data from receipt text and format it according to the specified JSON schema. " +
	"Return ONLY JSON that matches the schema."

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("completion response body close error", "error", cerr)
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
