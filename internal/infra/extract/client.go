package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinicase/clinicase/internal/domain/documents"
)

// Client implements the Extractor port against the managed document
// extraction service (OCR + entity recognition). The service accepts
// base64 content and returns extracted text, entities, and tables.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type extractRequest struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type extractResponse struct {
	Text     string `json:"text"`
	Entities []struct {
		Type        string  `json:"type"`
		MentionText string  `json:"mentionText"`
		Confidence  float64 `json:"confidence"`
	} `json:"entities"`
	Tables []struct {
		HeaderRows int `json:"headerRows"`
		BodyRows   int `json:"bodyRows"`
	} `json:"tables"`
}

func (c *Client) Extract(ctx context.Context, content []byte, mimeType string) (*documents.Extraction, error) {
	body, err := json.Marshal(extractRequest{
		Content:  base64.StdEncoding.EncodeToString(content),
		MimeType: mimeType,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction service: %s: %s", resp.Status, snippet)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}

	ext := &documents.Extraction{Text: out.Text}
	sum := 0.0
	for _, e := range out.Entities {
		ext.Entities = append(ext.Entities, documents.Entity{
			Type:        e.Type,
			MentionText: e.MentionText,
			Confidence:  e.Confidence,
		})
		sum += e.Confidence
	}
	for _, t := range out.Tables {
		ext.Tables = append(ext.Tables, documents.Table{HeaderRows: t.HeaderRows, BodyRows: t.BodyRows})
	}
	if len(out.Entities) > 0 {
		ext.Confidence = sum / float64(len(out.Entities))
	}
	return ext, nil
}
