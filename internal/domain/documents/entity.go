package documents

import "time"

// DocumentID identifier type
type DocumentID string

// Entity is one structured item recognized inside a document by the
// extraction service.
type Entity struct {
	Type        string  `json:"type"`
	MentionText string  `json:"mentionText"`
	Confidence  float64 `json:"confidence"`
}

// Table summarizes a table recognized inside a document.
type Table struct {
	HeaderRows int `json:"headerRows"`
	BodyRows   int `json:"bodyRows"`
}

// Document is an uploaded source file plus whatever the extraction
// service pulled out of it.
type Document struct {
	ID            DocumentID `json:"id"`
	FileName      string     `json:"fileName"`
	StorageKey    string     `json:"storageKey"`
	UploadedBy    string     `json:"uploadedBy"`
	UploadedAt    time.Time  `json:"uploadedAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	ExtractedText string     `json:"extractedText,omitempty"`
	Entities      []Entity   `json:"entities,omitempty"`
	Tables        []Table    `json:"tables,omitempty"`
	Status        string     `json:"status"` // pending | processing | completed | failed
	MimeType      string     `json:"mimeType,omitempty"`
	Confidence    float64    `json:"confidence,omitempty"`
}

// Extraction is the raw result of one extraction-service call.
type Extraction struct {
	Text       string
	Entities   []Entity
	Tables     []Table
	Confidence float64
}
