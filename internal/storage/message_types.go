package storage

import (
	"time"

	"resume-ingest-go/internal/types"
)

// DocumentUploadedMessage 文档上传事件，文件内容以base64内联在消息中
type DocumentUploadedMessage struct {
	DocumentID  string             `json:"document_id,omitempty"` // 上游的文档ID，原样带回解析事件
	Kind        types.DocumentKind `json:"kind"`                  // resume / linkedin / text，为空按简历处理
	Filename    string             `json:"filename"`
	MimeType    string             `json:"mime_type,omitempty"`
	Data        string             `json:"data,omitempty"` // base64
	Text        string             `json:"text,omitempty"` // 粘贴的简历文本，仅 resume 使用
	SubmittedAt time.Time          `json:"submitted_at"`
}

// DocumentParsedMessage 文档解析完成事件
type DocumentParsedMessage struct {
	DocumentID  string                     `json:"document_id"`
	Kind        types.DocumentKind         `json:"kind"`
	Filename    string                     `json:"filename"`
	Status      string                     `json:"status"` // parsed 或 failed
	Extraction  *types.ResumeExtraction    `json:"extraction,omitempty"`
	Connections []types.LinkedInConnection `json:"connections,omitempty"`
	Text        string                     `json:"text,omitempty"`
	Warnings    []string                   `json:"warnings"`
	Error       string                     `json:"error,omitempty"`
	ParsedAt    time.Time                  `json:"parsed_at"`
}

// 解析事件状态
const (
	StatusParsed = "parsed"
	StatusFailed = "failed"
)
