package processor

import (
	"context"

	"resume-ingest-go/internal/parser"
	"resume-ingest-go/internal/types"
)

// 处理器产生的提示信息
const (
	WarnEmptyPDF        = "PDF text extraction returned empty output."
	WarnEmptyDocx       = "DOCX text extraction returned empty output."
	WarnEmptyDoc        = "DOC text extraction returned empty output."
	WarnNoisyDoc        = "DOC extraction is best-effort; text may be noisy."
	WarnUnsupportedFile = "Unsupported file type for extraction."
	WarnShortText       = "Resume text is short; extraction accuracy may be reduced."
	WarnNoInput         = "Resume text is empty. Provide text or a supported file."
	WarnEmptyLinkedIn   = "LinkedIn file is empty."
	WarnTimedOut        = "Document processing timed out; no text was extracted."
)

// Extractor 从原始字节中提取文本，不返回错误，失败时返回空字符串
type Extractor func(data []byte) string

// ResultCache 简历解析结果缓存。
// 未命中时 GetParseResult 返回错误，调用方不区分未命中和缓存故障。
type ResultCache interface {
	GetParseResult(ctx context.Context, key string) (*types.ResumeExtraction, error)
	SetParseResult(ctx context.Context, key string, result *types.ResumeExtraction) error
}

// ResumeRequest 一次简历解析请求，Text 和 File 至少提供一个
type ResumeRequest struct {
	Text string
	File *types.RawDocument
}

// ResumeResult 简历解析结果
type ResumeResult struct {
	DocumentID  string               `json:"document_id"`
	Source      string               `json:"source"` // text 或 file
	Format      types.DocumentFormat `json:"format,omitempty"`
	SkillPolicy parser.SkillPolicy   `json:"skill_policy"`
	Cached      bool                 `json:"cached"`
	types.ResumeExtraction
}

// ExtractResult 纯文本提取结果
type ExtractResult struct {
	DocumentID string               `json:"document_id"`
	Format     types.DocumentFormat `json:"format"`
	Text       string               `json:"text"`
	Warnings   []string             `json:"warnings"`
}

// LinkedInResult LinkedIn人脉导出解析结果
type LinkedInResult struct {
	DocumentID  string                     `json:"document_id"`
	Connections []types.LinkedInConnection `json:"connections"`
	Warnings    []string                   `json:"warnings"`
}

// BatchItem 批量处理中的一个文档
type BatchItem struct {
	Kind     types.DocumentKind
	Document types.RawDocument
}

// BatchResult 批量处理中一个文档的结果，Error 非空时其余结果字段为空
type BatchResult struct {
	Filename string             `json:"filename"`
	Kind     types.DocumentKind `json:"kind"`
	Resume   *ResumeResult      `json:"resume,omitempty"`
	LinkedIn *LinkedInResult    `json:"linkedin,omitempty"`
	Extract  *ExtractResult     `json:"extract,omitempty"`
	Error    string             `json:"error,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}
