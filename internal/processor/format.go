package processor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"resume-ingest-go/internal/types"
)

var (
	magicPDF  = []byte("%PDF-")
	magicZip  = []byte("PK\x03\x04")
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

var extensionFormats = map[string]types.DocumentFormat{
	".pdf":  types.FormatPDF,
	".docx": types.FormatDocx,
	".doc":  types.FormatDoc,
	".csv":  types.FormatCSV,
	".txt":  types.FormatText,
}

var mimeFormats = map[string]types.DocumentFormat{
	"application/pdf": types.FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": types.FormatDocx,
	"application/msword": types.FormatDoc,
	"text/csv":           types.FormatCSV,
	"text/plain":         types.FormatText,
}

// DetectFormat 依次按扩展名、MIME类型、文件头判断文档格式
func DetectFormat(filename, mimeType string, data []byte) types.DocumentFormat {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}

	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if f, ok := mimeFormats[mt]; ok {
		return f
	}

	switch {
	case bytes.HasPrefix(data, magicPDF):
		return types.FormatPDF
	case bytes.HasPrefix(data, magicZip):
		// 只把zip当作DOCX处理，其他OOXML格式提取结果为空
		return types.FormatDocx
	case bytes.HasPrefix(data, magicOLE2):
		return types.FormatDoc
	}
	return types.FormatUnknown
}

// DecodeBase64Payload 解码上传的base64内容。
// 支持 data URL 前缀、标准和URL安全字母表、有无填充，忽略其中的空白字符。
func DecodeBase64Payload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		} else if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return []byte{}, nil
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(s)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("invalid base64 payload: %w", lastErr)
}

// DocumentFromPayload 将JSON请求中的文件转换为原始文档
func DocumentFromPayload(p types.FilePayload) (types.RawDocument, error) {
	data, err := DecodeBase64Payload(p.Data)
	if err != nil {
		return types.RawDocument{}, err
	}
	return types.RawDocument{
		Filename: p.Name,
		MimeType: p.MimeType,
		Data:     data,
	}, nil
}
