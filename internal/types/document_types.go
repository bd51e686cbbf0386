package types

// DocumentFormat 上传文档的格式
type DocumentFormat string

const (
	FormatPDF     DocumentFormat = "pdf"
	FormatDocx    DocumentFormat = "docx"
	FormatDoc     DocumentFormat = "doc"
	FormatCSV     DocumentFormat = "csv"
	FormatText    DocumentFormat = "txt"
	FormatUnknown DocumentFormat = ""
)

// DocumentKind 文档的业务类型
type DocumentKind string

const (
	KindResume   DocumentKind = "resume"
	KindLinkedIn DocumentKind = "linkedin"
	// KindText 只提取文本，不做简历解析
	KindText DocumentKind = "text"
)

// RawDocument 一次上传的原始文档，提取完成后即丢弃
type RawDocument struct {
	Filename string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// FilePayload 以base64传输的文件内容
type FilePayload struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}
