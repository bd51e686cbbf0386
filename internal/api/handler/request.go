package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/types"
)

// DocumentRequest JSON 请求体，文件内容为 base64
type DocumentRequest struct {
	Text string             `json:"text,omitempty"`
	File *types.FilePayload `json:"file,omitempty"`
}

// readDocumentRequest 同时支持 JSON 和 multipart/form-data 两种请求。
// 返回的 file 为 nil 表示请求中没有文件。
func readDocumentRequest(c *app.RequestContext, maxFileSize int64) (string, *types.RawDocument, error) {
	if bytes.HasPrefix(bytes.ToLower(c.ContentType()), []byte("multipart/form-data")) {
		return readMultipart(c, maxFileSize)
	}

	var req DocumentRequest
	if body := c.Request.Body(); len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return "", nil, processor.NewDecodeError("", fmt.Sprintf("请求体不是合法的JSON: %v", err))
		}
	}
	if req.File == nil || strings.TrimSpace(req.File.Data) == "" {
		return req.Text, nil, nil
	}

	doc, err := processor.DocumentFromPayload(*req.File)
	if err != nil {
		return "", nil, processor.NewDecodeError("", err.Error())
	}
	return req.Text, &doc, nil
}

func readMultipart(c *app.RequestContext, maxFileSize int64) (string, *types.RawDocument, error) {
	text := string(c.FormValue("text"))

	fh, err := c.FormFile("file")
	if err != nil {
		// 没有文件字段时只使用文本
		return text, nil, nil
	}
	if maxFileSize > 0 && fh.Size > maxFileSize {
		return "", nil, processor.NewFileTooLargeError("", fh.Size, maxFileSize)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if len(data) == 0 {
		return text, nil, nil
	}

	return text, &types.RawDocument{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// statusForError 将处理错误映射为 HTTP 状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, processor.ErrFileTooLarge):
		return consts.StatusRequestEntityTooLarge
	case errors.Is(err, processor.ErrUnsupportedFormat):
		return consts.StatusUnsupportedMediaType
	case errors.Is(err, processor.ErrEmptyInput), errors.Is(err, processor.ErrPayloadDecode):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}
