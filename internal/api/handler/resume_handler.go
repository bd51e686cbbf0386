package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"

	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/tracing"
)

// ResumeHandler 处理简历解析、文本提取和 LinkedIn 导出解析请求
type ResumeHandler struct {
	processor *processor.ResumeProcessor
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(p *processor.ResumeProcessor) *ResumeHandler {
	return &ResumeHandler{processor: p}
}

// HandleResumeParse POST /api/v1/resume/parse
func (h *ResumeHandler) HandleResumeParse(ctx context.Context, c *app.RequestContext) {
	text, file, err := readDocumentRequest(c, h.processor.MaxFileSize())
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	res, err := h.processor.ProcessResume(ctx, processor.ResumeRequest{Text: text, File: file})
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, res)
}

// HandleDocumentExtract POST /api/v1/documents/extract，只返回提取的原始文本
func (h *ResumeHandler) HandleDocumentExtract(ctx context.Context, c *app.RequestContext) {
	_, file, err := readDocumentRequest(c, h.processor.MaxFileSize())
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if file == nil {
		h.writeError(ctx, c, processor.NewEmptyInputError("", []string{"No file provided for extraction."}))
		return
	}

	res, err := h.processor.ExtractDocument(ctx, *file)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, res)
}

// HandleLinkedInParse POST /api/v1/linkedin/parse，文件优先于粘贴的CSV文本
func (h *ResumeHandler) HandleLinkedInParse(ctx context.Context, c *app.RequestContext) {
	text, file, err := readDocumentRequest(c, h.processor.MaxFileSize())
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	var res *processor.LinkedInResult
	if file != nil {
		res, err = h.processor.ProcessLinkedIn(ctx, *file)
	} else {
		res, err = h.processor.ProcessLinkedInText(ctx, text)
	}
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, res)
}

// HandleHealth GET /api/v1/health
func (h *ResumeHandler) HandleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":         "ok",
		"parser_version": constants.ParserVersion,
		"skill_policy":   h.processor.SkillPolicy(),
	})
}

func (h *ResumeHandler) writeError(ctx context.Context, c *app.RequestContext, err error) {
	status := statusForError(err)
	warnings := processor.WarningsFromError(err)
	if warnings == nil {
		warnings = []string{}
	}

	message := err.Error()
	if len(warnings) > 0 {
		message = strings.Join(warnings, " ")
	}

	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)

	event := logger.Ctx(ctx).Warn()
	if status >= consts.StatusInternalServerError {
		event = logger.Ctx(ctx).Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", string(c.Path())).
		Msg("请求处理失败")

	c.JSON(status, utils.H{
		"error":    message,
		"warnings": warnings,
	})
}
