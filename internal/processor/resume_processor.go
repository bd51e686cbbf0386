package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/parser"
	"resume-ingest-go/internal/tracing"
	"resume-ingest-go/internal/types"
)

// Components 聚合处理器依赖的组件，便于集中管理和测试替换
type Components struct {
	Extractors map[types.DocumentFormat]Extractor // 按格式覆盖默认提取器
	Cache      ResultCache                        // 可选
	Tracer     trace.Tracer
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Logger          zerolog.Logger
	SkillPolicy     parser.SkillPolicy
	ReferenceYear   int           // 0 表示使用当前年份
	MaxFileSize     int64         // 字节，0 表示不限制
	Workers         int           // 批量处理并发数
	DocumentTimeout time.Duration // 0 表示不限制
}

// ResumeProcessor 负责格式识别、文本提取、简历解析和结果缓存
type ResumeProcessor struct {
	extractors map[types.DocumentFormat]Extractor
	cache      ResultCache
	tracer     trace.Tracer
	settings   Settings
}

// DefaultExtractors 返回各格式的默认文本提取器
func DefaultExtractors() map[types.DocumentFormat]Extractor {
	return map[types.DocumentFormat]Extractor{
		types.FormatPDF:  parser.ExtractPDFText,
		types.FormatDocx: parser.ExtractDocxText,
		types.FormatDoc:  parser.ExtractDocText,
		types.FormatText: plainText,
		types.FormatCSV:  plainText,
	}
}

func plainText(data []byte) string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, " ")
	}
	return strings.TrimSpace(s)
}

// NewResumeProcessor 根据组件和设置创建处理器，未设置的字段使用默认值
func NewResumeProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ResumeProcessor {
	if comp == nil {
		comp = &Components{}
	}
	if set == nil {
		set = &Settings{Logger: logger.Logger}
	}
	for _, opt := range opts {
		opt(set)
	}

	if set.SkillPolicy == "" {
		set.SkillPolicy = parser.SkillPolicyInferFromText
	}
	if set.Workers <= 0 {
		set.Workers = runtime.NumCPU()
	}

	extractors := DefaultExtractors()
	for format, ex := range comp.Extractors {
		if ex != nil {
			extractors[format] = ex
		}
	}

	tracer := comp.Tracer
	if tracer == nil {
		tracer = tracing.Tracer()
	}

	return &ResumeProcessor{
		extractors: extractors,
		cache:      comp.Cache,
		tracer:     tracer,
		settings:   *set,
	}
}

// CreateProcessor 便捷工厂函数，先应用组件选项再应用设置选项
func CreateProcessor(compOpts []ComponentOpt, setOpts []SettingOpt) *ResumeProcessor {
	components := &Components{}
	settings := &Settings{
		Logger:      logger.Logger,
		SkillPolicy: parser.SkillPolicyInferFromText,
	}

	for _, opt := range compOpts {
		opt(components)
	}
	for _, opt := range setOpts {
		opt(settings)
	}
	return NewResumeProcessor(components, settings)
}

// NewProcessorFromConfig 根据应用配置创建处理器，cache 可以为 nil
func NewProcessorFromConfig(cfg *config.Config, cache ResultCache, log zerolog.Logger) (*ResumeProcessor, error) {
	policy, err := parser.ParseSkillPolicy(cfg.Parser.SkillPolicy)
	if err != nil {
		return nil, err
	}

	compOpts := []ComponentOpt{WithTracer(tracing.Tracer())}
	if cache != nil {
		compOpts = append(compOpts, WithCache(cache))
	}
	setOpts := []SettingOpt{
		WithLogger(log),
		WithSkillPolicy(policy),
		WithReferenceYear(cfg.Parser.ReferenceYear),
		WithMaxFileSize(cfg.MaxFileSizeBytes()),
		WithWorkers(cfg.Parser.Workers),
		WithDocumentTimeout(config.GetDuration(cfg.Parser.DocumentTimeout, 10*time.Second)),
	}
	return CreateProcessor(compOpts, setOpts), nil
}

// SkillPolicy 当前使用的技能推断策略
func (rp *ResumeProcessor) SkillPolicy() parser.SkillPolicy {
	return rp.settings.SkillPolicy
}

// MaxFileSize 单个文件大小上限(字节)，0 表示不限制
func (rp *ResumeProcessor) MaxFileSize() int64 {
	return rp.settings.MaxFileSize
}

// ExtractText 识别文档格式并提取文本。
// 提取为空或超时不是错误，而是通过 warnings 返回；不支持的格式和超出大小限制返回错误。
func (rp *ResumeProcessor) ExtractText(ctx context.Context, doc types.RawDocument) (string, []string, error) {
	_, text, warnings, err := rp.extract(ctx, "", doc)
	return text, warnings, err
}

// ExtractDocument 与 ExtractText 相同，但附带文档ID和识别出的格式
func (rp *ResumeProcessor) ExtractDocument(ctx context.Context, doc types.RawDocument) (*ExtractResult, error) {
	docID := newDocumentID()
	ctx, span := rp.startSpan(ctx, "processor.ExtractDocument", docID, doc)
	defer span.End()

	format, text, warnings, err := rp.extract(ctx, docID, doc)
	if err != nil {
		rp.recordError(span, err)
		return nil, err
	}
	return &ExtractResult{
		DocumentID: docID,
		Format:     format,
		Text:       text,
		Warnings:   nonNil(warnings),
	}, nil
}

func (rp *ResumeProcessor) extract(ctx context.Context, docID string, doc types.RawDocument) (types.DocumentFormat, string, []string, error) {
	if limit := rp.settings.MaxFileSize; limit > 0 && int64(len(doc.Data)) > limit {
		return types.FormatUnknown, "", nil, NewFileTooLargeError(docID, int64(len(doc.Data)), limit)
	}

	format := DetectFormat(doc.Filename, doc.MimeType, doc.Data)
	extractor, ok := rp.extractors[format]
	if format == types.FormatUnknown || !ok {
		return format, "", nil, NewUnsupportedFormatError(docID, fmt.Sprintf("mime=%q", doc.MimeType))
	}

	text, finished := runWithTimeout(ctx, rp.settings.DocumentTimeout, func() string {
		return extractor(doc.Data)
	})
	if !finished {
		rp.settings.Logger.Warn().
			Str("document_id", docID).
			Str("format", string(format)).
			Dur("timeout", rp.settings.DocumentTimeout).
			Msg("文本提取超时")
		return format, "", []string{WarnTimedOut}, nil
	}

	var warnings []string
	switch {
	case text == "" && format == types.FormatPDF:
		warnings = append(warnings, WarnEmptyPDF)
	case text == "" && format == types.FormatDocx:
		warnings = append(warnings, WarnEmptyDocx)
	case text == "" && format == types.FormatDoc:
		warnings = append(warnings, WarnEmptyDoc)
	case format == types.FormatDoc:
		warnings = append(warnings, WarnNoisyDoc)
	}

	rp.settings.Logger.Debug().
		Str("document_id", docID).
		Str("format", string(format)).
		Int("bytes", len(doc.Data)).
		Int("text_len", len(text)).
		Msg("文本提取完成")
	return format, text, warnings, nil
}

// ProcessResume 解析一份简历。粘贴的文本优先于上传的文件；
// 两者都没有可用文本时返回 ErrEmptyInput，错误中携带已收集的提示信息。
func (rp *ResumeProcessor) ProcessResume(ctx context.Context, req ResumeRequest) (*ResumeResult, error) {
	docID := newDocumentID()
	var file types.RawDocument
	if req.File != nil {
		file = *req.File
	}
	ctx, span := rp.startSpan(ctx, "processor.ProcessResume", docID, file)
	defer span.End()

	pasted := strings.TrimSpace(req.Text)

	var (
		warnings []string
		fileText string
		format   types.DocumentFormat
	)
	if len(file.Data) > 0 {
		f, text, w, err := rp.extract(ctx, docID, file)
		switch {
		case err == nil:
			format, fileText = f, text
			warnings = append(warnings, w...)
		case pasted != "" && !errors.Is(err, ErrFileTooLarge):
			// 有粘贴文本时文件问题只作为提示
			warnings = append(warnings, WarningsFromError(err)...)
		default:
			rp.recordError(span, err)
			return nil, err
		}
	}

	if pasted != "" && utf8.RuneCountInString(pasted) < constants.ShortResumeTextThreshold {
		warnings = append(warnings, WarnShortText)
	}

	source, text := "text", pasted
	if text == "" {
		source, text = "file", strings.TrimSpace(fileText)
	}
	if text == "" {
		err := NewEmptyInputError(docID, warnings)
		rp.recordError(span, err)
		return nil, err
	}

	extraction, cached := rp.parseWithCache(ctx, docID, text)
	extraction.Warnings = mergeWarnings(warnings, extraction.Warnings)

	result := &ResumeResult{
		DocumentID:       docID,
		Source:           source,
		SkillPolicy:      rp.settings.SkillPolicy,
		Cached:           cached,
		ResumeExtraction: extraction,
	}
	if source == "file" {
		result.Format = format
	}

	span.SetAttributes(
		attribute.String("resume.source", source),
		attribute.Int("resume.skills", len(extraction.Skills)),
		attribute.Int("resume.warnings", len(extraction.Warnings)),
		attribute.Bool("resume.cached", cached),
	)
	rp.settings.Logger.Info().
		Str("document_id", docID).
		Str("source", source).
		Str("skill_policy", string(rp.settings.SkillPolicy)).
		Int("skills", len(extraction.Skills)).
		Int("warnings", len(extraction.Warnings)).
		Bool("cached", cached).
		Msg("简历解析完成")
	return result, nil
}

// parseWithCache 先查缓存，未命中时解析并写回；缓存故障只记录日志
func (rp *ResumeProcessor) parseWithCache(ctx context.Context, docID, text string) (types.ResumeExtraction, bool) {
	var key string
	if rp.cache != nil {
		key = CacheKey(text, rp.settings.SkillPolicy)
		if cached, err := rp.cache.GetParseResult(ctx, key); err == nil && cached != nil {
			return *cached, true
		} else if err != nil {
			rp.settings.Logger.Debug().Err(err).Str("document_id", docID).Msg("解析结果缓存未命中")
		}
	}

	extraction := parser.ParseResume(text,
		parser.WithSkillPolicy(rp.settings.SkillPolicy),
		parser.WithReferenceYear(rp.settings.ReferenceYear),
	)

	if rp.cache != nil {
		if err := rp.cache.SetParseResult(ctx, key, &extraction); err != nil {
			rp.settings.Logger.Warn().Err(err).Str("document_id", docID).Msg("写入解析结果缓存失败")
		}
	}
	return extraction, false
}

// ProcessLinkedIn 解析 LinkedIn 人脉导出的CSV文件
func (rp *ResumeProcessor) ProcessLinkedIn(ctx context.Context, doc types.RawDocument) (*LinkedInResult, error) {
	docID := newDocumentID()
	ctx, span := rp.startSpan(ctx, "processor.ProcessLinkedIn", docID, doc)
	defer span.End()

	if limit := rp.settings.MaxFileSize; limit > 0 && int64(len(doc.Data)) > limit {
		err := NewFileTooLargeError(docID, int64(len(doc.Data)), limit)
		rp.recordError(span, err)
		return nil, err
	}

	result := &LinkedInResult{
		DocumentID:  docID,
		Connections: []types.LinkedInConnection{},
		Warnings:    []string{},
	}
	if len(bytes.TrimSpace(doc.Data)) == 0 {
		result.Warnings = append(result.Warnings, WarnEmptyLinkedIn)
		return result, nil
	}

	switch DetectFormat(doc.Filename, doc.MimeType, doc.Data) {
	case types.FormatCSV, types.FormatText, types.FormatUnknown:
	default:
		err := NewUnsupportedFormatError(docID, "LinkedIn 导出文件必须是CSV")
		rp.recordError(span, err)
		return nil, err
	}

	connections, finished := runWithTimeout(ctx, rp.settings.DocumentTimeout, func() []types.LinkedInConnection {
		return parser.ParseLinkedInConnections(plainText(doc.Data))
	})
	if !finished {
		result.Warnings = append(result.Warnings, WarnTimedOut)
		return result, nil
	}
	result.Connections = connections

	span.SetAttributes(attribute.Int("linkedin.connections", len(connections)))
	rp.settings.Logger.Info().
		Str("document_id", docID).
		Int("connections", len(connections)).
		Msg("LinkedIn 人脉解析完成")
	return result, nil
}

// ProcessLinkedInText 解析直接粘贴的 LinkedIn CSV 文本
func (rp *ResumeProcessor) ProcessLinkedInText(ctx context.Context, csvText string) (*LinkedInResult, error) {
	return rp.ProcessLinkedIn(ctx, types.RawDocument{
		Filename: "connections.csv",
		MimeType: "text/csv",
		Data:     []byte(csvText),
	})
}

// CacheKey 解析结果缓存键，由解析规则版本、技能策略和文本MD5组成
func CacheKey(text string, policy parser.SkillPolicy) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf(constants.KeyParseResult, constants.ParserVersion, policy, hex.EncodeToString(sum[:]))
}

func (rp *ResumeProcessor) startSpan(ctx context.Context, name, docID string, doc types.RawDocument) (context.Context, trace.Span) {
	return rp.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("document.id", docID),
			attribute.String("document.filename", tracing.SafeFilename(doc.Filename)),
			attribute.Int("document.size", len(doc.Data)),
		),
	)
}

func (rp *ResumeProcessor) recordError(span trace.Span, err error) {
	errType := tracing.ErrorTypeInternal
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		errType = tracing.ErrorTypeUnsupported
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrFileTooLarge):
		errType = tracing.ErrorTypeValidation
	case errors.Is(err, ErrPayloadDecode):
		errType = tracing.ErrorTypeDecode
	}
	tracing.RecordError(span, err, errType)
}

// runWithTimeout 在超时或上下文取消时放弃等待 fn 的结果。
// 提取器不接受 context，超时后 fn 仍会在后台运行至结束。
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() T) (T, bool) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if ctx.Done() == nil {
		return fn(), true
	}

	done := make(chan T, 1)
	go func() {
		done <- fn()
	}()
	select {
	case v := <-done:
		return v, true
	case <-ctx.Done():
		return zero, false
	}
}

// mergeWarnings 按出现顺序合并并去重
func mergeWarnings(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := []string{}
	for _, list := range lists {
		for _, w := range list {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			merged = append(merged, w)
		}
	}
	return merged
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newDocumentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
