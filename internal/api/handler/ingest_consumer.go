package handler

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/storage"
	"resume-ingest-go/internal/tracing"
	"resume-ingest-go/internal/types"
)

// Publisher 发布解析事件
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

// IngestConsumer 消费文档上传事件，解析后发布解析完成事件
type IngestConsumer struct {
	processor *processor.ResumeProcessor
	publisher Publisher
	cfg       config.RabbitMQConfig
	tracer    trace.Tracer
}

// NewIngestConsumer 创建上传事件消费者
func NewIngestConsumer(p *processor.ResumeProcessor, pub Publisher, cfg config.RabbitMQConfig) *IngestConsumer {
	return &IngestConsumer{
		processor: p,
		publisher: pub,
		cfg:       cfg,
		tracer:    tracing.Tracer(),
	}
}

// Start 在上传队列上启动消费者
func (ic *IngestConsumer) Start(mq storage.MessageQueue) (func(), error) {
	return mq.StartConsumer(ic.cfg.UploadedQueue, ic.cfg.PrefetchCount, ic.HandleMessage)
}

// HandleMessage 处理一条上传事件。
// 返回 false 时消息重新入队，只在发布解析事件失败时发生；无法解析的消息确认后丢弃。
func (ic *IngestConsumer) HandleMessage(ctx context.Context, body []byte) bool {
	ctx, span := ic.tracer.Start(ctx, "ingest.HandleMessage", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var msg storage.DocumentUploadedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDecode)
		logger.Ctx(ctx).Error().
			Err(err).
			Str("body", tracing.TruncateString(string(body), tracing.MaxTextLength)).
			Msg("无法解析的上传事件，已丢弃")
		return true
	}
	if msg.Kind == "" {
		msg.Kind = types.KindResume
	}
	span.SetAttributes(
		attribute.String("document.id", msg.DocumentID),
		attribute.String("document.kind", string(msg.Kind)),
		attribute.String("document.filename", tracing.SafeFilename(msg.Filename)),
	)

	parsed := ic.process(ctx, msg)
	if err := ic.publisher.PublishJSON(ctx, ic.cfg.DocumentEventsExchange, ic.cfg.ParsedRoutingKey, parsed, true); err != nil {
		pubErr := processor.NewPublishError(parsed.DocumentID, err.Error())
		tracing.RecordRabbitMQNack(span, parsed.DocumentID, pubErr.Error())
		logger.Ctx(ctx).Error().
			Err(pubErr).
			Str("document_id", parsed.DocumentID).
			Msg("发布解析事件失败，消息将重新入队")
		return false
	}

	logger.Ctx(ctx).Info().
		Str("document_id", parsed.DocumentID).
		Str("kind", string(parsed.Kind)).
		Str("status", parsed.Status).
		Int("warnings", len(parsed.Warnings)).
		Msg("上传事件处理完成")
	return true
}

func (ic *IngestConsumer) process(ctx context.Context, msg storage.DocumentUploadedMessage) storage.DocumentParsedMessage {
	out := storage.DocumentParsedMessage{
		DocumentID: msg.DocumentID,
		Kind:       msg.Kind,
		Filename:   msg.Filename,
		Status:     storage.StatusParsed,
		Warnings:   []string{},
	}
	fail := func(err error) storage.DocumentParsedMessage {
		out.Status = storage.StatusFailed
		out.Error = err.Error()
		if w := processor.WarningsFromError(err); w != nil {
			out.Warnings = w
		}
		out.ParsedAt = time.Now().UTC()
		return out
	}

	var file *types.RawDocument
	if msg.Data != "" {
		doc, err := processor.DocumentFromPayload(types.FilePayload{Name: msg.Filename, MimeType: msg.MimeType, Data: msg.Data})
		if err != nil {
			return fail(processor.NewDecodeError(msg.DocumentID, err.Error()))
		}
		file = &doc
	}

	switch msg.Kind {
	case types.KindResume:
		res, err := ic.processor.ProcessResume(ctx, processor.ResumeRequest{Text: msg.Text, File: file})
		if err != nil {
			return fail(err)
		}
		if out.DocumentID == "" {
			out.DocumentID = res.DocumentID
		}
		extraction := res.ResumeExtraction
		out.Extraction = &extraction
		out.Warnings = res.Warnings
	case types.KindLinkedIn:
		var (
			res *processor.LinkedInResult
			err error
		)
		if file != nil {
			res, err = ic.processor.ProcessLinkedIn(ctx, *file)
		} else {
			res, err = ic.processor.ProcessLinkedInText(ctx, msg.Text)
		}
		if err != nil {
			return fail(err)
		}
		if out.DocumentID == "" {
			out.DocumentID = res.DocumentID
		}
		out.Connections = res.Connections
		out.Warnings = res.Warnings
	case types.KindText:
		if file == nil {
			return fail(processor.NewEmptyInputError(msg.DocumentID, nil))
		}
		res, err := ic.processor.ExtractDocument(ctx, *file)
		if err != nil {
			return fail(err)
		}
		if out.DocumentID == "" {
			out.DocumentID = res.DocumentID
		}
		out.Text = res.Text
		out.Warnings = res.Warnings
	default:
		return fail(processor.NewUnsupportedFormatError(msg.DocumentID, "未知的文档类型: "+string(msg.Kind)))
	}

	out.ParsedAt = time.Now().UTC()
	return out
}
