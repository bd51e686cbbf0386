package handler_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/storage"
	"resume-ingest-go/internal/types"
)

type publishedMessage struct {
	exchange   string
	routingKey string
	msg        storage.DocumentParsedMessage
}

// fakePublisher 记录发布的消息，可模拟发布失败
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (f *fakePublisher) PublishJSON(_ context.Context, exchange, routingKey string, data interface{}, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	msg, ok := data.(storage.DocumentParsedMessage)
	if !ok {
		return errors.New("unexpected message type")
	}
	f.published = append(f.published, publishedMessage{exchange, routingKey, msg})
	return nil
}

func newTestConsumer(pub handler.Publisher) *handler.IngestConsumer {
	p := processor.CreateProcessor(nil, []processor.SettingOpt{
		processor.WithLogger(logger.Nop()),
		processor.WithReferenceYear(2025),
	})
	return handler.NewIngestConsumer(p, pub, config.RabbitMQConfig{
		DocumentEventsExchange: "document.events",
		ParsedRoutingKey:       "document.parsed",
		UploadedQueue:          "q.document_uploaded",
	})
}

func uploadedBody(t *testing.T, msg storage.DocumentUploadedMessage) []byte {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func TestIngestConsumer_Resume(t *testing.T) {
	pub := &fakePublisher{}
	ic := newTestConsumer(pub)

	ok := ic.HandleMessage(context.Background(), uploadedBody(t, storage.DocumentUploadedMessage{
		DocumentID: "doc-1",
		Kind:       types.KindResume,
		Filename:   "cv.txt",
		Data:       base64.StdEncoding.EncodeToString([]byte(handlerTestResume)),
	}))
	require.True(t, ok)
	require.Len(t, pub.published, 1)

	got := pub.published[0]
	assert.Equal(t, "document.events", got.exchange)
	assert.Equal(t, "document.parsed", got.routingKey)
	assert.Equal(t, "doc-1", got.msg.DocumentID, "应带回上游的文档ID")
	assert.Equal(t, storage.StatusParsed, got.msg.Status)
	require.NotNil(t, got.msg.Extraction)
	assert.Equal(t, "Priya Patel", got.msg.Extraction.Profile.Name)
	assert.False(t, got.msg.ParsedAt.IsZero())
}

func TestIngestConsumer_LinkedIn(t *testing.T) {
	pub := &fakePublisher{}
	ic := newTestConsumer(pub)

	ok := ic.HandleMessage(context.Background(), uploadedBody(t, storage.DocumentUploadedMessage{
		Kind:     types.KindLinkedIn,
		Filename: "Connections.csv",
		Data:     base64.StdEncoding.EncodeToString([]byte("First Name,Last Name\nAda,Lovelace\n")),
	}))
	require.True(t, ok)
	require.Len(t, pub.published, 1)

	got := pub.published[0].msg
	assert.NotEmpty(t, got.DocumentID, "上游未提供ID时使用生成的ID")
	require.Len(t, got.Connections, 1)
	assert.Equal(t, "Ada", got.Connections[0].FirstName)
}

func TestIngestConsumer_FailedDocumentIsPublished(t *testing.T) {
	pub := &fakePublisher{}
	ic := newTestConsumer(pub)

	ok := ic.HandleMessage(context.Background(), uploadedBody(t, storage.DocumentUploadedMessage{
		DocumentID: "doc-2",
		Filename:   "photo.png",
		Data:       base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}),
	}))
	require.True(t, ok, "文档本身的问题不应导致重新入队")
	require.Len(t, pub.published, 1)

	got := pub.published[0].msg
	assert.Equal(t, storage.StatusFailed, got.Status)
	assert.Equal(t, types.KindResume, got.Kind)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, []string{processor.WarnUnsupportedFile}, got.Warnings)
}

func TestIngestConsumer_BadBase64(t *testing.T) {
	pub := &fakePublisher{}
	ic := newTestConsumer(pub)

	ok := ic.HandleMessage(context.Background(), uploadedBody(t, storage.DocumentUploadedMessage{
		DocumentID: "doc-3",
		Filename:   "cv.pdf",
		Data:       "%%%",
	}))
	require.True(t, ok)
	require.Len(t, pub.published, 1)
	assert.Equal(t, storage.StatusFailed, pub.published[0].msg.Status)
}

func TestIngestConsumer_UndecodableMessageIsDropped(t *testing.T) {
	pub := &fakePublisher{}
	ic := newTestConsumer(pub)

	assert.True(t, ic.HandleMessage(context.Background(), []byte("{broken")))
	assert.Empty(t, pub.published)
}

func TestIngestConsumer_PublishFailureRequeues(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	ic := newTestConsumer(pub)

	ok := ic.HandleMessage(context.Background(), uploadedBody(t, storage.DocumentUploadedMessage{
		Kind: types.KindResume,
		Text: handlerTestResume,
	}))
	assert.False(t, ok)
}
