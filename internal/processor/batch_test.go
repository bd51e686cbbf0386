package processor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ingest-go/internal/types"
)

func TestProcessBatch(t *testing.T) {
	rp := newTestProcessor(nil, WithWorkers(2))

	items := []BatchItem{
		{Kind: types.KindResume, Document: *textFile("jordan.txt", testResume)},
		{Kind: types.KindLinkedIn, Document: *textFile("Connections.csv", "First Name,Last Name\nAda,Lovelace\n")},
		{Kind: types.KindText, Document: types.RawDocument{Filename: "cv.pdf", Data: []byte("BT (Hello) Tj ET")}},
		{Kind: types.KindResume, Document: types.RawDocument{Filename: "photo.png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		{Kind: "invoice", Document: *textFile("a.txt", "x")},
		{Document: *textFile("default.txt", testResume)},
	}

	results, err := rp.ProcessBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, len(items))

	for i, item := range items {
		assert.Equal(t, item.Document.Filename, results[i].Filename, "结果顺序应与输入一致")
	}

	require.NotNil(t, results[0].Resume)
	assert.Equal(t, "Jordan Smith", results[0].Resume.Profile.Name)
	assert.Equal(t, types.FormatText, results[0].Resume.Format)

	require.NotNil(t, results[1].LinkedIn)
	require.Len(t, results[1].LinkedIn.Connections, 1)
	assert.Equal(t, "Lovelace", results[1].LinkedIn.Connections[0].LastName)

	require.NotNil(t, results[2].Extract)
	assert.Equal(t, "Hello", results[2].Extract.Text)

	assert.Nil(t, results[3].Resume)
	assert.NotEmpty(t, results[3].Error)
	assert.Equal(t, []string{WarnUnsupportedFile}, results[3].Warnings)

	assert.Contains(t, results[4].Error, "invoice")

	assert.Equal(t, types.KindResume, results[5].Kind, "未指定类型时按简历处理")
	assert.NotNil(t, results[5].Resume)
}

func TestProcessBatch_RespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	slow := func([]byte) string {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return "text"
	}
	rp := newTestProcessor([]ComponentOpt{WithExtractor(types.FormatText, slow)}, WithWorkers(2))

	items := make([]BatchItem, 8)
	for i := range items {
		items[i] = BatchItem{Kind: types.KindText, Document: *textFile("n.txt", "x")}
	}

	results, err := rp.ProcessBatch(context.Background(), items)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestProcessBatch_Canceled(t *testing.T) {
	rp := newTestProcessor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rp.ProcessBatch(ctx, []BatchItem{{Kind: types.KindText, Document: *textFile("a.txt", "x")}})
	assert.ErrorIs(t, err, context.Canceled)
}
