package processor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resume-ingest-go/internal/types"
)

// ProcessBatch 并发处理一批文档，结果顺序与输入一致。
// 单个文档失败记录在对应结果的 Error 中，不影响其他文档；只有上下文取消时返回错误。
func (rp *ResumeProcessor) ProcessBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rp.settings.Workers)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = rp.processItem(gctx, item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	rp.settings.Logger.Info().
		Int("documents", len(items)).
		Int("workers", rp.settings.Workers).
		Msg("批量处理完成")
	return results, nil
}

func (rp *ResumeProcessor) processItem(ctx context.Context, item BatchItem) BatchResult {
	kind := item.Kind
	if kind == "" {
		kind = types.KindResume
	}
	res := BatchResult{Filename: item.Document.Filename, Kind: kind}

	var err error
	switch kind {
	case types.KindResume:
		doc := item.Document
		res.Resume, err = rp.ProcessResume(ctx, ResumeRequest{File: &doc})
	case types.KindLinkedIn:
		res.LinkedIn, err = rp.ProcessLinkedIn(ctx, item.Document)
	case types.KindText:
		res.Extract, err = rp.ExtractDocument(ctx, item.Document)
	default:
		err = fmt.Errorf("未知的文档类型: %q", kind)
	}

	if err != nil {
		res.Error = err.Error()
		res.Warnings = WarningsFromError(err)
		rp.settings.Logger.Warn().
			Err(err).
			Str("kind", string(kind)).
			Msg("批量处理中的文档失败")
	}
	return res
}
