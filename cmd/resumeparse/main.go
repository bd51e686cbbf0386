// resumeparse 在本地解析简历、LinkedIn 导出或任意文档，结果以 JSON 输出到 stdout。
//
//	resumeparse [--kind resume|linkedin|text] [--policy infer|section] [--year N] [--maxlen N] files...
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/parser"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/types"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("resumeparse", pflag.ContinueOnError)
	kind := flags.StringP("kind", "k", string(types.KindResume), "document kind: resume, linkedin or text")
	policy := flags.StringP("policy", "p", string(parser.SkillPolicyInferFromText), "skill policy: infer or section")
	year := flags.IntP("year", "y", 0, "reference year for years of experience (0 = current year)")
	maxLen := flags.Int64("maxlen", 10, "max file size in MB (0 = unlimited)")
	workers := flags.IntP("workers", "w", 0, "parallel workers (0 = number of CPUs)")
	timeout := flags.Duration("timeout", 10*time.Second, "per-document timeout")
	verbose := flags.BoolP("verbose", "v", false, "debug logging to stderr")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: resumeparse [flags] files...")
		flags.PrintDefaults()
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.Init(logger.Config{Level: level, Format: "pretty", Output: os.Stderr})

	skillPolicy, err := parser.ParseSkillPolicy(*policy)
	if err != nil {
		logger.Error().Err(err).Msg("无效的技能策略")
		return 2
	}
	docKind := types.DocumentKind(*kind)
	switch docKind {
	case types.KindResume, types.KindLinkedIn, types.KindText:
	default:
		logger.Error().Str("kind", *kind).Msg("无效的文档类型")
		return 2
	}

	items := make([]processor.BatchItem, 0, flags.NArg())
	for _, path := range flags.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("读取文件失败")
			return 1
		}
		items = append(items, processor.BatchItem{
			Kind: docKind,
			Document: types.RawDocument{
				Filename: filepath.Base(path),
				MimeType: mime.TypeByExtension(filepath.Ext(path)),
				Data:     data,
			},
		})
	}

	rp := processor.CreateProcessor(nil, []processor.SettingOpt{
		processor.WithLogger(logger.Logger),
		processor.WithSkillPolicy(skillPolicy),
		processor.WithReferenceYear(*year),
		processor.WithMaxFileSize(*maxLen << 20),
		processor.WithWorkers(*workers),
		processor.WithDocumentTimeout(*timeout),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := rp.ProcessBatch(ctx, items)
	if err != nil {
		logger.Error().Err(err).Msg("批量处理被中断")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error().Err(err).Msg("输出结果失败")
		return 1
	}

	for _, r := range results {
		if r.Error != "" {
			return 1
		}
	}
	return 0
}
