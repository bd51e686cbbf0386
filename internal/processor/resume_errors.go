package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	ErrEmptyInput        = errors.New("没有可解析的简历文本")
	ErrPayloadDecode     = errors.New("文件内容解码失败")
	ErrFileTooLarge      = errors.New("文件超过大小限制")
	ErrPublishFailed     = errors.New("发布解析结果失败")
)

// ProcessError 包含详细错误信息的自定义错误
type ProcessError struct {
	DocumentID string
	Op         string
	BaseErr    error
	Detail     string
	// Warnings 出错前已经收集到的提示信息，随错误一并返回给调用方
	Warnings []string
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文档:%s): %s", e.BaseErr, e.Op, e.DocumentID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文档:%s)", e.BaseErr, e.Op, e.DocumentID)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// WarningsFromError 取出错误中携带的提示信息
func WarningsFromError(err error) []string {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Warnings
	}
	return nil
}

// 错误构造函数
func NewUnsupportedFormatError(docID, detail string) error {
	return &ProcessError{
		DocumentID: docID,
		Op:         "detect",
		BaseErr:    ErrUnsupportedFormat,
		Detail:     detail,
		Warnings:   []string{WarnUnsupportedFile},
	}
}

func NewEmptyInputError(docID string, warnings []string) error {
	if len(warnings) == 0 {
		warnings = []string{WarnNoInput}
	}
	return &ProcessError{
		DocumentID: docID,
		Op:         "extract",
		BaseErr:    ErrEmptyInput,
		Warnings:   warnings,
	}
}

func NewDecodeError(docID, detail string) error {
	return &ProcessError{
		DocumentID: docID,
		Op:         "decode",
		BaseErr:    ErrPayloadDecode,
		Detail:     detail,
	}
}

func NewFileTooLargeError(docID string, size, limit int64) error {
	return &ProcessError{
		DocumentID: docID,
		Op:         "validate",
		BaseErr:    ErrFileTooLarge,
		Detail:     fmt.Sprintf("%d 字节，上限 %d 字节", size, limit),
	}
}

func NewPublishError(docID, detail string) error {
	return &ProcessError{
		DocumentID: docID,
		Op:         "publish",
		BaseErr:    ErrPublishFailed,
		Detail:     detail,
	}
}
