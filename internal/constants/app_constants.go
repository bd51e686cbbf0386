package constants

const (
	// ParserVersion 解析规则版本，写入缓存键；规则变化时需要递增以废弃旧缓存
	ParserVersion = "1.0.0"

	// ServiceName 日志和trace中使用的服务名
	ServiceName = "resume-ingest"

	// ShortResumeTextThreshold 粘贴文本短于该长度时给出提示
	ShortResumeTextThreshold = 80
)
