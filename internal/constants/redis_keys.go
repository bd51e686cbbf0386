package constants

// Redis Key 命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityResult 解析结果实体
	EntityResult = "result"

	// KeyParseResult 简历解析结果缓存 (STRING, JSON)
	// 格式: app:parse:result:{parserVersion}:{skillPolicy}:{md5}
	KeyParseResult = AppPrefix + ":" + ParseModulePrefix + ":" + EntityResult + ":%s:%s:%s"
)
