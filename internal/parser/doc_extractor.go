package parser

import "strings"

// ExtractDocText 对旧版二进制DOC做可打印字符过滤。
//
// 这不是结构化解析：只保留 tab/换行/回车和可打印ASCII，其余字节段替换为空格，
// 得到的文本可能夹杂二进制残留，质量明显低于PDF/DOCX路径，下游应视为噪声文本。
func ExtractDocText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(data))
	inJunk := false
	for _, b := range data {
		if isDocPrintable(b) {
			sb.WriteByte(b)
			inJunk = false
			continue
		}
		if !inJunk {
			sb.WriteByte(' ')
			inJunk = true
		}
	}
	return collapseWhitespace(sb.String())
}

func isDocPrintable(b byte) bool {
	return b == '\t' || b == '\n' || b == '\r' || (b >= 0x20 && b <= 0x7e)
}
