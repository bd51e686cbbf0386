package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// 只识别内容流中未压缩的文本显示操作符：
//
//	(literal) Tj
//	[(a) -120 (b)] TJ
//
// 不解析对象结构，也不解压 FlateDecode 流，压缩过的PDF会得到空字符串。
var (
	pdfTjRegex      = regexp.MustCompile(`\(([^()]*)\)\s*Tj`)
	pdfTJArrayRegex = regexp.MustCompile(`(?s)\[(.*?)\]\s*TJ`)
	pdfLiteralRegex = regexp.MustCompile(`\(([^()]*)\)`)
	pdfOctalRegex   = regexp.MustCompile(`\\([0-7]{1,3})`)
)

// pdfEscapes 按优先级依次替换
var pdfEscapes = []struct{ from, to string }{
	{`\n`, "\n"},
	{`\r`, "\r"},
	{`\t`, "\t"},
	{`\b`, "\b"},
	{`\f`, "\f"},
	{`\(`, "("},
	{`\)`, ")"},
	{`\\`, `\`},
}

// ExtractPDFText 从PDF字节中尽力恢复可见文本，失败时返回空字符串
func ExtractPDFText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	content := latin1String(data)

	var parts []string
	for _, m := range pdfTjRegex.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			parts = append(parts, decodePDFString(m[1]))
		}
	}
	for _, m := range pdfTJArrayRegex.FindAllStringSubmatch(content, -1) {
		if m[1] == "" {
			continue
		}
		for _, lit := range pdfLiteralRegex.FindAllStringSubmatch(m[1], -1) {
			if lit[1] != "" {
				parts = append(parts, decodePDFString(lit[1]))
			}
		}
	}

	return collapseWhitespace(strings.Join(parts, " "))
}

// latin1String 按 ISO-8859-1 逐字节解码，保证每个字节对应一个字符
func latin1String(data []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes)
	}
	return string(s)
}

// decodePDFString 处理PDF字面字符串中的转义序列
func decodePDFString(raw string) string {
	s := raw
	for _, esc := range pdfEscapes {
		s = strings.ReplaceAll(s, esc.from, esc.to)
	}
	return pdfOctalRegex.ReplaceAllStringFunc(s, func(match string) string {
		code, err := strconv.ParseUint(match[1:], 8, 32)
		if err != nil {
			return match
		}
		return string(rune(code))
	})
}
