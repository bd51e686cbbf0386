package parser

import (
	"regexp"
	"strings"
)

// collapseWhitespace 将连续空白合并为单个空格并去除首尾空白
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeLine 与 collapseWhitespace 相同，语义上用于单行
func normalizeLine(line string) string {
	return collapseWhitespace(line)
}

// splitLines 按换行拆分并去除每行首尾空白，空行保留
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// keywordMatcher 按单词边界匹配关键词，避免 "ai" 命中 "email" 这类误报
type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

func newKeywordMatchers(keywords []string) []keywordMatcher {
	matchers := make([]keywordMatcher, 0, len(keywords))
	for _, kw := range keywords {
		matchers = append(matchers, keywordMatcher{
			keyword: kw,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	return matchers
}

func (m keywordMatcher) in(lowerText string) bool {
	return m.re.MatchString(lowerText)
}
