package parser

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"
)

const (
	docxBodyEntry = "word/document.xml"

	// maxDocxBodySize 限制解压后的正文大小，防止zip炸弹
	maxDocxBodySize = 64 << 20
)

var docxTextRunRegex = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

var xmlEntities = []struct{ from, to string }{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// ExtractDocxText 从DOCX (OOXML) 包中按段落提取文本，段落间以换行分隔。
// 不是zip包或缺少 word/document.xml 时返回空字符串。
func ExtractDocxText(data []byte) string {
	body, ok := readDocxBody(data)
	if !ok {
		return ""
	}

	var paragraphs []string
	for _, chunk := range strings.Split(body, "</w:p>") {
		matches := docxTextRunRegex.FindAllStringSubmatch(chunk, -1)
		if len(matches) == 0 {
			continue
		}
		runs := make([]string, 0, len(matches))
		for _, m := range matches {
			runs = append(runs, decodeXMLEntities(m[1]))
		}
		text := strings.TrimSpace(strings.Join(runs, " "))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}

func readDocxBody(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	for _, f := range zr.File {
		if f.Name != docxBodyEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", false
		}
		defer rc.Close()

		raw, err := io.ReadAll(io.LimitReader(rc, maxDocxBodySize))
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
	return "", false
}

func decodeXMLEntities(s string) string {
	for _, e := range xmlEntities {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return s
}
