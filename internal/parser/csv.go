package parser

import (
	"strings"

	"resume-ingest-go/internal/types"
)

// LinkedIn 导出文件中使用的列名
const (
	HeaderFirstName   = "First Name"
	HeaderLastName    = "Last Name"
	HeaderEmail       = "Email Address"
	HeaderCompany     = "Company"
	HeaderPosition    = "Position"
	HeaderConnectedOn = "Connected On"
	HeaderLocation    = "Location"
)

// ParseCSV 逐字符扫描CSV文本，第一行作为表头。
//
// 引号内的 "" 输出一个字面引号；引号外的逗号结束字段；引号外的 \n、\r 或 \r\n
// 结束字段和行。末尾未以换行结束的行同样会被保留。
func ParseCSV(text string) types.CSVTable {
	var (
		rows     [][]string
		current  []string
		field    strings.Builder
		inQuotes bool
	)

	pushField := func() {
		current = append(current, field.String())
		field.Reset()
	}
	pushRow := func() {
		rows = append(rows, current)
		current = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			pushField()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			pushField()
			pushRow()
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(current) > 0 {
		pushField()
		pushRow()
	}

	if len(rows) == 0 {
		return types.CSVTable{Headers: []string{}, Rows: [][]string{}}
	}

	headers := rows[0]
	if headers == nil {
		headers = []string{}
	}
	return types.CSVTable{Headers: headers, Rows: rows[1:]}
}

// ParseLinkedInConnections 将LinkedIn人脉导出CSV映射为连接记录。
// 列按表头名（忽略大小写和首尾空白）定位，与列顺序无关；缺失的列或过短的行得到空字符串。
func ParseLinkedInConnections(csvText string) []types.LinkedInConnection {
	if strings.TrimSpace(csvText) == "" {
		return []types.LinkedInConnection{}
	}

	table := ParseCSV(csvText)
	index := headerIndex(table.Headers)

	firstNameIdx := index(HeaderFirstName)
	lastNameIdx := index(HeaderLastName)
	emailIdx := index(HeaderEmail)
	companyIdx := index(HeaderCompany)
	positionIdx := index(HeaderPosition)
	connectedOnIdx := index(HeaderConnectedOn)
	locationIdx := index(HeaderLocation)

	connections := make([]types.LinkedInConnection, 0, len(table.Rows))
	for _, row := range table.Rows {
		connections = append(connections, types.LinkedInConnection{
			FirstName:   cell(row, firstNameIdx),
			LastName:    cell(row, lastNameIdx),
			Email:       cell(row, emailIdx),
			Company:     cell(row, companyIdx),
			Position:    cell(row, positionIdx),
			ConnectedOn: cell(row, connectedOnIdx),
			Location:    cell(row, locationIdx),
		})
	}
	return connections
}

func normalizeHeader(value string) string {
	// Excel 另存的导出文件带 UTF-8 BOM
	value = strings.TrimPrefix(value, "\ufeff")
	return strings.ToLower(strings.TrimSpace(value))
}

// headerIndex 返回按表头名查找列下标的函数，未找到返回 -1
func headerIndex(headers []string) func(string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	return func(name string) int {
		want := normalizeHeader(name)
		for i, h := range normalized {
			if h == want {
				return i
			}
		}
		return -1
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
