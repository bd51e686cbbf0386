package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resume-ingest-go/internal/types"
)

var (
	skillBulletRegex    = regexp.MustCompile(`^[-*]\s*`)
	skillSeparatorRegex = regexp.MustCompile(`[,|;/]`)
)

// SkillsFromLines 将技能章节的行切分为技能词。
// 去掉行首的 - 或 * 项目符号，按 , | ; / 切分，丢弃长度不超过1的词。
func SkillsFromLines(lines []string) []string {
	var tokens []string
	for _, line := range lines {
		cleaned := skillBulletRegex.ReplaceAllString(normalizeLine(line), "")
		for _, item := range skillSeparatorRegex.Split(cleaned, -1) {
			item = strings.TrimSpace(item)
			if len(item) > 1 {
				tokens = append(tokens, item)
			}
		}
	}
	return tokens
}

// ClassifySkills 对技能名去重（忽略大小写，先出现者保留）、转为标题格式并分类
func ClassifySkills(names []string) []types.SkillEntry {
	seen := make(map[string]struct{}, len(names))
	entries := make([]types.SkillEntry, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(normalizeLine(name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entries = append(entries, types.SkillEntry{
			Name:     titleCase(key),
			Category: CategorizeSkill(key),
		})
	}
	return entries
}

// titleCase 只把每个空格分隔的词的首字母大写，连字符后的字母保持不变
func titleCase(lower string) string {
	// cases.Caser 有内部状态，每次调用单独创建
	upper := cases.Upper(language.Und)
	words := strings.Split(lower, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + w[size:]
	}
	return strings.Join(words, " ")
}

// CategorizeSkill 按各分类关键词的子串命中数打分，取最高分；
// 全部未命中或与默认分类同分时归为 domain-specific。
func CategorizeSkill(name string) types.SkillCategory {
	lower := strings.ToLower(name)
	best := types.CategoryDomainSpecific
	bestScore := 0

	for _, group := range categoryKeywords {
		score := 0
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = group.category
		}
	}
	return best
}

var (
	hardSkillMatchers = newKeywordMatchers(hardSkillKeywords)
	softSkillMatchers = newKeywordMatchers(softSkillKeywords)
)

// keywordSkills 在全文中查找硬技能和软技能关键词，按词表顺序返回
func keywordSkills(lowerText string) []string {
	var found []string
	for _, group := range [][]keywordMatcher{hardSkillMatchers, softSkillMatchers} {
		for _, m := range group {
			if m.in(lowerText) {
				found = append(found, m.keyword)
			}
		}
	}
	return found
}

// inferSkillsFromExperience 根据工作经历中的措辞推断软技能
func inferSkillsFromExperience(experienceLines []string) []string {
	joined := strings.Join(experienceLines, " ")
	var inferred []string
	for _, rule := range inferredSoftSkills {
		if rule.pattern.MatchString(joined) {
			inferred = append(inferred, rule.skills...)
		}
	}
	return inferred
}

// hasAnyKeyword 判断是否有技能名包含词表中的任一关键词
func hasAnyKeyword(skills []string, keywords []string) bool {
	for _, kw := range keywords {
		for _, s := range skills {
			if strings.Contains(s, kw) {
				return true
			}
		}
	}
	return false
}
