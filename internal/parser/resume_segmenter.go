package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"resume-ingest-go/internal/types"
)

// SkillPolicy 决定在没有技能章节时是否从全文推断技能
type SkillPolicy string

const (
	// SkillPolicyInferFromText 技能章节 + 全文关键词 + 经历措辞推断
	SkillPolicyInferFromText SkillPolicy = "infer"
	// SkillPolicySectionOnly 只使用技能章节，缺失时技能为空
	SkillPolicySectionOnly SkillPolicy = "section"
)

// ParseSkillPolicy 解析配置中的技能策略，空字符串返回默认策略
func ParseSkillPolicy(s string) (SkillPolicy, error) {
	switch SkillPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SkillPolicyInferFromText:
		return SkillPolicyInferFromText, nil
	case SkillPolicySectionOnly:
		return SkillPolicySectionOnly, nil
	default:
		return "", fmt.Errorf("unknown skill policy %q (want %q or %q)", s, SkillPolicyInferFromText, SkillPolicySectionOnly)
	}
}

// 解析结果中的提示信息
const (
	WarnEmptyResume       = "Resume text is empty."
	WarnNoRole            = "Could not detect current role from resume."
	WarnNoEducation       = "Could not detect education section from resume."
	WarnNoSkills          = "No skills detected. Ensure your resume lists skills."
	WarnNoSoftSkills      = "No soft skills detected. Add leadership or communication skills."
	WarnNoTechnicalSkills = "No technical skills detected. Add tools, platforms, or systems."
)

const (
	headerScanLines    = 6
	maxNameTokens      = 5
	educationLineLimit = 2
	certLineLimit      = 3
)

var (
	nameDigitsRegex    = regexp.MustCompile(`\d{3,}`)
	locationRegex      = regexp.MustCompile(`([A-Za-z .'-]+,\s?[A-Z]{2})`)
	roleBulletRegex    = regexp.MustCompile(`^[-*]`)
	roleDateParenRegex = regexp.MustCompile(`\(.*?\d{4}.*?\)`)
	yearRegex          = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// roleSplitters 按顺序检查，使用第一个出现在行中的分隔符
var roleSplitters = []string{"|", " - ", " at ", ",", "@"}

var industryMatchers = func() [][]keywordMatcher {
	out := make([][]keywordMatcher, len(industryKeywords))
	for i, entry := range industryKeywords {
		out[i] = newKeywordMatchers(entry.keywords)
	}
	return out
}()

type options struct {
	policy        SkillPolicy
	referenceYear int
}

// Option 配置 ParseResume 的行为
type Option func(*options)

// WithSkillPolicy 设置技能推断策略
func WithSkillPolicy(p SkillPolicy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithReferenceYear 固定计算工作年限时使用的当前年份，便于得到可复现的结果
func WithReferenceYear(year int) Option {
	return func(o *options) {
		if year > 0 {
			o.referenceYear = year
		}
	}
}

// ParseResume 将提取出的简历文本切分为章节并识别基本信息和技能。
// 无法确定的字段保持为空，问题通过 Warnings 返回而不是错误。
func ParseResume(text string, opts ...Option) types.ResumeExtraction {
	o := options{policy: SkillPolicyInferFromText}
	for _, opt := range opts {
		opt(&o)
	}
	if o.referenceYear == 0 {
		o.referenceYear = time.Now().Year()
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.ResumeExtraction{
			Skills:   []types.SkillEntry{},
			Warnings: []string{WarnEmptyResume},
			Sections: types.SectionMap{},
		}
	}

	lines := splitLines(trimmed)
	sections := segmentSections(lines)

	var profile types.ResumeProfile
	profile.Name = extractName(lines)
	profile.Location = extractLocation(lines)

	experience := sections[types.SectionExperience]
	profile.CurrentRole = extractCurrentRole(experience)
	profile.YearsExperience = extractYearsExperience(experience, o.referenceYear)
	profile.Education = joinFirst(sections[types.SectionEducation], educationLineLimit)
	profile.Certifications = joinFirst(sections[types.SectionCertifications], certLineLimit)
	profile.Industries = strings.Join(extractIndustries(strings.ToLower(trimmed)), ", ")

	var skillNames []string
	for _, token := range SkillsFromLines(sections[types.SectionSkills]) {
		skillNames = append(skillNames, strings.ToLower(token))
	}
	if o.policy == SkillPolicyInferFromText {
		skillNames = append(skillNames, keywordSkills(strings.ToLower(trimmed))...)
		skillNames = append(skillNames, inferSkillsFromExperience(experience)...)
	}
	skills := ClassifySkills(skillNames)

	var warnings []string
	if profile.CurrentRole == "" {
		warnings = append(warnings, WarnNoRole)
	}
	if profile.Education == "" {
		warnings = append(warnings, WarnNoEducation)
	}
	if len(skills) == 0 {
		warnings = append(warnings, WarnNoSkills)
	}
	if o.policy == SkillPolicyInferFromText {
		if !hasAnyKeyword(skillNames, softSkillKeywords) {
			warnings = append(warnings, WarnNoSoftSkills)
		}
		if !hasAnyKeyword(skillNames, hardSkillKeywords) {
			warnings = append(warnings, WarnNoTechnicalSkills)
		}
	}
	if warnings == nil {
		warnings = []string{}
	}

	return types.ResumeExtraction{
		Profile:  profile,
		Skills:   skills,
		Warnings: warnings,
		Sections: sections,
	}
}

// DetectHeading 判断一行是否为章节标题，返回对应章节
func DetectHeading(line string) (types.SectionKey, bool) {
	cleaned := strings.ToLower(strings.TrimRight(normalizeLine(line), ":"))
	for _, h := range headingLabels {
		for _, label := range h.labels {
			if cleaned == label {
				return h.key, true
			}
		}
	}
	return "", false
}

// segmentSections 把每行归入最近出现的标题下，第一个标题之前的内容被丢弃
func segmentSections(lines []string) types.SectionMap {
	sections := types.SectionMap{}
	var current types.SectionKey
	for _, line := range lines {
		if line == "" {
			continue
		}
		if key, ok := DetectHeading(line); ok {
			current = key
			if _, exists := sections[key]; !exists {
				sections[key] = []string{}
			}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return sections
}

func extractName(lines []string) string {
	for _, line := range head(lines, headerScanLines) {
		trimmed := normalizeLine(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, "@") {
			continue
		}
		if nameDigitsRegex.MatchString(trimmed) {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), "resume") {
			continue
		}
		if len(strings.Split(trimmed, " ")) <= maxNameTokens {
			return line
		}
	}
	return ""
}

func extractLocation(lines []string) string {
	for _, line := range head(lines, headerScanLines) {
		if m := locationRegex.FindStringSubmatch(line); m != nil {
			if loc := strings.TrimSpace(m[1]); loc != "" {
				return loc
			}
		}
	}
	return ""
}

func extractCurrentRole(experience []string) string {
	for _, line := range experience {
		if line == "" || roleBulletRegex.MatchString(line) {
			continue
		}
		return roleFromLine(line)
	}
	return ""
}

func roleFromLine(line string) string {
	cleaned := normalizeLine(line)
	withoutDates := strings.TrimSpace(roleDateParenRegex.ReplaceAllString(cleaned, ""))
	for _, splitter := range roleSplitters {
		if left, _, found := strings.Cut(withoutDates, splitter); found {
			return strings.TrimSpace(left)
		}
	}
	return withoutDates
}

func extractYearsExperience(experience []string, referenceYear int) string {
	earliest := 0
	for _, match := range yearRegex.FindAllString(strings.Join(experience, " "), -1) {
		year, err := strconv.Atoi(match)
		if err != nil || year <= 1900 || year > referenceYear {
			continue
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
	}
	if earliest == 0 {
		return ""
	}
	diff := referenceYear - earliest
	if diff <= 0 {
		return ""
	}
	return strconv.Itoa(diff)
}

func extractIndustries(lowerText string) []string {
	var industries []string
	for i, entry := range industryKeywords {
		for _, m := range industryMatchers[i] {
			if m.in(lowerText) {
				industries = append(industries, entry.industry)
				break
			}
		}
	}
	return industries
}

func joinFirst(lines []string, n int) string {
	return strings.Join(head(lines, n), " | ")
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
