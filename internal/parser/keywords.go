package parser

import (
	"regexp"

	"resume-ingest-go/internal/types"
)

// 以下均为只读的全局词表，解析过程中不会修改

// headingLabels 章节标题词表，按章节顺序匹配
var headingLabels = []struct {
	key    types.SectionKey
	labels []string
}{
	{types.SectionSummary, []string{"summary", "professional summary", "profile"}},
	{types.SectionExperience, []string{"experience", "work experience", "employment", "work history"}},
	{types.SectionEducation, []string{"education", "academic"}},
	{types.SectionSkills, []string{"skills", "core competencies", "expertise"}},
	{types.SectionCertifications, []string{"certifications", "licenses", "certifications and licenses"}},
	{types.SectionProjects, []string{"projects", "portfolio"}},
	{types.SectionVolunteer, []string{"volunteer", "community"}},
}

// categoryKeywords 技能分类词表，顺序决定同分时的优先级
var categoryKeywords = []struct {
	category types.SkillCategory
	keywords []string
}{
	{types.CategoryTechnical, []string{
		"python", "sql", "javascript", "typescript", "cloud", "aws", "azure", "gcp",
		"kubernetes", "devops", "automation", "machine learning", "ai", "data engineering",
	}},
	{types.CategorySoft, []string{
		"communication", "collaboration", "stakeholder", "negotiation", "presentation",
		"relationship", "customer", "sales", "influence",
	}},
	{types.CategoryLeadership, []string{
		"leadership", "strategy", "management", "mentorship", "vision", "roadmap", "executive",
	}},
	{types.CategoryAnalytical, []string{
		"analysis", "analytics", "data", "research", "modeling", "forecasting",
	}},
	{types.CategoryCreative, []string{
		"design", "ux", "ui", "copywriting", "content", "brand", "creative",
	}},
	{types.CategoryDomainSpecific, []string{
		"finance", "fintech", "healthcare", "legal", "compliance", "security", "hr",
		"operations", "product", "marketing",
	}},
}

// industryKeywords 行业识别词表
var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{"Fintech", []string{"fintech", "bank", "payments", "lending", "finance"}},
	{"Healthcare", []string{"healthcare", "clinical", "hospital", "medical"}},
	{"SaaS", []string{"saas", "software", "subscription"}},
	{"E-commerce", []string{"e-commerce", "ecommerce", "retail"}},
	{"Education", []string{"education", "edtech", "learning"}},
	{"Cybersecurity", []string{"security", "cyber", "risk", "compliance"}},
	{"Marketing", []string{"marketing", "growth", "brand", "content"}},
	{"Logistics", []string{"logistics", "supply chain", "operations"}},
}

var hardSkillKeywords = []string{
	"project management", "program management", "product management", "data analysis",
	"analytics", "sql", "python", "excel", "agile", "scrum", "roadmapping", "go-to-market",
	"user research", "machine learning", "ai", "cloud", "devops", "security", "compliance",
	"finance", "budgeting", "forecasting", "operations", "marketing", "design", "ux",
	"research", "content strategy", "copywriting", "sales", "hr", "recruiting",
}

var softSkillKeywords = []string{
	"communication", "collaboration", "leadership", "stakeholder management",
	"strategic planning", "negotiation", "mentorship", "coaching", "conflict resolution",
	"presentation", "relationship building", "customer success", "team leadership",
	"executive influence", "change management", "problem solving", "critical thinking",
}

// inferredSoftSkills 根据工作经历用词推断的软技能
var inferredSoftSkills = []struct {
	pattern *regexp.Regexp
	skills  []string
}{
	{regexp.MustCompile(`(?i)lead|led|manage|managed|director|vp|head|chief|principal`), []string{"leadership", "team leadership", "coaching"}},
	{regexp.MustCompile(`(?i)stakeholder|cross-functional|partnered|collaborat`), []string{"stakeholder management", "collaboration"}},
	{regexp.MustCompile(`(?i)present|presentation|public speaking|briefed|communicat`), []string{"public speaking", "communication", "presentation"}},
	{regexp.MustCompile(`(?i)facilitat|workshop|alignment`), []string{"facilitation", "consensus building"}},
	{regexp.MustCompile(`(?i)negotiat|contract|vendor|procurement`), []string{"negotiation", "vendor management"}},
	{regexp.MustCompile(`(?i)mentor|coach|train`), []string{"mentorship", "coaching"}},
}
