package types

// SectionKey 表示简历章节类型
type SectionKey string

const (
	// SectionSummary 个人总结章节
	SectionSummary SectionKey = "summary"
	// SectionExperience 工作经历章节
	SectionExperience SectionKey = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionKey = "education"
	// SectionSkills 技能章节
	SectionSkills SectionKey = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionKey = "certifications"
	// SectionProjects 项目经历章节
	SectionProjects SectionKey = "projects"
	// SectionVolunteer 志愿经历章节
	SectionVolunteer SectionKey = "volunteer"
)

// SectionMap 章节到原始行的映射，行按文档顺序排列
type SectionMap map[SectionKey][]string

// SkillCategory 技能分类
type SkillCategory string

const (
	CategoryTechnical      SkillCategory = "technical"
	CategorySoft           SkillCategory = "soft/interpersonal"
	CategoryLeadership     SkillCategory = "leadership"
	CategoryAnalytical     SkillCategory = "analytical"
	CategoryCreative       SkillCategory = "creative"
	CategoryDomainSpecific SkillCategory = "domain-specific"
)

// ResumeProfile 从简历中提取的基本信息，未识别的字段保持为空
type ResumeProfile struct {
	Name            string `json:"name,omitempty"`
	CurrentRole     string `json:"currentRole,omitempty"`
	YearsExperience string `json:"yearsExperience,omitempty"`
	Education       string `json:"education,omitempty"`
	Certifications  string `json:"certifications,omitempty"`
	Location        string `json:"location,omitempty"`
	Industries      string `json:"industries,omitempty"`
}

// SkillEntry 归一化后的技能条目
type SkillEntry struct {
	Name     string        `json:"name"`
	Category SkillCategory `json:"category"`
}

// ResumeExtraction 简历结构化解析结果
type ResumeExtraction struct {
	Profile  ResumeProfile `json:"profile"`
	Skills   []SkillEntry  `json:"skills"`
	Warnings []string      `json:"warnings"`
	Sections SectionMap    `json:"sections"`
}

// LinkedInConnection LinkedIn 导出的一条人脉记录
type LinkedInConnection struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	ConnectedOn string `json:"connectedOn"`
	Location    string `json:"location"`
}

// CSVTable CSV 解析结果，第一行作为表头
type CSVTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
