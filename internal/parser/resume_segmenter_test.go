package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ingest-go/internal/types"
)

const sampleResume = `Alex Doe
New York, NY
alex@example.com | 555-123-4567

Experience
Senior Analyst at Acme (2018 - 2023)
- Built dashboards for the finance team

Education
B.S. Economics, State University
Skills
Strategic planning, Data analysis, SQL`

func skillNames(entries []types.SkillEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestParseResumeProfile(t *testing.T) {
	result := ParseResume(sampleResume, WithReferenceYear(2025))

	assert.Equal(t, "Alex Doe", result.Profile.Name)
	assert.Equal(t, "New York, NY", result.Profile.Location)
	assert.Equal(t, "Senior Analyst", result.Profile.CurrentRole, "应去掉括号中的年份并在 at 处截断")
	assert.Equal(t, "7", result.Profile.YearsExperience)
	assert.Equal(t, "B.S. Economics, State University", result.Profile.Education)
	assert.Empty(t, result.Profile.Certifications)

	require.Contains(t, result.Sections, types.SectionExperience)
	assert.Equal(t, []string{
		"Senior Analyst at Acme (2018 - 2023)",
		"- Built dashboards for the finance team",
	}, result.Sections[types.SectionExperience])
	assert.Equal(t, []string{"Strategic planning, Data analysis, SQL"}, result.Sections[types.SectionSkills])
	assert.NotContains(t, result.Sections, types.SectionSummary, "第一个标题之前的内容不属于任何章节")
}

func TestParseResumeExplicitSkillsSection(t *testing.T) {
	for _, policy := range []SkillPolicy{SkillPolicySectionOnly, SkillPolicyInferFromText} {
		t.Run(string(policy), func(t *testing.T) {
			text := "Alex Doe\nSkills\nStrategic planning, Data analysis, SQL\n- sql | STRATEGIC PLANNING"
			result := ParseResume(text, WithSkillPolicy(policy), WithReferenceYear(2025))

			assert.Equal(t, []string{"Strategic Planning", "Data Analysis", "Sql"}, skillNames(result.Skills))
			assert.Equal(t, []types.SkillEntry{
				{Name: "Strategic Planning", Category: types.CategoryDomainSpecific},
				{Name: "Data Analysis", Category: types.CategoryAnalytical},
				{Name: "Sql", Category: types.CategoryTechnical},
			}, result.Skills)
		})
	}
}

func TestParseResumeNoSkills(t *testing.T) {
	text := "Jordan Smith\nSummary\nEnjoys hiking and cooking on weekends."

	t.Run("仅技能章节", func(t *testing.T) {
		result := ParseResume(text, WithSkillPolicy(SkillPolicySectionOnly))
		assert.Empty(t, result.Skills)
		assert.NotNil(t, result.Skills)
		assert.Equal(t, []string{WarnNoRole, WarnNoEducation, WarnNoSkills}, result.Warnings)
	})

	t.Run("全文推断", func(t *testing.T) {
		result := ParseResume(text, WithSkillPolicy(SkillPolicyInferFromText))
		assert.Empty(t, result.Skills, "没有技能章节也没有关键词时不应推断出技能")
		assert.Equal(t, []string{
			WarnNoRole,
			WarnNoEducation,
			WarnNoSkills,
			WarnNoSoftSkills,
			WarnNoTechnicalSkills,
		}, result.Warnings)
	})
}

func TestParseResumeSectionOnlyIgnoresKeywords(t *testing.T) {
	text := "Experience\nProduct Manager | Acme\n- Led Python and SQL migration with stakeholders"

	sectionOnly := ParseResume(text, WithSkillPolicy(SkillPolicySectionOnly))
	assert.Empty(t, sectionOnly.Skills)
	assert.Contains(t, sectionOnly.Warnings, WarnNoSkills)

	inferred := ParseResume(text)
	names := skillNames(inferred.Skills)
	assert.Contains(t, names, "Python")
	assert.Contains(t, names, "Sql")
	assert.Contains(t, names, "Leadership")
	assert.Contains(t, names, "Stakeholder Management")
	assert.NotContains(t, inferred.Warnings, WarnNoSkills)
	assert.NotContains(t, inferred.Warnings, WarnNoSoftSkills)
	assert.NotContains(t, inferred.Warnings, WarnNoTechnicalSkills)
}

func TestParseResumeEmpty(t *testing.T) {
	for _, text := range []string{"", "   \n\t\r\n"} {
		result := ParseResume(text)
		assert.Equal(t, []string{WarnEmptyResume}, result.Warnings)
		assert.Empty(t, result.Sections)
		assert.NotNil(t, result.Sections)
		assert.Empty(t, result.Skills)
		assert.Equal(t, types.ResumeProfile{}, result.Profile)
	}
}

func TestParseResumeIdempotent(t *testing.T) {
	first := ParseResume(sampleResume, WithReferenceYear(2025))
	second := ParseResume(sampleResume, WithReferenceYear(2025))
	assert.Equal(t, first, second)
}

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		line string
		want types.SectionKey
		ok   bool
	}{
		{"Experience", types.SectionExperience, true},
		{"WORK EXPERIENCE:", types.SectionExperience, true},
		{"  Professional   Summary  ", types.SectionSummary, true},
		{"Core Competencies", types.SectionSkills, true},
		{"Certifications and Licenses:", types.SectionCertifications, true},
		{"Portfolio", types.SectionProjects, true},
		{"Community", types.SectionVolunteer, true},
		{"Academic", types.SectionEducation, true},
		{"Experience at Acme", "", false},
		{"Skills include Go", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := DetectHeading(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResumeEmptyHeadingCreatesSection(t *testing.T) {
	result := ParseResume("Projects\nSkills\nGo")
	require.Contains(t, result.Sections, types.SectionProjects)
	assert.Empty(t, result.Sections[types.SectionProjects])
	assert.Equal(t, []string{"Go"}, result.Sections[types.SectionSkills])
}

func TestExtractCurrentRole(t *testing.T) {
	tests := []struct {
		name       string
		experience []string
		want       string
	}{
		{"竖线", []string{"Product Manager | Acme"}, "Product Manager"},
		{"连字符", []string{"Engineer - Globex (2019-2021)"}, "Engineer"},
		{"at 优先于逗号", []string{"Director, Analytics at Initech"}, "Director, Analytics"},
		{"逗号", []string{"Designer, Hooli"}, "Designer"},
		{"at符号", []string{"Developer@Startup"}, "Developer"},
		{"跳过项目符号", []string{"- shipped things", "* more", "Staff Engineer"}, "Staff Engineer"},
		{"没有分隔符", []string{"Consultant (2020 – Present)"}, "Consultant"},
		{"空章节", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCurrentRole(tt.experience))
		})
	}
}

func TestExtractYearsExperience(t *testing.T) {
	tests := []struct {
		name       string
		experience []string
		want       string
	}{
		{"取最早年份", []string{"Lead (2015 - 2020)", "Analyst 2012"}, "13"},
		{"忽略未来年份", []string{"Starting 2030", "Joined 2020"}, "5"},
		{"当年入职为零", []string{"Joined 2025"}, ""},
		{"没有年份", []string{"Engineer at Acme"}, ""},
		{"不匹配更长的数字", []string{"Handled 120150 tickets"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractYearsExperience(tt.experience, 2025))
		})
	}
}

func TestExtractName(t *testing.T) {
	lines := []string{"Resume", "jane@example.com", "Phone 5551234", "Jane Q Public"}
	assert.Equal(t, "Jane Q Public", extractName(lines))

	tooLong := []string{"This line has far too many words to be a name"}
	assert.Empty(t, extractName(tooLong))

	late := []string{"", "", "", "", "", "", "Late Name"}
	assert.Empty(t, extractName(late), "只检查前六行")
}

func TestExtractLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", extractLocation([]string{"Sam Lee", "Austin, TX 78701"}))
	assert.Equal(t, "San Francisco, CA", extractLocation([]string{"San Francisco, CAL"}), "州代码后面不要求单词边界")
	assert.Empty(t, extractLocation([]string{"Sam Lee", "sam@example.com"}))
}

func TestExtractIndustries(t *testing.T) {
	result := ParseResume("Summary\nBuilt payments tooling for a hospital network.", WithSkillPolicy(SkillPolicySectionOnly))
	assert.Equal(t, "Fintech, Healthcare", result.Profile.Industries)

	none := ParseResume("Summary\nEnjoys hiking.")
	assert.Empty(t, none.Profile.Industries)
}

func TestParseSkillPolicy(t *testing.T) {
	p, err := ParseSkillPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SkillPolicyInferFromText, p)

	p, err = ParseSkillPolicy(" Section ")
	require.NoError(t, err)
	assert.Equal(t, SkillPolicySectionOnly, p)

	_, err = ParseSkillPolicy("blend")
	assert.Error(t, err)
}
