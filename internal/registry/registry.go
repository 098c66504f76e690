// Package registry holds the static per-certification exam templates and
// scoring configuration. The registry is built once at process start and is
// immutable afterwards; adding a certification means adding an entry here,
// not touching session or scoring code.
package registry

// DomainSpec is the weight specification for one domain inside a template.
type DomainSpec struct {
	Name         string `json:"name"`
	Percentage   int    `json:"percentage"`
	MinQuestions int    `json:"min_questions"`
	MaxQuestions int    `json:"max_questions"`
}

// ExamTemplate describes how a full-length MOCK exam is generated for a
// certification.
type ExamTemplate struct {
	Certification  string       `json:"certification"`
	Name           string       `json:"name"`
	TotalQuestions int          `json:"total_questions"`
	TimeLimit      int          `json:"time_limit"` // minutes
	Domains        []DomainSpec `json:"domains"`
}

// ScoringConfig describes how a certification's results are scored.
type ScoringConfig struct {
	PassingScore  int      `json:"passing_score"`
	ScalingFactor int      `json:"scaling_factor"`
	Domains       []string `json:"domains"`
}

// Registry is an immutable lookup of templates and scoring configs indexed
// by certification code.
type Registry struct {
	templates map[string]ExamTemplate
	scoring   map[string]ScoringConfig
	order     []string
}

// New builds the registry with the built-in certifications.
func New() *Registry {
	r := &Registry{
		templates: make(map[string]ExamTemplate),
		scoring:   make(map[string]ScoringConfig),
	}
	for _, e := range builtin {
		r.templates[e.template.Certification] = e.template
		r.scoring[e.template.Certification] = e.scoring
		r.order = append(r.order, e.template.Certification)
	}
	return r
}

// Template returns the exam template for a certification code.
func (r *Registry) Template(certification string) (ExamTemplate, bool) {
	t, ok := r.templates[certification]
	return t, ok
}

// Scoring returns the scoring configuration for a certification code.
func (r *Registry) Scoring(certification string) (ScoringConfig, bool) {
	s, ok := r.scoring[certification]
	return s, ok
}

// Certifications returns all templates in registration order.
func (r *Registry) Certifications() []ExamTemplate {
	out := make([]ExamTemplate, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.templates[code])
	}
	return out
}

type entry struct {
	template ExamTemplate
	scoring  ScoringConfig
}

var builtin = []entry{
	{
		template: ExamTemplate{
			Certification:  "SAA-C03",
			Name:           "AWS Certified Solutions Architect - Associate",
			TotalQuestions: 65,
			TimeLimit:      130,
			Domains: []DomainSpec{
				{Name: "Design Secure Architectures", Percentage: 30, MinQuestions: 18, MaxQuestions: 21},
				{Name: "Design Resilient Architectures", Percentage: 26, MinQuestions: 15, MaxQuestions: 18},
				{Name: "Design High-Performing Architectures", Percentage: 24, MinQuestions: 14, MaxQuestions: 17},
				{Name: "Design Cost-Optimized Architectures", Percentage: 20, MinQuestions: 12, MaxQuestions: 14},
			},
		},
		scoring: ScoringConfig{
			PassingScore:  720,
			ScalingFactor: 1000,
			Domains: []string{
				"Design Secure Architectures",
				"Design Resilient Architectures",
				"Design High-Performing Architectures",
				"Design Cost-Optimized Architectures",
			},
		},
	},
	{
		template: ExamTemplate{
			Certification:  "CLF-C02",
			Name:           "AWS Certified Cloud Practitioner",
			TotalQuestions: 65,
			TimeLimit:      90,
			Domains: []DomainSpec{
				{Name: "Cloud Concepts", Percentage: 24, MinQuestions: 14, MaxQuestions: 17},
				{Name: "Security and Compliance", Percentage: 30, MinQuestions: 18, MaxQuestions: 21},
				{Name: "Cloud Technology and Services", Percentage: 34, MinQuestions: 20, MaxQuestions: 24},
				{Name: "Billing, Pricing, and Support", Percentage: 12, MinQuestions: 7, MaxQuestions: 9},
			},
		},
		scoring: ScoringConfig{
			PassingScore:  700,
			ScalingFactor: 1000,
			Domains: []string{
				"Cloud Concepts",
				"Security and Compliance",
				"Cloud Technology and Services",
				"Billing, Pricing, and Support",
			},
		},
	},
	{
		template: ExamTemplate{
			Certification:  "DVA-C02",
			Name:           "AWS Certified Developer - Associate",
			TotalQuestions: 65,
			TimeLimit:      130,
			Domains: []DomainSpec{
				{Name: "Development with AWS Services", Percentage: 32, MinQuestions: 19, MaxQuestions: 23},
				{Name: "Security", Percentage: 26, MinQuestions: 15, MaxQuestions: 18},
				{Name: "Deployment", Percentage: 24, MinQuestions: 14, MaxQuestions: 17},
				{Name: "Troubleshooting and Optimization", Percentage: 18, MinQuestions: 10, MaxQuestions: 13},
			},
		},
		scoring: ScoringConfig{
			PassingScore:  720,
			ScalingFactor: 1000,
			Domains: []string{
				"Development with AWS Services",
				"Security",
				"Deployment",
				"Troubleshooting and Optimization",
			},
		},
	},
}
