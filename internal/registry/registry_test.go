package registry

import "testing"

func TestTemplateLookup(t *testing.T) {
	r := New()

	tmpl, ok := r.Template("SAA-C03")
	if !ok {
		t.Fatal("expected SAA-C03 template to exist")
	}
	if tmpl.TotalQuestions != 65 {
		t.Errorf("TotalQuestions = %d, want 65", tmpl.TotalQuestions)
	}
	if tmpl.TimeLimit != 130 {
		t.Errorf("TimeLimit = %d, want 130", tmpl.TimeLimit)
	}

	if _, ok := r.Template("NOPE-000"); ok {
		t.Error("unknown certification should not resolve")
	}
}

func TestEveryTemplateHasScoringConfig(t *testing.T) {
	r := New()

	for _, tmpl := range r.Certifications() {
		sc, ok := r.Scoring(tmpl.Certification)
		if !ok {
			t.Fatalf("%s: no scoring config", tmpl.Certification)
		}
		if sc.ScalingFactor <= 0 {
			t.Errorf("%s: scaling factor %d", tmpl.Certification, sc.ScalingFactor)
		}
		if sc.PassingScore <= 0 || sc.PassingScore > sc.ScalingFactor {
			t.Errorf("%s: passing score %d outside (0, %d]", tmpl.Certification, sc.PassingScore, sc.ScalingFactor)
		}
	}
}

func TestDomainPercentagesSumTo100(t *testing.T) {
	r := New()

	for _, tmpl := range r.Certifications() {
		sum := 0
		for _, d := range tmpl.Domains {
			sum += d.Percentage
		}
		if sum != 100 {
			t.Errorf("%s: domain percentages sum to %d", tmpl.Certification, sum)
		}
	}
}

func TestScoringDomainsMatchTemplateDomains(t *testing.T) {
	r := New()

	for _, tmpl := range r.Certifications() {
		sc, _ := r.Scoring(tmpl.Certification)
		if len(sc.Domains) != len(tmpl.Domains) {
			t.Fatalf("%s: %d scoring domains vs %d template domains",
				tmpl.Certification, len(sc.Domains), len(tmpl.Domains))
		}
		named := make(map[string]bool, len(sc.Domains))
		for _, d := range sc.Domains {
			named[d] = true
		}
		for _, d := range tmpl.Domains {
			if !named[d.Name] {
				t.Errorf("%s: template domain %q missing from scoring config", tmpl.Certification, d.Name)
			}
		}
	}
}
