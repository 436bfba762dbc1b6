package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type ruleFile struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestDashboardAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "insightdash.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var rules ruleFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	var group *alertGroup
	for i := range rules.Groups {
		if rules.Groups[i].Name == "insightdash" {
			group = &rules.Groups[i]
			break
		}
	}
	if group == nil {
		t.Fatal("insightdash alert group missing")
	}

	expected := map[string]string{
		"HighErrorRate":   "critical",
		"RefreshFailures": "warning",
		"SlowRefresh":     "warning",
	}
	if len(group.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(group.Rules))
	}

	// every expression must reference a metric this package registers
	metrics := NewMetrics()
	metrics.requestsTotal.WithLabelValues("/", "200").Inc()
	metrics.ObserveRefresh("mount", "applied", 0)
	families, err := metrics.registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	known := make([]string, 0, len(families))
	for _, family := range families {
		known = append(known, family.GetName())
	}

	for _, rule := range group.Rules {
		severity, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
		if !referencesAny(rule.Expr, known) {
			t.Fatalf("rule %s does not reference an exported metric: %s", rule.Alert, rule.Expr)
		}
	}
}

func referencesAny(expr string, names []string) bool {
	for _, name := range names {
		if strings.Contains(expr, name) {
			return true
		}
	}
	return false
}
