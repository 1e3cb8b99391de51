package trial

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bais/domain/core"
)

// Condition is the experimental arm a trial was run under
type Condition string

const (
	ConditionUnknown Condition = ""
	ConditionNone    Condition = "none"
	ConditionLow     Condition = "low"
	ConditionHigh    Condition = "high"
)

func (c Condition) String() string {
	if c == ConditionUnknown {
		return "unknown"
	}
	return string(c)
}

// Default anchor values, in months, used when a record carries only anchorMonths
const (
	DefaultLowAnchorMonths  = 3
	DefaultHighAnchorMonths = 9
)

// ClassifyCondition maps a free-form condition label to a Condition. The
// baseline check runs first so "no-anchor" is never read as an anchor arm.
func ClassifyCondition(label string) Condition {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return ConditionUnknown
	case strings.Contains(l, "no-anchor") || l == "none" || strings.Contains(l, "baseline"):
		return ConditionNone
	case strings.Contains(l, "low") || strings.Contains(l, "3mo") || l == "3":
		return ConditionLow
	case strings.Contains(l, "high") || strings.Contains(l, "9mo") || l == "9":
		return ConditionHigh
	}
	return ConditionUnknown
}

// ConditionFromAnchorMonths classifies a numeric anchor against the low and
// high anchor values of the experiment
func ConditionFromAnchorMonths(months, low, high float64) Condition {
	switch months {
	case low:
		return ConditionLow
	case high:
		return ConditionHigh
	}
	return ConditionUnknown
}

// Trial is one model response to one vignette
type Trial struct {
	Deployment   core.DeploymentID `json:"deployment"`
	ExperimentID string            `json:"experimentId,omitempty"`
	Condition    Condition         `json:"condition"`
	Value        float64           `json:"value"`
}

// Batch is the result of reading one trial source
type Batch struct {
	Source  string  `json:"source"`
	Trials  []Trial `json:"trials"`
	Skipped int     `json:"skipped"`
	Unknown int     `json:"unknown"`
}

// Groups holds the response values of one deployment, split by condition,
// in the order they were read
type Groups struct {
	Deployment core.DeploymentID
	Low        []float64
	High       []float64
	None       []float64
}

// Sample returns the values recorded under c
func (g *Groups) Sample(c Condition) []float64 {
	switch c {
	case ConditionLow:
		return g.Low
	case ConditionHigh:
		return g.High
	case ConditionNone:
		return g.None
	}
	return nil
}

// Total counts every classified observation
func (g *Groups) Total() int {
	return len(g.Low) + len(g.High) + len(g.None)
}

// Fingerprint hashes the grouped values
func (g *Groups) Fingerprint() core.SampleHash {
	return core.ComputeSampleHash(map[string][]float64{
		string(ConditionLow):  g.Low,
		string(ConditionHigh): g.High,
		string(ConditionNone): g.None,
	})
}

// GroupByDeployment splits trials per deployment and condition. Trials with
// an unknown condition are dropped. Deployments are returned sorted by name.
func GroupByDeployment(trials []Trial) []*Groups {
	byDeployment := make(map[core.DeploymentID]*Groups)
	for _, t := range trials {
		g, ok := byDeployment[t.Deployment]
		if !ok {
			g = &Groups{Deployment: t.Deployment}
			byDeployment[t.Deployment] = g
		}
		switch t.Condition {
		case ConditionLow:
			g.Low = append(g.Low, t.Value)
		case ConditionHigh:
			g.High = append(g.High, t.Value)
		case ConditionNone:
			g.None = append(g.None, t.Value)
		}
	}

	groups := make([]*Groups, 0, len(byDeployment))
	for _, g := range byDeployment {
		if g.Total() > 0 {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Deployment < groups[j].Deployment
	})
	return groups
}

var providerPrefix = regexp.MustCompile(`^(anthropic|openai|openrouter)/`)

// ShortDeploymentName strips the provider routing prefix from a deployment
func ShortDeploymentName(d core.DeploymentID) string {
	return providerPrefix.ReplaceAllString(string(d), "")
}

// ParseValue reads a numeric response written as text, accepting a trailing
// unit such as "18 months" or "18mo"
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, IsFinite(v)
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.' || r == '-')
	})
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, IsFinite(v)
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
