package season

import (
	"sort"
	"strings"

	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/types"
)

// Label is the parsed form of an Event_Season descriptor.
type Label struct {
	Type    string
	Holiday string // empty when the descriptor names no holiday
}

// ParseLabel splits an Event_Season descriptor of the form
// "<type>: <holiday>" into its parts. Empty values, the literal
// "normal day" and descriptors without a colon all map to a plain
// normal label. List-literal wrapping like "['festival: Diwali']" is
// stripped before parsing.
func ParseLabel(s string) Label {
	s = strings.TrimSpace(s)
	if s == "" || s == "normal day" {
		return Label{Type: "normal"}
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.Trim(s, "[]'\"")
	}

	if i := strings.Index(s, ":"); i >= 0 {
		return Label{
			Type:    strings.TrimSpace(s[:i]),
			Holiday: strings.TrimSpace(s[i+1:]),
		}
	}
	return Label{Type: "normal"}
}

// typeIs compares a parsed season type against a canonical name.
func typeIs(l Label, name string) bool {
	return strings.EqualFold(l.Type, name)
}

// Metrics is the per-bucket metric set shared by the seasonal views.
type Metrics struct {
	ResponseCount          int      `json:"response_count"`
	AvgSentiment           *float64 `json:"avg_sentiment"`
	AvgEngagement          *float64 `json:"avg_engagement"`
	AvgJobSatisfaction     *float64 `json:"avg_job_satisfaction"`
	AvgWorkLifeBalance     *float64 `json:"avg_work_life_balance"`
	AvgManagerSupport      *float64 `json:"avg_manager_support"`
	AvgGrowthOpportunities *float64 `json:"avg_growth_opportunities"`
	BurnoutRate            *float64 `json:"burnout_rate"`
	TurnoverRisk           *float64 `json:"turnover_risk"`
	ENPS                   *float64 `json:"enps"`
}

// computeMetrics evaluates the shared metric set over a set of rows,
// using the same formulas as the department aggregation: means over
// non-nil values, burnout and turnover over aligned score pairs.
func computeMetrics(rows []types.SurveyRecord) Metrics {
	m := Metrics{ResponseCount: len(rows)}
	if len(rows) == 0 {
		return m
	}

	var sentiment, jobSat, wlb, mgr, growth, enps, engagement []float64
	var burnoutPairs, riskPairs int
	var burnoutHits, riskHits int

	for i := range rows {
		r := &rows[i]
		if r.SentimentScore != nil {
			sentiment = append(sentiment, *r.SentimentScore)
		}
		if r.JobSatisfaction != nil {
			jobSat = append(jobSat, *r.JobSatisfaction)
		}
		if r.WorkLifeBalance != nil {
			wlb = append(wlb, *r.WorkLifeBalance)
		}
		if r.ManagerSupport != nil {
			mgr = append(mgr, *r.ManagerSupport)
		}
		if r.GrowthOpportunities != nil {
			growth = append(growth, *r.GrowthOpportunities)
		}
		if r.ENPS != nil {
			enps = append(enps, *r.ENPS)
		}

		var sum float64
		var n int
		for _, v := range []*float64{r.JobSatisfaction, r.WorkLifeBalance, r.ManagerSupport, r.GrowthOpportunities} {
			if v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			engagement = append(engagement, sum/float64(n))
		}

		if r.JobSatisfaction != nil && r.WorkLifeBalance != nil {
			burnoutPairs++
			if *r.JobSatisfaction <= 2 && *r.WorkLifeBalance <= 2 {
				burnoutHits++
			}
		}
		if r.ENPS != nil && r.GrowthOpportunities != nil {
			riskPairs++
			if *r.ENPS <= 6 && *r.GrowthOpportunities <= 2 {
				riskHits++
			}
		}
	}

	m.AvgSentiment = round2p(risk.Mean(sentiment))
	m.AvgJobSatisfaction = round2p(risk.Mean(jobSat))
	m.AvgWorkLifeBalance = round2p(risk.Mean(wlb))
	m.AvgManagerSupport = round2p(risk.Mean(mgr))
	m.AvgGrowthOpportunities = round2p(risk.Mean(growth))
	m.AvgEngagement = round2p(risk.Mean(engagement))
	m.ENPS = round2p(risk.ENPSScore(enps))

	if burnoutPairs > 0 {
		v := risk.Round2(float64(burnoutHits) / float64(burnoutPairs) * 100)
		m.BurnoutRate = &v
	}
	if riskPairs > 0 {
		v := risk.Round2(float64(riskHits) / float64(riskPairs) * 100)
		m.TurnoverRisk = &v
	}
	return m
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := risk.Round2(*v)
	return &r
}

// diff subtracts b from a, nil when either side is missing.
func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := risk.Round2(*a - *b)
	return &d
}

// SentimentBreakdown counts labeled sentiment, tolerating the label
// spellings the enrichment pipeline has produced over time.
type SentimentBreakdown struct {
	PositiveCount      int      `json:"positive_count"`
	NegativeCount      int      `json:"negative_count"`
	NeutralCount       int      `json:"neutral_count"`
	PositivePercentage float64  `json:"positive_percentage"`
	NegativePercentage float64  `json:"negative_percentage"`
	NeutralPercentage  float64  `json:"neutral_percentage"`
	TotalLabeled       int      `json:"total_labeled"`
	UniqueLabels       []string `json:"unique_labels,omitempty"`
}

func sentimentBreakdown(rows []types.SurveyRecord) SentimentBreakdown {
	counts := make(map[string]int)
	var order []string
	total := 0
	for i := range rows {
		label := strings.TrimSpace(strings.ToLower(rows[i].SentimentLabel))
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		total++
	}

	b := SentimentBreakdown{TotalLabeled: total}
	if total == 0 {
		return b
	}

	b.PositiveCount = counts["positive"] + counts["pos"] + counts["1"]
	b.NegativeCount = counts["negative"] + counts["neg"] + counts["-1"]
	b.NeutralCount = counts["neutral"] + counts["neu"] + counts["0"]
	b.PositivePercentage = risk.Round2(float64(b.PositiveCount) / float64(total) * 100)
	b.NegativePercentage = risk.Round2(float64(b.NegativeCount) / float64(total) * 100)
	b.NeutralPercentage = risk.Round2(float64(b.NeutralCount) / float64(total) * 100)

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	b.UniqueLabels = order
	return b
}
