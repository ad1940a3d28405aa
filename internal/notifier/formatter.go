package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"OpportunityScout/internal/model"
)

// maxReportOpportunities bounds how many opportunities appear in one message;
// Telegram truncates long messages.
const maxReportOpportunities = 10

// FormatExecutionReport formats an execution run into a Telegram message:
// top opportunities with score breakdown and estimated revenue.
func FormatExecutionReport(runID string, opportunities []model.Opportunity, clientCount, scenarioCount int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>Opportunity Report</b> | %s\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Run %s\n\n", runID))
	b.WriteString(fmt.Sprintf("Evaluated %d clients × %d scenarios → %d opportunities\n\n",
		clientCount, scenarioCount, len(opportunities)))

	if len(opportunities) == 0 {
		b.WriteString("No opportunities cleared the match threshold.")
		return b.String()
	}

	var totalRevenue float64
	for _, opp := range opportunities {
		totalRevenue += opp.EstimatedRevenue
	}
	b.WriteString(fmt.Sprintf("💰 Total estimated revenue: $%s\n\n", humanize.Commaf(totalRevenue)))

	shown := opportunities
	if len(shown) > maxReportOpportunities {
		shown = shown[:maxReportOpportunities]
	}
	b.WriteString("📋 <b>Top opportunities:</b>\n")
	for _, opp := range shown {
		b.WriteString(fmt.Sprintf("  %s → %s\n", opp.ClientID, opp.ScenarioName))
		b.WriteString(fmt.Sprintf("    score %.0f | est. $%s | %s\n",
			opp.MatchScore, humanize.Commaf(opp.EstimatedRevenue), opp.Category))
		for _, d := range opp.MatchDetails {
			mark := "✓"
			if !d.Satisfied {
				mark = "✗"
			}
			b.WriteString(fmt.Sprintf("      %s %s %s %v (×%.2f)\n",
				mark, d.Criterion.Field, d.Criterion.Operator, d.Criterion.Value, d.Criterion.Weight))
		}
	}
	if len(opportunities) > maxReportOpportunities {
		b.WriteString(fmt.Sprintf("  … and %d more\n", len(opportunities)-maxReportOpportunities))
	}

	return b.String()
}

// FormatScenarioDigest summarizes a research run: the enriched scenario set
// plus any producer failures.
func FormatScenarioDigest(scenarios []model.EnrichedScenario, failures []model.ProducerFailure) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔍 <b>Research Digest</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("%d scenarios synthesized\n\n", len(scenarios)))

	for _, sc := range scenarios {
		crossRef := ""
		if sc.Confidence.CrossReferenced {
			crossRef = fmt.Sprintf(" (corroborated by %d sources)", sc.Confidence.SourceCount)
		}
		b.WriteString(fmt.Sprintf("• <b>%s</b> [%s]\n", sc.Name, sc.Category))
		b.WriteString(fmt.Sprintf("  confidence %.2f%s | actionability %.2f | %s\n",
			sc.Confidence.Value, crossRef, sc.Actionability.Composite, sc.Temporal.Urgency))
	}

	if len(failures) > 0 {
		b.WriteString("\n⚠️ <b>Producer failures:</b>\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  %s: %s\n", f.Producer, f.Message))
		}
	}

	return b.String()
}

// FormatStatus summarizes the most recent runs for the /status command.
func FormatStatus(lastResearch, lastExecution time.Time, scenarioCount, opportunityCount int) string {
	var b strings.Builder
	b.WriteString("📦 <b>Pipeline Status</b>\n\n")
	if lastResearch.IsZero() {
		b.WriteString("Research: never run\n")
	} else {
		b.WriteString(fmt.Sprintf("Research: %s, %d scenarios cached\n",
			lastResearch.Format("2006-01-02 15:04"), scenarioCount))
	}
	if lastExecution.IsZero() {
		b.WriteString("Execution: never run\n")
	} else {
		b.WriteString(fmt.Sprintf("Execution: %s, %d opportunities\n",
			lastExecution.Format("2006-01-02 15:04"), opportunityCount))
	}
	return b.String()
}
