package usecase

import (
	"fmt"
	"sort"
	"strings"

	"onboarding-agent/internal/domain"
)

const (
	// documentContentCap bounds how much raw document text is quoted
	// verbatim in the knowledge block.
	documentContentCap = 2000

	// noDocumentsSentinel marks a context whose document text field means
	// "nothing was uploaded"; the content section is omitted entirely.
	noDocumentsSentinel = "No documents uploaded"

	// clarificationMarker suppresses insight entries still awaiting human
	// review. Substring match, not exact match.
	clarificationMarker = "Needs clarification"

	noKnowledgeSentinel = "No company information available."
)

// assembleKnowledge folds a company context into one bounded text block, in
// fixed section order: header, insights, interview answers, document list,
// capped document content.
func assembleKnowledge(company *domain.CompanyContext) string {
	if company == nil {
		return noKnowledgeSentinel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nSize: %s\nIndustry: %s",
		orUnknown(company.Name), orUnknown(company.Size), orUnknown(company.Industry))

	if insights := filteredInsights(company.Insights); len(insights) > 0 {
		b.WriteString("\n\nDOCUMENT ANALYSIS INSIGHTS:")
		for _, in := range insights {
			fmt.Fprintf(&b, "\n- %s: %s", capitalize(in.category), in.value)
		}
	}

	if len(company.Culture) > 0 {
		b.WriteString("\n\nINTERVIEW INSIGHTS:")
		for i, answer := range company.Culture {
			fmt.Fprintf(&b, "\n- Response %d: %s", i+1, answer)
		}
	}

	if len(company.Documents) > 0 {
		b.WriteString("\n\nAVAILABLE DOCUMENTS: ")
		b.WriteString(strings.Join(company.Documents, ", "))
	}

	if company.FullDocumentContent != "" && company.FullDocumentContent != noDocumentsSentinel {
		b.WriteString("\n\nKEY DOCUMENT CONTENT:\n")
		b.WriteString(truncate(company.FullDocumentContent, documentContentCap))
	}

	return b.String()
}

type insight struct {
	category string
	value    string
}

// filteredInsights drops empty values and entries carrying the clarification
// marker, and orders the rest by category for deterministic output.
func filteredInsights(m map[string]string) []insight {
	out := make([]insight, 0, len(m))
	for k, v := range m {
		if v == "" || strings.Contains(v, clarificationMarker) {
			continue
		}
		out = append(out, insight{category: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].category < out[j].category })
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
