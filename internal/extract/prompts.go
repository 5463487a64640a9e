package extract

import (
	"fmt"
	"sort"
	"strings"
)

// systemPrompt enforces binary confidence scoring: a value is either
// explicitly stated (1.0) or it needs human review (0.0). Intermediate
// scores from the model are treated as less-than-certain downstream.
const systemPrompt = `You are an expert at extracting structured data from financial documents for venture capital term sheets.

Your job is to extract specific fields from the provided source documents. For each field:
1. Find the value in the documents (deal model takes precedence for deal-specific terms, firm policy for standard terms)
2. Note exactly where you found it (file + cell reference or section)
3. Rate your confidence using BINARY scoring:
   - 1.0 = You are 100% certain (value explicitly stated, exact match, no ambiguity)
   - 0.0 = Anything less than 100% certain (inferred, assumed, derived, or any doubt)
4. If multiple sources conflict, note all values

IMPORTANT: Only use confidence 1.0 when the value is EXPLICITLY and UNAMBIGUOUSLY stated. If you had to infer, calculate, or make any assumption, use 0.0 so a human can review.

Be precise with numbers and percentages. Use the exact format requested.`

const partiesPrompt = `Extract the PARTIES section fields:

{
  "company_name": {
    "value": "Company name",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "company_jurisdiction": {
    "value": "Delaware/etc",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "founders": {
    "value": "Founder 1, Founder 2",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "lead_investor": {
    "value": "Investor name",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  }
}

If a field is not found, use null for value and set confidence to 0.`

const dealEconomicsPrompt = `Extract the DEAL ECONOMICS section fields:

{
  "round_type": {
    "value": "Seed/Series A/etc",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "investment_amount": {
    "value": "$X,XXX,XXX format",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "pre_money_valuation": {
    "value": "$XX,XXX,XXX format",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "Check firm_policy section 2.1 for valuation ranges by round type"
  },
  "security_type": {
    "value": "Series A Preferred Stock/etc",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "price_per_share": {
    "value": "$X.XX or null if not specified",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "target_ownership_pct": {
    "value": "XX%",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.2 says target 15-20%"
  },
  "option_pool_pct": {
    "value": "XX%",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.3 requires at least 15%"
  },
  "option_pool_timing": {
    "value": "pre-money or post-money",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  }
}

If a field is not found in deal_model, check if firm_policy has a default. Note conflicts if values differ.`

const liquidationTermsPrompt = `Extract the LIQUIDATION TERMS section fields:

{
  "liquidation_preference_multiple": {
    "value": "1.0 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.4: must be 1x, never >1x"
  },
  "participation_type": {
    "value": "non-participating/participating/capped participating",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.4: always non-participating"
  },
  "dividend_type": {
    "value": "non-cumulative/cumulative/none",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "dividend_rate_pct": {
    "value": "X% or null",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.5: 6% for deals under $5M"
  },
  "anti_dilution_type": {
    "value": "broad-based weighted average/narrow-based weighted average/full ratchet/none",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 2.6: must be broad-based weighted average"
  }
}

Use firm_policy defaults where deal_model doesn't specify. Flag any conflicts with policy.`

const governancePrompt = `Extract the GOVERNANCE section fields:

{
  "board_seats_total": {
    "value": "3 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "board_seats_investor": {
    "value": "1 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 3.1"
  },
  "board_seats_founder": {
    "value": "2 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "board_seats_independent": {
    "value": "0 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "board_observer_rights": {
    "value": "true/false",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 3.1: always include observer rights"
  },
  "investor_consent_for_quorum": {
    "value": "true/false",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "drag_along_threshold_pct": {
    "value": "50%",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 3.4"
  },
  "pro_rata_rights": {
    "value": "true/false",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 3.5"
  }
}`

const founderTermsPrompt = `Extract the FOUNDER TERMS section fields:

{
  "vesting_period_months": {
    "value": "48 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.1: 4 years = 48 months"
  },
  "vesting_cliff_months": {
    "value": "12 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.1: 1 year cliff"
  },
  "vesting_frequency": {
    "value": "monthly/quarterly/annually",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.1: monthly"
  },
  "acceleration_type": {
    "value": "none/single-trigger/double-trigger",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.1: single-trigger not permitted"
  },
  "non_compete_months": {
    "value": "12 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.2: 12 months"
  },
  "non_solicit_months": {
    "value": "24 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 4.2: 24 months"
  }
}`

const transactionTermsPrompt = `Extract the TRANSACTION TERMS section fields:

{
  "exclusivity_days": {
    "value": "45 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 5.1: 45 days"
  },
  "legal_fee_cap": {
    "value": "$25,000 format",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "firm_policy section 5.2: $25,000 standard"
  },
  "expected_closing_days": {
    "value": "30 (number only)",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "governing_law": {
    "value": "Delaware/etc",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  }
}`

const signaturesPrompt = `Extract the SIGNATURES section fields:

Note: Most signature fields will be blank (to be filled at signing). Focus on extracting any mentioned dates or names.

{
  "effective_date": {
    "value": "Date or null if not specified",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "company_signatory_name": {
    "value": "Name of company signatory or null",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "company_signatory_title": {
    "value": "Title (e.g., CEO, CFO) or null",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "investor_signatory_name": {
    "value": "Name of investor signatory or null",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "investor_signatory_title": {
    "value": "Title (e.g., Managing Partner) or null",
    "source": {"file": "...", "location": "..."},
    "confidence": 0.0-1.0,
    "conflicts": [],
    "reasoning": "..."
  },
  "binding_status": {
    "value": "non-binding (term sheets are typically non-binding except exclusivity/confidentiality)",
    "source": {"file": "...", "location": "..."},
    "confidence": 1.0,
    "conflicts": [],
    "reasoning": "Standard term sheet practice"
  }
}`

// sectionPrompts maps each section name to its extraction prompt. Every
// schema section must have an entry.
var sectionPrompts = map[string]string{
	"parties":           partiesPrompt,
	"deal_economics":    dealEconomicsPrompt,
	"liquidation_terms": liquidationTermsPrompt,
	"governance":        governancePrompt,
	"founder_terms":     founderTermsPrompt,
	"transaction_terms": transactionTermsPrompt,
	"signatures":        signaturesPrompt,
}

const (
	// maxReferenceSheets caps how many reference term sheets ride along in
	// each prompt.
	maxReferenceSheets = 3
	// maxReferenceChars truncates long reference documents.
	maxReferenceChars = 5000
)

// buildUserPrompt assembles the per-section user message: the section's
// field prompt followed by the source documents. Reference term sheets are
// included for formatting only, up to maxReferenceSheets, truncated.
func buildUserPrompt(sectionPrompt string, sources map[string]string) string {
	var parts []string

	if dealModel, ok := sources["deal_model"]; ok {
		parts = append(parts, fmt.Sprintf("=== DEAL MODEL (Model.xlsx) ===\n%s", dealModel))
	}
	if policy, ok := sources["firm_policy"]; ok {
		parts = append(parts, fmt.Sprintf("=== FIRM POLICY (firm_policy.md) ===\n%s", policy))
	}

	refs := referenceKeys(sources)
	if len(refs) > 0 {
		parts = append(parts, "=== REFERENCE TERM SHEETS (format examples) ===")
		for _, key := range refs {
			content := sources[key]
			if len(content) > maxReferenceChars {
				content = content[:maxReferenceChars] + "\n... [truncated]"
			}
			parts = append(parts, fmt.Sprintf("\n--- %s ---\n%s", key, content))
		}
	}

	return fmt.Sprintf(`%s

SOURCE DOCUMENTS:

%s

IMPORTANT:
- Extract values from the DEAL MODEL for deal-specific terms
- Use FIRM POLICY for standard terms and defaults
- The reference term sheets are for FORMAT guidance only - do NOT extract values from them
- If a value is not found, set value to null and confidence to 0

Respond with valid JSON only, no markdown formatting.`, sectionPrompt, strings.Join(parts, "\n"))
}

// referenceKeys returns up to maxReferenceSheets source keys that look like
// reference term sheets, in stable order.
func referenceKeys(sources map[string]string) []string {
	var keys []string
	for k := range sources {
		if strings.Contains(k, "Termsheets/") || strings.Contains(strings.ToLower(k), "termsheet") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > maxReferenceSheets {
		keys = keys[:maxReferenceSheets]
	}
	return keys
}
