package model

import "errors"

// Typed errors for unknown schema references. Callers branch on these
// instead of relying on reflective lookup failures.
var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownField   = errors.New("unknown field")
)

// SectionNames is the fixed extraction order of the seven term sheet
// sections.
var SectionNames = []string{
	"parties",
	"deal_economics",
	"liquidation_terms",
	"governance",
	"founder_terms",
	"transaction_terms",
	"signatures",
}

// sectionFields declares the fixed field set per section. The schema is
// closed: fields outside this table are never created, and lookups against
// unknown names fail with ErrUnknownSection/ErrUnknownField.
var sectionFields = map[string][]string{
	"parties": {
		"company_name",
		"company_jurisdiction",
		"founders",
		"lead_investor",
	},
	"deal_economics": {
		"round_type",
		"investment_amount",
		"pre_money_valuation",
		"security_type",
		"price_per_share",
		"target_ownership_pct",
		"option_pool_pct",
		"option_pool_timing",
	},
	"liquidation_terms": {
		"liquidation_preference_multiple",
		"participation_type",
		"dividend_type",
		"dividend_rate_pct",
		"anti_dilution_type",
	},
	"governance": {
		"board_seats_total",
		"board_seats_investor",
		"board_seats_founder",
		"board_seats_independent",
		"board_observer_rights",
		"investor_consent_for_quorum",
		"drag_along_threshold_pct",
		"pro_rata_rights",
	},
	"founder_terms": {
		"vesting_period_months",
		"vesting_cliff_months",
		"vesting_frequency",
		"acceleration_type",
		"non_compete_months",
		"non_solicit_months",
	},
	"transaction_terms": {
		"exclusivity_days",
		"legal_fee_cap",
		"expected_closing_days",
		"governing_law",
	},
	"signatures": {
		"effective_date",
		"company_signatory_name",
		"company_signatory_title",
		"investor_signatory_name",
		"investor_signatory_title",
		"binding_status",
	},
}

// FieldRef names one field within one section.
type FieldRef struct {
	Section string `json:"section"`
	Field   string `json:"field"`
}

// RequiredFields is the set of fields a usable term sheet cannot omit.
var RequiredFields = []FieldRef{
	{Section: "parties", Field: "company_name"},
	{Section: "deal_economics", Field: "investment_amount"},
	{Section: "deal_economics", Field: "pre_money_valuation"},
	{Section: "deal_economics", Field: "security_type"},
	{Section: "liquidation_terms", Field: "liquidation_preference_multiple"},
}

// SectionFieldNames returns the declared field names for a section in
// schema order.
func SectionFieldNames(section string) ([]string, error) {
	names, ok := sectionFields[section]
	if !ok {
		return nil, ErrUnknownSection
	}
	return names, nil
}
