// Package render turns an extracted term sheet into the final markdown
// document, in contract-style prose rather than tables.
package render

import (
	"strings"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// placeholderMissing stands in for fields with no extracted or default
// value, so a draft can still be rendered and reviewed.
const placeholderMissing = "[To be provided]"

const signatureBlank = "_________________________"

const termSheetTemplate = `# TERM SHEET

## {{.round_type}} FINANCING
## {{.company_name}}

This Term Sheet summarizes the principal terms of the proposed investment in {{.company_name}} (the "Company"). This Term Sheet is not a legally binding obligation except for the sections entitled "Confidentiality," "Exclusivity," and "Expenses," which shall be binding upon execution. Any other legally binding obligation will only be made pursuant to definitive agreements to be negotiated and executed by the parties.

---

## 1. OFFERING TERMS

**Issuer:** {{.company_name}}, a {{.company_jurisdiction}} corporation (the "Company").

**Founders:** {{.founders}} (collectively, the "Founders").

**Investors:** {{.lead_investor}} (the "Lead Investor"), together with other investors acceptable to the Company and the Lead Investor (collectively, the "Investors").

**Amount of Financing:** The Investors agree to invest {{.investment_amount}} (the "Investment Amount") in the Company.

**Pre-Money Valuation:** The Company is valued at {{.pre_money_valuation}} prior to the Investment (the "Pre-Money Valuation").

**Price Per Share:** Based on the Pre-Money Valuation, the price per share of the Security shall be {{.price_per_share}} (the "Original Purchase Price").

**Type of Security:** The Investment shall be made in the form of {{.security_type}} (the "Preferred Stock" or the "Security").

**Post-Closing Capitalization:** Upon completion of the financing, the Investors shall own approximately {{.target_ownership_pct}} of the Company on a fully-diluted basis.

**Option Pool:** Prior to the closing, the Company shall reserve {{.option_pool_pct}} of its fully-diluted capitalization for issuance to employees, directors, and consultants under the Company's equity incentive plan (the "Option Pool"). The Option Pool shall be created on a {{.option_pool_timing}} basis.

---

## 2. RIGHTS AND PREFERENCES OF THE PREFERRED STOCK

**Liquidation Preference:** In the event of any liquidation, dissolution, or winding up of the Company, whether voluntary or involuntary, or any Deemed Liquidation Event (as defined below), the holders of the Preferred Stock shall be entitled to receive, prior and in preference to any distribution to the holders of Common Stock, an amount per share equal to {{.liquidation_preference_multiple}} times the Original Purchase Price, plus any declared but unpaid dividends (the "Liquidation Preference").

{{.participation_clause}}

**Dividends:** The holders of the Preferred Stock shall be entitled to receive {{.dividend_type}} dividends at the rate of {{.dividend_rate_pct}} per annum of the Original Purchase Price, payable when, as, and if declared by the Board of Directors. No dividends shall be paid on Common Stock unless and until dividends have been paid on the Preferred Stock.

**Anti-Dilution Protection:** The Preferred Stock shall have {{.anti_dilution_type}} anti-dilution protection. In the event the Company issues additional equity securities at a purchase price less than the current conversion price of the Preferred Stock, the conversion price shall be adjusted according to the applicable formula.

**Conversion:** Each share of Preferred Stock shall be convertible, at the option of the holder, at any time, into shares of Common Stock at the then-applicable conversion rate (initially one-to-one, subject to adjustment for stock splits, dividends, and anti-dilution provisions).

**Automatic Conversion:** The Preferred Stock shall automatically convert into Common Stock upon (i) the closing of a firmly underwritten public offering with gross proceeds of at least $50,000,000 and a price per share of at least three times the Original Purchase Price, or (ii) the written consent of the holders of a majority of the outstanding Preferred Stock.

---

## 3. CORPORATE GOVERNANCE

**Board of Directors:** The Board of Directors shall consist of {{.board_seats_total}} members. The Board composition shall be as follows: {{.board_seats_investor}} director(s) designated by the Lead Investor, {{.board_seats_founder}} director(s) designated by the Founders{{.board_independent_clause}}.

{{.board_observer_clause}}

{{.quorum_clause}}

**Protective Provisions:** For so long as any shares of Preferred Stock remain outstanding, the Company shall not, without the prior written consent of the holders of a majority of the Preferred Stock, voting as a separate class:

(a) Alter or change the rights, preferences, or privileges of the Preferred Stock;

(b) Increase or decrease the authorized number of shares of Common Stock or Preferred Stock;

(c) Create any new class or series of shares having rights, preferences, or privileges senior to or on parity with the Preferred Stock;

(d) Redeem or repurchase any shares of Common Stock or Preferred Stock (other than pursuant to equity incentive agreements with service providers);

(e) Declare or pay any dividend or make any distribution on any shares of Common Stock or Preferred Stock;

(f) Effect any merger, consolidation, or sale of all or substantially all of the Company's assets;

(g) Increase or decrease the authorized size of the Board of Directors;

(h) Incur indebtedness in excess of $250,000, other than trade payables incurred in the ordinary course of business;

(i) Enter into any transaction with any Founder, officer, or director, or any affiliate thereof, except for reasonable compensation and benefits approved by the Board.

**Pro-Rata Rights:** {{.pro_rata_clause}}

**Drag-Along Rights:** If the Board of Directors, holders of a majority of the Preferred Stock, and holders of a majority of the Common Stock approve a sale of the Company, all stockholders shall be required to vote in favor of such transaction and to sell their shares on the same terms and conditions.

---

## 4. FOUNDER PROVISIONS

**Vesting:** All shares of Common Stock held by the Founders shall be subject to vesting over {{.vesting_period_months}} months, with {{.vesting_cliff_months}} months cliff vesting and {{.vesting_frequency}} vesting thereafter. Upon any termination of a Founder's employment, the Company shall have the right to repurchase any unvested shares at the lower of cost or fair market value.

**Acceleration:** {{.acceleration_clause}}

**Proprietary Information and Inventions Agreement:** Each Founder and key employee shall enter into a Proprietary Information and Inventions Assignment Agreement in a form acceptable to the Investors.

**Non-Competition:** Each Founder shall agree not to engage in any activity competitive with the Company during employment and for a period of {{.non_compete_months}} months following termination of employment.

**Non-Solicitation:** Each Founder shall agree not to solicit or hire any employee of the Company during employment and for a period of {{.non_solicit_months}} months following termination of employment.

---

## 5. TRANSACTION TERMS

**Exclusivity:** For a period of {{.exclusivity_days}} days from the date this Term Sheet is signed, the Company and Founders agree not to solicit, encourage, negotiate, or accept any offer from any other party for the purchase of equity securities of the Company.

**Expenses:** The Company shall pay the reasonable legal fees and expenses of the Lead Investor in connection with the transactions contemplated by this Term Sheet, up to a maximum of {{.legal_fee_cap}}.

**Expected Closing:** The parties shall use commercially reasonable efforts to close the transaction within {{.expected_closing_days}} days of execution of this Term Sheet.

**Governing Law:** This Term Sheet and the definitive agreements shall be governed by and construed in accordance with the laws of the State of {{.governing_law}}, without giving effect to conflict of laws principles.

**Confidentiality:** This Term Sheet and the terms contained herein are confidential and may not be disclosed to any third party without the prior written consent of the other parties, except to legal and financial advisors under a duty of confidentiality.

---

## 6. SIGNATURES

This Term Sheet is intended to be {{.binding_status}} except for the provisions relating to Confidentiality, Exclusivity, and Expenses, which shall be legally binding upon execution by the parties.

{{.effective_date_clause}}

**COMPANY:**

{{.company_name}}


_______________________________
Name: {{.company_signatory_name}}
Title: {{.company_signatory_title}}
Date: _____________


**LEAD INVESTOR:**

{{.lead_investor}}


_______________________________
Name: {{.investor_signatory_name}}
Title: {{.investor_signatory_title}}
Date: _____________

---

*This Term Sheet expires if not signed by both parties within 14 days of the date first written above.*
`

var tmpl = template.Must(template.New("term_sheet").Parse(termSheetTemplate))

// TermSheet renders the extracted data as a markdown term sheet. Absent
// fields fall back to documented defaults; fields with no sensible default
// render as a visible placeholder.
func TermSheet(ts *model.TermSheet) (string, error) {
	val := func(section, field, def string) string {
		rec, err := ts.Field(section, field)
		if err != nil || rec.ValueOr("") == "" {
			return def
		}
		return rec.ValueOr("")
	}

	data := map[string]string{
		"company_name":         val("parties", "company_name", placeholderMissing),
		"company_jurisdiction": val("parties", "company_jurisdiction", "Delaware"),
		"founders":             val("parties", "founders", placeholderMissing),
		"lead_investor":        val("parties", "lead_investor", placeholderMissing),

		"round_type":           strings.ToUpper(val("deal_economics", "round_type", "SERIES A")),
		"investment_amount":    val("deal_economics", "investment_amount", placeholderMissing),
		"pre_money_valuation":  val("deal_economics", "pre_money_valuation", placeholderMissing),
		"price_per_share":      val("deal_economics", "price_per_share", "TBD"),
		"security_type":        val("deal_economics", "security_type", "Series A Preferred Stock"),
		"target_ownership_pct": val("deal_economics", "target_ownership_pct", "20%"),
		"option_pool_pct":      val("deal_economics", "option_pool_pct", "15%"),
		"option_pool_timing":   val("deal_economics", "option_pool_timing", "pre-money"),

		"liquidation_preference_multiple": val("liquidation_terms", "liquidation_preference_multiple", "1"),
		"participation_clause":            participationClause(val("liquidation_terms", "participation_type", "non-participating")),
		"dividend_type":                   val("liquidation_terms", "dividend_type", "non-cumulative"),
		"dividend_rate_pct":               val("liquidation_terms", "dividend_rate_pct", "6%"),
		"anti_dilution_type":              val("liquidation_terms", "anti_dilution_type", "broad-based weighted average"),

		"board_seats_total":        val("governance", "board_seats_total", "3"),
		"board_seats_investor":     val("governance", "board_seats_investor", "1"),
		"board_seats_founder":      val("governance", "board_seats_founder", "2"),
		"board_independent_clause": independentClause(val("governance", "board_seats_independent", "0")),
		"board_observer_clause":    observerClause(val("governance", "board_observer_rights", "false")),
		"quorum_clause":            quorumClause(val("governance", "investor_consent_for_quorum", "false")),
		"pro_rata_clause":          proRataClause(val("governance", "pro_rata_rights", "true")),

		"vesting_period_months": val("founder_terms", "vesting_period_months", "48"),
		"vesting_cliff_months":  val("founder_terms", "vesting_cliff_months", "12"),
		"vesting_frequency":     val("founder_terms", "vesting_frequency", "monthly"),
		"acceleration_clause":   accelerationClause(val("founder_terms", "acceleration_type", "none")),
		"non_compete_months":    val("founder_terms", "non_compete_months", "12"),
		"non_solicit_months":    val("founder_terms", "non_solicit_months", "24"),

		"exclusivity_days":      val("transaction_terms", "exclusivity_days", "45"),
		"legal_fee_cap":         val("transaction_terms", "legal_fee_cap", "$25,000"),
		"expected_closing_days": val("transaction_terms", "expected_closing_days", "30"),
		"governing_law":         val("transaction_terms", "governing_law", "Delaware"),

		"binding_status":           val("signatures", "binding_status", "non-binding"),
		"effective_date_clause":    effectiveDateClause(val("signatures", "effective_date", "")),
		"company_signatory_name":   val("signatures", "company_signatory_name", signatureBlank),
		"company_signatory_title":  val("signatures", "company_signatory_title", signatureBlank),
		"investor_signatory_name":  val("signatures", "investor_signatory_name", signatureBlank),
		"investor_signatory_title": val("signatures", "investor_signatory_title", signatureBlank),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", eris.Wrap(err, "render: execute template")
	}
	return b.String(), nil
}

func participationClause(participationType string) string {
	switch participationType {
	case "non-participating":
		return `The Preferred Stock shall be non-participating. Upon a liquidation event, holders of Preferred Stock shall receive the greater of (i) the Liquidation Preference, or (ii) the amount they would receive if they converted to Common Stock immediately prior to the liquidation event.`
	case "participating":
		return `The Preferred Stock shall be fully participating. After payment of the Liquidation Preference, the remaining proceeds shall be distributed pro rata to the holders of Common Stock and Preferred Stock on an as-converted basis.`
	default:
		return "The Preferred Stock shall be " + participationType + "."
	}
}

func independentClause(independent string) string {
	if independent == "" || independent == "0" {
		return ""
	}
	return ", and " + independent + " independent director(s) mutually agreed upon by the Company and the Investors"
}

func observerClause(observerRights string) string {
	if !strings.EqualFold(observerRights, "true") {
		return ""
	}
	return `**Board Observer:** The Lead Investor shall have the right to appoint one representative to attend all meetings of the Board of Directors in a non-voting, observer capacity.`
}

func quorumClause(investorConsent string) string {
	if !strings.EqualFold(investorConsent, "true") {
		return ""
	}
	return `**Quorum:** The presence of the director designated by the Lead Investor shall be required to establish a quorum for any meeting of the Board of Directors.`
}

func proRataClause(proRata string) string {
	if strings.EqualFold(proRata, "true") {
		return `Each Investor shall have the right to purchase its pro-rata share of any new securities issued by the Company (subject to customary exceptions), based on such Investor's ownership percentage on a fully-diluted basis.`
	}
	return "The Investors shall not have pro-rata rights in future financings."
}

func accelerationClause(accelerationType string) string {
	lower := strings.ToLower(accelerationType)
	switch {
	case lower == "none":
		return "There shall be no acceleration of vesting upon a change of control or termination event."
	case strings.Contains(lower, "double"):
		return "Upon a change of control followed by termination without cause or resignation for good reason within 12 months of such change of control, 100% of each Founder's unvested shares shall immediately vest (double-trigger acceleration)."
	case strings.Contains(lower, "single"):
		return "Upon a change of control, 100% of each Founder's unvested shares shall immediately vest (single-trigger acceleration)."
	default:
		return "Acceleration: " + accelerationType
	}
}

func effectiveDateClause(effectiveDate string) string {
	if effectiveDate == "" {
		return ""
	}
	return "**Effective Date:** " + effectiveDate
}
