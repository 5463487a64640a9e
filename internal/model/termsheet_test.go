package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTermSheet(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()
	assert.Equal(t, DocumentTypeTermSheet, ts.DocumentType)

	for _, name := range SectionNames {
		s, err := ts.Section(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := ts.Section("side_letters")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestTermSheet_Field(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()

	rec, err := ts.Field("deal_economics", "investment_amount")
	require.NoError(t, err)
	assert.NotNil(t, rec)

	_, err = ts.Field("deal_economics", "irr")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ts.Field("economics", "investment_amount")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestTermSheet_Conflicts(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()
	assert.Empty(t, ts.Conflicts())

	rec, err := ts.Field("deal_economics", "pre_money_valuation")
	require.NoError(t, err)
	rec.Value = StringPtr("$20,000,000")
	rec.Found = true
	rec.Conflicts = []ConflictingValue{
		{
			Value:      "$18,000,000",
			Source:     SourceReference{File: "firm_policy.md", Location: "Section 2.1"},
			Confidence: 0.5,
		},
	}

	conflicts := ts.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "deal_economics", conflicts[0].Section)
	assert.Equal(t, "pre_money_valuation", conflicts[0].Field)
	assert.Equal(t, "$20,000,000", *conflicts[0].CurrentValue)
	require.Len(t, conflicts[0].Conflicts, 1)
	assert.Equal(t, "$18,000,000", conflicts[0].Conflicts[0].Value)
}

func TestTermSheet_MissingRequired(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()
	missing := ts.MissingRequired()
	assert.Len(t, missing, len(RequiredFields))

	rec, err := ts.Field("parties", "company_name")
	require.NoError(t, err)
	rec.Value = StringPtr("Acme Robotics, Inc.")
	rec.Found = true

	missing = ts.MissingRequired()
	assert.Len(t, missing, len(RequiredFields)-1)
	for _, ref := range missing {
		assert.NotEqual(t, FieldRef{Section: "parties", Field: "company_name"}, ref)
	}
}

func TestTermSheet_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()
	ts.ExtractedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	rec, err := ts.Field("liquidation_terms", "liquidation_preference_multiple")
	require.NoError(t, err)
	rec.Value = StringPtr("1.0")
	rec.Source = &SourceReference{File: "firm_policy.md", Location: "Section 2.4"}
	rec.Confidence = 1.0
	rec.Found = true
	rec.DerivedFromPolicy = true
	rec.Reasoning = "Policy mandates 1x, never above"
	rec.Conflicts = []ConflictingValue{
		{
			Value:      "1.5",
			Source:     SourceReference{File: "Model.xlsx", Location: "Terms!C12"},
			Confidence: 0.5,
		},
	}

	edited, err := ts.Field("parties", "founders")
	require.NoError(t, err)
	edited.Value = StringPtr("J. Rivera, P. Okafor")
	edited.Source = &SourceReference{File: "user_input", Location: "manual edit"}
	edited.Confidence = 1.0
	edited.Found = true
	edited.UserEdited = true

	data, err := json.Marshal(ts)
	require.NoError(t, err)

	var decoded TermSheet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ts.DocumentType, decoded.DocumentType)
	assert.True(t, ts.ExtractedAt.Equal(decoded.ExtractedAt))

	got, err := decoded.Field("liquidation_terms", "liquidation_preference_multiple")
	require.NoError(t, err)
	assert.Equal(t, *rec.Value, *got.Value)
	assert.Equal(t, *rec.Source, *got.Source)
	assert.InDelta(t, rec.Confidence, got.Confidence, 0.001)
	assert.True(t, got.Found)
	assert.True(t, got.DerivedFromPolicy)
	assert.Equal(t, rec.Reasoning, got.Reasoning)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, rec.Conflicts[0], got.Conflicts[0])

	gotEdited, err := decoded.Field("parties", "founders")
	require.NoError(t, err)
	assert.True(t, gotEdited.UserEdited)
	assert.Equal(t, "user_input", gotEdited.Source.File)
}

func TestTermSheet_EachFieldVisitsWholeSchema(t *testing.T) {
	t.Parallel()

	ts := NewTermSheet()
	count := 0
	seen := make(map[string]bool)
	ts.EachField(func(section, field string, rec *FieldRecord) {
		require.NotNil(t, rec)
		seen[section+"."+field] = true
		count++
	})

	want := 0
	for _, name := range SectionNames {
		names, err := SectionFieldNames(name)
		require.NoError(t, err)
		want += len(names)
	}
	assert.Equal(t, want, count)
	assert.Len(t, seen, count) // no duplicates
}

func TestTotalUsage(t *testing.T) {
	t.Parallel()

	calls := []CallRecord{
		{Section: "parties", InputTokens: 1200, OutputTokens: 300},
		{Section: "deal_economics", InputTokens: 1500, OutputTokens: 450},
	}
	total := TotalUsage(calls)
	assert.Equal(t, 2700, total.InputTokens)
	assert.Equal(t, 750, total.OutputTokens)
}
