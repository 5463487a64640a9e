package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSection(t *testing.T) {
	t.Parallel()

	t.Run("declared fields are present with zero-value records", func(t *testing.T) {
		t.Parallel()
		s, err := NewSection("parties")
		require.NoError(t, err)

		names, err := SectionFieldNames("parties")
		require.NoError(t, err)
		for _, name := range names {
			rec, err := s.Field(name)
			require.NoError(t, err)
			assert.False(t, rec.Found)
			assert.Nil(t, rec.Value)
			assert.Zero(t, rec.Confidence)
		}
	})

	t.Run("unknown section rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewSection("cap_table")
		assert.ErrorIs(t, err, ErrUnknownSection)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()
		s, err := NewSection("governance")
		require.NoError(t, err)
		_, err = s.Field("ceo_salary")
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("binding_status pre-seeded for signatures", func(t *testing.T) {
		t.Parallel()
		s, err := NewSection("signatures")
		require.NoError(t, err)
		rec, err := s.Field("binding_status")
		require.NoError(t, err)
		assert.Equal(t, "non-binding", *rec.Value)
		assert.InDelta(t, 1.0, rec.Confidence, 0.001)
		assert.True(t, rec.Found)
	})
}

func TestSection_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSection("parties")
	require.NoError(t, err)

	rec, err := s.Field("company_name")
	require.NoError(t, err)
	rec.Value = StringPtr("Acme Robotics, Inc.")
	rec.Source = &SourceReference{File: "Model.xlsx", Location: "Summary!B2"}
	rec.Confidence = 1.0
	rec.Found = true
	rec.Reasoning = "Explicitly stated in the deal model summary"

	data, err := json.Marshal(s)
	require.NoError(t, err)

	decoded, err := NewSection("parties")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, decoded))

	got, err := decoded.Field("company_name")
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics, Inc.", *got.Value)
	require.NotNil(t, got.Source)
	assert.Equal(t, "Model.xlsx", got.Source.File)
	assert.Equal(t, "Summary!B2", got.Source.Location)
	assert.InDelta(t, 1.0, got.Confidence, 0.001)
}

func TestSection_UnmarshalDropsUndeclaredFields(t *testing.T) {
	t.Parallel()

	s, err := NewSection("transaction_terms")
	require.NoError(t, err)

	payload := `{"governing_law":{"value":"Delaware","confidence":1.0,"found":true},"bogus_field":{"value":"x"}}`
	require.NoError(t, json.Unmarshal([]byte(payload), s))

	got, err := s.Field("governing_law")
	require.NoError(t, err)
	assert.Equal(t, "Delaware", *got.Value)

	_, err = s.Field("bogus_field")
	assert.ErrorIs(t, err, ErrUnknownField)
}
