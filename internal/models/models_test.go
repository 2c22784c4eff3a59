package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2021, time.March, 4)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2021-03-04"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back.Time))

	var validation *ValidationError
	assert.True(t, errors.As(json.Unmarshal([]byte(`"03/04/2021"`), &back), &validation))
	assert.Equal(t, ColProductionDate, validation.Field)
}

func TestIsWithheld(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"Withheld", true},
		{"withheld", true},
		{" WITHHELD ", true},
		{"Texas", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithheld(tt.state))
			assert.Equal(t, tt.want, Record{State: tt.state}.IsWithheld())
		})
	}
}

func TestSchema_ColumnsInCanonicalOrder(t *testing.T) {
	s := NewSchema(ColVolume, ColYear, ColState)

	assert.Equal(t, []string{ColYear, ColState, ColVolume}, s.Columns())
	assert.True(t, s.Has(ColVolume))
	assert.False(t, s.Has(ColCommodity))
	assert.Equal(t, CanonicalColumns, FullSchema().Columns())
}

func TestDataset_NilSafe(t *testing.T) {
	var ds *Dataset

	assert.Equal(t, 0, ds.Len())
	assert.False(t, ds.HasVolume())
}

func TestDataset_DeriveKeepsSchema(t *testing.T) {
	ds := NewDataset([]Record{{Year: 2020}, {Year: 2021}}, NewSchema(ColYear))

	derived := ds.Derive(ds.Records[:1])

	assert.Equal(t, 1, derived.Len())
	assert.Equal(t, 2, ds.Len())
	assert.False(t, derived.HasVolume())
}

func TestDiagnostics(t *testing.T) {
	diags := Diagnostics{
		CellParseFailure(ColVolume, 3),
		MissingOptionalColumn(ColCounty, WithheldValue),
	}

	assert.False(t, diags.HasErrors())
	assert.Len(t, diags.OfKind(KindCellParseFailure), 1)
	assert.Equal(t, 3, diags[0].Count)

	diags = append(diags, MissingRequiredColumn(ColVolume))
	assert.True(t, diags.HasErrors())
	assert.Empty(t, diags.OfKind(KindFallbackYear))
}

func TestErrors(t *testing.T) {
	notFound := &SourceNotFoundError{Candidates: []string{"a.csv", "b.csv"}}
	assert.Contains(t, notFound.Error(), "a.csv, b.csv")
	assert.True(t, notFound.IsTransient())

	cause := errors.New("EOF")
	unreadable := &UnreadableSourceError{Path: "x.csv", Err: cause}
	wrapped := fmt.Errorf("failed to load dataset: %w", unreadable)
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, unreadable.IsTransient())

	assert.False(t, (&ValidationError{Message: "bad"}).IsTransient())
}
