package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLabel(t *testing.T) {
	tests := []struct {
		index int
		label string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{16384, "XFD"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, ColumnLabel(tt.index))

			idx, err := ColumnIndex(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.index, idx)
		})
	}

	assert.Equal(t, "", ColumnLabel(0))
	assert.Equal(t, "", ColumnLabel(-3))
}

func TestColumnIndex_Invalid(t *testing.T) {
	for _, label := range []string{"", "a", "A1", "ÄB", "ZZZZZZZZ"} {
		_, err := ColumnIndex(label)
		assert.ErrorIs(t, err, ErrInvalidCellID, "label %q", label)
	}
}

func TestParseCellID(t *testing.T) {
	tests := []struct {
		input   string
		want    CellID
		canon   string
		wantErr bool
	}{
		{input: "A1", want: CellID{Col: 1, Row: 1}, canon: "A1"},
		{input: "B12", want: CellID{Col: 2, Row: 12}, canon: "B12"},
		{input: "AA100", want: CellID{Col: 27, Row: 100}, canon: "AA100"},
		{input: "A01", want: CellID{Col: 1, Row: 1}, canon: "A1"},
		{input: "A0", wantErr: true},
		{input: "a1", wantErr: true},
		{input: "1A", wantErr: true},
		{input: "A", wantErr: true},
		{input: "12", wantErr: true},
		{input: "A1B", wantErr: true},
		{input: "", wantErr: true},
		{input: "Sum1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCellID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCellID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canon, got.String())
			assert.True(t, got.IsValid())
		})
	}
}

func TestCellID_Less(t *testing.T) {
	a1 := MustParseCellID("A1")
	b1 := MustParseCellID("B1")
	a2 := MustParseCellID("A2")

	assert.True(t, a1.Less(b1))
	assert.True(t, b1.Less(a2))
	assert.False(t, a2.Less(a1))
	assert.False(t, a1.Less(a1))
}

func TestMustParseCellID_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseCellID("nope") })
}
