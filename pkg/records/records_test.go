package records

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := NewTable("id", "name", "amount")
	t.Append(Record{"id": "c1", "name": "a", "amount": int64(10)})
	t.Append(Record{"id": "c2", "name": nil, "amount": 2.5})
	return t
}

func TestRequire_ListsEveryMissingColumn(t *testing.T) {
	t.Parallel()

	err := sample().Require("id", "grade", "state")
	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"grade", "state"}, mce.Columns)
	assert.NoError(t, sample().Require("id", "amount"))
}

func TestRenameColumns(t *testing.T) {
	t.Parallel()

	tb := sample()
	require.NoError(t, tb.RenameColumns(map[string]string{"name": "label"}))
	assert.Equal(t, []string{"id", "label", "amount"}, tb.Columns)
	assert.Equal(t, "a", tb.Rows[0]["label"])
	_, stale := tb.Rows[0]["name"]
	assert.False(t, stale)

	err := sample().RenameColumns(map[string]string{"name": "id"})
	assert.Error(t, err, "renaming onto an existing column must fail")
}

func TestDropColumnsAndSetColumn(t *testing.T) {
	t.Parallel()

	tb := sample()
	require.NoError(t, tb.SetColumn("double", func(_ int, r Record) (any, error) {
		f, _ := AsFloat(r["amount"])
		return f * 2, nil
	}))
	assert.Equal(t, 20.0, tb.Rows[0]["double"])

	tb.DropColumns("amount", "unknown")
	assert.Equal(t, []string{"id", "name", "double"}, tb.Columns)
	_, ok := tb.Rows[1]["amount"]
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	a := sample()
	b := a.Clone()
	b.Rows[0]["name"] = "changed"
	b.Columns[0] = "x"
	assert.Equal(t, "a", a.Rows[0]["name"])
	assert.Equal(t, "id", a.Columns[0])
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{"  ", true},
		{math.NaN(), true},
		{"x", false},
		{int64(0), false},
		{0.0, false},
	}
	for _, tc := range tests {
		if got := IsMissing(tc.v); got != tc.want {
			t.Errorf("IsMissing(%#v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tb := NewTable("i", "f", "mix", "d", "s", "none", "bad")
	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	tb.Append(Record{"i": int64(1), "f": 1.5, "mix": int64(1), "d": day, "s": "x", "bad": "x"})
	tb.Append(Record{"i": int64(2), "f": nil, "mix": 2.5, "d": nil, "s": "y", "bad": int64(1)})

	for col, want := range map[string]Kind{
		"i": KindInt, "f": KindFloat, "mix": KindFloat, "d": KindDate, "s": KindText, "none": KindEmpty,
	} {
		got, err := tb.KindOf(col)
		require.NoError(t, err, col)
		assert.Equal(t, want, got, col)
	}

	_, err := tb.KindOf("bad")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := sample()
	b := sample()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// Column order does not matter; numeric equality across int/float does.
	c := NewTable("amount", "name", "id")
	c.Append(Record{"id": "c1", "name": "a", "amount": 10.0})
	c.Append(Record{"id": "c2", "name": nil, "amount": 2.5})
	assert.Equal(t, a.Fingerprint(), c.Fingerprint())

	b.Rows[1]["name"] = "z"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
