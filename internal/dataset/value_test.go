package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{name: "empty is null", raw: "", want: KindNull},
		{name: "whitespace is null", raw: "   ", want: KindNull},
		{name: "integer", raw: "42", want: KindNumber},
		{name: "float", raw: "3.14", want: KindNumber},
		{name: "negative", raw: "-10.5", want: KindNumber},
		{name: "iso date", raw: "2024-01-15", want: KindTime},
		{name: "excel short date", raw: "01-15-24", want: KindTime},
		{name: "slash date", raw: "1/15/2024", want: KindTime},
		{name: "plain text", raw: "Technology", want: KindString},
		{name: "mixed text", raw: "Q1 2024", want: KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCell(tt.raw).Kind())
		})
	}
}

func TestValue_Number(t *testing.T) {
	n, ok := Number(30).Number()
	require.True(t, ok)
	assert.Equal(t, 30.0, n)

	_, ok = String("30x").Number()
	assert.False(t, ok)

	_, ok = Null().Number()
	assert.False(t, ok)
}

func TestValue_Time_CoercesStrings(t *testing.T) {
	ts, ok := String("2024-01-02").Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ts)

	// Unparseable cells behave as null under range comparisons.
	_, ok = String("not a date").Time()
	assert.False(t, ok)

	_, ok = Null().Time()
	assert.False(t, ok)
}

func TestValue_Display(t *testing.T) {
	assert.Equal(t, "", Null().Display())
	assert.Equal(t, "30", Number(30).Display())
	assert.Equal(t, "3.5", Number(3.5).Display())
	assert.Equal(t, "Tech", String("Tech").Display())
	assert.Equal(t, "2024-01-02", Time(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).Display())
}

func TestValue_Less(t *testing.T) {
	assert.True(t, Number(1).Less(Number(2)))
	assert.True(t, String("a").Less(String("b")))
	assert.True(t, Null().Less(Number(0)))
	// Cross-kind ordering is by kind rank, keeping sorts deterministic.
	assert.True(t, Number(999).Less(String("a")))
}

func TestValue_Native(t *testing.T) {
	assert.Nil(t, Null().Native())
	assert.Equal(t, 10.0, Number(10).Native())
	assert.Equal(t, "Tech", String("Tech").Native())
	assert.Equal(t, "2024-01-02", Time(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).Native())
}
