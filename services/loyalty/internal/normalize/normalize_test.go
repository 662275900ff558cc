package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"+7 (916) 123-45-67", "9161234567", nil},
		{"89161234567", "9161234567", nil},
		{"9161234567", "9161234567", nil},
		{"00 44 916 123 45 67", "9161234567", nil},
		{"916-123-456", "", ErrPhoneTooShort},
		{"call me", "", ErrPhoneTooShort},
		{"", "", ErrRequired},
		{"   ", "", ErrRequired},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Phone(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhone_Idempotent(t *testing.T) {
	once, err := Phone("+7 916 123 45 67")
	require.NoError(t, err)
	twice, err := Phone(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestDate_AllShapesAgree(t *testing.T) {
	for _, in := range []string{"05.03.2024", "05-03-2024", "2024.03.05", "2024-03-05", " 2024-03-05 "} {
		got, err := Date(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-03-05", got, in)
	}
}

func TestDate_Rejections(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"2024/03/05", ErrDateFormat},
		{"5.3.2024", ErrDateFormat},
		{"2024-3-5", ErrDateFormat},
		{"05.03.24", ErrDateFormat},
		{"2024-03-05T10:00:00Z", ErrDateFormat},
		{"31.02.2024", ErrDateInvalid},
		{"2023-02-29", ErrDateInvalid},
		{"2024.13.01", ErrDateInvalid},
		{"", ErrRequired},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Date(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDate_LeapDayAndIdempotence(t *testing.T) {
	got, err := Date("29.02.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	again, err := Date(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAmount_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    string
		wantErr error
	}{
		{"max string", StringValue("1000000"), "1000000", nil},
		{"max number", NumberValue(1_000_000), "1000000", nil},
		{"fractional", StringValue(" 1500.50 "), "1500.5", nil},
		{"just over max", StringValue("1000000.01"), "", ErrAmountTooBig},
		{"zero", StringValue("0"), "", ErrNotPositive},
		{"negative", NumberValue(-5), "", ErrNotPositive},
		{"text", StringValue("fifteen"), "", ErrNotNumber},
		{"infinity text", StringValue("Inf"), "", ErrNotNumber},
		{"infinity number", NumberValue(math.Inf(1)), "", ErrNotFinite},
		{"nan number", NumberValue(math.NaN()), "", ErrNotFinite},
		{"absent", Absent, "", ErrRequired},
		{"oversized", StringValue("1" + strings.Repeat("0", 40)), "", ErrNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    int
		wantErr error
	}{
		{"absent defaults to zero", Absent, 0, nil},
		{"blank defaults to zero", StringValue("  "), 0, nil},
		{"string", StringValue("250"), 250, nil},
		{"number", NumberValue(1_000_000), 1_000_000, nil},
		{"whole decimal", StringValue("10.0"), 10, nil},
		{"fraction", StringValue("10.5"), 0, ErrNotInteger},
		{"negative", NumberValue(-1), 0, ErrNegative},
		{"too many", StringValue("1000001"), 0, ErrPointsTooBig},
		{"garbage", StringValue("ten"), 0, ErrNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Points(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "2 сезона", Key("  2   СЕЗОНА\t"))
	assert.Equal(t, "4 сезона", Key("4 Сезона"))
	assert.Equal(t, "", Key(" \n "))
}

func TestFromAny(t *testing.T) {
	var decoded map[string]any
	dec := json.NewDecoder(strings.NewReader(`{
		"phone": 89161234567,
		"amount": "1500",
		"list": ["first", "second"],
		"empty": [],
		"nothing": null,
		"object": {"a": 1},
		"flag": true
	}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&decoded))

	p := PayloadFromJSON(decoded)
	assert.Equal(t, KindNumber, p.Get("phone").Kind())
	assert.Equal(t, "89161234567", p.Get("phone").String())
	assert.Equal(t, "1500", p.Get("amount").String())
	assert.Equal(t, "first", p.Get("list").String())
	assert.True(t, p.Get("empty").IsAbsent())
	assert.True(t, p.Get("nothing").IsAbsent())
	assert.True(t, p.Get("object").IsAbsent())
	assert.True(t, p.Get("missing").IsAbsent())
	assert.Equal(t, "true", p.Get("flag").String())
}

func TestPayloadFromValues_FirstElement(t *testing.T) {
	p := PayloadFromValues(url.Values{"phone": {"9161234567", "0000000000"}})
	assert.Equal(t, "9161234567", p.Get("phone").String())
	assert.Equal(t, KindString, p.Get("phone").Kind())
}

func TestNumberValue_LiteralText(t *testing.T) {
	assert.Equal(t, "1500", NumberValue(1500).String())
	assert.Equal(t, "0.1", NumberValue(0.1).String())
	assert.Equal(t, "", Absent.String())
}
