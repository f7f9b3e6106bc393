package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var locks = Locks{WL: "wl", DL: "dl", BGL: "bgl"}

func TestDenominationsRoundTrip(t *testing.T) {
	values := []int{0, 1, 99, 100, 101, 9_999, 10_000, 12_345, 122_345,
		-1, -99, -100, -2_345, -10_000, -122_345, 1_000_000}

	for _, wls := range values {
		bgl, dl, wl := Denominations(wls)
		assert.Equal(t, wls, bgl*WLsPerBGL+dl*WLsPerDL+wl, "wls=%d", wls)
	}
}

func TestDenominationsSign(t *testing.T) {
	for _, wls := range []int{-1, -45, -2_345, -122_345, -10_000} {
		bgl, dl, wl := Denominations(wls)
		assert.LessOrEqual(t, bgl, 0, "wls=%d", wls)
		assert.LessOrEqual(t, dl, 0, "wls=%d", wls)
		assert.LessOrEqual(t, wl, 0, "wls=%d", wls)
	}
	for _, wls := range []int{1, 45, 2_345, 122_345, 10_000} {
		bgl, dl, wl := Denominations(wls)
		assert.GreaterOrEqual(t, bgl, 0, "wls=%d", wls)
		assert.GreaterOrEqual(t, dl, 0, "wls=%d", wls)
		assert.GreaterOrEqual(t, wl, 0, "wls=%d", wls)
	}
}

func TestFormatPositive(t *testing.T) {
	expected := `<p>1</p> <img src="bgl" /><p>23</p> <img src="dl" /><p>45</p> <img src="wl" />`
	assert.Equal(t, expected, Format(Exact(12_345), locks))
}

func TestFormatNegative(t *testing.T) {
	expected := `<p>-23</p> <img src="dl" /><p>-45</p> <img src="wl" />`
	assert.Equal(t, expected, Format(Exact(-2_345), locks))

	expected = `<p>-12</p> <img src="bgl" /><p>-23</p> <img src="dl" /><p>-45</p> <img src="wl" />`
	assert.Equal(t, expected, Format(Exact(-122_345), locks))
}

func TestFormatSkipsZeroTiers(t *testing.T) {
	expected := `<p>1</p> <img src="bgl" /><p>45</p> <img src="wl" />`
	assert.Equal(t, expected, Format(Exact(10_045), locks))
}

func TestFormatZero(t *testing.T) {
	assert.Equal(t, ZeroMarker, Format(Exact(0), locks))
	assert.Equal(t, ZeroMarker, Format(Range(0, 0), locks))
}

func TestFormatRangeUsesMidpoint(t *testing.T) {
	expected := `~<p>1</p> <img src="dl" /><p>50</p> <img src="wl" />`
	assert.Equal(t, expected, Format(Range(100, 200), locks))
}

func TestFormatExactRangeDropsMarker(t *testing.T) {
	assert.Equal(t, Format(Exact(50), locks), Format(Range(50, 50), locks))
}

func TestFormatMalformedRangeCollapses(t *testing.T) {
	assert.Equal(t, Format(Exact(50), locks), Format(Range(50, 10), locks))
}

func TestPartsOrder(t *testing.T) {
	parts := Parts(Range(10_000, 14_690))

	assert.Equal(t, []Part{
		{Text: RangeMarker},
		{Text: "1", Icon: "bgl"},
		{Text: "23", Icon: "dl"},
		{Text: "45", Icon: "wl"},
	}, parts)
}
