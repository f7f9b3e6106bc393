package prices

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pricebot/currency"
	"pricebot/items"
	"pricebot/models"
)

const renderCatalog = `{
	"items": [
		{"itemID": 242, "name": "World Lock"},
		{"itemID": 1796, "name": "Diamond Lock"}
	]
}`

func setupCatalog(t *testing.T) {
	t.Helper()

	file := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(file, []byte(renderCatalog), 0o644))
	items.Configure(file)
	items.ResetForTest()
}

func TestTableEmptyRow(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("empty")
	require.NoError(t, err)

	img, err := Table(row.ID)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, headerH, decoded.Bounds().Dy())
}

func TestTableUnknownRow(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	_, err := Table(12345)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTableDeterministic(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("buy list")
	require.NoError(t, err)
	tracked, err := GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)
	_, err = AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID, MinCount: 1, MinUnits: 12_345,
	})
	require.NoError(t, err)

	first, err := Table(row.ID)
	require.NoError(t, err)
	second, err := Table(row.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildEntriesFirstObservation(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("buy list")
	require.NoError(t, err)
	tracked, err := GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)
	_, err = AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID, MinCount: 1, MinUnits: 150,
	})
	require.NoError(t, err)

	loaded, err := GetRow(row.ID)
	require.NoError(t, err)
	entries, err := buildEntries(loaded)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "World Lock", entry.Name)
	assert.Equal(t, []currency.Part{{Text: NotAvailable}}, entry.LastPrice)
	assert.Equal(t, []currency.Part{{Text: NotAvailable}}, entry.Change)
	assert.Equal(t, "#ffff00", entry.ChangeColor)
	assert.False(t, entry.WhiteChangeText)
}

func TestBuildEntriesPriceIncrease(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("buy list")
	require.NoError(t, err)
	tracked, err := GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)

	for _, units := range []int{100, 350} {
		_, err := AddObservation(models.PriceObservation{
			TrackedItemID: tracked.ID, MinCount: 1, MinUnits: units,
		})
		require.NoError(t, err)
	}

	loaded, err := GetRow(row.ID)
	require.NoError(t, err)
	entries, err := buildEntries(loaded)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, []currency.Part{
		{Text: "+"},
		{Text: "2", Icon: "dl"},
		{Text: "50", Icon: "wl"},
	}, entry.Change)
	assert.Equal(t, "#008000", entry.ChangeColor)
	assert.False(t, entry.WhiteChangeText)
}

func TestBuildEntriesPriceDrop(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("buy list")
	require.NoError(t, err)
	tracked, err := GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)

	for _, units := range []int{350, 100} {
		_, err := AddObservation(models.PriceObservation{
			TrackedItemID: tracked.ID, MinCount: 1, MinUnits: units,
		})
		require.NoError(t, err)
	}

	loaded, err := GetRow(row.ID)
	require.NoError(t, err)
	entries, err := buildEntries(loaded)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, []currency.Part{
		{Text: "-2", Icon: "dl"},
		{Text: "-50", Icon: "wl"},
	}, entry.Change)
	assert.Equal(t, "#780c0c", entry.ChangeColor)
	assert.True(t, entry.WhiteChangeText)
}

func TestBuildEntriesRangePrice(t *testing.T) {
	setupDB(t)
	setupCatalog(t)

	row, err := CreateRow("buy list")
	require.NoError(t, err)
	tracked, err := GetOrCreateRowItem(row.ID, 1796)
	require.NoError(t, err)
	_, err = AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID,
		MinCount:      1,
		MaxCount:      intPtr(5),
		MinUnits:      100,
		MaxUnits:      intPtr(200),
	})
	require.NoError(t, err)

	loaded, err := GetRow(row.ID)
	require.NoError(t, err)
	entries, err := buildEntries(loaded)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, []currency.Part{
		{Text: currency.RangeMarker},
		{Text: "1", Icon: "dl"},
		{Text: "50", Icon: "wl"},
	}, entries[0].Price)
}
