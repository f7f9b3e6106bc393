package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pricebot/database"
	"pricebot/gate"
	"pricebot/items"
	"pricebot/models"
	"pricebot/prices"
)

// fakeSurface plays back scripted responses and records everything the
// flow presented or sent.
type fakeSurface struct {
	formValues  map[string]string
	formErr     error
	selectValue string
	selectErr   error
	confirm     bool
	confirmErr  error

	formShown     bool
	selectShown   bool
	confirmShown  bool
	selectOptions []SelectOption
	replies       []string
	expiredNotice string
	delivered     *Summary
	imageBytes    []byte
	cleanedUp     bool
}

func (f *fakeSurface) PresentForm(_ context.Context, _ Session, _ string, _ []FormField, _ time.Duration) (map[string]string, error) {
	f.formShown = true
	return f.formValues, f.formErr
}

func (f *fakeSurface) PresentSelect(_ context.Context, _ Session, _ string, options []SelectOption, _ time.Duration) (string, error) {
	f.selectShown = true
	f.selectOptions = options
	return f.selectValue, f.selectErr
}

func (f *fakeSurface) PresentConfirm(_ context.Context, _ Session, _ string, _ time.Duration) (bool, error) {
	f.confirmShown = true
	return f.confirm, f.confirmErr
}

func (f *fakeSurface) ExpireSelection(_ context.Context, _ Session, notice string) error {
	f.expiredNotice = notice
	return nil
}

func (f *fakeSurface) Reply(_ context.Context, _ Session, content string) error {
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeSurface) Deliver(_ context.Context, _ Session, summary Summary, image []byte) error {
	f.delivered = &summary
	f.imageBytes = image
	return nil
}

func (f *fakeSurface) Cleanup(_ context.Context, _ Session) error {
	f.cleanedUp = true
	return nil
}

const testCatalog = `{
	"items": [
		{"itemID": 242, "name": "World Lock"},
		{"itemID": 1796, "name": "Diamond Lock"}
	]
}`

func setup(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Row{},
		&models.RowAdmin{},
		&models.TrackedItem{},
		&models.PriceObservation{},
	))
	database.DB = db

	file := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(file, []byte(testCatalog), 0o644))
	items.Configure(file)
	items.ResetForTest()

	gate.Configure(nil)
}

func grantRow(t *testing.T, name, userID string) models.Row {
	t.Helper()

	row, err := prices.CreateRow(name)
	require.NoError(t, err)
	require.NoError(t, database.DB.Create(&models.RowAdmin{RowID: row.ID, UserID: userID}).Error)
	return row
}

func observationCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, database.DB.Model(&models.PriceObservation{}).Count(&count).Error)
	return count
}

func TestEditPriceHappyPath(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "alice")

	surface := &fakeSurface{
		formValues: map[string]string{
			fieldMinCount: "1",
			fieldMaxCount: "5",
			fieldMinWLs:   "100",
			fieldMaxWLs:   "200",
		},
		selectValue: "1",
	}

	session := NewSession("alice")
	require.NoError(t, EditPrice(context.Background(), surface, session, 242))

	require.Len(t, surface.selectOptions, 1)
	assert.Equal(t, "buy list", surface.selectOptions[0].Label)

	var obs []models.PriceObservation
	require.NoError(t, database.DB.Find(&obs).Error)
	require.Len(t, obs, 1)
	assert.Equal(t, 1, obs[0].MinCount)
	require.NotNil(t, obs[0].MaxCount)
	assert.Equal(t, 5, *obs[0].MaxCount)
	assert.Equal(t, 100, obs[0].MinUnits)
	require.NotNil(t, obs[0].MaxUnits)
	assert.Equal(t, 200, *obs[0].MaxUnits)

	require.NotNil(t, surface.delivered)
	assert.Equal(t, "World Lock", surface.delivered.ItemName)
	assert.Equal(t, "buy list", surface.delivered.RowName)
	assert.NotEmpty(t, surface.imageBytes)
	assert.True(t, surface.cleanedUp)

	var tracked models.TrackedItem
	require.NoError(t, database.DB.First(&tracked).Error)
	assert.Equal(t, row.ID, tracked.RowID)
	assert.EqualValues(t, 242, tracked.ItemID)
}

func TestEditPriceReusesExistingPairing(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "alice")

	existing, err := prices.GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)

	surface := &fakeSurface{
		formValues:  map[string]string{fieldMinCount: "1", fieldMinWLs: "50"},
		selectValue: "1",
	}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	var count int64
	require.NoError(t, database.DB.Model(&models.TrackedItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var obs models.PriceObservation
	require.NoError(t, database.DB.First(&obs).Error)
	assert.Equal(t, existing.ID, obs.TrackedItemID)
	assert.Nil(t, obs.MaxCount)
	assert.Nil(t, obs.MaxUnits)
}

func TestEditPriceFormTimeout(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "alice")

	surface := &fakeSurface{formErr: ErrTimeout}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	assert.True(t, surface.formShown)
	assert.False(t, surface.selectShown)
	assert.Empty(t, surface.replies)
	assert.EqualValues(t, 0, observationCount(t))

	var count int64
	require.NoError(t, database.DB.Model(&models.TrackedItem{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestEditPriceValidationError(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "alice")

	surface := &fakeSurface{
		formValues: map[string]string{fieldMinCount: "lots", fieldMinWLs: "100"},
	}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	assert.False(t, surface.selectShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "Invalid number")
	assert.EqualValues(t, 0, observationCount(t))
}

func TestEditPriceRejectsNegativeCount(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "alice")

	surface := &fakeSurface{
		formValues: map[string]string{fieldMinCount: "-2", fieldMinWLs: "100"},
	}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	assert.False(t, surface.selectShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "must not be negative")
	assert.EqualValues(t, 0, observationCount(t))
}

func TestEditPriceNoManageableRows(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "somebody-else")

	surface := &fakeSurface{
		formValues: map[string]string{fieldMinCount: "1", fieldMinWLs: "100"},
	}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	assert.False(t, surface.selectShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "don't have any rows")
	assert.EqualValues(t, 0, observationCount(t))
}

func TestEditPriceSelectionTimeout(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "alice")

	surface := &fakeSurface{
		formValues: map[string]string{fieldMinCount: "1", fieldMinWLs: "100"},
		selectErr:  ErrTimeout,
	}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 242))

	assert.Equal(t, "Time expired, please try again.", surface.expiredNotice)
	assert.EqualValues(t, 0, observationCount(t))
	assert.Nil(t, surface.delivered)
}

func TestEditPriceUnknownItem(t *testing.T) {
	setup(t)
	grantRow(t, "buy list", "alice")

	surface := &fakeSurface{}
	require.NoError(t, EditPrice(context.Background(), surface, NewSession("alice"), 999_999))

	assert.False(t, surface.formShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "Item not found")
}

func TestSessionMatches(t *testing.T) {
	session := NewSession("alice")
	other := NewSession("alice")

	assert.True(t, session.Matches(session.Token))
	assert.False(t, session.Matches(other.Token))
	assert.False(t, session.Matches(""))
}

func TestRemoveItemConfirmed(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "alice")

	tracked, err := prices.GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)
	_, err = prices.AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID, MinCount: 1, MinUnits: 100,
	})
	require.NoError(t, err)

	surface := &fakeSurface{confirm: true}
	require.NoError(t, RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242))

	assert.True(t, surface.confirmShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "Removed the item `World Lock`")

	var count int64
	require.NoError(t, database.DB.Model(&models.TrackedItem{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.EqualValues(t, 0, observationCount(t))
}

func TestRemoveItemCanceled(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "alice")

	tracked, err := prices.GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)
	_, err = prices.AddObservation(models.PriceObservation{
		TrackedItemID: tracked.ID, MinCount: 1, MinUnits: 100,
	})
	require.NoError(t, err)

	surface := &fakeSurface{confirm: false}
	require.NoError(t, RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242))

	require.Len(t, surface.replies, 1)
	assert.Equal(t, "Deletion canceled.", surface.replies[0])
	assert.EqualValues(t, 1, observationCount(t))
}

func TestRemoveItemExpired(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "alice")

	_, err := prices.GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)

	surface := &fakeSurface{confirmErr: ErrTimeout}
	require.NoError(t, RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242))

	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "expired")

	var count int64
	require.NoError(t, database.DB.Model(&models.TrackedItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRemoveItemUnauthorized(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "somebody-else")

	surface := &fakeSurface{confirm: true}
	require.NoError(t, RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242))

	assert.False(t, surface.confirmShown)
	require.Len(t, surface.replies, 1)
	assert.Contains(t, surface.replies[0], "aren't allowed")
}

func TestRemoveItemStorageFailure(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "somebody-else")

	require.NoError(t, database.DB.Migrator().DropTable(&models.RowAdmin{}))

	surface := &fakeSurface{confirm: true}
	err := RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242)

	assert.Error(t, err)
	assert.False(t, surface.confirmShown)
	assert.Empty(t, surface.replies)
}

func TestRemoveItemOwnerOverride(t *testing.T) {
	setup(t)
	row := grantRow(t, "buy list", "somebody-else")
	gate.Configure([]string{"alice"})

	_, err := prices.GetOrCreateRowItem(row.ID, 242)
	require.NoError(t, err)

	surface := &fakeSurface{confirm: true}
	require.NoError(t, RemoveItem(context.Background(), surface, NewSession("alice"), row.ID, 242))

	assert.True(t, surface.confirmShown)

	var count int64
	require.NoError(t, database.DB.Model(&models.TrackedItem{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
