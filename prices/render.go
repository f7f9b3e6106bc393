package prices

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"

	// Lock icons ship as webp; png is accepted as a stand-in.
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"pricebot/currency"
	"pricebot/items"
	"pricebot/models"
)

// NotAvailable is shown where no value exists: a missing previous price
// or an unchanged price.
const NotAvailable = "N/A"

// Entry is one assembled table line, ready to draw.
type Entry struct {
	Name            string
	Price           []currency.Part
	LastPrice       []currency.Part
	Change          []currency.Part
	ChangeColor     string
	WhiteChangeText bool
}

// Table layout.
const (
	colItemW   = 260
	colPriceW  = 220
	colLastW   = 220
	colChangeW = 180
	headerH    = 48
	rowH       = 44
	padX       = 16
	iconSize   = 20
)

var (
	assetsOnce sync.Once
	locksPath  = "./data"
	lockIcons  map[string]image.Image
)

// ConfigureAssets sets the directory the lock icons are read from. Must
// be called before the first render; the icons are cached for the
// process lifetime after that.
func ConfigureAssets(path string) {
	locksPath = path
}

// Table renders the price table of a row into PNG bytes. The image has
// a transparent background and grows with the number of tracked items;
// a row without any tracked items renders as just the header. Unknown
// row ids surface gorm.ErrRecordNotFound.
func Table(rowID uint) ([]byte, error) {
	row, err := GetRow(rowID)
	if err != nil {
		return nil, err
	}

	entries, err := buildEntries(row)
	if err != nil {
		return nil, err
	}

	return draw(entries)
}

// buildEntries aggregates the two most recent observations of every
// tracked item into display records. Items without any observation yet
// are skipped; items with a single one show N/A for the previous price
// and the change.
func buildEntries(row models.Row) ([]Entry, error) {
	entries := make([]Entry, 0, len(row.Items))

	for _, tracked := range row.Items {
		obs, err := LatestObservations(tracked.ID, 2)
		if err != nil {
			return nil, err
		}
		if len(obs) == 0 {
			continue
		}

		item, err := items.GetByID(tracked.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve item %d: %w", tracked.ItemID, err)
		}

		current := obs[0]
		entry := Entry{
			Name:      item.Name,
			Price:     currency.Parts(currency.Value{Min: current.MinUnits, Max: current.MaxUnits}),
			LastPrice: []currency.Part{{Text: NotAvailable}},
		}

		change := 0
		previousMin := 0
		if len(obs) > 1 {
			previous := obs[1]
			previousMin = previous.MinUnits
			change = current.MinUnits - previous.MinUnits
			entry.LastPrice = currency.Parts(currency.Value{Min: previous.MinUnits, Max: previous.MaxUnits})
		}

		entry.Change = changeParts(change)

		switch {
		case change == 0:
			entry.ChangeColor = "#ffff00"
		case current.MinUnits > previousMin:
			entry.ChangeColor = "#008000"
		default:
			entry.ChangeColor = "#780c0c"
			entry.WhiteChangeText = true
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// changeParts formats a signed price change. Positive changes carry an
// explicit plus; a zero change reads N/A instead of a formatted zero.
func changeParts(amount int) []currency.Part {
	if amount == 0 {
		return []currency.Part{{Text: NotAvailable}}
	}

	parts := currency.Parts(currency.Exact(amount))
	if amount > 0 {
		parts = append([]currency.Part{{Text: "+"}}, parts...)
	}
	return parts
}

func draw(entries []Entry) ([]byte, error) {
	loadAssets()

	width := colItemW + colPriceW + colLastW + colChangeW
	height := headerH + rowH*len(entries)

	dc := gg.NewContext(width, height)

	// Header strip.
	dc.SetHexColor("#202225")
	dc.DrawRectangle(0, 0, float64(width), headerH)
	dc.Fill()
	dc.SetHexColor("#ffffff")
	headers := []string{"Item", "Price", "Last Price", "Change"}
	for i, h := range headers {
		dc.DrawStringAnchored(h, colX(i)+padX, headerH/2, 0, 0.35)
	}

	for i, entry := range entries {
		top := float64(headerH + i*rowH)
		midY := top + rowH/2

		// Body strip keeps text legible on the transparent canvas.
		dc.SetRGBA(0.17, 0.18, 0.2, 0.92)
		dc.DrawRectangle(0, top, float64(width-colChangeW), rowH)
		dc.Fill()

		// Change cell carries the highlight color.
		dc.SetHexColor(entry.ChangeColor)
		dc.DrawRectangle(float64(width-colChangeW), top, colChangeW, rowH)
		dc.Fill()

		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored(entry.Name, colX(0)+padX, midY, 0, 0.35)
		drawParts(dc, entry.Price, colX(1)+padX, midY)
		drawParts(dc, entry.LastPrice, colX(2)+padX, midY)

		if entry.WhiteChangeText {
			dc.SetHexColor("#ffffff")
		} else {
			dc.SetHexColor("#000000")
		}
		drawParts(dc, entry.Change, colX(3)+padX, midY)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return buf.Bytes(), nil
}

// drawParts lays out the segments of one price left to right, drawing
// the lock icon after its count. When an icon image is unavailable the
// tier abbreviation is drawn as text instead.
func drawParts(dc *gg.Context, parts []currency.Part, x, y float64) {
	for _, part := range parts {
		w, _ := dc.MeasureString(part.Text)
		dc.DrawStringAnchored(part.Text, x, y, 0, 0.35)
		x += w + 3

		if part.Icon == "" {
			continue
		}

		if icon := lockIcons[part.Icon]; icon != nil {
			dc.DrawImage(icon, int(x), int(y)-iconSize/2)
			x += iconSize + 6
		} else {
			w, _ = dc.MeasureString(part.Icon)
			dc.DrawStringAnchored(part.Icon, x, y, 0, 0.35)
			x += w + 6
		}
	}
}

func colX(col int) float64 {
	widths := []float64{0, colItemW, colItemW + colPriceW, colItemW + colPriceW + colLastW}
	return widths[col]
}

// loadAssets reads and scales the lock icons once per process. Missing
// icon files are logged and fall back to text labels, so rendering
// never depends on binary assets being present.
func loadAssets() {
	assetsOnce.Do(func() {
		lockIcons = make(map[string]image.Image)
		for _, tier := range []string{"wl", "dl", "bgl"} {
			icon, err := loadIcon(tier)
			if err != nil {
				log.Printf("Lock icon %s unavailable, using text label: %v", tier, err)
				continue
			}
			lockIcons[tier] = icon
		}
	})
}

func loadIcon(tier string) (image.Image, error) {
	var lastErr error
	for _, ext := range []string{".webp", ".png"} {
		f, err := os.Open(filepath.Join(locksPath, tier+ext))
		if err != nil {
			lastErr = err
			continue
		}

		src, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			lastErr = err
			continue
		}

		dst := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
		return dst, nil
	}
	return nil, lastErr
}
