// Package items serves the game item catalog: a read-only list loaded
// once per process, searchable by id or fuzzily by name.
package items

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DownloadURL is where the catalog is fetched from when no local copy
// exists yet.
var DownloadURL = "https://github.com/mar4ello6/itemsInfoBuilder/releases/download/latest/items.json"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ErrItemNotFound is returned for lookups of unknown item ids.
var ErrItemNotFound = errors.New("item not found")

// Item is one catalog entry. The items file carries far more fields;
// only the ones the bot uses are decoded.
type Item struct {
	ID          uint   `json:"itemID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      int    `json:"rarity"`
	Category    int    `json:"itemCategory"`
}

type itemsFile struct {
	Items []Item `json:"items"`
}

var (
	mu     sync.Mutex
	path   = "./data/items.json"
	loaded []Item
)

// Configure sets the catalog file location. Call before the first
// lookup; changing it afterwards has no effect on the cached catalog.
func Configure(itemsPath string) {
	mu.Lock()
	defer mu.Unlock()
	path = itemsPath
}

// ResetForTest drops the cached catalog so tests can swap files.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	loaded = nil
}

// All returns every catalog item, loading the catalog on first use. The
// file is read from disk when present, otherwise downloaded and cached
// to disk for next time. The lock is not held during the download, so
// concurrent lookups against an already-cached catalog never wait on
// the network.
func All() ([]Item, error) {
	mu.Lock()
	if loaded != nil {
		items := loaded
		mu.Unlock()
		return items, nil
	}
	itemsPath := path
	mu.Unlock()

	data, err := os.ReadFile(itemsPath)
	if err != nil {
		log.Println("No items file, downloading latest release.")
		data, err = download()
		if err != nil {
			return nil, fmt.Errorf("download items: %w", err)
		}
		if err := os.WriteFile(itemsPath, data, 0o644); err != nil {
			log.Printf("Failed to cache items file: %v", err)
		}
	}

	var file itemsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse items file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if loaded == nil {
		loaded = file.Items
	}
	return loaded, nil
}

// GetByID returns the catalog item with the given id.
func GetByID(id uint) (Item, error) {
	all, err := All()
	if err != nil {
		return Item{}, err
	}

	for _, item := range all {
		if item.ID == id {
			return item, nil
		}
	}

	return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
}

// Search ranks catalog items against query by name and returns up to
// limit of the best matches.
func Search(query string, limit int) ([]Item, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(all))
	for i, item := range all {
		names[i] = item.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	results := make([]Item, 0, limit)
	for _, rank := range ranks {
		if len(results) == limit {
			break
		}
		results = append(results, all[rank.OriginalIndex])
	}

	return results, nil
}

func download() ([]byte, error) {
	resp, err := httpClient.Get(DownloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
