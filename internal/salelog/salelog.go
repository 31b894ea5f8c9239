// Package salelog keeps the append-only record of sold listings. Entries
// are newline-delimited JSON, written once and never rewritten in place;
// statistics are computed by a linear scan over the file.
package salelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/estate-manager/property-service/internal/property/domain"
)

type Action string

const (
	// ActionMarkedAsSold is written by the explicit sold endpoint.
	ActionMarkedAsSold Action = "MARKED_AS_SOLD"
	// ActionAutoDeleted is written when a generic update set status=sold.
	ActionAutoDeleted Action = "AUTO_DELETED"
	// ActionCleanup is written by the batch cleanup of stray sold records.
	ActionCleanup Action = "CLEANUP"
)

// Snapshot captures the descriptive fields of a listing at the moment of
// sale, taken before any deletion happens.
type Snapshot struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Address       string          `json:"address"`
	Price         float64         `json:"price"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	PropertyType  string          `json:"propertyType"`
	SquareFootage *float64        `json:"squareFootage,omitempty"`
	YearBuilt     *int            `json:"yearBuilt,omitempty"`
	Features      []string        `json:"features,omitempty"`
	Location      domain.Location `json:"location"`
	ImageIDs      []string        `json:"imageIds,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	SoldAt        time.Time       `json:"soldAt"`
}

// SnapshotFromProperty builds the sale snapshot for p with the given
// sold-at instant.
func SnapshotFromProperty(p *domain.Property, soldAt time.Time) Snapshot {
	imageIDs := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.PublicID != "" {
			imageIDs = append(imageIDs, img.PublicID)
		}
	}
	return Snapshot{
		ID:            p.ID,
		Title:         p.Title,
		Address:       p.Address,
		Price:         p.Price,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		PropertyType:  string(p.PropertyType),
		SquareFootage: p.SquareFootage,
		YearBuilt:     p.YearBuilt,
		Features:      p.Features,
		Location:      p.Location,
		ImageIDs:      imageIDs,
		CreatedAt:     p.CreatedAt,
		SoldAt:        soldAt,
	}
}

// Entry is one line of the sale log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Property  Snapshot  `json:"property"`
}

type RecentSale struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	SoldAt time.Time `json:"soldAt"`
}

// Stats is the aggregate view over a trailing window of the log.
type Stats struct {
	Period       string         `json:"period"`
	TotalSales   int            `json:"totalSales"`
	TotalValue   float64        `json:"totalValue"`
	AveragePrice float64        `json:"averagePrice"`
	SalesByType  map[string]int `json:"salesByType"`
	SalesByMonth map[string]int `json:"salesByMonth"`
	RecentSales  []RecentSale   `json:"recentSales"`
}

// Log appends sale entries to a single file. It is an explicitly
// constructed value with an open/close lifecycle, not ambient state.
type Log struct {
	path string
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Open creates the log directory if needed and opens the file for
// appending.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sale log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sale log %s: %w", path, err)
	}
	return &Log{path: path, file: f, now: time.Now}, nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Append writes one entry as a single JSON line. The caller decides what
// to do with a failure; the log itself never retries.
func (l *Log) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal sale log entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("sale log %s is closed", l.path)
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("append sale log entry: %w", err)
	}
	return nil
}

// StatsSince scans the whole log and aggregates entries whose timestamp is
// within the trailing window of the given number of days. A log that was
// never written yields zero-valued statistics, not an error. Corrupt lines
// are skipped.
func (l *Log) StatsSince(days int) (*Stats, error) {
	stats := &Stats{
		Period:       fmt.Sprintf("Last %d days", days),
		SalesByType:  map[string]int{},
		SalesByMonth: map[string]int{},
		RecentSales:  []RecentSale{},
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, fmt.Errorf("open sale log %s: %w", l.path, err)
	}
	defer f.Close()

	cutoff := l.now().AddDate(0, 0, -days)

	var recent []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.Timestamp.Before(cutoff) {
			continue
		}

		stats.TotalSales++
		stats.TotalValue += e.Property.Price
		typ := e.Property.PropertyType
		if typ == "" {
			typ = "unknown"
		}
		stats.SalesByType[typ]++
		stats.SalesByMonth[e.Timestamp.UTC().Format("2006-01")]++
		recent = append(recent, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sale log %s: %w", l.path, err)
	}

	if stats.TotalSales > 0 {
		stats.AveragePrice = stats.TotalValue / float64(stats.TotalSales)
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.Before(recent[j].Timestamp)
	})
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	for _, e := range recent {
		stats.RecentSales = append(stats.RecentSales, RecentSale{
			ID:     e.Property.ID,
			Title:  e.Property.Title,
			Price:  e.Property.Price,
			SoldAt: e.Timestamp,
		})
	}
	return stats, nil
}
