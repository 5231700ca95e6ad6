package vertrag

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrNotFound        = errors.New("vertrag not found")
)

// StorageError signals that the durable blob write failed after the
// in-process cache was already updated. Callers must not treat a failed
// save as fully lost: reads from this process will still see the data.
type StorageError struct {
	Category Category
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("durable save for %q failed: %v", e.Category, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Record is one downloadable contract template entry. Records are immutable
// after creation and only removed by delete-by-id.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DriveLink string    `json:"driveLink"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is the closed set of record partitions. Each category owns an
// independent ordered record list and an independent durable blob.
type Category string

const (
	CategoryVertragsvorlagen   Category = "vertragsvorlagen"
	CategoryGebaeudeversorgung Category = "gebaeudeversorgung"
)

// Categories lists all known categories.
func Categories() []Category {
	return []Category{CategoryVertragsvorlagen, CategoryGebaeudeversorgung}
}

// ParseCategory validates a client-supplied category name. An empty value
// defaults to vertragsvorlagen.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "":
		return CategoryVertragsvorlagen, nil
	case CategoryVertragsvorlagen:
		return CategoryVertragsvorlagen, nil
	case CategoryGebaeudeversorgung:
		return CategoryGebaeudeversorgung, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// BlobName returns the fixed, non-randomized object key that holds the
// category's JSON array. vertragsvorlagen keeps the legacy key so existing
// deployments retain their data.
func (c Category) BlobName() string {
	if c == CategoryVertragsvorlagen {
		return "vertraege.json"
	}
	return string(c) + ".json"
}
