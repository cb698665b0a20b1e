// Package export writes generated reports to local disk or to an
// S3-compatible bucket.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exporter stores body under key and returns where it ended up.
type Exporter interface {
	Export(ctx context.Context, key string, body []byte) (string, error)
}

// ReportKey returns the storage key of a report owned by owner.
func ReportKey(now time.Time, owner string) string {
	d := now.UTC()
	return fmt.Sprintf("reports/%d/%d/%d/%s-%v.json", d.Year(), d.Month(), d.Day(), owner, uuid.New())
}
