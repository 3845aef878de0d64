package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by mutations whose target document does not
	// exist or belongs to another parent. Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("not found")

	// ErrDecode marks a stored document whose fields do not match the
	// expected shape. List operations skip such documents.
	ErrDecode = errors.New("decode document")
)

const dateLayout = "2006-01-02"

type scanner interface{ Scan(...any) error }

func newID() string {
	return uuid.NewString()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// setClause accumulates the assignments of a merge-update.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) empty() bool {
	return len(s.cols) == 0
}

func (s *setClause) sql() string {
	return strings.Join(append(s.cols, "updated_at = CURRENT_TIMESTAMP"), ", ")
}

func isDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
