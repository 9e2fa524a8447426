package tenant

import "time"

// Record mirrors one row in the persistent `organization` table.  The
// operational state is captured by two nullable timestamps:
//
//   - SuspendedAt – organization is temporarily disabled (e.g., billing).
//   - DeletedAt   – organization is permanently removed.
//
// Either timestamp being non-NULL makes the organization invisible to the
// gateway: its domains stop resolving and its slug stops matching.
type Record struct {
	ID          uint64     `db:"id"`
	Slug        string     `db:"slug"`
	Name        string     `db:"name"`
	SuspendedAt *time.Time `db:"suspended_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
