package ledger

import (
	"errors"
	"time"

	"github.com/stockroom/stockroom/internal/shared"
)

// MovementKind enumerates the business records that produce ledger entries.
type MovementKind string

const (
	// KindIssue marks an individual issue to one recipient.
	KindIssue MovementKind = "issue"
	// KindBulkIssue marks an issue against a department or project.
	KindBulkIssue MovementKind = "bulk_issue"
	// KindReceipt marks incoming stock.
	KindReceipt MovementKind = "receipt"
	// KindInitial marks the first receipt that creates an item's balance.
	KindInitial MovementKind = "initial"
	// KindAdjustment marks compensating entries written when a record moves between items.
	KindAdjustment MovementKind = "adjustment"
)

// Entry is one immutable quantity change for one item. Entries are never
// updated or deleted; corrections are always new entries.
type Entry struct {
	ID           string       `json:"id"`
	ItemID       string       `json:"item_id"`
	OccurredAt   time.Time    `json:"occurred_at"`
	RefID        string       `json:"ref_id"`
	RefKind      MovementKind `json:"ref_kind"`
	Delta        int64        `json:"delta"`
	ResultingQty int64        `json:"resulting_qty"`
	Remark       string       `json:"remark"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Balance is the materialized current quantity for an item. It equals the
// cumulative sum of all ledger entry deltas for that item whenever no
// transaction scope is in flight.
type Balance struct {
	ItemID      string    `json:"item_id"`
	Quantity    int64     `json:"quantity"`
	LastEntryID string    `json:"last_entry_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IssueRecord captures an individual issue to one recipient.
type IssueRecord struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipient_id"`
	RecipientName string    `json:"recipient_name"`
	ItemID        string    `json:"item_id"`
	ItemName      string    `json:"item_name"`
	IssuedOn      time.Time `json:"issued_on"`
	Quantity      int64     `json:"quantity"`
	FirstIssue    bool      `json:"first_issue"`
	AgainstDue    bool      `json:"against_due"`
	Remark        string    `json:"remark"`
	IssuedBy      string    `json:"issued_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BulkIssueRecord captures an issue against a department or project.
type BulkIssueRecord struct {
	ID          string    `json:"id"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	ItemID      string    `json:"item_id"`
	ItemName    string    `json:"item_name"`
	RecipientID string    `json:"recipient_id"`
	IssuedOn    time.Time `json:"issued_on"`
	Quantity    int64     `json:"quantity"`
	Remark      string    `json:"remark"`
	IssuedBy    string    `json:"issued_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReceiptRecord captures incoming stock for an item.
type ReceiptRecord struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	ItemName   string    `json:"item_name"`
	ReceivedOn time.Time `json:"received_on"`
	Quantity   int64     `json:"quantity"`
	Remark     string    `json:"remark"`
	ReceivedBy string    `json:"received_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// EntryFilter narrows ListEntries results.
type EntryFilter struct {
	ItemID string
	From   time.Time
	To     time.Time
	Limit  int
}

// ErrBalanceNotFound indicates a missing balance row; callers treat it as zero stock.
var ErrBalanceNotFound = errors.New("stock balance not found")

func errInsufficientStock(available, requested int64) error {
	return shared.E(shared.CategoryInsufficientStock, "Insufficient stock. Available: %d, Requested: %d", available, requested)
}
