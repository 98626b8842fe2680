package domain

import (
	"time"

	"github.com/avenirbook/scheduling-engine/pkg/types"
)

// ModificationType тип изменения записи
type ModificationType string

const (
	ModificationReschedule ModificationType = "reschedule"
	ModificationCancel     ModificationType = "cancel"
)

// ModificationRecord is one immutable row of the modification ledger.
// Appended exactly once per committed reschedule/cancel, in the same unit
// of work as the mutation it describes. Never updated, never deleted —
// corrections, if ever needed, are new rows.
type ModificationRecord struct {
	ID            int64
	AppointmentID int64
	Type          ModificationType

	OldDate            time.Time
	OldStartTime       types.TimeString
	OldDurationMinutes int

	// New* заполняются только для reschedule
	NewDate            *time.Time
	NewStartTime       *types.TimeString
	NewDurationMinutes *int

	OldStatus AppointmentStatus
	NewStatus AppointmentStatus

	Reason  string
	ActorID int64

	CreatedAt time.Time
}
