package service

import (
	"agroplan.io/agroplan/internal/domain"
)

// EditGuard decides whether an update to an approved entity must send it
// back for review. It only computes a decision; callers apply it to the row
// they are about to write.
type EditGuard struct {
	watched             []string
	clearRemarkOnRevert bool
}

// LandEditGuard watches the farmer-editable land fields.
var LandEditGuard = EditGuard{watched: domain.LandWatchedFields}

// CropPlanEditGuard watches the farmer-editable plan fields. A reverted plan
// also loses its admin remark, since the remark described the old plan.
var CropPlanEditGuard = EditGuard{
	watched:             domain.CropPlanWatchedFields,
	clearRemarkOnRevert: true,
}

// RevertDecision is the outcome of EditGuard.Evaluate.
type RevertDecision struct {
	// Changed lists the watched fields whose value differs.
	Changed []string
	// Revert is set when the entity must return to pending.
	Revert bool
	// ClearRemark is set when the admin remark must be emptied as well.
	ClearRemark bool
}

// Evaluate compares the watched fields of previous and proposed. An approved
// entity whose watched fields changed is reverted to pending unless the caller
// explicitly requested a different status.
func (g EditGuard) Evaluate(previous, proposed domain.FieldValues, previousStatus domain.ApprovalStatus, requested *domain.ApprovalStatus) RevertDecision {
	d := RevertDecision{Changed: previous.Diff(proposed, g.watched)}
	if len(d.Changed) == 0 || previousStatus != domain.ApprovalApproved {
		return d
	}
	if requested != nil && *requested != previousStatus {
		return d
	}
	d.Revert = true
	d.ClearRemark = g.clearRemarkOnRevert
	return d
}

// Apply writes the decision into the in-flight status and remark.
func (d RevertDecision) Apply(status *domain.ApprovalStatus, remark *string) {
	if !d.Revert {
		return
	}
	*status = domain.ApprovalPending
	if d.ClearRemark {
		*remark = ""
	}
}
