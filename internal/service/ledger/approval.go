package ledger

import (
	"context"
	"fmt"

	"budgetledger/internal/model"
	"budgetledger/pkg/metrics"
)

// 状态机：Pending -> Approved | Rejected，两者均为终态
var decisions = map[model.ApprovalStatus]struct{ op, event string }{
	model.ApprovalApproved: {op: "approve", event: "approved"},
	model.ApprovalRejected: {op: "reject", event: "rejected"},
}

func requirePending(r *model.AdditionalRequest, op string) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: cannot %s request %s in status %s",
			ErrInvalidTransition, op, r.ID, r.Status)
	}
	return nil
}

// Approve moves a pending request to Approved. The transition is checked
// before approvedBy, so a decided request reports ErrInvalidTransition even
// when approvedBy is blank. Approval does not change any project budget; it
// is published as a ledger.request.approved event.
func (l *Ledger) Approve(ctx context.Context, id, approvedBy string) (*model.AdditionalRequest, error) {
	return l.decide(ctx, id, model.ApprovalApproved, func(r *model.AdditionalRequest) error {
		if err := required("approved_by", approvedBy); err != nil {
			return err
		}
		at := l.now()
		r.ApprovedBy, r.ApprovedAt, r.RejectionReason = approvedBy, &at, ""
		return nil
	})
}

// Reject moves a pending request to Rejected with the given reason.
func (l *Ledger) Reject(ctx context.Context, id, reason string) (*model.AdditionalRequest, error) {
	return l.decide(ctx, id, model.ApprovalRejected, func(r *model.AdditionalRequest) error {
		if err := required("rejection_reason", reason); err != nil {
			return err
		}
		r.RejectionReason, r.ApprovedBy, r.ApprovedAt = reason, "", nil
		return nil
	})
}

func (l *Ledger) decide(ctx context.Context, id string, to model.ApprovalStatus, apply func(*model.AdditionalRequest) error) (_ *model.AdditionalRequest, err error) {
	d := decisions[to]
	defer func() { l.observe(entityRequest, d.op, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, end, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = end(err) }()

	r, err := l.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePending(r, d.op); err != nil {
		return nil, err
	}
	prev := r.UpdatedAt
	if err := apply(r); err != nil {
		return nil, err
	}
	r.Status = to
	r.UpdatedAt = l.now()
	if err := l.store.Requests().Update(ctx, r, prev); err != nil {
		return nil, storeErr(entityRequest, id, err)
	}
	if err := l.emit(ctx, entityRequest, d.event, r.ID, r.Project, r); err != nil {
		return nil, err
	}
	metrics.IncrementRequestTransition(string(to))
	return r, nil
}
