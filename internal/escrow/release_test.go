package escrow

import (
	"errors"
	"testing"
	"time"

	"opencure/internal/domain"
	"opencure/internal/token"
)

func TestReleaseFunds(t *testing.T) {
	f := newFixture(t, 1000, time.Hour)
	f.donate(alice, 1000)
	id := f.approvedMilestone(500, alice)

	if err := f.acct.ReleaseFunds(f.ctx, owner, id); err != nil {
		t.Fatalf("ReleaseFunds: %v", err)
	}
	if f.balance(scientist) != 500 || f.acct.TotalReleased() != 500 {
		t.Fatalf("scientist=%d released=%d", f.balance(scientist), f.acct.TotalReleased())
	}
	m, _ := f.acct.Milestone(id)
	if !m.FundsReleased {
		t.Fatalf("milestone not marked released")
	}
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, id), domain.ErrAlreadyReleased)
	if f.balance(scientist) != 500 {
		t.Fatalf("second release paid out")
	}
	f.checkBooks()
}

func TestReleaseRejects(t *testing.T) {
	f := newFixture(t, 1000, 0)
	f.donate(alice, 400)
	f.donate(bob, 600)
	pending, _ := f.acct.AddMilestone(f.ctx, owner, "Pending", 100, 0)
	unvoted, _ := f.acct.AddMilestone(f.ctx, owner, "Unvoted", 100, 0)
	if err := f.acct.CompleteMilestone(f.ctx, owner, unvoted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.acct.VoteOnMilestone(f.ctx, alice, unvoted, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	wantErr(t, f.acct.ReleaseFunds(f.ctx, alice, unvoted), domain.ErrOnlyOwner)
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, 9), domain.ErrInvalidMilestone)
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, pending), domain.ErrNotCompleted)
	// alice holds 40% of the voting power.
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, unvoted), domain.ErrVoteNotPassed)

	if f.acct.TotalReleased() != 0 || f.balance(scientist) != 0 {
		t.Fatalf("rejected release moved funds")
	}
	f.checkBooks()
}

func TestReleaseInsufficientCustody(t *testing.T) {
	f := newFixture(t, 100, 0)
	f.donate(alice, 100)
	id := f.approvedMilestone(150, alice)
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, id), domain.ErrInsufficientBalance)
}

func TestReleaseIgnoresUndonatedCustodyTokens(t *testing.T) {
	f := newFixture(t, 100, 0)
	f.donate(alice, 100)
	if err := f.ledger.Mint(f.ctx, custody, 5000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	id := f.approvedMilestone(5000, alice)

	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, id), domain.ErrInsufficientBalance)
	if s := f.acct.Snapshot(); s.TotalReleased != 0 {
		t.Fatalf("release recorded anyway: %+v", s)
	}
	if m, _ := f.acct.Milestone(id); m.FundsReleased {
		t.Fatalf("milestone marked released")
	}
	if got := f.balance(scientist); got != 0 {
		t.Fatalf("scientist balance = %d, want 0", got)
	}
	if got := f.balance(custody); got != 5100 {
		t.Fatalf("custody balance = %d, want 5100", got)
	}
}

func TestReleaseRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture(t, 1000, 0)
	f.donate(alice, 1000)
	id := f.approvedMilestone(500, alice)
	eventsBefore := len(f.acct.History())

	f.ledger.FailNext(token.OpTransfer, errors.New("connection reset"))
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, id), domain.ErrTransferFailed)

	m, _ := f.acct.Milestone(id)
	if m.FundsReleased || f.acct.TotalReleased() != 0 || len(f.acct.History()) != eventsBefore {
		t.Fatalf("failed transfer changed state: %+v", m)
	}

	f.ledger.FailNext(token.OpBalanceOf, errors.New("timeout"))
	wantErr(t, f.acct.ReleaseFunds(f.ctx, owner, id), domain.ErrTransferFailed)

	if err := f.acct.ReleaseFunds(f.ctx, owner, id); err != nil {
		t.Fatalf("retry: %v", err)
	}
	f.checkBooks()
}

func TestReleaseGoesToCurrentScientist(t *testing.T) {
	f := newFixture(t, 1000, 0)
	f.donate(alice, 1000)
	id := f.approvedMilestone(300, alice)
	if err := f.acct.UpdateScientist(f.ctx, owner, carol); err != nil {
		t.Fatalf("UpdateScientist: %v", err)
	}
	if err := f.acct.ReleaseFunds(f.ctx, owner, id); err != nil {
		t.Fatalf("ReleaseFunds: %v", err)
	}
	if f.balance(carol) != 300 || f.balance(scientist) != 0 {
		t.Fatalf("carol=%d scientist=%d", f.balance(carol), f.balance(scientist))
	}
}

func TestReleaseWithoutVoteGate(t *testing.T) {
	f := newFixture(t, 1000, 0, func(p *Params) { p.DisableVoteGate = true })
	f.donate(alice, 1000)
	id, _ := f.acct.AddMilestone(f.ctx, owner, "Phase I", 200, 0)
	if err := f.acct.CompleteMilestone(f.ctx, owner, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.acct.ReleaseFunds(f.ctx, owner, id); err != nil {
		t.Fatalf("ReleaseFunds: %v", err)
	}
}

func TestReleaseAllMilestonesCompletesProject(t *testing.T) {
	f := newFixture(t, 1000, 0)
	f.donate(alice, 1000)
	first := f.approvedMilestone(400, alice)
	second := f.approvedMilestone(600, alice)

	if err := f.acct.ReleaseFunds(f.ctx, owner, first); err != nil {
		t.Fatalf("release first: %v", err)
	}
	if f.acct.Status() != domain.StatusActive {
		t.Fatalf("status after first release = %s", f.acct.Status())
	}
	if err := f.acct.ReleaseFunds(f.ctx, owner, second); err != nil {
		t.Fatalf("release second: %v", err)
	}
	if f.acct.Status() != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", f.acct.Status())
	}

	f.fund(bob, 10)
	wantErr(t, f.acct.Donate(f.ctx, bob, 10), domain.ErrProjectClosed)
	_, err := f.acct.AddMilestone(f.ctx, owner, "Phase III", 1, 0)
	wantErr(t, err, domain.ErrProjectClosed)
	wantErr(t, f.acct.MarkAsFailed(f.ctx, owner), domain.ErrInvalidTransition)
	f.checkBooks()
}
