package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/rpggio/proofescrow/internal/repository/mocks"
	"github.com/rpggio/proofescrow/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	admin   project.Address = "GADMIN"
	oracle  project.Address = "GORACLE"
	creator project.Address = "GCREATOR"
	donor   project.Address = "GDONOR"
)

type fixedClock uint64

func (c fixedClock) Now() uint64 { return uint64(c) }

// allowAll records every identity it was asked to prove.
type allowAll struct {
	denied  map[project.Address]bool
	checked []project.Address
}

func (a *allowAll) RequireAuth(_ context.Context, addr project.Address) error {
	a.checked = append(a.checked, addr)
	if a.denied[addr] {
		return project.ErrUnauthorized
	}
	return nil
}

type recorder struct {
	events []event.Event
}

func (r *recorder) Record(_ context.Context, e *event.Event) error {
	r.events = append(r.events, *e)
	return nil
}

type fixture struct {
	registry *project.Registry
	store    *store.Store
	auth     *allowAll
	events   *recorder
}

func newFixture(t *testing.T, opts project.Options) *fixture {
	t.Helper()
	st := store.New(store.NewMemoryKV())
	auth := &allowAll{denied: map[project.Address]bool{}}
	rec := &recorder{}
	if opts.Events == nil {
		opts.Events = rec
	}
	return &fixture{
		registry: project.NewRegistry(st, fixedClock(100), auth, opts),
		store:    st,
		auth:     auth,
		events:   rec,
	}
}

func hashOf(b byte) project.Hash {
	var h project.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func (f *fixture) register(t *testing.T, goal int64) *project.Project {
	t.Helper()
	proj, err := f.registry.RegisterProject(context.Background(), project.RegisterRequest{
		Creator:   creator,
		Goal:      project.NewAmount(goal),
		ProofHash: hashOf(1),
		Deadline:  200,
	})
	require.NoError(t, err)
	return proj
}

func TestRegisterProject_SequentialIDs(t *testing.T) {
	f := newFixture(t, project.Options{})
	for want := uint64(0); want < 3; want++ {
		proj := f.register(t, 1000)
		require.Equal(t, want, proj.ID)
		require.Equal(t, project.StatusFunding, proj.Status)
		require.True(t, proj.Balance.IsZero())
	}
}

func TestRegisterProject_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})

	for _, goal := range []int64{0, -1, -1000} {
		_, err := f.registry.RegisterProject(ctx, project.RegisterRequest{
			Creator: creator, Goal: project.NewAmount(goal), ProofHash: hashOf(1), Deadline: 200,
		})
		require.ErrorIs(t, err, project.ErrInvalidGoal)
	}

	for _, deadline := range []uint64{0, 99, 100} {
		_, err := f.registry.RegisterProject(ctx, project.RegisterRequest{
			Creator: creator, Goal: project.NewAmount(1), ProofHash: hashOf(1), Deadline: deadline,
		})
		require.ErrorIs(t, err, project.ErrInvalidDeadline)
	}

	// Rejected registrations consume no ids.
	require.Equal(t, uint64(0), f.register(t, 1).ID)
}

func TestRegisterProject_GoalCheckedBeforeDeadline(t *testing.T) {
	f := newFixture(t, project.Options{})
	_, err := f.registry.RegisterProject(context.Background(), project.RegisterRequest{
		Creator: creator, Goal: project.NewAmount(0), Deadline: 0,
	})
	require.ErrorIs(t, err, project.ErrInvalidGoal)
}

func TestGetProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	registered := f.register(t, 1000)

	got, err := f.registry.GetProject(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, registered, got)

	_, err = f.registry.GetProject(ctx, 42)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	require.Equal(t, project.CodeNotFound, project.Code(err))
}

func TestSetOracle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{Admin: admin})

	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))
	got, err := f.store.GetOracle(ctx)
	require.NoError(t, err)
	require.Equal(t, oracle, got)

	// Last write wins.
	require.NoError(t, f.registry.SetOracle(ctx, admin, "GOTHER"))
	got, err = f.store.GetOracle(ctx)
	require.NoError(t, err)
	require.Equal(t, project.Address("GOTHER"), got)
}

func TestSetOracle_Unauthorized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{Admin: admin})

	err := f.registry.SetOracle(ctx, "GIMPOSTOR", oracle)
	require.ErrorIs(t, err, project.ErrUnauthorized)

	f.auth.denied[admin] = true
	err = f.registry.SetOracle(ctx, admin, oracle)
	require.ErrorIs(t, err, project.ErrUnauthorized)

	_, err = f.store.GetOracle(ctx)
	require.Error(t, err)
}

func TestVerifyAndRelease_NotConfigured(t *testing.T) {
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)

	err := f.registry.VerifyAndRelease(context.Background(), proj.ID, hashOf(1))
	require.ErrorIs(t, err, project.ErrOracleNotSet)
	require.Equal(t, project.CodeNotConfigured, project.Code(err))
}

func TestVerifyAndRelease_NotFoundRegardlessOfOracle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})

	err := f.registry.VerifyAndRelease(ctx, 7, hashOf(1))
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))
	err = f.registry.VerifyAndRelease(ctx, 7, hashOf(1))
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestVerifyAndRelease_OneShot(t *testing.T) {
	ctx := context.Background()
	payments := &mocks.Payments{}
	f := newFixture(t, project.Options{Payments: payments})
	proj := f.register(t, 1000)
	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))

	payments.On("Release", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
		return p.ID == proj.ID && p.IsCompleted()
	})).Return(nil).Once()

	require.NoError(t, f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1)))
	require.Contains(t, f.auth.checked, oracle)

	got, err := f.registry.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, got.Status)

	err = f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1))
	require.ErrorIs(t, err, project.ErrAlreadyCompleted)
	err = f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(2))
	require.ErrorIs(t, err, project.ErrAlreadyCompleted)

	payments.AssertExpectations(t)
}

func TestVerifyAndRelease_HashMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)
	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))

	err := f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(9))
	require.ErrorIs(t, err, project.ErrHashMismatch)

	got, err := f.registry.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusFunding, got.Status)

	require.NoError(t, f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1)))
}

func TestVerifyAndRelease_OracleMustAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)
	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))

	f.auth.denied[oracle] = true
	err := f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1))
	require.ErrorIs(t, err, project.ErrUnauthorized)

	got, err := f.registry.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusFunding, got.Status)
}

func TestVerifyAndRelease_BelowGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)
	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))

	_, err := f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(700)})
	require.NoError(t, err)

	require.NoError(t, f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1)))
	got, err := f.registry.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, got.Status)
	require.Equal(t, project.NewAmount(700), got.Balance)
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)

	got, err := f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(300)})
	require.NoError(t, err)
	require.Equal(t, project.NewAmount(300), got.Balance)

	// Goal is not a cap.
	got, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(900)})
	require.NoError(t, err)
	require.Equal(t, project.NewAmount(1200), got.Balance)
	require.Contains(t, f.auth.checked, donor)
}

func TestDeposit_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{})
	proj := f.register(t, 1000)

	_, err := f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(0)})
	require.ErrorIs(t, err, project.ErrInvalidAmount)
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(-5)})
	require.ErrorIs(t, err, project.ErrInvalidAmount)
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: 99, Donor: donor, Amount: project.NewAmount(5)})
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	f.auth.denied[donor] = true
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(5)})
	require.ErrorIs(t, err, project.ErrUnauthorized)
	delete(f.auth.denied, donor)

	max, err := project.ParseAmount("170141183460469231731687303715884105727")
	require.NoError(t, err)
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: max})
	require.NoError(t, err)
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(1)})
	require.ErrorIs(t, err, project.ErrBalanceOverflow)

	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))
	require.NoError(t, f.registry.VerifyAndRelease(ctx, proj.ID, hashOf(1)))
	_, err = f.registry.Deposit(ctx, project.DepositRequest{ProjectID: proj.ID, Donor: donor, Amount: project.NewAmount(1)})
	require.ErrorIs(t, err, project.ErrAlreadyCompleted)
}

func TestScenario_FundAndComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.Options{Admin: admin})

	proj := f.register(t, 1000)
	require.Equal(t, uint64(0), proj.ID)

	require.ErrorIs(t, f.registry.VerifyAndRelease(ctx, 0, hashOf(1)), project.ErrOracleNotSet)
	require.NoError(t, f.registry.SetOracle(ctx, admin, oracle))
	require.ErrorIs(t, f.registry.VerifyAndRelease(ctx, 0, hashOf(2)), project.ErrHashMismatch)
	require.NoError(t, f.registry.VerifyAndRelease(ctx, 0, hashOf(1)))
	require.ErrorIs(t, f.registry.VerifyAndRelease(ctx, 0, hashOf(1)), project.ErrAlreadyCompleted)

	types := make([]event.Type, 0, len(f.events.events))
	for _, e := range f.events.events {
		types = append(types, e.Type)
		require.Equal(t, uint64(100), e.LedgerTime)
	}
	require.Equal(t, []event.Type{event.TypeProjectRegistered, event.TypeOracleSet, event.TypeProjectCompleted}, types)
}

func TestRegistry_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	st := &mocks.Store{}
	boom := errors.New("disk full")
	st.On("AllocateNextID", ctx).Return(uint64(0), boom)
	st.On("LoadProject", ctx, uint64(3)).Return(nil, boom)

	registry := project.NewRegistry(st, fixedClock(100), &allowAll{}, project.Options{})

	_, err := registry.RegisterProject(ctx, project.RegisterRequest{Creator: creator, Goal: project.NewAmount(1), Deadline: 200})
	require.ErrorIs(t, err, boom)
	require.Equal(t, "", project.Code(err))

	_, err = registry.GetProject(ctx, 3)
	require.ErrorIs(t, err, boom)
	st.AssertExpectations(t)
}
