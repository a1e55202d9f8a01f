package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tiempos/internal/core"
	"tiempos/internal/log"
	"tiempos/internal/store"
)

// snapshotVersions numbers record snapshots across all sessions, so a
// rebuilt session never reuses a version seen by the dashboard cache.
var snapshotVersions atomic.Uint64

func nextVersion() uint64 {
	return snapshotVersions.Add(1)
}

var (
	ErrNoClinicSelected = errors.New("no clinic selected")
	ErrNotAuthorized    = errors.New("clinic not authorized")
)

// Identity is the authenticated user.
type Identity struct {
	ID    string
	Email string
}

// Session is the application state of one signed-in user: the authorised
// clinics, the active clinic and the cached record list of that clinic. All
// methods are serialised by the session mutex.
type Session struct {
	mu     sync.Mutex
	user   Identity
	store  store.RecordStore
	dir    store.Directory
	events EventPublisher
	logger *log.Logger
	now    func() time.Time

	clinics []core.Clinic
	active  *core.Clinic
	records []core.Record
	version uint64
}

// SessionDeps are the collaborators of a session.
type SessionDeps struct {
	Store     store.RecordStore
	Directory store.Directory
	Events    EventPublisher
	Logger    *log.Logger
	Now       func() time.Time
}

func NewSession(user Identity, deps SessionDeps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		user:   user,
		store:  deps.Store,
		dir:    deps.Directory,
		events: deps.Events,
		logger: logger.WithComponent(log.ComponentSession).With(log.FieldUser, user.Email),
		now:    now,
	}
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	User    Identity
	Clinics []core.Clinic
	Active  *core.Clinic
	Records []core.Record
	Version uint64
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		User:    s.user,
		Clinics: slices.Clone(s.clinics),
		Records: slices.Clone(s.records),
		Version: s.version,
	}
	if s.active != nil {
		c := *s.active
		snap.Active = &c
	}
	return snap
}

// Records returns a copy of the cached records of the active clinic.
func (s *Session) Records() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Active returns the selected clinic.
func (s *Session) Active() (core.Clinic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return core.Clinic{}, false
	}
	return *s.active, true
}

// LoadClinics resolves the user's authorised clinics. Codes without a clinic
// document are skipped. Exactly one clinic is selected automatically.
func (s *Session) LoadClinics(ctx context.Context) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes, err := s.dir.AuthorizedClinics(ctx, s.user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return notice(LevelWarning, MsgNoPermissions), nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load user permissions", log.FieldError, err)
		return notice(LevelError, MsgPermissionsFailed), fmt.Errorf("load permissions: %w", err)
	}
	if len(codes) == 0 {
		return notice(LevelWarning, MsgNoClinics), nil
	}

	found := make([]*core.Clinic, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		g.Go(func() error {
			c, err := s.dir.Clinic(gctx, code)
			if errors.Is(err, store.ErrNotFound) {
				s.logger.WarnContext(ctx, "Clinic document not found", log.FieldClinic, code)
				return nil
			}
			if err != nil {
				return fmt.Errorf("clinic %s: %w", code, err)
			}
			found[i] = &c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load clinics", log.FieldError, err)
		return notice(LevelError, MsgPermissionsFailed), err
	}

	s.clinics = s.clinics[:0]
	for _, c := range found {
		if c != nil {
			s.clinics = append(s.clinics, *c)
		}
	}

	switch len(s.clinics) {
	case 0:
		return notice(LevelWarning, MsgNoValidClinics), nil
	case 1:
		return s.selectLocked(ctx, s.clinics[0])
	default:
		return Notice{}, nil
	}
}

// Clinics returns the authorised clinics loaded by LoadClinics.
func (s *Session) Clinics() []core.Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clinics)
}

// SelectClinic activates one of the authorised clinics by code or label and
// reloads its records.
func (s *Session) SelectClinic(ctx context.Context, codeOrLabel string) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := core.ClinicCodeFromLabel(codeOrLabel)
	for _, c := range s.clinics {
		if c.Code == code {
			return s.selectLocked(ctx, c)
		}
	}
	return notice(LevelWarning, MsgNotAuthorized), fmt.Errorf("%w: %s", ErrNotAuthorized, code)
}

// selectLocked switches the active clinic. The cache is cleared first and
// stays empty when the load fails.
func (s *Session) selectLocked(ctx context.Context, c core.Clinic) (Notice, error) {
	s.active = &c
	s.records = nil
	s.version = nextVersion()

	recs, err := s.store.List(ctx, c.Code)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load clinic records", log.FieldClinic, c.Code, log.FieldError, err)
		return notice(LevelError, MsgLoadFailed), fmt.Errorf("load records %s: %w", c.Code, err)
	}
	core.SortNewestFirst(recs)
	s.records = recs
	s.version = nextVersion()
	s.logger.InfoContext(ctx, "Clinic selected", log.FieldClinic, c.Code, "records", len(recs))
	return Notice{}, nil
}

// Reload re-reads the active clinic's records.
func (s *Session) Reload(ctx context.Context) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return notice(LevelWarning, MsgSelectClinic), ErrNoClinicSelected
	}
	return s.selectLocked(ctx, *s.active)
}

func validationNotice(err error) Notice {
	return notice(LevelWarning, core.UserMessage(err))
}

// Create validates rec and stores it if its number is not yet used in the
// active clinic. The local cache changes only after the store succeeded.
func (s *Session) Create(ctx context.Context, rec core.Record) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return notice(LevelWarning, MsgSelectClinic), ErrNoClinicSelected
	}
	if err := rec.Validate(); err != nil {
		return validationNotice(err), err
	}
	clinic := s.active.Code
	rec.Owner = s.user.Email
	if rec.CreatedAt == 0 {
		rec.CreatedAt = s.now().UnixMilli()
	}

	_, err := s.store.Get(ctx, clinic, rec.Number)
	switch {
	case err == nil:
		return notice(LevelWarning, MsgDuplicate), duplicateError(rec.Number)
	case !errors.Is(err, store.ErrNotFound):
		s.logger.ErrorContext(ctx, "Failed to check record", log.NewFields().WithRecord(clinic, rec.Number).WithError(err).ToSlice()...)
		return notice(LevelError, MsgSaveFailed), err
	}

	if err := s.store.Create(ctx, clinic, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return notice(LevelWarning, MsgDuplicate), duplicateError(rec.Number)
		}
		s.logger.ErrorContext(ctx, "Failed to save record", log.NewFields().WithRecord(clinic, rec.Number).WithError(err).ToSlice()...)
		return notice(LevelError, MsgSaveFailed), err
	}

	s.upsertLocked(rec)
	s.publishChanged(ctx, true, clinic, rec)
	s.logger.InfoContext(ctx, "Record created", log.NewFields().WithRecord(clinic, rec.Number).WithOperation(log.OpCreate).ToSlice()...)
	return notice(LevelSuccess, MsgCreated), nil
}

func duplicateError(number string) error {
	return &core.ValidationError{Message: MsgDuplicate, Err: fmt.Errorf("%w: %s", core.ErrDuplicateNumber, number)}
}

// Update validates rec and replaces the stored record with the same number.
func (s *Session) Update(ctx context.Context, rec core.Record) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return notice(LevelWarning, MsgSelectClinic), ErrNoClinicSelected
	}
	if err := rec.Validate(); err != nil {
		return validationNotice(err), err
	}
	clinic := s.active.Code
	rec.Owner = s.user.Email
	if rec.CreatedAt == 0 {
		if i := s.indexLocked(rec.Number); i >= 0 {
			rec.CreatedAt = s.records[i].CreatedAt
		}
	}

	if err := s.store.Update(ctx, clinic, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notice(LevelWarning, MsgNotFound), err
		}
		s.logger.ErrorContext(ctx, "Failed to update record", log.NewFields().WithRecord(clinic, rec.Number).WithError(err).ToSlice()...)
		return notice(LevelError, MsgSaveFailed), err
	}

	s.upsertLocked(rec)
	s.publishChanged(ctx, false, clinic, rec)
	s.logger.InfoContext(ctx, "Record updated", log.NewFields().WithRecord(clinic, rec.Number).WithOperation(log.OpUpdate).ToSlice()...)
	return notice(LevelSuccess, MsgUpdated), nil
}

// Delete removes a record from the store. The cached entry is pruned even
// when the store reports an error; the error is still logged and returned.
func (s *Session) Delete(ctx context.Context, number string) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return notice(LevelWarning, MsgSelectClinic), ErrNoClinicSelected
	}
	clinic := s.active.Code

	err := s.store.Delete(ctx, clinic, number)
	s.records = slices.DeleteFunc(s.records, func(r core.Record) bool { return r.Number == number })
	s.version = nextVersion()

	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete record", log.NewFields().WithRecord(clinic, number).WithError(err).ToSlice()...)
		return notice(LevelError, MsgDeleteFailed), err
	}
	if s.events != nil {
		if err := s.events.RecordDeleted(ctx, clinic, number); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish delete event", log.FieldError, err)
		}
	}
	s.logger.InfoContext(ctx, "Record deleted", log.NewFields().WithRecord(clinic, number).WithOperation(log.OpDelete).ToSlice()...)
	return notice(LevelSuccess, MsgDeleted), nil
}

func (s *Session) indexLocked(number string) int {
	return slices.IndexFunc(s.records, func(r core.Record) bool { return r.Number == number })
}

func (s *Session) upsertLocked(rec core.Record) {
	if i := s.indexLocked(rec.Number); i >= 0 {
		s.records[i] = rec
	} else {
		s.records = append(s.records, rec)
	}
	core.SortNewestFirst(s.records)
	s.version = nextVersion()
}

// publishChanged never fails the mutation; the store already holds the record.
func (s *Session) publishChanged(ctx context.Context, created bool, clinic string, rec core.Record) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordChanged(ctx, created, clinic, rec); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish record event", log.FieldClinic, clinic, log.FieldNumber, rec.Number, log.FieldError, err)
	}
}
