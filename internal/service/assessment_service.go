package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/assessment"
	"github.com/soulmatch/soulmatch-backend/internal/metrics"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/scoring"
)

var (
	ErrIncompleteSubmission = errors.New("please answer all questions before submitting")
	ErrMissingIdentity      = errors.New("no profile found for the signed-in user")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrSubmissionCancelled  = errors.New("submission was cancelled")
	ErrScoringFailed        = errors.New("scoring failed")
	ErrNothingToCancel      = errors.New("no submission in progress")
)

// ScoringError carries the raw failure of the scoring call.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return ErrScoringFailed.Error() + ": " + e.Err.Error()
}

func (e *ScoringError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrScoringFailed) hold for every ScoringError.
func (e *ScoringError) Is(target error) bool { return target == ErrScoringFailed }

// ProfileReader loads the profile context of a user.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// ResultWriter replaces a user's stored personality in one transaction.
type ResultWriter interface {
	SaveResult(ctx context.Context, userID uuid.UUID, res *model.PersonalityResult) error
}

// AttemptRecorder queues submission outcomes for the attempt log.
type AttemptRecorder interface {
	Record(ctx context.Context, a model.AssessmentAttempt) error
}

// AssessmentService drives the questionnaire wizard and its submission.
type AssessmentService struct {
	store     assessment.SessionStore
	profiles  ProfileReader
	results   ResultWriter
	scorer    scoring.Scorer
	attempts  AttemptRecorder
	metrics   *metrics.Metrics
	timeout   time.Duration
	questions []model.Question
	log       zerolog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]*submission
	edits    userLocks
}

// submission is the in-flight record of one user's Submit. Once committing is
// set the result is being written and can no longer be cancelled.
type submission struct {
	cancel     context.CancelCauseFunc
	committing bool
}

// NewAssessmentService creates a new AssessmentService. attempts and m may be nil.
func NewAssessmentService(
	store assessment.SessionStore,
	profiles ProfileReader,
	results ResultWriter,
	scorer scoring.Scorer,
	attempts AttemptRecorder,
	m *metrics.Metrics,
	scoringTimeout time.Duration,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		store:     store,
		profiles:  profiles,
		results:   results,
		scorer:    scorer,
		attempts:  attempts,
		metrics:   m,
		timeout:   scoringTimeout,
		questions: assessment.Questions(),
		log:       log.With().Str("component", "assessment_service").Logger(),
		inFlight:  make(map[uuid.UUID]*submission),
		edits:     userLocks{m: make(map[uuid.UUID]*userLock)},
	}
}

// Questions returns the questionnaire in presentation order.
func (s *AssessmentService) Questions() []model.Question {
	return assessment.Questions()
}

// GetState returns the user's current session, a fresh intro if none is stored.
func (s *AssessmentService) GetState(ctx context.Context, userID uuid.UUID) (model.SessionView, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return model.SessionView{}, err
	}
	return sess.View(), nil
}

// Start enters the question phase, keeping stored progress only when resume is set.
func (s *AssessmentService) Start(ctx context.Context, userID uuid.UUID, resume bool) (model.SessionView, error) {
	return s.mutate(ctx, userID, "start", func(sess *assessment.Session) error {
		return sess.Start(resume)
	})
}

// SetAnswer stores the slider value for the question at questionIndex.
func (s *AssessmentService) SetAnswer(ctx context.Context, userID uuid.UUID, questionIndex, value int) (model.SessionView, error) {
	return s.mutate(ctx, userID, "answer", func(sess *assessment.Session) error {
		return sess.SetAnswer(questionIndex, value)
	})
}

// Next moves forward one question.
func (s *AssessmentService) Next(ctx context.Context, userID uuid.UUID) (model.SessionView, error) {
	return s.mutate(ctx, userID, "next", (*assessment.Session).Next)
}

// Prev moves back one question.
func (s *AssessmentService) Prev(ctx context.Context, userID uuid.UUID) (model.SessionView, error) {
	return s.mutate(ctx, userID, "prev", (*assessment.Session).Prev)
}

// mutate runs fn under the user's edit lock, so a submission that claims the user
// meanwhile waits for the write-back before persisting its submitting phase.
func (s *AssessmentService) mutate(ctx context.Context, userID uuid.UUID, op string, fn func(*assessment.Session) error) (model.SessionView, error) {
	unlock := s.edits.lock(userID)
	defer unlock()

	if s.submitting(userID) {
		return model.SessionView{}, ErrSubmissionInProgress
	}
	sess, err := s.load(ctx, userID)
	if err != nil {
		return model.SessionView{}, err
	}
	if err := fn(sess); err != nil {
		return model.SessionView{}, err
	}
	s.save(ctx, userID, sess)
	s.metrics.ObserveSessionOp(op)
	return sess.View(), nil
}

// Submit scores the completed questionnaire and stores the result. On failure the
// session returns to the question phase with every answer kept. Once running, the
// submission is bounded by the scoring deadline and Cancel, not by ctx.
func (s *AssessmentService) Submit(ctx context.Context, userID uuid.UUID) (*model.PersonalityProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingIdentity
	}

	runCtx, release, err := s.claim(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()

	sess, err := s.begin(ctx, userID, started)
	if err != nil {
		return nil, err
	}

	done := s.metrics.SubmissionStarted()
	defer done()

	// Reverting must survive a cancelled or expired request context.
	bg := context.WithoutCancel(ctx)
	fail := func(outcome model.AttemptOutcome, err error) (*model.PersonalityProfile, error) {
		sess.FailSubmit()
		s.save(bg, userID, sess)
		s.finish(bg, userID, outcome, nil, err, started)
		return nil, err
	}

	profile, err := s.profiles.GetByID(runCtx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fail(model.AttemptFailed, ErrMissingIdentity)
		}
		if errors.Is(context.Cause(runCtx), ErrSubmissionCancelled) {
			return fail(model.AttemptCancelled, ErrSubmissionCancelled)
		}
		return fail(model.AttemptFailed, fmt.Errorf("load profile: %w", err))
	}

	res, err := s.score(runCtx, scoring.NewInput(sess.Items(), profile))
	if err != nil {
		if errors.Is(context.Cause(runCtx), ErrSubmissionCancelled) {
			return fail(model.AttemptCancelled, ErrSubmissionCancelled)
		}
		return fail(model.AttemptFailed, &ScoringError{Err: err})
	}
	if !s.commit(runCtx, userID) {
		return fail(model.AttemptCancelled, ErrSubmissionCancelled)
	}

	result := res.Rounded()
	if err := s.results.SaveResult(bg, userID, result); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fail(model.AttemptFailed, ErrMissingIdentity)
		}
		return fail(model.AttemptFailed, fmt.Errorf("save personality: %w", err))
	}

	if err := sess.CompleteSubmit(); err != nil {
		return nil, err
	}
	if err := s.store.Clear(bg, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to clear assessment session")
	}
	s.finish(bg, userID, model.AttemptCompleted, &result.TypeCode, nil, started)

	now := time.Now()
	return &model.PersonalityProfile{
		UserID:        userID,
		TypeCode:      result.TypeCode,
		TestCompleted: true,
		Dimensions:    result.Dimensions,
		UpdatedAt:     &now,
	}, nil
}

// begin loads the session and moves it into the submitting phase, holding the
// user's edit lock so no concurrent edit can overwrite that phase.
func (s *AssessmentService) begin(ctx context.Context, userID uuid.UUID, started time.Time) (*assessment.Session, error) {
	unlock := s.edits.lock(userID)
	defer unlock()

	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Phase() == model.PhaseSubmitting {
		return nil, ErrSubmissionInProgress
	}
	if !sess.CanSubmit() {
		s.finish(ctx, userID, model.AttemptRejected, nil, ErrIncompleteSubmission, started)
		return nil, ErrIncompleteSubmission
	}
	if err := sess.BeginSubmit(); err != nil {
		return nil, err
	}
	s.save(ctx, userID, sess)
	return sess, nil
}

func (s *AssessmentService) score(ctx context.Context, in scoring.Input) (*scoring.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.scorer.Score(ctx, in)
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
		err = fmt.Errorf("no response within %s: %w", s.timeout, err)
	case errors.Is(err, context.Canceled):
		status = "cancelled"
	default:
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			status = "invalid"
		} else {
			status = "error"
		}
	}
	s.metrics.ObserveScoring(status, time.Since(start))
	return res, err
}

// Cancel aborts the user's running submission. A submitting phase left behind by a
// lost process is reset as well. Answers are kept either way. A submission that is
// already writing its result cannot be cancelled and yields ErrSubmissionInProgress.
func (s *AssessmentService) Cancel(ctx context.Context, userID uuid.UUID) (model.SessionView, error) {
	s.mu.Lock()
	sub, ok := s.inFlight[userID]
	if ok {
		if sub.committing {
			s.mu.Unlock()
			return model.SessionView{}, ErrSubmissionInProgress
		}
		sub.cancel(ErrSubmissionCancelled)
	}
	s.mu.Unlock()

	if ok {
		sess, err := s.load(ctx, userID)
		if err != nil {
			return model.SessionView{}, err
		}
		sess.FailSubmit()
		s.metrics.ObserveSessionOp("cancel")
		return sess.View(), nil
	}

	unlock := s.edits.lock(userID)
	defer unlock()

	sess, err := s.load(ctx, userID)
	if err != nil {
		return model.SessionView{}, err
	}
	if sess.Phase() != model.PhaseSubmitting {
		return model.SessionView{}, ErrNothingToCancel
	}
	sess.FailSubmit()
	s.save(ctx, userID, sess)
	s.metrics.ObserveSessionOp("cancel")
	s.log.Info().Str("user_id", userID.String()).Msg("Reset stale submitting phase")
	return sess.View(), nil
}

// claim registers a submission for userID and returns its cancellable context.
func (s *AssessmentService) claim(ctx context.Context, userID uuid.UUID) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[userID]; busy {
		return nil, nil, ErrSubmissionInProgress
	}
	runCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	s.inFlight[userID] = &submission{cancel: cancel}

	release := func() {
		s.mu.Lock()
		delete(s.inFlight, userID)
		s.mu.Unlock()
		cancel(nil)
	}
	return runCtx, release, nil
}

// commit marks the user's submission as writing its result. It reports false when
// Cancel got there first.
func (s *AssessmentService) commit(runCtx context.Context, userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if context.Cause(runCtx) != nil {
		return false
	}
	if sub, ok := s.inFlight[userID]; ok {
		sub.committing = true
	}
	return true
}

func (s *AssessmentService) submitting(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[userID]
	return ok
}

func (s *AssessmentService) load(ctx context.Context, userID uuid.UUID) (*assessment.Session, error) {
	state, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load assessment session: %w", err)
	}
	if !found {
		return assessment.NewSession(s.questions), nil
	}
	return assessment.Restore(s.questions, state), nil
}

// save writes the session back. Persistence is best-effort: failures are logged only.
func (s *AssessmentService) save(ctx context.Context, userID uuid.UUID, sess *assessment.Session) {
	if err := s.store.Save(ctx, userID, sess.State()); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to save assessment session")
	}
}

func (s *AssessmentService) finish(ctx context.Context, userID uuid.UUID, outcome model.AttemptOutcome, typeCode *string, cause error, started time.Time) {
	s.metrics.ObserveSubmission(string(outcome))

	ev := s.log.Info()
	if cause != nil {
		ev = s.log.Warn().Err(cause)
	}
	ev.Str("user_id", userID.String()).Str("outcome", string(outcome)).Msg("Assessment submission finished")

	if s.attempts == nil {
		return
	}
	a := model.AssessmentAttempt{
		UserID:     userID,
		Outcome:    outcome,
		TypeCode:   typeCode,
		DurationMS: time.Since(started).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if cause != nil {
		msg := cause.Error()
		a.Error = &msg
	}
	if err := s.attempts.Record(ctx, a); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record assessment attempt")
	}
}

// userLocks hands out one mutex per user, dropped once nobody holds or waits on it.
type userLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID uuid.UUID) func() {
	l.mu.Lock()
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}
