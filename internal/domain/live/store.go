package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/repository"
	"github.com/google/uuid"
)

// Persistence keys within the user's scope. The clock state and the
// activity log travel on independent channels so a failed write of one
// cannot corrupt the other.
const (
	stateKey = "live.state.v2"
	logKey   = "live.log.v2"
)

// legacyKeys are earlier snapshot locations. The scorched-earth clear
// purges them too so a schema migration can't strand a phantom session.
var legacyKeys = []string{
	"live.state.v1",
	"live.log.v1",
	"live_session_state",
	"live_session_log",
	"session_clock",
}

// StoreConfig wires a Store's collaborators and timing knobs.
type StoreConfig struct {
	UserID       string
	KV           KVStore
	History      HistoryWriter
	Clock        Clock
	Logger       *slog.Logger
	Rules        Rules
	TickPeriod   time.Duration
	PersistEvery int
}

// Store owns the single live Session/ActivityLog pair for one user and
// serializes every mutation. The clock tick is the only background
// activity; it is always cancelled before any terminal mutation so a
// stale tick can never revive a cleared or ended session.
type Store struct {
	userID       string
	kv           KVStore
	history      HistoryWriter
	clock        Clock
	logger       *slog.Logger
	rules        Rules
	tickPeriod   time.Duration
	persistEvery int

	mu       sync.Mutex
	state    *Session
	log      *ActivityLog
	ticks    int
	tickGen  int
	stopTick chan struct{}
}

// NewStore creates a store. It does not touch storage; call Recover
// before serving reads.
func NewStore(cfg StoreConfig) *Store {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tickPeriod := cfg.TickPeriod
	if tickPeriod <= 0 {
		tickPeriod = time.Second
	}
	persistEvery := cfg.PersistEvery
	if persistEvery < 1 {
		persistEvery = 10
	}
	return &Store{
		userID:       cfg.UserID,
		kv:           cfg.KV,
		history:      cfg.History,
		clock:        clock,
		logger:       logger.With("user", cfg.UserID),
		rules:        cfg.Rules,
		tickPeriod:   tickPeriod,
		persistEvery: persistEvery,
	}
}

// StartRequest describes a new session.
type StartRequest struct {
	GameName     string
	Stakes       string
	BuyIn        int64
	IsTournament bool
	Tournament   *TournamentDetails
}

// Start begins a new live session, discarding any existing one first.
// It always succeeds for valid input.
func (s *Store) Start(ctx context.Context, req StartRequest) (Session, error) {
	if req.BuyIn < 0 {
		return Session{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != nil {
		s.clearLocked(ctx)
	}

	now := s.clock.Now()
	s.state = &Session{
		ID:           uuid.NewString(),
		GameName:     req.GameName,
		Stakes:       req.Stakes,
		BuyIn:        req.BuyIn,
		IsTournament: req.IsTournament,
		Tournament:   req.Tournament,
		StartTime:    now,
		Elapsed:      0,
		Phase:        PhaseActive,
		PhaseSince:   now,
	}
	s.log = NewActivityLog(s.state.ID)
	s.startTickLocked()
	s.persistStateLocked(ctx)
	s.persistLogLocked(ctx)

	s.logger.Info("session started", "session", s.state.ID, "game", req.GameName, "buy_in", req.BuyIn)
	return *s.state, nil
}

// Pause freezes the clock, folding the wall time since the clock was
// last known running into the elapsed total.
func (s *Store) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return ErrNoSession
	}
	if s.state.Phase != PhaseActive {
		return ErrNotActive
	}

	s.stopTickLocked()
	now := s.clock.Now()
	s.foldLocked(now)
	s.state.Phase = PhasePaused
	s.state.PhaseSince = now
	s.persistStateLocked(ctx)
	return nil
}

// Resume restarts the clock of a paused session.
func (s *Store) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return ErrNoSession
	}
	if s.state.Phase == PhaseEnded {
		return ErrEnded
	}
	if s.state.Phase != PhasePaused {
		return ErrNotPaused
	}

	s.state.Phase = PhaseActive
	s.state.PhaseSince = s.clock.Now()
	s.startTickLocked()
	s.persistStateLocked(ctx)
	return nil
}

// AddBuyIn records a rebuy or add-on.
func (s *Store) AddBuyIn(ctx context.Context, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.mutateState(ctx, func(state *Session) {
		state.BuyIn += amount
	})
}

// SetTotalBuyIn overwrites the buy-in total.
func (s *Store) SetTotalBuyIn(ctx context.Context, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.mutateState(ctx, func(state *Session) {
		state.BuyIn = amount
	})
}

// AppendChipUpdate appends a stack snapshot to the activity log.
func (s *Store) AppendChipUpdate(ctx context.Context, amount int64, note string) (ChipUpdate, error) {
	if amount < 0 {
		return ChipUpdate{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return ChipUpdate{}, err
	}
	update := ChipUpdate{
		ID:        uuid.NewString(),
		Amount:    amount,
		Note:      note,
		Timestamp: s.clock.Now(),
	}
	s.log.AppendChipUpdate(update)
	s.persistLogLocked(ctx)
	return update, nil
}

// AppendHandHistory appends a hand history entry to the activity log.
func (s *Store) AppendHandHistory(ctx context.Context, content string) (HandHistory, error) {
	if content == "" {
		return HandHistory{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return HandHistory{}, err
	}
	entry := HandHistory{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: s.clock.Now(),
	}
	s.log.AppendHandHistory(entry)
	s.persistLogLocked(ctx)
	return entry, nil
}

// AppendNote appends a free-text note and returns its index.
func (s *Store) AppendNote(ctx context.Context, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return 0, err
	}
	index := s.log.AppendNote(text)
	s.persistLogLocked(ctx)
	return index, nil
}

// EditNote replaces the note at index.
func (s *Store) EditNote(ctx context.Context, index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return err
	}
	if err := s.log.EditNote(index, text); err != nil {
		return err
	}
	s.persistLogLocked(ctx)
	return nil
}

// MarkChipUpdatePosted flags a chip update as posted to the feed.
func (s *Store) MarkChipUpdatePosted(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return err
	}
	if err := s.log.MarkChipUpdatePosted(id); err != nil {
		return err
	}
	s.persistLogLocked(ctx)
	return nil
}

// End finalizes the session into an immutable historical record and
// wipes the live state. The clear is unconditional once the historical
// write has been issued: a ghost live session is worse than a record
// the caller has to re-submit.
func (s *Store) End(ctx context.Context, cashout int64) (string, error) {
	if cashout < 0 {
		return "", ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return "", ErrNoSession
	}
	if s.state.Phase == PhaseEnded {
		return "", ErrEnded
	}

	s.stopTickLocked()
	now := s.clock.Now()
	if s.state.Phase == PhaseActive {
		s.foldLocked(now)
	}
	s.state.Phase = PhaseEnded
	s.state.PhaseSince = now
	s.log.Close(cashout)

	// Make the terminal marker durable before the remote write so a
	// crash here is recoverable as Ended, not as a running clock.
	s.persistStateLocked(ctx)
	s.persistLogLocked(ctx)

	rec := &history.Record{
		ID:            uuid.NewString(),
		UserID:        s.userID,
		LiveSessionID: s.state.ID,
		GameName:      s.state.GameName,
		Stakes:        s.state.Stakes,
		IsTournament:  s.state.IsTournament,
		StartTime:     s.state.StartTime,
		EndTime:       now,
		HoursPlayed:   s.state.Elapsed.Hours(),
		BuyIn:         s.state.BuyIn,
		Cashout:       cashout,
		Profit:        cashout - s.state.BuyIn,
		CreatedAt:     now,
	}
	if s.state.Tournament != nil {
		rec.TournamentName = s.state.Tournament.Name
	}

	recordID, err := s.history.Write(ctx, s.userID, rec)

	s.clearLocked(ctx)

	if err != nil {
		return "", fmt.Errorf("writing session record: %w", err)
	}
	s.logger.Info("session ended", "record", recordID, "profit", rec.Profit, "hours", rec.HoursPlayed)
	return recordID, nil
}

// View is a read-only snapshot of the live session and its derived values.
type View struct {
	Session    Session      `json:"session"`
	Log        *ActivityLog `json:"log"`
	ChipAmount int64        `json:"chip_amount"`
	Profit     int64        `json:"profit"`
}

// Current returns a copy of the live session, if one exists.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return Session{}, false
	}
	return *s.state, true
}

// CurrentView returns the live session together with its activity log
// and derived chip/profit values.
func (s *Store) CurrentView() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return View{}, false
	}
	return View{
		Session:    *s.state,
		Log:        s.log.Clone(),
		ChipAmount: s.log.CurrentChipAmount(s.state.BuyIn),
		Profit:     s.log.CurrentProfit(s.state.BuyIn),
	}, true
}

// Clear wipes the live session and every persisted trace of it. Safe to
// call from any state, any number of times.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx)
}

// Recover classifies any persisted snapshot and either rehydrates the
// clock or clears. It runs once, before the store serves anything else.
func (s *Store) Recover(ctx context.Context) Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	raw, err := s.kv.Get(ctx, s.userID, stateKey)
	if errors.Is(err, repository.ErrNotFound) {
		return VerdictFresh
	}
	if err != nil {
		s.logger.Error("reading clock snapshot", "error", err)
		s.clearLocked(ctx)
		return VerdictIndeterminate
	}

	var state Session
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("clock snapshot undecodable, clearing", "error", err)
		s.clearLocked(ctx)
		return VerdictCorrupted
	}

	log, logErr := s.loadLog(ctx, state.ID)
	if logErr != nil {
		s.logger.Warn("activity log undecodable, clearing", "error", logErr)
		s.clearLocked(ctx)
		return VerdictCorrupted
	}

	verdict := Classify(&state, log, now, s.rules)
	if verdict != VerdictRestorable {
		s.logger.Info("persisted session not resumable", "verdict", string(verdict), "session", state.ID)
		s.clearLocked(ctx)
		return verdict
	}

	// Rehydrate: fold the wall-clock gap the process was dead for.
	if state.Phase == PhaseActive {
		if gap := now.Sub(state.PhaseSince); gap > 0 {
			state.Elapsed += gap
		}
		state.PhaseSince = now
	}

	// Safety net: the folded gap may itself break an invariant.
	if Classify(&state, log, now, s.rules) != VerdictRestorable {
		s.logger.Info("session failed post-rehydration check, clearing", "session", state.ID)
		s.clearLocked(ctx)
		return VerdictCorrupted
	}

	s.state = &state
	if log != nil {
		s.log = log
	} else {
		s.log = NewActivityLog(state.ID)
	}
	if state.Phase == PhaseActive {
		s.startTickLocked()
	}
	s.persistStateLocked(ctx)

	s.logger.Info("session restored", "session", state.ID, "phase", string(state.Phase), "elapsed", state.Elapsed)
	return VerdictRestorable
}

func (s *Store) loadLog(ctx context.Context, sessionID string) (*ActivityLog, error) {
	raw, err := s.kv.Get(ctx, s.userID, logKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	var log ActivityLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, fmt.Errorf("decoding activity log: %w", err)
	}
	if log.SessionID != sessionID {
		// Orphaned log from some other session; not this clock's.
		return nil, nil
	}
	return &log, nil
}

// liveLocked checks that a non-ended session exists.
func (s *Store) liveLocked() error {
	if s.state == nil {
		return ErrNoSession
	}
	if s.state.Phase == PhaseEnded {
		return ErrEnded
	}
	return nil
}

func (s *Store) mutateState(ctx context.Context, mutate func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.liveLocked(); err != nil {
		return err
	}
	mutate(s.state)
	s.persistStateLocked(ctx)
	return nil
}

// foldLocked folds wall time since the clock was last known running
// into the elapsed total.
func (s *Store) foldLocked(now time.Time) {
	if delta := now.Sub(s.state.PhaseSince); delta > 0 {
		s.state.Elapsed += delta
	}
	s.state.PhaseSince = now
}

func (s *Store) startTickLocked() {
	s.stopTickLocked()
	s.tickGen++
	gen := s.tickGen
	stop := make(chan struct{})
	s.stopTick = stop
	go s.runTick(gen, stop)
}

// stopTickLocked cancels the tick synchronously with respect to state:
// bumping the generation invalidates any tick already waiting on the
// lock, so no stale tick can touch a cleared or ended session.
func (s *Store) stopTickLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
	s.tickGen++
}

func (s *Store) runTick(gen int, stop chan struct{}) {
	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(gen)
		}
	}
}

func (s *Store) tick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.tickGen || s.state == nil || s.state.Phase != PhaseActive {
		return
	}
	s.foldLocked(s.clock.Now())
	s.ticks++
	// Persisting every Nth tick bounds write amplification; crash loss
	// is bounded to the throttle window.
	if s.ticks%s.persistEvery == 0 {
		s.persistStateLocked(context.Background())
	}
}

// persistStateLocked writes the clock snapshot. Failures are logged,
// never silently swallowed; memory remains the source of truth until
// the next successful persist.
func (s *Store) persistStateLocked(ctx context.Context) {
	if s.state == nil {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error("encoding clock snapshot", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.userID, stateKey, data); err != nil {
		s.logger.Error("persisting clock snapshot", "error", err)
	}
}

func (s *Store) persistLogLocked(ctx context.Context) {
	if s.log == nil {
		return
	}
	data, err := json.Marshal(s.log)
	if err != nil {
		s.logger.Error("encoding activity log", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.userID, logKey, data); err != nil {
		s.logger.Error("persisting activity log", "error", err)
	}
}

// clearLocked is the scorched-earth clear: cancel the tick, reset
// memory, delete every known key including legacy aliases, flush, then
// verify. Residue escalates to wiping the whole user scope. Partial
// writes in the durable layer have been seen to leave orphaned keys;
// the verify step exists for exactly that.
func (s *Store) clearLocked(ctx context.Context) {
	s.stopTickLocked()
	s.state = nil
	s.log = nil
	s.ticks = 0

	keys := append([]string{stateKey, logKey}, legacyKeys...)
	for _, key := range keys {
		if err := s.kv.Remove(ctx, s.userID, key); err != nil {
			s.logger.Error("removing live key", "key", key, "error", err)
		}
	}
	if err := s.kv.Flush(ctx); err != nil {
		s.logger.Error("flushing durable store", "error", err)
	}

	residue := false
	for _, key := range keys {
		if _, err := s.kv.Get(ctx, s.userID, key); !errors.Is(err, repository.ErrNotFound) {
			residue = true
			break
		}
	}
	if residue {
		s.logger.Warn("live keys survived clear, wiping user scope")
		if err := s.kv.RemoveAll(ctx, s.userID); err != nil {
			s.logger.Error("wiping user scope", "error", err)
		}
		if err := s.kv.Flush(ctx); err != nil {
			s.logger.Error("flushing durable store", "error", err)
		}
	}
}
