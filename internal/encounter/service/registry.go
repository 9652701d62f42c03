// Package service hosts the encounter registry: the single owner of every
// live encounter instance. All mutating operations on one encounter run
// under that instance's lock, so pool decrements, contribution increments
// and phase evaluation are observed atomically and in a consistent order.
// Independent encounters share nothing and proceed fully in parallel.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/encounter/event"
	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
	"github.com/stoneveil/bastion/internal/random"
	"github.com/stoneveil/bastion/internal/storage"
)

// Timer names scheduled per encounter. Cancelling an encounter cancels all
// of its pending timers so a late callback can never mutate a torn-down
// instance.
const (
	timerExpire   = "expire"
	timerActivate = "activate"
	timerDuration = "duration"
	timerWaveRest = "waverest"
	timerReap     = "reap"
)

// instance pairs one live encounter with its lock and its immutable
// definition.
type instance struct {
	mu  sync.Mutex
	enc *domain.Encounter
	def domain.Definition
}

// Registry owns the set of live encounter instances. It is constructed
// explicitly at process start and passed by reference to handlers; there are
// no hidden package-level statics.
type Registry struct {
	cfg         Config
	store       storage.Store
	bus         *event.Bus
	clock       Clock
	idGenerator func() (string, error)
	seed        func() (int64, error)
	logger      *log.Logger
	tracer      trace.Tracer

	// definitions is loaded once at construction and read-only afterward.
	definitions map[string]domain.Definition

	mu          sync.RWMutex
	instances   map[string]*instance
	activeByKey map[string]string
	timers      map[string]map[string]Timer
	closed      bool

	// settling tracks in-flight persistence goroutines, terminal writes and
	// checkpoint writes alike, so shutdown and tests can wait for rows to
	// land before the store closes.
	settling sync.WaitGroup
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock injects a clock, used by tests for deterministic timers.
func WithClock(clock Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithIDGenerator injects an id generator.
func WithIDGenerator(idGenerator func() (string, error)) Option {
	return func(r *Registry) { r.idGenerator = idGenerator }
}

// WithSeed injects the loot RNG seed source, used by tests for
// deterministic allocations.
func WithSeed(seed func() (int64, error)) Option {
	return func(r *Registry) { r.seed = seed }
}

// WithLogger injects the registry logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry loads every definition from the store and returns a registry
// ready to spawn encounters.
func NewRegistry(ctx context.Context, store storage.Store, bus *event.Bus, cfg Config, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if bus == nil {
		bus = event.NewBus()
	}

	registry := &Registry{
		cfg:         cfg,
		store:       store,
		bus:         bus,
		clock:       SystemClock(),
		idGenerator: domain.NewID,
		seed:        random.NewSeed,
		logger:      log.Default(),
		tracer:      otel.Tracer("bastion/encounter"),
		definitions: make(map[string]domain.Definition),
		instances:   make(map[string]*instance),
		activeByKey: make(map[string]string),
		timers:      make(map[string]map[string]Timer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}

	defs, err := store.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("definition %s: %w", def.ID, err)
		}
		registry.definitions[def.ID] = def
	}

	if err := registry.restoreCheckpoints(ctx); err != nil {
		return nil, err
	}

	return registry, nil
}

// Definition returns a loaded definition by id.
func (r *Registry) Definition(id string) (domain.Definition, error) {
	def, ok := r.definitions[id]
	if !ok {
		return domain.Definition{}, apperrors.New(apperrors.CodeDefinitionNotFound,
			fmt.Sprintf("definition %s is not loaded", id))
	}
	return def, nil
}

// Spawn creates a scheduled encounter from a definition. By default at most
// one non-terminal instance per definition may exist; the location-keyed
// policy relaxes that to one per (definition, location). The pool modifier
// carries externally-supplied scaling (defensive structure bonuses) and is
// consumed here, at spawn time only.
func (r *Registry) Spawn(ctx context.Context, definitionID, location string, poolModifier float64) (domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "registry.spawn",
		trace.WithAttributes(attribute.String("encounter.definition_id", definitionID)))
	defer span.End()

	def, err := r.Definition(definitionID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return domain.Snapshot{}, apperrors.New(apperrors.CodeEncounterInvalidState, "registry is shut down")
	}
	key := r.activeKey(definitionID, location)
	if existingID, ok := r.activeByKey[key]; ok {
		r.mu.Unlock()
		return domain.Snapshot{}, apperrors.WithMetadata(apperrors.CodeEncounterDuplicateActive,
			fmt.Sprintf("definition %s already has live encounter %s", definitionID, existingID),
			map[string]string{"encounterId": existingID})
	}

	enc, err := domain.Spawn(def, location, poolModifier, r.clock.Now, r.idGenerator)
	if err != nil {
		r.mu.Unlock()
		return domain.Snapshot{}, err
	}

	inst := &instance{enc: enc, def: def}
	r.instances[enc.ID] = inst
	r.activeByKey[key] = enc.ID
	r.scheduleLocked(enc.ID, timerExpire, r.cfg.IdleExpire, func() { r.expire(enc.ID) })
	snapshot := enc.Snapshot()
	r.mu.Unlock()

	r.checkpointAsync(snapshot)
	r.logger.Printf("encounter %s spawned from %s at %q (pool %d)", enc.ID, definitionID, location, snapshot.MaxPool)
	return snapshot, nil
}

// Announce moves a scheduled encounter to announced and starts the
// activation countdown.
func (r *Registry) Announce(ctx context.Context, encounterID string) (domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "registry.announce",
		trace.WithAttributes(attribute.String("encounter.id", encounterID)))
	defer span.End()

	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	inst.mu.Lock()
	if err := inst.enc.Announce(); err != nil {
		inst.mu.Unlock()
		return domain.Snapshot{}, err
	}
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	r.mu.Lock()
	r.scheduleLocked(encounterID, timerActivate, r.cfg.AnnounceCountdown, func() { r.activate(encounterID) })
	r.mu.Unlock()

	r.checkpointAsync(snapshot)
	r.logger.Printf("encounter %s announced, active in %s", encounterID, r.cfg.AnnounceCountdown)
	return snapshot, nil
}

// GetState serves a consistent point-in-time copy of the encounter without
// holding its lock beyond the copy.
func (r *Registry) GetState(ctx context.Context, encounterID string) (domain.Snapshot, error) {
	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.enc.Snapshot(), nil
}

// Summary is the listing view of an encounter.
type Summary struct {
	ID               string `json:"id"`
	DefinitionID     string `json:"definitionId"`
	Location         string `json:"location,omitempty"`
	Status           string `json:"status"`
	CurrentPool      int    `json:"currentPool"`
	MaxPool          int    `json:"maxPool"`
	ParticipantCount int    `json:"participantCount"`
}

// List returns summaries of known encounters, optionally filtered by
// status. An unspecified status lists everything.
func (r *Registry) List(ctx context.Context, status domain.Status) []Summary {
	r.mu.RLock()
	instances := make([]*instance, 0, len(r.instances))
	for _, inst := range r.instances {
		instances = append(instances, inst)
	}
	r.mu.RUnlock()

	summaries := make([]Summary, 0, len(instances))
	for _, inst := range instances {
		inst.mu.Lock()
		enc := inst.enc
		if status == domain.StatusUnspecified || enc.Status == status {
			summaries = append(summaries, Summary{
				ID:               enc.ID,
				DefinitionID:     enc.DefinitionID,
				Location:         enc.Location,
				Status:           enc.Status.String(),
				CurrentPool:      enc.CurrentPool,
				MaxPool:          enc.MaxPool,
				ParticipantCount: len(enc.FinalLedger()),
			})
		}
		inst.mu.Unlock()
	}
	return summaries
}

// Close cancels every pending timer and stops accepting spawns. Live
// encounters keep their state in memory until the process exits; their
// checkpoints allow recovery.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for encounterID := range r.timers {
		r.cancelTimersLocked(encounterID)
	}
	r.mu.Unlock()
	r.settling.Wait()
}

// activate fires when the announce countdown expires.
func (r *Registry) activate(encounterID string) {
	inst, err := r.instance(encounterID)
	if err != nil {
		return
	}

	inst.mu.Lock()
	if err := inst.enc.Activate(r.clock.Now()); err != nil {
		// The encounter expired or was torn down before the countdown fired.
		inst.mu.Unlock()
		return
	}
	snapshot := inst.enc.Snapshot()
	isDefense := inst.enc.Kind == domain.KindDefense
	durationSeconds := inst.def.DurationSeconds
	inst.mu.Unlock()

	r.mu.Lock()
	r.cancelTimerLocked(encounterID, timerExpire)
	if isDefense {
		r.scheduleLocked(encounterID, timerDuration,
			time.Duration(durationSeconds)*time.Second,
			func() { r.completeDefenseOnTimeout(encounterID) })
	}
	r.mu.Unlock()

	r.publish(encounterID, event.TypeEncounterStarted, event.StartedPayload{
		DefinitionID: snapshot.DefinitionID,
		MaxPool:      snapshot.MaxPool,
	})
	r.checkpointAsync(snapshot)
	r.logger.Printf("encounter %s active", encounterID)
}

// expire fires when the idle countdown lapses. Encounters with at least one
// join are never expired.
func (r *Registry) expire(encounterID string) {
	inst, err := r.instance(encounterID)
	if err != nil {
		return
	}

	inst.mu.Lock()
	if inst.enc.HasParticipants() {
		inst.mu.Unlock()
		return
	}
	if err := inst.enc.Expire(r.clock.Now()); err != nil {
		inst.mu.Unlock()
		return
	}
	inst.mu.Unlock()

	r.release(encounterID)
	r.deleteCheckpointAsync(encounterID)
	r.logger.Printf("encounter %s expired with no participants", encounterID)
}

// instance looks up a live encounter.
func (r *Registry) instance(encounterID string) (*instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[encounterID]
	if !ok {
		return nil, apperrors.New(apperrors.CodeEncounterNotFound,
			fmt.Sprintf("encounter %s not found", encounterID))
	}
	return inst, nil
}

func (r *Registry) activeKey(definitionID, location string) string {
	if r.cfg.AllowMultiplePerDefinition {
		return definitionID + "|" + location
	}
	return definitionID
}

// release drops the encounter from the duplicate-active index, cancels its
// timers and starts the terminal retention countdown. The instance stays
// retrievable for state queries until the reap fires; from then on the
// history store serves the record.
func (r *Registry) release(encounterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelTimersLocked(encounterID)
	for key, id := range r.activeByKey {
		if id == encounterID {
			delete(r.activeByKey, key)
		}
	}
	r.scheduleLocked(encounterID, timerReap, r.cfg.TerminalRetention, func() { r.evict(encounterID) })
}

// evict removes a settled encounter from the live set.
func (r *Registry) evict(encounterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelTimersLocked(encounterID)
	delete(r.instances, encounterID)
}

// scheduleLocked registers a named timer for an encounter. The registry
// lock must be held.
func (r *Registry) scheduleLocked(encounterID, name string, d time.Duration, fn func()) {
	if r.closed {
		return
	}
	if existing, ok := r.timers[encounterID][name]; ok {
		existing.Stop()
	}
	if r.timers[encounterID] == nil {
		r.timers[encounterID] = make(map[string]Timer)
	}
	r.timers[encounterID][name] = r.clock.AfterFunc(d, fn)
}

func (r *Registry) cancelTimerLocked(encounterID, name string) {
	if timer, ok := r.timers[encounterID][name]; ok {
		timer.Stop()
		delete(r.timers[encounterID], name)
	}
}

func (r *Registry) cancelTimersLocked(encounterID string) {
	for name, timer := range r.timers[encounterID] {
		timer.Stop()
		delete(r.timers[encounterID], name)
	}
	delete(r.timers, encounterID)
}

func (r *Registry) publish(encounterID string, eventType event.Type, payload any) {
	r.bus.Publish(event.Event{
		EncounterID: encounterID,
		Type:        eventType,
		Timestamp:   r.clock.Now().UTC(),
		Payload:     payload,
	})
}

// checkpointAsync writes a recovery checkpoint without blocking the caller.
// The write joins the settling group so Close never races the store's own
// shutdown.
func (r *Registry) checkpointAsync(snapshot domain.Snapshot) {
	r.settling.Add(1)
	go func() {
		defer r.settling.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.SaveCheckpoint(ctx, snapshot); err != nil {
			r.logger.Printf("checkpoint %s: %v", snapshot.ID, err)
		}
	}()
}

func (r *Registry) deleteCheckpointAsync(encounterID string) {
	r.settling.Add(1)
	go func() {
		defer r.settling.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.DeleteCheckpoint(ctx, encounterID); err != nil {
			r.logger.Printf("delete checkpoint %s: %v", encounterID, err)
		}
	}()
}
