package internal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hearthhq/datacache/cache"
	"github.com/hearthhq/datacache/config"
	"github.com/hearthhq/datacache/logging"
	"github.com/hearthhq/datacache/models"
)

// Canned content for generated family data.
var (
	todoTitles = []string{
		"Take out recycling", "Pack lunches", "Water the plants",
		"Call grandma", "Sign permission slip", "Fix bike tire",
		"Return library books", "Empty dishwasher",
	}
	eventTitles = []string{
		"Soccer practice", "Dentist appointment", "Piano lesson",
		"Parent-teacher meeting", "Swim class", "Book club",
		"Family movie night",
	}
	eventLocations = []string{
		"Community center", "School gym", "Home", "Downtown clinic", "",
	}
	groceryNames = []string{
		"Milk", "Eggs", "Bread", "Apples", "Pasta", "Tomatoes",
		"Cheese", "Coffee", "Yogurt", "Bananas",
	}
	documentNames = []string{
		"Vaccination record", "School calendar", "Insurance card",
		"Lease agreement", "Report card", "Recipe collection",
		"Travel itinerary",
	}
)

// Workload drives the cache the way the organizer's screens would: seeded
// reads on startup, steady reads as members browse, occasional writes and
// invalidations as data changes upstream, and standing refresh schedules for
// the calendars. Fetches are simulated against the configured latency and
// failure rate, so the cache's stale fallback and retry behavior is visible
// without a real backend.
type Workload struct {
	cache  *cache.Cache[any]
	config config.DemoConfig
	logger logging.LoggerInterface

	keys  []string
	users []string

	generation atomic.Int64
	reads      atomic.Int64
	writes     atomic.Int64

	wg sync.WaitGroup
}

// NewWorkload creates a workload over the configured key families. A nil
// logger falls back to the process logger.
func NewWorkload(c *cache.Cache[any], cfg config.DemoConfig, logger logging.LoggerInterface) *Workload {
	if logger == nil {
		logger = logging.GetLogger()
	}

	keys := make([]string, 0, 2*len(cfg.Users)+len(cfg.GroceryLists)+len(cfg.DocFolders))
	for _, user := range cfg.Users {
		keys = append(keys, models.TodoKey(user), models.CalendarKey(user))
	}
	for _, list := range cfg.GroceryLists {
		keys = append(keys, models.GroceryKey(list))
	}
	for _, folder := range cfg.DocFolders {
		keys = append(keys, models.DocsKey(folder))
	}

	return &Workload{
		cache:  c,
		config: cfg,
		logger: logger,
		keys:   keys,
		users:  append([]string(nil), cfg.Users...),
	}
}

// Keys returns every cache key the workload operates on.
func (w *Workload) Keys() []string {
	return append([]string(nil), w.keys...)
}

// Reads returns the number of read operations issued so far.
func (w *Workload) Reads() int64 {
	return w.reads.Load()
}

// Writes returns the number of write and invalidation operations issued so far.
func (w *Workload) Writes() int64 {
	return w.writes.Load()
}

// FetcherFor returns the fetch function for key. Each call simulates a
// round trip to the family service: jittered latency, the configured failure
// rate, and a freshly generated value on success.
func (w *Workload) FetcherFor(key string) cache.FetchFunc[any] {
	return func(ctx context.Context) (any, error) {
		if err := w.simulateLatency(ctx); err != nil {
			return nil, err
		}
		if rand.Float64() < w.config.FailureRate {
			return nil, fmt.Errorf("family service unavailable for %s", key)
		}
		return w.buildValue(key), nil
	}
}

// Seed performs the initial load for every key, the way the app warms its
// caches right after sign-in. Failed loads are left for on-demand fetching.
func (w *Workload) Seed(ctx context.Context) {
	loaded := 0
	for _, key := range w.keys {
		if _, ok := w.cache.GetOrFetch(ctx, key, w.FetcherFor(key)); ok {
			loaded++
		} else {
			w.logger.Warnf("workload: initial load for %s failed, leaving it to on-demand fetch", key)
		}
		w.reads.Add(1)
	}
	w.logger.Infof("workload: seeded %d/%d keys", loaded, len(w.keys))
}

// Start arms the calendar refresh schedules and launches the read and write
// loops. The loops stop when ctx is cancelled; use Wait to block until they
// have drained.
func (w *Workload) Start(ctx context.Context) {
	w.scheduleCalendars()

	w.wg.Add(2)
	go w.readLoop(ctx)
	go w.writeLoop(ctx)

	w.logger.Infof("workload: started with %d keys (reads every %v, writes every %v)",
		len(w.keys), w.config.ReadInterval, w.config.WriteInterval)
}

// Wait blocks until the read and write loops have exited.
func (w *Workload) Wait() {
	w.wg.Wait()
}

// Snapshot folds every currently cached value into a family-wide summary.
// Values are read through the cache, so entries past their TTL are skipped
// exactly as the app would miss them.
func (w *Workload) Snapshot() models.FamilySnapshot {
	now := time.Now()
	snap := models.FamilySnapshot{TakenAt: now}
	for _, key := range w.keys {
		value, ok := w.cache.Get(key)
		if !ok {
			continue
		}
		snap.Merge(snapshotOf(value, now))
	}
	return snap
}

func (w *Workload) scheduleCalendars() {
	if w.config.ScheduleInterval <= 0 {
		return
	}
	for _, user := range w.users {
		key := models.CalendarKey(user)
		w.cache.ScheduleRefresh(key, w.FetcherFor(key), w.config.ScheduleInterval)
	}
	if len(w.users) > 0 {
		w.logger.Debugf("workload: scheduled %d calendar refreshes every %v", len(w.users), w.config.ScheduleInterval)
	}
}

func (w *Workload) readLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ReadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.readOnce(ctx)
		}
	}
}

func (w *Workload) writeLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.WriteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.writeOnce(ctx)
		}
	}
}

// readOnce issues one randomly chosen read against a random key, mixing plain
// lookups, existence checks, and fetch-backed reads the way screens do.
func (w *Workload) readOnce(ctx context.Context) {
	key := w.keys[rand.Intn(len(w.keys))]
	switch rand.Intn(3) {
	case 0:
		w.cache.Get(key)
	case 1:
		w.cache.Has(key)
	default:
		w.cache.GetOrFetch(ctx, key, w.FetcherFor(key))
	}
	w.reads.Add(1)
}

// writeOnce issues one mutation: a direct write after an edit, a single-key
// invalidation, a sign-out that drops everything personal to one member, or a
// pull-to-refresh on a calendar. Member-scoped mutations need a configured
// user, otherwise a key-scoped one runs instead.
func (w *Workload) writeOnce(ctx context.Context) {
	op := rand.Intn(4)
	if len(w.users) == 0 && op >= 2 {
		op = rand.Intn(2)
	}

	switch op {
	case 0:
		key := w.keys[rand.Intn(len(w.keys))]
		w.cache.Set(key, w.buildValue(key))
	case 1:
		w.cache.Invalidate(w.keys[rand.Intn(len(w.keys))])
	case 2:
		user := w.users[rand.Intn(len(w.users))]
		removed := w.cache.InvalidatePattern(regexp.MustCompile(models.UserKeyPattern(user)))
		w.logger.Debugf("workload: %s signed out, dropped %d keys", user, removed)
	default:
		user := w.users[rand.Intn(len(w.users))]
		key := models.CalendarKey(user)
		if _, err := w.cache.ForceRefresh(ctx, key); err != nil {
			if errors.Is(err, cache.ErrNoRefreshSource) && w.config.ScheduleInterval > 0 {
				// Sign-out cancelled the schedule with the key; reopening
				// the calendar screen arms it again.
				w.cache.ScheduleRefresh(key, w.FetcherFor(key), w.config.ScheduleInterval)
			} else {
				w.logger.Debugf("workload: forced refresh of %s failed: %v", key, err)
			}
		}
	}
	w.writes.Add(1)
}

// simulateLatency sleeps between half and one and a half times the configured
// fetch latency, honoring ctx cancellation.
func (w *Workload) simulateLatency(ctx context.Context) error {
	if w.config.FetchLatency <= 0 {
		return ctx.Err()
	}

	delay := w.config.FetchLatency/2 + time.Duration(rand.Int63n(int64(w.config.FetchLatency)))
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// buildValue generates the value for key according to its family. Every value
// carries a generation number so successive fetches are distinguishable.
func (w *Workload) buildValue(key string) any {
	gen := w.generation.Add(1)
	now := time.Now()

	family, name := models.SplitKey(key)
	switch family {
	case models.FamilyTodos:
		return w.buildTodoList(name, gen, now)
	case models.FamilyCalendar:
		return w.buildAgenda(name, gen, now)
	case models.FamilyGroceries:
		return w.buildGroceryList(name, gen, now)
	case models.FamilyDocs:
		return w.buildDocumentFolder(name, gen, now)
	default:
		return fmt.Sprintf("value-%d", gen)
	}
}

func (w *Workload) buildTodoList(user string, gen int64, now time.Time) models.TodoList {
	count := 2 + rand.Intn(4)
	items := make([]models.Todo, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, models.Todo{
			ID:         fmt.Sprintf("todo-%s-%d-%d", user, gen, i),
			Title:      todoTitles[rand.Intn(len(todoTitles))],
			AssignedTo: user,
			Done:       rand.Intn(3) == 0,
			DueAt:      now.Add(time.Duration(rand.Intn(72)-12) * time.Hour),
		})
	}
	return models.TodoList{User: user, Items: items, FetchedAt: now}
}

func (w *Workload) buildAgenda(user string, gen int64, now time.Time) models.Agenda {
	count := 1 + rand.Intn(4)
	events := make([]models.CalendarEvent, 0, count)
	for i := 0; i < count; i++ {
		start := now.Add(time.Duration(1+rand.Intn(96)) * 30 * time.Minute)
		events = append(events, models.CalendarEvent{
			ID:       fmt.Sprintf("event-%s-%d-%d", user, gen, i),
			Title:    eventTitles[rand.Intn(len(eventTitles))],
			Owner:    user,
			StartsAt: start,
			EndsAt:   start.Add(time.Hour),
			Location: eventLocations[rand.Intn(len(eventLocations))],
		})
	}
	return models.Agenda{User: user, Events: events, FetchedAt: now}
}

func (w *Workload) buildGroceryList(list string, gen int64, now time.Time) models.GroceryList {
	count := 3 + rand.Intn(6)
	items := make([]models.GroceryItem, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, models.GroceryItem{
			Name:     groceryNames[rand.Intn(len(groceryNames))],
			Quantity: 1 + rand.Intn(5),
			Bought:   rand.Intn(4) == 0,
		})
	}
	return models.GroceryList{Name: list, Items: items, FetchedAt: now}
}

func (w *Workload) buildDocumentFolder(folder string, gen int64, now time.Time) models.DocumentFolder {
	count := 2 + rand.Intn(5)
	docs := make([]models.Document, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, models.Document{
			ID:        fmt.Sprintf("doc-%s-%d-%d", folder, gen, i),
			Name:      documentNames[rand.Intn(len(documentNames))],
			Folder:    folder,
			SizeBytes: int64(1+rand.Intn(2048)) * 1024,
			UpdatedAt: now.Add(-time.Duration(rand.Intn(240)) * time.Hour),
		})
	}
	return models.DocumentFolder{Folder: folder, Documents: docs, FetchedAt: now}
}

// snapshotOf summarizes a single cached value. Unknown value types contribute
// nothing.
func snapshotOf(value any, now time.Time) models.FamilySnapshot {
	switch v := value.(type) {
	case models.TodoList:
		return models.FamilySnapshot{TakenAt: v.FetchedAt, OpenTodos: v.OpenCount()}
	case models.Agenda:
		return models.FamilySnapshot{TakenAt: v.FetchedAt, UpcomingEvents: v.UpcomingCount(now, 24*time.Hour)}
	case models.GroceryList:
		return models.FamilySnapshot{TakenAt: v.FetchedAt, GroceriesLeft: v.Remaining()}
	case models.DocumentFolder:
		return models.FamilySnapshot{TakenAt: v.FetchedAt, DocumentCount: len(v.Documents)}
	default:
		return models.FamilySnapshot{}
	}
}
