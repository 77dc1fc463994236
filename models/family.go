package models

import (
	"time"
)

// Todo represents a single item on a family member's todo list
type Todo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	AssignedTo string    `json:"assigned_to"`
	Done       bool      `json:"done"`
	DueAt      time.Time `json:"due_at"`
}

// TodoList is the cached value behind a todos:<user> key
type TodoList struct {
	User      string    `json:"user"`
	Items     []Todo    `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// OpenCount returns the number of todos that are not done yet
func (l TodoList) OpenCount() int {
	count := 0
	for _, item := range l.Items {
		if !item.Done {
			count++
		}
	}
	return count
}

// Overdue returns the todos whose due date has passed and are still open
func (l TodoList) Overdue(now time.Time) []Todo {
	var overdue []Todo
	for _, item := range l.Items {
		if !item.Done && !item.DueAt.IsZero() && item.DueAt.Before(now) {
			overdue = append(overdue, item)
		}
	}
	return overdue
}

// CalendarEvent represents an entry on the family calendar
type CalendarEvent struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Owner    string    `json:"owner"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Location string    `json:"location,omitempty"`
}

// Agenda is the cached value behind a calendar:<user> key
type Agenda struct {
	User      string          `json:"user"`
	Events    []CalendarEvent `json:"events"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NextEvent returns the earliest event that has not started yet
func (a Agenda) NextEvent(now time.Time) (CalendarEvent, bool) {
	var next CalendarEvent
	found := false
	for _, event := range a.Events {
		if event.StartsAt.Before(now) {
			continue
		}
		if !found || event.StartsAt.Before(next.StartsAt) {
			next = event
			found = true
		}
	}
	return next, found
}

// UpcomingCount returns how many events start within the given window
func (a Agenda) UpcomingCount(now time.Time, window time.Duration) int {
	cutoff := now.Add(window)
	count := 0
	for _, event := range a.Events {
		if !event.StartsAt.Before(now) && event.StartsAt.Before(cutoff) {
			count++
		}
	}
	return count
}

// GroceryItem represents one line on a shopping list
type GroceryItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Bought   bool   `json:"bought"`
}

// GroceryList is the cached value behind a groceries:<list> key
type GroceryList struct {
	Name      string        `json:"name"`
	Items     []GroceryItem `json:"items"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Remaining returns the number of items still to buy
func (g GroceryList) Remaining() int {
	count := 0
	for _, item := range g.Items {
		if !item.Bought {
			count++
		}
	}
	return count
}

// Document represents a shared family document
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Folder    string    `json:"folder"`
	SizeBytes int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentFolder is the cached value behind a docs:<folder> key
type DocumentFolder struct {
	Folder    string     `json:"folder"`
	Documents []Document `json:"documents"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// TotalSize returns the combined size of all documents in the folder
func (d DocumentFolder) TotalSize() int64 {
	var total int64
	for _, doc := range d.Documents {
		total += doc.SizeBytes
	}
	return total
}

// FamilySnapshot is a point-in-time summary across all cached family data
type FamilySnapshot struct {
	TakenAt        time.Time `json:"taken_at"`
	OpenTodos      int       `json:"open_todos"`
	UpcomingEvents int       `json:"upcoming_events"`
	GroceriesLeft  int       `json:"groceries_left"`
	DocumentCount  int       `json:"document_count"`
}

// Merge folds another snapshot's counters into this one
func (s *FamilySnapshot) Merge(other FamilySnapshot) {
	s.OpenTodos += other.OpenTodos
	s.UpcomingEvents += other.UpcomingEvents
	s.GroceriesLeft += other.GroceriesLeft
	s.DocumentCount += other.DocumentCount
	if other.TakenAt.After(s.TakenAt) {
		s.TakenAt = other.TakenAt
	}
}
