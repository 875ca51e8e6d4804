package models

import "time"

// TaskStatus tracks where a daily task sits in its lifecycle.
// Transitions are one-way: locked -> active -> complete.
type TaskStatus string

const (
	TaskLocked   TaskStatus = "locked"
	TaskActive   TaskStatus = "active"
	TaskComplete TaskStatus = "complete"
)

// GoalStatus tracks the weekly goal lifecycle: active -> complete.
type GoalStatus string

const (
	GoalActive   GoalStatus = "active"
	GoalComplete GoalStatus = "complete"
)

// GoalType distinguishes a learning week from a product-building week.
type GoalType string

const (
	GoalLearning GoalType = "learning"
	GoalProduct  GoalType = "product"
)

// Platform identifies where a generated or example post is published.
type Platform string

const (
	PlatformX        Platform = "x"
	PlatformLinkedIn Platform = "linkedin"
	PlatformBlog     Platform = "blog"
)

// PaymentStatus mirrors the checkout provider's payment states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentType distinguishes one-off purchases from subscriptions.
type PaymentType string

const (
	PaymentOneTime      PaymentType = "one_time"
	PaymentSubscription PaymentType = "subscription"
)

// ValidGoalTypes enumerates the accepted goal types.
var ValidGoalTypes = map[GoalType]struct{}{
	GoalLearning: {},
	GoalProduct:  {},
}

// ValidPlatforms enumerates the accepted post platforms.
var ValidPlatforms = map[Platform]struct{}{
	PlatformX:        {},
	PlatformLinkedIn: {},
	PlatformBlog:     {},
}

// Resource is a reference link attached to a task.
type Resource struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Completion is the payload a user submits when finishing a task.
type Completion struct {
	Code          string    `json:"code"`
	LearningNotes string    `json:"learning_notes"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Task is a single day's work inside a weekly goal. Day 1 starts
// active; days 2-7 start locked and unlock as the prior day completes.
type Task struct {
	ID            string      `json:"id"`
	GoalID        string      `json:"goal_id"`
	DayNumber     int         `json:"day_number"`
	Description   string      `json:"description"`
	Resources     []Resource  `json:"resources"`
	Status        TaskStatus  `json:"status"`
	ScheduledDate time.Time   `json:"scheduled_date"`
	Completion    *Completion `json:"completion,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// WeeklyGoal groups up to seven sequential tasks for one user.
// A user holds at most one active goal at a time.
type WeeklyGoal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Type        GoalType   `json:"type"`
	Status      GoalStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskStats aggregates task completion for one goal.
type TaskStats struct {
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
	Active    int  `json:"active"`
	Locked    int  `json:"locked"`
	Progress  int  `json:"progress"`
	Complete  bool `json:"is_complete"`
}

// ExamplePost is a user-supplied style reference for content generation,
// capped at two per (user, type, platform) combination.
type ExamplePost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      GoalType  `json:"type"`
	Platform  Platform  `json:"platform"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment records a verified checkout session, keyed uniquely by the
// provider's session id to guard against duplicate recording.
type Payment struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Status    PaymentStatus     `json:"status"`
	Type      PaymentType       `json:"type"`
	ProductID string            `json:"product_id"`
	SessionID string            `json:"session_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// User is the locally persisted mirror of an identity-provider account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
