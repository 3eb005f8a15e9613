package domain

import "time"

// TemplateCondition says when a template may be used. Only manual
// templates are eligible for the interactive dispatch flow;
// status_change templates belong to the automatic notifier and are
// never dispatched from here.
type TemplateCondition string

const (
	ConditionManual       TemplateCondition = "manual"
	ConditionStatusChange TemplateCondition = "status_change"
)

type MessageTemplate struct {
	ID            int64             `db:"id" json:"id"`
	Name          string            `db:"name" json:"name"`
	Content       string            `db:"content" json:"content"`
	Condition     TemplateCondition `db:"send_condition" json:"condition"`
	TriggerStatus *string           `db:"trigger_status" json:"triggerStatus,omitempty"`
	IsActive      bool              `db:"is_active" json:"isActive"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}
