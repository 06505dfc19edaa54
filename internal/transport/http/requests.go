package http

type eventPayload struct {
	Paths []string `json:"paths" validate:"omitempty,dive,min=1,max=4096"`
	URL   string   `json:"url" validate:"omitempty,max=2048"`
}

type resolveRecipientsRequest struct {
	ProjectID        string        `json:"project_id" validate:"required,custom_id,min=1,max=100"`
	TargetType       string        `json:"target_type" validate:"required,oneof=issue_owners team member"`
	TargetIdentifier string        `json:"target_identifier" validate:"omitempty,min=1,max=100"`
	Event            *eventPayload `json:"event"`
}

type previewOwnersRequest struct {
	ProjectID string       `json:"project_id" validate:"required,custom_id,min=1,max=100"`
	Event     eventPayload `json:"event"`
}

type digestRecordPayload struct {
	EventID string   `json:"event_id" validate:"required,custom_id,min=1,max=100"`
	IssueID string   `json:"issue_id" validate:"required,custom_id,min=1,max=100"`
	RuleIDs []string `json:"rule_ids" validate:"omitempty,dive,min=1,max=100"`
	Paths   []string `json:"paths" validate:"omitempty,dive,min=1,max=4096"`
	URL     string   `json:"url" validate:"omitempty,max=2048"`
}

type buildDigestRequest struct {
	ProjectID        string                `json:"project_id" validate:"required,custom_id,min=1,max=100"`
	TargetType       string                `json:"target_type" validate:"required,oneof=issue_owners team member"`
	TargetIdentifier string                `json:"target_identifier" validate:"omitempty,min=1,max=100"`
	Records          []digestRecordPayload `json:"records" validate:"required,min=1,dive"`
}
