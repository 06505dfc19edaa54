package domain

// MatcherKind selects which event attribute a matcher is tested against.
type MatcherKind string

const (
	MatcherKindPath MatcherKind = "path"
	MatcherKindURL  MatcherKind = "url"
)

// OwnerKind distinguishes team owners from individual user owners.
type OwnerKind string

const (
	OwnerKindTeam OwnerKind = "team"
	OwnerKindUser OwnerKind = "user"
)

// Matcher is a single glob predicate over one event attribute kind.
// It is an immutable value object; equality is structural.
type Matcher struct {
	Kind    MatcherKind `json:"type"`
	Pattern string      `json:"pattern"`
}

// Owner references a responsible party: a team by slug or a user by
// identifier/email.
type Owner struct {
	Kind       OwnerKind `json:"type"`
	Identifier string    `json:"identifier"`
}

// OwnershipRule pairs one matcher with the owners it assigns.
type OwnershipRule struct {
	Matcher Matcher `json:"matcher"`
	Owners  []Owner `json:"owners"`
}

// OwnershipSchema is a project's ordered rule set. Order is declaration
// order: every matching rule contributes its owners, none short-circuits
// another. Fallthrough applies only when no rule matched.
type OwnershipSchema struct {
	Rules       []OwnershipRule `json:"rules"`
	Fallthrough bool            `json:"fallthrough"`
}

// ResolvedOwners is the result of evaluating a schema against one event.
// Owners are deduplicated and kept in first-seen rule order.
// UsedFallthrough means no rule matched and the schema's fallthrough flag
// was set; the owner slice is empty in that case and the recipient layer
// expands it to all active project members.
type ResolvedOwners struct {
	Owners          []Owner
	UsedFallthrough bool
}

// EventAttributes holds the matchable attributes extracted from one event:
// candidate file paths (e.g. from a stack trace) and the request URL.
type EventAttributes struct {
	Paths []string
	URL   string
}

// Event is one error occurrence attached to a project and an issue.
type Event struct {
	ID         string
	IssueID    string
	ProjectID  string
	Attributes EventAttributes
}

// TargetType is the notification scope chosen by an alert action.
type TargetType string

const (
	TargetIssueOwners TargetType = "issue_owners"
	TargetTeam        TargetType = "team"
	TargetMember      TargetType = "member"
)

// Target is a target type plus its identifier (team slug or user ID).
// IssueOwners targets carry no identifier.
type Target struct {
	Type       TargetType
	Identifier string
}

// NotifiablePreference holds the per-(user, project) facts consumed by
// recipient expansion. Team membership is not carried here; it is looked
// up through the team repository. SubscribeByDefault is tri-state: nil
// means unset, which counts as subscribed.
type NotifiablePreference struct {
	Active             bool  `db:"is_active"`
	AlertOptOut        bool  `db:"alert_opt_out"`
	SubscribeByDefault *bool `db:"subscribe_by_default"`
}

// DigestGroup is one aggregated line item per issue within a digest.
type DigestGroup struct {
	IssueID        string
	RulesTriggered []string
	EventCount     int
	Representative Event
}

// Digest is the grouped form of a batch of events for one project.
// Groups are ordered by the first-seen event per issue.
type Digest struct {
	ProjectID   string
	Groups      []DigestGroup
	TotalEvents int
	TotalIssues int
}
