package sheets

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleEditor      Role = "EDITOR"
	RoleViewer      Role = "VIEWER"
	RoleContributor Role = "CONTRIBUTOR"
)

var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer, RoleContributor}

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}

// WorkStatus is shared by key results, milestones and activities.
type WorkStatus string

const (
	WorkNotStarted WorkStatus = "NOT_STARTED"
	WorkInProgress WorkStatus = "IN_PROGRESS"
	WorkAtRisk     WorkStatus = "AT_RISK"
	WorkBlocked    WorkStatus = "BLOCKED"
	WorkDone       WorkStatus = "DONE"
)

var WorkStatuses = []WorkStatus{WorkNotStarted, WorkInProgress, WorkAtRisk, WorkBlocked, WorkDone}

type Stance string

const (
	StanceSupportive Stance = "SUPPORTIVE"
	StanceNeutral    Stance = "NEUTRAL"
	StanceOpposed    Stance = "OPPOSED"
	StanceUnknown    Stance = "UNKNOWN"
)

var Stances = []Stance{StanceSupportive, StanceNeutral, StanceOpposed, StanceUnknown}
