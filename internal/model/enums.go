package model

import "strings"

// The remote store speaks lowercase_with_underscores enum values while the
// local schema keeps the uppercase symbolic forms. Each enum has exactly one
// mapping table here, shared by the push-serialize and pull-deserialize
// paths. Unrecognized remote values degrade to the enum's default instead of
// failing the row.

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// MemberRole is a user's role within a group.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// AssignmentType describes how a task assignment came to be.
type AssignmentType string

const (
	AssignmentTypeManual   AssignmentType = "MANUAL"
	AssignmentTypeAuto     AssignmentType = "AUTO"
	AssignmentTypeReassign AssignmentType = "REASSIGN"
)

// ActivityAction identifies an audit-trail event kind.
type ActivityAction string

const (
	ActionTaskCreated     ActivityAction = "TASK_CREATED"
	ActionTaskUpdated     ActivityAction = "TASK_UPDATED"
	ActionTaskAssigned    ActivityAction = "TASK_ASSIGNED"
	ActionTaskDeleted     ActivityAction = "TASK_DELETED"
	ActionStatusChanged   ActivityAction = "STATUS_CHANGED"
	ActionPriorityChanged ActivityAction = "PRIORITY_CHANGED"
	ActionProgressUpdated ActivityAction = "PROGRESS_UPDATED"
	ActionGroupCreated    ActivityAction = "GROUP_CREATED"
	ActionGroupUpdated    ActivityAction = "GROUP_UPDATED"
	ActionMemberAdded     ActivityAction = "MEMBER_ADDED"
	ActionMemberRemoved   ActivityAction = "MEMBER_REMOVED"
	ActionCommentAdded    ActivityAction = "COMMENT_ADDED"
)

var taskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

var taskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

var memberRoles = []MemberRole{MemberRoleOwner, MemberRoleAdmin, MemberRoleMember}

var assignmentTypes = []AssignmentType{AssignmentTypeManual, AssignmentTypeAuto, AssignmentTypeReassign}

var activityActions = []ActivityAction{
	ActionTaskCreated, ActionTaskUpdated, ActionTaskAssigned, ActionTaskDeleted,
	ActionStatusChanged, ActionPriorityChanged, ActionProgressUpdated,
	ActionGroupCreated, ActionGroupUpdated, ActionMemberAdded, ActionMemberRemoved,
	ActionCommentAdded,
}

// Remote returns the wire form of the status, e.g. "in_progress".
func (s TaskStatus) Remote() string { return strings.ToLower(string(s)) }

// Remote returns the wire form of the priority, e.g. "high".
func (p TaskPriority) Remote() string { return strings.ToLower(string(p)) }

// Remote returns the wire form of the role, e.g. "admin".
func (r MemberRole) Remote() string { return strings.ToLower(string(r)) }

// Remote returns the wire form of the assignment type, e.g. "reassign".
func (t AssignmentType) Remote() string { return strings.ToLower(string(t)) }

// Remote returns the wire form of the action, e.g. "task_created".
func (a ActivityAction) Remote() string { return strings.ToLower(string(a)) }

func normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ParseTaskStatus maps a remote status string to the local form.
// Unrecognized values fall back to TODO.
func ParseTaskStatus(raw string) TaskStatus {
	n := normalize(raw)
	for _, s := range taskStatuses {
		if string(s) == n {
			return s
		}
	}
	return TaskStatusTodo
}

// ParseTaskPriority maps a remote priority string to the local form.
// Unrecognized values fall back to MEDIUM.
func ParseTaskPriority(raw string) TaskPriority {
	n := normalize(raw)
	for _, p := range taskPriorities {
		if string(p) == n {
			return p
		}
	}
	return TaskPriorityMedium
}

// ParseMemberRole maps a remote role string to the local form.
// Unrecognized values fall back to MEMBER.
func ParseMemberRole(raw string) MemberRole {
	n := normalize(raw)
	for _, r := range memberRoles {
		if string(r) == n {
			return r
		}
	}
	return MemberRoleMember
}

// ParseAssignmentType maps a remote assignment-type string to the local form.
// Unrecognized values fall back to MANUAL.
func ParseAssignmentType(raw string) AssignmentType {
	n := normalize(raw)
	for _, t := range assignmentTypes {
		if string(t) == n {
			return t
		}
	}
	return AssignmentTypeManual
}

// ParseActivityAction maps a remote action string to the local form.
// Unrecognized values fall back to TASK_CREATED.
func ParseActivityAction(raw string) ActivityAction {
	n := normalize(raw)
	for _, a := range activityActions {
		if string(a) == n {
			return a
		}
	}
	return ActionTaskCreated
}
