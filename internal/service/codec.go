package service

import (
	"fmt"
	"time"

	"teamtasks/internal/model"
)

// Remote table names, shared by the push and pull phases.
const (
	TableUserProfiles    = "user_profile"
	TableGroups          = "group"
	TableGroupMembers    = "group_member"
	TableTasks           = "task"
	TableTaskAssignments = "task_assignment"
	TableActivityLogs    = "activity_log"
)

// The remote returns rows as loosely-typed maps. The decoders below turn
// them into local entities in one place instead of casting field by field
// at every call site. Missing required fields fail the row; unknown enum
// strings degrade to the documented defaults via the model parsers.

func stringField(row map[string]any, key string) (string, error) {
	v, ok := row[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required field %q", key)
	}
	return v, nil
}

func optString(row map[string]any, key string) *string {
	if v, ok := row[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func stringOr(row map[string]any, key, fallback string) string {
	if v, ok := row[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intField(row map[string]any, key string, fallback int) int {
	switch v := row[key].(type) {
	case float64: // JSON numbers decode as float64
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

// timeField parses an ISO 8601 timestamp, falling back to now for absent or
// malformed values the way the display layer expects.
func timeField(row map[string]any, key string) time.Time {
	if v, ok := row[key].(string); ok {
		if t, err := parseTimestamp(v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func optTimeField(row map[string]any, key string) *time.Time {
	if v, ok := row[key].(string); ok {
		if t, err := parseTimestamp(v); err == nil {
			return &t
		}
	}
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func decodeUserProfile(row map[string]any) (*model.UserProfile, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	displayName, err := stringField(row, "display_name")
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{
		ID:          id,
		DisplayName: displayName,
		AvatarURL:   optString(row, "avatar_url"),
		PublicKey:   stringOr(row, "public_key", ""),
		CreatedAt:   timeField(row, "created_at"),
		UpdatedAt:   timeField(row, "updated_at"),
	}, nil
}

func decodeGroup(row map[string]any) (*model.Group, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	name, err := stringField(row, "name")
	if err != nil {
		return nil, err
	}
	ownerID, err := stringField(row, "owner_id")
	if err != nil {
		return nil, err
	}
	return &model.Group{
		ID:            id,
		Name:          name,
		Description:   optString(row, "description"),
		OwnerID:       ownerID,
		ParentGroupID: optString(row, "parent_group_id"),
		CreatedAt:     timeField(row, "created_at"),
		UpdatedAt:     timeField(row, "updated_at"),
	}, nil
}

func decodeGroupMember(row map[string]any) (*model.GroupMember, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	groupID, err := stringField(row, "group_id")
	if err != nil {
		return nil, err
	}
	userID, err := stringField(row, "user_id")
	if err != nil {
		return nil, err
	}
	return &model.GroupMember{
		ID:       id,
		GroupID:  groupID,
		UserID:   userID,
		Role:     model.ParseMemberRole(stringOr(row, "role", "")),
		JoinedAt: timeField(row, "joined_at"),
	}, nil
}

func decodeTask(row map[string]any) (*model.Task, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	title, err := stringField(row, "title")
	if err != nil {
		return nil, err
	}
	createdBy, err := stringField(row, "created_by")
	if err != nil {
		return nil, err
	}
	return &model.Task{
		ID:                   id,
		Title:                title,
		Description:          optString(row, "description"),
		DescriptionEncrypted: optString(row, "description_encrypted"),
		Status:               model.ParseTaskStatus(stringOr(row, "status", "")),
		Priority:             model.ParseTaskPriority(stringOr(row, "priority", "")),
		Progress:             model.ClampProgress(intField(row, "progress", 0)),
		DueDate:              optTimeField(row, "due_date"),
		CreatedBy:            createdBy,
		AssignedToUser:       optString(row, "assigned_to_user"),
		AssignedToGroup:      optString(row, "assigned_to_group"),
		ParentTaskID:         optString(row, "parent_task_id"),
		EncryptionMetadata:   optString(row, "encryption_metadata"),
		CreatedAt:            timeField(row, "created_at"),
		UpdatedAt:            timeField(row, "updated_at"),
	}, nil
}

func decodeTaskAssignment(row map[string]any) (*model.TaskAssignment, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	taskID, err := stringField(row, "task_id")
	if err != nil {
		return nil, err
	}
	return &model.TaskAssignment{
		ID:              id,
		TaskID:          taskID,
		AssignedFrom:    optString(row, "assigned_from"),
		AssignedToUser:  optString(row, "assigned_to_user"),
		AssignedToGroup: optString(row, "assigned_to_group"),
		AssignmentType:  model.ParseAssignmentType(stringOr(row, "assignment_type", "")),
		AssignedAt:      timeField(row, "assigned_at"),
	}, nil
}

func decodeActivityLog(row map[string]any) (*model.ActivityLog, error) {
	id, err := stringField(row, "id")
	if err != nil {
		return nil, err
	}
	entry := &model.ActivityLog{
		ID:        id,
		UserID:    optString(row, "user_id"),
		TaskID:    optString(row, "task_id"),
		GroupID:   optString(row, "group_id"),
		Action:    model.ParseActivityAction(stringOr(row, "action", "")),
		Timestamp: timeField(row, "created_at"),
	}
	if v := optString(row, "old_value"); v != nil {
		entry.OldValue = []byte(*v)
	}
	if v := optString(row, "new_value"); v != nil {
		entry.NewValue = []byte(*v)
	}
	if v := optString(row, "metadata"); v != nil {
		entry.Metadata = []byte(*v)
	}
	return entry, nil
}

// Remote payload builders: the enqueue sites serialize entities into the
// wire form so the push phase can forward the payload verbatim.

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func taskRemotePayload(t *model.Task) map[string]any {
	payload := map[string]any{
		"id":         t.ID,
		"title":      t.Title,
		"status":     t.Status.Remote(),
		"priority":   t.Priority.Remote(),
		"progress":   t.Progress,
		"created_by": t.CreatedBy,
		"created_at": formatTimestamp(t.CreatedAt),
		"updated_at": formatTimestamp(t.UpdatedAt),
	}
	if t.Description != nil {
		payload["description"] = *t.Description
	}
	if t.DescriptionEncrypted != nil {
		payload["description_encrypted"] = *t.DescriptionEncrypted
	}
	if t.DueDate != nil {
		payload["due_date"] = formatTimestamp(*t.DueDate)
	}
	if t.AssignedToUser != nil {
		payload["assigned_to_user"] = *t.AssignedToUser
	}
	if t.AssignedToGroup != nil {
		payload["assigned_to_group"] = *t.AssignedToGroup
	}
	if t.ParentTaskID != nil {
		payload["parent_task_id"] = *t.ParentTaskID
	}
	if t.EncryptionMetadata != nil {
		payload["encryption_metadata"] = *t.EncryptionMetadata
	}
	return payload
}

func groupRemotePayload(g *model.Group) map[string]any {
	payload := map[string]any{
		"id":         g.ID,
		"name":       g.Name,
		"owner_id":   g.OwnerID,
		"created_at": formatTimestamp(g.CreatedAt),
		"updated_at": formatTimestamp(g.UpdatedAt),
	}
	if g.Description != nil {
		payload["description"] = *g.Description
	}
	if g.ParentGroupID != nil {
		payload["parent_group_id"] = *g.ParentGroupID
	}
	return payload
}

func groupMemberRemotePayload(m *model.GroupMember) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"group_id":  m.GroupID,
		"user_id":   m.UserID,
		"role":      m.Role.Remote(),
		"joined_at": formatTimestamp(m.JoinedAt),
	}
}

func taskAssignmentRemotePayload(a *model.TaskAssignment) map[string]any {
	payload := map[string]any{
		"id":              a.ID,
		"task_id":         a.TaskID,
		"assignment_type": a.AssignmentType.Remote(),
		"assigned_at":     formatTimestamp(a.AssignedAt),
	}
	if a.AssignedFrom != nil {
		payload["assigned_from"] = *a.AssignedFrom
	}
	if a.AssignedToUser != nil {
		payload["assigned_to_user"] = *a.AssignedToUser
	}
	if a.AssignedToGroup != nil {
		payload["assigned_to_group"] = *a.AssignedToGroup
	}
	return payload
}

func activityLogRemotePayload(e *model.ActivityLog) map[string]any {
	payload := map[string]any{
		"id":         e.ID,
		"action":     e.Action.Remote(),
		"created_at": formatTimestamp(e.Timestamp),
	}
	if e.UserID != nil {
		payload["user_id"] = *e.UserID
	}
	if e.TaskID != nil {
		payload["task_id"] = *e.TaskID
	}
	if e.GroupID != nil {
		payload["group_id"] = *e.GroupID
	}
	if len(e.OldValue) > 0 {
		payload["old_value"] = string(e.OldValue)
	}
	if len(e.NewValue) > 0 {
		payload["new_value"] = string(e.NewValue)
	}
	if len(e.Metadata) > 0 {
		payload["metadata"] = string(e.Metadata)
	}
	return payload
}
