package events

import "time"

const (
	TypeRoleChanged      = "role.changed"
	TypeDraftGenerated   = "draft.generated"
	TypeSummaryCompleted = "summary.completed"
	TypeSummaryFailed    = "summary.failed"
	TypeDocumentShared   = "document.shared"
)

func RoleChanged(subject, from, to string) BaseEvent {
	return BaseEvent{
		Type:       TypeRoleChanged,
		Data:       map[string]interface{}{"subject": subject, "from": from, "to": to},
		OccurredAt: time.Now().UTC(),
	}
}

func DraftGenerated(subject, template, subtype string, size int) BaseEvent {
	return BaseEvent{
		Type:       TypeDraftGenerated,
		Data:       map[string]interface{}{"subject": subject, "template": template, "subtype": subtype, "size": size},
		OccurredAt: time.Now().UTC(),
	}
}

func SummaryCompleted(subject, jobID, fileID string) BaseEvent {
	return BaseEvent{
		Type:       TypeSummaryCompleted,
		Data:       map[string]interface{}{"subject": subject, "job_id": jobID, "file_id": fileID},
		OccurredAt: time.Now().UTC(),
	}
}

func SummaryFailed(subject, jobID, reason string) BaseEvent {
	return BaseEvent{
		Type:       TypeSummaryFailed,
		Data:       map[string]interface{}{"subject": subject, "job_id": jobID, "reason": reason},
		OccurredAt: time.Now().UTC(),
	}
}

func DocumentShared(subject, recipient, fileName string, size int64) BaseEvent {
	return BaseEvent{
		Type:       TypeDocumentShared,
		Data:       map[string]interface{}{"subject": subject, "recipient": recipient, "file_name": fileName, "size": size},
		OccurredAt: time.Now().UTC(),
	}
}
