package presenter

import (
	taskDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	taskUsecase "github.com/johnquangdev/meeting-quality/internal/usecase/task"
)

// ToTaskResponse converts a Task entity to TaskResponse DTO
func ToTaskResponse(t *entities.Task) *taskDTO.TaskResponse {
	if t == nil {
		return nil
	}
	return &taskDTO.TaskResponse{
		ID:                     t.ID,
		Description:            t.Description,
		CommonQuestion:         t.CommonQuestion,
		AuthorID:               t.AuthorID,
		MeetingID:              t.MeetingID,
		Deadline:               t.Deadline,
		ContributionImportance: t.ContributionImportance,
		IsCompleted:            t.IsCompleted,
		Approved:               t.Approved,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}

// ToListTasksResponse converts tasks to the list response
func ToListTasksResponse(tasks []*entities.Task) *taskDTO.ListTasksResponse {
	out := make([]*taskDTO.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return &taskDTO.ListTasksResponse{Tasks: out, Total: len(out)}
}

// ToApprovalResponse converts an approval result
func ToApprovalResponse(r *taskUsecase.ApprovalResult) *taskDTO.ApprovalResponse {
	if r == nil {
		return nil
	}
	return &taskDTO.ApprovalResponse{
		TaskID:   r.TaskID,
		Approved: r.Approved,
		Task:     ToTaskResponse(r.Task),
	}
}
