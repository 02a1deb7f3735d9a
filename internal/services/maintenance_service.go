package services

import (
	"context"
	"errors"

	"arcade-backend/internal/cache"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

type MaintenanceService struct {
	Tasks    *repositories.MaintenanceTaskRepository
	Machines *repositories.MachineRepository
}

func NewMaintenanceService(tasks *repositories.MaintenanceTaskRepository, machines *repositories.MachineRepository) *MaintenanceService {
	return &MaintenanceService{Tasks: tasks, Machines: machines}
}

func validPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return true
	}
	return false
}

func validTaskStatus(s string) bool {
	switch s {
	case models.TaskOpen, models.TaskInProgress, models.TaskResolved:
		return true
	}
	return false
}

// CreateTask opens a maintenance ticket against a machine. Critical tickets
// flip the machine to Maintenance status immediately.
func (s *MaintenanceService) CreateTask(ctx context.Context, req *models.CreateMaintenanceTaskRequest, userID string) (*models.MaintenanceTask, error) {
	if req.MachineID == "" || req.Description == "" {
		return nil, errors.New("machine_id and description are required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !validPriority(req.Priority) {
		return nil, errors.New("invalid priority")
	}

	machine, err := s.Machines.Get(ctx, req.MachineID)
	if err != nil {
		return nil, errors.New("machine not found")
	}

	task := &models.MaintenanceTask{
		MachineID:   req.MachineID,
		MachineName: machine.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.TaskOpen,
		CreatedBy:   userID,
	}
	if req.AssignedTo != "" {
		task.AssignedTo = &req.AssignedTo
	}

	if err := s.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	if req.Priority == models.PriorityCritical && machine.Status == models.MachineOnline {
		machine.Status = models.MachineMaintenance
		if err := s.Machines.Update(ctx, machine); err != nil {
			return nil, err
		}
		cache.InvalidateMachineCaches(ctx)
	}

	cache.InvalidateMaintenanceCaches(ctx)
	return task, nil
}

func (s *MaintenanceService) GetTask(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	return s.Tasks.Get(ctx, id)
}

func (s *MaintenanceService) ListTasks(ctx context.Context, status, machineID string) ([]models.MaintenanceTask, error) {
	if status != "" && !validTaskStatus(status) {
		return nil, errors.New("invalid status filter")
	}
	return s.Tasks.List(ctx, status, machineID)
}

// UpdateTask updates a ticket; moving it to resolved stamps resolved_at
func (s *MaintenanceService) UpdateTask(ctx context.Context, id string, req *models.UpdateMaintenanceTaskRequest) (*models.MaintenanceTask, error) {
	task, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, errors.New("task not found")
	}

	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Priority != "" {
		if !validPriority(req.Priority) {
			return nil, errors.New("invalid priority")
		}
		task.Priority = req.Priority
	}
	if req.Status != "" {
		if !validTaskStatus(req.Status) {
			return nil, errors.New("invalid status")
		}
		task.Status = req.Status
	}
	if req.AssignedTo != "" {
		task.AssignedTo = &req.AssignedTo
	}

	if err := s.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	cache.InvalidateMaintenanceCaches(ctx)
	return task, nil
}

func (s *MaintenanceService) DeleteTask(ctx context.Context, id string) error {
	if err := s.Tasks.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateMaintenanceCaches(ctx)
	return nil
}
