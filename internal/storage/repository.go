package storage

import (
	"context"
	"errors"
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

type TemplateFilter struct {
	TankID int64
	Status model.TemplateStatus
	Limit  int
	Offset int
}

type ActivityFilter struct {
	TemplateID int64
	Limit      int
	Offset     int
}

// Repository is the persistence collaborator for the scheduling core and the
// TUI. Create/Save calls assign IDs on first insert.
type Repository interface {
	CreateTank(ctx context.Context, in *model.Tank) error
	GetTank(ctx context.Context, id int64) (model.Tank, error)
	ListTanks(ctx context.Context) ([]model.Tank, error)
	DeleteTank(ctx context.Context, id int64) error

	SaveTaskTemplate(ctx context.Context, in *model.TaskTemplate) error
	GetTaskTemplate(ctx context.Context, id int64) (model.TaskTemplate, error)
	ListTaskTemplates(ctx context.Context, filter TemplateFilter) ([]model.TaskTemplate, error)
	// ListTemplatesDueOn returns active templates due on the given calendar
	// date across all tanks, with TankName populated for notification text.
	ListTemplatesDueOn(ctx context.Context, day time.Time) ([]model.TaskTemplate, error)
	ArchiveTemplate(ctx context.Context, id int64) error
	// DeleteTemplate permanently removes a template; its activity history
	// cascades away with it.
	DeleteTemplate(ctx context.Context, id int64) error

	AppendActivity(ctx context.Context, in *model.TaskActivity) error
	ListActivities(ctx context.Context, filter ActivityFilter) ([]model.TaskActivity, error)
	ListActivitiesOn(ctx context.Context, day time.Time) ([]model.TaskActivity, error)

	SaveParameterRange(ctx context.Context, in *model.ParameterRange) error
	ListParameterRanges(ctx context.Context, tankID int64) ([]model.ParameterRange, error)
	DeleteParameterRange(ctx context.Context, id int64) error

	SaveLivestock(ctx context.Context, in *model.Livestock) error
	ListLivestock(ctx context.Context, tankID int64) ([]model.Livestock, error)
	// MoveLivestock relocates quantity animals from a record to another tank.
	// Moving the whole group re-homes the record; a partial move splits it
	// into two records.
	MoveLivestock(ctx context.Context, id, destTankID int64, quantity int) error
	DeleteLivestock(ctx context.Context, id int64) error
}
