package storage

import (
	"time"

	"gorm.io/datatypes"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

type employeeRow struct {
	ID               int64        `gorm:"primaryKey"`
	ExternalID       string       `gorm:"column:employee_id;size:50;uniqueIndex;not null"`
	Name             string       `gorm:"size:200;not null"`
	Role             string       `gorm:"size:200"`
	Timezone         string       `gorm:"size:100"`
	CapacityHours    int          `gorm:"column:capacity_hours_per_week"`
	CurrentLoadHours int          `gorm:"column:current_load_hours"`
	Skills           []team.Skill `gorm:"serializer:json"`
	Languages        []string     `gorm:"serializer:json"`
	Email            string       `gorm:"size:200"`
	SlackUserID      string       `gorm:"size:100"`
	JiraAccountID    string       `gorm:"size:100"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (employeeRow) TableName() string { return "employees" }

type projectRow struct {
	ID                 int64  `gorm:"primaryKey"`
	Title              string `gorm:"column:project_title;size:200;not null"`
	Index              int    `gorm:"column:project_index;not null"`
	EstimatedTime      string `gorm:"size:50"`
	Description        string `gorm:"type:text"`
	Company            string `gorm:"size:200"`
	Department         string `gorm:"size:200"`
	Year               int
	Languages          []string `gorm:"serializer:json"`
	ProblemDescription string   `gorm:"column:project_description;type:text"`
	PossibleSolution   string   `gorm:"type:text"`
	JiraProjectKey     string   `gorm:"size:50"`
	JiraSynced         bool
	JiraSyncDate       *time.Time
	EpicKeys           map[string]string `gorm:"serializer:json"`
	Members            []memberRow       `gorm:"foreignKey:ProjectID"`
	Tasks              []taskRow         `gorm:"foreignKey:ProjectID"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (projectRow) TableName() string { return "projects" }

type memberRow struct {
	ID            int64        `gorm:"primaryKey"`
	ProjectID     int64        `gorm:"not null;uniqueIndex:idx_member_project_employee,priority:1"`
	EmployeeID    int64        `gorm:"not null;index;uniqueIndex:idx_member_project_employee,priority:2"`
	RoleInProject string       `gorm:"size:200"`
	Employee      *employeeRow `gorm:"foreignKey:EmployeeID"`
	CreatedAt     time.Time
}

func (memberRow) TableName() string { return "project_team_members" }

type taskRow struct {
	ID                 int64                 `gorm:"primaryKey"`
	TaskNumber         int                   `gorm:"column:task_id;not null;uniqueIndex:idx_task_project_number,priority:2"`
	ProjectID          int64                 `gorm:"not null;index;uniqueIndex:idx_task_project_number,priority:1"`
	Title              string                `gorm:"size:500;not null"`
	Description        string                `gorm:"type:text"`
	EpicName           string                `gorm:"size:200"`
	Labels             []string              `gorm:"serializer:json"`
	Priority           string                `gorm:"size:50"`
	StatusName         string                `gorm:"size:50;index"`
	RequiredSkills     []string              `gorm:"serializer:json"`
	Dependencies       []planning.Dependency `gorm:"serializer:json"`
	AssigneeID         *int64                `gorm:"index"`
	Assignee           *employeeRow          `gorm:"foreignKey:AssigneeID"`
	AssigneeScore      *float64
	DecidedBy          string `gorm:"size:50"`
	DecidedAt          *time.Time
	Rationale          string               `gorm:"type:text"`
	AssigneeCandidates []planning.Candidate `gorm:"serializer:json"`
	JiraIssueKey       string               `gorm:"size:50"`
	JiraIssueID        string               `gorm:"size:50"`
	JiraSynced         bool
	JiraSyncDate       *time.Time
	DueDate            *time.Time
	EstimatedTime      string `gorm:"size:50"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (taskRow) TableName() string { return "tasks" }

type syncLogRow struct {
	ID            int64          `gorm:"primaryKey"`
	SyncType      string         `gorm:"size:50"`
	SyncDirection string         `gorm:"size:50"`
	Status        string         `gorm:"size:50"`
	ProjectID     *int64         `gorm:"index"`
	TaskID        *int64         `gorm:"index"`
	Details       datatypes.JSON `gorm:"column:details"`
	ErrorMessage  string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"index"`
}

func (syncLogRow) TableName() string { return "sync_logs" }

func toEmployee(r *employeeRow) *team.Employee {
	if r == nil {
		return nil
	}
	e := &team.Employee{
		ID:               r.ID,
		ExternalID:       r.ExternalID,
		Name:             r.Name,
		Role:             r.Role,
		Timezone:         r.Timezone,
		CapacityHours:    r.CapacityHours,
		CurrentLoadHours: r.CurrentLoadHours,
		Skills:           r.Skills,
		Languages:        r.Languages,
		Integrations: team.Integrations{
			Email:            r.Email,
			SlackUserID:      r.SlackUserID,
			TrackerAccountID: r.JiraAccountID,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if e.Skills == nil {
		e.Skills = []team.Skill{}
	}
	if e.Languages == nil {
		e.Languages = []string{}
	}
	return e
}

func fromEmployee(e *team.Employee) employeeRow {
	return employeeRow{
		ID:               e.ID,
		ExternalID:       e.ExternalID,
		Name:             e.Name,
		Role:             e.Role,
		Timezone:         e.Timezone,
		CapacityHours:    e.CapacityHours,
		CurrentLoadHours: e.CurrentLoadHours,
		Skills:           e.Skills,
		Languages:        e.Languages,
		Email:            e.Integrations.Email,
		SlackUserID:      e.Integrations.SlackUserID,
		JiraAccountID:    e.Integrations.TrackerAccountID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toTask(r *taskRow) planning.Task {
	t := planning.Task{
		ID:             r.ID,
		ProjectID:      r.ProjectID,
		Number:         r.TaskNumber,
		Title:          r.Title,
		Description:    r.Description,
		EpicName:       r.EpicName,
		Labels:         r.Labels,
		Priority:       planning.TaskPriority(r.Priority),
		Status:         r.StatusName,
		RequiredSkills: r.RequiredSkills,
		Dependencies:   r.Dependencies,
		Candidates:     r.AssigneeCandidates,
		RemoteLink: planning.RemoteLink{
			IssueKey: r.JiraIssueKey,
			IssueID:  r.JiraIssueID,
			Synced:   r.JiraSynced,
			SyncedAt: r.JiraSyncDate,
		},
		EstimatedTime: r.EstimatedTime,
		DueDate:       r.DueDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.RequiredSkills == nil {
		t.RequiredSkills = []string{}
	}
	if t.Dependencies == nil {
		t.Dependencies = []planning.Dependency{}
	}
	if r.AssigneeID != nil {
		a := &planning.Assignment{
			EmployeeID: *r.AssigneeID,
			Score:      r.AssigneeScore,
			DecidedBy:  planning.DecisionSource(r.DecidedBy),
			Rationale:  r.Rationale,
		}
		if r.DecidedAt != nil {
			a.DecidedAt = *r.DecidedAt
		}
		if r.Assignee != nil {
			a.ExternalID = r.Assignee.ExternalID
			a.Name = r.Assignee.Name
			a.TrackerAccountID = r.Assignee.JiraAccountID
		}
		t.Assignment = a
	}
	return t
}

func fromTask(t *planning.Task) taskRow {
	r := taskRow{
		ID:                 t.ID,
		TaskNumber:         t.Number,
		ProjectID:          t.ProjectID,
		Title:              t.Title,
		Description:        t.Description,
		EpicName:           t.EpicName,
		Labels:             t.Labels,
		Priority:           string(t.Priority),
		StatusName:         t.Status,
		RequiredSkills:     t.RequiredSkills,
		Dependencies:       t.Dependencies,
		AssigneeCandidates: t.Candidates,
		JiraIssueKey:       t.IssueKey,
		JiraIssueID:        t.IssueID,
		JiraSynced:         t.Synced,
		JiraSyncDate:       t.SyncedAt,
		DueDate:            t.DueDate,
		EstimatedTime:      t.EstimatedTime,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if a := t.Assignment; a != nil && a.EmployeeID != 0 {
		id := a.EmployeeID
		r.AssigneeID = &id
		r.AssigneeScore = a.Score
		r.DecidedBy = string(a.DecidedBy)
		r.Rationale = a.Rationale
		if !a.DecidedAt.IsZero() {
			at := a.DecidedAt
			r.DecidedAt = &at
		}
	}
	return r
}

func toProject(r *projectRow) *planning.Project {
	p := &planning.Project{
		ID:            r.ID,
		Title:         r.Title,
		Index:         r.Index,
		EstimatedTime: r.EstimatedTime,
		Metadata: planning.Metadata{
			Description: r.Description,
			Company:     r.Company,
			Department:  r.Department,
			Year:        r.Year,
			Languages:   r.Languages,
		},
		ProblemDescription: r.ProblemDescription,
		PossibleSolution:   r.PossibleSolution,
		TrackerProjectKey:  r.JiraProjectKey,
		Synced:             r.JiraSynced,
		SyncedAt:           r.JiraSyncDate,
		EpicKeys:           r.EpicKeys,
		Members:            make([]planning.Membership, 0, len(r.Members)),
		Tasks:              make([]planning.Task, 0, len(r.Tasks)),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if p.Metadata.Languages == nil {
		p.Metadata.Languages = []string{}
	}
	for i := range r.Members {
		m := &r.Members[i]
		p.Members = append(p.Members, planning.Membership{
			EmployeeID: m.EmployeeID,
			Employee:   toEmployee(m.Employee),
			Role:       m.RoleInProject,
		})
	}
	for i := range r.Tasks {
		p.Tasks = append(p.Tasks, toTask(&r.Tasks[i]))
	}
	return p
}

func fromProject(p *planning.Project) projectRow {
	return projectRow{
		ID:                 p.ID,
		Title:              p.Title,
		Index:              p.Index,
		EstimatedTime:      p.EstimatedTime,
		Description:        p.Metadata.Description,
		Company:            p.Metadata.Company,
		Department:         p.Metadata.Department,
		Year:               p.Metadata.Year,
		Languages:          p.Metadata.Languages,
		ProblemDescription: p.ProblemDescription,
		PossibleSolution:   p.PossibleSolution,
		JiraProjectKey:     p.TrackerProjectKey,
		JiraSynced:         p.Synced,
		JiraSyncDate:       p.SyncedAt,
		EpicKeys:           p.EpicKeys,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toSyncLog(r *syncLogRow) synclog.Entry {
	return synclog.Entry{
		ID:           r.ID,
		Type:         synclog.Type(r.SyncType),
		Direction:    synclog.Direction(r.SyncDirection),
		Status:       synclog.Status(r.Status),
		ProjectID:    r.ProjectID,
		TaskID:       r.TaskID,
		Details:      []byte(r.Details),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}

func fromSyncLog(e *synclog.Entry) syncLogRow {
	return syncLogRow{
		ID:            e.ID,
		SyncType:      string(e.Type),
		SyncDirection: string(e.Direction),
		Status:        string(e.Status),
		ProjectID:     e.ProjectID,
		TaskID:        e.TaskID,
		Details:       datatypes.JSON(e.Details),
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt,
	}
}
