package analytics

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// Source supplies entity snapshots for one aggregation pass. Every view
// re-reads through it on each call; nothing is cached between calls.
type Source interface {
	ListProjects() ([]models.Project, error)
	ListTasks() ([]models.Task, error)
	ListTimesheets() ([]models.Timesheet, error)
	ListUsers() ([]models.User, error)
}

// Engine computes read-only reporting views over projects, tasks and
// timesheets. All views share the Criteria filter semantics; each view reads
// its own snapshot, so two views computed back to back may observe different
// data if writes interleave.
type Engine struct {
	source Source
	logger *zap.Logger
}

// NewEngine creates an analytics engine backed by the given source
func NewEngine(source Source, logger *zap.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger,
	}
}

// KPIs is the headline numbers view
type KPIs struct {
	TotalProjects      int     `json:"totalProjects"`
	TasksCompleted     int     `json:"tasksCompleted"`
	TotalHours         float64 `json:"totalHours"`
	BillableHours      float64 `json:"billableHours"`
	NonBillableHours   float64 `json:"nonBillableHours"`
	BillablePercentage int     `json:"billablePercentage"`
}

// CostPoint is one project's cost versus revenue
type CostPoint struct {
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
}

// UtilizationPoint is one bucket of the billable/non-billable split
type UtilizationPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CompletionPoint is one project's completion percentage
type CompletionPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WorkloadPoint is hours logged in one calendar month bucket
type WorkloadPoint struct {
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

// RevenueExpensePoint is revenue and expense totals in one month bucket
type RevenueExpensePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
}

// StatusCount is the number of tasks in one status
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Option is an id/name pair for filter dropdowns
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptions lists everything the filter UI can restrict on
type FilterOptions struct {
	Projects  []Option `json:"projects"`
	Employees []Option `json:"employees"`
	Statuses  []string `json:"statuses"`
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func filterProjects(projects []models.Project, c Criteria) []models.Project {
	if c.Project == "" {
		return projects
	}
	var out []models.Project
	for _, p := range projects {
		if p.ID == c.Project {
			out = append(out, p)
		}
	}
	return out
}

func filterTasks(tasks []models.Task, c Criteria) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if c.Project != "" && (t.ProjectID == nil || *t.ProjectID != c.Project) {
			continue
		}
		if c.Employee != "" && (t.AssigneeID == nil || *t.AssigneeID != c.Employee) {
			continue
		}
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func taskIDSet(tasks []models.Task) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	return ids
}

// inDateRange applies the inclusive created-at bounds. A timesheet with no
// created-at is excluded whenever any bound is set.
func inDateRange(ts models.Timesheet, c Criteria) bool {
	if c.Start == nil && c.End == nil {
		return true
	}
	if ts.CreatedAt == nil {
		return false
	}
	if c.Start != nil && ts.CreatedAt.Before(*c.Start) {
		return false
	}
	if c.End != nil && ts.CreatedAt.After(*c.End) {
		return false
	}
	return true
}

// filterTimesheets restricts timesheets to the surviving task set, then by
// billable flag and date range. The employee criterion reaches timesheets
// only through the task set: a timesheet logged on the assignee's task by
// someone else still counts.
func filterTimesheets(timesheets []models.Timesheet, taskIDs map[string]bool, c Criteria) []models.Timesheet {
	var out []models.Timesheet
	for _, ts := range timesheets {
		if !taskIDs[ts.TaskID] {
			continue
		}
		if c.Billable != nil && ts.Billable != *c.Billable {
			continue
		}
		if !inDateRange(ts, c) {
			continue
		}
		out = append(out, ts)
	}
	return out
}

// timesheetsByProject narrows timesheets to tasks of the selected project
// without touching the other task dimensions. Used by the timesheet-driven
// views, which ignore the task status filter.
func timesheetsByProject(timesheets []models.Timesheet, tasks []models.Task, c Criteria) []models.Timesheet {
	if c.Project == "" {
		return timesheets
	}
	ids := taskIDSet(filterTasks(tasks, Criteria{Project: c.Project}))
	var out []models.Timesheet
	for _, ts := range timesheets {
		if ids[ts.TaskID] {
			out = append(out, ts)
		}
	}
	return out
}

func roundPercent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

// KPIs computes the headline numbers for the current filter set
func (e *Engine) KPIs(c Criteria) (*KPIs, error) {
	projects, err := e.source.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	tasks, err := e.source.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	timesheets, err := e.source.ListTimesheets()
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheets: %w", err)
	}

	projects = filterProjects(projects, c)
	tasks = filterTasks(tasks, c)
	timesheets = filterTimesheets(timesheets, taskIDSet(tasks), c)

	kpis := &KPIs{TotalProjects: len(projects)}
	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			kpis.TasksCompleted++
		}
	}
	for _, ts := range timesheets {
		kpis.TotalHours += ts.TimeLogged
		if ts.Billable {
			kpis.BillableHours += ts.TimeLogged
		}
	}
	kpis.NonBillableHours = kpis.TotalHours - kpis.BillableHours
	kpis.BillablePercentage = roundPercent(kpis.BillableHours, kpis.TotalHours)
	return kpis, nil
}

// ProjectCosts emits cost versus revenue per filtered project
func (e *Engine) ProjectCosts(c Criteria) ([]CostPoint, error) {
	projects, err := e.source.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	points := []CostPoint{}
	for _, p := range filterProjects(projects, c) {
		points = append(points, CostPoint{Name: p.Name, Cost: p.Cost, Revenue: p.Revenue})
	}
	return points, nil
}

// ResourceUtilization splits logged time into billable and non-billable
// buckets. The task status filter does not apply here.
func (e *Engine) ResourceUtilization(c Criteria) ([]UtilizationPoint, error) {
	tasks, err := e.source.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	timesheets, err := e.source.ListTimesheets()
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheets: %w", err)
	}

	var billable, nonBillable float64
	for _, ts := range timesheetsByProject(timesheets, tasks, c) {
		if c.Employee != "" && ts.EmployeeID != c.Employee {
			continue
		}
		if c.Billable != nil && ts.Billable != *c.Billable {
			continue
		}
		if !inDateRange(ts, c) {
			continue
		}
		if ts.Billable {
			billable += ts.TimeLogged
		} else {
			nonBillable += ts.TimeLogged
		}
	}

	return []UtilizationPoint{
		{Name: "Billable", Value: billable},
		{Name: "Non-Billable", Value: nonBillable},
	}, nil
}

// ProjectCompletion emits one completion percentage per filtered project
func (e *Engine) ProjectCompletion(c Criteria) ([]CompletionPoint, error) {
	projects, err := e.source.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	points := []CompletionPoint{}
	for _, p := range filterProjects(projects, c) {
		points = append(points, CompletionPoint{
			Name:  p.Name,
			Value: roundPercent(float64(p.CompletedTasks), float64(p.TotalTasks)),
		})
	}
	return points, nil
}

// WorkloadTrend buckets logged hours by the short month name of each
// timesheet's created-at. All twelve months are always emitted in calendar
// order; entries from different years sharing a month name land in the same
// bucket.
func (e *Engine) WorkloadTrend(c Criteria) ([]WorkloadPoint, error) {
	tasks, err := e.source.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	timesheets, err := e.source.ListTimesheets()
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheets: %w", err)
	}

	hoursByMonth := make(map[string]float64)
	for _, ts := range timesheetsByProject(timesheets, tasks, c) {
		if c.Employee != "" && ts.EmployeeID != c.Employee {
			continue
		}
		if c.Billable != nil && ts.Billable != *c.Billable {
			continue
		}
		if !inDateRange(ts, c) {
			continue
		}
		if ts.CreatedAt == nil {
			continue
		}
		hoursByMonth[ts.CreatedAt.Format("Jan")] += ts.TimeLogged
	}

	points := make([]WorkloadPoint, 0, len(monthNames))
	for _, month := range monthNames {
		points = append(points, WorkloadPoint{Month: month, Hours: hoursByMonth[month]})
	}
	return points, nil
}

// RevenueExpenseTrend buckets project revenue and cost by the short month
// name of each project's deadline, with the same fixed twelve-month shape as
// WorkloadTrend. Projects without a deadline are skipped.
func (e *Engine) RevenueExpenseTrend(c Criteria) ([]RevenueExpensePoint, error) {
	projects, err := e.source.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	type bucket struct{ revenue, expense float64 }
	byMonth := make(map[string]bucket)
	for _, p := range filterProjects(projects, c) {
		if p.Deadline == nil {
			continue
		}
		month := p.Deadline.Format("Jan")
		b := byMonth[month]
		b.revenue += p.Revenue
		b.expense += p.Cost
		byMonth[month] = b
	}

	points := make([]RevenueExpensePoint, 0, len(monthNames))
	for _, month := range monthNames {
		b := byMonth[month]
		points = append(points, RevenueExpensePoint{Month: month, Revenue: b.revenue, Expense: b.expense})
	}
	return points, nil
}

// TaskStatusDistribution counts filtered tasks per status. Only statuses
// actually present appear, in first-seen order.
func (e *Engine) TaskStatusDistribution(c Criteria) ([]StatusCount, error) {
	tasks, err := e.source.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	for _, t := range filterTasks(tasks, c) {
		if _, seen := counts[t.Status]; !seen {
			order = append(order, t.Status)
		}
		counts[t.Status]++
	}

	points := []StatusCount{}
	for _, status := range order {
		points = append(points, StatusCount{Name: status, Value: counts[status]})
	}
	return points, nil
}

// FilterOptions lists the projects, employees and task statuses available to
// the filter UI
func (e *Engine) FilterOptions() (*FilterOptions, error) {
	projects, err := e.source.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	users, err := e.source.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	opts := &FilterOptions{
		Projects:  []Option{},
		Employees: []Option{},
		Statuses:  models.TaskStatuses,
	}
	for _, p := range projects {
		opts.Projects = append(opts.Projects, Option{ID: p.ID, Name: p.Name})
	}
	for _, u := range users {
		opts.Employees = append(opts.Employees, Option{ID: u.ID, Name: u.Name})
	}
	return opts, nil
}
