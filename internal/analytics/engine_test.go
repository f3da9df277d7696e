package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

type stubSource struct {
	projects   []models.Project
	tasks      []models.Task
	timesheets []models.Timesheet
	users      []models.User
	err        error
}

func (s *stubSource) ListProjects() ([]models.Project, error)     { return s.projects, s.err }
func (s *stubSource) ListTasks() ([]models.Task, error)           { return s.tasks, s.err }
func (s *stubSource) ListTimesheets() ([]models.Timesheet, error) { return s.timesheets, s.err }
func (s *stubSource) ListUsers() ([]models.User, error)           { return s.users, s.err }

func strp(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

func timep(t time.Time) *time.Time { return &t }

func newTestEngine(src *stubSource) *Engine {
	return NewEngine(src, zap.NewNop())
}

func completedFixture() *stubSource {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return &stubSource{
		projects: []models.Project{
			{ID: "p1", Name: "Rollout", Status: models.ProjectCompleted, TotalTasks: 1, CompletedTasks: 1},
		},
		tasks: []models.Task{
			{ID: "t1", Name: "Ship it", ProjectID: strp("p1"), AssigneeID: strp("u1"), Status: models.TaskCompleted},
		},
		timesheets: []models.Timesheet{
			{ID: "ts1", TaskID: "t1", EmployeeID: "u1", TimeLogged: 5, Billable: true, CreatedAt: timep(created)},
		},
	}
}

func TestKPIsOpenFilter(t *testing.T) {
	engine := newTestEngine(completedFixture())

	kpis, err := engine.KPIs(Criteria{})
	require.NoError(t, err)

	assert.Equal(t, 1, kpis.TotalProjects)
	assert.Equal(t, 1, kpis.TasksCompleted)
	assert.Equal(t, 5.0, kpis.TotalHours)
	assert.Equal(t, 5.0, kpis.BillableHours)
	assert.Equal(t, 0.0, kpis.NonBillableHours)
	assert.Equal(t, 100, kpis.BillablePercentage)
}

func TestKPIsBillableFalseEmptiesTimesheets(t *testing.T) {
	engine := newTestEngine(completedFixture())

	kpis, err := engine.KPIs(Criteria{Billable: boolp(false)})
	require.NoError(t, err)

	assert.Equal(t, 0.0, kpis.TotalHours)
	assert.Equal(t, 0, kpis.BillablePercentage)
}

func TestKPIsHoursPartition(t *testing.T) {
	created := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{
			{ID: "t1", ProjectID: strp("p1"), Status: models.TaskInProgress},
		},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 3.5, Billable: true, CreatedAt: timep(created)},
			{ID: "b", TaskID: "t1", EmployeeID: "u1", TimeLogged: 1.25, Billable: false, CreatedAt: timep(created)},
			{ID: "c", TaskID: "t1", EmployeeID: "u2", TimeLogged: 2, Billable: true, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	kpis, err := engine.KPIs(Criteria{})
	require.NoError(t, err)

	assert.Equal(t, kpis.TotalHours, kpis.BillableHours+kpis.NonBillableHours)
	assert.GreaterOrEqual(t, kpis.BillablePercentage, 0)
	assert.LessOrEqual(t, kpis.BillablePercentage, 100)
}

func TestKPIsFiltersByProjectAndEmployee(t *testing.T) {
	created := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		projects: []models.Project{
			{ID: "p1", Name: "One"},
			{ID: "p2", Name: "Two"},
		},
		tasks: []models.Task{
			{ID: "t1", ProjectID: strp("p1"), AssigneeID: strp("u1"), Status: models.TaskCompleted},
			{ID: "t2", ProjectID: strp("p2"), AssigneeID: strp("u1"), Status: models.TaskCompleted},
			{ID: "t3", ProjectID: strp("p1"), AssigneeID: strp("u2"), Status: models.TaskCompleted},
		},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 2, Billable: true, CreatedAt: timep(created)},
			{ID: "b", TaskID: "t2", EmployeeID: "u1", TimeLogged: 4, Billable: true, CreatedAt: timep(created)},
			{ID: "c", TaskID: "t3", EmployeeID: "u2", TimeLogged: 8, Billable: true, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	kpis, err := engine.KPIs(Criteria{Project: "p1", Employee: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 1, kpis.TotalProjects)
	assert.Equal(t, 1, kpis.TasksCompleted)
	assert.Equal(t, 2.0, kpis.TotalHours)
}

func TestKPIsCountHoursLoggedByOthersOnAssigneeTasks(t *testing.T) {
	created := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{
			{ID: "t1", AssigneeID: strp("u1"), Status: models.TaskInProgress},
			{ID: "t2", AssigneeID: strp("u2"), Status: models.TaskInProgress},
		},
		timesheets: []models.Timesheet{
			// logged on u1's task by someone else
			{ID: "a", TaskID: "t1", EmployeeID: "u2", TimeLogged: 4, Billable: true, CreatedAt: timep(created)},
			// logged by u1 on a task assigned to someone else
			{ID: "b", TaskID: "t2", EmployeeID: "u1", TimeLogged: 9, Billable: true, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	kpis, err := engine.KPIs(Criteria{Employee: "u1"})
	require.NoError(t, err)

	// the employee criterion reaches timesheets only through the task set
	assert.Equal(t, 4.0, kpis.TotalHours)
}

func TestKPIsDateRange(t *testing.T) {
	in := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{{ID: "t1", Status: models.TaskPlanned}},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 1, Billable: true, CreatedAt: timep(in)},
			{ID: "b", TaskID: "t1", EmployeeID: "u1", TimeLogged: 2, Billable: true, CreatedAt: timep(out)},
			{ID: "c", TaskID: "t1", EmployeeID: "u1", TimeLogged: 4, Billable: true},
		},
	}
	engine := newTestEngine(src)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	kpis, err := engine.KPIs(Criteria{Start: &start, End: &end})
	require.NoError(t, err)

	// the entry with no created-at is excluded once any bound is set
	assert.Equal(t, 1.0, kpis.TotalHours)
}

func TestProjectCosts(t *testing.T) {
	src := &stubSource{
		projects: []models.Project{
			{ID: "p1", Name: "One", Cost: 100, Revenue: 250},
			{ID: "p2", Name: "Two", Cost: 30, Revenue: 10},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.ProjectCosts(Criteria{Project: "p2"})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, CostPoint{Name: "Two", Cost: 30, Revenue: 10}, points[0])
}

func TestResourceUtilizationPartition(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{{ID: "t1", ProjectID: strp("p1")}},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 6, Billable: true, CreatedAt: timep(created)},
			{ID: "b", TaskID: "t1", EmployeeID: "u1", TimeLogged: 4, Billable: false, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	unfiltered, err := engine.ResourceUtilization(Criteria{})
	require.NoError(t, err)
	billableOnly, err := engine.ResourceUtilization(Criteria{Billable: boolp(true)})
	require.NoError(t, err)
	nonBillableOnly, err := engine.ResourceUtilization(Criteria{Billable: boolp(false)})
	require.NoError(t, err)

	total := unfiltered[0].Value + unfiltered[1].Value
	split := billableOnly[0].Value + billableOnly[1].Value +
		nonBillableOnly[0].Value + nonBillableOnly[1].Value
	assert.Equal(t, total, split)

	assert.Equal(t, "Billable", unfiltered[0].Name)
	assert.Equal(t, "Non-Billable", unfiltered[1].Name)
	assert.Equal(t, 6.0, unfiltered[0].Value)
	assert.Equal(t, 4.0, unfiltered[1].Value)
}

func TestResourceUtilizationIgnoresStatusFilter(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{{ID: "t1", ProjectID: strp("p1"), Status: models.TaskBlocked}},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 3, Billable: true, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.ResourceUtilization(Criteria{Status: models.TaskCompleted})
	require.NoError(t, err)
	assert.Equal(t, 3.0, points[0].Value)
}

func TestResourceUtilizationFiltersEmployeeDirectly(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		tasks: []models.Task{{ID: "t1", AssigneeID: strp("u1")}},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 6, Billable: true, CreatedAt: timep(created)},
			{ID: "b", TaskID: "t1", EmployeeID: "u2", TimeLogged: 4, Billable: true, CreatedAt: timep(created)},
		},
	}
	engine := newTestEngine(src)

	// unlike the KPI view, utilization matches the timesheet's own employeeId
	points, err := engine.ResourceUtilization(Criteria{Employee: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 6.0, points[0].Value)
}

func TestProjectCompletion(t *testing.T) {
	src := &stubSource{
		projects: []models.Project{
			{ID: "p1", Name: "Full", TotalTasks: 4, CompletedTasks: 4},
			{ID: "p2", Name: "Third", TotalTasks: 3, CompletedTasks: 1},
			{ID: "p3", Name: "Empty", TotalTasks: 0, CompletedTasks: 0},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.ProjectCompletion(Criteria{})
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, 100, points[0].Value)
	assert.Equal(t, 33, points[1].Value)
	assert.Equal(t, 0, points[2].Value)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0)
		assert.LessOrEqual(t, p.Value, 100)
	}
}

func TestWorkloadTrendAlwaysTwelveMonths(t *testing.T) {
	engine := newTestEngine(&stubSource{})

	points, err := engine.WorkloadTrend(Criteria{})
	require.NoError(t, err)

	require.Len(t, points, 12)
	want := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for i, p := range points {
		assert.Equal(t, want[i], p.Month)
		assert.Equal(t, 0.0, p.Hours)
	}
}

func TestWorkloadTrendBucketsByMonth(t *testing.T) {
	src := &stubSource{
		tasks: []models.Task{{ID: "t1", ProjectID: strp("p1")}},
		timesheets: []models.Timesheet{
			{ID: "a", TaskID: "t1", EmployeeID: "u1", TimeLogged: 2, Billable: true,
				CreatedAt: timep(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
			{ID: "b", TaskID: "t1", EmployeeID: "u1", TimeLogged: 3, Billable: true,
				CreatedAt: timep(time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC))},
			{ID: "c", TaskID: "t1", EmployeeID: "u1", TimeLogged: 7, Billable: false,
				CreatedAt: timep(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.WorkloadTrend(Criteria{})
	require.NoError(t, err)

	// March entries from different years share one bucket
	assert.Equal(t, 5.0, points[2].Hours)
	assert.Equal(t, 7.0, points[10].Hours)
}

func TestRevenueExpenseTrend(t *testing.T) {
	src := &stubSource{
		projects: []models.Project{
			{ID: "p1", Name: "One", Revenue: 100, Cost: 40,
				Deadline: timep(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))},
			{ID: "p2", Name: "Two", Revenue: 50, Cost: 20,
				Deadline: timep(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))},
			{ID: "p3", Name: "NoDeadline", Revenue: 999, Cost: 999},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.RevenueExpenseTrend(Criteria{})
	require.NoError(t, err)

	require.Len(t, points, 12)
	assert.Equal(t, 150.0, points[6].Revenue)
	assert.Equal(t, 60.0, points[6].Expense)
	for i, p := range points {
		if i != 6 {
			assert.Equal(t, 0.0, p.Revenue)
			assert.Equal(t, 0.0, p.Expense)
		}
	}
}

func TestTaskStatusDistributionSparse(t *testing.T) {
	src := &stubSource{
		tasks: []models.Task{
			{ID: "t1", Status: models.TaskCompleted},
			{ID: "t2", Status: models.TaskCompleted},
			{ID: "t3", Status: models.TaskBlocked},
		},
	}
	engine := newTestEngine(src)

	points, err := engine.TaskStatusDistribution(Criteria{})
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, StatusCount{Name: models.TaskCompleted, Value: 2}, points[0])
	assert.Equal(t, StatusCount{Name: models.TaskBlocked, Value: 1}, points[1])
}

func TestTaskStatusDistributionEmpty(t *testing.T) {
	engine := newTestEngine(&stubSource{})

	points, err := engine.TaskStatusDistribution(Criteria{})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestFilterOptions(t *testing.T) {
	src := &stubSource{
		projects: []models.Project{{ID: "p1", Name: "One"}},
		users:    []models.User{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Bo"}},
	}
	engine := newTestEngine(src)

	opts, err := engine.FilterOptions()
	require.NoError(t, err)

	assert.Equal(t, []Option{{ID: "p1", Name: "One"}}, opts.Projects)
	assert.Len(t, opts.Employees, 2)
	assert.Equal(t, models.TaskStatuses, opts.Statuses)
}

func TestSourceErrorPropagates(t *testing.T) {
	engine := newTestEngine(&stubSource{err: errors.New("db closed")})

	_, err := engine.KPIs(Criteria{})
	assert.Error(t, err)

	_, err = engine.WorkloadTrend(Criteria{})
	assert.Error(t, err)

	_, err = engine.FilterOptions()
	assert.Error(t, err)
}
