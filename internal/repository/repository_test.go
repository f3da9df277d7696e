package repository

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_create_tables.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func strp(s string) *string { return &s }

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), zap.NewNop())

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	user := &models.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hashed",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	byEmail, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := repo.UpdateRole(user.ID, models.RoleFinance)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.RoleFinance, updated.Role)

	gone, err := repo.UpdateRole("no-such-id", models.RoleFinance)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestProjectRepositoryCRUD(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t), zap.NewNop())

	project := &models.Project{
		Name:        "Website Redesign",
		Description: strp("Full relaunch"),
		Manager:     "Alice",
		Status:      models.ProjectInProgress,
		Budget:      50000,
	}
	require.NoError(t, repo.Create(project))
	require.NotEmpty(t, project.ID)

	loaded, err := repo.GetByID(project.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Website Redesign", loaded.Name)
	require.NotNil(t, loaded.Description)
	assert.Equal(t, "Full relaunch", *loaded.Description)

	loaded.Status = models.ProjectCompleted
	loaded.Progress = 100
	updated, err := repo.Update(loaded)
	require.NoError(t, err)
	assert.True(t, updated)

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.ProjectCompleted, all[0].Status)

	deleted, err := repo.Delete(project.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(project.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	missing, err := repo.GetByID(project.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaskRepositoryListByAssignee(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(&models.Task{Name: "Design", AssigneeID: strp("emp-1"), Status: models.TaskPlanned}))
	require.NoError(t, repo.Create(&models.Task{Name: "Build", AssigneeID: strp("emp-2"), Status: models.TaskPlanned}))
	require.NoError(t, repo.Create(&models.Task{Name: "Review", AssigneeID: strp("emp-1"), Status: models.TaskPlanned}))

	mine, err := repo.ListByAssignee("emp-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTimesheetRepositoryListByTask(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepository(db, zap.NewNop())
	repo := NewTimesheetRepository(db, zap.NewNop())

	task := &models.Task{Name: "Build", Status: models.TaskInProgress}
	require.NoError(t, tasks.Create(task))

	ts := &models.Timesheet{TaskID: task.ID, EmployeeID: "emp-1", TimeLogged: 3.5, Billable: true}
	require.NoError(t, repo.Create(ts))
	require.NotEmpty(t, ts.ID)

	byTask, err := repo.ListByTask(task.ID)
	require.NoError(t, err)
	require.Len(t, byTask, 1)
	assert.Equal(t, 3.5, byTask[0].TimeLogged)

	byTask[0].TimeLogged = 4
	updated, err := repo.Update(&byTask[0])
	require.NoError(t, err)
	assert.True(t, updated)

	deleted, err := repo.Delete(ts.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestPartnerRepositoryTypeFilter(t *testing.T) {
	repo := NewPartnerRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(&models.Partner{Name: "Acme", Type: models.PartnerCustomer}))
	require.NoError(t, repo.Create(&models.Partner{Name: "Bolt", Type: models.PartnerVendor}))
	require.NoError(t, repo.Create(&models.Partner{Name: "Core"})) // defaults to both

	customers, err := repo.List(PartnerFilter{Type: models.PartnerCustomer})
	require.NoError(t, err)
	require.Len(t, customers, 2) // Acme and Core

	vendors, err := repo.List(PartnerFilter{Type: models.PartnerVendor})
	require.NoError(t, err)
	require.Len(t, vendors, 2) // Bolt and Core

	all, err := repo.List(PartnerFilter{Type: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	searched, err := repo.List(PartnerFilter{Search: "Ac"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Acme", searched[0].Name)
}

func TestProductRepositoryUsageFilter(t *testing.T) {
	repo := NewProductRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(&models.Product{Name: "Consulting", ForSales: true}))
	require.NoError(t, repo.Create(&models.Product{Name: "Laptop", ForPurchase: true, ForExpenses: true}))

	sales, err := repo.List(ProductFilter{Usage: "sales"})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Consulting", sales[0].Name)

	expenses, err := repo.List(ProductFilter{Usage: "expenses"})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Laptop", expenses[0].Name)

	all, err := repo.List(ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSalesOrderRepositoryWithLines(t *testing.T) {
	repo := NewSalesOrderRepository(newTestDB(t), zap.NewNop())

	order := &models.SalesOrder{Code: "SO-001", UntaxedAmount: "0", TotalAmount: "0"}
	require.NoError(t, repo.Create(order))
	assert.Equal(t, models.OrderDraft, order.Status)

	line := &models.SalesOrderLine{
		OrderID:   order.ID,
		Quantity:  "2",
		UnitPrice: "150.00",
		Amount:    "300.00",
	}
	require.NoError(t, repo.AddLine(line))
	require.NotEmpty(t, line.ID)

	lines, err := repo.ListLines(order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "300.00", lines[0].Amount)

	lines[0].Quantity = "3"
	lines[0].Amount = "450.00"
	updated, err := repo.UpdateLine(&lines[0])
	require.NoError(t, err)
	assert.True(t, updated)

	filtered, err := repo.List(SalesOrderFilter{Search: "SO-0"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	none, err := repo.List(SalesOrderFilter{Status: models.OrderDone})
	require.NoError(t, err)
	assert.Empty(t, none)

	deleted, err := repo.DeleteLine(line.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestInvoiceRepositoryFilters(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(&models.Invoice{Number: "INV-001", Type: models.InvoiceCustomer}))
	require.NoError(t, repo.Create(&models.Invoice{Number: "BILL-001", Type: models.InvoiceVendor}))

	customer, err := repo.List(InvoiceFilter{Type: models.InvoiceCustomer})
	require.NoError(t, err)
	require.Len(t, customer, 1)
	assert.Equal(t, "INV-001", customer[0].Number)

	searched, err := repo.List(InvoiceFilter{Search: "BILL"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "BILL-001", searched[0].Number)
}

func TestExpenseRepositorySearch(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Create(&models.Expense{Name: "Team lunch", ProjectID: strp("proj-1")}))
	require.NoError(t, repo.Create(&models.Expense{Name: "Hosting", Description: strp("monthly server bill")}))

	byProject, err := repo.List(ExpenseFilter{ProjectID: "proj-1"})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "Team lunch", byProject[0].Name)

	byDescription, err := repo.List(ExpenseFilter{Search: "server"})
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Hosting", byDescription[0].Name)
}
