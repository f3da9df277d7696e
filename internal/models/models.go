package models

import "time"

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleProjectManager Role = "project_manager"
	RoleTeamMember     Role = "team_member"
	RoleFinance        Role = "finance"
	RoleAdmin          Role = "admin"
)

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleProjectManager, RoleTeamMember, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can sign in. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// Project statuses.
const (
	ProjectPlanned    = "Planned"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
)

// Task statuses.
const (
	TaskPlanned    = "Planned"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
	TaskBlocked    = "Blocked"
)

// TaskStatuses is the fixed enumeration exposed to the analytics filter UI.
var TaskStatuses = []string{TaskPlanned, TaskInProgress, TaskCompleted, TaskBlocked}

// Project is a unit of work with budget and revenue tracking.
// Progress is forced to 100 whenever Status is Completed.
type Project struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	Manager        string     `json:"manager"`
	Deadline       *time.Time `json:"deadline"`
	Status         string     `json:"status"`
	Budget         float64    `json:"budget"`
	BudgetSpent    float64    `json:"budgetSpent"`
	Cost           float64    `json:"cost"`
	Revenue        float64    `json:"revenue"`
	TotalTasks     int        `json:"totalTasks"`
	CompletedTasks int        `json:"completedTasks"`
	Progress       int        `json:"progress"`
	Tags           *string    `json:"tags"`
}

// Task belongs to at most one project and one assignee.
type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	ProjectID      *string    `json:"projectId"`
	AssigneeID     *string    `json:"assigneeId"`
	Status         string     `json:"status"`
	IsBillable     bool       `json:"isBillable"`
	TotalHours     float64    `json:"totalHours"`
	Deadline       *time.Time `json:"deadline"`
	ImageURL       *string    `json:"imageUrl"`
	Tags           *string    `json:"tags"`
	LastModifiedBy *string    `json:"lastModifiedBy"`
	LastModifiedOn time.Time  `json:"lastModifiedOn"`
}

// Timesheet records hours logged against a task.
type Timesheet struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	EmployeeID  string     `json:"employeeId"`
	Description *string    `json:"description"`
	TimeLogged  float64    `json:"timeLogged"`
	Billable    bool       `json:"billable"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// Partner types.
const (
	PartnerCustomer = "customer"
	PartnerVendor   = "vendor"
	PartnerBoth     = "both"
)

// Partner is a customer, a vendor, or both.
type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is something that can be sold, purchased, or expensed. Money fields
// are stored as fixed-decimal strings to avoid float drift in billing math.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ForSales    bool      `json:"forSales"`
	ForPurchase bool      `json:"forPurchase"`
	ForExpenses bool      `json:"forExpenses"`
	SalesPrice  string    `json:"salesPrice"`
	Cost        string    `json:"cost"`
	TaxIDs      *string   `json:"taxIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Tax is a named rate, stored with three decimal places.
type Tax struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order statuses shared by sales orders, purchase orders and invoices.
const (
	OrderDraft     = "Draft"
	OrderConfirmed = "Confirmed"
	OrderDone      = "Done"
	OrderCancelled = "Cancelled"
)

// SalesOrder is a customer order, optionally tied to a project.
type SalesOrder struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	CustomerID    *string   `json:"customerId"`
	ProjectID     *string   `json:"projectId"`
	Status        string    `json:"status"`
	UntaxedAmount string    `json:"untaxedAmount"`
	TotalAmount   string    `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SalesOrderLine is a single product line of a sales order.
type SalesOrderLine struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID *string `json:"productId"`
	Quantity  string  `json:"quantity"`
	Unit      *string `json:"unit"`
	UnitPrice string  `json:"unitPrice"`
	TaxIDs    *string `json:"taxIds"`
	Amount    string  `json:"amount"`
}

// PurchaseOrder is a vendor order, optionally tied to a project.
type PurchaseOrder struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	VendorID      *string   `json:"vendorId"`
	ProjectID     *string   `json:"projectId"`
	Status        string    `json:"status"`
	UntaxedAmount string    `json:"untaxedAmount"`
	TotalAmount   string    `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PurchaseOrderLine is a single product line of a purchase order.
type PurchaseOrderLine struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID *string `json:"productId"`
	Quantity  string  `json:"quantity"`
	Unit      *string `json:"unit"`
	UnitPrice string  `json:"unitPrice"`
	TaxIDs    *string `json:"taxIds"`
	Amount    string  `json:"amount"`
}

// Invoice types.
const (
	InvoiceCustomer = "customer"
	InvoiceVendor   = "vendor"
)

// Invoice is a customer or vendor invoice.
type Invoice struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	Type          string    `json:"type"`
	PartnerID     *string   `json:"partnerId"`
	ProjectID     *string   `json:"projectId"`
	Status        string    `json:"status"`
	UntaxedAmount string    `json:"untaxedAmount"`
	TotalAmount   string    `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InvoiceLine is a single product line of an invoice.
type InvoiceLine struct {
	ID        string  `json:"id"`
	InvoiceID string  `json:"invoiceId"`
	ProductID *string `json:"productId"`
	Quantity  string  `json:"quantity"`
	UnitPrice string  `json:"unitPrice"`
	TaxIDs    *string `json:"taxIds"`
	Amount    string  `json:"amount"`
}

// Expense is a cost entry, typically backed by an uploaded receipt image.
// PeriodStart and PeriodEnd are date-only strings (YYYY-MM-DD).
type Expense struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProjectID   *string   `json:"projectId"`
	PeriodStart *string   `json:"periodStart"`
	PeriodEnd   *string   `json:"periodEnd"`
	ImageURL    *string   `json:"imageUrl"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
