package globals

// Context keys
type ContextKey string

const (
	RoleKey    ContextKey = "role"
	UserIDKey  ContextKey = "userId"
	CompanyKey ContextKey = "companyId"
	TenantKey  ContextKey = "tenantDb"
)

// Roles carried in the token "role" claim.
const (
	RoleGuest = "guest"
	RoleAgent = "agent"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

var (
	AnyRole     = []string{RoleGuest, RoleAgent, RoleStaff, RoleAdmin}
	StaffRoles  = []string{RoleAgent, RoleStaff, RoleAdmin}
	ManageRoles = []string{RoleStaff, RoleAdmin}
	AdminOnly   = []string{RoleAdmin}
)

const CompanyHeader = "X-Company-Id"
