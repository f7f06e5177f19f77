package entity

import "context"

// Permission codenames checked by the HTTP layer.
const (
	PermAddService    = "add_service"
	PermChangeService = "change_service"
	PermDeleteService = "delete_service"
	PermViewService   = "view_service"

	PermAddAdvertising    = "add_advertising"
	PermChangeAdvertising = "change_advertising"
	PermDeleteAdvertising = "delete_advertising"
	PermViewAdvertising   = "view_advertising"

	PermAddLead    = "add_lead"
	PermChangeLead = "change_lead"
	PermDeleteLead = "delete_lead"
	PermViewLead   = "view_lead"

	PermAddContract    = "add_contract"
	PermChangeContract = "change_contract"
	PermDeleteContract = "delete_contract"
	PermViewContract   = "view_contract"

	PermAddCustomer    = "add_customer"
	PermChangeCustomer = "change_customer"
	PermDeleteCustomer = "delete_customer"
	PermViewCustomer   = "view_customer"

	PermCreateCustomerFromLead = "create_customer_from_lead"
	PermViewStatistics         = "view_statistics"
)

const (
	RoleOperators = "operators"
	RoleMarketers = "marketers"
	RoleManagers  = "managers"
)

// DefaultRoles is the permission set each built-in role is seeded with.
var DefaultRoles = map[string][]string{
	RoleOperators: {PermAddLead, PermChangeLead, PermDeleteLead, PermViewLead},
	RoleMarketers: {
		PermAddService, PermChangeService, PermDeleteService, PermViewService,
		PermAddAdvertising, PermChangeAdvertising, PermDeleteAdvertising, PermViewAdvertising,
		PermViewStatistics,
	},
	RoleManagers: {
		PermAddContract, PermChangeContract, PermDeleteContract, PermViewContract,
		PermViewLead, PermCreateCustomerFromLead,
		PermAddCustomer, PermChangeCustomer, PermDeleteCustomer, PermViewCustomer,
		PermViewStatistics,
	},
}

type RoleRepositoryInterface interface {
	// EnsurePermissions creates the role if needed and grants every listed
	// permission. Calling it again with the same input changes nothing.
	EnsurePermissions(ctx context.Context, role string, permissions []string) error
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}
