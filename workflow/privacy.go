package workflow

import "github.com/priya-tailors/priyas-tailoring-api/models"

// customerVisibleRoles are the roles allowed to see customer contact
// details. Internal production roles receive a projected record with the
// PII stripped.
var customerVisibleRoles = map[string]bool{
	models.RoleAdmin:      true,
	models.RoleSupervisor: true,
	models.RoleIntake:     true,
	models.RoleBilling:    true,
	models.RoleDelivery:   true,
}

// RoleSeesCustomer reports whether role may see customer PII
func RoleSeesCustomer(role string) bool {
	return customerVisibleRoles[role]
}

// ProjectOrder returns a copy of order with customer PII removed unless the
// role is customer-visible. Pure function; storage-level redaction is not
// relied on, so every read path serving internal staff must re-apply it.
func ProjectOrder(order models.Order, role string) models.Order {
	if RoleSeesCustomer(role) {
		return order
	}
	order.CustomerName = ""
	order.CustomerPhone = ""
	order.CustomerAddress = ""
	order.CustomerID = ""
	return order
}
