package constants

import "fmt"

// Role names as they appear in the JWT "role" claim (lowercased).
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
)

// Template pesan error role
const ErrOnlySchedulersCanAccess = "❌ Hanya admin atau scheduler yang boleh mengakses fitur %s."

func RoleErrorScheduler(feature string) string {
	return fmt.Sprintf(ErrOnlySchedulersCanAccess, feature)
}

// SchedulingWriteRoles may change classes, instances and resources.
var SchedulingWriteRoles = []string{RoleAdmin, RoleScheduler}
