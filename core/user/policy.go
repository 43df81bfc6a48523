package user

// Resources and actions gated by the authorization policy.
const (
	ResourceUser       = "user"
	ResourceAttendance = "attendance"
	ResourceRequest    = "request"
	ResourceDirectory  = "directory"

	ActionManage  = "manage"
	ActionReadAll = "read_all"
	ActionConfirm = "confirm"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type permission struct {
	resource string
	action   string
}

// policy is the single source of truth for role authorization.
// Route handlers consult it through Allowed instead of checking role strings
// ad hoc.
var policy = map[permission][]string{
	{ResourceUser, ActionManage}:        {RoleAdmin},
	{ResourceUser, ActionReadAll}:       {RoleAdmin},
	{ResourceAttendance, ActionReadAll}: {RoleAdmin, RoleLevel1, RoleLevel2, RoleLevel3},
	{ResourceRequest, ActionReadAll}:    {RoleAdmin, RoleLevel1, RoleLevel2, RoleLevel3},
	{ResourceRequest, ActionConfirm}:    {RoleLevel2, RoleLevel3},
	{ResourceRequest, ActionApprove}:    {RoleAdmin, RoleLevel1},
	{ResourceRequest, ActionReject}:     {RoleAdmin, RoleLevel1, RoleLevel2, RoleLevel3},
	{ResourceDirectory, ActionManage}:   {RoleAdmin},
}

// Allowed reports whether any of roles may perform action on resource.
func Allowed(resource, action string, roles []string) bool {
	allowed, ok := policy[permission{resource, action}]
	if !ok {
		return false
	}
	for _, role := range roles {
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
	}
	return false
}
