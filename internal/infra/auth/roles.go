package auth

import "refugis/internal/domain/entity"

const defaultRoleClaim = "role"

// rolesFromClaim accepts the shapes custom claims take in practice: "admin", ["user","admin"] or admin: true.
func rolesFromClaim(value any) entity.Roles {
	switch v := value.(type) {
	case string:
		return entity.RolesFromStrings([]string{v})
	case []string:
		return entity.RolesFromStrings(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}

		return entity.RolesFromStrings(names)
	case bool:
		if v {
			return entity.Roles{entity.RoleAdmin}
		}
	}

	return entity.Roles{entity.RoleUser}
}
