package service

import (
	"pacs-study-browser/config"
	"pacs-study-browser/internal/domain/entity"
)

type PermissionService interface {
	// FilterAetDependingOnUiConfig returns the entries of aets a user with roles may use
	// at location. A nil roles slice skips the role check.
	FilterAetDependingOnUiConfig(aets []entity.Aet, location entity.AccessLocation, roles []string) []entity.Aet
}

type permissionService struct {
	allowed    map[entity.AccessLocation]map[string]struct{}
	superRoles map[string]struct{}
}

func NewPermissionService(cfg config.UIConfig) PermissionService {
	return &permissionService{
		allowed: map[entity.AccessLocation]map[string]struct{}{
			entity.AccessLocationInternal: toSet(cfg.InternalAets),
			entity.AccessLocationExternal: toSet(cfg.ExternalAets),
		},
		superRoles: toSet(cfg.SuperRoles),
	}
}

func (s *permissionService) FilterAetDependingOnUiConfig(aets []entity.Aet, location entity.AccessLocation, roles []string) []entity.Aet {
	allowed := s.allowed[location]
	filtered := make([]entity.Aet, 0, len(aets))

	for _, aet := range aets {
		if len(allowed) > 0 && !isAllowedTitle(allowed, aet) {
			continue
		}
		if roles != nil && !s.roleAccepted(aet, roles) {
			continue
		}
		filtered = append(filtered, aet)
	}
	return filtered
}

// isAllowedTitle also admits aliases of an allowed title.
func isAllowedTitle(allowed map[string]struct{}, aet entity.Aet) bool {
	if _, ok := allowed[aet.DicomAETitle]; ok {
		return true
	}
	if aet.AliasOf != "" {
		_, ok := allowed[aet.AliasOf]
		return ok
	}
	return false
}

func (s *permissionService) roleAccepted(aet entity.Aet, roles []string) bool {
	if len(aet.DcmAcceptedUserRole) == 0 {
		return true
	}
	for _, role := range roles {
		if _, ok := s.superRoles[role]; ok {
			return true
		}
		for _, accepted := range aet.DcmAcceptedUserRole {
			if role == accepted {
				return true
			}
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
