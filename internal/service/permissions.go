package service

import "github.com/prn-tf/kurosawa-movies/internal/domain"

// IsAdmin reports whether the principal holds the staff role.
func IsAdmin(principal *domain.User) bool {
	return principal != nil && principal.IsStaff
}

// IsAdminOrOwner reports whether the principal holds the staff role or is
// the user identified by ownerID.
func IsAdminOrOwner(principal *domain.User, ownerID int64) bool {
	if IsAdmin(principal) {
		return true
	}
	return principal != nil && principal.ID == ownerID
}
