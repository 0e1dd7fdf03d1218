package models

import (
	"time"
)

// Role is a named capability tag held by a user
type Role string

const (
	RoleStudent               Role = "STUDENT"
	RoleFacultyAdvisor        Role = "FACULTY_ADVISOR"
	RoleDepartmentCoordinator Role = "DEPARTMENT_COORDINATOR"
	RoleUniversityCoordinator Role = "UNIVERSITY_COORDINATOR"
	RoleAdmin                 Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFacultyAdvisor, RoleDepartmentCoordinator, RoleUniversityCoordinator, RoleAdmin:
		return true
	}
	return false
}

// IsCoordinator reports whether r is either coordinator role.
func (r Role) IsCoordinator() bool {
	return r == RoleDepartmentCoordinator || r == RoleUniversityCoordinator
}

// User defines the user model based on the 'users' table, with roles from 'user_roles'
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Roles     []Role    `json:"roles"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user currently holds role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
