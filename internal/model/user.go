package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

type User struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Role       Role          `json:"role"`
	Status     AccountStatus `json:"status"`
	BuildingID string        `json:"buildingId"`
}
