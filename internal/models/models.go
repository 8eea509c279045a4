package models

import "time"

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	MobileNo        string `json:"mobileNo"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateRequest struct {
	NewName     string `json:"newName"`
	NewEmail    string `json:"newEmail"`
	NewMobileNo string `json:"newMobileNo"`
}

// Response is the common envelope for operations that return no payload.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PublicUser is the user representation safe to serialize:
// the password hash is stripped.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MobileNo string `json:"mobileNo"`
}

type LoginResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// ClickStats is the per-user click analytics payload served by the dashboard.
type ClickStats struct {
	TotalClicks      int64            `json:"totalClicks"`
	DateWiseClicks   map[string]int64 `json:"dateWiseClicks"`
	DeviceTypeClicks map[string]int64 `json:"deviceTypeClicks"`
}

type DashboardResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    ClickStats `json:"data"`
}

// Link is a shortened URL owned by a single user.
type Link struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ShortLink string `json:"short_link"`
	FullLink  string `json:"full_link"`
}

// VisitLog records a single click on a short link.
// It references the link by short code, not the owning user.
type VisitLog struct {
	ID         string    `json:"id"`
	ShortLink  string    `json:"short_link"`
	DeviceType string    `json:"device_type"`
	VisitedAt  time.Time `json:"visited_at"`
}

type InternalStatsResponse struct {
	Users int64 `json:"users"`
	Links int64 `json:"links"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
