package models

import "time"

type UserType string

const (
	UserTypeCitizen    UserType = "citizen"
	UserTypeCollector  UserType = "collector"
	UserTypeKabadiwala UserType = "kabadiwala"
	UserTypeAdmin      UserType = "admin"
)

// GeoPoint is the backend's GeoJSON point: coordinates are [lng, lat].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	PhoneNumber       string    `json:"phone_number"`
	UserType          UserType  `json:"user_type"`
	IsActive          bool      `json:"is_active"`
	IsVerified        bool      `json:"is_verified"`
	IsSponsor         bool      `json:"is_sponsor"`
	ReputationScore   float64   `json:"reputation_score"`
	TotalTransactions int       `json:"total_transactions"`
	Location          *GeoPoint `json:"location,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type RegisterInput struct {
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Password    string   `json:"password"`
	PhoneNumber string   `json:"phone_number"`
	UserType    UserType `json:"user_type"`
}
