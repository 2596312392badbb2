package models

import (
	"time"
)

type User struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	FullName         string    `json:"full_name" gorm:"not null"`
	Email            string    `json:"email" gorm:"unique;not null"`
	Password         string    `json:"-" gorm:"not null"`
	PlanTier         PlanTier  `json:"plan_tier" gorm:"not null;default:'free'"`
	CreditBalance    int       `json:"credit_balance" gorm:"not null;default:50"`
	LastCreditReset  time.Time `json:"last_credit_reset"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
