package reports

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

type RewardType string

const (
	RewardPositive RewardType = "positive"
	RewardNegative RewardType = "negative"
)

type Category string

const (
	CategoryDealer Category = "dealer"
	CategoryUser   Category = "user"
)

func (c Category) Valid() bool {
	return c == "" || c == CategoryDealer || c == CategoryUser
}

type Report struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WalletAddress string             `bson:"wallet_address" json:"wallet_address"`
	Location      string             `bson:"location" json:"location"`
	Description   string             `bson:"description" json:"description"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Status        Status             `bson:"status" json:"status"`
	RewardType    RewardType         `bson:"reward_type,omitempty" json:"reward_type,omitempty"`
	RewardAmount  *float64           `bson:"reward_amount,omitempty" json:"reward_amount,omitempty"`
	IsBlacklisted bool               `bson:"is_blacklisted" json:"is_blacklisted"`
	Category      Category           `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CheckRewards verifies that the reward fields agree with the status.
func (r *Report) CheckRewards() error {
	switch r.Status {
	case StatusPending:
		if r.RewardType != "" || r.RewardAmount != nil {
			return fmt.Errorf("report %s: pending report carries reward fields", r.ID.Hex())
		}
	case StatusConfirmed:
		if r.RewardType != RewardPositive || r.RewardAmount == nil {
			return fmt.Errorf("report %s: confirmed report needs a positive reward", r.ID.Hex())
		}
	case StatusRejected:
		if r.RewardType != RewardNegative || r.RewardAmount == nil || *r.RewardAmount != 0 {
			return fmt.Errorf("report %s: rejected report needs a zero negative reward", r.ID.Hex())
		}
	default:
		return fmt.Errorf("report %s: unknown status %q", r.ID.Hex(), r.Status)
	}
	return nil
}

// ListFilter narrows a List call. Zero values mean "any".
type ListFilter struct {
	Status        Status
	WalletAddress string
	Blacklisted   *bool
}

func (f ListFilter) matches(r *Report) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.WalletAddress != "" && r.WalletAddress != f.WalletAddress {
		return false
	}
	if f.Blacklisted != nil && r.IsBlacklisted != *f.Blacklisted {
		return false
	}
	return true
}

func (f ListFilter) bson() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.WalletAddress != "" {
		filter["wallet_address"] = f.WalletAddress
	}
	if f.Blacklisted != nil {
		filter["is_blacklisted"] = *f.Blacklisted
	}
	return filter
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Status        *Status
	RewardType    *RewardType
	RewardAmount  *float64
	IsBlacklisted *bool
}

func (p Patch) apply(r *Report) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.RewardType != nil {
		r.RewardType = *p.RewardType
	}
	if p.RewardAmount != nil {
		amount := *p.RewardAmount
		r.RewardAmount = &amount
	}
	if p.IsBlacklisted != nil {
		r.IsBlacklisted = *p.IsBlacklisted
	}
}

func (p Patch) set() bson.M {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.RewardType != nil {
		set["reward_type"] = *p.RewardType
	}
	if p.RewardAmount != nil {
		set["reward_amount"] = *p.RewardAmount
	}
	if p.IsBlacklisted != nil {
		set["is_blacklisted"] = *p.IsBlacklisted
	}
	return set
}

// Store persists reports. Implementations return apperrors NotFound for
// unknown ids; any other error is treated as a store failure.
type Store interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id primitive.ObjectID) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
	Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*Report, error)
	Ping(ctx context.Context) error
}

// SubmitReportRequest is the multipart form accepted by POST /reports.
// The photo travels as the "image" file part.
type SubmitReportRequest struct {
	Location      string   `form:"location" binding:"required,notblank,max=500"`
	Description   string   `form:"description" binding:"required,notblank,max=5000"`
	WalletAddress string   `form:"wallet_address" binding:"omitempty,max=128"`
	Category      Category `form:"category" binding:"omitempty,oneof=dealer user"`
}

type ListReportsQuery struct {
	WalletAddress string `form:"wallet_address"`
}
