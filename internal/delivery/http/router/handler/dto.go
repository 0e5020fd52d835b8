package handler

import (
	"time"

	"github.com/google/uuid"

	"piquante/internal/domain/entity"
)

// SauceResponse is the public JSON shape of a sauce.
type SauceResponse struct {
	ID            uuid.UUID   `json:"_id"`
	UserID        uuid.UUID   `json:"userId"`
	Name          string      `json:"name"`
	Manufacturer  string      `json:"manufacturer"`
	Description   string      `json:"description"`
	MainPepper    string      `json:"mainPepper"`
	ImageURL      string      `json:"imageUrl"`
	Heat          int         `json:"heat"`
	Likes         int         `json:"likes"`
	Dislikes      int         `json:"dislikes"`
	UsersLiked    []uuid.UUID `json:"usersLiked"`
	UsersDisliked []uuid.UUID `json:"usersDisliked"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func toSauceResponse(s *entity.Sauce) *SauceResponse {
	return &SauceResponse{
		ID:            s.ID,
		UserID:        s.OwnerID,
		Name:          s.Name,
		Manufacturer:  s.Manufacturer,
		Description:   s.Description,
		MainPepper:    s.MainPepper,
		ImageURL:      s.ImageURL,
		Heat:          s.Heat,
		Likes:         s.Likes,
		Dislikes:      s.Dislikes,
		UsersLiked:    s.UsersLiked.IDs(),
		UsersDisliked: s.UsersDisliked.IDs(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// LikeRequest is the body of a vote request. Like is a pointer so a missing
// field is told apart from an explicit 0.
type LikeRequest struct {
	UserID string `json:"userId" validate:"omitempty,uuid"`
	Like   *int   `json:"like" validate:"required"`
}
