package auth

import (
	"context"

	"github.com/SiperumID/Siperum-Backend/internal/access"
	"github.com/SiperumID/Siperum-Backend/internal/db"
	"github.com/SiperumID/Siperum-Backend/internal/utils"
)

type SessionInfo struct{}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session

	err := db.DB.First(&session, "session_id = ?", id).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// UserInfo satisfies middleware.UserFetcher.
type UserInfo struct{}

func (ui UserInfo) FindUserByID(ctx context.Context, id string) (*access.User, error) {
	var user access.User
	if err := db.DB.WithContext(ctx).First(&user, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
