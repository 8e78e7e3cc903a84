package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkoval-dev/peercall/internal/avatar"
	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

type Service struct {
	repo     Repository
	uploader avatar.Uploader
	logger   logging.Logger
}

func NewService(repo Repository, uploader avatar.Uploader, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		uploader: uploader,
		logger:   logger,
	}
}

// Signup registers a new profile. avatarData may be nil when the user skipped
// the upload; then no upload is attempted and AvatarURL stays empty.
//
// Ordering matters: the userID is checked for availability before any avatar
// upload so a rejected signup never produces an orphaned image. The final
// insert is still conditional, which closes the remaining window between the
// pre-check and the write.
func (s *Service) Signup(ctx context.Context, userID, userName string, avatarData []byte, avatarName string) (*domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	userName = strings.TrimSpace(userName)

	identity := domain.UserIdentity{UserID: userID, UserName: userName}
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("signup uniqueness check: %w", err)
	}
	if taken {
		return nil, common.ErrorUserIDTaken
	}

	var avatarURL *string
	if len(avatarData) > 0 {
		url, err := s.uploader.Upload(ctx, avatarName, avatarData)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorAvatarUpload, err)
		}
		avatarURL = &url
		s.logger.Info(ctx, "avatar uploaded", "user_id", userID, "url", url)
	}

	p := &domain.Profile{
		UserID:    userID,
		UserName:  userName,
		AvatarURL: avatarURL,
	}

	p, err = s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorUserIDTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating profile: %w", err)
	}

	s.logger.Info(ctx, "profile registered", "user_id", p.UserID)
	return p, nil
}

// Login validates an identity against the profile store. Both a missing
// userID and a userName mismatch surface as common.ErrorNotFound; the caller
// cannot tell them apart, same as the account-not-found message in the UI.
func (s *Service) Login(ctx context.Context, userID, userName string) (*domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	userName = strings.TrimSpace(userName)

	identity := domain.UserIdentity{UserID: userID, UserName: userName}
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if p.UserName != userName {
		return nil, common.ErrorNotFound
	}

	return p, nil
}

// Get fetches a profile for display. Callers must tolerate
// common.ErrorNotFound: a user can be online before a profile fetch resolves,
// and the UI renders a placeholder avatar until it does.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.Get(ctx, userID)
}
