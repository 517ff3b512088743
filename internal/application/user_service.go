package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
	"github.com/jolivares/cuaderno/pkg/helpers"
	"github.com/jolivares/cuaderno/pkg/mailer"
	"github.com/jolivares/cuaderno/pkg/queue"
	"github.com/jolivares/cuaderno/pkg/tokens"
)

// UserService covers the profile concerns that sit outside authentication:
// avatar storage and the signup verification email.
type UserService struct {
	Users     repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Mail      *queue.Publisher
	Verify    *tokens.VerifyManager
	VerifyURL string
	Logger    *logrus.Logger
}

func NewUserService(users repository.UserRepository, gcs *storage.Client, gcsBucket string, mailPub *queue.Publisher, verify *tokens.VerifyManager, verifyURL string, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, GCS: gcs, GCSBucket: gcsBucket, Mail: mailPub, Verify: verify, VerifyURL: verifyURL, Logger: logger}
}

// UploadAvatar stores the image in GCS under avatars/<user>/<uuid><ext> and
// records the public URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("avatar storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Users.SetAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// EnqueueVerificationEmail signs a verification token for u and queues the
// email job. Best effort: failures are logged, signup still succeeds.
func (s *UserService) EnqueueVerificationEmail(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	tok, err := s.Verify.Generate(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verify token generation failed")
		return
	}
	job := mailer.EmailJob{
		Kind: mailer.KindVerify,
		To:   u.Email,
		Data: map[string]string{
			"name": u.Name,
			"link": s.VerifyURL + "?token=" + tok,
		},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email enqueue failed")
	}
}
