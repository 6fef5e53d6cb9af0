package linking

import (
	"context"
	"crypto/rand"
	"math/big"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/pkg/user"
	"strings"
	"time"
)

const (
	CodeLength = 6
	CodeTTL    = 15 * time.Minute

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type (
	LinkService interface {
		Issue(ctx context.Context, username string) (domain.LinkStartResponse, error)
		Consume(ctx context.Context, code string, chatID int64, displayName *string) (bool, error)
		Status(ctx context.Context, username string) (domain.LinkStatusResponse, error)
		Unlink(ctx context.Context, username string) error
	}

	linkService struct {
		linkRepository LinkRepository
		userRepository user.UserRepository
		logger         logging.Logger
		now            func() time.Time
	}
)

func NewLinkService(linkRepository LinkRepository, userRepository user.UserRepository, logger logging.Logger) LinkService {
	return &linkService{
		linkRepository: linkRepository,
		userRepository: userRepository,
		logger:         logger,
		now:            time.Now,
	}
}

func generateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeCode upper-cases a user-typed code. It returns "" when the input
// cannot be a link code.
func NormalizeCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != CodeLength {
		return ""
	}
	for _, r := range s {
		if !strings.ContainsRune(codeAlphabet, r) {
			return ""
		}
	}
	return s
}

func (s *linkService) Issue(ctx context.Context, username string) (domain.LinkStartResponse, error) {
	code, err := generateCode()
	if err != nil {
		return domain.LinkStartResponse{}, domain.Internal("generate link code", err)
	}

	link := &entities.LinkCode{
		Code:     code,
		Username: username,
		ExpAt:    s.now().UTC().Add(CodeTTL),
	}
	if err := s.linkRepository.Create(ctx, link); err != nil {
		return domain.LinkStartResponse{}, domain.Internal("store link code", err)
	}
	return domain.LinkStartResponse{Code: link.Code, ExpAt: link.ExpAt}, nil
}

// Consume burns the code before linking the account. A failure between the
// two writes leaves the code spent and the account unlinked.
func (s *linkService) Consume(ctx context.Context, code string, chatID int64, displayName *string) (bool, error) {
	code = NormalizeCode(code)
	if code == "" {
		return false, nil
	}
	now := s.now().UTC()

	link, err := s.linkRepository.FindActive(ctx, code, now)
	if err != nil {
		return false, domain.Internal("find link code", err)
	}
	if link == nil {
		return false, nil
	}

	burned, err := s.linkRepository.Burn(ctx, link.ID.String(), now)
	if err != nil {
		return false, domain.Internal("burn link code", err)
	}
	if !burned {
		return false, nil
	}

	linked, err := s.userRepository.SetTelegram(ctx, link.Username, chatID, displayName)
	if err != nil {
		return false, domain.Internal("link user", err)
	}
	if !linked {
		s.logger.Warn(ctx, "link code issued for unknown user", "username", link.Username)
		return false, nil
	}
	s.logger.Info(ctx, "telegram account linked", "username", link.Username, "chat_id", chatID)
	return true, nil
}

func (s *linkService) Status(ctx context.Context, username string) (domain.LinkStatusResponse, error) {
	u, err := s.userRepository.FindByUsername(ctx, username)
	if err != nil {
		return domain.LinkStatusResponse{}, domain.Internal("find user", err)
	}
	if u == nil {
		return domain.LinkStatusResponse{}, domain.ErrUserNotFound
	}
	return domain.LinkStatusResponse{
		Linked:           u.TelegramID != nil,
		TelegramUsername: u.TelegramUsername,
	}, nil
}

func (s *linkService) Unlink(ctx context.Context, username string) error {
	if err := s.userRepository.ClearTelegram(ctx, username); err != nil {
		return domain.Internal("unlink user", err)
	}
	return nil
}
