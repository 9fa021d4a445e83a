package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Address   string
	Country   string
}

type UpdateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
	Country   string
	Role      domain.Role
}

type UserService struct {
	store      repository.Store
	log        zerolog.Logger
	bcryptCost int
}

func NewUserService(store repository.Store, opts Options) *UserService {
	opts = opts.withDefaults()
	return &UserService{store: store, log: opts.Logger, bcryptCost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalidArgument)
	}
	return strings.ToLower(addr.Address), nil
}

// CreateUser registers a CLIENT account with a bcrypt hash of the password.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Address:      in.Address,
		Country:      in.Country,
		Role:         domain.RoleClient,
	}
	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		if err := q.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("email %s: %w", email, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleClient
	}
	if role != domain.RoleClient && role != domain.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrInvalidArgument)
	}

	var user *domain.User
	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		u.FirstName = strings.TrimSpace(in.FirstName)
		u.LastName = strings.TrimSpace(in.LastName)
		u.Email = email
		u.Address = in.Address
		u.Country = in.Country
		u.Role = role
		if err := q.UpdateUser(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.store.View(ctx, func(q repository.Queries) error {
		u, err := q.GetUser(ctx, id)
		user = u
		return err
	})
	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.store.View(ctx, func(q repository.Queries) error {
		u, err := q.ListUsers(ctx)
		users = u
		return err
	})
	return users, err
}

func (s *UserService) BlockUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.setBlocked(ctx, id, true)
}

func (s *UserService) UnblockUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.setBlocked(ctx, id, false)
}

func (s *UserService) setBlocked(ctx context.Context, id int64, blocked bool) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if err := q.SetUserBlocked(ctx, id, blocked); err != nil {
			return err
		}
		u, err := q.GetUser(ctx, id)
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Bool("blocked", blocked).Msg("user access changed")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.DeleteUser(ctx, id)
	})
}

// SubmitContact queues a customer message for the shop inbox.
func (s *UserService) SubmitContact(ctx context.Context, email, subject, message string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required: %w", domain.ErrInvalidArgument)
	}

	event := domain.ContactSubmittedEvent{
		EventID: newEventID(),
		Email:   addr,
		Subject: strings.TrimSpace(subject),
		Message: message,
	}
	return s.store.WithTx(ctx, func(q repository.Queries) error {
		return enqueueEvent(ctx, q, "contact-"+addr, domain.EventContactSubmitted, event)
	})
}
