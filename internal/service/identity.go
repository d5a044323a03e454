package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
)

// RegisterCustomerInput содержит данные формы регистрации покупателя.
type RegisterCustomerInput struct {
	Username    string
	Email       string
	Password    string
	Address     model.Address
	Preferences model.Preferences
}

// RegisterCustomer регистрирует нового покупателя.
func (s *Service) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (*model.Customer, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	c := model.Customer{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Preferences:  in.Preferences,
	}

	id, err := s.repo.CreateCustomer(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	return &c, nil
}

// SeedOwner создаёт учётную запись владельца магазина, если её ещё нет.
// Вызывается при старте сервиса: без неё раздел владельцев пуст и войти
// владельцем невозможно. Повторный запуск ничего не меняет.
func (s *Service) SeedOwner(ctx context.Context, username, email, fullName, password string) error {
	_, err := s.repo.GetOwnerByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("check owner: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.repo.CreateOwner(ctx, model.Owner{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	})
	// Гонка двух стартующих инстансов: владельца уже создал кто-то другой.
	if errors.Is(err, repository.ErrUserExists) {
		return nil
	}
	return err
}

// Authenticate проверяет учётные данные строго внутри раздела, соответствующего
// заявленной роли: имя покупателя никогда не сверяется с разделом владельцев и
// наоборот, даже при совпадении строк. Любая неудача отображается в единый
// ErrInvalidCredentials без изменения состояния сессии.
func (s *Service) Authenticate(ctx context.Context, kind model.PrincipalKind, username, password string) (model.Principal, error) {
	switch kind {
	case model.KindCustomer:
		c, err := s.repo.GetCustomerByUsername(ctx, username)
		if err != nil {
			return model.Principal{}, rejected(err)
		}
		if err := auth.VerifyPassword(c.PasswordHash, password); err != nil {
			return model.Principal{}, ErrInvalidCredentials
		}
		return c.Principal(), nil

	case model.KindOwner:
		o, err := s.repo.GetOwnerByUsername(ctx, username)
		if err != nil {
			return model.Principal{}, rejected(err)
		}
		if err := auth.VerifyPassword(o.PasswordHash, password); err != nil {
			return model.Principal{}, ErrInvalidCredentials
		}
		return o.Principal(), nil

	default:
		return model.Principal{}, ErrInvalidCredentials
	}
}

// rejected нормализует «пользователь не найден» к единому отказу,
// пропуская неожиданные ошибки хранилища наружу.
func rejected(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

// LoadPrincipal восстанавливает учётную запись сессии повторным чтением из
// раздела, соответствующего сохранённому типу. Отсутствие записи означает
// недействительную сессию: вызывающий обязан счесть запрос анонимным.
func (s *Service) LoadPrincipal(ctx context.Context, kind model.PrincipalKind, id string) (model.Principal, error) {
	switch kind {
	case model.KindCustomer:
		c, err := s.repo.GetCustomerByID(ctx, id)
		if err != nil {
			return model.Principal{}, err
		}
		return c.Principal(), nil

	case model.KindOwner:
		o, err := s.repo.GetOwnerByID(ctx, id)
		if err != nil {
			return model.Principal{}, err
		}
		return o.Principal(), nil

	default:
		return model.Principal{}, repository.ErrUserNotFound
	}
}

// GetCustomer возвращает профиль покупателя.
func (s *Service) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

// GetOwner возвращает профиль владельца.
func (s *Service) GetOwner(ctx context.Context, id string) (*model.Owner, error) {
	return s.repo.GetOwnerByID(ctx, id)
}

// UpdateCustomerAddress обновляет почтовый адрес покупателя.
func (s *Service) UpdateCustomerAddress(ctx context.Context, customerID string, addr model.Address) error {
	return s.repo.UpdateCustomerAddress(ctx, customerID, addr)
}
