package staff

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/auth"
	"github.com/noah-isme/backend-salon/internal/repo"
)

type stubStore struct {
	members map[uuid.UUID]repo.StaffMember
}

func newStubStore() *stubStore {
	return &stubStore{members: map[uuid.UUID]repo.StaffMember{}}
}

func (s *stubStore) Create(_ context.Context, m repo.StaffMember) (repo.StaffMember, error) {
	m.CreatedAt = time.Now()
	s.members[m.ID] = m
	return m, nil
}

func (s *stubStore) GetByEmail(_ context.Context, email string) (repo.StaffMember, error) {
	for _, m := range s.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return repo.StaffMember{}, repo.ErrNotFound
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (repo.StaffMember, error) {
	m, ok := s.members[id]
	if !ok {
		return repo.StaffMember{}, repo.ErrNotFound
	}
	return m, nil
}

func (s *stubStore) List(context.Context) ([]repo.StaffMember, error) {
	var out []repo.StaffMember
	for _, m := range s.members {
		out = append(out, m)
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *stubStore) {
	t.Helper()
	tokens, err := auth.NewTokens(auth.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	store := newStubStore()
	return &Service{Store: store, Tokens: tokens}, store
}

func TestCreateHashesPIN(t *testing.T) {
	svc, store := newTestService(t)

	member, err := svc.Create(context.Background(), CreateInput{
		Name:           "Amina",
		Email:          "amina@example.com",
		PIN:            "4321",
		CommissionRate: decimal.NewFromFloat(0.5),
	})
	require.NoError(t, err)
	require.NotEqual(t, "4321", member.PinHash)
	require.Contains(t, member.PinHash, "$argon2id$")
	require.Equal(t, "stylist", member.Role)
	require.Len(t, store.members, 1)
}

func TestCreateRejectsBadPIN(t *testing.T) {
	svc, _ := newTestService(t)

	for _, pin := range []string{"", "12", "abcd", "123456789"} {
		_, err := svc.Create(context.Background(), CreateInput{Name: "A", Email: "a@example.com", PIN: pin})
		require.Error(t, err, "pin %q", pin)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Amina",
		Email: "amina@example.com",
		PIN:   "4321",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "amina@example.com", "4321")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.Equal(t, created.ID, result.Staff.ID)

	staffID, err := svc.Tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.ID.String(), staffID)
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Amina", Email: "amina@example.com", PIN: "4321"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "amina@example.com", "9999")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "unknown@example.com", "4321")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveStaff(t *testing.T) {
	svc, store := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Amina", Email: "amina@example.com", PIN: "4321"})
	require.NoError(t, err)
	created.Active = false
	store.members[created.ID] = created

	_, err = svc.Login(context.Background(), "amina@example.com", "4321")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
