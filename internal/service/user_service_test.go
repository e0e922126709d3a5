package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
)

// recordingMailer captures sent mail for assertions.
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := NewUserService(repo, mailer, zap.NewNop(), bcrypt.MinCost)

	user, err := svc.Create(ctx, CreateUserInput{
		Username:    "alice",
		EmailID:     "alice@example.com",
		DisplayName: "Alice",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.UserID)

	// The password is stored hashed, never verbatim.
	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-pass")))

	assert.Equal(t, []string{"alice@example.com"}, mailer.sent)
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepo(), NoopMailer{}, zap.NewNop(), bcrypt.MinCost)

	_, err := svc.Create(ctx, CreateUserInput{
		Username:    "alice",
		EmailID:     "alice@example.com",
		DisplayName: "Alice",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{
		Username:    "alice",
		EmailID:     "other@example.com",
		DisplayName: "Alice Again",
		Password:    "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind)

	_, err = svc.Create(ctx, CreateUserInput{
		Username:    "alice2",
		EmailID:     "alice@example.com",
		DisplayName: "Alice Two",
		Password:    "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind)
}

func TestUserDeleteHidesAccount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo(activeUser(t, 1, "alice", "s3cret"))
	svc := NewUserService(repo, NoopMailer{}, zap.NewNop(), bcrypt.MinCost)

	require.NoError(t, svc.Delete(ctx, 1, 1))

	_, err := svc.GetByID(ctx, 1)
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
	assert.Equal(t, apperr.CodeDataNotFound, appErr.Code)

	// The record itself survives the delete.
	assert.Equal(t, domain.StatusInactive, repo.users[1].Status)
}

func TestUserGetAllReturnsOnlyActive(t *testing.T) {
	ctx := context.Background()

	inactive := activeUser(t, 2, "bob", "s3cret")
	inactive.Status = domain.StatusInactive

	repo := newFakeUserRepo(activeUser(t, 1, "alice", "s3cret"), inactive)
	svc := NewUserService(repo, NoopMailer{}, zap.NewNop(), bcrypt.MinCost)

	users, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserUpdateUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepo(), NoopMailer{}, zap.NewNop(), bcrypt.MinCost)

	err := svc.Update(ctx, UpdateUserInput{UserID: 99, DisplayName: "Ghost"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
}
