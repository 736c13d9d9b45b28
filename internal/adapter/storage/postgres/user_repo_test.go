package postgres

import (
	"context"
	"testing"
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRepoColumns() []string {
	return []string{"id", "username", "password_hash", "customer_id", "role", "created_at"}
}

func TestUserRepo_CreateAndGetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := &domain.User{
		ID:           uuid.New(),
		Username:     "ada",
		PasswordHash: "$2a$10$hash",
		CustomerID:   uuid.New(),
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.PasswordHash, u.CustomerID, u.Role, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ada").
		WillReturnRows(pgxmock.NewRows(userRepoColumns()).
			AddRow(u.ID, u.Username, u.PasswordHash, u.CustomerID, u.Role, u.CreatedAt))

	found, err := repo.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, domain.RoleCustomer, found.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(userRepoColumns()))

	found, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_Exists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := &domain.Customer{
		ID:         uuid.New(),
		Name:       "Ada",
		Surname:    "Lovelace",
		NationalID: "12345678901",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectQuery("SELECT .+ FROM customers WHERE id").
		WithArgs(c.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "surname", "national_id", "created_at"}).
			AddRow(c.ID, c.Name, c.Surname, c.NationalID, c.CreatedAt))

	found, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Lovelace", found.Surname)
	assert.NoError(t, mock.ExpectationsWereMet())
}
