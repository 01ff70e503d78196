package gateway

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/server"
	"github.com/ecastro/clientdesk/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// startServer runs the real router over an in-memory database, so gateway
// tests exercise the full request path end to end.
func startServer(t *testing.T) *Gateway {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	handler := server.New(db, session.NewCodec("test-secret"))
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	gw, err := New(ts.URL)
	require.NoError(t, err)
	return gw
}

func signupAndLogin(t *testing.T, gw *Gateway, name, email, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, gw.PostUser(ctx, name, email, password))
	ok, err := gw.AuthUser(ctx, email, password)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEndToEndScenario(t *testing.T) {
	gw := startServer(t)
	ctx := context.Background()

	// signup
	require.NoError(t, gw.PostUser(ctx, "Ana", "ana@x.com", "secret123"))
	assert.True(t, gw.CheckEmail(ctx, "ana@x.com"))
	assert.False(t, gw.CheckEmail(ctx, "nobody@x.com"))

	user, err := gw.GetUser(ctx, "ana@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana", user.Name)

	// bad credentials are a plain rejection, not an error
	ok, err := gw.AuthUser(ctx, "ana@x.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	// unauthenticated reads degrade to empty, never panic or error
	assert.Empty(t, gw.GetClients(ctx))

	ok, err = gw.AuthUser(ctx, "ana@x.com", "secret123")
	require.NoError(t, err)
	require.True(t, ok)

	// create a client
	created, err := gw.PostClient(ctx, models.Client{
		Name:          "Cliente1",
		Email:         "cliente1@example.com",
		Profession:    "Advogada",
		PhoneNumber:   "11912345678",
		Gender:        "Feminino",
		BirthDate:     time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC),
		MaritalStatus: "Solteiro(a)",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotZero(t, created.ID)

	clients := gw.GetClients(ctx)
	require.Len(t, clients, 1)
	assert.Equal(t, "Cliente1", clients[0].Name)
	assert.Equal(t, "ana@x.com", clients[0].UserEmail)

	// attach a dependent
	dep, err := gw.PostDependent(ctx, models.Dependent{
		ClientID: created.ID,
		Name:     "Dep1",
		Gender:   "Feminino",
		Type:     "Filho(a)",
	})
	require.NoError(t, err)
	require.NotZero(t, dep.ID)

	dependents := gw.GetDependents(ctx, created.ID)
	require.Len(t, dependents, 1)
	assert.Equal(t, "Dep1", dependents[0].Name)

	// patch preserves omitted fields
	updatedDep, err := gw.UpdateDependent(ctx, dep.ID, map[string]any{"phonenumber": "11987654321"})
	require.NoError(t, err)
	assert.Equal(t, "11987654321", updatedDep.PhoneNumber)
	assert.Equal(t, "Dep1", updatedDep.Name)

	updatedClient, err := gw.UpdateClient(ctx, created.ID, map[string]any{"profession": "Engenheira"})
	require.NoError(t, err)
	assert.Equal(t, "Engenheira", updatedClient.Profession)
	assert.Equal(t, "Cliente1", updatedClient.Name)

	// cascade delete
	require.NoError(t, gw.DeleteClient(ctx, created.ID))
	assert.Empty(t, gw.GetClients(ctx))
	assert.Empty(t, gw.GetDependents(ctx, created.ID))

	// deleting again collapses to an error at the gateway
	assert.Error(t, gw.DeleteClient(ctx, created.ID))
}

func TestGetUserUnknownIsNilWithoutError(t *testing.T) {
	gw := startServer(t)
	user, err := gw.GetUser(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = gw.GetUser(context.Background(), "")
	assert.Error(t, err)
}

func TestClientsAreIsolatedBetweenUsers(t *testing.T) {
	gw := startServer(t)
	ctx := context.Background()

	signupAndLogin(t, gw, "Ana", "ana@x.com", "secret123")
	_, err := gw.PostClient(ctx, models.Client{
		Name: "ClienteDaAna", Email: "c@example.com", Profession: "Advogada",
		PhoneNumber: "11912345678", Gender: "Feminino",
		BirthDate: time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC), MaritalStatus: "Solteiro(a)",
	})
	require.NoError(t, err)

	// switching accounts replaces the session cookie
	signupAndLogin(t, gw, "Bob", "bob@x.com", "secret456")
	assert.Empty(t, gw.GetClients(ctx), "bob must not see ana's clients")
}

func TestRemindersRoundTrip(t *testing.T) {
	gw := startServer(t)
	ctx := context.Background()
	signupAndLogin(t, gw, "Ana", "ana@x.com", "secret123")

	created, err := gw.PostReminder(ctx, "Ligar para Cliente1")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := gw.UpdateReminder(ctx, created.ID, map[string]any{"ischecked": true})
	require.NoError(t, err)
	assert.True(t, updated.IsChecked)
	assert.Equal(t, "Ligar para Cliente1", updated.Title)

	reminders := gw.GetReminders(ctx)
	require.Len(t, reminders, 1)

	require.NoError(t, gw.DeleteReminder(ctx, created.ID))
	assert.Empty(t, gw.GetReminders(ctx))
}

func TestLogoutDropsTheSession(t *testing.T) {
	gw := startServer(t)
	ctx := context.Background()
	signupAndLogin(t, gw, "Ana", "ana@x.com", "secret123")

	_, err := gw.PostClient(ctx, models.Client{
		Name: "Cliente1", Email: "c@example.com", Profession: "Advogada",
		PhoneNumber: "11912345678", Gender: "Feminino",
		BirthDate: time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC), MaritalStatus: "Solteiro(a)",
	})
	require.NoError(t, err)
	require.Len(t, gw.GetClients(ctx), 1)

	require.NoError(t, gw.Logout(ctx))
	assert.Empty(t, gw.GetClients(ctx))
}
