package services

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"selfcheck/logging"
	"selfcheck/repository"
	"selfcheck/scoring"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendWelcome(ctx context.Context, toAddress, username string) error {
	args := m.Called(ctx, toAddress, username)
	return args.Error(0)
}

type fixture struct {
	repos   *repository.MemoryManager
	mailer  *mockMailer
	clock   time.Time
	auth    *AuthService
	tests   *TestService
	profile *ProfileService
}

func newFixture() *fixture {
	f := &fixture{
		repos:  repository.NewMemoryManager(),
		mailer: new(mockMailer),
		clock:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.repos.Now = now

	log := logging.Discard()
	f.auth = NewAuthService(f.repos, nil, f.mailer, log, 4)
	f.tests = NewTestService(f.repos, nil, f.repos, scoring.Default(), log, DefaultCooldown).WithClock(now)
	f.profile = NewProfileService(f.repos, nil, log)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

var errBoom = errors.New("boom")
