package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	digests  []service.Digest
	err      error
	purged   int64
	purgeErr error
	purges   int
}

func (f *fakeSource) OpenItemDigests(context.Context) ([]service.Digest, error) {
	return f.digests, f.err
}

func (f *fakeSource) PurgeRevokedTokens(context.Context) (int64, error) {
	f.purges++
	return f.purged, f.purgeErr
}

type fakeMailer struct {
	failFor string
	sent    []string
}

func (m *fakeMailer) SendOpenItemsDigest(user models.User, _ []models.TodoItem) error {
	if user.Username == m.failFor {
		return errors.New("relay down")
	}
	m.sent = append(m.sent, user.Username)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	return &config.Config{
		Location:           time.UTC,
		DigestSchedule:     "0 8 * * *",
		TokenPurgeSchedule: "@hourly",
	}
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(testConfig(), &fakeSource{}, &fakeMailer{}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s, err = New(testConfig(), &fakeSource{}, nil, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNew_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.DigestSchedule = "every morning"
	_, err := New(cfg, &fakeSource{}, &fakeMailer{}, quietLogger())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.TokenPurgeSchedule = "* *"
	_, err = New(cfg, &fakeSource{}, &fakeMailer{}, quietLogger())
	assert.Error(t, err)
}

func TestSendDigests_ContinuesAfterFailure(t *testing.T) {
	src := &fakeSource{digests: []service.Digest{
		{User: models.User{Username: "alice"}},
		{User: models.User{Username: "bob"}},
		{User: models.User{Username: "carol"}},
	}}
	mailer := &fakeMailer{failFor: "bob"}
	s, err := New(testConfig(), src, mailer, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, s.SendDigests(context.Background()))
	assert.Equal(t, []string{"alice", "carol"}, mailer.sent)
}

func TestSendDigests_SourceError(t *testing.T) {
	mailer := &fakeMailer{}
	s, err := New(testConfig(), &fakeSource{err: errors.New("db down")}, mailer, quietLogger())
	require.NoError(t, err)

	assert.Zero(t, s.SendDigests(context.Background()))
	assert.Empty(t, mailer.sent)
}

func TestPurgeTokens(t *testing.T) {
	src := &fakeSource{purged: 3}
	s, err := New(testConfig(), src, nil, quietLogger())
	require.NoError(t, err)

	s.PurgeTokens(context.Background())
	src.purgeErr = errors.New("db down")
	s.PurgeTokens(context.Background())
	assert.Equal(t, 2, src.purges)
}

func TestStartStop(t *testing.T) {
	s, err := New(testConfig(), &fakeSource{}, nil, quietLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
